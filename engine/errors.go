package engine

import "fmt"

// RuleError is the single rejection category for player actions: the request
// violated a game rule and the game state was left untouched. The reason is
// human-readable and safe to surface to the acting player.
//
// Anything else going wrong inside the engine (a broken invariant, an
// out-of-range turn index) is a bug, not a RuleError.
type RuleError struct {
	Reason string
}

func (e *RuleError) Error() string { return e.Reason }

// reject builds a RuleError with a formatted reason.
func reject(format string, args ...any) error {
	return &RuleError{Reason: fmt.Sprintf(format, args...)}
}
