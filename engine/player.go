package engine

// Player is one seat at the table. The hand is a multiset as far as the
// rules are concerned; slice order is only kept stable for display.
type Player struct {
	ID          string `json:"id"`
	Token       string `json:"-"`
	DisplayName string `json:"displayName"`

	Hand  []Card `json:"hand"`
	Score int    `json:"score"`

	// ScorePerRound gets one entry appended per completed round.
	ScorePerRound []int `json:"scorePerRound"`

	// HandHistory holds the hand snapshot taken when the player finished
	// each round, used to render their final melds afterwards.
	HandHistory [][]Card `json:"handHistory"`
}

// NewPlayer creates a player with an empty hand. The id and token are opaque
// to the engine; the caller is trusted to have authenticated them.
func NewPlayer(id, token, displayName string) *Player {
	return &Player{ID: id, Token: token, DisplayName: displayName}
}

// HasCard reports whether the player holds a card of the given kind,
// regardless of which deck it came from.
func (p *Player) HasCard(kind Kind) bool {
	for _, c := range p.Hand {
		if c.Kind == kind {
			return true
		}
	}
	return false
}

// removeCard removes the first card of the given kind from the hand and
// returns it. The second return is false if no such card is held.
func (p *Player) removeCard(kind Kind) (Card, bool) {
	for i, c := range p.Hand {
		if c.Kind == kind {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}
