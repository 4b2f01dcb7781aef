package engine

import (
	"encoding/json"
	"fmt"
)

// EventKind tags each event record on the wire.
type EventKind string

const (
	EventJoinGame           EventKind = "joinGame"
	EventStartGame          EventKind = "startGame"
	EventDrawFromDeck       EventKind = "drawFromDeck"
	EventDrawFromPile       EventKind = "drawFromPile"
	EventDiscard            EventKind = "discard"
	EventAdvanceTurn        EventKind = "advanceTurn"
	EventPlayerWentOut      EventKind = "playerWentOut"
	EventPlayerDoneForRound EventKind = "playerDoneForRound"
	EventAdvanceRound       EventKind = "advanceRound"
	EventReshuffleDeck      EventKind = "reshuffleDeck"
	EventGameEnd            EventKind = "gameEnd"
)

// Event is one record in a game's append-only log. Exactly one event is
// appended per accepted state transition (plus the transitions an action
// triggers, such as the turn advance after a go-out), each stamped with its
// index in the log. Events are never revised or removed.
//
// The set of implementations is closed: the unexported setIndex method keeps
// other packages from adding kinds the decoder doesn't know.
type Event interface {
	Kind() EventKind
	Index() int
	setIndex(int)
}

// eventMeta carries the log index shared by every event kind.
type eventMeta struct {
	Idx int `json:"index"`
}

func (m *eventMeta) Index() int     { return m.Idx }
func (m *eventMeta) setIndex(i int) { m.Idx = i }

// JoinGameEvent records a player taking a seat during setup.
type JoinGameEvent struct {
	eventMeta
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
}

func (*JoinGameEvent) Kind() EventKind { return EventJoinGame }

// StartGameEvent records the owner starting play.
type StartGameEvent struct {
	eventMeta
}

func (*StartGameEvent) Kind() EventKind { return EventStartGame }

// DrawFromDeckEvent records a draw from the face-down draw stack.
type DrawFromDeckEvent struct {
	eventMeta
	PlayerID string `json:"playerId"`
}

func (*DrawFromDeckEvent) Kind() EventKind { return EventDrawFromDeck }

// DrawFromPileEvent records a draw from the face-up discard pile.
type DrawFromPileEvent struct {
	eventMeta
	PlayerID string `json:"playerId"`
}

func (*DrawFromPileEvent) Kind() EventKind { return EventDrawFromPile }

// DiscardEvent records a card landing face-up on the pile.
type DiscardEvent struct {
	eventMeta
	PlayerID string `json:"playerId"`
	Card     Card   `json:"card"`
}

func (*DiscardEvent) Kind() EventKind { return EventDiscard }

// AdvanceTurnEvent records the turn passing to a new player.
type AdvanceTurnEvent struct {
	eventMeta
	TurnIndex int `json:"turn"`
}

func (*AdvanceTurnEvent) Kind() EventKind { return EventAdvanceTurn }

// PlayerWentOutEvent records the first fully-grouped hand of the round.
type PlayerWentOutEvent struct {
	eventMeta
	PlayerID string `json:"playerId"`
}

func (*PlayerWentOutEvent) Kind() EventKind { return EventPlayerWentOut }

// PlayerDoneForRoundEvent records a player's final score for the round,
// whether because they went out or because the round closed on them.
type PlayerDoneForRoundEvent struct {
	eventMeta
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	RoundScore  int    `json:"roundScore"`
	TotalScore  int    `json:"totalScore"`
}

func (*PlayerDoneForRoundEvent) Kind() EventKind { return EventPlayerDoneForRound }

// AdvanceRoundEvent records the start of a new round (re-deal, new wild).
type AdvanceRoundEvent struct {
	eventMeta
	Round int `json:"round"`
}

func (*AdvanceRoundEvent) Kind() EventKind { return EventAdvanceRound }

// ReshuffleDeckEvent records the pile below its top card being shuffled back
// into an empty draw stack mid-round.
type ReshuffleDeckEvent struct {
	eventMeta
	DeckSize int    `json:"deckSize"`
	Pile     []Card `json:"pile"`
}

func (*ReshuffleDeckEvent) Kind() EventKind { return EventReshuffleDeck }

// GameEndEvent records the end of the final round.
type GameEndEvent struct {
	eventMeta
}

func (*GameEndEvent) Kind() EventKind { return EventGameEnd }

// EncodeEvent renders an event as a JSON object with a "type" tag selecting
// the payload shape.
func EncodeEvent(ev Event) ([]byte, error) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["type"] = ev.Kind()
	return json.Marshal(fields)
}

// DecodeEvent parses a JSON event record, dispatching on the "type" tag.
// Unknown tags are a hard error.
func DecodeEvent(data []byte) (Event, error) {
	var probe struct {
		Type EventKind `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}

	var ev Event
	switch probe.Type {
	case EventJoinGame:
		ev = &JoinGameEvent{}
	case EventStartGame:
		ev = &StartGameEvent{}
	case EventDrawFromDeck:
		ev = &DrawFromDeckEvent{}
	case EventDrawFromPile:
		ev = &DrawFromPileEvent{}
	case EventDiscard:
		ev = &DiscardEvent{}
	case EventAdvanceTurn:
		ev = &AdvanceTurnEvent{}
	case EventPlayerWentOut:
		ev = &PlayerWentOutEvent{}
	case EventPlayerDoneForRound:
		ev = &PlayerDoneForRoundEvent{}
	case EventAdvanceRound:
		ev = &AdvanceRoundEvent{}
	case EventReshuffleDeck:
		ev = &ReshuffleDeckEvent{}
	case EventGameEnd:
		ev = &GameEndEvent{}
	default:
		return nil, fmt.Errorf("unknown event type %q", probe.Type)
	}

	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("decode %s event: %w", probe.Type, err)
	}
	return ev, nil
}
