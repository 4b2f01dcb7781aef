package engine

import "fmt"

// Suit constants. Derived from Kind, never stored.
type Suit uint8

const (
	SuitInvalid Suit = iota
	SuitClubs
	SuitDiamonds
	SuitHearts
	SuitSpades
)

// Rank constants. Within each suit the thirteen ranks run Ace through King;
// Joker sits outside the cycle.
type Rank uint8

const (
	RankInvalid Rank = 0
	RankAce     Rank = 1
	RankTwo     Rank = 2
	RankThree   Rank = 3
	RankFour    Rank = 4
	RankFive    Rank = 5
	RankSix     Rank = 6
	RankSeven   Rank = 7
	RankEight   Rank = 8
	RankNine    Rank = 9
	RankTen     Rank = 10
	RankJack    Rank = 11
	RankQueen   Rank = 12
	RankKing    Rank = 13
	RankJoker   Rank = 14
)

// Kind is the ordinal identity of a card within one physical deck:
// 0 = invalid/placeholder, 1–52 = the four thirteen-rank suits in
// clubs/diamonds/hearts/spades order, 53–54 = the two jokers.
type Kind uint8

const (
	KindInvalid Kind = 0
	KindJokerA  Kind = 53
	KindJokerB  Kind = 54

	// DeckSize is the number of cards in one physical deck (52 + 2 jokers).
	DeckSize = 54
)

// Card is an immutable playing-card value. Deck distinguishes which of the
// merged physical decks the card came from, so two copies of the same kind
// remain distinct cards. Equality is by (Kind, Deck).
type Card struct {
	Kind Kind  `json:"type"`
	Deck uint8 `json:"deck"`
}

// NewCard constructs a Card of the given kind from deck deckIdx.
func NewCard(kind Kind, deckIdx uint8) Card {
	return Card{Kind: kind, Deck: deckIdx}
}

// CardOf constructs a deck-0 card from suit and rank. Jokers are not
// addressable by suit; use NewCard with KindJokerA/KindJokerB.
func CardOf(suit Suit, rank Rank) Card {
	if suit < SuitClubs || suit > SuitSpades || rank < RankAce || rank > RankKing {
		return Card{}
	}
	return Card{Kind: Kind(uint8(suit-1)*13 + uint8(rank))}
}

// Suit returns the card's suit, or SuitInvalid for placeholders and jokers.
func (c Card) Suit() Suit {
	if c.Kind == KindInvalid || c.Kind > 52 {
		return SuitInvalid
	}
	return Suit((uint8(c.Kind)-1)/13 + 1)
}

// Rank returns the card's rank: Ace–King for kinds 1–52, Joker for kinds 53
// and above, RankInvalid for the zero kind.
func (c Card) Rank() Rank {
	switch {
	case c.Kind == KindInvalid:
		return RankInvalid
	case c.Kind <= 52:
		return Rank((uint8(c.Kind)-1)%13 + 1)
	default:
		return RankJoker
	}
}

// PointValue returns the card's score when left ungrouped at the end of a
// round: twos through tens count rank+1, face cards count 10, aces 20,
// jokers 50.
func (c Card) PointValue() int {
	r := c.Rank()
	switch {
	case r == RankJoker:
		return 50
	case r == RankAce:
		return 20
	case r >= RankTwo && r <= RankTen:
		return int(r) + 1
	case r >= RankJack && r <= RankKing:
		return 10
	}
	return 0
}

// IsJoker reports whether the card is one of the jokers.
func (c Card) IsJoker() bool { return c.Kind >= KindJokerA }

var suitNames = [...]string{"?", "♣", "♦", "♥", "♠"}
var rankNames = [...]string{"?", "A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// String renders the card for logs and test failures, e.g. "3♠" or "Joker".
func (c Card) String() string {
	if c.Kind == KindInvalid {
		return "Invalid"
	}
	if c.IsJoker() {
		return "Joker"
	}
	return fmt.Sprintf("%s%s", rankNames[c.Rank()], suitNames[c.Suit()])
}

// fullDeck returns the 54 kinds of a single physical deck, each tagged with
// the given deck index.
func fullDeck(deckIdx uint8) []Card {
	cards := make([]Card, 0, DeckSize)
	for k := Kind(1); k <= KindJokerB; k++ {
		cards = append(cards, Card{Kind: k, Deck: deckIdx})
	}
	return cards
}
