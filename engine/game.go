// Package engine implements the Aces rules: deck composition, the
// turn/round state machine, meld grouping, and scoring.
//
// The engine is the single source of truth for game state. Every accepted
// action mutates the aggregate in place and appends one or more events to
// the game's log; rejected actions leave the state completely untouched.
// The package performs no I/O and does no locking; callers must serialize
// all actions against one Game (different games are independent).
package engine

import (
	"math/rand/v2"
)

// InitialHandSize is the hand size in round 0; each round adds one card.
const InitialHandSize = 3

// GameState is the lifecycle state of a game.
type GameState uint8

const (
	StateSetup GameState = iota
	StatePlaying
	StateFinished
)

var gameStateNames = [...]string{"setup", "playing", "finished"}

func (s GameState) String() string {
	if int(s) < len(gameStateNames) {
		return gameStateNames[s]
	}
	return "invalid"
}

// TurnPhase is the sub-state of the current player's turn.
type TurnPhase uint8

const (
	PhaseInvalid TurnPhase = iota
	PhaseDrawing
	PhaseDiscarding
)

var turnPhaseNames = [...]string{"invalid", "drawing", "discarding"}

func (p TurnPhase) String() string {
	if int(p) < len(turnPhaseNames) {
		return turnPhaseNames[p]
	}
	return "invalid"
}

// Settings holds the configurable game rules.
type Settings struct {
	// Mining raises the per-turn draw limit from 1 to 3.
	Mining bool `json:"mining"`
}

// DefaultNumRounds is how many times the round counter advances before the
// game ends.
const DefaultNumRounds = 10

// Game is the aggregate root for one table. All mutation goes through the
// action methods; external packages must never write fields directly.
//
// Deck and Pile are stacks with the top at the end of the slice.
type Game struct {
	ID        string    `json:"id"`
	Players   []*Player `json:"players"`
	Deck      []Card    `json:"deck"`
	Pile      []Card    `json:"pile"`
	Round     int       `json:"round"`
	TurnIndex int       `json:"turnIndex"`
	TurnPhase TurnPhase `json:"turnPhase"`
	State     GameState `json:"state"`
	NumRounds int       `json:"numRounds"`
	Settings  Settings  `json:"settings"`

	// PlayerWentOut is the id of the player who triggered the round-ending
	// go-out, or "" until someone does. Cleared on round advance.
	PlayerWentOut string `json:"playerWentOut"`

	// Events is the append-only log of accepted state transitions.
	Events []Event `json:"events"`

	rng *rand.Rand
}

// NewGame creates a game in Setup with the given opaque id. The seed fixes
// every shuffle the game will perform, keeping games replayable in tests.
func NewGame(id string, seed uint64, settings Settings) *Game {
	return &Game{
		ID:        id,
		NumRounds: DefaultNumRounds,
		State:     StateSetup,
		Settings:  settings,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// HandSizeForRound returns the base hand size for a 0-indexed round.
func HandSizeForRound(round int) int {
	return InitialHandSize + round
}

// MaxDrawable returns the per-turn draw limit under the game's settings.
func (g *Game) MaxDrawable() int {
	if g.Settings.Mining {
		return 3
	}
	return 1
}

// NumDecksNeeded returns the smallest number of 54-card decks that leaves at
// least 20 cards on the table after dealing handSize(round) cards to each of
// numPlayers players.
func NumDecksNeeded(round, numPlayers int) int {
	numCardsHeld := HandSizeForRound(round) * numPlayers

	numDecks := 0
	for numDecks*DeckSize < numCardsHeld+20 {
		numDecks++
	}
	return numDecks
}

// WildForRound returns the wildcard rank for a 0-indexed round: twos are
// wild in round 0, threes in round 1, and so on up through kings in round
// 11. After that no rank is wild.
func WildForRound(round int) Rank {
	if round >= 0 && round < 12 {
		return Rank(round + 2)
	}
	return RankInvalid
}

// CurrentPlayer returns the player whose turn it is, or nil before any
// players have joined.
func (g *Game) CurrentPlayer() *Player {
	if len(g.Players) == 0 || g.TurnIndex >= len(g.Players) {
		return nil
	}
	return g.Players[g.TurnIndex]
}

// FindPlayer returns the player with the given id.
func (g *Game) FindPlayer(playerID string) (*Player, error) {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p, nil
		}
	}
	return nil, reject("you're not in this game")
}

// FindPlayerByToken returns the player holding the given token.
func (g *Game) FindPlayerByToken(token string) (*Player, error) {
	for _, p := range g.Players {
		if p.Token == token {
			return p, nil
		}
	}
	return nil, reject("you're not in this game")
}

// Join seats a player at the table. Players may only join during Setup, and
// ids must be unique within the game.
func (g *Game) Join(player *Player) error {
	if g.State != StateSetup {
		return reject("the game has already started")
	}
	for _, p := range g.Players {
		if p.ID == player.ID {
			return reject("you're already in the game")
		}
	}

	g.Players = append(g.Players, player)
	g.appendEvent(&JoinGameEvent{PlayerID: player.ID, DisplayName: player.DisplayName})
	return nil
}

// Start deals the first round and begins play. Only the owner, the first
// player to have joined, may start the game.
func (g *Game) Start(requesterID string) error {
	if g.State != StateSetup {
		return reject("the game has already started")
	}
	if len(g.Players) == 0 || g.Players[0].ID != requesterID {
		return reject("only the game owner can start the game")
	}

	g.initDeck()
	g.dealCards()
	g.State = StatePlaying
	g.TurnPhase = PhaseDrawing
	g.TurnIndex = 0

	g.appendEvent(&StartGameEvent{})
	return nil
}

// initDeck rebuilds the draw stack from as many full decks as the round
// needs, tags each card with its deck index, and shuffles. The discard pile
// is cleared; dealCards seeds it again.
func (g *Game) initDeck() {
	g.Pile = nil
	g.Deck = nil

	for i := 0; i < NumDecksNeeded(g.Round, len(g.Players)); i++ {
		g.Deck = append(g.Deck, fullDeck(uint8(i))...)
	}

	// Fisher-Yates, driven by the game's seeded source.
	for i := len(g.Deck) - 1; i > 0; i-- {
		j := g.rng.IntN(i + 1)
		g.Deck[i], g.Deck[j] = g.Deck[j], g.Deck[i]
	}
}

// dealCards deals handSize(round) cards to every player, one round-robin
// pass at a time, then flips one card to seed the discard pile. initDeck
// sizes the deck so this cannot run dry; if it somehow does, that is an
// engine bug and the slice access will panic rather than limp on.
func (g *Game) dealCards() {
	for _, p := range g.Players {
		p.Hand = nil
	}

	for i := 0; i < HandSizeForRound(g.Round); i++ {
		for _, p := range g.Players {
			p.Hand = append(p.Hand, g.popDeck())
		}
	}

	g.Pile = append(g.Pile, g.popDeck())
}

// popDeck removes and returns the top card of the draw stack.
func (g *Game) popDeck() Card {
	card := g.Deck[len(g.Deck)-1]
	g.Deck = g.Deck[:len(g.Deck)-1]
	return card
}

// appendEvent stamps the event with its log index and appends it.
func (g *Game) appendEvent(ev Event) {
	ev.setIndex(len(g.Events))
	g.Events = append(g.Events, ev)
}
