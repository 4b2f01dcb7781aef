// Package game orchestrates live games: it owns the registry of in-memory
// game aggregates, serializes actions per game, resolves player tokens, and
// fans accepted events out to connected clients and the Redis historian.
package game

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tfritzy/AcesCore/engine"
	"github.com/tfritzy/AcesCore/internal/auth"
	"github.com/tfritzy/AcesCore/internal/cache"
	"github.com/tfritzy/AcesCore/internal/database"
	"github.com/tfritzy/AcesCore/internal/ids"
)

// BroadcastFn delivers one accepted event to every client watching a game.
type BroadcastFn func(gameID string, ev engine.Event)

// managedGame pairs a game aggregate with the mutex that serializes every
// action against it. Games are independent; only their own lock is ever
// held.
type managedGame struct {
	mu   sync.Mutex
	game *engine.Game

	// published counts the events already fanned out, so each action
	// broadcasts exactly the events it appended.
	published int
}

// Manager is the registry of live games.
type Manager struct {
	mu    sync.Mutex
	games map[string]*managedGame

	ids       *ids.Generator
	signer    *auth.Signer
	numRounds int

	// BroadcastFn receives every accepted event. Nil is allowed; events are
	// still recorded in the game's log.
	BroadcastFn BroadcastFn
}

// NewManager builds a Manager issuing tokens with signer and codes with gen.
func NewManager(gen *ids.Generator, signer *auth.Signer, numRounds int) *Manager {
	return &Manager{
		games:     make(map[string]*managedGame),
		ids:       gen,
		signer:    signer,
		numRounds: numRounds,
	}
}

// CreateGame registers a fresh game and returns its join code.
func (m *Manager) CreateGame(settings engine.Settings) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var code string
	for try := 0; ; try++ {
		code = m.ids.GameCode()
		if _, taken := m.games[code]; !taken {
			break
		}
		if try >= 25 {
			return "", fmt.Errorf("could not find a free game code")
		}
	}

	g := engine.NewGame(code, uint64(time.Now().UnixNano()), settings)
	g.NumRounds = m.numRounds
	m.games[code] = &managedGame{game: g}

	logrus.WithFields(logrus.Fields{"gameId": code, "mining": settings.Mining}).Info("game created")
	return code, nil
}

// lookup fetches a registered game.
func (m *Manager) lookup(gameID string) (*managedGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mg, ok := m.games[gameID]
	if !ok {
		return nil, fmt.Errorf("no game with id %s", gameID)
	}
	return mg, nil
}

// resolve verifies a player token against a game and returns the player id
// it names.
func (m *Manager) resolve(gameID, token string) (string, error) {
	claims, err := m.signer.VerifyPlayerToken(token)
	if err != nil {
		return "", fmt.Errorf("bad player token: %w", err)
	}
	if claims.GameID != gameID {
		return "", fmt.Errorf("token is for game %s, not %s", claims.GameID, gameID)
	}
	return claims.PlayerID, nil
}

// JoinGame seats a new player and returns their id and token.
func (m *Manager) JoinGame(gameID, displayName string) (playerID, token string, err error) {
	mg, err := m.lookup(gameID)
	if err != nil {
		return "", "", err
	}

	playerID = m.ids.PrefixedID("plyr")
	token, err = m.signer.IssuePlayerToken(gameID, playerID)
	if err != nil {
		return "", "", fmt.Errorf("issue player token: %w", err)
	}

	mg.mu.Lock()
	defer mg.mu.Unlock()
	if err := mg.game.Join(engine.NewPlayer(playerID, token, displayName)); err != nil {
		return "", "", err
	}
	m.fanOut(mg)

	logrus.WithFields(logrus.Fields{"gameId": gameID, "playerId": playerID, "displayName": displayName}).Info("player joined")
	return playerID, token, nil
}

// StartGame begins play. Only the owner's token is accepted.
func (m *Manager) StartGame(gameID, token string) error {
	return m.withPlayer(gameID, token, "startGame", func(mg *managedGame, playerID string) error {
		return mg.game.Start(playerID)
	})
}

// DrawFromDeck draws the top card of the draw stack for the token's player.
func (m *Manager) DrawFromDeck(gameID, token string) (card engine.Card, err error) {
	err = m.withPlayer(gameID, token, "drawFromDeck", func(mg *managedGame, playerID string) error {
		card, err = mg.game.DrawFromDeck(playerID)
		return err
	})
	return card, err
}

// DrawFromPile draws the pile's face-up card for the token's player.
func (m *Manager) DrawFromPile(gameID, token string) (card engine.Card, err error) {
	err = m.withPlayer(gameID, token, "drawFromPile", func(mg *managedGame, playerID string) error {
		card, err = mg.game.DrawFromPile(playerID)
		return err
	})
	return card, err
}

// Discard discards a card by kind for the token's player.
func (m *Manager) Discard(gameID, token string, kind engine.Kind) error {
	return m.withPlayer(gameID, token, "discard", func(mg *managedGame, playerID string) error {
		_, err := mg.game.Discard(playerID, kind)
		return err
	})
}

// GoOut submits the token player's claim that claimedHand fully melds.
func (m *Manager) GoOut(gameID, token string, claimedHand []engine.Card) error {
	return m.withPlayer(gameID, token, "goOut", func(mg *managedGame, playerID string) error {
		return mg.game.GoOut(playerID, claimedHand)
	})
}

// EndTurn passes the token player's turn.
func (m *Manager) EndTurn(gameID, token string) error {
	return m.withPlayer(gameID, token, "endTurn", func(mg *managedGame, playerID string) error {
		return mg.game.EndTurn(playerID)
	})
}

// View projects the game for the token's player.
func (m *Manager) View(gameID, token string) (PlayerView, error) {
	mg, err := m.lookup(gameID)
	if err != nil {
		return PlayerView{}, err
	}
	playerID, err := m.resolve(gameID, token)
	if err != nil {
		return PlayerView{}, err
	}

	mg.mu.Lock()
	defer mg.mu.Unlock()
	return viewFor(mg.game, playerID)
}

// withPlayer runs one action under the game's lock with the token resolved,
// then fans out whatever events the action appended. Rejected actions are
// logged at debug level; they are routine, not failures.
func (m *Manager) withPlayer(gameID, token, action string, fn func(mg *managedGame, playerID string) error) error {
	mg, err := m.lookup(gameID)
	if err != nil {
		return err
	}
	playerID, err := m.resolve(gameID, token)
	if err != nil {
		return err
	}

	mg.mu.Lock()
	defer mg.mu.Unlock()

	if err := fn(mg, playerID); err != nil {
		logrus.WithFields(logrus.Fields{"gameId": gameID, "playerId": playerID, "action": action}).
			WithError(err).Debug("action rejected")
		return err
	}
	m.fanOut(mg)
	return nil
}

// fanOut delivers every not-yet-published event to the broadcast callback
// and the Redis historian, and triggers persistence on round and game
// boundaries. Assumes the game's lock is held.
func (m *Manager) fanOut(mg *managedGame) {
	g := mg.game
	for ; mg.published < len(g.Events); mg.published++ {
		ev := g.Events[mg.published]

		if m.BroadcastFn != nil {
			m.BroadcastFn(g.ID, ev)
		}

		if raw, err := engine.EncodeEvent(ev); err != nil {
			logrus.WithFields(logrus.Fields{"gameId": g.ID, "eventType": ev.Kind()}).
				WithError(err).Error("failed encoding event for historian")
		} else {
			cache.PublishAsync(cache.GameEventRecord{
				GameID:     g.ID,
				EventIndex: ev.Index(),
				EventType:  string(ev.Kind()),
				Event:      json.RawMessage(raw),
				Timestamp:  time.Now().UnixMilli(),
			})
		}

		switch ev.(type) {
		case *engine.AdvanceRoundEvent:
			database.UpsertGameSnapshot(g.ID, g.Round, snapshotOf(g))
		case *engine.GameEndEvent:
			database.StoreFinalResult(g.ID, resultsOf(g))
			logrus.WithField("gameId", g.ID).Info("game finished")
		}
	}
}

// snapshotOf captures the public standings persisted per round.
func snapshotOf(g *engine.Game) map[string]any {
	players := make([]map[string]any, len(g.Players))
	for i, p := range g.Players {
		players[i] = map[string]any{
			"id":            p.ID,
			"displayName":   p.DisplayName,
			"score":         p.Score,
			"scorePerRound": p.ScorePerRound,
		}
	}
	return map[string]any{
		"round":   g.Round,
		"state":   g.State.String(),
		"players": players,
	}
}

func resultsOf(g *engine.Game) []database.PlayerResult {
	results := make([]database.PlayerResult, len(g.Players))
	for i, p := range g.Players {
		results[i] = database.PlayerResult{
			PlayerID:    p.ID,
			DisplayName: p.DisplayName,
			Score:       p.Score,
		}
	}
	return results
}
