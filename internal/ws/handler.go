// Package ws exposes games over WebSockets. A client connects with a game
// id and player token, sends action frames, and receives the game's event
// stream plus a private view after each of its accepted actions.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/tfritzy/AcesCore/engine"
	"github.com/tfritzy/AcesCore/internal/game"
)

// actionFrame is one request from a client.
type actionFrame struct {
	Action string        `json:"action"`
	Card   *engine.Card  `json:"card,omitempty"` // discard
	Hand   []engine.Card `json:"hand,omitempty"` // goOut
}

// errorFrame reports a rejected or failed action. The connection stays
// open; rule rejections are part of normal play.
type errorFrame struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
	Rule   bool   `json:"rule"` // true when the reason is a game rule, not a server fault
}

// viewFrame carries a player's private projection after an accepted action.
type viewFrame struct {
	Type string          `json:"type"`
	View game.PlayerView `json:"view"`
}

type conn struct {
	sock   *websocket.Conn
	gameID string
	send   chan []byte
}

// Handler upgrades connections and routes action frames to the Manager. It
// doubles as the Manager's broadcast sink.
type Handler struct {
	manager *game.Manager

	mu    sync.Mutex
	conns map[string]map[*conn]struct{}
}

func NewHandler(manager *game.Manager) *Handler {
	h := &Handler{
		manager: manager,
		conns:   make(map[string]map[*conn]struct{}),
	}
	manager.BroadcastFn = h.Broadcast
	return h
}

// Broadcast fans one accepted event out to every connection watching the
// game. Slow clients drop frames rather than stalling the game.
func (h *Handler) Broadcast(gameID string, ev engine.Event) {
	data, err := engine.EncodeEvent(ev)
	if err != nil {
		logrus.WithFields(logrus.Fields{"gameId": gameID, "eventType": ev.Kind()}).
			WithError(err).Error("failed encoding event for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns[gameID] {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ServeHTTP upgrades the connection. The game id and token ride the query
// string; the token is re-verified on every action by the manager.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game")
	token := r.URL.Query().Get("token")
	if gameID == "" || token == "" {
		http.Error(w, "game and token query parameters are required", http.StatusBadRequest)
		return
	}

	sock, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}

	c := &conn{sock: sock, gameID: gameID, send: make(chan []byte, 64)}
	h.register(c)
	defer h.unregister(c)

	logrus.WithField("gameId", gameID).Info("client connected")

	ctx := r.Context()
	go c.writeLoop(ctx)

	// Send the initial view so a reconnecting client catches up.
	h.sendView(ctx, c, gameID, token)

	for {
		_, data, err := sock.Read(ctx)
		if err != nil {
			break
		}
		var frame actionFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.sendError(c, "malformed action frame", false)
			continue
		}
		h.dispatch(ctx, c, gameID, token, frame)
	}

	logrus.WithField("gameId", gameID).Info("client disconnected")
}

func (h *Handler) dispatch(ctx context.Context, c *conn, gameID, token string, frame actionFrame) {
	var err error
	switch frame.Action {
	case "start":
		err = h.manager.StartGame(gameID, token)
	case "drawFromDeck":
		_, err = h.manager.DrawFromDeck(gameID, token)
	case "drawFromPile":
		_, err = h.manager.DrawFromPile(gameID, token)
	case "discard":
		if frame.Card == nil {
			h.sendError(c, "discard needs a card", false)
			return
		}
		err = h.manager.Discard(gameID, token, frame.Card.Kind)
	case "goOut":
		err = h.manager.GoOut(gameID, token, frame.Hand)
	case "endTurn":
		err = h.manager.EndTurn(gameID, token)
	case "view":
		h.sendView(ctx, c, gameID, token)
		return
	default:
		h.sendError(c, "unknown action "+frame.Action, false)
		return
	}

	if err != nil {
		var ruleErr *engine.RuleError
		h.sendError(c, err.Error(), errors.As(err, &ruleErr))
		return
	}
	h.sendView(ctx, c, gameID, token)
}

func (h *Handler) sendView(ctx context.Context, c *conn, gameID, token string) {
	view, err := h.manager.View(gameID, token)
	if err != nil {
		h.sendError(c, err.Error(), false)
		return
	}
	data, err := json.Marshal(viewFrame{Type: "view", View: view})
	if err != nil {
		logrus.WithField("gameId", gameID).WithError(err).Error("failed encoding view frame")
		return
	}
	c.enqueue(data)
}

func (h *Handler) sendError(c *conn, reason string, rule bool) {
	data, err := json.Marshal(errorFrame{Type: "error", Reason: reason, Rule: rule})
	if err != nil {
		return
	}
	c.enqueue(data)
}

func (h *Handler) register(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[c.gameID] == nil {
		h.conns[c.gameID] = make(map[*conn]struct{})
	}
	h.conns[c.gameID][c] = struct{}{}
}

func (h *Handler) unregister(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns[c.gameID], c)
	if len(h.conns[c.gameID]) == 0 {
		delete(h.conns, c.gameID)
	}
}

func (c *conn) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

// writeLoop drains the send queue until the request context ends.
func (c *conn) writeLoop(ctx context.Context) {
	defer c.sock.Close(websocket.StatusNormalClosure, "bye")
	for {
		select {
		case data := <-c.send:
			if err := c.sock.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
