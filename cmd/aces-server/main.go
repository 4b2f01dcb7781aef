package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tfritzy/AcesCore/engine"
	"github.com/tfritzy/AcesCore/internal/auth"
	"github.com/tfritzy/AcesCore/internal/cache"
	"github.com/tfritzy/AcesCore/internal/config"
	"github.com/tfritzy/AcesCore/internal/database"
	gamesvc "github.com/tfritzy/AcesCore/internal/game"
	"github.com/tfritzy/AcesCore/internal/ids"
	"github.com/tfritzy/AcesCore/internal/ws"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.RedisAddr != "" {
		if err := cache.InitRedis(ctx, cfg.RedisAddr); err != nil {
			logrus.WithError(err).Warn("redis unavailable, event historian disabled")
		} else {
			logrus.WithField("addr", cfg.RedisAddr).Info("redis connected")
		}
	}
	if cfg.PostgresDSN != "" {
		if err := database.Connect(ctx, cfg.PostgresDSN); err != nil {
			logrus.WithError(err).Warn("postgres unavailable, snapshots disabled")
		} else {
			logrus.Info("postgres connected")
		}
	}

	manager := gamesvc.NewManager(ids.New(nil), auth.NewSigner(cfg.JWTSecret), cfg.NumRounds)
	handler := ws.NewHandler(manager)

	mux := http.NewServeMux()
	mux.Handle("/ws", handler)
	mux.HandleFunc("POST /games", createGame(manager))
	mux.HandleFunc("POST /games/{id}/join", joinGame(manager))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	logrus.WithField("addr", cfg.ListenAddr).Info("server listening")
	if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

// createGame handles POST /games: {"mining": bool} -> {"gameId": code}.
func createGame(manager *gamesvc.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Mining bool `json:"mining"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		gameID, err := manager.CreateGame(engine.Settings{Mining: req.Mining})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"gameId": gameID})
	}
}

// joinGame handles POST /games/{id}/join: {"displayName": string} ->
// {"playerId": id, "token": jwt}.
func joinGame(manager *gamesvc.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			DisplayName string `json:"displayName"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DisplayName == "" {
			http.Error(w, "displayName is required", http.StatusBadRequest)
			return
		}

		playerID, token, err := manager.JoinGame(r.PathValue("id"), req.DisplayName)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]string{"playerId": playerID, "token": token})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed writing response")
	}
}
