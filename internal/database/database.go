// Package database persists game snapshots and final results to Postgres.
// Writes are fire-and-forget from the orchestrator's point of view; the
// rules engine never touches storage.
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// DB is the shared connection pool. Nil when no Postgres is configured, in
// which case every write is a no-op.
var DB *pgxpool.Pool

// Connect opens the pool and verifies the connection.
func Connect(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping postgres: %w", err)
	}
	DB = pool
	return nil
}

// UpsertGameSnapshot stores the latest snapshot of a game, keyed by game id.
// Called per completed round so a crashed server can show final standings.
func UpsertGameSnapshot(gameID string, round int, snapshot any) {
	if DB == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		data, err := json.Marshal(snapshot)
		if err != nil {
			logrus.WithField("gameId", gameID).WithError(err).Error("failed marshaling game snapshot")
			return
		}
		_, err = DB.Exec(ctx, `
			INSERT INTO game_snapshots (game_id, round, snapshot, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (game_id)
			DO UPDATE SET round = $2, snapshot = $3, updated_at = now()`,
			gameID, round, data)
		if err != nil {
			logrus.WithField("gameId", gameID).WithError(err).Error("failed upserting game snapshot")
		}
	}()
}

// PlayerResult is one row of a finished game's standings.
type PlayerResult struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
}

// StoreFinalResult records a finished game's standings.
func StoreFinalResult(gameID string, results []PlayerResult) {
	if DB == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		data, err := json.Marshal(results)
		if err != nil {
			logrus.WithField("gameId", gameID).WithError(err).Error("failed marshaling final results")
			return
		}
		_, err = DB.Exec(ctx, `
			INSERT INTO game_results (game_id, results, finished_at)
			VALUES ($1, $2, now())
			ON CONFLICT (game_id) DO NOTHING`,
			gameID, data)
		if err != nil {
			logrus.WithField("gameId", gameID).WithError(err).Error("failed storing final results")
		}
	}()
}
