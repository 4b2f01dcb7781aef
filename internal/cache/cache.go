// Package cache feeds accepted game events to Redis so an out-of-process
// historian can archive them. Publishing is best effort: a dead Redis never
// blocks or rolls back gameplay.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Rdb is the shared Redis client. Nil when no Redis is configured, in which
// case every publish is a no-op.
var Rdb *redis.Client

// InitRedis connects the shared client and verifies the connection.
func InitRedis(ctx context.Context, addr string) error {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	Rdb = client
	return nil
}

// GameEventRecord is the envelope pushed per accepted event.
type GameEventRecord struct {
	GameID     string          `json:"gameId"`
	EventIndex int             `json:"eventIndex"`
	EventType  string          `json:"eventType"`
	Event      json.RawMessage `json:"event"`
	Timestamp  int64           `json:"timestamp"`
}

// eventsKey is the per-game list the historian drains.
func eventsKey(gameID string) string {
	return fmt.Sprintf("game:%s:events", gameID)
}

// PublishGameEvent appends one event record to the game's Redis list.
func PublishGameEvent(ctx context.Context, rec GameEventRecord) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal event record: %w", err)
	}
	if err := Rdb.RPush(ctx, eventsKey(rec.GameID), data).Err(); err != nil {
		return fmt.Errorf("rpush event %d for game %s: %w", rec.EventIndex, rec.GameID, err)
	}
	return nil
}

// PublishAsync fires PublishGameEvent on its own goroutine with a short
// deadline, logging failures instead of surfacing them.
func PublishAsync(rec GameEventRecord) {
	if Rdb == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := PublishGameEvent(ctx, rec); err != nil {
			logrus.WithFields(logrus.Fields{
				"gameId":     rec.GameID,
				"eventIndex": rec.EventIndex,
				"eventType":  rec.EventType,
			}).WithError(err).Error("failed publishing event to redis")
		}
	}()
}
