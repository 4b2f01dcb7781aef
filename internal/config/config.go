// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the server needs to come up. RedisAddr and
// PostgresDSN are optional: leaving one empty disables that side channel and
// the server runs in-memory only.
type Config struct {
	ListenAddr  string // HTTP/WebSocket listen address, e.g. ":8080".
	RedisAddr   string // Redis host:port for the event historian. Optional.
	PostgresDSN string // Postgres connection string for snapshots. Optional.
	JWTSecret   string // HMAC secret for player tokens.
	NumRounds   int    // Rounds per game.
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("could not read .env file")
	}

	return Config{
		ListenAddr:  getenv("LISTEN_ADDR", ":8080"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		JWTSecret:   getenv("JWT_SECRET", "dev-secret"),
		NumRounds:   getenvInt("NUM_ROUNDS", 10),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.WithField("key", key).WithError(err).Warnf("ignoring bad value %q", v)
		return fallback
	}
	return n
}
