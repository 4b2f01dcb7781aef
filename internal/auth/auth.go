// Package auth signs and verifies the opaque player tokens that bind a
// player id to a game. The rules engine never sees these; transport resolves
// a token to a player before any action reaches a game.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PlayerClaims is the payload of a player token.
type PlayerClaims struct {
	PlayerID string `json:"playerId"`
	GameID   string `json:"gameId"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 player tokens with a shared secret.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// IssuePlayerToken returns a signed token tying playerID to gameID.
func (s *Signer) IssuePlayerToken(gameID, playerID string) (string, error) {
	claims := PlayerClaims{
		PlayerID: playerID,
		GameID:   gameID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifyPlayerToken parses and validates a token, returning its claims.
func (s *Signer) VerifyPlayerToken(token string) (*PlayerClaims, error) {
	claims := &PlayerClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
