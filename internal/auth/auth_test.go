package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	s := NewSigner("test-secret")
	token, err := s.IssuePlayerToken("ABCDEF", "plyr_1")
	require.NoError(t, err)

	claims, err := s.VerifyPlayerToken(token)
	require.NoError(t, err)
	assert.Equal(t, "plyr_1", claims.PlayerID)
	assert.Equal(t, "ABCDEF", claims.GameID)
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := NewSigner("secret-a").IssuePlayerToken("ABCDEF", "plyr_1")
	require.NoError(t, err)

	_, err = NewSigner("secret-b").VerifyPlayerToken(token)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	_, err := NewSigner("secret").VerifyPlayerToken("not.a.token")
	assert.Error(t, err)
}
