// Package ids generates the external identifiers the service hands out:
// six-letter game codes players share out of band, and prefixed opaque ids
// for everything else.
package ids

import (
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// Generator produces ids from an injectable source so tests can pin the
// sequence.
type Generator struct {
	rng *rand.Rand
}

// New returns a Generator driven by rng, or by a freshly seeded source when
// rng is nil.
func New(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng}
}

// GameCode returns a six-letter A-Z code. Codes are not guaranteed unique;
// the caller retries on collision.
func (g *Generator) GameCode() string {
	var sb strings.Builder
	for i := 0; i < 6; i++ {
		sb.WriteByte(byte('A' + g.rng.IntN(26)))
	}
	return sb.String()
}

// PrefixedID returns an opaque id of the form "prefix_xxxx" derived from a
// UUID, halved to keep urls short.
func (g *Generator) PrefixedID(prefix string) string {
	key := strings.ReplaceAll(uuid.New().String(), "-", "")
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteByte('_')
	for i := 0; i < len(key); i += 2 {
		sb.WriteByte(key[i])
	}
	return sb.String()
}
