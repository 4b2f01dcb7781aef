package ids

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGameCodeShape(t *testing.T) {
	g := New(nil)
	for i := 0; i < 100; i++ {
		code := g.GameCode()
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= 'A' && r <= 'Z', "code %q has char %q", code, r)
		}
	}
}

func TestGameCodeDeterministicWithSeed(t *testing.T) {
	g1 := New(rand.New(rand.NewPCG(1, 2)))
	g2 := New(rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, g1.GameCode(), g2.GameCode())
}

func TestPrefixedID(t *testing.T) {
	g := New(nil)
	id := g.PrefixedID("plyr")
	assert.True(t, strings.HasPrefix(id, "plyr_"), "id %q", id)
	assert.Len(t, id, len("plyr_")+16)
	assert.NotEqual(t, id, g.PrefixedID("plyr"))
}
