package deck

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"woodland/internal/game"
)

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

func TestNewHasFixedComposition(t *testing.T) {
	cards := New()
	require.Len(t, cards, Size)

	byType := map[game.CardType]int{}
	ids := map[string]bool{}
	for _, c := range cards {
		byType[c.Type]++
		assert.NotEmpty(t, c.ID)
		assert.False(t, ids[c.ID], "duplicate id %s", c.ID)
		ids[c.ID] = true
	}
	assert.Equal(t, 8, byType[game.CardAmbush])
	assert.Equal(t, 4, byType[game.CardDominance])
	assert.Equal(t, 3, byType[game.CardFavor])
}

func TestNewGivesFreshIdentities(t *testing.T) {
	a, b := New(), New()
	for i := range a {
		assert.NotEqual(t, a[i].ID, b[i].ID)
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	cards := New()
	before := map[string]int{}
	for _, c := range cards {
		before[c.ID]++
	}
	Shuffle(cards, seeded())
	require.Len(t, cards, Size)
	for _, c := range cards {
		before[c.ID]--
	}
	for id, n := range before {
		assert.Zero(t, n, "card %s count changed", id)
	}
}

func TestShuffleIsRoughlyUniform(t *testing.T) {
	rng := seeded()
	counts := map[string]int{}
	const rounds = 6000
	for i := 0; i < rounds; i++ {
		cards := []game.Card{{ID: "a"}, {ID: "b"}, {ID: "c"}}
		Shuffle(cards, rng)
		counts[cards[0].ID+cards[1].ID+cards[2].ID]++
	}
	require.Len(t, counts, 6)
	for perm, n := range counts {
		assert.InDelta(t, rounds/6, n, 150, "permutation %s", perm)
	}
}

func TestDrawFromTail(t *testing.T) {
	pile := []game.Card{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	drawn, rest, discard := Draw(pile, nil, 2, seeded())
	require.Len(t, drawn, 2)
	assert.Equal(t, "3", drawn[0].ID)
	assert.Equal(t, "2", drawn[1].ID)
	assert.Len(t, rest, 1)
	assert.Empty(t, discard)
}

func TestDrawReshufflesDiscard(t *testing.T) {
	pile := []game.Card{{ID: "1"}}
	discard := []game.Card{{ID: "2"}, {ID: "3"}, {ID: "4"}}
	drawn, rest, newDiscard := Draw(pile, discard, 3, seeded())
	require.Len(t, drawn, 3)
	assert.Equal(t, "1", drawn[0].ID)
	assert.Len(t, rest, 1)
	assert.Empty(t, newDiscard)
	// the caller's discard slice is not reordered in place
	assert.Equal(t, "2", discard[0].ID)
}

func TestDrawBeyondCirculation(t *testing.T) {
	pile := []game.Card{{ID: "1"}, {ID: "2"}}
	discard := []game.Card{{ID: "3"}}
	drawn, rest, newDiscard := Draw(pile, discard, 10, seeded())
	assert.Len(t, drawn, 3)
	assert.Empty(t, rest)
	assert.Empty(t, newDiscard)
}

func TestDrawFromNothing(t *testing.T) {
	drawn, rest, discard := Draw(nil, nil, 3, seeded())
	assert.Empty(t, drawn)
	assert.Empty(t, rest)
	assert.Empty(t, discard)
}
