// Package deck owns the shared card catalog and the draw/discard cycle.
package deck

import (
	"github.com/google/uuid"

	"woodland/internal/game"
)

// Size is the number of cards in circulation for the whole game.
const Size = 54

// Source supplies uniform random integers in [0, n).
type Source interface {
	IntN(n int) int
}

// New instantiates the catalog, giving every card a fresh identity.
func New() []game.Card {
	cards := make([]game.Card, 0, len(catalog))
	for _, def := range catalog {
		c := def
		c.ID = uuid.NewString()
		cards = append(cards, c)
	}
	return cards
}

// Shuffle permutes cards in place with Fisher-Yates.
func Shuffle(cards []game.Card, rng Source) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Draw pops up to count cards from the tail of the draw pile. When the draw
// pile runs out the discard pile is shuffled into it. If both piles are empty
// fewer cards are returned; cards are never invented.
func Draw(drawPile, discardPile []game.Card, count int, rng Source) (drawn, newDraw, newDiscard []game.Card) {
	for i := 0; i < count; i++ {
		if len(drawPile) == 0 {
			if len(discardPile) == 0 {
				break
			}
			drawPile = append([]game.Card(nil), discardPile...)
			discardPile = nil
			Shuffle(drawPile, rng)
		}
		last := len(drawPile) - 1
		drawn = append(drawn, drawPile[last])
		drawPile = drawPile[:last]
	}
	return drawn, drawPile, discardPile
}
