package deck

import (
	"fmt"
	"math/rand/v2"

	"github.com/arcanaland/tarotluna/internal/card"
	"github.com/arcanaland/tarotluna/internal/common"
)

// ReversalProbability is the chance of each drawn card being reversed
const ReversalProbability = 0.3

// Draw returns count cards from a shuffled copy of cards.
// Orientation is chosen independently per card. The input is not modified.
func Draw(count int, cards []card.Definition, rng *rand.Rand) ([]card.Drawn, error) {
	if count < 1 || count > len(cards) {
		return nil, fmt.Errorf("%w: cannot draw %d cards from a deck of %d", common.ErrInvalidArgument, count, len(cards))
	}

	seen := make(map[int]struct{}, len(cards))
	for _, c := range cards {
		if _, ok := seen[c.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate card id %d", common.ErrInvalidArgument, c.ID)
		}
		seen[c.ID] = struct{}{}
	}

	shuffled := make([]card.Definition, len(cards))
	copy(shuffled, cards)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	hand := make([]card.Drawn, count)
	for i := range hand {
		hand[i] = card.Drawn{
			Definition: shuffled[i],
			IsReversed: rng.Float64() < ReversalProbability,
		}
	}
	return hand, nil
}
