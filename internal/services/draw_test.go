package services

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxewin/raffle-api/internal/models"
)

func TestWinnerAt(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	purchases := []models.Purchase{
		{UserID: alice, Quantity: 1},
		{UserID: bob, Quantity: 9},
	}

	t.Run("covers boundaries", func(t *testing.T) {
		winner, ok := winnerAt(purchases, 0)
		require.True(t, ok)
		assert.Equal(t, alice, winner)

		winner, ok = winnerAt(purchases, 1)
		require.True(t, ok)
		assert.Equal(t, bob, winner)

		winner, ok = winnerAt(purchases, 9)
		require.True(t, ok)
		assert.Equal(t, bob, winner)

		_, ok = winnerAt(purchases, 10)
		assert.False(t, ok)
	})

	t.Run("empty ledger has no winner", func(t *testing.T) {
		_, ok := winnerAt(nil, 0)
		assert.False(t, ok)
	})
}

// A buyer holding 9 of 10 tickets should win about 90% of draws, whether the
// tickets came from one purchase or many.
func TestWinnerDistribution(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	cases := map[string][]models.Purchase{
		"one purchase of nine": {
			{UserID: alice, Quantity: 1},
			{UserID: bob, Quantity: 9},
		},
		"nine purchases of one": {
			{UserID: alice, Quantity: 1},
			{UserID: bob, Quantity: 1},
			{UserID: bob, Quantity: 1},
			{UserID: bob, Quantity: 1},
			{UserID: bob, Quantity: 1},
			{UserID: bob, Quantity: 1},
			{UserID: bob, Quantity: 1},
			{UserID: bob, Quantity: 1},
			{UserID: bob, Quantity: 1},
			{UserID: bob, Quantity: 1},
		},
	}

	for name, purchases := range cases {
		t.Run(name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			const trials = 10000

			bobWins := 0
			for i := 0; i < trials; i++ {
				winner, ok := winnerAt(purchases, rng.Int63n(10))
				require.True(t, ok)
				if winner == bob {
					bobWins++
				}
			}

			ratio := float64(bobWins) / trials
			assert.InDelta(t, 0.9, ratio, 0.03)
		})
	}
}

func TestRandomTicket(t *testing.T) {
	for i := 0; i < 100; i++ {
		n, err := randomTicket(7)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(0))
		assert.Less(t, n, int64(7))
	}
}
