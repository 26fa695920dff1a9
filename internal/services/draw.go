package services

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/luxewin/raffle-api/internal/models"
)

// randomTicket draws a uniform ticket index in [0, total). crypto/rand is
// deliberate: a raffle draw must be unpredictable to anyone who could profit
// from biasing it, and rand.Int rejection-samples so the result is unbiased.
func randomTicket(total int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(total))
	if err != nil {
		return 0, fmt.Errorf("drawing random ticket: %w", err)
	}
	return n.Int64(), nil
}

// winnerAt walks purchases in ledger order accumulating quantities and returns
// the owner of the purchase covering the drawn ticket index. Odds are
// proportional to tickets held, regardless of how many purchase records they
// are spread across. Purchases must already be in a fixed deterministic order.
func winnerAt(purchases []models.Purchase, draw int64) (uuid.UUID, bool) {
	var cumulative int64
	for _, p := range purchases {
		cumulative += int64(p.Quantity)
		if draw < cumulative {
			return p.UserID, true
		}
	}
	return uuid.Nil, false
}
