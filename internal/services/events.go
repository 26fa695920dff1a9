package services

import (
	"context"

	"github.com/google/uuid"
)

// Event kinds delivered to participants. Delivery is someone else's problem:
// the service emits and moves on.
const (
	EventWelcome           = "welcome"
	EventPurchaseConfirmed = "purchase_confirmed"
	EventRaffleEndingSoon  = "raffle_ending_soon"
	EventWinnerSelected    = "winner_selected"
)

// EventEmitter is fire-and-forget. Implementations must not block the caller
// on delivery and must swallow (log) their own failures.
type EventEmitter interface {
	Emit(ctx context.Context, kind string, userID uuid.UUID, payload map[string]interface{})
}
