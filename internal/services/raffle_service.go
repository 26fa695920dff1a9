package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luxewin/raffle-api/internal/models"
	"github.com/luxewin/raffle-api/internal/payments"
)

const endingSoonWindow = 24 * time.Hour

// RaffleService owns every mutation of the ticket ledger: purchases against
// raffle capacity, the winner draw, and the ending-soon sweep. Handlers stay
// thin and call into here.
type RaffleService struct {
	db       *gorm.DB
	payments payments.Verifier
	events   EventEmitter
}

func NewRaffleService(db *gorm.DB, verifier payments.Verifier, events EventEmitter) *RaffleService {
	return &RaffleService{
		db:       db,
		payments: verifier,
		events:   events,
	}
}

type PurchaseInput struct {
	RaffleID         uuid.UUID
	UserID           uuid.UUID
	Quantity         int
	ClaimedTotal     int64
	PaymentReference string
}

// SubmitPurchase validates and commits a ticket purchase. The capacity check
// and the tickets_sold increment are a single conditional UPDATE inside the
// same transaction that inserts the purchase row, so two submissions that
// would jointly overflow capacity can never both commit. Retrying with the
// same payment reference is safe: an exact replay returns the already
// committed purchase without a second event.
func (s *RaffleService) SubmitPurchase(ctx context.Context, in PurchaseInput) (*models.Purchase, error) {
	db := s.db.WithContext(ctx)

	var raffle models.Raffle
	if err := db.First(&raffle, "id = ?", in.RaffleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRaffleNotFound
		}
		return nil, &TransientError{Err: err}
	}

	// A retried call whose reference we already committed gets the original
	// purchase back, even if the raffle has since filled up or closed.
	if existing, err := s.findByReference(db, in); existing != nil || err != nil {
		return existing, err
	}

	now := time.Now()
	if !raffle.IsActive || !raffle.EndDate.After(now) {
		return nil, ErrRaffleClosed
	}
	if in.Quantity < 1 || raffle.TicketsSold+in.Quantity > raffle.TotalTickets {
		return nil, ErrCapacityExceeded
	}
	if in.ClaimedTotal != int64(in.Quantity)*raffle.TicketPrice {
		return nil, ErrAmountMismatch
	}

	settled, err := s.payments.ConfirmPayment(ctx, in.PaymentReference)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	if !settled {
		return nil, ErrPaymentNotConfirmed
	}

	purchase := &models.Purchase{
		UserID:           in.UserID,
		RaffleID:         in.RaffleID,
		Quantity:         in.Quantity,
		TotalAmount:      in.ClaimedTotal,
		PaymentReference: in.PaymentReference,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// end_date is re-checked here, not just in the precheck: payment
		// confirmation can be slow and the raffle may have ended meanwhile.
		res := tx.Model(&models.Raffle{}).
			Where("id = ? AND is_active = ? AND end_date > ? AND tickets_sold + ? <= total_tickets",
				in.RaffleID, true, time.Now(), in.Quantity).
			UpdateColumn("tickets_sold", gorm.Expr("tickets_sold + ?", in.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost a race since the precheck. Re-read to report the right reason.
			var current models.Raffle
			if err := tx.First(&current, "id = ?", in.RaffleID).Error; err != nil {
				return err
			}
			if !current.IsActive || !current.EndDate.After(time.Now()) {
				return ErrRaffleClosed
			}
			return ErrCapacityExceeded
		}
		return tx.Create(purchase).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Concurrent retry beat us to the insert; the counter update above
		// rolled back with it.
		if existing, rerr := s.findByReference(db, in); existing != nil || rerr != nil {
			return existing, rerr
		}
		return nil, ErrPaymentReferenceInUse
	}
	if err != nil {
		return nil, asServiceError(err)
	}

	s.emitPurchaseConfirmed(ctx, &raffle, purchase)
	return purchase, nil
}

// findByReference resolves a payment reference to an already committed
// purchase. An exact match is an idempotent replay; a mismatch is a reuse and
// gets rejected.
func (s *RaffleService) findByReference(db *gorm.DB, in PurchaseInput) (*models.Purchase, error) {
	var existing models.Purchase
	err := db.First(&existing, "payment_reference = ?", in.PaymentReference).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	if existing.UserID == in.UserID && existing.RaffleID == in.RaffleID &&
		existing.Quantity == in.Quantity && existing.TotalAmount == in.ClaimedTotal {
		return &existing, nil
	}
	return nil, ErrPaymentReferenceInUse
}

// SelectWinner draws exactly one winner for an ended raffle, weighted by
// tickets held. The ledger scan and the winner write share one transaction:
// the draw sees a consistent snapshot, and "set winner if absent" makes the
// whole operation idempotent under concurrent or retried calls.
func (s *RaffleService) SelectWinner(ctx context.Context, raffleID uuid.UUID) (uuid.UUID, error) {
	db := s.db.WithContext(ctx)

	var raffle models.Raffle
	var winnerID uuid.UUID
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&raffle, "id = ?", raffleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRaffleNotFound
			}
			return err
		}
		if raffle.WinnerID != nil {
			return ErrWinnerAlreadySelected
		}
		if time.Now().Before(raffle.EndDate) {
			return ErrRaffleStillOpen
		}

		var purchases []models.Purchase
		if err := tx.Where("raffle_id = ?", raffleID).
			Order("created_at, id").Find(&purchases).Error; err != nil {
			return err
		}

		var total int64
		for _, p := range purchases {
			total += int64(p.Quantity)
		}
		if total == 0 {
			return ErrNoParticipants
		}

		draw, err := randomTicket(total)
		if err != nil {
			return err
		}
		winner, ok := winnerAt(purchases, draw)
		if !ok {
			return ErrNoParticipants
		}

		res := tx.Model(&models.Raffle{}).
			Where("id = ? AND winner_id IS NULL", raffleID).
			Updates(map[string]interface{}{"winner_id": winner, "is_active": false})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrWinnerAlreadySelected
		}
		winnerID = winner
		return nil
	})
	if err != nil {
		return uuid.Nil, asServiceError(err)
	}

	var winner models.User
	if err := db.First(&winner, "id = ?", winnerID).Error; err != nil {
		logger.Warningf("loading winner %s for winner event: %v", winnerID, err)
	}
	s.events.Emit(ctx, EventWinnerSelected, winnerID, map[string]interface{}{
		"full_name":    winner.FullName,
		"raffle_title": raffle.Title,
	})
	return winnerID, nil
}

// NotifyEndingSoon emits one ending-soon event per distinct participant if the
// raffle ends within the next 24 hours. The notified_ending flag is claimed
// with a conditional update first, so repeated invocations inside the window
// emit nothing new.
func (s *RaffleService) NotifyEndingSoon(ctx context.Context, raffleID uuid.UUID) error {
	db := s.db.WithContext(ctx)

	var raffle models.Raffle
	if err := db.First(&raffle, "id = ?", raffleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRaffleNotFound
		}
		return &TransientError{Err: err}
	}

	now := time.Now()
	if now.After(raffle.EndDate) || raffle.EndDate.Sub(now) > endingSoonWindow {
		return nil
	}

	// The flag claim and the participant enumeration share one transaction:
	// if the enumeration fails the claim rolls back with it, and a retry can
	// still notify.
	var participants []models.User
	claimed := false
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Raffle{}).
			Where("id = ? AND notified_ending = ?", raffleID, false).
			UpdateColumn("notified_ending", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		claimed = true

		var participantIDs []uuid.UUID
		if err := tx.Model(&models.Purchase{}).
			Where("raffle_id = ?", raffleID).
			Distinct().Pluck("user_id", &participantIDs).Error; err != nil {
			return err
		}
		if len(participantIDs) == 0 {
			return nil
		}
		return tx.Where("id IN ?", participantIDs).Find(&participants).Error
	})
	if err != nil {
		return &TransientError{Err: err}
	}
	if !claimed {
		return nil
	}

	for _, user := range participants {
		s.events.Emit(ctx, EventRaffleEndingSoon, user.ID, map[string]interface{}{
			"full_name":    user.FullName,
			"raffle_title": raffle.Title,
			"end_time":     raffle.EndDate.UTC().Format(time.RFC3339),
		})
	}
	return nil
}

// SweepEndingSoon finds active raffles entering their last 24 hours and
// notifies their participants. Run periodically from a cron job.
func (s *RaffleService) SweepEndingSoon(ctx context.Context) {
	now := time.Now()
	var raffles []models.Raffle
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND notified_ending = ? AND end_date > ? AND end_date <= ?",
			true, false, now, now.Add(endingSoonWindow)).
		Find(&raffles).Error
	if err != nil {
		logger.Errorf("ending-soon sweep query failed: %v", err)
		return
	}

	for _, raffle := range raffles {
		if err := s.NotifyEndingSoon(ctx, raffle.ID); err != nil {
			logger.Errorf("ending-soon notify failed for raffle %s: %v", raffle.ID, err)
		}
	}
}

func (s *RaffleService) emitPurchaseConfirmed(ctx context.Context, raffle *models.Raffle, purchase *models.Purchase) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", purchase.UserID).Error; err != nil {
		logger.Warningf("loading buyer %s for purchase event: %v", purchase.UserID, err)
	}
	s.events.Emit(ctx, EventPurchaseConfirmed, purchase.UserID, map[string]interface{}{
		"full_name":    user.FullName,
		"raffle_title": raffle.Title,
		"quantity":     purchase.Quantity,
		"total_amount": purchase.TotalAmount,
	})
}

// asServiceError passes our sentinels through and wraps anything else as
// transient storage trouble.
func asServiceError(err error) error {
	switch {
	case errors.Is(err, ErrRaffleNotFound),
		errors.Is(err, ErrRaffleClosed),
		errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrAmountMismatch),
		errors.Is(err, ErrPaymentNotConfirmed),
		errors.Is(err, ErrWinnerAlreadySelected),
		errors.Is(err, ErrRaffleStillOpen),
		errors.Is(err, ErrNoParticipants),
		errors.Is(err, ErrPaymentReferenceInUse),
		errors.Is(err, ErrRaffleLocked):
		return err
	default:
		return &TransientError{Err: err}
	}
}
