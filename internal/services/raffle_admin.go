package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luxewin/raffle-api/internal/models"
)

type RaffleInput struct {
	Title        string
	Description  string
	TicketPrice  int64
	TotalTickets int
	StartDate    time.Time
	EndDate      time.Time
}

type RaffleUpdate struct {
	Title        *string
	Description  *string
	TicketPrice  *int64
	TotalTickets *int
	StartDate    *time.Time
	EndDate      *time.Time
	IsActive     *bool
}

var ErrInvalidRaffle = errors.New("invalid raffle definition")

func (s *RaffleService) CreateRaffle(ctx context.Context, in RaffleInput) (*models.Raffle, error) {
	if in.TotalTickets < 1 || in.TicketPrice < 0 || !in.EndDate.After(in.StartDate) {
		return nil, ErrInvalidRaffle
	}

	raffle := &models.Raffle{
		Title:        in.Title,
		Description:  in.Description,
		TicketPrice:  in.TicketPrice,
		TotalTickets: in.TotalTickets,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(raffle).Error; err != nil {
		return nil, &TransientError{Err: err}
	}
	return raffle, nil
}

// UpdateRaffle applies a partial update. Once any purchase exists the terms
// buyers bought under are frozen: capacity, price and end date can no longer
// change.
func (s *RaffleService) UpdateRaffle(ctx context.Context, raffleID uuid.UUID, in RaffleUpdate) (*models.Raffle, error) {
	db := s.db.WithContext(ctx)

	var raffle models.Raffle
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&raffle, "id = ?", raffleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRaffleNotFound
			}
			return err
		}

		touchesTerms := in.TicketPrice != nil || in.TotalTickets != nil || in.EndDate != nil
		if touchesTerms {
			var sold int64
			if err := tx.Model(&models.Purchase{}).Where("raffle_id = ?", raffleID).Count(&sold).Error; err != nil {
				return err
			}
			if sold > 0 {
				return ErrRaffleLocked
			}
		}

		// Merge for validation, but persist only the provided columns so a
		// concurrently committed purchase never gets its counter overwritten.
		updates := map[string]interface{}{}
		if in.Title != nil {
			raffle.Title = *in.Title
			updates["title"] = *in.Title
		}
		if in.Description != nil {
			raffle.Description = *in.Description
			updates["description"] = *in.Description
		}
		if in.TicketPrice != nil {
			raffle.TicketPrice = *in.TicketPrice
			updates["ticket_price"] = *in.TicketPrice
		}
		if in.TotalTickets != nil {
			raffle.TotalTickets = *in.TotalTickets
			updates["total_tickets"] = *in.TotalTickets
		}
		if in.StartDate != nil {
			raffle.StartDate = *in.StartDate
			updates["start_date"] = *in.StartDate
		}
		if in.EndDate != nil {
			raffle.EndDate = *in.EndDate
			updates["end_date"] = *in.EndDate
		}
		if in.IsActive != nil {
			raffle.IsActive = *in.IsActive
			updates["is_active"] = *in.IsActive
		}
		if raffle.TotalTickets < 1 || raffle.TicketPrice < 0 || !raffle.EndDate.After(raffle.StartDate) {
			return ErrInvalidRaffle
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.Raffle{}).Where("id = ?", raffleID).Updates(updates).Error
	})
	if err != nil {
		if errors.Is(err, ErrInvalidRaffle) {
			return nil, err
		}
		return nil, asServiceError(err)
	}
	return &raffle, nil
}

// DeleteRaffle refuses once purchases exist; the ledger is append-only and a
// raffle with sold tickets can only run to completion.
func (s *RaffleService) DeleteRaffle(ctx context.Context, raffleID uuid.UUID) error {
	db := s.db.WithContext(ctx)

	err := db.Transaction(func(tx *gorm.DB) error {
		var raffle models.Raffle
		if err := tx.First(&raffle, "id = ?", raffleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRaffleNotFound
			}
			return err
		}
		var sold int64
		if err := tx.Model(&models.Purchase{}).Where("raffle_id = ?", raffleID).Count(&sold).Error; err != nil {
			return err
		}
		if sold > 0 {
			return ErrRaffleLocked
		}
		return tx.Delete(&raffle).Error
	})
	return asNilOrServiceError(err)
}

func (s *RaffleService) GetRaffle(ctx context.Context, raffleID uuid.UUID) (*models.Raffle, error) {
	var raffle models.Raffle
	err := s.db.WithContext(ctx).Preload("Winner").First(&raffle, "id = ?", raffleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRaffleNotFound
	}
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	return &raffle, nil
}

func (s *RaffleService) ListRaffles(ctx context.Context, activeOnly bool, skip, limit int) ([]models.Raffle, error) {
	query := s.db.WithContext(ctx).Model(&models.Raffle{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var raffles []models.Raffle
	err := query.Order("created_at DESC").Offset(skip).Limit(pageLimit(limit)).Find(&raffles).Error
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	return raffles, nil
}

func asNilOrServiceError(err error) error {
	if err == nil {
		return nil
	}
	return asServiceError(err)
}
