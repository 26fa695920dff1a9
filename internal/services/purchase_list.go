package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luxewin/raffle-api/internal/models"
)

const defaultPageLimit = 100

type PurchaseFilter struct {
	RaffleID *uuid.UUID
	UserID   *uuid.UUID
	Skip     int
	Limit    int
}

// ListPurchases is read-only; it never touches an invariant.
func (s *RaffleService) ListPurchases(ctx context.Context, filter PurchaseFilter) ([]models.Purchase, error) {
	query := s.db.WithContext(ctx).Model(&models.Purchase{})
	if filter.RaffleID != nil {
		query = query.Where("raffle_id = ?", *filter.RaffleID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var purchases []models.Purchase
	err := query.Order("created_at, id").Offset(filter.Skip).Limit(pageLimit(filter.Limit)).Find(&purchases).Error
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	return purchases, nil
}

// GetPurchase returns a purchase only to its owner.
func (s *RaffleService) GetPurchase(ctx context.Context, purchaseID, userID uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := s.db.WithContext(ctx).First(&purchase, "id = ?", purchaseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPurchaseNotFound
	}
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	if purchase.UserID != userID {
		return nil, ErrPurchaseNotFound
	}
	return &purchase, nil
}

func pageLimit(limit int) int {
	if limit <= 0 || limit > defaultPageLimit {
		return defaultPageLimit
	}
	return limit
}
