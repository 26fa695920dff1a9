package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Purchase is immutable once committed. A correction is a new compensating
// record, never an update or delete.
type Purchase struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User             *User     `gorm:"foreignKey:UserID" json:"-"`
	RaffleID         uuid.UUID `gorm:"type:uuid;not null;index" json:"raffle_id"`
	Raffle           *Raffle   `gorm:"foreignKey:RaffleID" json:"-"`
	Quantity         int       `gorm:"not null" json:"quantity"`
	TotalAmount      int64     `gorm:"not null" json:"total_amount"` // cents
	PaymentReference string    `gorm:"not null;uniqueIndex" json:"payment_reference"`
	CreatedAt        time.Time `json:"created_at"`
}

func (purchase *Purchase) BeforeCreate(tx *gorm.DB) (err error) {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	return
}
