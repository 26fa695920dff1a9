package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Raffle is a time-boxed prize draw with a fixed ticket capacity.
// TicketsSold is only ever mutated through the conditional update in the
// raffle service; it never exceeds TotalTickets.
type Raffle struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Title          string     `gorm:"not null" json:"title"`
	Description    string     `json:"description"`
	TicketPrice    int64      `gorm:"not null" json:"ticket_price"` // cents
	TotalTickets   int        `gorm:"not null" json:"total_tickets"`
	TicketsSold    int        `gorm:"not null;default:0" json:"tickets_sold"`
	StartDate      time.Time  `gorm:"not null" json:"start_date"`
	EndDate        time.Time  `gorm:"not null" json:"end_date"`
	IsActive       bool       `gorm:"not null;default:true" json:"is_active"`
	NotifiedEnding bool       `gorm:"not null;default:false" json:"-"`
	WinnerID       *uuid.UUID `gorm:"type:uuid" json:"winner_id,omitempty"`
	Winner         *User      `gorm:"foreignKey:WinnerID" json:"winner,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (raffle *Raffle) BeforeCreate(tx *gorm.DB) (err error) {
	if raffle.ID == uuid.Nil {
		raffle.ID = uuid.New()
	}
	return
}
