package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Expense struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EstablishmentID uuid.UUID `gorm:"type:uuid;index;not null" json:"establishmentId"`

	Description string    `gorm:"size:255;not null" json:"description"`
	Category    string    `gorm:"size:100;default:'General'" json:"category"`
	AmountCents int64     `gorm:"not null" json:"amountCents"`
	Date        time.Time `gorm:"index;not null" json:"date"`

	gorm.Model
}

func (e *Expense) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
