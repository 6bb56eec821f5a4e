package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EstablishmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_establishment_phone,priority:1" json:"establishmentId"`

	Name  string `gorm:"not null" json:"name"`
	Phone string `gorm:"not null;uniqueIndex:idx_establishment_phone,priority:2" json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`

	// Negative means the customer owes the establishment money.
	BalanceDueCents int64 `gorm:"not null;default:0" json:"balanceDueCents"`

	// Set when the balance first crosses below zero, cleared when it
	// returns to zero or above. Further negative movement never resets it.
	NegativeBalanceSince *time.Time `json:"negativeBalanceSince"`

	IsActive bool `gorm:"default:true" json:"isActive"`

	Tabs []Tab `gorm:"foreignKey:CustomerID" json:"-"`

	gorm.Model
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
