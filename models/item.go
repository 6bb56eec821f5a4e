package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Item struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EstablishmentID uuid.UUID `gorm:"type:uuid;index;not null" json:"establishmentId"`

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `gorm:"not null" json:"priceCents"`
	Category    string `gorm:"default:'General'" json:"category"`
	IsActive    bool   `gorm:"default:true" json:"isActive"`

	TabItems []TabItem `gorm:"foreignKey:ItemID" json:"-"`

	gorm.Model
}

func (i *Item) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
