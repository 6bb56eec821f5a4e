package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Approval lifecycle of an establishment. New signups start as PENDENTE and
// only become usable once a platform admin approves them.
const (
	EstablishmentPending  = "PENDENTE"
	EstablishmentApproved = "APROVADO"
	EstablishmentRejected = "REJEITADO"
)

type Establishment struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name    string    `gorm:"not null" json:"name"`
	Address string    `json:"address"`

	ApprovalStatus string `gorm:"type:varchar(20);default:'PENDENTE';index" json:"approvalStatus"`
	IsActive       bool   `gorm:"default:false" json:"isActive"`

	Users     []User     `gorm:"foreignKey:EstablishmentID" json:"-"`
	Customers []Customer `gorm:"foreignKey:EstablishmentID" json:"-"`
	Items     []Item     `gorm:"foreignKey:EstablishmentID" json:"-"`
	Tabs      []Tab      `gorm:"foreignKey:EstablishmentID" json:"-"`
	Expenses  []Expense  `gorm:"foreignKey:EstablishmentID" json:"-"`

	gorm.Model
}

func (e *Establishment) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
