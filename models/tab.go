package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TabOpen   = "OPEN"
	TabClosed = "CLOSED"
)

type Tab struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EstablishmentID uuid.UUID `gorm:"type:uuid;index;not null" json:"establishmentId"`

	Status string `gorm:"type:varchar(10);default:'OPEN';index" json:"status"`

	// Optional: anonymous walk-in tabs carry no customer and can never
	// accumulate tracked debt.
	CustomerID *uuid.UUID `gorm:"type:uuid;index" json:"customerId"`
	Customer   *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	OpenedAt time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"openedAt"`
	ClosedAt *time.Time `json:"closedAt"`

	Items    []TabItem `gorm:"foreignKey:TabID" json:"items,omitempty"`
	Payments []Payment `gorm:"foreignKey:TabID" json:"payments,omitempty"`
}

func (t *Tab) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

// TotalCents is the sum of all line item totals.
func (t *Tab) TotalCents() int64 {
	var total int64
	for _, it := range t.Items {
		total += it.TotalCents
	}
	return total
}

// PaidCents is the amount actually collected. LATER payments are deferred
// debt markers and never count as money received.
func (t *Tab) PaidCents() int64 {
	var paid int64
	for _, p := range t.Payments {
		if p.Method != PaymentLater {
			paid += p.AmountCents
		}
	}
	return paid
}

// RemainingCents is the outstanding amount, clamped at zero for display.
func (t *Tab) RemainingCents() int64 {
	remaining := t.TotalCents() - t.PaidCents()
	if remaining < 0 {
		return 0
	}
	return remaining
}

type TabItem struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TabID uuid.UUID `gorm:"type:uuid;index;not null" json:"tabId"`

	ItemID uuid.UUID `gorm:"type:uuid;index;not null" json:"itemId"`

	// Snapshotted at add time so later catalog edits leave old tabs intact.
	ItemName       string `gorm:"not null" json:"itemName"`
	Quantity       int    `gorm:"default:1" json:"quantity"`
	UnitPriceCents int64  `gorm:"not null" json:"unitPriceCents"`
	TotalCents     int64  `gorm:"not null" json:"totalCents"`

	CreatedAt time.Time `json:"createdAt"`
}

func (ti *TabItem) BeforeCreate(tx *gorm.DB) (err error) {
	if ti.ID == uuid.Nil {
		ti.ID = uuid.New()
	}
	return
}
