package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentCash   = "CASH"
	PaymentDebit  = "DEBIT"
	PaymentCredit = "CREDIT"
	PaymentPix    = "PIX"
	PaymentLater  = "LATER"
)

// ValidPaymentMethod reports whether m is one of the accepted wire values.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentDebit, PaymentCredit, PaymentPix, PaymentLater:
		return true
	}
	return false
}

type Payment struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TabID uuid.UUID `gorm:"type:uuid;index;not null" json:"tabId"`

	Method      string `gorm:"type:varchar(10);not null" json:"method"`
	AmountCents int64  `gorm:"not null" json:"amountCents"`
	Note        string `gorm:"size:255" json:"note,omitempty"`

	PaidAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"paidAt"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now()
	}
	return
}
