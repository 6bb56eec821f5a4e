// models/notification_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationLog records one outbound notice attempt. Kind is one of
// debt_reminder, approval, rejection or signup; Channel is sms or email;
// Status is sent or failed.
type NotificationLog struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	EstablishmentID uuid.UUID  `gorm:"type:uuid;index;not null" json:"establishmentId"`
	CustomerID      *uuid.UUID `gorm:"type:uuid;index" json:"customerId"`

	Kind         string    `gorm:"type:varchar(30)" json:"kind"`
	Channel      string    `gorm:"type:varchar(20)" json:"channel"`
	Recipient    string    `gorm:"size:180" json:"recipient"`
	Message      string    `gorm:"type:text" json:"message"`
	Status       string    `gorm:"type:varchar(20)" json:"status"`
	ErrorMessage string    `gorm:"type:text" json:"errorMessage,omitempty"`
	SentAt       time.Time `json:"sentAt"`

	gorm.Model
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
