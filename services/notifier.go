// services/notifier.go
package services

import (
	"os"
	"time"

	"github.com/klugao/bartab-sub001/models"
	"github.com/klugao/bartab-sub001/utils"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// Notifier sends SMS notices via Twilio and records every attempt.
type Notifier struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewNotifier(db *gorm.DB) *Notifier {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &Notifier{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

// SendSMS delivers one message and writes a NotificationLog row either way.
// Delivery failures are reported through the log, not the return value:
// notification SMS must never block the flow that triggered it.
func (n *Notifier) SendSMS(establishmentID uuid.UUID, customerID *uuid.UUID, kind, to, message string) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	params.SetBody(message)

	status := "sent"
	errorMsg := ""

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to send SMS to %s: %v", to, err)
		status = "failed"
		errorMsg = err.Error()
	} else if resp.Sid != nil {
		utils.InfoLogger.Printf("SMS sent to %s, SID: %s", to, *resp.Sid)
	} else {
		utils.InfoLogger.Printf("SMS sent to %s, but no SID returned", to)
	}

	logEntry := models.NotificationLog{
		EstablishmentID: establishmentID,
		CustomerID:      customerID,
		Kind:            kind,
		Channel:         "sms",
		Recipient:       to,
		Message:         message,
		Status:          status,
		ErrorMessage:    errorMsg,
		SentAt:          time.Now(),
	}
	if err := n.db.Create(&logEntry).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to log notification for %s: %v", to, err)
	}
}

// LogEmail records an email delivery attempt alongside the SMS log.
func (n *Notifier) LogEmail(establishmentID uuid.UUID, kind, to, subject string, sendErr error) {
	status := "sent"
	errorMsg := ""
	if sendErr != nil {
		status = "failed"
		errorMsg = sendErr.Error()
	}
	logEntry := models.NotificationLog{
		EstablishmentID: establishmentID,
		Kind:            kind,
		Channel:         "email",
		Recipient:       to,
		Message:         subject,
		Status:          status,
		ErrorMessage:    errorMsg,
		SentAt:          time.Now(),
	}
	if err := n.db.Create(&logEntry).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to log notification for %s: %v", to, err)
	}
}
