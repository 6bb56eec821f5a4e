// services/debt_reminder.go
package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/klugao/bartab-sub001/models"
	"github.com/klugao/bartab-sub001/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// DebtReminderService nudges customers whose balance has been negative for
// too long, once a day, per approved establishment.
type DebtReminderService struct {
	db       *gorm.DB
	notifier *Notifier
}

func NewDebtReminderService(db *gorm.DB) *DebtReminderService {
	return &DebtReminderService{
		db:       db,
		notifier: NewNotifier(db),
	}
}

func (s *DebtReminderService) StartScheduler() {
	c := cron.New()

	// Run every day at 9 AM
	c.AddFunc("0 9 * * *", s.SendDailyReminders)

	c.Start()
	utils.InfoLogger.Println("Debt reminder scheduler started")
}

func (s *DebtReminderService) SendDailyReminders() {
	utils.InfoLogger.Println("Starting daily debt reminder processing...")

	var establishments []models.Establishment
	if err := s.db.Find(&establishments, "approval_status = ? AND is_active = ?",
		models.EstablishmentApproved, true).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to fetch establishments: %v", err)
		return
	}

	for _, est := range establishments {
		s.ProcessEstablishment(est)
	}

	utils.InfoLogger.Println("Daily debt reminder processing completed")
}

func (s *DebtReminderService) ProcessEstablishment(est models.Establishment) {
	cutoff := time.Now().AddDate(0, 0, -reminderDays())

	var debtors []models.Customer
	if err := s.db.Where(
		"establishment_id = ? AND is_active = ? AND balance_due_cents < 0 AND negative_balance_since IS NOT NULL AND negative_balance_since <= ?",
		est.ID, true, cutoff).
		Find(&debtors).Error; err != nil {
		utils.ErrorLogger.Printf("Establishment %s: failed to get debtors: %v", est.ID, err)
		return
	}

	for _, customer := range debtors {
		if customer.Phone == "" {
			continue
		}
		days := utils.DaysBetween(*customer.NegativeBalanceSince, time.Now())
		message := fmt.Sprintf(
			"Olá %s, você possui um saldo em aberto de %s no %s há %d dias. Passe no balcão para acertar!",
			customer.Name,
			utils.FormatBRL(-customer.BalanceDueCents),
			est.Name,
			days,
		)
		customerID := customer.ID
		s.notifier.SendSMS(est.ID, &customerID, "debt_reminder", customer.Phone, message)
	}
}

func reminderDays() int {
	if env := os.Getenv("DEBT_REMINDER_DAYS"); env != "" {
		if d, err := strconv.Atoi(env); err == nil && d > 0 {
			return d
		}
	}
	return 7
}
