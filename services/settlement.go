// services/settlement.go
package services

import (
	"errors"
	"time"

	"github.com/klugao/bartab-sub001/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTabNotFound          = errors.New("tab not found")
	ErrTabClosed            = errors.New("tab is already closed")
	ErrInvalidMethod        = errors.New("invalid payment method")
	ErrNonPositiveAmount    = errors.New("payment amount must be positive")
	ErrLaterWithoutCustomer = errors.New("LATER payment requires a customer on the tab")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrNoOutstandingDebt    = errors.New("customer has no outstanding debt")
)

// SettlementResult describes what a recorded payment did to its tab.
type SettlementResult struct {
	Tab         *models.Tab     `json:"tab"`
	Payment     *models.Payment `json:"payment"`
	DebtPayment *models.Payment `json:"debtPayment,omitempty"`
	DebtCents   int64           `json:"debtCents"`
	Closed      bool            `json:"closed"`
}

// SettleTab records a payment against an open tab and settles it: a payment
// covering the remainder closes the tab; a short payment on a customer tab
// books the shortfall as a LATER payment and customer debt; a short payment
// on an anonymous tab leaves it open. The payment insert, the synthetic
// LATER record, the tab close and the balance update all happen in a single
// database transaction.
func SettleTab(db *gorm.DB, establishmentID, tabID uuid.UUID, method string, amountCents int64, note string) (*SettlementResult, error) {
	if !models.ValidPaymentMethod(method) {
		return nil, ErrInvalidMethod
	}
	if amountCents <= 0 {
		return nil, ErrNonPositiveAmount
	}

	var result *SettlementResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var tab models.Tab
		if err := tx.Preload("Items").Preload("Payments").
			Where("establishment_id = ? AND id = ?", establishmentID, tabID).
			First(&tab).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTabNotFound
			}
			return err
		}

		if tab.Status != models.TabOpen {
			return ErrTabClosed
		}
		if method == models.PaymentLater && tab.CustomerID == nil {
			return ErrLaterWithoutCustomer
		}

		payment := models.Payment{
			TabID:       tab.ID,
			Method:      method,
			AmountCents: amountCents,
			Note:        note,
			PaidAt:      time.Now(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		tab.Payments = append(tab.Payments, payment)

		// LATER never counts as money collected, so the remainder after a
		// LATER payment is unchanged by it.
		remaining := tab.TotalCents() - tab.PaidCents()

		result = &SettlementResult{Payment: &payment}

		switch {
		case method == models.PaymentLater:
			if remaining > 0 {
				if err := bookDebt(tx, &tab, remaining); err != nil {
					return err
				}
				result.DebtCents = remaining
			}
			if err := closeTab(tx, &tab); err != nil {
				return err
			}

		case remaining > 0 && tab.CustomerID != nil:
			// Short payment on a customer tab: the shortfall becomes a
			// synthetic LATER payment and tracked debt.
			debtPayment := models.Payment{
				TabID:       tab.ID,
				Method:      models.PaymentLater,
				AmountCents: remaining,
				Note:        "saldo devedor",
				PaidAt:      time.Now(),
			}
			if err := tx.Create(&debtPayment).Error; err != nil {
				return err
			}
			tab.Payments = append(tab.Payments, debtPayment)

			if err := bookDebt(tx, &tab, remaining); err != nil {
				return err
			}
			if err := closeTab(tx, &tab); err != nil {
				return err
			}
			result.DebtPayment = &debtPayment
			result.DebtCents = remaining

		case remaining > 0:
			// Anonymous tab, partial payment: nothing to settle against,
			// the tab stays open.

		default:
			if err := closeTab(tx, &tab); err != nil {
				return err
			}
		}

		result.Tab = &tab
		result.Closed = tab.Status == models.TabClosed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func closeTab(tx *gorm.DB, tab *models.Tab) error {
	now := time.Now()
	tab.Status = models.TabClosed
	tab.ClosedAt = &now
	return tx.Model(&models.Tab{}).Where("id = ?", tab.ID).
		Updates(map[string]interface{}{"status": models.TabClosed, "closed_at": now}).Error
}

func bookDebt(tx *gorm.DB, tab *models.Tab, debtCents int64) error {
	var customer models.Customer
	if err := tx.Where("id = ?", *tab.CustomerID).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return err
	}
	applyBalanceDelta(&customer, -debtCents, time.Now())
	return tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
		Updates(map[string]interface{}{
			"balance_due_cents":      customer.BalanceDueCents,
			"negative_balance_since": customer.NegativeBalanceSince,
		}).Error
}

// applyBalanceDelta moves the balance and keeps negative_balance_since in
// step: set on the crossing into negative, cleared on the crossing back,
// untouched while the balance stays on one side of zero.
func applyBalanceDelta(customer *models.Customer, deltaCents int64, now time.Time) {
	oldBalance := customer.BalanceDueCents
	customer.BalanceDueCents += deltaCents

	if oldBalance >= 0 && customer.BalanceDueCents < 0 {
		customer.NegativeBalanceSince = &now
	} else if oldBalance < 0 && customer.BalanceDueCents >= 0 {
		customer.NegativeBalanceSince = nil
	}
}

// DebtAllocation records how much of a repayment landed on one tab.
type DebtAllocation struct {
	TabID       uuid.UUID `json:"tabId"`
	AmountCents int64     `json:"amountCents"`
}

// RepayDebt settles an indebted customer's balance: the applied amount is
// capped at the debt, distributed across their closed tabs that still carry
// an outstanding remainder (oldest closed first, one payment record per tab
// touched), and credited to the balance. Paying more than owed never drives
// the balance positive. Runs in a single transaction.
func RepayDebt(db *gorm.DB, establishmentID, customerID uuid.UUID, amountCents int64, method string) (int64, []DebtAllocation, error) {
	if amountCents <= 0 {
		return 0, nil, ErrNonPositiveAmount
	}
	if method == "" {
		method = models.PaymentCash
	}
	if !models.ValidPaymentMethod(method) || method == models.PaymentLater {
		return 0, nil, ErrInvalidMethod
	}

	var applied int64
	var allocations []DebtAllocation

	err := db.Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.Where("establishment_id = ? AND id = ?", establishmentID, customerID).
			First(&customer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}

		if customer.BalanceDueCents >= 0 {
			return ErrNoOutstandingDebt
		}

		applied = amountCents
		if debt := -customer.BalanceDueCents; applied > debt {
			applied = debt
		}

		var tabs []models.Tab
		if err := tx.Preload("Items").Preload("Payments").
			Where("customer_id = ? AND status = ?", customer.ID, models.TabClosed).
			Order("closed_at ASC").
			Find(&tabs).Error; err != nil {
			return err
		}

		left := applied
		for i := range tabs {
			if left == 0 {
				break
			}
			remaining := tabs[i].RemainingCents()
			if remaining <= 0 {
				continue
			}
			pay := left
			if pay > remaining {
				pay = remaining
			}
			payment := models.Payment{
				TabID:       tabs[i].ID,
				Method:      method,
				AmountCents: pay,
				Note:        "pagamento de saldo devedor",
				PaidAt:      time.Now(),
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
			allocations = append(allocations, DebtAllocation{TabID: tabs[i].ID, AmountCents: pay})
			left -= pay
		}

		applyBalanceDelta(&customer, applied, time.Now())
		return tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
			Updates(map[string]interface{}{
				"balance_due_cents":      customer.BalanceDueCents,
				"negative_balance_since": customer.NegativeBalanceSince,
			}).Error
	})
	if err != nil {
		return 0, nil, err
	}
	return applied, allocations, nil
}
