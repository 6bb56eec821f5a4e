package services

import (
	"testing"
	"time"

	"github.com/klugao/bartab-sub001/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSettlementDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Establishment{},
		&models.Customer{},
		&models.Item{},
		&models.Tab{},
		&models.TabItem{},
		&models.Payment{},
	))
	return db
}

func seedEstablishment(t *testing.T, db *gorm.DB) models.Establishment {
	est := models.Establishment{
		Name:           "Bar do Zé",
		ApprovalStatus: models.EstablishmentApproved,
		IsActive:       true,
	}
	require.NoError(t, db.Create(&est).Error)
	return est
}

func seedCustomer(t *testing.T, db *gorm.DB, est models.Establishment, balanceCents int64) models.Customer {
	customer := models.Customer{
		EstablishmentID: est.ID,
		Name:            "João",
		Phone:           "+5511999990000",
		BalanceDueCents: balanceCents,
		IsActive:        true,
	}
	if balanceCents < 0 {
		since := time.Now().Add(-48 * time.Hour)
		customer.NegativeBalanceSince = &since
	}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

// seedTab opens a tab with a single line item totalling totalCents.
func seedTab(t *testing.T, db *gorm.DB, est models.Establishment, customerID *uuid.UUID, totalCents int64) models.Tab {
	tab := models.Tab{
		EstablishmentID: est.ID,
		Status:          models.TabOpen,
		CustomerID:      customerID,
		OpenedAt:        time.Now(),
	}
	require.NoError(t, db.Create(&tab).Error)

	item := models.Item{
		EstablishmentID: est.ID,
		Name:            "Chopp",
		PriceCents:      totalCents,
		IsActive:        true,
	}
	require.NoError(t, db.Create(&item).Error)

	tabItem := models.TabItem{
		TabID:          tab.ID,
		ItemID:         item.ID,
		ItemName:       item.Name,
		Quantity:       1,
		UnitPriceCents: item.PriceCents,
		TotalCents:     item.PriceCents,
	}
	require.NoError(t, db.Create(&tabItem).Error)
	return tab
}

func reloadTab(t *testing.T, db *gorm.DB, id uuid.UUID) models.Tab {
	var tab models.Tab
	require.NoError(t, db.Preload("Items").Preload("Payments").First(&tab, "id = ?", id).Error)
	return tab
}

func reloadCustomer(t *testing.T, db *gorm.DB, id uuid.UUID) models.Customer {
	var customer models.Customer
	require.NoError(t, db.First(&customer, "id = ?", id).Error)
	return customer
}

func TestSettleTab_ExactPaymentClosesTab(t *testing.T) {
	db := setupSettlementDB(t)
	est := seedEstablishment(t, db)
	customer := seedCustomer(t, db, est, 0)
	customerID := customer.ID
	tab := seedTab(t, db, est, &customerID, 4550)

	result, err := SettleTab(db, est.ID, tab.ID, models.PaymentCash, 4550, "")
	require.NoError(t, err)

	assert.True(t, result.Closed)
	assert.Nil(t, result.DebtPayment)
	assert.Equal(t, int64(0), result.DebtCents)

	reloaded := reloadTab(t, db, tab.ID)
	assert.Equal(t, models.TabClosed, reloaded.Status)
	require.NotNil(t, reloaded.ClosedAt)
	assert.Len(t, reloaded.Payments, 1)

	after := reloadCustomer(t, db, customer.ID)
	assert.Equal(t, int64(0), after.BalanceDueCents)
	assert.Nil(t, after.NegativeBalanceSince)
}

func TestSettleTab_ShortPaymentWithCustomerBooksDebt(t *testing.T) {
	db := setupSettlementDB(t)
	est := seedEstablishment(t, db)
	customer := seedCustomer(t, db, est, 0)
	customerID := customer.ID
	tab := seedTab(t, db, est, &customerID, 4550)

	// Tab total 45.50, payment CASH 30.00: tab closes, LATER of 15.50 is
	// synthesized and the customer now owes 15.50.
	result, err := SettleTab(db, est.ID, tab.ID, models.PaymentCash, 3000, "")
	require.NoError(t, err)

	assert.True(t, result.Closed)
	require.NotNil(t, result.DebtPayment)
	assert.Equal(t, models.PaymentLater, result.DebtPayment.Method)
	assert.Equal(t, int64(1550), result.DebtPayment.AmountCents)
	assert.Equal(t, int64(1550), result.DebtCents)

	reloaded := reloadTab(t, db, tab.ID)
	assert.Equal(t, models.TabClosed, reloaded.Status)
	assert.Len(t, reloaded.Payments, 2)

	after := reloadCustomer(t, db, customer.ID)
	assert.Equal(t, int64(-1550), after.BalanceDueCents)
	require.NotNil(t, after.NegativeBalanceSince)
	assert.WithinDuration(t, time.Now(), *after.NegativeBalanceSince, 5*time.Second)
}

func TestSettleTab_ShortPaymentWithoutCustomerStaysOpen(t *testing.T) {
	db := setupSettlementDB(t)
	est := seedEstablishment(t, db)
	tab := seedTab(t, db, est, nil, 4550)

	result, err := SettleTab(db, est.ID, tab.ID, models.PaymentPix, 3000, "")
	require.NoError(t, err)

	assert.False(t, result.Closed)
	assert.Nil(t, result.DebtPayment)

	reloaded := reloadTab(t, db, tab.ID)
	assert.Equal(t, models.TabOpen, reloaded.Status)
	assert.Nil(t, reloaded.ClosedAt)
	// No synthetic LATER payment appears.
	require.Len(t, reloaded.Payments, 1)
	assert.Equal(t, models.PaymentPix, reloaded.Payments[0].Method)
}

func TestSettleTab_OverpaymentClosesWithoutDebt(t *testing.T) {
	db := setupSettlementDB(t)
	est := seedEstablishment(t, db)
	customer := seedCustomer(t, db, est, 0)
	customerID := customer.ID
	tab := seedTab(t, db, est, &customerID, 4000)

	result, err := SettleTab(db, est.ID, tab.ID, models.PaymentDebit, 5000, "")
	require.NoError(t, err)

	assert.True(t, result.Closed)
	assert.Nil(t, result.DebtPayment)

	after := reloadCustomer(t, db, customer.ID)
	assert.Equal(t, int64(0), after.BalanceDueCents)
}

func TestSettleTab_LaterPaymentDefersWholeRemainder(t *testing.T) {
	db := setupSettlementDB(t)
	est := seedEstablishment(t, db)
	customer := seedCustomer(t, db, est, 0)
	customerID := customer.ID
	tab := seedTab(t, db, est, &customerID, 4550)

	// Partial CASH first, then the customer defers the rest.
	_, err := SettleTab(db, est.ID, tab.ID, models.PaymentCash, 2000, "")
	require.NoError(t, err)

	// First payment already closed the tab with a synthetic LATER, so open
	// a fresh tab for the actual LATER scenario.
	tab2 := seedTab(t, db, est, &customerID, 3000)
	result, err := SettleTab(db, est.ID, tab2.ID, models.PaymentLater, 3000, "fiado")
	require.NoError(t, err)

	assert.True(t, result.Closed)
	assert.Equal(t, int64(3000), result.DebtCents)

	reloaded := reloadTab(t, db, tab2.ID)
	assert.Equal(t, models.TabClosed, reloaded.Status)
	require.Len(t, reloaded.Payments, 1)
	assert.Equal(t, models.PaymentLater, reloaded.Payments[0].Method)

	// -2550 from the short tab plus -3000 from the deferred one.
	after := reloadCustomer(t, db, customer.ID)
	assert.Equal(t, int64(-5550), after.BalanceDueCents)
}

func TestSettleTab_NegativeSinceNotResetByFurtherDebt(t *testing.T) {
	db := setupSettlementDB(t)
	est := seedEstablishment(t, db)
	customer := seedCustomer(t, db, est, -1000)
	firstSince := *customer.NegativeBalanceSince
	customerID := customer.ID

	tab := seedTab(t, db, est, &customerID, 2000)
	_, err := SettleTab(db, est.ID, tab.ID, models.PaymentLater, 2000, "")
	require.NoError(t, err)

	after := reloadCustomer(t, db, customer.ID)
	assert.Equal(t, int64(-3000), after.BalanceDueCents)
	require.NotNil(t, after.NegativeBalanceSince)
	assert.WithinDuration(t, firstSince, *after.NegativeBalanceSince, time.Second)
}

func TestSettleTab_Validation(t *testing.T) {
	db := setupSettlementDB(t)
	est := seedEstablishment(t, db)
	tab := seedTab(t, db, est, nil, 1000)

	t.Run("invalid method", func(t *testing.T) {
		_, err := SettleTab(db, est.ID, tab.ID, "CHEQUE", 1000, "")
		assert.ErrorIs(t, err, ErrInvalidMethod)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := SettleTab(db, est.ID, tab.ID, models.PaymentCash, 0, "")
		assert.ErrorIs(t, err, ErrNonPositiveAmount)
	})

	t.Run("later without customer", func(t *testing.T) {
		_, err := SettleTab(db, est.ID, tab.ID, models.PaymentLater, 1000, "")
		assert.ErrorIs(t, err, ErrLaterWithoutCustomer)
	})

	t.Run("unknown tab", func(t *testing.T) {
		_, err := SettleTab(db, est.ID, uuid.New(), models.PaymentCash, 1000, "")
		assert.ErrorIs(t, err, ErrTabNotFound)
	})

	t.Run("closed tab", func(t *testing.T) {
		_, err := SettleTab(db, est.ID, tab.ID, models.PaymentCash, 1000, "")
		require.NoError(t, err)
		_, err = SettleTab(db, est.ID, tab.ID, models.PaymentCash, 1000, "")
		assert.ErrorIs(t, err, ErrTabClosed)
	})

	t.Run("wrong establishment", func(t *testing.T) {
		other := seedEstablishment(t, db)
		openTab := seedTab(t, db, est, nil, 500)
		_, err := SettleTab(db, other.ID, openTab.ID, models.PaymentCash, 500, "")
		assert.ErrorIs(t, err, ErrTabNotFound)
	})
}

func TestRepayDebt_CappedAtOutstandingBalance(t *testing.T) {
	db := setupSettlementDB(t)
	est := seedEstablishment(t, db)
	customer := seedCustomer(t, db, est, 0)
	customerID := customer.ID

	// Build up -100.00 of tracked debt across two short tabs.
	tab1 := seedTab(t, db, est, &customerID, 6000)
	_, err := SettleTab(db, est.ID, tab1.ID, models.PaymentLater, 6000, "")
	require.NoError(t, err)

	tab2 := seedTab(t, db, est, &customerID, 4000)
	_, err = SettleTab(db, est.ID, tab2.ID, models.PaymentLater, 4000, "")
	require.NoError(t, err)

	mid := reloadCustomer(t, db, customer.ID)
	require.Equal(t, int64(-10000), mid.BalanceDueCents)
	require.NotNil(t, mid.NegativeBalanceSince)

	// Paying 150.00 against a 100.00 debt applies exactly 100.00 and the
	// balance lands on zero, never positive.
	applied, allocations, err := RepayDebt(db, est.ID, customer.ID, 15000, models.PaymentCash)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), applied)
	require.Len(t, allocations, 2)

	// Oldest closed tab is settled first.
	assert.Equal(t, tab1.ID, allocations[0].TabID)
	assert.Equal(t, int64(6000), allocations[0].AmountCents)
	assert.Equal(t, tab2.ID, allocations[1].TabID)
	assert.Equal(t, int64(4000), allocations[1].AmountCents)

	after := reloadCustomer(t, db, customer.ID)
	assert.Equal(t, int64(0), after.BalanceDueCents)
	assert.Nil(t, after.NegativeBalanceSince)

	settled1 := reloadTab(t, db, tab1.ID)
	settled2 := reloadTab(t, db, tab2.ID)
	assert.Equal(t, int64(0), settled1.RemainingCents())
	assert.Equal(t, int64(0), settled2.RemainingCents())
}

func TestRepayDebt_PartialRepaymentKeepsTimestamp(t *testing.T) {
	db := setupSettlementDB(t)
	est := seedEstablishment(t, db)
	customer := seedCustomer(t, db, est, 0)
	customerID := customer.ID

	tab := seedTab(t, db, est, &customerID, 5000)
	_, err := SettleTab(db, est.ID, tab.ID, models.PaymentLater, 5000, "")
	require.NoError(t, err)

	mid := reloadCustomer(t, db, customer.ID)
	require.NotNil(t, mid.NegativeBalanceSince)
	since := *mid.NegativeBalanceSince

	applied, allocations, err := RepayDebt(db, est.ID, customer.ID, 2000, models.PaymentPix)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), applied)
	require.Len(t, allocations, 1)
	assert.Equal(t, int64(2000), allocations[0].AmountCents)

	after := reloadCustomer(t, db, customer.ID)
	assert.Equal(t, int64(-3000), after.BalanceDueCents)
	require.NotNil(t, after.NegativeBalanceSince)
	assert.WithinDuration(t, since, *after.NegativeBalanceSince, time.Second)

	settled := reloadTab(t, db, tab.ID)
	assert.Equal(t, int64(3000), settled.RemainingCents())
}

func TestRepayDebt_Validation(t *testing.T) {
	db := setupSettlementDB(t)
	est := seedEstablishment(t, db)

	t.Run("no outstanding debt", func(t *testing.T) {
		customer := seedCustomer(t, db, est, 0)
		_, _, err := RepayDebt(db, est.ID, customer.ID, 1000, models.PaymentCash)
		assert.ErrorIs(t, err, ErrNoOutstandingDebt)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, _, err := RepayDebt(db, est.ID, uuid.New(), 0, models.PaymentCash)
		assert.ErrorIs(t, err, ErrNonPositiveAmount)
	})

	t.Run("LATER is not a repayment method", func(t *testing.T) {
		_, _, err := RepayDebt(db, est.ID, uuid.New(), 1000, models.PaymentLater)
		assert.ErrorIs(t, err, ErrInvalidMethod)
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, _, err := RepayDebt(db, est.ID, uuid.New(), 1000, "")
		assert.ErrorIs(t, err, ErrCustomerNotFound)
	})
}

func TestTabDerivedAmounts(t *testing.T) {
	tab := models.Tab{
		Items: []models.TabItem{
			{Quantity: 2, UnitPriceCents: 1200, TotalCents: 2400},
			{Quantity: 1, UnitPriceCents: 2150, TotalCents: 2150},
		},
		Payments: []models.Payment{
			{Method: models.PaymentCash, AmountCents: 2000},
			{Method: models.PaymentLater, AmountCents: 2550},
		},
	}

	assert.Equal(t, int64(4550), tab.TotalCents())
	// LATER payments never count as collected money.
	assert.Equal(t, int64(2000), tab.PaidCents())
	assert.Equal(t, int64(2550), tab.RemainingCents())

	// Overpaid tabs clamp the display remainder at zero.
	tab.Payments = append(tab.Payments, models.Payment{Method: models.PaymentPix, AmountCents: 9000})
	assert.Equal(t, int64(0), tab.RemainingCents())
}
