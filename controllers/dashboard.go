package controllers

import (
	"time"

	"github.com/klugao/bartab-sub001/config"
	"github.com/klugao/bartab-sub001/models"
	"github.com/klugao/bartab-sub001/utils"

	"github.com/gin-gonic/gin"
)

type TopDebtor struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	BalanceDueCents      int64      `json:"balanceDueCents"`
	NegativeBalanceSince *time.Time `json:"negativeBalanceSince"`
}

// GetDashboardOverview summarizes the establishment's current position
func GetDashboardOverview(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	firstOfMonth := utils.BeginningOfMonth(time.Now())

	var openTabs int64
	config.DB.Model(&models.Tab{}).
		Where("establishment_id = ? AND status = ?", establishmentUUID, models.TabOpen).
		Count(&openTabs)

	var totalCustomers int64
	config.DB.Model(&models.Customer{}).
		Where("establishment_id = ? AND deleted_at IS NULL", establishmentUUID).
		Count(&totalCustomers)

	// Month revenue: money actually collected this month, LATER excluded
	var monthRevenueCents int64
	config.DB.Model(&models.Payment{}).
		Joins("JOIN tabs ON tabs.id = payments.tab_id").
		Where("tabs.establishment_id = ? AND payments.method != ? AND payments.paid_at >= ?",
			establishmentUUID, models.PaymentLater, firstOfMonth).
		Select("COALESCE(SUM(payments.amount_cents), 0)").
		Scan(&monthRevenueCents)

	var monthExpensesCents int64
	config.DB.Model(&models.Expense{}).
		Where("establishment_id = ? AND date >= ? AND deleted_at IS NULL", establishmentUUID, firstOfMonth).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&monthExpensesCents)

	var outstandingDebtCents int64
	config.DB.Model(&models.Customer{}).
		Where("establishment_id = ? AND balance_due_cents < 0 AND deleted_at IS NULL", establishmentUUID).
		Select("COALESCE(SUM(-balance_due_cents), 0)").
		Scan(&outstandingDebtCents)

	var topDebtors []TopDebtor
	config.DB.Model(&models.Customer{}).
		Where("establishment_id = ? AND balance_due_cents < 0 AND deleted_at IS NULL", establishmentUUID).
		Order("balance_due_cents ASC").
		Limit(5).
		Select("id", "name", "balance_due_cents", "negative_balance_since").
		Scan(&topDebtors)

	c.JSON(200, gin.H{
		"openTabs":             openTabs,
		"totalCustomers":       totalCustomers,
		"monthRevenueCents":    monthRevenueCents,
		"monthExpensesCents":   monthExpensesCents,
		"outstandingDebtCents": outstandingDebtCents,
		"topDebtors":           topDebtors,
	})
}
