// controllers/privacy.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/klugao/bartab-sub001/config"
	"github.com/klugao/bartab-sub001/models"
	"github.com/klugao/bartab-sub001/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExportCustomerData returns every record held about a customer as one JSON
// document, for LGPD data access requests.
func ExportCustomerData(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	customerUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var customer models.Customer
	if err := config.DB.Where("establishment_id = ? AND id = ?", establishmentUUID, customerUUID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var tabs []models.Tab
	if err := config.DB.Preload("Items").Preload("Payments").
		Where("customer_id = ?", customer.ID).
		Order("opened_at ASC").
		Find(&tabs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to collect customer data")
		return
	}

	var notifications []models.NotificationLog
	config.DB.Where("customer_id = ?", customer.ID).Find(&notifications)

	c.JSON(http.StatusOK, gin.H{
		"exportedAt":    time.Now(),
		"customer":      customer,
		"tabs":          tabs,
		"notifications": notifications,
	})
}

// EraseCustomerData anonymizes and removes a customer on an LGPD erasure
// request. Refused while the customer still owes money.
func EraseCustomerData(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	customerUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var customer models.Customer
	if err := config.DB.Where("establishment_id = ? AND id = ?", establishmentUUID, customerUUID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if customer.BalanceDueCents < 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Customer has outstanding debt; settle it before erasure")
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		// Keep the row for tab history integrity but strip everything
		// personal before the soft delete.
		anonymized := fmt.Sprintf("anon-%s", customer.ID.String()[:8])
		if err := tx.Model(&customer).Updates(map[string]interface{}{
			"name":  anonymized,
			"phone": anonymized,
			"email": "",
			"notes": "",
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", customer.ID).
			Delete(&models.NotificationLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&customer).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to erase customer data")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer data erased"})
}
