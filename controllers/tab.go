// controllers/tab.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/klugao/bartab-sub001/config"
	"github.com/klugao/bartab-sub001/models"
	"github.com/klugao/bartab-sub001/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OpenTabInput defines the expected JSON structure for opening a tab
type OpenTabInput struct {
	CustomerID *uuid.UUID `json:"customerId"`
}

// AddTabItemInput defines one line item added to an open tab
type AddTabItemInput struct {
	ItemID   uuid.UUID `json:"itemId" binding:"required"`
	Quantity int       `json:"quantity" binding:"omitempty,min=1"`
}

// tabView decorates a tab with its derived amounts
func tabView(tab *models.Tab) gin.H {
	return gin.H{
		"tab":            tab,
		"totalCents":     tab.TotalCents(),
		"paidCents":      tab.PaidCents(),
		"remainingCents": tab.RemainingCents(),
	}
}

// OpenTab opens a new tab, optionally attached to a customer
func OpenTab(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	var input OpenTabInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.CustomerID != nil {
		// Validate customer exists in the same establishment
		var customer models.Customer
		if err := config.DB.Where("establishment_id = ? AND id = ?", establishmentUUID, *input.CustomerID).
			First(&customer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusBadRequest, "Customer not found")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}
	}

	tab := models.Tab{
		EstablishmentID: establishmentUUID,
		Status:          models.TabOpen,
		CustomerID:      input.CustomerID,
		OpenedAt:        time.Now(),
	}

	if err := config.DB.Create(&tab).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to open tab")
		return
	}

	c.JSON(http.StatusCreated, tab)
}

// GetTabs retrieves the establishment's tabs, filterable by status, paginated
func GetTabs(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	page, limit, offset := utils.Pagination(c)

	query := config.DB.Model(&models.Tab{}).Where("establishment_id = ?", establishmentUUID)
	if status := c.Query("status"); status != "" {
		if status != models.TabOpen && status != models.TabClosed {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid status filter")
			return
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var tabs []models.Tab
	if err := query.Preload("Items").Preload("Payments").Preload("Customer").
		Order("opened_at DESC").Limit(limit).Offset(offset).
		Find(&tabs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve tabs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  tabs,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}

// GetTab retrieves a specific tab with its items, payments and derived amounts
func GetTab(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	tabUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid tab ID format")
		return
	}

	var tab models.Tab
	if err := config.DB.Preload("Items").Preload("Payments").Preload("Customer").
		Where("establishment_id = ? AND id = ?", establishmentUUID, tabUUID).
		First(&tab).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Tab not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, tabView(&tab))
}

// AddTabItem adds a line item to an open tab, snapshotting the catalog price
func AddTabItem(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	tabUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid tab ID format")
		return
	}

	var input AddTabItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	var tab models.Tab
	if err := config.DB.Where("establishment_id = ? AND id = ?", establishmentUUID, tabUUID).
		First(&tab).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Tab not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if tab.Status != models.TabOpen {
		utils.RespondWithError(c, http.StatusBadRequest, "Cannot modify a closed tab")
		return
	}

	var item models.Item
	if err := config.DB.Where("establishment_id = ? AND id = ? AND is_active = ?",
		establishmentUUID, input.ItemID, true).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Item not found: "+input.ItemID.String())
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	tabItem := models.TabItem{
		TabID:          tab.ID,
		ItemID:         item.ID,
		ItemName:       item.Name,
		Quantity:       input.Quantity,
		UnitPriceCents: item.PriceCents,
		TotalCents:     item.PriceCents * int64(input.Quantity),
	}

	if err := config.DB.Create(&tabItem).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to add item to tab")
		return
	}

	c.JSON(http.StatusCreated, tabItem)
}

// RemoveTabItem removes a line item from an open tab
func RemoveTabItem(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	tabUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid tab ID format")
		return
	}

	tabItemUUID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid tab item ID format")
		return
	}

	var tab models.Tab
	if err := config.DB.Where("establishment_id = ? AND id = ?", establishmentUUID, tabUUID).
		First(&tab).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Tab not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if tab.Status != models.TabOpen {
		utils.RespondWithError(c, http.StatusBadRequest, "Cannot modify a closed tab")
		return
	}

	result := config.DB.Where("tab_id = ? AND id = ?", tab.ID, tabItemUUID).
		Delete(&models.TabItem{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to remove item from tab")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Tab item not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from tab"})
}

// DeleteTab removes an empty tab; tabs with items or payments must be settled
func DeleteTab(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	tabUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid tab ID format")
		return
	}

	var tab models.Tab
	if err := config.DB.Preload("Items").Preload("Payments").
		Where("establishment_id = ? AND id = ?", establishmentUUID, tabUUID).
		First(&tab).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Tab not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if len(tab.Items) > 0 || len(tab.Payments) > 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Cannot delete a tab with items or payments")
		return
	}

	if err := config.DB.Delete(&tab).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete tab")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tab deleted successfully"})
}
