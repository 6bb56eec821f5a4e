// controllers/item.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/klugao/bartab-sub001/config"
	"github.com/klugao/bartab-sub001/models"
	"github.com/klugao/bartab-sub001/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateItemInput defines the expected JSON structure for creating an item
type CreateItemInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents" binding:"required,min=1"`
	Category    string `json:"category"`
}

// UpdateItemInput defines the expected JSON structure for updating an item
type UpdateItemInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"priceCents"`
	Category    *string `json:"category"`
	IsActive    *bool   `json:"isActive"`
}

// CreateItem creates a new catalog item for the establishment
func CreateItem(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	var input CreateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	item := models.Item{
		EstablishmentID: establishmentUUID,
		Name:            input.Name,
		Description:     input.Description,
		PriceCents:      input.PriceCents,
		Category:        input.Category,
		IsActive:        true,
	}

	if err := config.DB.Create(&item).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create item")
		return
	}

	c.JSON(http.StatusCreated, item)
}

// GetItems retrieves the establishment's catalog, paginated
func GetItems(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	page, limit, offset := utils.Pagination(c)

	query := config.DB.Model(&models.Item{}).Where("establishment_id = ?", establishmentUUID)
	if active := c.Query("active"); active == "true" {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	query.Count(&total)

	var items []models.Item
	if err := query.Order("name ASC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve items")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  items,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}

// GetItem retrieves a specific item by ID
func GetItem(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	itemUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var item models.Item
	if err := config.DB.Where("establishment_id = ? AND id = ?", establishmentUUID, itemUUID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Item not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, item)
}

// UpdateItem updates an existing item
func UpdateItem(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	itemUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var input UpdateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var item models.Item
	if err := config.DB.Where("establishment_id = ? AND id = ?", establishmentUUID, itemUUID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Item not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.PriceCents != nil {
		if *input.PriceCents <= 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Price must be positive")
			return
		}
		item.PriceCents = *input.PriceCents
	}
	if input.Category != nil {
		item.Category = *input.Category
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&item).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update item")
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteItem soft deletes an item; tabs keep their snapshotted copies
func DeleteItem(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	itemUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	result := config.DB.Where("establishment_id = ? AND id = ?", establishmentUUID, itemUUID).
		Delete(&models.Item{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete item")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Item not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}
