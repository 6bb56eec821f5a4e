// controllers/expense.go
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

// CreateExpenseInput defines the expected JSON structure for creating an expense
type CreateExpenseInput struct {
	Description string     `json:"description" binding:"required"`
	Category    string     `json:"category"`
	AmountCents int64      `json:"amountCents" binding:"required,min=1"`
	Date        *time.Time `json:"date"`
}

// UpdateExpenseInput defines the expected JSON structure for updating an expense
type UpdateExpenseInput struct {
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	AmountCents *int64     `json:"amountCents"`
	Date        *time.Time `json:"date"`
}

// CreateExpense records an expense for the establishment
func CreateExpense(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	var input CreateExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	date := time.Now()
	if input.Date != nil {
		date = *input.Date
	}

	expense := models.Expense{
		EstablishmentID: establishmentUUID,
		Description:     input.Description,
		Category:        input.Category,
		AmountCents:     input.AmountCents,
		Date:            date,
	}

	if err := config.DB.Create(&expense).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create expense")
		return
	}

	c.JSON(http.StatusCreated, expense)
}

// GetExpenses retrieves the establishment's expenses, paginated
func GetExpenses(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	page, limit, offset := utils.Pagination(c)

	query := config.DB.Model(&models.Expense{}).Where("establishment_id = ?", establishmentUUID)

	var total int64
	query.Count(&total)

	var expenses []models.Expense
	if err := query.Order("date DESC").Limit(limit).Offset(offset).Find(&expenses).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve expenses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  expenses,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}

// GetExpense retrieves a specific expense by ID
func GetExpense(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	expenseUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid expense ID format")
		return
	}

	var expense models.Expense
	if err := config.DB.Where("establishment_id = ? AND id = ?", establishmentUUID, expenseUUID).
		First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Expense not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, expense)
}

// UpdateExpense updates an existing expense
func UpdateExpense(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	expenseUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid expense ID format")
		return
	}

	var input UpdateExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var expense models.Expense
	if err := config.DB.Where("establishment_id = ? AND id = ?", establishmentUUID, expenseUUID).
		First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Expense not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Description != nil {
		expense.Description = *input.Description
	}
	if input.Category != nil {
		expense.Category = *input.Category
	}
	if input.AmountCents != nil {
		if *input.AmountCents <= 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Amount must be positive")
			return
		}
		expense.AmountCents = *input.AmountCents
	}
	if input.Date != nil {
		expense.Date = *input.Date
	}

	if err := config.DB.Save(&expense).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update expense")
		return
	}

	c.JSON(http.StatusOK, expense)
}

// DeleteExpense soft deletes an expense
func DeleteExpense(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	expenseUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid expense ID format")
		return
	}

	result := config.DB.Where("establishment_id = ? AND id = ?", establishmentUUID, expenseUUID).
		Delete(&models.Expense{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete expense")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Expense not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}
