package controllers

import (
	"errors"
	"net/http"

	"github.com/klugao/bartab-sub001/config"
	"github.com/klugao/bartab-sub001/models"
	"github.com/klugao/bartab-sub001/services"
	"github.com/klugao/bartab-sub001/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateCustomerInput defines the expected JSON structure for creating a customer
type CreateCustomerInput struct {
	Name  string  `json:"name" binding:"required"`
	Phone string  `json:"phone" binding:"required"`
	Email *string `json:"email"`
	Notes string  `json:"notes"`
}

// UpdateCustomerInput defines the expected JSON structure for updating a customer
type UpdateCustomerInput struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Notes    *string `json:"notes"`
	IsActive *bool   `json:"isActive"`
}

// RepayDebtInput carries a customer-initiated settlement of existing debt.
type RepayDebtInput struct {
	AmountCents int64  `json:"amountCents" binding:"required"`
	Method      string `json:"method"`
}

// CreateCustomer creates a new customer for the establishment
func CreateCustomer(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	// Check if phone already exists for this establishment
	var existingCustomer models.Customer
	if err := config.DB.Where("establishment_id = ? AND phone = ?", establishmentUUID, input.Phone).
		First(&existingCustomer).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Customer with this phone number already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	customer := models.Customer{
		EstablishmentID: establishmentUUID,
		Name:            input.Name,
		Phone:           input.Phone,
		Notes:           input.Notes,
		IsActive:        true,
	}

	if input.Email != nil {
		customer.Email = *input.Email
	}

	if err := config.DB.Create(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// GetCustomers retrieves the establishment's customers, paginated
func GetCustomers(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	page, limit, offset := utils.Pagination(c)

	query := config.DB.Model(&models.Customer{}).Where("establishment_id = ?", establishmentUUID)
	if debtors := c.Query("debtors"); debtors == "true" {
		query = query.Where("balance_due_cents < 0")
	}

	var total int64
	query.Count(&total)

	var customers []models.Customer
	if err := query.Order("name ASC").Limit(limit).Offset(offset).Find(&customers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  customers,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}

// GetCustomer retrieves a specific customer by ID
func GetCustomer(c *gin.Context) {
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

	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer updates an existing customer
func UpdateCustomer(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	customerUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
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

	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Phone != nil {
		if !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		if customer.Phone != *input.Phone {
			var existingCustomer models.Customer
			if err := config.DB.Where("establishment_id = ? AND phone = ?", establishmentUUID, *input.Phone).
				First(&existingCustomer).Error; err == nil {
				utils.RespondWithError(c, http.StatusConflict, "Another customer with this phone number already exists")
				return
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
				return
			}
		}
		customer.Phone = *input.Phone
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}
	if input.Notes != nil {
		customer.Notes = *input.Notes
	}
	if input.IsActive != nil {
		customer.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer")
		return
	}

	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer soft deletes a customer
func DeleteCustomer(c *gin.Context) {
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
		utils.RespondWithError(c, http.StatusBadRequest, "Customer has outstanding debt and cannot be deleted")
		return
	}

	if err := config.DB.Delete(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}

// GetCustomerDebts lists the customer's closed tabs that still carry an
// outstanding remainder
func GetCustomerDebts(c *gin.Context) {
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
		Where("customer_id = ? AND status = ?", customer.ID, models.TabClosed).
		Order("closed_at ASC").
		Find(&tabs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve tabs")
		return
	}

	type debtTab struct {
		Tab            models.Tab `json:"tab"`
		RemainingCents int64      `json:"remainingCents"`
	}
	var debts []debtTab
	for _, tab := range tabs {
		if remaining := tab.RemainingCents(); remaining > 0 {
			debts = append(debts, debtTab{Tab: tab, RemainingCents: remaining})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"balanceDueCents":      customer.BalanceDueCents,
		"negativeBalanceSince": customer.NegativeBalanceSince,
		"debts":                debts,
	})
}

// RepayCustomerDebt applies a payment against the customer's running debt
func RepayCustomerDebt(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	customerUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var input RepayDebtInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	applied, allocations, err := services.RepayDebt(config.DB, establishmentUUID, customerUUID, input.AmountCents, input.Method)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCustomerNotFound):
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		case errors.Is(err, services.ErrNonPositiveAmount),
			errors.Is(err, services.ErrInvalidMethod),
			errors.Is(err, services.ErrNoOutstandingDebt):
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to repay debt")
		}
		return
	}

	var customer models.Customer
	config.DB.Where("id = ?", customerUUID).First(&customer)

	c.JSON(http.StatusOK, gin.H{
		"appliedCents":         applied,
		"allocations":          allocations,
		"balanceDueCents":      customer.BalanceDueCents,
		"negativeBalanceSince": customer.NegativeBalanceSince,
	})
}
