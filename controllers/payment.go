// controllers/payment.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/klugao/bartab-sub001/config"
	"github.com/klugao/bartab-sub001/services"
	"github.com/klugao/bartab-sub001/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreatePaymentInput defines the expected JSON structure for paying a tab
type CreatePaymentInput struct {
	Method      string `json:"method" binding:"required"`
	AmountCents int64  `json:"amountCents" binding:"required"`
	Note        string `json:"note"`
}

// CreateTabPayment records a payment against a tab and settles it
func CreateTabPayment(c *gin.Context) {
	establishmentUUID, ok := establishmentFromContext(c)
	if !ok {
		return
	}

	tabUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid tab ID format")
		return
	}

	var input CreatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	result, err := services.SettleTab(config.DB, establishmentUUID, tabUUID, input.Method, input.AmountCents, input.Note)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTabNotFound):
			utils.RespondWithError(c, http.StatusNotFound, "Tab not found")
		case errors.Is(err, services.ErrTabClosed),
			errors.Is(err, services.ErrInvalidMethod),
			errors.Is(err, services.ErrNonPositiveAmount),
			errors.Is(err, services.ErrLaterWithoutCustomer):
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record payment")
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}
