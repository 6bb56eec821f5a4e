// controllers/context.go
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

// establishmentFromContext pulls the tenant id set by the auth middleware.
// On failure it writes the error response and returns ok=false.
func establishmentFromContext(c *gin.Context) (uuid.UUID, bool) {
	establishmentID, exists := c.Get("establishmentId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Establishment ID not found in context")
		return uuid.Nil, false
	}

	idStr, _ := establishmentID.(string)
	establishmentUUID, err := uuid.Parse(idStr)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid establishment ID format")
		return uuid.Nil, false
	}

	return establishmentUUID, true
}

// RequireApprovedEstablishment blocks tenant routes until the establishment
// has been approved by a platform admin and is active. Admins pass through.
func RequireApprovedEstablishment() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := c.Get("role"); role == models.RoleAdmin {
			c.Next()
			return
		}

		establishmentUUID, ok := establishmentFromContext(c)
		if !ok {
			c.Abort()
			return
		}

		var establishment models.Establishment
		if err := config.DB.First(&establishment, "id = ?", establishmentUUID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Establishment not found"})
			} else {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			}
			return
		}

		if establishment.ApprovalStatus != models.EstablishmentApproved || !establishment.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Establishment is not approved or inactive"})
			return
		}

		c.Next()
	}
}
