// controllers/admin.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/klugao/bartab-sub001/config"
	"github.com/klugao/bartab-sub001/models"
	"github.com/klugao/bartab-sub001/services"
	"github.com/klugao/bartab-sub001/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetEstablishments lists establishments for review, filterable by approval
// status, paginated
func GetEstablishments(c *gin.Context) {
	page, limit, offset := utils.Pagination(c)

	query := config.DB.Model(&models.Establishment{})
	if status := c.Query("status"); status != "" {
		if status != models.EstablishmentPending &&
			status != models.EstablishmentApproved &&
			status != models.EstablishmentRejected {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid status filter")
			return
		}
		query = query.Where("approval_status = ?", status)
	}

	var total int64
	query.Count(&total)

	var establishments []models.Establishment
	if err := query.Order("created_at ASC").Limit(limit).Offset(offset).
		Find(&establishments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve establishments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  establishments,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}

func findEstablishmentAndOwner(c *gin.Context) (*models.Establishment, *models.User, bool) {
	establishmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid establishment ID format")
		return nil, nil, false
	}

	var establishment models.Establishment
	if err := config.DB.First(&establishment, "id = ?", establishmentUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Establishment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, nil, false
	}

	var owner models.User
	if err := config.DB.Where("establishment_id = ? AND role = ?", establishment.ID, models.RoleOwner).
		First(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusInternalServerError, "Establishment has no owner")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, nil, false
	}

	return &establishment, &owner, true
}

// ApproveEstablishment marks an establishment APROVADO and notifies its
// owner. The confirmation email is the one delivery the caller must know
// about, so its failure is surfaced; the SMS notice is best-effort.
func ApproveEstablishment(c *gin.Context) {
	establishment, owner, ok := findEstablishmentAndOwner(c)
	if !ok {
		return
	}

	if establishment.ApprovalStatus == models.EstablishmentApproved {
		utils.RespondWithError(c, http.StatusBadRequest, "Establishment is already approved")
		return
	}

	if err := config.DB.Model(establishment).
		Updates(map[string]interface{}{
			"approval_status": models.EstablishmentApproved,
			"is_active":       true,
		}).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to approve establishment")
		return
	}

	notifier := services.NewNotifier(config.DB)

	subject := "Cadastro aprovado"
	body := fmt.Sprintf("Olá %s, o estabelecimento %q foi aprovado e já pode operar.", owner.Name, establishment.Name)
	sendErr := services.NewMailer().Send(owner.Email, subject, body)
	notifier.LogEmail(establishment.ID, "approval", owner.Email, subject, sendErr)
	if sendErr != nil {
		utils.RespondWithError(c, http.StatusBadGateway, "Establishment approved but confirmation email failed: "+sendErr.Error())
		return
	}

	if owner.Phone != "" {
		notifier.SendSMS(establishment.ID, nil, "approval", owner.Phone,
			fmt.Sprintf("Seu estabelecimento %q foi aprovado!", establishment.Name))
	}

	c.JSON(http.StatusOK, gin.H{"message": "Establishment approved", "establishment": establishment})
}

// RejectEstablishment marks an establishment REJEITADO and notifies its owner
func RejectEstablishment(c *gin.Context) {
	establishment, owner, ok := findEstablishmentAndOwner(c)
	if !ok {
		return
	}

	if establishment.ApprovalStatus == models.EstablishmentRejected {
		utils.RespondWithError(c, http.StatusBadRequest, "Establishment is already rejected")
		return
	}

	if err := config.DB.Model(establishment).
		Updates(map[string]interface{}{
			"approval_status": models.EstablishmentRejected,
			"is_active":       false,
		}).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to reject establishment")
		return
	}

	notifier := services.NewNotifier(config.DB)

	subject := "Cadastro rejeitado"
	body := fmt.Sprintf("Olá %s, infelizmente o cadastro do estabelecimento %q foi rejeitado.", owner.Name, establishment.Name)
	sendErr := services.NewMailer().Send(owner.Email, subject, body)
	notifier.LogEmail(establishment.ID, "rejection", owner.Email, subject, sendErr)
	if sendErr != nil {
		utils.RespondWithError(c, http.StatusBadGateway, "Establishment rejected but confirmation email failed: "+sendErr.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Establishment rejected", "establishment": establishment})
}

// DeactivateEstablishment suspends an approved establishment
func DeactivateEstablishment(c *gin.Context) {
	setEstablishmentActive(c, false)
}

// ActivateEstablishment reinstates a suspended establishment
func ActivateEstablishment(c *gin.Context) {
	setEstablishmentActive(c, true)
}

func setEstablishmentActive(c *gin.Context, active bool) {
	establishmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid establishment ID format")
		return
	}

	var establishment models.Establishment
	if err := config.DB.First(&establishment, "id = ?", establishmentUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Establishment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if active && establishment.ApprovalStatus != models.EstablishmentApproved {
		utils.RespondWithError(c, http.StatusBadRequest, "Only approved establishments can be activated")
		return
	}

	if err := config.DB.Model(&establishment).Update("is_active", active).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update establishment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Establishment updated", "establishment": establishment})
}
