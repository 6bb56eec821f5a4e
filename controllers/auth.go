// controllers/auth.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/klugao/bartab-sub001/config"
	"github.com/klugao/bartab-sub001/models"
	"github.com/klugao/bartab-sub001/services"
	"github.com/klugao/bartab-sub001/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Email                string `json:"email" binding:"required,email"`
	Phone                string `json:"phone" binding:"required"`
	Name                 string `json:"name" binding:"required"`
	Password             string `json:"password" binding:"required,min=8"`
	EstablishmentName    string `json:"establishmentName" binding:"required"`
	EstablishmentAddress string `json:"establishmentAddress"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates the owner account and their establishment, which starts
// in PENDENTE until a platform admin approves it.
func Register(c *gin.Context) {
	var input RegisterInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	// Check if email already exists
	var existingUser models.User
	result := config.DB.Where("email = ?", input.Email).First(&existingUser)
	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	establishment := models.Establishment{
		Name:           input.EstablishmentName,
		Address:        input.EstablishmentAddress,
		ApprovalStatus: models.EstablishmentPending,
		IsActive:       false,
	}

	newUser := models.User{
		Email:    input.Email,
		Phone:    input.Phone,
		Name:     input.Name,
		Password: input.Password, // hashed in BeforeCreate hook
		Role:     models.RoleOwner,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&establishment).Error; err != nil {
			return err
		}
		newUser.EstablishmentID = &establishment.ID
		return tx.Create(&newUser).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	// Tell the platform admin there is a signup to review. Delivery failure
	// must not block registration, so it is logged and swallowed.
	if adminEmail := services.AdminEmail(); adminEmail != "" {
		mailer := services.NewMailer()
		subject := "Novo estabelecimento aguardando aprovação"
		body := fmt.Sprintf("O estabelecimento %q (%s) se cadastrou e aguarda aprovação.",
			establishment.Name, input.Email)
		sendErr := mailer.Send(adminEmail, subject, body)
		if sendErr != nil {
			utils.ErrorLogger.Printf("Failed to notify admin of signup: %v", sendErr)
		}
		services.NewNotifier(config.DB).LogEmail(establishment.ID, "signup", adminEmail, subject, sendErr)
	}

	token, err := utils.GenerateToken(newUser.ID.String(), establishment.ID.String(), newUser.Role)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful, awaiting approval",
		"token":   token,
		"user": gin.H{
			"id":    newUser.ID,
			"email": newUser.Email,
			"name":  newUser.Name,
			"role":  newUser.Role,
		},
		"establishment": gin.H{
			"id":             establishment.ID,
			"name":           establishment.Name,
			"approvalStatus": establishment.ApprovalStatus,
		},
	})
}

func Login(c *gin.Context) {
	var input LoginInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	email := strings.TrimSpace(input.Email)

	var user models.User
	result := config.DB.Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !user.IsActive {
		utils.RespondWithError(c, http.StatusUnauthorized, "Account is disabled")
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	establishmentID := ""
	if user.EstablishmentID != nil {
		establishmentID = user.EstablishmentID.String()
	}

	token, err := utils.GenerateToken(user.ID.String(), establishmentID, user.Role)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	now := time.Now()
	config.DB.Model(&user).Update("last_login", &now)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

func Me(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusInternalServerError, "User ID not found in context")
		return
	}

	var user models.User
	if err := config.DB.Preload("Establishment").First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":            user.ID,
			"email":         user.Email,
			"name":          user.Name,
			"role":          user.Role,
			"establishment": user.Establishment,
		},
	})
}
