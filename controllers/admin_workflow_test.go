package controllers_test

import (
	"net/http"
	"testing"

	"github.com/klugao/bartab-sub001/controllers"
	"github.com/klugao/bartab-sub001/models"
	"github.com/klugao/bartab-sub001/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAdminRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.POST("/auth/register", controllers.Register)
	r.POST("/auth/login", controllers.Login)

	admin := r.Group("/admin")
	admin.Use(fakeAuth(uuid.Nil, models.RoleAdmin))
	{
		admin.GET("/establishments", controllers.GetEstablishments)
		admin.POST("/establishments/:id/approve", controllers.ApproveEstablishment)
		admin.POST("/establishments/:id/reject", controllers.RejectEstablishment)
		admin.POST("/establishments/:id/activate", controllers.ActivateEstablishment)
		admin.POST("/establishments/:id/deactivate", controllers.DeactivateEstablishment)
	}

	return r
}

func registerOwner(t *testing.T, r *gin.Engine, email, estName string) string {
	w := doJSON(t, r, "POST", "/auth/register", gin.H{
		"email":             email,
		"phone":             "+5511977776666",
		"name":              "Dono",
		"password":          "senha-forte-1",
		"establishmentName": estName,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode(t, w)
	return resp["establishment"].(map[string]interface{})["id"].(string)
}

func TestRegistrationStartsPending(t *testing.T) {
	utils.InitLogger()
	t.Setenv("JWT_SECRET", "test-secret")
	db := setupTestDB(t)
	r := setupAdminRouter()

	estID := registerOwner(t, r, "dono@bar.com", "Bar do Zé")

	var est models.Establishment
	require.NoError(t, db.First(&est, "id = ?", estID).Error)
	assert.Equal(t, models.EstablishmentPending, est.ApprovalStatus)
	assert.False(t, est.IsActive)

	// Duplicate email is refused
	w := doJSON(t, r, "POST", "/auth/register", gin.H{
		"email":             "dono@bar.com",
		"phone":             "+5511977776666",
		"name":              "Outro",
		"password":          "senha-forte-2",
		"establishmentName": "Outro Bar",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// The pending filter finds it
	w = doJSON(t, r, "GET", "/admin/establishments?status=PENDENTE", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])
}

func TestApprovalActivatesEstablishment(t *testing.T) {
	utils.InitLogger()
	t.Setenv("JWT_SECRET", "test-secret")
	db := setupTestDB(t)
	r := setupAdminRouter()

	estID := registerOwner(t, r, "dono@boteco.com", "Boteco da Ana")

	// SMTP is not configured here, so the confirmation email fails. The
	// decision is still persisted and the failure is surfaced to the admin.
	w := doJSON(t, r, "POST", "/admin/establishments/"+estID+"/approve", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var est models.Establishment
	require.NoError(t, db.First(&est, "id = ?", estID).Error)
	assert.Equal(t, models.EstablishmentApproved, est.ApprovalStatus)
	assert.True(t, est.IsActive)

	var logs []models.NotificationLog
	require.NoError(t, db.Where("establishment_id = ? AND kind = ?", est.ID, "approval").Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "email", logs[0].Channel)
	assert.Equal(t, "failed", logs[0].Status)

	// Approving twice is refused
	w = doJSON(t, r, "POST", "/admin/establishments/"+estID+"/approve", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Suspend and reinstate
	w = doJSON(t, r, "POST", "/admin/establishments/"+estID+"/deactivate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&est, "id = ?", estID).Error)
	assert.False(t, est.IsActive)

	w = doJSON(t, r, "POST", "/admin/establishments/"+estID+"/activate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&est, "id = ?", estID).Error)
	assert.True(t, est.IsActive)
}

func TestRejectionDeactivatesEstablishment(t *testing.T) {
	utils.InitLogger()
	t.Setenv("JWT_SECRET", "test-secret")
	db := setupTestDB(t)
	r := setupAdminRouter()

	estID := registerOwner(t, r, "dono@cantina.com", "Cantina do Porto")

	w := doJSON(t, r, "POST", "/admin/establishments/"+estID+"/reject", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var est models.Establishment
	require.NoError(t, db.First(&est, "id = ?", estID).Error)
	assert.Equal(t, models.EstablishmentRejected, est.ApprovalStatus)
	assert.False(t, est.IsActive)

	// A rejected establishment cannot be activated
	w = doJSON(t, r, "POST", "/admin/establishments/"+estID+"/activate", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginAfterRegistration(t *testing.T) {
	utils.InitLogger()
	t.Setenv("JWT_SECRET", "test-secret")
	setupTestDB(t)
	r := setupAdminRouter()

	registerOwner(t, r, "dono@pub.com", "Pub Irlandês")

	w := doJSON(t, r, "POST", "/auth/login", gin.H{
		"email":    "dono@pub.com",
		"password": "senha-forte-1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.NotEmpty(t, resp["token"])
	assert.Equal(t, models.RoleOwner, resp["user"].(map[string]interface{})["role"])

	w = doJSON(t, r, "POST", "/auth/login", gin.H{
		"email":    "dono@pub.com",
		"password": "senha-errada",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
