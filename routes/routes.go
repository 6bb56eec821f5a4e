package routes

import (
	"os"
	"strings"

	"github.com/klugao/bartab-sub001/config"
	"github.com/klugao/bartab-sub001/controllers"
	"github.com/klugao/bartab-sub001/models"
	"github.com/klugao/bartab-sub001/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}
	if env := os.Getenv("CORS_ALLOWED_ORIGINS"); env != "" {
		allowedOrigins = strings.Split(env, ",")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware(), controllers.RequireApprovedEstablishment())
	{
		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)
			customers.GET("/:id/debts", controllers.GetCustomerDebts)
			customers.POST("/:id/repay", controllers.RepayCustomerDebt)
		}

		// Item routes
		items := api.Group("/items")
		{
			items.POST("", controllers.CreateItem)
			items.GET("", controllers.GetItems)
			items.GET("/:id", controllers.GetItem)
			items.PUT("/:id", controllers.UpdateItem)
			items.DELETE("/:id", controllers.DeleteItem)
		}

		// Tab routes
		tabs := api.Group("/tabs")
		{
			tabs.POST("", controllers.OpenTab)
			tabs.GET("", controllers.GetTabs)
			tabs.GET("/:id", controllers.GetTab)
			tabs.DELETE("/:id", controllers.DeleteTab)
			tabs.POST("/:id/items", controllers.AddTabItem)
			tabs.DELETE("/:id/items/:itemId", controllers.RemoveTabItem)
			tabs.POST("/:id/payments", controllers.CreateTabPayment)
		}

		// Expense routes
		expenses := api.Group("/expenses")
		{
			expenses.POST("", controllers.CreateExpense)
			expenses.GET("", controllers.GetExpenses)
			expenses.GET("/:id", controllers.GetExpense)
			expenses.PUT("/:id", controllers.UpdateExpense)
			expenses.DELETE("/:id", controllers.DeleteExpense)
		}

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)

		// Privacy (LGPD) routes
		privacy := api.Group("/privacy")
		{
			privacy.GET("/customers/:id/export", controllers.ExportCustomerData)
			privacy.DELETE("/customers/:id", controllers.EraseCustomerData)
		}
	}

	// Platform admin routes
	admin := r.Group("/admin")
	admin.Use(utils.AuthMiddleware(), utils.RequireRole(models.RoleAdmin))
	{
		admin.GET("/establishments", controllers.GetEstablishments)
		admin.POST("/establishments/:id/approve", controllers.ApproveEstablishment)
		admin.POST("/establishments/:id/reject", controllers.RejectEstablishment)
		admin.POST("/establishments/:id/activate", controllers.ActivateEstablishment)
		admin.POST("/establishments/:id/deactivate", controllers.DeactivateEstablishment)
	}

	return r
}
