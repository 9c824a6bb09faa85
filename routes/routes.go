package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/wealth-horizon/BloomVest/config"
	"github.com/wealth-horizon/BloomVest/controllers"
	"github.com/wealth-horizon/BloomVest/middleware"
	"github.com/wealth-horizon/BloomVest/utils"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()

	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	// API version group
	api := router.Group("/v1")
	{
		// Public
		api.GET("/prices", controllers.GetMetalPrices)

		// Provider webhooks (signature-gated, no user auth)
		api.POST("/webhooks/cashfree", controllers.HandleCashfreeWebhook)

		// User endpoints
		user := api.Group("")
		user.Use(middleware.AuthMiddleware())
		{
			user.POST("/payments/initiate", controllers.InitiatePayment)
			user.GET("/payments/:orderId/status", controllers.GetPaymentStatus)
			user.GET("/transactions", controllers.GetTransactionHistory)
			user.GET("/transactions/:orderId/receipt", controllers.DownloadReceipt)
			user.GET("/investments", controllers.GetUserInvestments)
		}

		// Operator endpoints
		admin := api.Group("/admin")
		admin.Use(middleware.AdminKeyMiddleware(cfg.AdminAPIKeyHash))
		{
			admin.POST("/transactions/sync", controllers.SyncTransactions)
			admin.GET("/transactions/export", controllers.ExportTransactionsExcel)
			admin.PUT("/prices/:metal", controllers.UpdateMetalPrice)
		}
	}

	return router
}
