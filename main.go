package main

import (
	"log"

	"github.com/wealth-horizon/BloomVest/config"
	"github.com/wealth-horizon/BloomVest/controllers"
	"github.com/wealth-horizon/BloomVest/routes"
	"github.com/wealth-horizon/BloomVest/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Initialize database
	config.InitDB()

	// Wire up the payment gateway client and reconciliation core
	controllers.InitPaymentServices(cfg)

	// Set up router (middleware is mounted before the route groups)
	router := routes.SetupRouter(cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	utils.LogInfo("Server starting on port %s", port)
	// Start server
	if err := router.Run(":" + port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
