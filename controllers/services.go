package controllers

import (
	"time"

	"github.com/wealth-horizon/BloomVest/cashfree"
	"github.com/wealth-horizon/BloomVest/config"
	"github.com/wealth-horizon/BloomVest/models"
	"github.com/wealth-horizon/BloomVest/services"
	"github.com/wealth-horizon/BloomVest/utils"
)

// Shared collaborators for the payment handlers. Wired once at startup via
// InitPaymentServices; tests swap them for fakes.
var (
	paymentStore  services.Store
	reconciler    *services.ReconciliationService
	sweeper       *services.Sweeper
	priceFeed     services.PriceFeed
	gatewayClient *cashfree.Client
	webhookSecret string
)

// successMailer emails the user once a payment settles. Best effort only.
type successMailer struct{}

func (successMailer) NotifySuccess(txn models.Transaction, weightInGrams float64) {
	var user models.User
	if err := config.DB.First(&user, txn.UserID).Error; err != nil {
		utils.LogError("Confirmation mail skipped, user %d not found: %v", txn.UserID, err)
		return
	}
	if err := utils.SendPaymentConfirmation(user.Email, user.Username, txn.OrderID, txn.MetalType, txn.Amount, weightInGrams); err != nil {
		utils.LogError("Failed to send confirmation mail for order %s: %v", txn.OrderID, err)
	}
}

// InitPaymentServices builds the payment gateway client, the persistence
// store and the reconciliation core from loaded configuration.
func InitPaymentServices(cfg *config.Config) {
	client := cashfree.NewClient(cfg.CashfreeBaseURL, cfg.CashfreeClientID, cfg.CashfreeClientSecret, 10*time.Second)
	store := services.NewGormStore(config.DB)
	prices := services.NewDBPriceFeed(config.DB, cfg.PriceFallbacks())
	accumulator := services.NewInvestmentAccumulator(prices)

	paymentStore = store
	gatewayClient = client
	priceFeed = prices
	reconciler = services.NewReconciliationService(store, client, accumulator, successMailer{})
	sweeper = services.NewSweeper(store, reconciler)
	webhookSecret = cfg.CashfreeWebhookSecret

	utils.LogInfo("Payment services initialized (gateway: %s)", cfg.CashfreeBaseURL)
}
