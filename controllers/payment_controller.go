package controllers

import (
	"fmt"
	"strconv"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wealth-horizon/BloomVest/cashfree"
	"github.com/wealth-horizon/BloomVest/models"
	"github.com/wealth-horizon/BloomVest/services"
	"github.com/wealth-horizon/BloomVest/utils"
)

// POST /v1/payments/initiate
func InitiatePayment(c *gin.Context) {
	utils.LogInfo("InitiatePayment called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)
	userID := user.ID
	utils.LogInfo("Processing payment initiation for user ID: %d", userID)

	var req struct {
		Amount    float64 `json:"amount" binding:"required,min=1"`
		MetalType string  `json:"metal_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid request for user ID: %d: %v", userID, err)
		utils.BadRequest(c, "Invalid request. amount and metal_type are required", err.Error())
		return
	}
	if !models.ValidMetalType(req.MetalType) {
		utils.LogError("Invalid metal type %q for user ID: %d", req.MetalType, userID)
		utils.BadRequest(c, "metal_type must be gold or silver", nil)
		return
	}

	orderID := "order_" + uuid.New().String()
	utils.LogDebug("Generated order ID %s for user ID: %d", orderID, userID)

	orderReq := cashfree.CreateOrderRequest{
		OrderID:       orderID,
		OrderAmount:   req.Amount,
		OrderCurrency: "INR",
		OrderTags: map[string]string{
			"user_id":    strconv.FormatUint(uint64(userID), 10),
			"metal_type": req.MetalType,
		},
		OrderNote: fmt.Sprintf("Buy %s for Rs.%.2f", req.MetalType, req.Amount),
	}
	orderReq.CustomerDetails.CustomerID = strconv.FormatUint(uint64(userID), 10)
	orderReq.CustomerDetails.CustomerEmail = user.Email
	orderReq.CustomerDetails.CustomerPhone = user.Phone

	cfOrder, err := gatewayClient.CreateOrder(c.Request.Context(), orderReq)
	if err != nil {
		utils.LogError("Failed to create Cashfree order for user ID: %d: %v", userID, err)
		utils.InternalServerError(c, "Failed to create payment order", err.Error())
		return
	}
	utils.LogInfo("Created Cashfree order %s for user ID: %d", orderID, userID)

	txn := models.Transaction{
		OrderID:   orderID,
		UserID:    userID,
		Amount:    req.Amount,
		MetalType: req.MetalType,
		Status:    models.TransactionStatusPending,
	}
	if err := paymentStore.CreateTransaction(c.Request.Context(), &txn); err != nil {
		utils.LogError("Failed to record transaction for order %s: %v", orderID, err)
		utils.InternalServerError(c, "Failed to record transaction", err.Error())
		return
	}
	utils.LogDebug("Recorded pending transaction for order %s", orderID)

	utils.Success(c, "Payment order created successfully", gin.H{
		"order_id":           orderID,
		"payment_session_id": cfOrder.PaymentSessionID,
		"amount":             fmt.Sprintf("%.2f", req.Amount),
		"amount_display":     fmt.Sprintf("₹%.2f", req.Amount),
		"metal_type":         req.MetalType,
		"status":             txn.Status,
	})
}

// GET /v1/payments/:orderId/status
//
// Reconciles on read so a user polling after checkout sees the settled
// state even when the webhook has not arrived yet.
func GetPaymentStatus(c *gin.Context) {
	utils.LogInfo("GetPaymentStatus called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)
	orderID := c.Param("orderId")
	utils.LogInfo("Checking payment status for order %s, user ID: %d", orderID, user.ID)

	txn, err := paymentStore.FindTransaction(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.NotFound(c, "Transaction not found")
			return
		}
		utils.LogError("Failed to load transaction %s: %v", orderID, err)
		utils.InternalServerError(c, "Failed to load transaction", err.Error())
		return
	}
	if txn.UserID != user.ID {
		utils.LogError("Order %s does not belong to user ID: %d", orderID, user.ID)
		utils.NotFound(c, "Transaction not found")
		return
	}

	result, err := reconciler.Reconcile(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, services.ErrProviderUnavailable) {
			utils.LogError("Provider unavailable during status check for order %s: %v", orderID, err)
			// Serve the last known local state rather than failing the read.
			utils.Success(c, "Payment status (provider unreachable, last known state)", gin.H{
				"order_id":   txn.OrderID,
				"status":     txn.Status,
				"amount":     fmt.Sprintf("%.2f", txn.Amount),
				"metal_type": txn.MetalType,
				"stale":      true,
			})
			return
		}
		utils.LogError("Failed to reconcile order %s: %v", orderID, err)
		utils.InternalServerError(c, "Failed to check payment status", err.Error())
		return
	}

	current, err := paymentStore.FindTransaction(c.Request.Context(), orderID)
	if err != nil {
		utils.LogError("Failed to reload transaction %s: %v", orderID, err)
		utils.InternalServerError(c, "Failed to load transaction", err.Error())
		return
	}

	utils.LogInfo("Payment status for order %s: %s (no-op: %v)", orderID, current.Status, result.WasNoOp)
	utils.Success(c, "Payment status retrieved successfully", gin.H{
		"order_id":      current.OrderID,
		"status":        current.Status,
		"amount":        fmt.Sprintf("%.2f", current.Amount),
		"metal_type":    current.MetalType,
		"cf_payment_id": current.CFPaymentID,
		"updated_at":    current.UpdatedAt,
	})
}
