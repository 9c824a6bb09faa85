package controllers

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/wealth-horizon/BloomVest/cashfree"
	"github.com/wealth-horizon/BloomVest/services"
	"github.com/wealth-horizon/BloomVest/utils"
)

// webhookEnvelope is the slice of the Cashfree webhook payload the handler
// needs: the order id. Status is re-fetched from the provider during
// reconciliation rather than trusted from the notification body.
type webhookEnvelope struct {
	Type string `json:"type"`
	Data struct {
		Order struct {
			OrderID string `json:"order_id"`
		} `json:"order"`
		Payment struct {
			CFPaymentID   json.Number `json:"cf_payment_id"`
			PaymentStatus string      `json:"payment_status"`
		} `json:"payment"`
	} `json:"data"`
	EventTime string `json:"event_time"`
}

// POST /v1/webhooks/cashfree
//
// Authentication failures get a 4xx so Cashfree flags the endpoint;
// anything after the signature gate returns 200 even on internal failure,
// because the provider's retry storm would only repeat the same work and
// the polling sweep is the designated recovery path.
func HandleCashfreeWebhook(c *gin.Context) {
	utils.LogInfo("HandleCashfreeWebhook called")

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.LogError("Failed to read webhook body: %v", err)
		utils.BadRequest(c, "Unable to read request body", nil)
		return
	}

	signature := c.GetHeader("x-webhook-signature")
	timestamp := c.GetHeader("x-webhook-timestamp")
	if !cashfree.VerifySignature(rawBody, timestamp, signature, webhookSecret) {
		utils.LogError("Webhook signature verification failed (timestamp: %q)", timestamp)
		utils.Unauthorized(c, "Invalid webhook signature")
		return
	}
	utils.LogDebug("Webhook signature verified")

	var envelope webhookEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		utils.LogError("Malformed webhook payload: %v", err)
		utils.BadRequest(c, "Malformed webhook payload", nil)
		return
	}

	orderID := envelope.Data.Order.OrderID
	if orderID == "" {
		utils.LogError("Webhook payload missing order_id (type: %s)", envelope.Type)
		utils.BadRequest(c, "Missing order_id in webhook payload", nil)
		return
	}
	utils.LogInfo("Processing webhook for order %s (event: %s, reported status: %s)",
		orderID, envelope.Type, envelope.Data.Payment.PaymentStatus)

	result, err := reconciler.Reconcile(c.Request.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.LogError("Webhook for unknown order %s", orderID)
		case errors.Is(err, services.ErrProviderUnavailable):
			utils.LogError("Provider unavailable while processing webhook for order %s: %v", orderID, err)
		default:
			utils.LogError("Webhook reconciliation failed for order %s: %v", orderID, err)
		}
		// Acknowledge anyway; the sweep retries pending orders.
		utils.Success(c, "Webhook received", gin.H{
			"order_id":  orderID,
			"processed": false,
		})
		return
	}

	utils.LogInfo("Webhook processed for order %s: status %s, no-op: %v", orderID, result.AppliedStatus, result.WasNoOp)
	utils.Success(c, "Webhook processed", gin.H{
		"order_id":  orderID,
		"status":    result.AppliedStatus,
		"processed": !result.WasNoOp,
	})
}
