package cashfree

import (
	"github.com/wealth-horizon/BloomVest/models"
)

// MapOrderStatus translates a Cashfree order/payment status string to the
// internal transaction status. Matching is exact and case-sensitive;
// anything outside the known set stays PENDING so an unrecognized status
// code never fails a transaction prematurely.
func MapOrderStatus(providerStatus string) models.TransactionStatus {
	switch providerStatus {
	case "SUCCESS", "PAID":
		return models.TransactionStatusSuccess
	case "PENDING", "ACTIVE", "AWAITING_PAYMENT":
		return models.TransactionStatusPending
	case "FAILED", "CANCELLED", "EXPIRED", "FAILURE", "DECLINED":
		return models.TransactionStatusFailed
	default:
		return models.TransactionStatusPending
	}
}
