package cashfree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wealth-horizon/BloomVest/models"
)

func TestMapOrderStatus(t *testing.T) {
	tests := []struct {
		provider string
		want     models.TransactionStatus
	}{
		{"SUCCESS", models.TransactionStatusSuccess},
		{"PAID", models.TransactionStatusSuccess},
		{"PENDING", models.TransactionStatusPending},
		{"ACTIVE", models.TransactionStatusPending},
		{"AWAITING_PAYMENT", models.TransactionStatusPending},
		{"FAILED", models.TransactionStatusFailed},
		{"CANCELLED", models.TransactionStatusFailed},
		{"EXPIRED", models.TransactionStatusFailed},
		{"FAILURE", models.TransactionStatusFailed},
		{"DECLINED", models.TransactionStatusFailed},
		// Unrecognized codes stay pending rather than failing the order.
		{"USER_DROPPED", models.TransactionStatusPending},
		{"paid", models.TransactionStatusPending},
		{"Success", models.TransactionStatusPending},
		{"", models.TransactionStatusPending},
		{"PAID ", models.TransactionStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			assert.Equal(t, tt.want, MapOrderStatus(tt.provider))
		})
	}
}
