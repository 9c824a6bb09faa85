package models

import (
	"time"
)

// TransactionStatus is the internal tri-state payment status
type TransactionStatus string

// Transaction status constants
const (
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// IsTerminal reports whether the status can no longer change
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusSuccess || s == TransactionStatusFailed
}

// Transaction represents one payment attempt at the gateway
type Transaction struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	OrderID     string            `json:"order_id" gorm:"uniqueIndex;not null"`
	UserID      uint              `json:"user_id" gorm:"index"`
	Amount      float64           `json:"amount"`
	MetalType   string            `json:"metal_type"` // gold, silver
	Status      TransactionStatus `json:"status" gorm:"default:PENDING;index"`
	CFPaymentID string            `json:"cf_payment_id"`
	RawPayload  string            `json:"-" gorm:"type:text"` // last provider response, for audit
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// MetalType constants
const (
	MetalTypeGold   = "gold"
	MetalTypeSilver = "silver"
)

// ValidMetalType checks a metal type against the supported set
func ValidMetalType(metal string) bool {
	return metal == MetalTypeGold || metal == MetalTypeSilver
}
