package models

import (
	"time"
)

// Investment holds the running total invested per user per metal
type Investment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `json:"user_id" gorm:"uniqueIndex:idx_user_metal"`
	MetalType     string    `json:"metal_type" gorm:"uniqueIndex:idx_user_metal"`
	TotalAmount   float64   `json:"total_amount"`
	WeightInGrams float64   `json:"weight_in_grams"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
