package models

import (
	"time"
)

// MetalPrice is the latest known price per gram for a metal
type MetalPrice struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Type         string    `json:"type" gorm:"uniqueIndex"` // gold, silver
	PricePerGram float64   `json:"price_per_gram"`
	UpdatedAt    time.Time `json:"updated_at"`
}
