package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an app user. Identity issuance (signup, OTP, social
// login) lives in the auth provider; this row only anchors ownership of
// transactions and investments.
type User struct {
	gorm.Model
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone       string    `json:"phone"`
	IsBlocked   bool      `json:"is_blocked"`
	IsAdmin     bool      `json:"is_admin" gorm:"default:false"`
	LastLoginAt time.Time `json:"last_login_at"`

	Transactions []Transaction `json:"transactions,omitempty" gorm:"foreignKey:UserID"`
	Investments  []Investment  `json:"investments,omitempty" gorm:"foreignKey:UserID"`
}
