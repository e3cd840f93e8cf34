package model

import (
	"time"
)

// UserBalance represents the database model for per-user balances
type UserBalance struct {
	UserID    string    `gorm:"primaryKey;size:64"`
	Balance   int64     `gorm:"not null;default:0"` // minor units, never negative
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for UserBalance
func (UserBalance) TableName() string {
	return "user_balances"
}
