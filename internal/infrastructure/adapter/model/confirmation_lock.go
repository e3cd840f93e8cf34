package model

import (
	"time"
)

// ConfirmationLock marks a pending transaction as being confirmed by one holder
type ConfirmationLock struct {
	TransactionID string    `gorm:"primaryKey;size:64"`
	Token         string    `gorm:"not null;size:64"`
	LockedAt      time.Time `gorm:"not null"`
	ExpiresAt     time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for ConfirmationLock
func (ConfirmationLock) TableName() string {
	return "confirmation_locks"
}
