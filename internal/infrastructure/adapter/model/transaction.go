package model

import (
	"time"
)

// Transaction represents the database model for purchase transactions
type Transaction struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement"`
	TransactionID    string    `gorm:"uniqueIndex;not null;size:64"`
	UserID           string    `gorm:"not null;size:64;index"`
	ProductID        string    `gorm:"not null;size:64"`
	PackageID        string    `gorm:"not null;size:64"`
	PaymentMethodID  string    `gorm:"not null;size:64"`
	GameAccountID    string    `gorm:"size:255"`
	ProductLabel     string    `gorm:"not null;size:512"`
	ProviderEntityID string    `gorm:"size:100"`
	ProviderDenomID  string    `gorm:"size:100"`
	Price            int64     `gorm:"not null"`
	Fee              int64     `gorm:"not null"`
	Total            int64     `gorm:"not null"`
	Status           string    `gorm:"not null;size:20"`
	ProviderOrderID  *string   `gorm:"size:255"`
	FulfillmentError string    `gorm:"type:text"`
	FailureReason    string    `gorm:"type:text"`
	CreatedAt        time.Time `gorm:"not null"`
	FinalizedAt      *time.Time
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}
