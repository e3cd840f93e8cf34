package model

import (
	"time"
)

// SettlementEvent represents the outbox row announcing a paid transaction
type SettlementEvent struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	EventID       string    `gorm:"uniqueIndex;not null;size:64"`
	TransactionID string    `gorm:"uniqueIndex;not null;size:64"`
	UserID        string    `gorm:"not null;size:64"`
	ProductLabel  string    `gorm:"not null;size:512"`
	Amount        int64     `gorm:"not null"`
	Status        string    `gorm:"not null;size:20"`
	Timestamp     time.Time `gorm:"not null"`
	PublishedAt   *time.Time
}

// TableName specifies the table name for SettlementEvent
func (SettlementEvent) TableName() string {
	return "settlement_events"
}
