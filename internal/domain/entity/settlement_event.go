package entity

import "time"

// SettlementEvent announces that a transaction was paid for.
// Exactly one exists per successful transaction.
type SettlementEvent struct {
	EventID       string
	TransactionID string
	UserID        string
	ProductLabel  string
	Amount        int64
	Status        TransactionStatus
	Timestamp     time.Time
	PublishedAt   *time.Time
}

// NewSettlementEvent builds the event for a successful transaction
func NewSettlementEvent(eventID string, txn *Transaction, at time.Time) *SettlementEvent {
	return &SettlementEvent{
		EventID:       eventID,
		TransactionID: txn.TransactionID,
		UserID:        txn.UserID,
		ProductLabel:  txn.ProductLabel,
		Amount:        txn.Total,
		Status:        txn.Status,
		Timestamp:     at,
	}
}

// IsPublished reports whether the event was handed to the message bus
func (e *SettlementEvent) IsPublished() bool {
	return e.PublishedAt != nil
}
