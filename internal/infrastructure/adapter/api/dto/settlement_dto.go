package dto

import (
	"time"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
)

// SettlementEventResponse is the streamed view of a settlement event
type SettlementEventResponse struct {
	EventID       string    `json:"eventId"`
	TransactionID string    `json:"transactionId"`
	UserID        string    `json:"userId"`
	ProductLabel  string    `json:"productLabel"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewSettlementEventResponse maps a settlement event to its API view
func NewSettlementEventResponse(evt *entity.SettlementEvent) SettlementEventResponse {
	return SettlementEventResponse{
		EventID:       evt.EventID,
		TransactionID: evt.TransactionID,
		UserID:        evt.UserID,
		ProductLabel:  evt.ProductLabel,
		Amount:        evt.Amount,
		Status:        string(evt.Status),
		Timestamp:     evt.Timestamp,
	}
}

// HealthResponse reports the state of the service and its dependencies
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
