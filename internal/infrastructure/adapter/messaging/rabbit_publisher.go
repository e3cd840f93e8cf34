package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/event"
)

// RoutingKeyPrefix is followed by the transaction status, e.g. settlement.success
const RoutingKeyPrefix = "settlement."

// SettlementMessage is the wire format of a settlement event
type SettlementMessage struct {
	EventID       string    `json:"eventId"`
	TransactionID string    `json:"transactionId"`
	UserID        string    `json:"userId"`
	ProductLabel  string    `json:"productLabel"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewSettlementMessage converts an event to its wire format
func NewSettlementMessage(evt *entity.SettlementEvent) SettlementMessage {
	return SettlementMessage{
		EventID:       evt.EventID,
		TransactionID: evt.TransactionID,
		UserID:        evt.UserID,
		ProductLabel:  evt.ProductLabel,
		Amount:        evt.Amount,
		Status:        string(evt.Status),
		Timestamp:     evt.Timestamp,
	}
}

// channel is the part of *amqp.Channel the publisher uses
type channel interface {
	PublishWithDeferredConfirmWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) (*amqp.DeferredConfirmation, error)
	Close() error
}

// RabbitPublisher publishes settlement events as persistent JSON messages
type RabbitPublisher struct {
	mu       sync.Mutex
	ch       channel
	exchange string
	logger   core.Logger
}

var _ event.Publisher = (*RabbitPublisher)(nil)

// NewRabbitPublisher creates a publisher on an open channel
func NewRabbitPublisher(ch channel, exchange string, logger core.Logger) *RabbitPublisher {
	return &RabbitPublisher{ch: ch, exchange: exchange, logger: logger}
}

// Publish sends the event and, on a confirm-mode channel, waits for the broker ack
func (p *RabbitPublisher) Publish(ctx context.Context, evt *entity.SettlementEvent) error {
	body, err := json.Marshal(NewSettlementMessage(evt))
	if err != nil {
		return fmt.Errorf("failed to encode settlement event %s: %w", evt.EventID, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.EventID,
		Timestamp:    evt.Timestamp,
		Type:         "settlement",
		Body:         body,
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	confirm, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, RoutingKeyPrefix+string(evt.Status), false, false, msg)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish settlement event %s: %w", evt.EventID, err)
	}
	if confirm == nil {
		return nil
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to confirm settlement event %s: %w", evt.EventID, err)
	}
	if !acked {
		return fmt.Errorf("broker nacked settlement event %s", evt.EventID)
	}

	p.logger.Debug("Settlement event published", map[string]any{
		"event_id":       evt.EventID,
		"transaction_id": evt.TransactionID,
	})
	return nil
}

// Close closes the channel
func (p *RabbitPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}
