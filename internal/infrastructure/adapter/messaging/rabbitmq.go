package messaging

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
)

// Config holds the broker settings
type Config struct {
	URL      string
	Exchange string
}

// RabbitMQ owns the broker connection
type RabbitMQ struct {
	conn   *amqp.Connection
	logger core.Logger
}

// NewConnection dials the broker
func NewConnection(cfg Config, logger core.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	logger.Info("Successfully connected to RabbitMQ", nil)
	return &RabbitMQ{conn: conn, logger: logger}, nil
}

// OpenChannel opens a new channel on the connection
func (r *RabbitMQ) OpenChannel() (*amqp.Channel, error) {
	if r.conn == nil || r.conn.IsClosed() {
		return nil, fmt.Errorf("connection is closed")
	}

	ch, err := r.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return ch, nil
}

// DeclareExchange declares the durable topic exchange settlement events go to
func (r *RabbitMQ) DeclareExchange(name string) error {
	ch, err := r.OpenChannel()
	if err != nil {
		return fmt.Errorf("failed to open channel for topology: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(name, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", name, err)
	}

	r.logger.Info("Exchange declared successfully", map[string]any{"exchange": name})
	return nil
}

// CreateSettlementPublisher opens a confirm-mode channel and wraps it in a publisher
func (r *RabbitMQ) CreateSettlementPublisher(exchange string) (*RabbitPublisher, error) {
	ch, err := r.OpenChannel()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel for publisher: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	return NewRabbitPublisher(ch, exchange, r.logger), nil
}

// Close closes the connection
func (r *RabbitMQ) Close() error {
	if r.conn != nil && !r.conn.IsClosed() {
		return r.conn.Close()
	}
	return nil
}
