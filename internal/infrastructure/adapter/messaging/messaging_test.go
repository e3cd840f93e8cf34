package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/logger"
	coremock "github.com/amirhossein-jamali/topup-ledger/mocks/port/core"
	eventmock "github.com/amirhossein-jamali/topup-ledger/mocks/port/event"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithDeferredConfirmWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) (*amqp.DeferredConfirmation, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil, nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func testEvent() *entity.SettlementEvent {
	return &entity.SettlementEvent{
		EventID:       "evt-1",
		TransactionID: "TRX1",
		UserID:        "user-1",
		ProductLabel:  "Mobile Legends - 86 Diamonds",
		Amount:        10750,
		Status:        entity.StatusSuccess,
		Timestamp:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRabbitPublisher_Publish(t *testing.T) {
	t.Run("publishes persistent json to the status routing key", func(t *testing.T) {
		// Arrange
		ch := &fakeChannel{}
		p := NewRabbitPublisher(ch, "settlements", logger.NewNoopLogger())

		// Act
		err := p.Publish(context.Background(), testEvent())

		// Assert
		require.NoError(t, err)
		require.Len(t, ch.sent, 1)
		sent := ch.sent[0]
		assert.Equal(t, "settlements", sent.exchange)
		assert.Equal(t, "settlement.success", sent.key)
		assert.Equal(t, amqp.Persistent, sent.msg.DeliveryMode)
		assert.Equal(t, "application/json", sent.msg.ContentType)
		assert.Equal(t, "evt-1", sent.msg.MessageId)

		var body map[string]any
		require.NoError(t, json.Unmarshal(sent.msg.Body, &body))
		assert.Equal(t, "TRX1", body["transactionId"])
		assert.Equal(t, "user-1", body["userId"])
		assert.Equal(t, "Mobile Legends - 86 Diamonds", body["productLabel"])
		assert.Equal(t, float64(10750), body["amount"])
		assert.Equal(t, "success", body["status"])
		assert.Equal(t, "2024-03-01T10:00:00Z", body["timestamp"])
	})

	t.Run("channel errors are returned", func(t *testing.T) {
		ch := &fakeChannel{err: amqp.ErrClosed}
		p := NewRabbitPublisher(ch, "settlements", logger.NewNoopLogger())

		err := p.Publish(context.Background(), testEvent())

		assert.ErrorIs(t, err, amqp.ErrClosed)
	})

	t.Run("close closes the channel", func(t *testing.T) {
		ch := &fakeChannel{}
		require.NoError(t, NewRabbitPublisher(ch, "x", logger.NewNoopLogger()).Close())
		assert.True(t, ch.closed)
	})
}

func TestFanoutPublisher_Publish(t *testing.T) {
	t.Run("secondary failure is only logged", func(t *testing.T) {
		ctx := context.Background()
		evt := testEvent()
		primary := eventmock.NewMockPublisher(t)
		secondary := eventmock.NewMockPublisher(t)
		log := coremock.NewMockLogger(t)
		primary.On("Publish", ctx, evt).Return(nil).Once()
		secondary.On("Publish", ctx, evt).Return(errors.New("hub closed")).Once()
		log.On("Warn", "Secondary settlement publisher failed", mock.Anything).Return().Once()

		err := NewFanoutPublisher(log, primary, secondary).Publish(ctx, evt)

		assert.NoError(t, err)
	})

	t.Run("primary failure skips secondaries", func(t *testing.T) {
		ctx := context.Background()
		evt := testEvent()
		primary := eventmock.NewMockPublisher(t)
		secondary := eventmock.NewMockPublisher(t)
		primary.On("Publish", ctx, evt).Return(errors.New("broker down")).Once()

		err := NewFanoutPublisher(logger.NewNoopLogger(), primary, secondary).Publish(ctx, evt)

		assert.EqualError(t, err, "broker down")
		secondary.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestLogPublisher_Publish(t *testing.T) {
	log := coremock.NewMockLogger(t)
	log.On("Info", "Settlement event", mock.MatchedBy(func(fields map[string]any) bool {
		return fields["transaction_id"] == "TRX1" && fields["amount"] == int64(10750)
	})).Return().Once()

	assert.NoError(t, NewLogPublisher(log).Publish(context.Background(), testEvent()))
}
