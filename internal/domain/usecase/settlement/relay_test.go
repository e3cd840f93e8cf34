package settlement

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/memory"
	timeadapter "github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/time"
	coremock "github.com/amirhossein-jamali/topup-ledger/mocks/port/core"
	eventmock "github.com/amirhossein-jamali/topup-ledger/mocks/port/event"
)

func seedEvents(t *testing.T, store *memory.Store, n int) {
	t.Helper()
	ctx := context.Background()
	repo := store.GetSettlementEventRepository(ctx)
	for i := 1; i <= n; i++ {
		txn := &entity.Transaction{
			TransactionID: fmt.Sprintf("TRX%d", i),
			UserID:        "user-1",
			ProductLabel:  "Mobile Legends - 86 Diamonds",
			Total:         10750,
			Status:        entity.StatusSuccess,
		}
		require.NoError(t, repo.Create(ctx, entity.NewSettlementEvent(fmt.Sprintf("evt-%d", i), txn, time.Now())))
	}
}

func newRelay(t *testing.T, batch int) (*Relay, *memory.Store, *eventmock.MockPublisher, *coremock.MockMetricsRecorder) {
	tp := timeadapter.NewRealTimeProvider()
	log := logger.NewNoopLogger()
	store := memory.NewStore(tp, log)
	pub := eventmock.NewMockPublisher(t)
	metrics := coremock.NewMockMetricsRecorder(t).AllowAll()
	relay := NewRelay(store, pub, tp, metrics, log, Options{PollInterval: 10 * time.Millisecond, BatchSize: batch})
	return relay, store, pub, metrics
}

func TestRelay_Flush(t *testing.T) {
	t.Run("publishes and marks a batch", func(t *testing.T) {
		// Arrange
		relay, store, pub, _ := newRelay(t, 2)
		seedEvents(t, store, 3)
		pub.On("Publish", mock.Anything, mock.MatchedBy(func(e *entity.SettlementEvent) bool {
			return e.EventID == "evt-1" || e.EventID == "evt-2"
		})).Return(nil).Twice()

		// Act
		n, err := relay.Flush(context.Background())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		left, err := store.GetSettlementEventRepository(context.Background()).FindUnpublished(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, "evt-3", left[0].EventID)
	})

	t.Run("failed publish stays in the outbox", func(t *testing.T) {
		relay, store, pub, metrics := newRelay(t, 10)
		seedEvents(t, store, 2)
		pub.On("Publish", mock.Anything, mock.MatchedBy(func(e *entity.SettlementEvent) bool { return e.EventID == "evt-1" })).
			Return(errors.New("broker down")).Once()

		n, err := relay.Flush(context.Background())

		assert.EqualError(t, err, "broker down")
		assert.Equal(t, 0, n)
		left, err := store.GetSettlementEventRepository(context.Background()).FindUnpublished(context.Background(), 10)
		require.NoError(t, err)
		assert.Len(t, left, 2)
		metrics.AssertCalled(t, "ObserveSettlementPublish", "error")

		// next attempt delivers both
		pub.On("Publish", mock.Anything, mock.Anything).Return(nil).Twice()
		n, err = relay.Flush(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}

func TestRelay_Run(t *testing.T) {
	relay, store, pub, _ := newRelay(t, 2)
	seedEvents(t, store, 5)

	delivered := make(chan string, 5)
	pub.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { delivered <- args.Get(1).(*entity.SettlementEvent).EventID }).
		Return(nil).Times(5)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < 5 {
		select {
		case id := <-delivered:
			got = append(got, id)
		case <-timeout:
			t.Fatalf("relay delivered %d of 5 events", len(got))
		}
	}
	cancel()

	assert.NoError(t, <-done)
	assert.Equal(t, []string{"evt-1", "evt-2", "evt-3", "evt-4", "evt-5"}, got)
}

func TestNewRelay_Defaults(t *testing.T) {
	relay := NewRelay(nil, nil, nil, nil, nil, Options{})
	assert.Equal(t, defaultPollInterval, relay.opts.PollInterval)
	assert.Equal(t, defaultBatchSize, relay.opts.BatchSize)
}
