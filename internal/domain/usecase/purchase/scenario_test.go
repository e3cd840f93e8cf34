package purchase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/idgen"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/memory"
	timeadapter "github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/time"
	coremock "github.com/amirhossein-jamali/topup-ledger/mocks/port/core"
	gatewaymock "github.com/amirhossein-jamali/topup-ledger/mocks/port/gateway"
)

const (
	testUser    = "user-1"
	testAccount = "acc-12345"
)

// scenario wires the service to the in-memory store and a real ledger
type scenario struct {
	ctx     context.Context
	store   *memory.Store
	ledger  *ledger.Ledger
	gateway *gatewaymock.MockFulfillmentGateway
	svc     *Service
}

func newScenario(t *testing.T) *scenario {
	t.Helper()

	ctx := context.Background()
	tp := timeadapter.NewRealTimeProvider()
	log := logger.NewNoopLogger()
	metrics := coremock.NewMockMetricsRecorder(t).AllowAll()
	store := memory.NewStore(tp, log)
	l := ledger.NewLedger(store, metrics, log)
	gw := gatewaymock.NewMockFulfillmentGateway(t)
	ids, err := idgen.NewGenerator(1)
	require.NoError(t, err)

	catalog := store.GetCatalogRepository(ctx)
	require.NoError(t, catalog.SaveProduct(ctx, &entity.Product{ID: "prod-ml", Name: "Mobile Legends", IsActive: true}))
	require.NoError(t, catalog.SaveProduct(ctx, &entity.Product{ID: "prod-gc", Name: "Gift Card", IsActive: true}))
	require.NoError(t, catalog.SavePackage(ctx, &entity.Package{
		ID: "pkg-86", ProductID: "prod-ml", Name: "86 Diamonds", Price: 10000, Amount: 86, Unit: "diamond",
		IsActive: true, ProviderEntityID: "ML", ProviderDenomID: "ML86",
	}))
	require.NoError(t, catalog.SavePackage(ctx, &entity.Package{
		ID: "pkg-gc-20", ProductID: "prod-gc", Name: "Voucher 20K", Price: 20000, Amount: 1, Unit: "voucher", IsActive: true,
	}))
	require.NoError(t, catalog.SavePackage(ctx, &entity.Package{
		ID: "pkg-old", ProductID: "prod-ml", Name: "Retired", Price: 5000, IsActive: false,
	}))
	require.NoError(t, catalog.SavePaymentMethod(ctx, &entity.PaymentMethod{
		ID: "pm-wallet", Name: "Wallet", FeePercent: decimal.RequireFromString("2.5"), FeeFixed: 500, IsActive: true,
	}))
	require.NoError(t, catalog.SavePaymentMethod(ctx, &entity.PaymentMethod{
		ID: "pm-bank", Name: "Bank Transfer", FeePercent: decimal.NewFromInt(1), FeeFixed: 1000, IsActive: true,
	}))
	require.NoError(t, catalog.SavePaymentMethod(ctx, &entity.PaymentMethod{
		ID: "pm-off", Name: "Disabled", FeePercent: decimal.Zero, IsActive: false,
	}))

	svc := NewService(store, l, gw, store, ids, tp, metrics, log, Options{
		GatewayTimeout: time.Second,
		LockTTL:        5 * time.Second,
	})

	return &scenario{ctx: ctx, store: store, ledger: l, gateway: gw, svc: svc}
}

func (s *scenario) fund(t *testing.T, amount int64) {
	t.Helper()
	_, err := s.ledger.Credit(s.ctx, testUser, amount)
	require.NoError(t, err)
}

func (s *scenario) balance(t *testing.T) int64 {
	t.Helper()
	b, err := s.ledger.GetBalance(s.ctx, testUser)
	require.NoError(t, err)
	return b
}

func (s *scenario) events(t *testing.T) []*entity.SettlementEvent {
	t.Helper()
	evts, err := s.store.GetSettlementEventRepository(s.ctx).FindUnpublished(s.ctx, 100)
	require.NoError(t, err)
	return evts
}

func (s *scenario) stored(t *testing.T, id string) *entity.Transaction {
	t.Helper()
	txn, err := s.store.GetTransactionRepository(s.ctx).GetByTransactionID(s.ctx, id)
	require.NoError(t, err)
	return txn
}

func request(packageID, productID, methodID string, confirm bool) usecase.CreatePurchaseRequest {
	return usecase.CreatePurchaseRequest{
		ProductID:             productID,
		PackageID:             packageID,
		PaymentMethodID:       methodID,
		UserID:                testUser,
		GameAccountID:         testAccount,
		ConfirmationRequested: confirm,
	}
}

func TestCreateTransaction_DirectWithoutProviderCodes(t *testing.T) {
	// Arrange
	s := newScenario(t)
	s.fund(t, 50000)

	// Act
	result, err := s.svc.CreateTransaction(s.ctx, request("pkg-gc-20", "prod-gc", "pm-bank", false))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeAccepted, result.Outcome)
	txn := result.Transaction
	assert.Equal(t, entity.StatusSuccess, txn.Status)
	assert.Equal(t, int64(20000), txn.Price)
	assert.Equal(t, int64(1200), txn.Fee)
	assert.Equal(t, int64(21200), txn.Total)
	assert.False(t, result.FulfillmentPending)

	assert.Equal(t, int64(30000), s.balance(t))

	evts := s.events(t)
	require.Len(t, evts, 1)
	assert.Equal(t, txn.TransactionID, evts[0].TransactionID)
	assert.Equal(t, int64(21200), evts[0].Amount)
	assert.Equal(t, "Gift Card - Voucher 20K", evts[0].ProductLabel)
	assert.Equal(t, entity.StatusSuccess, evts[0].Status)

	s.gateway.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
}

func TestCreateTransaction_DirectPlacesProviderOrder(t *testing.T) {
	t.Run("records provider order id", func(t *testing.T) {
		s := newScenario(t)
		s.fund(t, 20000)
		s.gateway.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(req gateway.OrderRequest) bool {
			return req.ProductCode == entity.ProductCode{EntityID: "ML", DenomID: "ML86"} &&
				req.UserID == testUser && req.GameAccountID == testAccount
		})).Return(gateway.OrderResult{OrderID: "ORD-9", ProviderStatus: "processing"}, nil).Once()

		result, err := s.svc.CreateTransaction(s.ctx, request("pkg-86", "prod-ml", "pm-wallet", false))

		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeAccepted, result.Outcome)
		assert.Equal(t, int64(10750), result.Transaction.Total)
		assert.Equal(t, int64(10000), s.balance(t))

		stored := s.stored(t, result.Transaction.TransactionID)
		require.NotNil(t, stored.ProviderOrderID)
		assert.Equal(t, "ORD-9", *stored.ProviderOrderID)
		assert.Empty(t, stored.FulfillmentError)
	})

	t.Run("provider failure keeps the purchase", func(t *testing.T) {
		s := newScenario(t)
		s.fund(t, 20000)
		s.gateway.On("PlaceOrder", mock.Anything, mock.Anything).
			Return(gateway.OrderResult{}, errs.NewProviderError("", 503, "maintenance", errs.ErrProviderUnavailable)).Once()

		result, err := s.svc.CreateTransaction(s.ctx, request("pkg-86", "prod-ml", "pm-wallet", false))

		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeAccepted, result.Outcome)
		assert.True(t, result.FulfillmentPending)
		assert.Equal(t, usecase.MessageFulfillmentPending, result.Message)
		assert.Equal(t, int64(10000), s.balance(t))
		assert.Len(t, s.events(t), 1)

		stored := s.stored(t, result.Transaction.TransactionID)
		assert.Equal(t, entity.StatusSuccess, stored.Status)
		assert.Nil(t, stored.ProviderOrderID)
		assert.Contains(t, stored.FulfillmentError, "maintenance")
		assert.True(t, stored.NeedsFulfillment())
	})
}

func TestCreateTransaction_DirectInsufficientBalance(t *testing.T) {
	// Arrange
	s := newScenario(t)
	s.fund(t, 5000)

	// Act
	result, err := s.svc.CreateTransaction(s.ctx, request("pkg-86", "prod-ml", "pm-wallet", false))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeInsufficientFunds, result.Outcome)
	assert.Nil(t, result.Transaction)
	require.NotNil(t, result.Shortfall)
	assert.Equal(t, usecase.Shortfall{Balance: 5000, Required: 10000, Missing: 5000}, *result.Shortfall)
	assert.True(t, errs.IsInsufficientBalanceError(result.Reason))

	assert.Equal(t, int64(5000), s.balance(t))
	assert.Empty(t, s.events(t))
	history, err := s.svc.ListTransactions(s.ctx, testUser, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestCreateTransaction_InvalidInput(t *testing.T) {
	testCases := []struct {
		name string
		req  usecase.CreatePurchaseRequest
		want error
	}{
		{name: "unknown package", req: request("pkg-none", "prod-ml", "pm-wallet", false), want: errs.ErrPackageNotFound},
		{name: "package of another product", req: request("pkg-86", "prod-gc", "pm-wallet", false), want: errs.ErrPackageProductMismatch},
		{name: "inactive package", req: request("pkg-old", "prod-ml", "pm-wallet", false), want: errs.ErrPackageInactive},
		{name: "unknown payment method", req: request("pkg-86", "prod-ml", "pm-none", false), want: errs.ErrPaymentMethodNotFound},
		{name: "inactive payment method", req: request("pkg-86", "prod-ml", "pm-off", false), want: errs.ErrPaymentMethodInactive},
		{name: "confirmation without provider codes", req: request("pkg-gc-20", "prod-gc", "pm-bank", true), want: errs.ErrMissingProviderCodes},
		{
			name: "missing user",
			req:  usecase.CreatePurchaseRequest{ProductID: "prod-ml", PackageID: "pkg-86", PaymentMethodID: "pm-wallet"},
			want: errs.ErrInvalidUserID,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newScenario(t)
			s.fund(t, 50000)

			result, err := s.svc.CreateTransaction(s.ctx, tc.req)

			require.NoError(t, err)
			assert.Equal(t, usecase.OutcomeInvalidInput, result.Outcome)
			assert.ErrorIs(t, result.Reason, tc.want)
			assert.Equal(t, int64(50000), s.balance(t))
		})
	}
}

func TestConfirmTransaction_HappyPath(t *testing.T) {
	// Arrange
	s := newScenario(t)
	s.fund(t, 50000)

	created, err := s.svc.CreateTransaction(s.ctx, request("pkg-86", "prod-ml", "pm-wallet", true))
	require.NoError(t, err)
	require.Equal(t, usecase.OutcomeAccepted, created.Outcome)
	txID := created.Transaction.TransactionID
	assert.Equal(t, entity.StatusPending, created.Transaction.Status)
	assert.Equal(t, int64(50000), s.balance(t), "pending transactions do not move funds")
	assert.Empty(t, s.events(t))

	s.gateway.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(req gateway.OrderRequest) bool {
		return req.RefID == txID
	})).Return(gateway.OrderResult{OrderID: "ORD-1", ProviderStatus: "success"}, nil).Once()

	// Act
	confirmed, err := s.svc.ConfirmTransaction(s.ctx, txID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeAccepted, confirmed.Outcome)
	assert.Equal(t, entity.StatusSuccess, confirmed.Transaction.Status)
	assert.Equal(t, "ORD-1", *confirmed.Transaction.ProviderOrderID)
	assert.Equal(t, int64(40000), s.balance(t))

	evts := s.events(t)
	require.Len(t, evts, 1)
	assert.Equal(t, txID, evts[0].TransactionID)
	assert.Equal(t, int64(10750), evts[0].Amount)

	t.Run("second confirmation is a no-op", func(t *testing.T) {
		again, err := s.svc.ConfirmTransaction(s.ctx, txID)

		require.NoError(t, err)
		assert.Equal(t, usecase.OutcomeAlreadyFinal, again.Outcome)
		assert.Equal(t, entity.StatusSuccess, again.Transaction.Status)
		assert.Equal(t, int64(40000), s.balance(t))
		assert.Len(t, s.events(t), 1)
	})
}

func TestConfirmTransaction_ProviderFailure(t *testing.T) {
	s := newScenario(t)
	s.fund(t, 50000)
	created, err := s.svc.CreateTransaction(s.ctx, request("pkg-86", "prod-ml", "pm-wallet", true))
	require.NoError(t, err)
	txID := created.Transaction.TransactionID

	s.gateway.On("PlaceOrder", mock.Anything, mock.Anything).
		Return(gateway.OrderResult{}, errs.NewProviderError(txID, 422, "invalid game account", errs.ErrProviderRejected)).Once()

	result, err := s.svc.ConfirmTransaction(s.ctx, txID)

	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeProviderError, result.Outcome)
	assert.Equal(t, usecase.MessageProviderFailed, result.Message)
	assert.ErrorIs(t, result.Reason, errs.ErrProviderRejected)
	assert.Equal(t, entity.StatusFailed, result.Transaction.Status)
	assert.Equal(t, int64(50000), s.balance(t))
	assert.Empty(t, s.events(t))

	stored := s.stored(t, txID)
	assert.Equal(t, entity.StatusFailed, stored.Status)
	assert.Contains(t, stored.FailureReason, "invalid game account")

	again, err := s.svc.ConfirmTransaction(s.ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeAlreadyFinal, again.Outcome)
}

func TestConfirmTransaction_GatewayTimeout(t *testing.T) {
	s := newScenario(t)
	s.svc.opts.GatewayTimeout = 20 * time.Millisecond
	s.fund(t, 50000)
	created, err := s.svc.CreateTransaction(s.ctx, request("pkg-86", "prod-ml", "pm-wallet", true))
	require.NoError(t, err)

	s.gateway.On("PlaceOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(gateway.OrderResult{}, context.DeadlineExceeded).Once()

	result, err := s.svc.ConfirmTransaction(s.ctx, created.Transaction.TransactionID)

	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeProviderError, result.Outcome)
	assert.ErrorIs(t, result.Reason, errs.ErrProviderTimeout)
	assert.Equal(t, entity.StatusFailed, result.Transaction.Status)
	assert.Equal(t, int64(50000), s.balance(t))
}

func TestConfirmTransaction_FundsChanged(t *testing.T) {
	// Arrange
	s := newScenario(t)
	s.fund(t, 12000)
	created, err := s.svc.CreateTransaction(s.ctx, request("pkg-86", "prod-ml", "pm-wallet", true))
	require.NoError(t, err)
	txID := created.Transaction.TransactionID

	// balance is spent elsewhere while the transaction waits
	drained, err := s.ledger.TryDebit(s.ctx, testUser, 8000)
	require.NoError(t, err)
	require.True(t, drained.Applied)

	s.gateway.On("PlaceOrder", mock.Anything, mock.Anything).
		Return(gateway.OrderResult{OrderID: "ORD-7"}, nil).Once()

	// Act
	result, err := s.svc.ConfirmTransaction(s.ctx, txID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeFundsChanged, result.Outcome)
	assert.ErrorIs(t, result.Reason, errs.ErrFundsChanged)
	require.NotNil(t, result.Shortfall)
	assert.Equal(t, int64(6000), result.Shortfall.Missing)
	assert.Equal(t, int64(4000), s.balance(t))
	assert.Empty(t, s.events(t))

	stored := s.stored(t, txID)
	assert.Equal(t, entity.StatusFailed, stored.Status)
	require.NotNil(t, stored.ProviderOrderID)
	assert.Equal(t, "ORD-7", *stored.ProviderOrderID)
}

func TestConfirmTransaction_UnknownTransaction(t *testing.T) {
	s := newScenario(t)

	result, err := s.svc.ConfirmTransaction(s.ctx, "TRX-missing")

	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeInvalidInput, result.Outcome)
	assert.ErrorIs(t, result.Reason, errs.ErrTransactionNotFound)
}

func TestConfirmTransaction_ConcurrentConfirmationIsInProgress(t *testing.T) {
	// Arrange
	s := newScenario(t)
	s.fund(t, 50000)
	created, err := s.svc.CreateTransaction(s.ctx, request("pkg-86", "prod-ml", "pm-wallet", true))
	require.NoError(t, err)
	txID := created.Transaction.TransactionID

	entered := make(chan struct{})
	proceed := make(chan struct{})
	s.gateway.On("PlaceOrder", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-proceed
		}).
		Return(gateway.OrderResult{OrderID: "ORD-1"}, nil).Once()

	var first *usecase.PurchaseResult
	var firstErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		first, firstErr = s.svc.ConfirmTransaction(s.ctx, txID)
	}()
	<-entered

	// Act
	second, err := s.svc.ConfirmTransaction(s.ctx, txID)
	close(proceed)
	<-done

	// Assert
	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeInProgress, second.Outcome)
	assert.Equal(t, entity.StatusPending, second.Transaction.Status)

	require.NoError(t, firstErr)
	assert.Equal(t, usecase.OutcomeAccepted, first.Outcome)
	assert.Equal(t, int64(40000), s.balance(t))
	assert.Len(t, s.events(t), 1)
}

func TestCreateTransaction_ConcurrentDirectPurchasesNeverOverdraw(t *testing.T) {
	s := newScenario(t)
	s.fund(t, 45000)

	const attempts = 10
	outcomes := make(chan usecase.Outcome, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.svc.CreateTransaction(s.ctx, request("pkg-gc-20", "prod-gc", "pm-bank", false))
			if err != nil {
				outcomes <- usecase.Outcome("error: " + err.Error())
				return
			}
			outcomes <- result.Outcome
		}()
	}
	wg.Wait()
	close(outcomes)

	counts := make(map[usecase.Outcome]int)
	for o := range outcomes {
		counts[o]++
	}
	assert.Equal(t, 2, counts[usecase.OutcomeAccepted])
	assert.Equal(t, attempts-2, counts[usecase.OutcomeInsufficientFunds])
	assert.Equal(t, int64(5000), s.balance(t))
	assert.Len(t, s.events(t), 2)
}

func TestGetTransaction(t *testing.T) {
	s := newScenario(t)
	s.fund(t, 50000)
	created, err := s.svc.CreateTransaction(s.ctx, request("pkg-86", "prod-ml", "pm-wallet", true))
	require.NoError(t, err)
	txID := created.Transaction.TransactionID

	t.Run("owner can read", func(t *testing.T) {
		txn, err := s.svc.GetTransaction(s.ctx, txID, testUser)

		require.NoError(t, err)
		assert.Equal(t, txID, txn.TransactionID)
		assert.Equal(t, entity.StatusPending, txn.Status)
	})

	t.Run("other users see not found", func(t *testing.T) {
		_, err := s.svc.GetTransaction(s.ctx, txID, "user-2")

		assert.True(t, errors.Is(err, errs.ErrTransactionNotFound))
	})

	t.Run("history lists newest first", func(t *testing.T) {
		second, err := s.svc.CreateTransaction(s.ctx, request("pkg-86", "prod-ml", "pm-wallet", true))
		require.NoError(t, err)

		history, err := s.svc.ListTransactions(s.ctx, testUser, 0, 0)

		require.NoError(t, err)
		require.Len(t, history, 2)
		ids := []string{history[0].TransactionID, history[1].TransactionID}
		assert.ElementsMatch(t, []string{txID, second.Transaction.TransactionID}, ids)
	})
}
