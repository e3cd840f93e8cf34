package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/persistence"
)

type contextKey string

const txKey contextKey = "memory-tx"

// memTx is an open unit of work. It holds the store mutex until it ends and
// records how to undo every write made through it.
type memTx struct {
	store *Store
	undo  []func()
	done  bool
}

// Store keeps the whole engine state in process memory.
// A unit of work holds the store mutex from Begin to Commit or Rollback, so
// units of work are serializable. Writes outside a unit of work are atomic one by one.
type Store struct {
	mu sync.Mutex

	balances     map[string]*entity.UserBalance
	products     map[string]entity.Product
	packages     map[string]entity.Package
	methods      map[string]entity.PaymentMethod
	transactions map[string]*entity.Transaction
	txOrder      []string
	events       map[string]*entity.SettlementEvent
	eventByTx    map[string]string
	eventOrder   []string

	locksMu sync.Mutex
	locks   map[string]lockEntry

	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ persistence.UnitOfWork = (*Store)(nil)

// NewStore creates an empty in-memory store
func NewStore(timeProvider coreport.TimeProvider, logger coreport.Logger) *Store {
	return &Store{
		balances:     make(map[string]*entity.UserBalance),
		products:     make(map[string]entity.Product),
		packages:     make(map[string]entity.Package),
		methods:      make(map[string]entity.PaymentMethod),
		transactions: make(map[string]*entity.Transaction),
		events:       make(map[string]*entity.SettlementEvent),
		eventByTx:    make(map[string]string),
		locks:        make(map[string]lockEntry),
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Begin starts a unit of work, blocking while another one is open
func (s *Store) Begin(ctx context.Context) (context.Context, error) {
	if tx, ok := ctx.Value(txKey).(*memTx); ok && tx.store == s && !tx.done {
		return ctx, fmt.Errorf("unit of work already active in context")
	}
	if err := ctx.Err(); err != nil {
		return ctx, fmt.Errorf("failed to begin transaction: %w", err)
	}

	s.mu.Lock()
	s.logger.Debug("Beginning in-memory transaction", nil)
	return context.WithValue(ctx, txKey, &memTx{store: s}), nil
}

// Commit keeps the writes of the unit of work
func (s *Store) Commit(ctx context.Context) error {
	tx, err := s.activeTx(ctx)
	if err != nil {
		return err
	}
	tx.done = true
	tx.undo = nil
	s.mu.Unlock()
	return nil
}

// Rollback undoes the writes of the unit of work in reverse order
func (s *Store) Rollback(ctx context.Context) error {
	tx, ok := ctx.Value(txKey).(*memTx)
	if !ok || tx.store != s {
		return fmt.Errorf("no transaction found in context")
	}
	if tx.done {
		return nil
	}

	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.done = true
	tx.undo = nil
	s.mu.Unlock()

	s.logger.Debug("Rolled back in-memory transaction", nil)
	return nil
}

func (s *Store) activeTx(ctx context.Context) (*memTx, error) {
	tx, ok := ctx.Value(txKey).(*memTx)
	if !ok || tx.store != s {
		return nil, fmt.Errorf("no transaction found in context")
	}
	if tx.done {
		return nil, fmt.Errorf("transaction has already been committed or rolled back")
	}
	return tx, nil
}

// access runs fn under the store mutex. Inside an open unit of work the mutex
// is already held and fn receives the undo log; outside, record is a no-op.
func (s *Store) access(ctx context.Context, fn func(record func(undo func())) error) error {
	if tx, ok := ctx.Value(txKey).(*memTx); ok && tx.store == s && !tx.done {
		return fn(func(undo func()) { tx.undo = append(tx.undo, undo) })
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(func(func()) {})
}

// GetBalanceRepository returns a balance repository bound to ctx
func (s *Store) GetBalanceRepository(ctx context.Context) persistence.BalanceRepository {
	return &balanceRepository{store: s}
}

// GetTransactionRepository returns a transaction repository bound to ctx
func (s *Store) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	return &transactionRepository{store: s}
}

// GetSettlementEventRepository returns a settlement event repository bound to ctx
func (s *Store) GetSettlementEventRepository(ctx context.Context) persistence.SettlementEventRepository {
	return &settlementEventRepository{store: s}
}

// GetCatalogRepository returns a catalog repository bound to ctx
func (s *Store) GetCatalogRepository(ctx context.Context) persistence.CatalogRepository {
	return &catalogRepository{store: s}
}

func cloneTransaction(t *entity.Transaction) *entity.Transaction {
	c := *t
	if t.ProviderOrderID != nil {
		id := *t.ProviderOrderID
		c.ProviderOrderID = &id
	}
	if t.FinalizedAt != nil {
		at := *t.FinalizedAt
		c.FinalizedAt = &at
	}
	return &c
}

func cloneEvent(e *entity.SettlementEvent) *entity.SettlementEvent {
	c := *e
	if e.PublishedAt != nil {
		at := *e.PublishedAt
		c.PublishedAt = &at
	}
	return &c
}
