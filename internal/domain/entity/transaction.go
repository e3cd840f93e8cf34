package entity

import (
	"fmt"
	"time"

	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
)

// TransactionStatus defines possible status values for a transaction
type TransactionStatus string

// TransactionStatus constants
const (
	StatusPending TransactionStatus = "pending"
	StatusSuccess TransactionStatus = "success"
	StatusFailed  TransactionStatus = "failed"
)

// IsFinal reports whether the status can no longer change
func (s TransactionStatus) IsFinal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Valid reports whether s is a known status
func (s TransactionStatus) Valid() bool {
	return s == StatusPending || s.IsFinal()
}

// Transaction is one purchase of a package by a user.
// Price, Fee and Total are fixed at creation.
type Transaction struct {
	TransactionID   string
	UserID          string
	ProductID       string
	PackageID       string
	PaymentMethodID string
	GameAccountID   string
	ProductLabel    string
	ProductCode     ProductCode // provider identifiers snapshotted from the package
	Price           int64
	Fee             int64
	Total           int64
	Status          TransactionStatus
	ProviderOrderID *string
	// FulfillmentError is set when a paid purchase could not be sent to the provider
	FulfillmentError string
	FailureReason    string
	CreatedAt        time.Time
	FinalizedAt      *time.Time
}

// NewTransaction builds a transaction priced from a quote
func NewTransaction(
	transactionID string,
	userID string,
	gameAccountID string,
	product *Product,
	pkg *Package,
	method *PaymentMethod,
	quote Quote,
	createdAt time.Time,
) (*Transaction, error) {
	if transactionID == "" {
		return nil, errs.ErrInvalidTransactionID
	}
	if userID == "" {
		return nil, errs.ErrInvalidUserID
	}
	if quote.Total != quote.Price+quote.Fee {
		return nil, fmt.Errorf("%w: total %d does not equal price %d plus fee %d",
			errs.ErrInvalidAmount, quote.Total, quote.Price, quote.Fee)
	}

	return &Transaction{
		TransactionID:   transactionID,
		UserID:          userID,
		ProductID:       product.ID,
		PackageID:       pkg.ID,
		PaymentMethodID: method.ID,
		GameAccountID:   gameAccountID,
		ProductLabel:    pkg.Label(product),
		ProductCode:     pkg.ProductCode(),
		Price:           quote.Price,
		Fee:             quote.Fee,
		Total:           quote.Total,
		Status:          StatusPending,
		CreatedAt:       createdAt,
	}, nil
}

// IsFinal reports whether the transaction reached a terminal status
func (t *Transaction) IsFinal() bool {
	return t.Status.IsFinal()
}

// NeedsFulfillment reports whether a successful purchase has no provider order yet
func (t *Transaction) NeedsFulfillment() bool {
	return t.Status == StatusSuccess && t.ProviderOrderID == nil && t.ProductCode.Complete()
}

// Finalization is the terminal update applied to a pending transaction
type Finalization struct {
	Status          TransactionStatus
	ProviderOrderID *string
	FailureReason   string
	FinalizedAt     time.Time
}

// Validate checks that the update targets a terminal status
func (f Finalization) Validate() error {
	if !f.Status.IsFinal() {
		return fmt.Errorf("%w: cannot finalize to status %q", errs.ErrInvalidInput, f.Status)
	}
	return nil
}

// Apply copies the finalization onto an in-memory transaction
func (t *Transaction) Apply(f Finalization) {
	finalizedAt := f.FinalizedAt
	t.Status = f.Status
	t.ProviderOrderID = f.ProviderOrderID
	t.FailureReason = f.FailureReason
	t.FinalizedAt = &finalizedAt
}
