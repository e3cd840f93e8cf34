package usecase

import (
	"context"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
)

// Outcome classifies the business result of a purchase operation.
// Infrastructure faults are returned as errors instead.
type Outcome string

const (
	OutcomeAccepted          Outcome = "accepted"
	OutcomeInvalidInput      Outcome = "invalid_input"
	OutcomeInsufficientFunds Outcome = "insufficient_funds"
	OutcomeAlreadyFinal      Outcome = "already_final"
	OutcomeProviderError     Outcome = "provider_error"
	OutcomeFundsChanged      Outcome = "funds_changed"
	OutcomeInProgress        Outcome = "in_progress"
)

// User facing messages
const (
	MessageFulfillmentPending = "purchase succeeded, fulfillment pending"
	MessageProviderFailed     = "purchase failed, balance unaffected"
)

// Shortfall describes why a balance could not cover a price
type Shortfall struct {
	Balance  int64
	Required int64
	Missing  int64
}

// NewShortfall builds a shortfall from a rejected debit
func NewShortfall(result entity.DebitResult) *Shortfall {
	return &Shortfall{
		Balance:  result.Balance,
		Required: result.Required,
		Missing:  result.Missing(),
	}
}

// CreatePurchaseRequest holds the inputs of CreateTransaction
type CreatePurchaseRequest struct {
	ProductID             string
	PackageID             string
	PaymentMethodID       string
	UserID                string
	GameAccountID         string
	ConfirmationRequested bool
}

// PurchaseResult is returned by create and confirm operations
type PurchaseResult struct {
	Outcome     Outcome
	Transaction *entity.Transaction
	Shortfall   *Shortfall
	// Reason carries the validation or provider error behind a non-accepted outcome
	Reason error
	// FulfillmentPending is set when a paid direct purchase could not be sent to the provider
	FulfillmentPending bool
	Message            string
}

// PurchaseUseCase is the transaction state machine
type PurchaseUseCase interface {
	CreateTransaction(ctx context.Context, req CreatePurchaseRequest) (*PurchaseResult, error)
	ConfirmTransaction(ctx context.Context, transactionID string) (*PurchaseResult, error)
	GetTransaction(ctx context.Context, transactionID string, userID string) (*entity.Transaction, error)
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, error)
}
