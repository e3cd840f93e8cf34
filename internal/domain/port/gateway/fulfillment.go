package gateway

import (
	"context"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
)

// OrderRequest asks the provider to deliver a package to a game account.
// RefID is the idempotency key; the engine always passes the transaction id.
type OrderRequest struct {
	ProductCode   entity.ProductCode
	UserID        string
	GameAccountID string
	RefID         string
}

// OrderResult is the provider's acknowledgement of an order
type OrderResult struct {
	OrderID        string
	ProviderStatus string
}

// FulfillmentGateway places orders with the external top-up provider
type FulfillmentGateway interface {
	// PlaceOrder submits the order. Repeating a RefID must not create a second order.
	//
	// Possible errors:
	// - ErrProviderTimeout: If the provider did not answer before the deadline
	// - ErrProviderRejected: If the provider refused the order
	// - ErrProviderUnavailable: On transport failures and provider 5xx answers
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
}
