package purchase

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/gateway"
)

// placeOrder calls the provider once, bounded by the gateway timeout.
// The transaction id is the provider idempotency reference.
func (s *Service) placeOrder(ctx context.Context, txn *entity.Transaction) (gateway.OrderResult, error) {
	callCtx, cancel := s.timeProvider.WithTimeout(ctx, s.opts.GatewayTimeout)
	defer cancel()

	started := s.timeProvider.Now()
	order, err := s.gateway.PlaceOrder(callCtx, gateway.OrderRequest{
		ProductCode:   txn.ProductCode,
		UserID:        txn.UserID,
		GameAccountID: txn.GameAccountID,
		RefID:         txn.TransactionID,
	})
	elapsed := s.timeProvider.Since(started)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = errs.NewProviderError(txn.TransactionID, 0, "deadline exceeded", errs.ErrProviderTimeout)
		} else if !errs.IsProviderError(err) {
			err = errs.NewProviderError(txn.TransactionID, 0, err.Error(), errs.ErrProviderUnavailable)
		}
		s.metrics.ObserveGatewayCall(gatewayResult(err), elapsed)
		return gateway.OrderResult{}, err
	}

	if order.OrderID == "" {
		err = errs.NewProviderError(txn.TransactionID, 0, "empty order id", errs.ErrProviderRejected)
		s.metrics.ObserveGatewayCall(gatewayResult(err), elapsed)
		return gateway.OrderResult{}, err
	}

	s.metrics.ObserveGatewayCall("ok", elapsed)
	s.logger.Info("Provider order placed", map[string]any{
		"transaction_id":    txn.TransactionID,
		"provider_order_id": order.OrderID,
		"provider_status":   order.ProviderStatus,
		"elapsed_ms":        elapsed.Milliseconds(),
	})
	return order, nil
}

func gatewayResult(err error) string {
	switch {
	case errors.Is(err, errs.ErrProviderTimeout):
		return "timeout"
	case errors.Is(err, errs.ErrProviderRejected):
		return "rejected"
	default:
		return "unavailable"
	}
}
