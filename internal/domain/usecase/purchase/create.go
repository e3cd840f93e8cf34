package purchase

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/usecase"
)

const flowCreate = "create"

// CreateTransaction prices a package and records the purchase.
//
// With ConfirmationRequested the transaction is stored as pending and nothing
// is debited. Otherwise the price is debited, the transaction is stored as
// success together with its settlement event, and the provider order is
// placed best-effort after the commit.
func (s *Service) CreateTransaction(ctx context.Context, req usecase.CreatePurchaseRequest) (*usecase.PurchaseResult, error) {
	sel, err := s.validateRequest(ctx, req)
	if err != nil {
		result, fault := invalidInput(err)
		if fault != nil {
			s.logger.Error("Failed to validate purchase", map[string]any{
				"user_id":    req.UserID,
				"package_id": req.PackageID,
				"error":      fault.Error(),
			})
			return nil, fault
		}
		s.logger.Info("Purchase rejected", map[string]any{
			"user_id":    req.UserID,
			"product_id": req.ProductID,
			"package_id": req.PackageID,
			"reason":     err.Error(),
		})
		s.observe(flowCreate, result)
		return result, nil
	}

	txn, err := entity.NewTransaction(
		s.ids.NewTransactionID(),
		req.UserID,
		req.GameAccountID,
		sel.product,
		sel.pkg,
		sel.method,
		sel.quote,
		s.timeProvider.Now(),
	)
	if err != nil {
		return invalidInput(err)
	}

	var result *usecase.PurchaseResult
	if req.ConfirmationRequested {
		result, err = s.createPending(ctx, txn)
	} else {
		result, err = s.createDirect(ctx, txn)
	}
	if err != nil {
		return nil, err
	}

	s.observe(flowCreate, result)
	return result, nil
}

// createPending stores a transaction awaiting confirmation
func (s *Service) createPending(ctx context.Context, txn *entity.Transaction) (*usecase.PurchaseResult, error) {
	if err := s.uow.GetTransactionRepository(ctx).Create(ctx, txn); err != nil {
		s.logger.Error("Failed to store pending transaction", map[string]any{
			"transaction_id": txn.TransactionID,
			"user_id":        txn.UserID,
			"error":          err.Error(),
		})
		return nil, fmt.Errorf("failed to store pending transaction: %w", err)
	}

	s.logger.Info("Pending transaction created", map[string]any{
		"transaction_id": txn.TransactionID,
		"user_id":        txn.UserID,
		"total":          txn.Total,
	})

	return &usecase.PurchaseResult{
		Outcome:     usecase.OutcomeAccepted,
		Transaction: txn,
	}, nil
}

// createDirect debits and records a successful purchase in one unit of work
func (s *Service) createDirect(ctx context.Context, txn *entity.Transaction) (*usecase.PurchaseResult, error) {
	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin purchase: %w", err)
	}

	debit, err := s.ledger.TryDebit(txCtx, txn.UserID, txn.Price)
	if err != nil {
		s.rollback(txCtx, txn.TransactionID)
		return nil, fmt.Errorf("failed to debit balance: %w", err)
	}
	if !debit.Applied {
		s.rollback(txCtx, txn.TransactionID)
		shortfall := usecase.NewShortfall(debit)
		reason := errs.NewInsufficientBalanceError(txn.UserID, debit.Balance, debit.Required)
		s.logger.Info("Purchase rejected for insufficient balance", map[string]any{
			"user_id":  txn.UserID,
			"balance":  shortfall.Balance,
			"required": shortfall.Required,
		})
		return &usecase.PurchaseResult{
			Outcome:   usecase.OutcomeInsufficientFunds,
			Shortfall: shortfall,
			Reason:    reason,
			Message:   reason.Error(),
		}, nil
	}

	now := s.timeProvider.Now()
	txn.Status = entity.StatusSuccess
	txn.FinalizedAt = &now

	if err := s.uow.GetTransactionRepository(txCtx).Create(txCtx, txn); err != nil {
		s.rollback(txCtx, txn.TransactionID)
		return nil, fmt.Errorf("failed to store transaction: %w", err)
	}

	event := entity.NewSettlementEvent(s.ids.NewEventID(), txn, now)
	if err := s.uow.GetSettlementEventRepository(txCtx).Create(txCtx, event); err != nil {
		s.rollback(txCtx, txn.TransactionID)
		return nil, fmt.Errorf("failed to record settlement event: %w", err)
	}

	if err := s.uow.Commit(txCtx); err != nil {
		s.rollback(txCtx, txn.TransactionID)
		return nil, fmt.Errorf("failed to commit purchase: %w", err)
	}

	s.logger.Info("Purchase settled", map[string]any{
		"transaction_id": txn.TransactionID,
		"user_id":        txn.UserID,
		"price":          txn.Price,
		"total":          txn.Total,
		"new_balance":    debit.Balance,
	})

	result := &usecase.PurchaseResult{
		Outcome:     usecase.OutcomeAccepted,
		Transaction: txn,
	}

	if txn.ProductCode.Complete() {
		s.fulfillDirect(ctx, txn, result)
	}

	return result, nil
}

// fulfillDirect places the provider order of a paid purchase.
// Failures never undo the purchase; they are recorded for reconciliation.
func (s *Service) fulfillDirect(ctx context.Context, txn *entity.Transaction, result *usecase.PurchaseResult) {
	// the purchase is committed, so the order must not die with the caller's request
	orderCtx := context.WithoutCancel(ctx)

	order, err := s.placeOrder(orderCtx, txn)
	repo := s.uow.GetTransactionRepository(orderCtx)

	if err != nil {
		result.FulfillmentPending = true
		result.Reason = err
		result.Message = usecase.MessageFulfillmentPending
		txn.FulfillmentError = err.Error()

		s.logger.Warn("Fulfillment failed for paid purchase", map[string]any{
			"transaction_id": txn.TransactionID,
			"user_id":        txn.UserID,
			"error":          err.Error(),
		})
		if recErr := repo.RecordFulfillment(orderCtx, txn.TransactionID, nil, err.Error()); recErr != nil {
			s.logger.Error("Failed to record fulfillment error", map[string]any{
				"transaction_id": txn.TransactionID,
				"error":          recErr.Error(),
			})
		}
		return
	}

	orderID := order.OrderID
	txn.ProviderOrderID = &orderID
	if recErr := repo.RecordFulfillment(orderCtx, txn.TransactionID, &orderID, ""); recErr != nil {
		s.logger.Error("Failed to record provider order", map[string]any{
			"transaction_id":    txn.TransactionID,
			"provider_order_id": orderID,
			"error":             recErr.Error(),
		})
	}
}
