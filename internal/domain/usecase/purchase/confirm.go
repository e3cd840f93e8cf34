package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/usecase"
)

const flowConfirm = "confirm"

// ConfirmTransaction finalizes a pending transaction.
//
// The provider order is placed first, keyed by the transaction id. On
// provider success the price is debited and the transaction becomes success
// with its settlement event; if the balance no longer covers the price the
// transaction fails instead. On provider failure the transaction fails and the
// balance is untouched. Terminal transactions are returned unchanged.
func (s *Service) ConfirmTransaction(ctx context.Context, transactionID string) (*usecase.PurchaseResult, error) {
	result, err := s.confirm(ctx, strings.TrimSpace(transactionID))
	if err != nil {
		return nil, err
	}
	s.observe(flowConfirm, result)
	return result, nil
}

func (s *Service) confirm(ctx context.Context, transactionID string) (*usecase.PurchaseResult, error) {
	if transactionID == "" {
		return invalidInput(errs.ErrInvalidTransactionID)
	}

	txn, err := s.uow.GetTransactionRepository(ctx).GetByTransactionID(ctx, transactionID)
	if err != nil {
		return invalidInput(err)
	}
	if txn.IsFinal() {
		return alreadyFinal(txn), nil
	}

	release, acquired, err := s.locker.Acquire(ctx, transactionID, s.opts.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lock transaction %s: %w", transactionID, err)
	}
	if !acquired {
		s.logger.Info("Confirmation already in progress", map[string]any{
			"transaction_id": transactionID,
		})
		return &usecase.PurchaseResult{
			Outcome:     usecase.OutcomeInProgress,
			Transaction: txn,
			Reason:      errs.ErrTransactionInProgress,
			Message:     errs.ErrTransactionInProgress.Error(),
		}, nil
	}
	// from here on the provider may act, so finishing must not depend on the caller staying
	workCtx := context.WithoutCancel(ctx)
	defer func() {
		if relErr := release(workCtx); relErr != nil {
			s.logger.Warn("Failed to release confirmation lock", map[string]any{
				"transaction_id": transactionID,
				"error":          relErr.Error(),
			})
		}
	}()

	// another confirmation may have finished between the first read and the lock
	txn, err = s.uow.GetTransactionRepository(workCtx).GetByTransactionID(workCtx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload transaction %s: %w", transactionID, err)
	}
	if txn.IsFinal() {
		return alreadyFinal(txn), nil
	}

	order, err := s.placeOrder(workCtx, txn)
	if err != nil {
		return s.failOnProviderError(workCtx, txn, err)
	}

	return s.settleConfirmed(workCtx, txn, order.OrderID)
}

// failOnProviderError marks the transaction failed without touching the balance
func (s *Service) failOnProviderError(ctx context.Context, txn *entity.Transaction, providerErr error) (*usecase.PurchaseResult, error) {
	s.logger.Warn("Provider order failed during confirmation", map[string]any{
		"transaction_id": txn.TransactionID,
		"user_id":        txn.UserID,
		"error":          providerErr.Error(),
	})

	f := entity.Finalization{
		Status:        entity.StatusFailed,
		FailureReason: providerErr.Error(),
		FinalizedAt:   s.timeProvider.Now(),
	}
	applied, err := s.uow.GetTransactionRepository(ctx).Finalize(ctx, txn.TransactionID, f)
	if err != nil {
		return nil, errs.NewTransactionError(txn.TransactionID, txn.UserID, string(txn.Status), "failed to mark transaction failed", err)
	}
	if !applied {
		return s.reloadFinal(ctx, txn.TransactionID)
	}
	txn.Apply(f)

	return &usecase.PurchaseResult{
		Outcome:     usecase.OutcomeProviderError,
		Transaction: txn,
		Reason:      providerErr,
		Message:     usecase.MessageProviderFailed,
	}, nil
}

// settleConfirmed debits the price and finalizes the transaction in one unit of work
func (s *Service) settleConfirmed(ctx context.Context, txn *entity.Transaction, orderID string) (*usecase.PurchaseResult, error) {
	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin confirmation: %w", err)
	}

	debit, err := s.ledger.TryDebit(txCtx, txn.UserID, txn.Price)
	if err != nil {
		s.rollback(txCtx, txn.TransactionID)
		return nil, fmt.Errorf("failed to debit balance: %w", err)
	}

	now := s.timeProvider.Now()
	repo := s.uow.GetTransactionRepository(txCtx)

	if !debit.Applied {
		reason := errs.NewInsufficientBalanceError(txn.UserID, debit.Balance, debit.Required)
		f := entity.Finalization{
			Status: entity.StatusFailed,
			// the provider accepted the order, keep its id for reconciliation
			ProviderOrderID: &orderID,
			FailureReason:   fmt.Sprintf("%s: %s", errs.ErrFundsChanged.Error(), reason.Error()),
			FinalizedAt:     now,
		}
		applied, err := repo.Finalize(txCtx, txn.TransactionID, f)
		if err != nil {
			s.rollback(txCtx, txn.TransactionID)
			return nil, fmt.Errorf("failed to mark transaction failed: %w", err)
		}
		if !applied {
			s.rollback(txCtx, txn.TransactionID)
			return s.reloadFinal(ctx, txn.TransactionID)
		}
		if err := s.uow.Commit(txCtx); err != nil {
			s.rollback(txCtx, txn.TransactionID)
			return nil, fmt.Errorf("failed to commit failed confirmation: %w", err)
		}
		txn.Apply(f)

		s.logger.Warn("Balance no longer covers confirmed purchase", map[string]any{
			"transaction_id":    txn.TransactionID,
			"user_id":           txn.UserID,
			"balance":           debit.Balance,
			"required":          debit.Required,
			"provider_order_id": orderID,
		})
		return &usecase.PurchaseResult{
			Outcome:     usecase.OutcomeFundsChanged,
			Transaction: txn,
			Shortfall:   usecase.NewShortfall(debit),
			Reason:      fmt.Errorf("%w: %w", errs.ErrFundsChanged, reason),
			Message:     reason.Error(),
		}, nil
	}

	f := entity.Finalization{
		Status:          entity.StatusSuccess,
		ProviderOrderID: &orderID,
		FinalizedAt:     now,
	}
	applied, err := repo.Finalize(txCtx, txn.TransactionID, f)
	if err != nil {
		s.rollback(txCtx, txn.TransactionID)
		return nil, fmt.Errorf("failed to finalize transaction: %w", err)
	}
	if !applied {
		// lost the race; rolling back also returns the debit
		s.rollback(txCtx, txn.TransactionID)
		return s.reloadFinal(ctx, txn.TransactionID)
	}
	txn.Apply(f)

	event := entity.NewSettlementEvent(s.ids.NewEventID(), txn, now)
	if err := s.uow.GetSettlementEventRepository(txCtx).Create(txCtx, event); err != nil {
		s.rollback(txCtx, txn.TransactionID)
		if errors.Is(err, errs.ErrDuplicateSettlementEvent) {
			return s.reloadFinal(ctx, txn.TransactionID)
		}
		return nil, fmt.Errorf("failed to record settlement event: %w", err)
	}

	if err := s.uow.Commit(txCtx); err != nil {
		s.rollback(txCtx, txn.TransactionID)
		return nil, fmt.Errorf("failed to commit confirmation: %w", err)
	}

	s.logger.Info("Confirmed purchase settled", map[string]any{
		"transaction_id":    txn.TransactionID,
		"user_id":           txn.UserID,
		"provider_order_id": orderID,
		"total":             txn.Total,
		"new_balance":       debit.Balance,
	})

	return &usecase.PurchaseResult{
		Outcome:     usecase.OutcomeAccepted,
		Transaction: txn,
	}, nil
}

// reloadFinal returns the state written by whoever finalized the transaction first
func (s *Service) reloadFinal(ctx context.Context, transactionID string) (*usecase.PurchaseResult, error) {
	txn, err := s.uow.GetTransactionRepository(ctx).GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload transaction %s: %w", transactionID, err)
	}
	return alreadyFinal(txn), nil
}

func alreadyFinal(txn *entity.Transaction) *usecase.PurchaseResult {
	return &usecase.PurchaseResult{
		Outcome:     usecase.OutcomeAlreadyFinal,
		Transaction: txn,
	}
}
