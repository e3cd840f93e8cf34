package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/topup-ledger/mocks/port/core"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassifier_Classify(t *testing.T) {
	classifier := NewErrorClassifier()

	testCases := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"nil", nil, ""},
		{"duplicate key", errors.New(`ERROR: duplicate key value violates unique constraint "idx_settlement_events_transaction_id" (SQLSTATE 23505)`), DuplicateKeyError},
		{"negative balance", errors.New(`ERROR: new row for relation "user_balances" violates check constraint "chk_user_balances_non_negative" (SQLSTATE 23514)`), CheckError},
		{"serialization", errors.New("ERROR: could not serialize access due to concurrent update"), LockError},
		{"refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), ConnectionError},
		{"foreign key", errors.New("violates foreign key constraint"), ConstraintError},
		{"unknown", errors.New("something odd"), ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, classifier.Classify(tc.err))
		})
	}
}

func TestWrapDatabaseError(t *testing.T) {
	classifier := NewErrorClassifier()
	logger := coremocks.NewMockLogger(t)
	logger.AllowAll()

	t.Run("check violation maps to constraint error", func(t *testing.T) {
		err := wrapDatabaseError(logger, classifier, "credit", errors.New("violates check constraint"), nil)
		assert.ErrorIs(t, err, errs.ErrConstraintViolation)
	})

	t.Run("context error keeps its cause", func(t *testing.T) {
		err := wrapDatabaseError(logger, classifier, "debit", fmt.Errorf("query: %w", context.DeadlineExceeded), map[string]any{"user_id": "u1"})
		assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("anything else is a connection error", func(t *testing.T) {
		err := wrapDatabaseError(logger, classifier, "list", errors.New("connection reset by peer"), nil)
		assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
	})
}
