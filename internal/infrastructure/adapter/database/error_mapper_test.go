package database

import (
	"errors"
	"testing"

	domainErr "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestErrorMapper_MapError(t *testing.T) {
	mapper := NewErrorMapper()

	testCases := []struct {
		name     string
		err      error
		expected error
	}{
		{"not found", gorm.ErrRecordNotFound, domainErr.ErrNotFound},
		{"duplicate event", errors.New(`duplicate key value violates unique constraint "idx_settlement_events_transaction_id"`), domainErr.ErrDuplicateSettlementEvent},
		{"duplicate transaction", errors.New(`duplicate key value violates unique constraint "idx_transactions_transaction_id"`), domainErr.ErrDuplicateTransaction},
		{"duplicate other", errors.New(`duplicate key value violates unique constraint "products_pkey"`), domainErr.ErrConstraintViolation},
		{"negative balance", errors.New(`violates check constraint "chk_user_balances_non_negative"`), domainErr.ErrConstraintViolation},
		{"serialization", errors.New("could not serialize access due to concurrent update"), domainErr.ErrDatabaseConnection},
		{"timeout", errors.New("context deadline exceeded"), domainErr.ErrDatabaseConnection},
		{"other", errors.New("bad connection"), domainErr.ErrDatabaseConnection},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, mapper.MapError(tc.err, "commit"), tc.expected)
		})
	}

	assert.NoError(t, mapper.MapError(nil, "commit"))
}
