package database

import (
	"context"
	"errors"
	"testing"
	"time"

	coremocks "github.com/amirhossein-jamali/topup-ledger/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestExtractQueryTypeAndTable(t *testing.T) {
	testCases := []struct {
		sql       string
		wantType  string
		wantTable string
	}{
		{`SELECT * FROM "transactions" WHERE transaction_id = $1`, "SELECT", "transactions"},
		{`INSERT INTO "settlement_events" ("event_id") VALUES ($1)`, "INSERT", "settlement_events"},
		{"\n\t\tUPDATE user_balances\n\t\tSET balance = balance - $1", "UPDATE", "user_balances"},
		{`DELETE FROM "confirmation_locks" WHERE expires_at < $1`, "DELETE", "confirmation_locks"},
		{"SET TRANSACTION ISOLATION LEVEL READ COMMITTED", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.sql, func(t *testing.T) {
			assert.Equal(t, tc.wantType, extractQueryType(tc.sql))
			assert.Equal(t, tc.wantTable, extractTableName(tc.sql))
		})
	}
}

func TestDatabaseLogger_Trace(t *testing.T) {
	begin := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	sqlFn := func() (string, int64) { return `SELECT * FROM "products"`, 1 }

	t.Run("errors are logged at error level", func(t *testing.T) {
		// Arrange
		coreLogger := coremocks.NewMockLogger(t)
		clock := coremocks.NewMockTimeProvider(t)
		clock.On("Since", begin).Return(time.Millisecond)
		coreLogger.On("Error", "SQL Error", mock.MatchedBy(func(f map[string]any) bool {
			return f["error"] == "boom" && f["table"] == "products"
		})).Return()
		l := NewDatabaseLogger(coreLogger, clock, "info")

		// Act
		l.Trace(context.Background(), begin, sqlFn, errors.New("boom"))
	})

	t.Run("record not found is not an error", func(t *testing.T) {
		coreLogger := coremocks.NewMockLogger(t)
		clock := coremocks.NewMockTimeProvider(t)
		clock.On("Since", begin).Return(time.Millisecond)
		coreLogger.On("Debug", "SQL Query", mock.Anything).Return()
		l := NewDatabaseLogger(coreLogger, clock, "info")

		l.Trace(context.Background(), begin, sqlFn, gorm.ErrRecordNotFound)
	})

	t.Run("slow queries are warned", func(t *testing.T) {
		coreLogger := coremocks.NewMockLogger(t)
		clock := coremocks.NewMockTimeProvider(t)
		clock.On("Since", begin).Return(time.Second)
		coreLogger.On("Warn", "Slow SQL Query", mock.Anything).Return()
		l := NewDatabaseLogger(coreLogger, clock, "warn")

		l.Trace(context.Background(), begin, sqlFn, nil)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		coreLogger := coremocks.NewMockLogger(t)
		clock := coremocks.NewMockTimeProvider(t)
		l := NewDatabaseLogger(coreLogger, clock, "info").LogMode(logger.Silent)

		l.Trace(context.Background(), begin, sqlFn, errors.New("ignored"))
	})
}
