package database

import (
	"database/sql"
	"testing"
	"time"

	coremocks "github.com/amirhossein-jamali/topup-ledger/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type staticStats sql.DBStats

func (s staticStats) Stats() sql.DBStats { return sql.DBStats(s) }

func TestConnectionPoolMonitor_Collect(t *testing.T) {
	t.Run("healthy pool stays quiet", func(t *testing.T) {
		logger := coremocks.NewMockLogger(t)
		monitor := NewConnectionPoolMonitor(staticStats{MaxOpenConnections: 10, InUse: 3, Idle: 2}, logger)

		monitor.Collect()

		assert.Equal(t, 3, monitor.Stats().InUse)
	})

	t.Run("nearly exhausted pool warns", func(t *testing.T) {
		logger := coremocks.NewMockLogger(t)
		logger.On("Warn", "Database connection pool nearly exhausted", mock.MatchedBy(func(f map[string]any) bool {
			return f["in_use"] == 9 && f["max_open"] == 10
		})).Return().Once()
		monitor := NewConnectionPoolMonitor(staticStats{MaxOpenConnections: 10, InUse: 9, WaitDuration: time.Second}, logger)

		monitor.Collect()
	})
}

func TestConnectionPoolMonitor_StartStop(t *testing.T) {
	logger := coremocks.NewMockLogger(t)
	monitor := NewConnectionPoolMonitor(staticStats{MaxOpenConnections: 4, InUse: 1}, logger)

	monitor.Start(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	monitor.Stop()
	monitor.Stop()

	assert.Equal(t, 4, monitor.Stats().MaxOpenConnections)
}
