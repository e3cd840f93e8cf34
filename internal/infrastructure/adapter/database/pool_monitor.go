package database

import (
	"database/sql"
	"sync"
	"time"

	coreport "github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
)

// exhaustionRatio is the share of in-use connections that triggers a warning
const exhaustionRatio = 0.8

// StatsSource is the part of *sql.DB the monitor reads
type StatsSource interface {
	Stats() sql.DBStats
}

// ConnectionPoolMonitor periodically inspects the connection pool and
// warns when it is close to exhaustion
type ConnectionPoolMonitor struct {
	source   StatsSource
	logger   coreport.Logger
	mu       sync.RWMutex
	last     sql.DBStats
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewConnectionPoolMonitor creates a new connection pool monitor
func NewConnectionPoolMonitor(source StatsSource, logger coreport.Logger) *ConnectionPoolMonitor {
	return &ConnectionPoolMonitor{
		source:   source,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start collects immediately and then on every interval until Stop
func (m *ConnectionPoolMonitor) Start(interval time.Duration) {
	m.Collect()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Collect()
			case <-m.stopChan:
				return
			}
		}
	}()
}

// Stop stops the monitoring; calling it twice is safe
func (m *ConnectionPoolMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

// Stats returns the most recently collected pool statistics
func (m *ConnectionPoolMonitor) Stats() sql.DBStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// Collect reads the pool statistics once
func (m *ConnectionPoolMonitor) Collect() {
	stats := m.source.Stats()

	m.mu.Lock()
	m.last = stats
	m.mu.Unlock()

	if stats.MaxOpenConnections > 0 && float64(stats.InUse) > float64(stats.MaxOpenConnections)*exhaustionRatio {
		m.logger.Warn("Database connection pool nearly exhausted", map[string]any{
			"in_use":     stats.InUse,
			"max_open":   stats.MaxOpenConnections,
			"idle":       stats.Idle,
			"wait_count": stats.WaitCount,
			"wait_time":  stats.WaitDuration.String(),
		})
	}
}
