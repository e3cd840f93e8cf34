package migration

import (
	coreport "github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"gorm.io/gorm"
)

// schemaStatement is one idempotent DDL statement applied after AutoMigrate
type schemaStatement struct {
	name     string
	sql      string
	critical bool
}

// schemaStatements hold the invariants GORM tags cannot express
var schemaStatements = []schemaStatement{
	{
		name:     "chk_user_balances_non_negative",
		sql:      `ALTER TABLE user_balances DROP CONSTRAINT IF EXISTS chk_user_balances_non_negative`,
		critical: true,
	},
	{
		name:     "chk_user_balances_non_negative",
		sql:      `ALTER TABLE user_balances ADD CONSTRAINT chk_user_balances_non_negative CHECK (balance >= 0)`,
		critical: true,
	},
	{
		name:     "chk_transactions_status",
		sql:      `ALTER TABLE transactions DROP CONSTRAINT IF EXISTS chk_transactions_status`,
		critical: true,
	},
	{
		name:     "chk_transactions_status",
		sql:      `ALTER TABLE transactions ADD CONSTRAINT chk_transactions_status CHECK (status IN ('pending', 'success', 'failed'))`,
		critical: true,
	},
	{
		name:     "chk_transactions_total",
		sql:      `ALTER TABLE transactions DROP CONSTRAINT IF EXISTS chk_transactions_total`,
		critical: true,
	},
	{
		name:     "chk_transactions_total",
		sql:      `ALTER TABLE transactions ADD CONSTRAINT chk_transactions_total CHECK (price >= 0 AND fee >= 0 AND total = price + fee)`,
		critical: true,
	},
	{
		name:     "chk_payment_methods_fee_percent",
		sql:      `ALTER TABLE payment_methods DROP CONSTRAINT IF EXISTS chk_payment_methods_fee_percent`,
		critical: true,
	},
	{
		name:     "chk_payment_methods_fee_percent",
		sql:      `ALTER TABLE payment_methods ADD CONSTRAINT chk_payment_methods_fee_percent CHECK (fee_percent >= 0 AND fee_percent <= 100 AND fee_fixed >= 0)`,
		critical: true,
	},
	{
		name:     "idx_settlement_events_transaction_id",
		sql:      `CREATE UNIQUE INDEX IF NOT EXISTS idx_settlement_events_transaction_id ON settlement_events (transaction_id)`,
		critical: true,
	},
	{
		name: "idx_transactions_user_created",
		sql:  `CREATE INDEX IF NOT EXISTS idx_transactions_user_created ON transactions (user_id, created_at DESC, id DESC)`,
	},
	{
		name: "idx_transactions_pending",
		sql:  `CREATE INDEX IF NOT EXISTS idx_transactions_pending ON transactions (created_at) WHERE status = 'pending'`,
	},
	{
		name: "idx_transactions_unfulfilled",
		sql:  `CREATE INDEX IF NOT EXISTS idx_transactions_unfulfilled ON transactions (created_at) WHERE status = 'success' AND provider_order_id IS NULL AND fulfillment_error <> ''`,
	},
	{
		name: "idx_settlement_events_unpublished",
		sql:  `CREATE INDEX IF NOT EXISTS idx_settlement_events_unpublished ON settlement_events (id) WHERE published_at IS NULL`,
	},
	{
		name: "fillfactor_user_balances",
		sql:  `ALTER TABLE user_balances SET (fillfactor = 80)`,
	},
}

// SchemaConstraintManager applies constraints and indexes on top of AutoMigrate
type SchemaConstraintManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewSchemaConstraintManager creates a new schema constraint manager
func NewSchemaConstraintManager(db *gorm.DB, logger coreport.Logger) *SchemaConstraintManager {
	return &SchemaConstraintManager{
		db:     db,
		logger: logger,
	}
}

// Apply runs every statement; failures of non-critical ones are only logged
func (m *SchemaConstraintManager) Apply() error {
	m.logger.Info("Applying schema constraints and indexes", map[string]any{
		"statements": len(schemaStatements),
	})

	for _, stmt := range schemaStatements {
		if err := m.db.Exec(stmt.sql).Error; err != nil {
			fields := map[string]any{
				"name":  stmt.name,
				"error": err.Error(),
			}
			if stmt.critical {
				m.logger.Error("Failed to apply schema statement", fields)
				return err
			}
			m.logger.Warn("Failed to apply optional schema statement", fields)
		}
	}
	return nil
}
