package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
)

// TransactionPrefix marks purchase transaction ids
const TransactionPrefix = "TRX"

// Generator issues snowflake transaction ids and uuid event ids
type Generator struct {
	node *snowflake.Node
}

var _ core.IDGenerator = (*Generator)(nil)

// NewGenerator creates a generator for the given node number (0..1023).
// Every running instance needs its own node number for ids to stay unique.
func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node %d: %w", nodeID, err)
	}
	return &Generator{node: node}, nil
}

// NewTransactionID returns a time-ordered id such as TRX1790467452734472192
func (g *Generator) NewTransactionID() string {
	return TransactionPrefix + g.node.Generate().String()
}

// NewEventID returns a random uuid
func (g *Generator) NewEventID() string {
	return uuid.NewString()
}
