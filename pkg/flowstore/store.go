// Package flowstore persists classified transfers and derived net-flow
// aggregates in PostgreSQL.
package flowstore

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/chainsafe/netflow-indexer/pkg/transfer"
	"github.com/chainsafe/netflow-indexer/pkg/watch"
)

// DefaultTransferLimit is used when a recent-transfers query does not
// specify a positive limit.
const DefaultTransferLimit = 10

// TokenFlow is a per-token aggregation row over the transfers table.
type TokenFlow struct {
	TokenAddress string          `bun:"token_address"`
	Inflow       decimal.Decimal `bun:"inflow"`
	Outflow      decimal.Decimal `bun:"outflow"`
	LastBlock    int64           `bun:"last_block"`
}

// Reader defines the read-only operations available to the API surface.
// API handlers must never write; they get this interface, not Store.
type Reader interface {
	// GetNetFlow returns the aggregate row for a token, matched
	// case-insensitively. An unseen token yields a zero-valued NetFlow
	// for the queried address, not an error.
	GetNetFlow(ctx context.Context, token string) (*transfer.NetFlow, error)
	// ListRecentTransfers returns transfers for a token ordered by block
	// number descending. A non-positive limit falls back to
	// DefaultTransferLimit.
	ListRecentTransfers(ctx context.Context, token string, limit int) ([]*transfer.Transfer, error)
}

// Writer defines the write operations owned by the indexing loop.
type Writer interface {
	// UpsertTransfers writes a batch of classified transfers inside one
	// transaction. Key collisions overwrite amount, direction and
	// timestamp; the batch commits fully or not at all.
	UpsertTransfers(ctx context.Context, transfers []*transfer.Transfer) error
	// UpsertNetFlow writes the aggregate row for a token. Last writer
	// wins unconditionally.
	UpsertNetFlow(ctx context.Context, token string, net decimal.Decimal, lastBlock int64) error
	// SeedExchanges upserts watched-wallet labels. Idempotent.
	SeedExchanges(ctx context.Context, exchanges []watch.Exchange) error
}

// Store is the full persistence contract.
type Store interface {
	Reader
	Writer
	// SumFlows aggregates inflow, outflow and highest block per token
	// over all stored transfers, computed in exact NUMERIC arithmetic.
	SumFlows(ctx context.Context) ([]TokenFlow, error)
}
