package flowstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/chainsafe/netflow-indexer/pkg/transfer"
	"github.com/chainsafe/netflow-indexer/pkg/watch"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the flow store.
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) UpsertTransfers(ctx context.Context, transfers []*transfer.Transfer) error {
	if len(transfers) == 0 {
		return nil
	}

	daos := make([]TransferDao, len(transfers))
	for i, t := range transfers {
		daos[i] = toTransferDao(t)
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&daos).
			On("CONFLICT (tx_hash, log_index, token_address) DO UPDATE").
			Set("amount = EXCLUDED.amount").
			Set("direction = EXCLUDED.direction").
			Set("timestamp = EXCLUDED.timestamp").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to upsert transfer batch: %w", err)
		}
		return nil
	})
}

func (s *pgStore) UpsertNetFlow(ctx context.Context, token string, net decimal.Decimal, lastBlock int64) error {
	dao := &NetFlowDao{
		TokenAddress:  token,
		CumulativeNet: net,
		LastBlock:     lastBlock,
		UpdatedAt:     time.Now().UTC(),
	}

	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (token_address) DO UPDATE").
		Set("cumulative_net = EXCLUDED.cumulative_net").
		Set("last_block = EXCLUDED.last_block").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert netflow for %s: %w", token, err)
	}
	return nil
}

func (s *pgStore) GetNetFlow(ctx context.Context, token string) (*transfer.NetFlow, error) {
	dao := new(NetFlowDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("LOWER(token_address) = LOWER(?)", token).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &transfer.NetFlow{
				TokenAddress:  token,
				CumulativeNet: decimal.Zero,
				LastBlock:     0,
				UpdatedAt:     time.Now().UTC(),
			}, nil
		}
		return nil, fmt.Errorf("failed to get netflow: %w", err)
	}
	return toNetFlow(dao), nil
}

func (s *pgStore) ListRecentTransfers(ctx context.Context, token string, limit int) ([]*transfer.Transfer, error) {
	if limit <= 0 {
		limit = DefaultTransferLimit
	}

	var daos []TransferDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("LOWER(token_address) = LOWER(?)", token).
		OrderExpr("block_number DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}

	transfers := make([]*transfer.Transfer, len(daos))
	for i := range daos {
		transfers[i] = toTransfer(&daos[i])
	}
	return transfers, nil
}

func (s *pgStore) SumFlows(ctx context.Context) ([]TokenFlow, error) {
	var flows []TokenFlow
	err := s.db.NewSelect().
		Model((*TransferDao)(nil)).
		ColumnExpr("token_address").
		ColumnExpr("COALESCE(SUM(CASE WHEN direction = 'IN' THEN amount ELSE 0 END), 0) AS inflow").
		ColumnExpr("COALESCE(SUM(CASE WHEN direction = 'OUT' THEN amount ELSE 0 END), 0) AS outflow").
		ColumnExpr("MAX(block_number) AS last_block").
		Group("token_address").
		Scan(ctx, &flows)
	if err != nil {
		return nil, fmt.Errorf("failed to sum flows: %w", err)
	}
	return flows, nil
}

func (s *pgStore) SeedExchanges(ctx context.Context, exchanges []watch.Exchange) error {
	if len(exchanges) == 0 {
		return nil
	}

	daos := make([]ExchangeDao, len(exchanges))
	for i, e := range exchanges {
		daos[i] = ExchangeDao{Address: e.Address, Label: e.Label}
	}

	_, err := s.db.NewInsert().
		Model(&daos).
		On("CONFLICT (address) DO UPDATE").
		Set("label = EXCLUDED.label").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed exchanges: %w", err)
	}
	return nil
}
