package aggregator

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainsafe/netflow-indexer/pkg/flowstore"
	"github.com/chainsafe/netflow-indexer/pkg/transfer"
	"github.com/chainsafe/netflow-indexer/pkg/watch"
)

// MockStore is a mock implementation of flowstore.Store
type MockStore struct {
	SumFlowsFunc      func(ctx context.Context) ([]flowstore.TokenFlow, error)
	UpsertNetFlowFunc func(ctx context.Context, token string, net decimal.Decimal, lastBlock int64) error
}

func (m *MockStore) SumFlows(ctx context.Context) ([]flowstore.TokenFlow, error) {
	if m.SumFlowsFunc != nil {
		return m.SumFlowsFunc(ctx)
	}
	return nil, nil
}

func (m *MockStore) UpsertNetFlow(ctx context.Context, token string, net decimal.Decimal, lastBlock int64) error {
	if m.UpsertNetFlowFunc != nil {
		return m.UpsertNetFlowFunc(ctx, token, net, lastBlock)
	}
	return nil
}

func (m *MockStore) UpsertTransfers(ctx context.Context, transfers []*transfer.Transfer) error {
	return nil
}

func (m *MockStore) SeedExchanges(ctx context.Context, exchanges []watch.Exchange) error {
	return nil
}

func (m *MockStore) GetNetFlow(ctx context.Context, token string) (*transfer.NetFlow, error) {
	return nil, nil
}

func (m *MockStore) ListRecentTransfers(ctx context.Context, token string, limit int) ([]*transfer.Transfer, error) {
	return nil, nil
}

func TestRecompute_NetIsInflowMinusOutflow(t *testing.T) {
	written := make(map[string]decimal.Decimal)
	lastBlocks := make(map[string]int64)

	mockStore := &MockStore{
		SumFlowsFunc: func(ctx context.Context) ([]flowstore.TokenFlow, error) {
			return []flowstore.TokenFlow{
				{
					TokenAddress: "0xtokenA",
					Inflow:       decimal.RequireFromString("10"),
					Outflow:      decimal.RequireFromString("3.5"),
					LastBlock:    120,
				},
				{
					TokenAddress: "0xtokenB",
					Inflow:       decimal.RequireFromString("1"),
					Outflow:      decimal.RequireFromString("4"),
					LastBlock:    95,
				},
			}, nil
		},
		UpsertNetFlowFunc: func(ctx context.Context, token string, net decimal.Decimal, lastBlock int64) error {
			written[token] = net
			lastBlocks[token] = lastBlock
			return nil
		},
	}

	agg := New(mockStore, zap.NewNop())
	if err := agg.Recompute(context.Background()); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	if !written["0xtokenA"].Equal(decimal.RequireFromString("6.5")) {
		t.Errorf("Expected net 6.5 for token A, got %s", written["0xtokenA"])
	}
	// net outflow goes negative
	if !written["0xtokenB"].Equal(decimal.RequireFromString("-3")) {
		t.Errorf("Expected net -3 for token B, got %s", written["0xtokenB"])
	}
	if lastBlocks["0xtokenA"] != 120 || lastBlocks["0xtokenB"] != 95 {
		t.Errorf("Unexpected last blocks: %v", lastBlocks)
	}
}

func TestRecompute_SumFailure(t *testing.T) {
	mockStore := &MockStore{
		SumFlowsFunc: func(ctx context.Context) ([]flowstore.TokenFlow, error) {
			return nil, errors.New("db down")
		},
		UpsertNetFlowFunc: func(ctx context.Context, token string, net decimal.Decimal, lastBlock int64) error {
			t.Error("UpsertNetFlow should not run when the aggregate query fails")
			return nil
		},
	}

	agg := New(mockStore, zap.NewNop())
	if err := agg.Recompute(context.Background()); err == nil {
		t.Fatal("Expected the aggregate failure to propagate")
	}
}

func TestRecompute_UpsertFailure(t *testing.T) {
	mockStore := &MockStore{
		SumFlowsFunc: func(ctx context.Context) ([]flowstore.TokenFlow, error) {
			return []flowstore.TokenFlow{
				{TokenAddress: "0xtokenA", Inflow: decimal.New(1, 0), Outflow: decimal.Zero, LastBlock: 1},
			}, nil
		},
		UpsertNetFlowFunc: func(ctx context.Context, token string, net decimal.Decimal, lastBlock int64) error {
			return errors.New("write failed")
		},
	}

	agg := New(mockStore, zap.NewNop())
	if err := agg.Recompute(context.Background()); err == nil {
		t.Fatal("Expected the write failure to propagate")
	}
}
