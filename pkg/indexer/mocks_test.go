package indexer

import (
	"context"

	"github.com/chainsafe/netflow-indexer/pkg/ethrpc"
	"github.com/chainsafe/netflow-indexer/pkg/transfer"
)

// MockChainClient is a mock implementation of ChainClient
type MockChainClient struct {
	BlockNumberFunc  func(ctx context.Context) (uint64, error)
	TransferLogsFunc func(ctx context.Context, token string, fromBlock, toBlock uint64) ([]ethrpc.Log, error)
}

func (m *MockChainClient) BlockNumber(ctx context.Context) (uint64, error) {
	if m.BlockNumberFunc != nil {
		return m.BlockNumberFunc(ctx)
	}
	return 0, nil
}

func (m *MockChainClient) TransferLogs(ctx context.Context, token string, fromBlock, toBlock uint64) ([]ethrpc.Log, error) {
	if m.TransferLogsFunc != nil {
		return m.TransferLogsFunc(ctx, token, fromBlock, toBlock)
	}
	return nil, nil
}

// MockTransferStore is a mock implementation of TransferStore
type MockTransferStore struct {
	UpsertTransfersFunc func(ctx context.Context, transfers []*transfer.Transfer) error
}

func (m *MockTransferStore) UpsertTransfers(ctx context.Context, transfers []*transfer.Transfer) error {
	if m.UpsertTransfersFunc != nil {
		return m.UpsertTransfersFunc(ctx, transfers)
	}
	return nil
}

// MockAggregator is a mock implementation of Aggregator
type MockAggregator struct {
	RecomputeFunc func(ctx context.Context) error
}

func (m *MockAggregator) Recompute(ctx context.Context) error {
	if m.RecomputeFunc != nil {
		return m.RecomputeFunc(ctx)
	}
	return nil
}
