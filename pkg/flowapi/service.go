// Package flowapi exposes the indexed net flows and transfers over HTTP.
// Reads run concurrently with the indexing loop; the store's connection
// pool and transaction isolation keep them consistent.
package flowapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/netflow-indexer/pkg/app/errors"
	"github.com/chainsafe/netflow-indexer/pkg/flowstore"
	"github.com/chainsafe/netflow-indexer/pkg/transfer"
)

// MaxTransferLimit caps how many transfers a single query may return.
const MaxTransferLimit = 100

var ErrInvalidTokenAddress = errors.New("invalid token address")

// Service defines the read operations exposed by the query API.
type Service interface {
	NetFlow(ctx context.Context, token string) (*transfer.NetFlow, error)
	RecentTransfers(ctx context.Context, token string, limit int) ([]*transfer.Transfer, error)
}

type flowService struct {
	store  flowstore.Reader
	logger *zap.Logger
}

// NewService creates the query service over a read-only store handle.
func NewService(store flowstore.Reader, logger *zap.Logger) Service {
	return &flowService{
		store:  store,
		logger: logger,
	}
}

// NetFlow returns the aggregate for a token. A token with no indexed
// transfers yields a zero-valued aggregate, not an error.
func (s *flowService) NetFlow(ctx context.Context, token string) (*transfer.NetFlow, error) {
	if !common.IsHexAddress(token) {
		return nil, apperrors.BadRequestError(ErrInvalidTokenAddress, "invalid token address")
	}

	nf, err := s.store.GetNetFlow(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to query netflow: %w", err)
	}
	return nf, nil
}

// RecentTransfers returns the most recent transfers for a token by block
// number. A non-positive limit falls back to the store default; the limit
// is clamped to MaxTransferLimit.
func (s *flowService) RecentTransfers(ctx context.Context, token string, limit int) ([]*transfer.Transfer, error) {
	if !common.IsHexAddress(token) {
		return nil, apperrors.BadRequestError(ErrInvalidTokenAddress, "invalid token address")
	}
	if limit > MaxTransferLimit {
		limit = MaxTransferLimit
	}

	transfers, err := s.store.ListRecentTransfers(ctx, token, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	return transfers, nil
}
