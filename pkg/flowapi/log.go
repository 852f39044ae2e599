package flowapi

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/netflow-indexer/pkg/transfer"
)

const serviceName = "FlowService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the query Service.
// It logs method entry/exit, duration and errors.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) NetFlow(ctx context.Context, token string) (resp *transfer.NetFlow, err error) {
	start := time.Now()

	ls.logger.Debug("NetFlow started",
		zap.String("service", serviceName),
		zap.String("method", "NetFlow"),
		zap.String("token", token),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("NetFlow failed",
				zap.String("service", serviceName),
				zap.String("method", "NetFlow"),
				zap.String("token", token),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Debug("NetFlow completed",
				zap.String("service", serviceName),
				zap.String("method", "NetFlow"),
				zap.String("token", token),
				zap.String("cumulative_net", resp.CumulativeNet.String()),
				zap.Int64("last_block", resp.LastBlock),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.NetFlow(ctx, token)
}

func (ls *logService) RecentTransfers(ctx context.Context, token string, limit int) (resp []*transfer.Transfer, err error) {
	start := time.Now()

	ls.logger.Debug("RecentTransfers started",
		zap.String("service", serviceName),
		zap.String("method", "RecentTransfers"),
		zap.String("token", token),
		zap.Int("limit", limit),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("RecentTransfers failed",
				zap.String("service", serviceName),
				zap.String("method", "RecentTransfers"),
				zap.String("token", token),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Debug("RecentTransfers completed",
				zap.String("service", serviceName),
				zap.String("method", "RecentTransfers"),
				zap.String("token", token),
				zap.Int("returned", len(resp)),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.RecentTransfers(ctx, token, limit)
}
