// Package indexer orchestrates the ingestion pipeline: a one-time backfill
// over a historical block window at startup, then an unbounded polling loop
// that scans a lookback window behind the confirmed chain tip, decodes and
// classifies Transfer logs, and persists them token by token.
package indexer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/netflow-indexer/internal/metrics"
	"github.com/chainsafe/netflow-indexer/pkg/config"
	"github.com/chainsafe/netflow-indexer/pkg/ethrpc"
	"github.com/chainsafe/netflow-indexer/pkg/transfer"
)

// ChainClient defines the chain RPC operations the engine needs.
type ChainClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	TransferLogs(ctx context.Context, token string, fromBlock, toBlock uint64) ([]ethrpc.Log, error)
}

// TransferStore defines the write operation the engine drives.
type TransferStore interface {
	UpsertTransfers(ctx context.Context, transfers []*transfer.Transfer) error
}

// Aggregator recomputes netflow aggregates after a committed batch.
type Aggregator interface {
	Recompute(ctx context.Context) error
}

// Engine runs the indexing loop. It is the sole writer to the store;
// tokens are processed sequentially within a cycle to bound RPC load, so
// at most one write transaction is in flight at a time.
type Engine struct {
	cfg     *config.EthereumConfig
	client  ChainClient
	store   TransferStore
	agg     Aggregator
	watched transfer.WatchedSet
	tokens  []string
	logger  *zap.Logger

	retryDelay time.Duration
	ready      atomic.Bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewEngine creates a new indexing engine.
func NewEngine(
	cfg *config.EthereumConfig,
	client ChainClient,
	store TransferStore,
	agg Aggregator,
	watched transfer.WatchedSet,
	tokens []string,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		cfg:        cfg,
		client:     client,
		store:      store,
		agg:        agg,
		watched:    watched,
		tokens:     tokens,
		logger:     logger,
		retryDelay: cfg.RetryDelay,
		stopCh:     make(chan struct{}),
	}
}

// Start launches the indexing loop in the background.
func (e *Engine) Start(ctx context.Context) {
	e.logger.Info("Starting indexing engine",
		zap.Uint64("confirmations", e.cfg.Confirmations),
		zap.Uint64("backfill_blocks", e.cfg.BackfillBlocks),
		zap.Uint64("lookback_blocks", e.cfg.LookbackBlocks),
		zap.Int("tokens", len(e.tokens)))

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run(ctx)
	}()
}

// Stop stops the engine and waits for any in-flight batch to finish or
// roll back.
func (e *Engine) Stop() {
	e.logger.Info("Stopping indexing engine")
	close(e.stopCh)
	e.wg.Wait()
	e.logger.Info("Indexing engine stopped")
}

// IsReady reports whether the startup backfill pass has completed
// (successfully or as a skipped best-effort attempt).
func (e *Engine) IsReady() bool {
	return e.ready.Load()
}

func (e *Engine) run(ctx context.Context) {
	e.backfill(ctx)
	e.ready.Store(true)

	for {
		if e.stopped(ctx) {
			return
		}
		e.cycle(ctx)
		if !e.sleep(ctx, e.retryDelay) {
			return
		}
	}
}

// backfill scans a fixed historical window once at startup. Best effort:
// if the initial height fetch fails the backfill is skipped entirely and
// the engine proceeds to polling.
func (e *Engine) backfill(ctx context.Context) {
	latest, err := e.client.BlockNumber(ctx)
	if err != nil {
		e.logger.Warn("Failed to get latest block for backfill, skipping backfill", zap.Error(err))
		metrics.RPCErrors.WithLabelValues("eth_blockNumber").Inc()
		e.bumpRetryDelay()
		return
	}

	target := saturatingSub(latest, e.cfg.Confirmations)
	start := saturatingSub(target, e.cfg.BackfillBlocks)
	e.logger.Info("Backfilling",
		zap.Uint64("from_block", start),
		zap.Uint64("to_block", target))

	for _, token := range e.tokens {
		e.processRange(ctx, token, start, target)
		if !e.sleep(ctx, e.cfg.RPCPause) {
			return
		}
	}
}

// cycle runs one polling pass over all tokens.
func (e *Engine) cycle(ctx context.Context) {
	started := time.Now()

	latest, err := e.client.BlockNumber(ctx)
	if err != nil {
		e.logger.Warn("Failed to get latest block", zap.Error(err))
		metrics.RPCErrors.WithLabelValues("eth_blockNumber").Inc()
		e.bumpRetryDelay()
		return
	}
	e.retryDelay = e.cfg.RetryDelay

	target := saturatingSub(latest, e.cfg.Confirmations)
	metrics.TargetBlock.Set(float64(target))
	e.logger.Debug("Polling cycle",
		zap.Uint64("latest_block", latest),
		zap.Uint64("target_block", target))

	for _, token := range e.tokens {
		e.processRange(ctx, token, saturatingSub(target, e.cfg.LookbackBlocks), target)
		if !e.sleep(ctx, e.cfg.RPCPause) {
			return
		}
	}

	metrics.ScanCycleDuration.Observe(time.Since(started).Seconds())
}

// processRange fetches, decodes, classifies and persists one token's logs
// for one block range, then recomputes aggregates. Failures are logged and
// isolated to this token and cycle; the backoff state is untouched.
func (e *Engine) processRange(ctx context.Context, token string, fromBlock, toBlock uint64) {
	logs, err := e.client.TransferLogs(ctx, token, fromBlock, toBlock)
	if err != nil {
		e.logger.Warn("Failed to fetch transfer logs",
			zap.String("token", token),
			zap.Uint64("from_block", fromBlock),
			zap.Uint64("to_block", toBlock),
			zap.Error(err))
		metrics.RPCErrors.WithLabelValues("eth_getLogs").Inc()
		return
	}

	batch := e.buildBatch(token, logs)
	if err := e.store.UpsertTransfers(ctx, batch); err != nil {
		e.logger.Error("Failed to persist transfer batch",
			zap.String("token", token),
			zap.Uint64("from_block", fromBlock),
			zap.Uint64("to_block", toBlock),
			zap.Int("batch_size", len(batch)),
			zap.Error(err))
		metrics.BatchFailures.WithLabelValues(token).Inc()
		return
	}

	for _, t := range batch {
		metrics.TransfersIndexed.WithLabelValues(token, string(t.Direction)).Inc()
	}

	if err := e.agg.Recompute(ctx); err != nil {
		e.logger.Error("Failed to recompute netflows",
			zap.String("token", token),
			zap.Error(err))
	} else {
		metrics.AggregateRecomputes.Inc()
	}

	e.logger.Info("Indexed block range",
		zap.String("token", token),
		zap.Uint64("from_block", fromBlock),
		zap.Uint64("to_block", toBlock),
		zap.Int("transfers", len(batch)))
}

// buildBatch decodes and classifies raw logs into persistable transfers.
// Malformed logs and transfers not touching the watched set are dropped.
// The batch is deduplicated on (tx_hash, log_index); the last occurrence
// wins, matching upsert semantics.
func (e *Engine) buildBatch(token string, logs []ethrpc.Log) []*transfer.Transfer {
	type key struct {
		txHash   string
		logIndex uint64
	}
	seen := make(map[key]int)
	batch := make([]*transfer.Transfer, 0, len(logs))

	for _, log := range logs {
		decoded, ok := transfer.DecodeLog(log)
		if !ok {
			e.logger.Debug("Skipping undecodable log",
				zap.String("token", token),
				zap.String("tx_hash", log.TransactionHash))
			continue
		}

		direction, relevant := transfer.Classify(decoded, e.watched)
		if !relevant {
			continue
		}

		t := &transfer.Transfer{
			TxHash:       decoded.TxHash,
			BlockNumber:  int64(decoded.BlockNumber),
			LogIndex:     int64(decoded.LogIndex),
			TokenAddress: token,
			FromAddress:  decoded.From.Hex(),
			ToAddress:    decoded.To.Hex(),
			Amount:       transfer.ScaleAmount(decoded.RawAmount, e.cfg.TokenDecimals),
			Direction:    direction,
			Timestamp:    time.Now().UTC(),
		}

		k := key{txHash: decoded.TxHash, logIndex: decoded.LogIndex}
		if i, dup := seen[k]; dup {
			batch[i] = t
			continue
		}
		seen[k] = len(batch)
		batch = append(batch, t)
	}
	return batch
}

// bumpRetryDelay doubles the inter-cycle delay up to the configured cap.
func (e *Engine) bumpRetryDelay() {
	e.retryDelay *= 2
	if e.retryDelay > e.cfg.MaxRetryDelay {
		e.retryDelay = e.cfg.MaxRetryDelay
	}
}

// sleep waits for d unless the engine is stopped first. Returns false when
// the engine should exit.
func (e *Engine) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return !e.stopped(ctx)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-e.stopCh:
		return false
	case <-ctx.Done():
		return false
	}
}

func (e *Engine) stopped(ctx context.Context) bool {
	select {
	case <-e.stopCh:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
