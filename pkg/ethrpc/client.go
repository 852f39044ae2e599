// Package ethrpc is a minimal JSON-RPC client for the two chain calls the
// indexing pipeline needs: latest block height and Transfer logs for a
// token contract over a block range.
package ethrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// TransferTopic is keccak256("Transfer(address,address,uint256)").
const TransferTopic = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"

const (
	blockNumberAttempts = 3
	blockNumberRetryGap = 2 * time.Second

	defaultBlockNumberTimeout = 10 * time.Second
	defaultGetLogsTimeout     = 15 * time.Second
)

// Client issues JSON-RPC calls against a single chain endpoint.
type Client struct {
	httpClient *http.Client
	rpcURL     string
	requestID  atomic.Int64
	logger     *zap.Logger

	blockNumberTimeout time.Duration
	getLogsTimeout     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBlockNumberTimeout overrides the per-attempt timeout of BlockNumber.
func WithBlockNumberTimeout(d time.Duration) Option {
	return func(c *Client) { c.blockNumberTimeout = d }
}

// WithGetLogsTimeout overrides the timeout of TransferLogs.
func WithGetLogsTimeout(d time.Duration) Option {
	return func(c *Client) { c.getLogsTimeout = d }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new chain RPC client.
func NewClient(rpcURL string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient:         &http.Client{},
		rpcURL:             rpcURL,
		logger:             logger,
		blockNumberTimeout: defaultBlockNumberTimeout,
		getLogsTimeout:     defaultGetLogsTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BlockNumber returns the latest block height. Transient failures are
// retried up to three attempts with a fixed delay; each attempt fails fast
// on a non-success HTTP status or a malformed body.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var lastErr error
	for attempt := 1; attempt <= blockNumberAttempts; attempt++ {
		height, err := c.blockNumberOnce(ctx)
		if err == nil {
			return height, nil
		}
		lastErr = err
		c.logger.Warn("eth_blockNumber attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < blockNumberAttempts {
			select {
			case <-time.After(blockNumberRetryGap):
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}
	}
	return 0, fmt.Errorf("eth_blockNumber failed after %d attempts: %w", blockNumberAttempts, lastErr)
}

func (c *Client) blockNumberOnce(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.blockNumberTimeout)
	defer cancel()

	result, err := c.call(ctx, "eth_blockNumber", []any{})
	if err != nil {
		return 0, err
	}

	var hexHeight string
	if err := json.Unmarshal(result, &hexHeight); err != nil {
		return 0, fmt.Errorf("unmarshal block number: %w", err)
	}
	height, err := strconv.ParseUint(strings.TrimPrefix(hexHeight, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse block number %q: %w", hexHeight, err)
	}
	return height, nil
}

// TransferLogs fetches ERC-20 Transfer logs for a token contract in the
// inclusive block range. Single attempt; the indexing loop retries the
// whole cycle on failure. An empty result is not an error.
func (c *Client) TransferLogs(ctx context.Context, token string, fromBlock, toBlock uint64) ([]Log, error) {
	ctx, cancel := context.WithTimeout(ctx, c.getLogsTimeout)
	defer cancel()

	filter := logFilter{
		FromBlock: formatHexUint64(fromBlock),
		ToBlock:   formatHexUint64(toBlock),
		Address:   token,
		Topics:    []string{TransferTopic},
	}

	result, err := c.call(ctx, "eth_getLogs", []any{filter})
	if err != nil {
		return nil, fmt.Errorf("eth_getLogs [%d, %d] for %s: %w", fromBlock, toBlock, token, err)
	}

	var logs []Log
	if err := json.Unmarshal(result, &logs); err != nil {
		return nil, fmt.Errorf("unmarshal logs: %w", err)
	}
	return logs, nil
}

// call performs one JSON-RPC round trip.
func (c *Client) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	req := Request{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, string(respBody))
	}

	var rpcResp Response
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	return rpcResp.Result, nil
}

func formatHexUint64(v uint64) string {
	return "0x" + strconv.FormatUint(v, 16)
}
