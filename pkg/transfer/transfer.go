// Package transfer holds the domain types for ERC-20 transfer indexing:
// decoded log entries, direction classification, and aggregate net flows.
package transfer

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Direction indicates whether a transfer moves value into or out of the
// watched address set.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Transfer represents a single classified ERC-20 transfer touching the
// watched address set. Identity is (TxHash, LogIndex, TokenAddress);
// re-processing the same log overwrites Amount, Direction and Timestamp.
type Transfer struct {
	TxHash       string          `json:"tx_hash"`
	BlockNumber  int64           `json:"block_number"`
	LogIndex     int64           `json:"log_index"`
	TokenAddress string          `json:"token_address"`
	FromAddress  string          `json:"from_address"`
	ToAddress    string          `json:"to_address"`
	Amount       decimal.Decimal `json:"amount"`
	Direction    Direction       `json:"direction"`
	Timestamp    time.Time       `json:"timestamp"`
}

// NetFlow represents the cumulative net flow for a token across all watched
// addresses. Fully derived from the transfer table; recomputed wholesale on
// each aggregation pass.
type NetFlow struct {
	TokenAddress  string          `json:"token_address"`
	CumulativeNet decimal.Decimal `json:"cumulative_net"`
	LastBlock     int64           `json:"last_block"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// WatchedSet is a normalized set of watched (exchange) addresses.
// Membership checks are case-insensitive because keys are canonical
// common.Address values.
type WatchedSet map[common.Address]struct{}

// NewWatchedSet builds a WatchedSet from hex address strings, normalizing
// case along the way.
func NewWatchedSet(addrs []string) WatchedSet {
	set := make(WatchedSet, len(addrs))
	for _, a := range addrs {
		set[common.HexToAddress(a)] = struct{}{}
	}
	return set
}

// Contains reports whether the address is in the watched set.
func (s WatchedSet) Contains(addr common.Address) bool {
	_, ok := s[addr]
	return ok
}
