package transfer

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/chainsafe/netflow-indexer/pkg/ethrpc"
)

// topicLength is the byte length of an event topic; indexed addresses are
// left-padded to this size.
const topicLength = 32

// Decoded is a raw ERC-20 Transfer event pulled out of a log entry.
// RawAmount is in base token units, unscaled.
type Decoded struct {
	From        common.Address
	To          common.Address
	RawAmount   *big.Int
	BlockNumber uint64
	TxHash      string
	LogIndex    uint64
}

// DecodeLog decodes a raw eth_getLogs entry into a transfer. The second
// return value is false for logs that are not well-formed Transfer events:
// fewer than three topics, or indexed topics that are not 32 bytes.
//
// Unparsable amount data decodes to zero rather than rejecting the log, so
// a malformed payload never drops the rest of a batch. Tokens with amounts
// that cannot be hex-decoded lose that single amount.
func DecodeLog(log ethrpc.Log) (*Decoded, bool) {
	if len(log.Topics) < 3 {
		return nil, false
	}

	from, ok := topicToAddress(log.Topics[1])
	if !ok {
		return nil, false
	}
	to, ok := topicToAddress(log.Topics[2])
	if !ok {
		return nil, false
	}

	blockNumber, err := parseHexUint64(log.BlockNumber)
	if err != nil {
		return nil, false
	}

	// Absent or malformed log index defaults to 0.
	logIndex, err := parseHexUint64(log.LogIndex)
	if err != nil {
		logIndex = 0
	}

	return &Decoded{
		From:        from,
		To:          to,
		RawAmount:   parseAmount(log.Data),
		BlockNumber: blockNumber,
		TxHash:      log.TransactionHash,
		LogIndex:    logIndex,
	}, true
}

// ScaleAmount converts a raw base-unit amount to a token amount using the
// given decimal exponent (18 for the supported tokens). Exact decimal
// arithmetic, no floats.
func ScaleAmount(raw *big.Int, decimals int32) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -decimals)
}

// topicToAddress extracts the low 20 bytes from a 32-byte padded topic.
func topicToAddress(topic string) (common.Address, bool) {
	raw, err := hex.DecodeString(strings.TrimPrefix(topic, "0x"))
	if err != nil || len(raw) != topicLength {
		return common.Address{}, false
	}
	return common.BytesToAddress(raw[12:]), true
}

// parseAmount parses the data payload as a big-endian unsigned integer.
// Malformed data yields zero.
func parseAmount(data string) *big.Int {
	s := strings.TrimPrefix(data, "0x")
	if s == "" {
		return new(big.Int)
	}
	amount, ok := new(big.Int).SetString(s, 16)
	if !ok || amount.Sign() < 0 {
		return new(big.Int)
	}
	return amount
}

func parseHexUint64(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
}
