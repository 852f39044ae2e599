package transfer

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/netflow-indexer/pkg/ethrpc"
)

const (
	transferTopic = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"
	fromAddr      = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	toAddr        = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func paddedTopic(addr string) string {
	return "0x000000000000000000000000" + addr[2:]
}

func validLog() ethrpc.Log {
	return ethrpc.Log{
		Address:         "0x2222222222222222222222222222222222222222",
		Topics:          []string{transferTopic, paddedTopic(fromAddr), paddedTopic(toAddr)},
		Data:            "0x0de0b6b3a7640000", // 10^18
		BlockNumber:     "0x3e8",
		TransactionHash: "0xtx1",
		LogIndex:        "0x5",
	}
}

func TestDecodeLog_WellFormed(t *testing.T) {
	decoded, ok := DecodeLog(validLog())
	if !ok {
		t.Fatal("Expected a well-formed log to decode")
	}

	if decoded.From != common.HexToAddress(fromAddr) {
		t.Errorf("Expected from %s, got %s", fromAddr, decoded.From.Hex())
	}
	if decoded.To != common.HexToAddress(toAddr) {
		t.Errorf("Expected to %s, got %s", toAddr, decoded.To.Hex())
	}
	if decoded.BlockNumber != 1000 {
		t.Errorf("Expected block number 1000, got %d", decoded.BlockNumber)
	}
	if decoded.LogIndex != 5 {
		t.Errorf("Expected log index 5, got %d", decoded.LogIndex)
	}
	if decoded.TxHash != "0xtx1" {
		t.Errorf("Expected tx hash 0xtx1, got %s", decoded.TxHash)
	}

	want := new(big.Int)
	want.SetString("de0b6b3a7640000", 16)
	if decoded.RawAmount.Cmp(want) != 0 {
		t.Errorf("Expected raw amount 10^18, got %s", decoded.RawAmount)
	}
}

func TestDecodeLog_TooFewTopics(t *testing.T) {
	log := validLog()
	log.Topics = log.Topics[:2]

	if _, ok := DecodeLog(log); ok {
		t.Error("Expected a log with two topics to be rejected")
	}
}

func TestDecodeLog_ShortTopic(t *testing.T) {
	log := validLog()
	log.Topics[1] = "0xabcd"

	if _, ok := DecodeLog(log); ok {
		t.Error("Expected a short indexed topic to be rejected")
	}
}

func TestDecodeLog_MalformedBlockNumber(t *testing.T) {
	log := validLog()
	log.BlockNumber = "0xzz"

	if _, ok := DecodeLog(log); ok {
		t.Error("Expected an unparsable block number to be rejected")
	}
}

func TestDecodeLog_MalformedLogIndexDefaultsToZero(t *testing.T) {
	log := validLog()
	log.LogIndex = ""

	decoded, ok := DecodeLog(log)
	if !ok {
		t.Fatal("Expected the log to decode despite a missing log index")
	}
	if decoded.LogIndex != 0 {
		t.Errorf("Expected log index 0, got %d", decoded.LogIndex)
	}
}

func TestDecodeLog_MalformedAmountDecodesToZero(t *testing.T) {
	log := validLog()
	log.Data = "0xnothex"

	decoded, ok := DecodeLog(log)
	if !ok {
		t.Fatal("Expected the log to decode despite malformed data")
	}
	if decoded.RawAmount.Sign() != 0 {
		t.Errorf("Expected zero amount, got %s", decoded.RawAmount)
	}
}

func TestDecodeLog_EmptyDataDecodesToZero(t *testing.T) {
	log := validLog()
	log.Data = "0x"

	decoded, ok := DecodeLog(log)
	if !ok {
		t.Fatal("Expected the log to decode despite empty data")
	}
	if decoded.RawAmount.Sign() != 0 {
		t.Errorf("Expected zero amount, got %s", decoded.RawAmount)
	}
}

func TestScaleAmount(t *testing.T) {
	raw := new(big.Int)
	raw.SetString("de0b6b3a7640000", 16) // 10^18

	scaled := ScaleAmount(raw, 18)
	if scaled.String() != "1" {
		t.Errorf("Expected 1 token after 18-decimal scaling, got %s", scaled.String())
	}

	half := big.NewInt(500000000000000000)
	if got := ScaleAmount(half, 18).String(); got != "0.5" {
		t.Errorf("Expected 0.5, got %s", got)
	}

	if got := ScaleAmount(nil, 18); !got.IsZero() {
		t.Errorf("Expected zero for nil amount, got %s", got)
	}
}
