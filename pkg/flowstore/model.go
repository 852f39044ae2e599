package flowstore

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/chainsafe/netflow-indexer/pkg/transfer"
)

// TransferDao is a data access object that maps directly to the 'transfers'
// table in PostgreSQL. Logical identity is (tx_hash, log_index,
// token_address), enforced by a unique index; the surrogate id exists only
// because every table here carries one.
type TransferDao struct {
	bun.BaseModel `bun:"table:transfers,alias:t"`
	ID            int64           `bun:"id,pk,autoincrement"`
	TxHash        string          `bun:"tx_hash,notnull,type:varchar(66)"`
	LogIndex      int64           `bun:"log_index,notnull,use_zero"`
	TokenAddress  string          `bun:"token_address,notnull,type:varchar(42)"`
	BlockNumber   int64           `bun:"block_number,notnull,use_zero"`
	FromAddress   string          `bun:"from_address,notnull,type:varchar(42)"`
	ToAddress     string          `bun:"to_address,notnull,type:varchar(42)"`
	Amount        decimal.Decimal `bun:"amount,notnull,type:numeric(38,18)"`
	Direction     string          `bun:"direction,notnull,type:varchar(3)"`
	Timestamp     time.Time       `bun:"timestamp,nullzero,default:current_timestamp"`
}

// NetFlowDao is a data access object that maps directly to the 'netflows'
// table in PostgreSQL. One row per token, derived from transfers.
type NetFlowDao struct {
	bun.BaseModel `bun:"table:netflows,alias:nf"`
	TokenAddress  string          `bun:"token_address,pk,type:varchar(42)"`
	CumulativeNet decimal.Decimal `bun:"cumulative_net,notnull,type:numeric(38,18)"`
	LastBlock     int64           `bun:"last_block,notnull,use_zero"`
	UpdatedAt     time.Time       `bun:"updated_at,nullzero,default:current_timestamp"`
}

// ExchangeDao is a data access object that maps directly to the 'exchanges'
// table in PostgreSQL. Labels for watched wallets, kept for external
// tooling; the pipeline never reads this table.
type ExchangeDao struct {
	bun.BaseModel `bun:"table:exchanges,alias:e"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Address       string    `bun:"address,unique,notnull,type:varchar(42)"`
	Label         string    `bun:"label,notnull,type:varchar(255)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// toTransferDao converts a transfer.Transfer to TransferDao.
func toTransferDao(t *transfer.Transfer) TransferDao {
	return TransferDao{
		TxHash:       t.TxHash,
		LogIndex:     t.LogIndex,
		TokenAddress: t.TokenAddress,
		BlockNumber:  t.BlockNumber,
		FromAddress:  t.FromAddress,
		ToAddress:    t.ToAddress,
		Amount:       t.Amount,
		Direction:    string(t.Direction),
		Timestamp:    t.Timestamp,
	}
}

// toTransfer converts a TransferDao to transfer.Transfer.
func toTransfer(dao *TransferDao) *transfer.Transfer {
	return &transfer.Transfer{
		TxHash:       dao.TxHash,
		LogIndex:     dao.LogIndex,
		TokenAddress: dao.TokenAddress,
		BlockNumber:  dao.BlockNumber,
		FromAddress:  dao.FromAddress,
		ToAddress:    dao.ToAddress,
		Amount:       dao.Amount,
		Direction:    transfer.Direction(dao.Direction),
		Timestamp:    dao.Timestamp,
	}
}

// toNetFlow converts a NetFlowDao to transfer.NetFlow.
func toNetFlow(dao *NetFlowDao) *transfer.NetFlow {
	return &transfer.NetFlow{
		TokenAddress:  dao.TokenAddress,
		CumulativeNet: dao.CumulativeNet,
		LastBlock:     dao.LastBlock,
		UpdatedAt:     dao.UpdatedAt,
	}
}
