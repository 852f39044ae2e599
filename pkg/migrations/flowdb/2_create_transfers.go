package flowdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/chainsafe/netflow-indexer/pkg/flowstore"
	mghelper "github.com/chainsafe/netflow-indexer/pkg/pgutil/migrations"
)

// TransferIdentityIndex backs the ON CONFLICT clause of transfer upserts.
const TransferIdentityIndex = "idx_transfers_identity"

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating transfers table...")
		if err := mghelper.CreateSchema(ctx, db, &flowstore.TransferDao{}); err != nil {
			return err
		}
		if err := mghelper.CreateModelCompositeUniqueIndex(ctx, db, &flowstore.TransferDao{},
			TransferIdentityIndex, "tx_hash", "log_index", "token_address"); err != nil {
			return err
		}
		// Query paths: per-token listings ordered by block number
		return mghelper.CreateModelIndexes(ctx, db, &flowstore.TransferDao{}, "token_address", "block_number")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping transfers table...")
		return mghelper.DropTables(ctx, db, &flowstore.TransferDao{})
	})
}
