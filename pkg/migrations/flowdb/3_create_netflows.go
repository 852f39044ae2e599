package flowdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/chainsafe/netflow-indexer/pkg/flowstore"
	mghelper "github.com/chainsafe/netflow-indexer/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating netflows table...")
		return mghelper.CreateSchema(ctx, db, &flowstore.NetFlowDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping netflows table...")
		return mghelper.DropTables(ctx, db, &flowstore.NetFlowDao{})
	})
}
