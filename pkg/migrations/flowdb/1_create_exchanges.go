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
		log.Println("creating exchanges table...")
		return mghelper.CreateSchema(ctx, db, &flowstore.ExchangeDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping exchanges table...")
		return mghelper.DropTables(ctx, db, &flowstore.ExchangeDao{})
	})
}
