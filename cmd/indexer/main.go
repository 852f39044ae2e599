package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"

	apphttp "github.com/chainsafe/netflow-indexer/pkg/app/http"
	"github.com/chainsafe/netflow-indexer/pkg/aggregator"
	"github.com/chainsafe/netflow-indexer/pkg/config"
	"github.com/chainsafe/netflow-indexer/pkg/ethrpc"
	"github.com/chainsafe/netflow-indexer/pkg/flowapi"
	"github.com/chainsafe/netflow-indexer/pkg/flowstore"
	"github.com/chainsafe/netflow-indexer/pkg/indexer"
	"github.com/chainsafe/netflow-indexer/pkg/migrations/flowdb"
	"github.com/chainsafe/netflow-indexer/pkg/pgutil"
	"github.com/chainsafe/netflow-indexer/pkg/transfer"
	"github.com/chainsafe/netflow-indexer/pkg/watch"
)

var (
	configPath    = flag.String("config", "config.yaml", "Path to configuration file")
	watchlistPath = flag.String("watchlist", "", "Path to watchlist file (overrides config)")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting ERC-20 Exchange NetFlow Indexer")

	// Load the watchlist
	if *watchlistPath != "" {
		cfg.Watch.WatchlistPath = *watchlistPath
	}
	watchlist, err := watch.Load(cfg.Watch.WatchlistPath)
	if err != nil {
		logger.Fatal("Failed to load watchlist", zap.Error(err))
	}
	logger.Info("Watchlist loaded",
		zap.Int("exchanges", len(watchlist.Exchanges)),
		zap.Int("tokens", len(watchlist.Tokens)))

	// Initialize database
	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bring the schema up to date before touching any table
	migrator := migrate.NewMigrator(db, flowdb.Migrations)
	if err := migrator.Init(ctx); err != nil {
		logger.Fatal("Failed to initialize migrations", zap.Error(err))
	}
	if group, err := migrator.Migrate(ctx); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	} else if !group.IsZero() {
		logger.Info("Database migrated", zap.String("group", group.String()))
	}

	store := flowstore.NewStore(db)

	// Persist watched-wallet labels for external tooling
	if err := store.SeedExchanges(ctx, watchlist.Exchanges); err != nil {
		logger.Fatal("Failed to seed exchanges", zap.Error(err))
	}

	// Chain RPC client
	client := ethrpc.NewClient(cfg.Ethereum.RPCURL, logger.Named("ethrpc"),
		ethrpc.WithBlockNumberTimeout(cfg.Ethereum.BlockNumberTimeout),
		ethrpc.WithGetLogsTimeout(cfg.Ethereum.GetLogsTimeout),
	)

	// Indexing engine: sole writer to the store
	agg := aggregator.New(store, logger.Named("aggregator"))
	watched := transfer.NewWatchedSet(watchlist.Addresses())
	engine := indexer.NewEngine(&cfg.Ethereum, client, store, agg, watched, watchlist.Tokens, logger.Named("indexer"))
	engine.Start(ctx)
	defer engine.Stop()

	// HTTP server for the read API and metrics
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint (liveness)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Readiness endpoint - returns 503 until the startup backfill finished
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if !engine.IsReady() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("NOT_READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	})

	// Metrics endpoint
	if cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
		logger.Info("Metrics enabled")
	}

	// Read API
	svc := flowapi.NewLog(flowapi.NewService(store, logger.Named("flowapi")), logger.Named("flowapi"))
	flowapi.RegisterRoutes(r, svc, logger.Named("flowapi"))

	if err := apphttp.ServeAndWait(ctx, r, logger, &cfg.Server, cfg.Shutdown.Timeout); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Indexer stopped")
}
