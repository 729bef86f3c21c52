package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"engagehub/internal/chain"
	"engagehub/internal/config"
	"engagehub/internal/db"
	"engagehub/internal/hub"
	"engagehub/internal/jobs"
	"engagehub/internal/metrics"
	"engagehub/internal/server"
	"engagehub/internal/storage"
	"engagehub/internal/supports"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	networks, err := config.LoadYAMLConfig(cfg.NetworksFile)
	if err != nil {
		log.Fatalf("Failed to load networks file: %v", err)
	}

	// Support progress storage
	var (
		kv       storage.KV
		archive  chain.Archive
		database *db.DB
	)
	switch cfg.StorageBackend {
	case config.StorageMemory:
		kv = storage.NewMemory()
	case config.StorageRedis:
		r, err := storage.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer r.Close()
		kv = r
	case config.StoragePostgres:
		database, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations completed successfully")
		kv = database
		archive = database
	default:
		log.Fatalf("Unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	log.Printf("Support storage: %s", cfg.StorageBackend)

	// Link source
	var (
		source  chain.LinkSource
		network config.NetworkConfig
	)
	if cfg.IsOffline() {
		log.Printf("Chain disabled, serving %d seed links", len(networks.SeedLinks))
		source = chain.NewBroadcaster(chain.SeedLinks(networks.SeedLinks))
	} else {
		network, err = networks.Resolve(cfg)
		if err != nil {
			log.Fatalf("Failed to resolve network: %v", err)
		}
		eth, err := chain.NewEthSource(ctx, chain.EthConfig{
			RPCURL:     network.RPCURL,
			WSURL:      network.WSURL,
			Contract:   network.LinkContract,
			Lookback:   cfg.Lookback,
			StartBlock: network.StartBlock,
		})
		if err != nil {
			log.Fatalf("Failed to connect to %s: %v", network.Name, err)
		}
		defer eth.Close()
		log.Printf("Reading LinkShared events from %s on %s", network.LinkContract, network.Name)
		source = eth
	}
	if archive != nil {
		source = chain.WithArchive(source, archive)
	}

	// Feed
	h := hub.New(source, supports.NewStore(kv), hub.Options{
		BatchSize:      cfg.BatchSize,
		RefreshTimeout: cfg.FeedRefreshTimeout,
	})
	if archive != nil {
		if err := h.Warm(ctx, archive); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
	metrics.Init(h.Stats)

	if err := h.Refresh(ctx); err != nil {
		log.Printf("Warning: initial feed load failed: %v", err)
	}

	go jobs.NewFeedRefresher(h, cfg.FeedRefreshInterval).Start(ctx)
	go jobs.NewLiveUpdates(source, h, cfg.LiveRebindDelay).Start(ctx)

	// HTTP
	srv := server.New(cfg)
	srv.RegisterRoutes(server.Deps{
		Hub:     h,
		Storage: kv,
		TxURL:   network.TxURL,
	})

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server started on %s", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
