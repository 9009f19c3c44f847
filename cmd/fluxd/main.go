package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"FluxLedger/internal/config"
	"FluxLedger/internal/engine"
	"FluxLedger/internal/ledger"
	"FluxLedger/internal/oracle"
	"FluxLedger/internal/pool"
	"FluxLedger/internal/recorder"
	"FluxLedger/internal/scheduler"
	"FluxLedger/internal/server"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] FluxLedger starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init ledger with seed accounts
	lgr := ledger.New()
	for _, seed := range cfg.Seed.Accounts {
		if err := lgr.CreateAccount(seed.Name, seed.Stable); err != nil {
			log.Fatalf("[FATAL] seed account %s: %v", seed.Name, err)
		}
	}
	log.Printf("[INFO] seeded %d accounts", len(cfg.Seed.Accounts))

	// Init engine; set the oracle rate so the config singleton exists with
	// the configured value before the first conversion.
	eng := engine.New(lgr, rec)
	eng.SetOracleRate(cfg.Oracle.StaticRate, "DEFAULT")

	// Init pool manager
	pools := pool.NewManager(lgr, cfg.Economy.FeeRate, rec)

	// Init oracle fetcher
	var fetcher oracle.Fetcher
	if cfg.Oracle.BaseURL != "" {
		fetcher = oracle.NewRESTFetcher(cfg.Oracle.BaseURL, cfg.Oracle.APIKey, cfg.Proxy)
	} else {
		fetcher = &oracle.StaticFetcher{Rate: cfg.Oracle.StaticRate}
	}
	log.Printf("[INFO] oracle source: %s", fetcher.Name())

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, lgr, eng, pools, fetcher, cfg.Oracle.Pair, cfg.Economy.YieldAPY, rec)
	if err := sched.RegisterAll(cfg.Schedule.YieldCron, cfg.Schedule.OracleCron, cfg.Schedule.SnapshotCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: accrue yield immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing yield accrual now")
		go sched.RunYieldNow()
	}

	// Init HTTP server
	srv := server.New(cfg.Server.Addr, lgr, eng, pools)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	log.Println("[INFO] FluxLedger is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal or server failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case err := <-errCh:
		if err != nil {
			log.Printf("[ERROR] http server: %v", err)
		}
	}

	cancel()
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	log.Println("[INFO] FluxLedger stopped")
}
