package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"PriceBand/internal/bounds"
	"PriceBand/internal/config"
	"PriceBand/internal/engine"
	"PriceBand/internal/export"
	"PriceBand/internal/scheduler"
	"PriceBand/internal/source"
	"PriceBand/internal/store"
	"PriceBand/internal/volatility"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] PriceBand starting...")

	var (
		flagConfig    = flag.String("config", "", "config file path (default configs/config.yaml)")
		flagInput     = flag.String("input", "", "input CSV file or directory")
		flagCodes     = flag.String("code", engine.AllSecurities, "security code, comma-separated list, or ALL")
		flagOpen      = flag.Float64("open", 0, "today's opening price (single-security runs)")
		flagOpenTable = flag.String("open-table", "", "CSV table mapping security id to opening price")
		flagOut       = flag.String("out", "", "output directory")
		flagWatch     = flag.Bool("watch", false, "keep running and recompute on the configured cron schedule")
	)
	flag.Parse()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	if *flagConfig != "" {
		cfgPath = *flagConfig
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if *flagInput != "" {
		cfg.Input.Path = *flagInput
	}
	if *flagOpenTable != "" {
		cfg.Input.OpenTable = *flagOpenTable
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	if cfg.Input.Path == "" {
		log.Fatal("[FATAL] no input: set -input or input.path in config")
	}

	// Resolve opening prices: a lookup table for batches, a literal otherwise.
	var opens source.OpenPrices
	switch {
	case cfg.Input.OpenTable != "":
		table, err := source.LoadOpenTable(cfg.Input.OpenTable)
		if err != nil {
			log.Fatalf("[FATAL] load open table: %v", err)
		}
		opens = table
	case *flagOpen > 0:
		opens = source.LiteralOpen(*flagOpen)
	default:
		log.Fatal("[FATAL] no opening price: set -open or -open-table")
	}

	sess, err := cfg.TradingSession()
	if err != nil {
		log.Fatalf("[FATAL] session config: %v", err)
	}

	loader := source.NewCSVLoader(cfg.Input.Path)
	log.Printf("[INFO] data source: %s (%s)", loader.Name(), cfg.Input.Path)

	eng := engine.New(loader, opens, engine.Options{
		Session:    sess,
		WindowSize: cfg.Engine.WindowSize,
		AllowShort: cfg.Engine.AllowShortWindow,
		Divisor:    volatility.DivisorPolicy(cfg.Engine.DivisorPolicy),
		NoData:     bounds.NoDataPolicy(cfg.Engine.NoDataPolicy),
		Workers:    cfg.Engine.Workers,
	})
	writer := export.NewCSVWriter(cfg.Output.Dir, *cfg.Output.Precision)

	// Init recorder
	var rec store.Recorder = store.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		if sr, err := store.NewSQLiteRecorder(cfg.Database.SQLitePath); err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		} else {
			rec = sr
		}
	}

	codes := splitCodes(*flagCodes)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, eng, writer, rec, codes, cfg.Engine.WindowSize)

	if !*flagWatch {
		results := sched.RunNow()
		rec.Close()
		os.Exit(exitCode(len(results), countFailed(results)))
	}

	// Watch mode: recompute on the cron schedule until interrupted.
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing batch now")
		go sched.RunNow()
	}

	log.Println("[INFO] PriceBand is running. Press Ctrl+C to stop.")
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	rec.Close()
	log.Println("[INFO] PriceBand stopped")
}

func splitCodes(s string) []string {
	var codes []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

func countFailed(results []engine.Result) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	return failed
}

// exitCode is non-zero only when nothing succeeded: per-task failures are
// reported in the summary but do not fail the whole batch.
func exitCode(total, failed int) int {
	if total == 0 || failed == total {
		return 1
	}
	return 0
}
