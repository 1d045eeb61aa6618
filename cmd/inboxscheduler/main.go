package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"InboxScheduler/internal/app"
	"InboxScheduler/internal/config"
	"InboxScheduler/internal/logging"
	"InboxScheduler/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	maxMessages := flag.Int("max", cfg.Run.MaxMessages, "maximum messages to scan in one run")
	timezone := flag.String("tz", cfg.Run.Timezone, "target timezone for created events")
	lookbackDays := flag.Int("lookback-days", cfg.Run.LookbackDays, "only consider messages received in the last N days (0 = no bound)")
	ignoreState := flag.Bool("ignore-state", false, "start from an empty ledger (cold backfill)")
	dryRun := flag.Bool("dry-run", false, "log intended events without creating them")
	flag.Parse()

	cfg.Run.MaxMessages = *maxMessages
	cfg.Run.LookbackDays = *lookbackDays
	if *timezone != cfg.Run.Timezone {
		cfg.Run.Timezone = *timezone
		cfg = config.Rebind(cfg)
	}

	logger := logging.New(cfg.Logging.Level)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	summary, err := application.Run(ctx, usecase.Options{
		Max:          cfg.Run.MaxMessages,
		LookbackDays: cfg.Run.LookbackDays,
		DryRun:       *dryRun,
		IgnoreState:  *ignoreState,
	})
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	summary.StatePath = cfg.State.StatePath
	summary.AuditPath = cfg.State.AuditPath
	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))
}
