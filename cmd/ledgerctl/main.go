package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	financeapp "github.com/shopman/backend/internal/application/finance"
	"github.com/shopman/backend/internal/infrastructure/config"
	"github.com/shopman/backend/internal/infrastructure/logger"
	"github.com/shopman/backend/internal/infrastructure/persistence"
	"github.com/shopman/backend/internal/infrastructure/strategy/allocation"
	"go.uber.org/zap"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command, rest := args[0], args[1:]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	db, err := persistence.Open(&cfg.Database,
		logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel), cfg.Database.SlowThreshold))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scope := persistence.NewGormTransactionScope(db.DB)

	switch command {
	case "recompute-dues":
		credit := financeapp.NewCreditService(scope, allocation.NewFIFOAllocationStrategy(), log)
		changed, err := credit.RecomputeAllCustomerDues(ctx)
		if err != nil {
			log.Fatal("Recompute failed", zap.Int("changed_before_failure", len(changed)), zap.Error(err))
		}
		for _, r := range changed {
			log.Info("Customer due corrected",
				zap.String("customer_id", r.CustomerID.String()),
				zap.String("before", r.Before.String()),
				zap.String("after", r.After.String()),
			)
		}
		printJSON(changed)
	case "sweep-bills":
		fs := flag.NewFlagSet("sweep-bills", flag.ExitOnError)
		dryRun := fs.Bool("dry-run", false, "Report the bills that would change without saving")
		_ = fs.Parse(rest)

		bills := financeapp.NewBillService(scope, financeapp.NewBillLedger(cfg.Ledger.BillDueDays, log), log)
		res, err := bills.SweepOverdueBills(ctx, *dryRun)
		if err != nil {
			log.Fatal("Sweep failed", zap.Error(err))
		}
		log.Info("Sweep finished",
			zap.Bool("dry_run", res.DryRun),
			zap.Int("examined", res.Examined),
			zap.Int("changed", res.Changed),
		)
		printJSON(res)
	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func printUsage() {
	fmt.Println(`Shop ledger maintenance tool

Usage:
  ledgerctl [flags] <command> [arguments]

Commands:
  recompute-dues          Rebuild every customer's total due from sales and receipts
  sweep-bills [-dry-run]  Mark open supplier bills past their due date as overdue

Flags:
  -log-level string       Log level: debug, info, warn, error (default: info)

Reads the same configuration as the server (config.toml, .env, SHOP_* variables).`)
}
