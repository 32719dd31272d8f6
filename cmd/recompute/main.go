package main

// 手动触发年假余额重算，结果以 JSON 输出到 stdout

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"HRCore/internal/queue"
	"HRCore/internal/service"
	"HRCore/pkg/logger"
	"HRCore/storage"
)

func main() {
	year := flag.Int("year", 0, "year to recompute (defaults to the current year)")
	employeeID := flag.Int64("employee", 0, "recompute a single employee")
	activeOnly := flag.Bool("active-only", true, "skip inactive employees")
	dryRun := flag.Bool("dry-run", false, "compute without writing balances")
	flag.Parse()

	os.Exit(run(*year, *employeeID, *activeOnly, *dryRun))
}

func run(year int, employeeID int64, activeOnly, dryRun bool) int {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 只需要数据库与锁，不连接 MQ
	if err := storage.Init(storage.Database, storage.Redis); err != nil {
		logger.Logger.Error("Failed to initialize storage", zap.Error(err))
		return 1
	}
	defer storage.Close()

	opts := service.RecomputeOptions{
		Trigger:    queue.ReasonManual,
		Year:       year,
		ActiveOnly: activeOnly,
		DryRun:     dryRun,
	}
	if employeeID > 0 {
		opts.EmployeeID = &employeeID
	}

	res, err := service.Balance().Recompute(ctx, opts)
	if err != nil {
		logger.Logger.Error("Balance recompute failed", zap.Error(err))
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Logger.Error("Failed to write result", zap.Error(err))
		return 1
	}

	if len(res.Failures) > 0 {
		logger.Logger.Warn("Some employees failed to recompute", zap.Int("failed", len(res.Failures)))
		return 2
	}
	return 0
}
