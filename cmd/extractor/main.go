// Command extractor imports bank and credit-card statement PDFs: each file is
// rasterized, OCRed, parsed into transactions and stored. It can also run as
// a long-lived worker that periodically retries unfinished documents.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/Jameshuff91/budget-planner/pkg/config"
	"github.com/Jameshuff91/budget-planner/pkg/cron"
	"github.com/Jameshuff91/budget-planner/pkg/money"
)

func main() {
	var (
		rulesPath    = flag.String("rules", "", "path to a JSON file of category rules (defaults to the database preference)")
		reprocess    = flag.Bool("reprocess", false, "re-run extraction over stored documents that have not completed")
		cronSpec     = flag.String("cron", "", "stay running and reprocess on this cron schedule, e.g. \"0 3 * * *\"")
		showProgress = flag.Bool("progress", true, "print per-page progress while processing")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger, *rulesPath, *reprocess, *cronSpec, *showProgress, flag.Args()); err != nil {
		logger.Error("extractor failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, rulesPath string, reprocess bool, cronSpec string, showProgress bool, files []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := InitDependencies(ctx, cfg, rulesPath, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	for _, path := range files {
		if err := processFile(ctx, deps, path, showProgress); err != nil {
			// Per-file failures are already recorded on the document; keep
			// going so one bad statement does not block the rest.
			logger.Error("file failed", slog.String("file", path), slog.Any("error", err))
		}
	}

	if reprocess {
		if err := deps.Pipeline.ReprocessAll(ctx); err != nil {
			return fmt.Errorf("reprocess: %w", err)
		}
	}

	if cronSpec != "" {
		scheduler := cron.NewScheduler(deps.Pipeline, cronSpec, logger)
		if err := scheduler.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		logger.Info("waiting for scheduled work, ctrl-c to exit")
		<-ctx.Done()
		<-scheduler.Stop().Done()
	}

	return nil
}

func processFile(ctx context.Context, deps *Dependencies, path string, showProgress bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var onProgress func(page, total int)
	if showProgress {
		name := filepath.Base(path)
		onProgress = func(page, total int) {
			fmt.Printf("%s: page %d/%d\n", name, page, total)
		}
	}

	txs, err := deps.Pipeline.ProcessDocument(ctx, filepath.Base(path), content, onProgress)
	if err != nil {
		return err
	}

	net := decimal.Zero
	for _, tx := range txs {
		net = net.Add(tx.SignedAmount())
		deps.Logger.Debug("extracted",
			slog.String("date", tx.Date.Format("2006-01-02")),
			slog.String("amount", tx.DisplayAmount()),
			slog.String("category", tx.Category),
			slog.String("description", tx.Description))
	}

	deps.Logger.Info("imported",
		slog.String("file", filepath.Base(path)),
		slog.Int("transactions", len(txs)),
		slog.String("net", money.NewFromDecimal(net, money.USD).Display()))
	return nil
}
