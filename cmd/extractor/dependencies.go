package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jameshuff91/budget-planner/internal/domain/categorization"
	"github.com/Jameshuff91/budget-planner/internal/domain/document"
	"github.com/Jameshuff91/budget-planner/internal/domain/extraction"
	"github.com/Jameshuff91/budget-planner/internal/domain/extraction/ocr"
	"github.com/Jameshuff91/budget-planner/internal/domain/extraction/preprocess"
	"github.com/Jameshuff91/budget-planner/internal/domain/extraction/raster"
	"github.com/Jameshuff91/budget-planner/internal/domain/transaction"
	"github.com/Jameshuff91/budget-planner/pkg/config"
	"github.com/Jameshuff91/budget-planner/pkg/db"
)

// Dependencies holds all application dependencies.
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	Documents    document.Repository
	Transactions transaction.Repository
	Pipeline     *extraction.Pipeline
}

// InitDependencies connects the database, runs migrations and wires the
// extraction pipeline.
func InitDependencies(ctx context.Context, cfg *config.Config, rulesPath string, logger *slog.Logger) (*Dependencies, error) {
	database, err := db.New(db.Config{
		DSN:             cfg.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	documents := document.NewPgRepository(database.Pool)
	transactions := transaction.NewPgRepository(database.Pool)

	var ruleStore categorization.RuleStore
	if rulesPath != "" {
		ruleStore = categorization.NewFileRuleStore(rulesPath, logger)
	} else {
		ruleStore = categorization.NewPgRuleStore(database.Pool, logger)
	}

	var suggester categorization.Suggester
	if cfg.Gemini.SmartCategorization {
		s, err := categorization.NewGeminiSuggester(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("init ai categorization: %w", err)
		}
		suggester = s
	}

	categorizer := categorization.NewCategorizer(ruleStore, suggester, cfg.Gemini.MinConfidence, logger)

	pipeline := extraction.New(extraction.Params{
		Rasterizer:   raster.NewPdftoppmRasterizer(cfg.OCR.PdftoppmBinary, cfg.OCR.RenderScale, logger),
		Engine:       ocr.NewTesseractEngine(cfg.OCR.TesseractBinary, cfg.OCR.Language, logger),
		Preprocessor: preprocess.New(cfg.Extraction.EnhancedPreprocessing, logger),
		Documents:    documents,
		Transactions: transactions,
		Categorizer:  categorizer,
		Extraction:   cfg.Extraction,
		Logger:       logger,
	})

	logger.Info("all dependencies initialized")
	return &Dependencies{
		Config:       cfg,
		DB:           database,
		Logger:       logger,
		Documents:    documents,
		Transactions: transactions,
		Pipeline:     pipeline,
	}, nil
}

// Close releases held resources.
func (d *Dependencies) Close() {
	d.DB.Close()
}
