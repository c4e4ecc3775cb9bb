package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kanaan7/NutritionTracker/internal"
	"github.com/Kanaan7/NutritionTracker/internal/config"
	"github.com/Kanaan7/NutritionTracker/internal/extraction/openai"
	"github.com/Kanaan7/NutritionTracker/internal/service"
	"github.com/Kanaan7/NutritionTracker/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:          "nutritiontracker",
	Short:        "Log meals in plain text and track nutrient totals",
	SilenceUsage: true,
}

// deps holds everything a command needs. Close releases the store and
// flushes the logger.
type deps struct {
	cfg     *config.Config
	logger  *internal.ZapLogger
	store   storage.Store
	entries *service.EntryService
	goals   *service.GoalService
}

func (d *deps) Close() {
	if err := d.store.Close(); err != nil {
		d.logger.Warnf("failed to close storage: %v", err)
	}
	_ = d.logger.Sync()
}

func wire() (*deps, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := storage.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	extractor := openai.New(openai.Options{
		BaseURL:     cfg.ExtractionBaseURL,
		APIKey:      cfg.ExtractionAPIKey,
		Model:       cfg.ExtractionModel,
		Temperature: cfg.ExtractionTemperature,
		Timeout:     cfg.ExtractionTimeout,
	}, logger)

	goals := service.NewGoalService(store, logger)
	entries := service.NewEntryService(store, extractor, goals, service.NewDayResolver(cfg.DayCutoffHour, loc), cfg.ExtractionTimeout, logger)

	return &deps{cfg: cfg, logger: logger, store: store, entries: entries, goals: goals}, nil
}

func init() {
	rootCmd.AddCommand(serveCmd(), logCmd(), historyCmd(), summaryCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
