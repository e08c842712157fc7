package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"statforest/internal/config"
	"statforest/internal/data"
	"statforest/internal/features"
	"statforest/internal/models"
	"statforest/internal/report"
	"statforest/internal/store"
	"statforest/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	cfgPath := flag.String("config", "", "YAML config file (defaults apply when empty)")
	regen := flag.Bool("regen", true, "Regenerate the synthetic game-log dataset")
	n := flag.Int("n", 20000, "Number of synthetic rows")
	out := flag.String("out", "data/game_logs.csv", "Game-log CSV path")
	name := flag.String("model", "assists", "Name the trained model is stored under")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "regen":
			cfg.Data.Regenerate = *regen
		case "n":
			cfg.Data.Rows = *n
		case "out":
			cfg.Data.Path = *out
		case "model":
			cfg.Model.Name = *name
		}
	})
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Data.Regenerate {
		logger.Info("Generating synthetic game logs", zap.Int("n", cfg.Data.Rows), zap.String("out", cfg.Data.Path))
		if err := data.GenerateSyntheticGameLogs(cfg.Data.Rows, cfg.Data.Seed, cfg.Data.Path); err != nil {
			logger.Fatal("Failed to generate dataset", zap.Error(err))
		}
	}
	logs, err := data.LoadGameLogs(cfg.Data.Path)
	if err != nil {
		logger.Fatal("Failed to load game logs", zap.Error(err))
	}
	d, err := features.Dataset(logs)
	if err != nil {
		logger.Fatal("Failed to build dataset", zap.Error(err))
	}
	train, test, scaler, err := models.SplitAndStandardize(d, cfg.Split.TestFraction, models.NewRandomSource(cfg.Split.Seed))
	if err != nil {
		logger.Fatal("Failed to split dataset", zap.Error(err))
	}
	logger.Info("Dataset ready",
		zap.Int("rows", d.Len()),
		zap.Int("features", d.NumFeatures()),
		zap.Int("train", train.Len()),
		zap.Int("test", test.Len()),
		zap.Int("combinations", cfg.Grid.Size()),
	)

	tuner := &models.Tuner{Logger: logger, Workers: cfg.Workers.Grid, TreeWorkers: cfg.Workers.Trees}
	tuned, err := tuner.Tune(ctx, train, test, features.Names, cfg.Grid)
	if err != nil {
		logger.Fatal("Grid search failed", zap.Error(err))
	}
	best := tuned.Results[0]
	if best.TestMetrics.R2Undefined {
		logger.Warn("Test R² is undefined for every combination; keeping the first one")
	}

	pipeline := &models.Pipeline{Scaler: scaler, Forest: tuned.Best}
	rec := store.NewModelRecord(cfg.Model.Name, pipeline)
	rec.TrainMetrics = best.TrainMetrics
	rec.TestMetrics = best.TestMetrics
	rec.Tuning = tuned.Results

	stats := tuned.Best.Stats()
	logger.Info("Best model",
		zap.Any("params", tuned.BestParams),
		zap.Float64("train_r2", best.TrainMetrics.R2),
		zap.Float64("test_r2", best.TestMetrics.R2),
		zap.Float64("test_rmse", best.TestMetrics.RMSE),
		zap.Float64("test_mae", best.TestMetrics.MAE),
		zap.Int("nodes", stats.Nodes),
		zap.Int("max_depth", stats.MaxDepth),
	)
	for i, fs := range rec.Importance {
		if i == 5 {
			break
		}
		logger.Info("Feature importance", zap.Int("rank", i+1), zap.String("feature", fs.Feature), zap.Float64("score", fs.Score))
	}

	tuningPath := filepath.Join(cfg.Report.Dir, "tuning.csv")
	if err := report.WriteTuningCSV(tuningPath, tuned.Results); err != nil {
		logger.Error("Failed to write tuning report", zap.Error(err))
	} else {
		logger.Info("Tuning report saved", zap.String("path", tuningPath))
	}
	importancePath := filepath.Join(cfg.Report.Dir, "importance.png")
	if err := report.PlotImportance(importancePath, rec.Importance); err != nil {
		logger.Error("Failed to plot importance", zap.Error(err))
	} else {
		logger.Info("Importance chart saved", zap.String("path", importancePath))
	}

	st, closeStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		logger.Fatal("Failed to open model store", zap.Error(err))
	}
	defer closeStore(context.Background())
	if err := st.Save(ctx, rec); err != nil {
		logger.Fatal("Failed to save model", zap.Error(err))
	}
	logger.Info("Model saved", zap.String("name", rec.Name), zap.String("store", cfg.Store.Kind))
}
