package main

import (
	"context"
	"errors"
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
	dataPath := flag.String("data", "", "Game-log CSV (overrides data.path)")
	points := flag.Int("points", 0, "Number of curve points (overrides report.curve_points)")
	useLog := flag.Bool("log", true, "Space training sizes geometrically")
	stored := flag.Bool("stored", true, "Use the stored model's hyperparameters when one exists")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if *dataPath != "" {
		cfg.Data.Path = *dataPath
	}
	if *points > 0 {
		cfg.Report.CurvePoints = *points
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	params := models.DefaultHyperparameters()
	if *stored {
		params = storedParams(ctx, logger, cfg, params)
	}

	logs, err := data.LoadGameLogs(cfg.Data.Path)
	if err != nil {
		logger.Fatal("Failed to load game logs", zap.Error(err))
	}
	d, err := features.Dataset(logs)
	if err != nil {
		logger.Fatal("Failed to build dataset", zap.Error(err))
	}
	train, test, _, err := models.SplitAndStandardize(d, cfg.Split.TestFraction, models.NewRandomSource(cfg.Split.Seed))
	if err != nil {
		logger.Fatal("Failed to split dataset", zap.Error(err))
	}

	sizes := report.CurveSizes(train.Len(), cfg.Report.CurvePoints, cfg.Report.CurveMin, *useLog)
	logger.Info("Computing learning curve", zap.Ints("sizes", sizes), zap.Any("params", params))
	curve, err := report.LearningCurve(ctx, logger, train, test, features.Names, params, sizes, models.WithWorkers(cfg.Workers.Trees))
	if err != nil {
		logger.Fatal("Learning curve failed", zap.Error(err))
	}

	csvPath := filepath.Join(cfg.Report.Dir, "learning_curve.csv")
	if err := report.WriteCurveCSV(csvPath, curve); err != nil {
		logger.Error("Failed to save curve CSV", zap.Error(err))
	} else {
		logger.Info("Curve saved", zap.String("path", csvPath))
	}
	for _, c := range []struct {
		file   string
		metric report.CurveMetric
	}{
		{"learning_curve_r2.png", report.CurveR2},
		{"learning_curve_rmse.png", report.CurveRMSE},
	} {
		path := filepath.Join(cfg.Report.Dir, c.file)
		if err := report.PlotCurve(path, curve, c.metric); err != nil {
			logger.Error("Failed to save curve chart", zap.String("path", path), zap.Error(err))
			continue
		}
		logger.Info("Chart saved", zap.String("path", path))
	}
}

// storedParams returns the hyperparameters of the configured model when the store has it.
func storedParams(ctx context.Context, logger *zap.Logger, cfg config.Config, fallback models.Hyperparameters) models.Hyperparameters {
	st, closeStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		logger.Warn("Model store unavailable, using default hyperparameters", zap.Error(err))
		return fallback
	}
	defer closeStore(context.Background())
	rec, err := st.Load(ctx, cfg.Model.Name)
	if errors.Is(err, store.ErrNotFound) {
		logger.Info("No stored model, using default hyperparameters", zap.String("name", cfg.Model.Name))
		return fallback
	}
	if err != nil {
		logger.Warn("Failed to load stored model, using default hyperparameters", zap.Error(err))
		return fallback
	}
	return rec.Hyperparameters
}
