package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"statforest/internal/models"
)

// WriteTuningCSV writes one row per grid combination in the order given, which for a
// TuningReport is best first.
func WriteTuningCSV(path string, results []models.TuningResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	header := []string{
		"rank", "index", "n_estimators", "max_depth", "min_samples_split", "min_samples_leaf",
		"max_features", "random_seed", "train_r2", "test_r2", "test_rmse", "test_mae",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, r := range results {
		p := r.Params
		rec := []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(r.Index),
			strconv.Itoa(p.NEstimators),
			strconv.Itoa(p.MaxDepth),
			strconv.Itoa(p.MinSamplesSplit),
			strconv.Itoa(p.MinSamplesLeaf),
			string(p.MaxFeatures),
			strconv.FormatInt(p.RandomSeed, 10),
			formatR2(r.TrainMetrics),
			formatR2(r.TestMetrics),
			fmt.Sprintf("%.6f", r.TestMetrics.RMSE),
			fmt.Sprintf("%.6f", r.TestMetrics.MAE),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// PlotImportance draws a bar per feature in the order given.
func PlotImportance(path string, scores []models.FeatureScore) error {
	if len(scores) == 0 {
		return fmt.Errorf("no importance scores to plot")
	}
	values := make(plotter.Values, len(scores))
	names := make([]string, len(scores))
	for i, s := range scores {
		values[i] = s.Score
		names[i] = s.Feature
	}
	p := plot.New()
	p.Title.Text = "Feature importance"
	p.Y.Label.Text = "Share of split weight"
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return err
	}
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
