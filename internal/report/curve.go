package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"statforest/internal/models"
)

// CurvePoint is one learning-curve sample: a forest trained on the first Size training rows.
type CurvePoint struct {
	Size  int
	Train models.Metrics
	Test  models.Metrics
}

// CurveSizes interpolates points training sizes from first up to total, linearly or, with
// useLog, geometrically. Sizes that round to the same row count collapse into one, so the
// result is strictly increasing and always ends at total. A first above total starts the
// curve at half the rows instead.
func CurveSizes(total, points, first int, useLog bool) []int {
	if total <= 0 {
		return nil
	}
	points = max(points, 2)
	first = max(first, 1)
	if first > total {
		first = max(total/2, 1)
	}
	lo, hi := float64(first), float64(total)
	at := func(frac float64) float64 {
		if useLog {
			return lo * math.Pow(hi/lo, frac)
		}
		return lo + frac*(hi-lo)
	}
	sizes := make([]int, points)
	for i := range sizes {
		s := int(math.Round(at(float64(i) / float64(points-1))))
		sizes[i] = min(max(s, 1), total)
	}
	sizes[points-1] = total
	return slices.Compact(sizes)
}

// LearningCurve fits one forest per size on a prefix of train and scores it on that prefix
// and on the full test partition.
func LearningCurve(ctx context.Context, logger *zap.Logger, train, test models.Dataset, names []string, params models.Hyperparameters, sizes []int, opts ...models.FitOption) ([]CurvePoint, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	points := make([]CurvePoint, 0, len(sizes))
	idx := make([]int, train.Len())
	for i := range idx {
		idx[i] = i
	}
	for _, s := range sizes {
		if s < 1 || s > train.Len() {
			return nil, fmt.Errorf("curve size %d outside [1, %d]", s, train.Len())
		}
		sub := train.Subset(idx[:s])
		forest, err := models.FitForest(ctx, sub, names, params, opts...)
		if err != nil {
			return nil, err
		}
		trainM, err := models.Evaluate(forest, sub)
		if err != nil {
			return nil, err
		}
		testM, err := models.Evaluate(forest, test)
		if err != nil {
			return nil, err
		}
		logger.Info("curve point",
			zap.Int("size", s),
			zap.Float64("train_r2", trainM.R2),
			zap.Float64("test_r2", testM.R2),
			zap.Float64("test_rmse", testM.RMSE),
		)
		points = append(points, CurvePoint{Size: s, Train: trainM, Test: testM})
	}
	return points, nil
}

func WriteCurveCSV(path string, points []CurvePoint) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"size", "train_r2", "test_r2", "train_rmse", "test_rmse", "train_mae", "test_mae"}); err != nil {
		return err
	}
	for _, p := range points {
		rec := []string{
			strconv.Itoa(p.Size),
			formatR2(p.Train), formatR2(p.Test),
			fmt.Sprintf("%.6f", p.Train.RMSE), fmt.Sprintf("%.6f", p.Test.RMSE),
			fmt.Sprintf("%.6f", p.Train.MAE), fmt.Sprintf("%.6f", p.Test.MAE),
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

// formatR2 leaves undefined R² cells empty.
func formatR2(m models.Metrics) string {
	if m.R2Undefined {
		return ""
	}
	return fmt.Sprintf("%.6f", m.R2)
}

type CurveMetric int

const (
	CurveR2 CurveMetric = iota
	CurveRMSE
)

// PlotCurve draws the train and test series of one metric against training size.
func PlotCurve(path string, points []CurvePoint, metric CurveMetric) error {
	p := plot.New()
	p.Title.Text = "Learning curve"
	p.X.Label.Text = "Training rows"
	pick := func(m models.Metrics) float64 { return m.R2 }
	switch metric {
	case CurveR2:
		p.Y.Label.Text = "R²"
		p.Y.Max = 1
	case CurveRMSE:
		p.Y.Label.Text = "RMSE"
		p.Y.Min = 0
		pick = func(m models.Metrics) float64 { return m.RMSE }
	default:
		return fmt.Errorf("unknown curve metric %d", metric)
	}

	train := make(plotter.XYs, 0, len(points))
	test := make(plotter.XYs, 0, len(points))
	for _, pt := range points {
		if metric == CurveR2 && (pt.Train.R2Undefined || pt.Test.R2Undefined) {
			continue
		}
		train = append(train, plotter.XY{X: float64(pt.Size), Y: pick(pt.Train)})
		test = append(test, plotter.XY{X: float64(pt.Size), Y: pick(pt.Test)})
	}
	if len(train) == 0 {
		return fmt.Errorf("no curve points to plot")
	}
	if err := plotutil.AddLinePoints(p, "Train", train, "Test", test); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
