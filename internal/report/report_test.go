package report

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"statforest/internal/models"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCurveSizes(t *testing.T) {
	tests := []struct {
		name                 string
		total, points, first int
		useLog               bool
		want                 []int
	}{
		{"linear", 1000, 5, 100, false, []int{100, 325, 550, 775, 1000}},
		{"log", 1000, 3, 10, true, []int{10, 100, 1000}},
		{"min above total", 3, 8, 200, false, []int{1, 2, 3}},
		{"single point widens to two", 50, 1, 10, false, []int{10, 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurveSizes(tt.total, tt.points, tt.first, tt.useLog))
		})
	}
	assert.Nil(t, CurveSizes(0, 4, 1, false))
}

func TestCurveSizesStrictlyIncreaseToTotal(t *testing.T) {
	for _, useLog := range []bool{false, true} {
		sizes := CurveSizes(20, 15, 1, useLog)
		require.NotEmpty(t, sizes)
		assert.Equal(t, 20, sizes[len(sizes)-1])
		for i := 1; i < len(sizes); i++ {
			assert.Greater(t, sizes[i], sizes[i-1], "log=%v sizes=%v", useLog, sizes)
		}
	}
}

func lineData(n int, offset float64) models.Dataset {
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		x := float64(i) + offset
		X[i] = []float64{x, float64(i % 3)}
		y[i] = 2 * x
	}
	return models.Dataset{X: X, Y: y}
}

func TestLearningCurve(t *testing.T) {
	train, test := lineData(120, 0), lineData(30, 0.5)
	params := models.DefaultHyperparameters()
	params.NEstimators = 4
	params.MaxDepth = 5
	sizes := []int{20, 60, 120}

	points, err := LearningCurve(context.Background(), zaptest.NewLogger(t), train, test, nil, params, sizes)
	require.NoError(t, err)
	require.Len(t, points, 3)
	for i, p := range points {
		assert.Equal(t, sizes[i], p.Size)
		assert.False(t, p.Test.R2Undefined)
		assert.GreaterOrEqual(t, p.Train.RMSE, 0.0)
	}

	_, err = LearningCurve(context.Background(), nil, train, test, nil, params, []int{121})
	assert.Error(t, err)
}

func TestWriteCurveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "curve.csv")
	points := []CurvePoint{
		{Size: 10, Train: models.Metrics{R2: 1, RMSE: 0}, Test: models.Metrics{R2Undefined: true, RMSE: 2.5, MAE: 2}},
		{Size: 20, Train: models.Metrics{R2: 0.9, RMSE: 1}, Test: models.Metrics{R2: 0.75, RMSE: 1.5, MAE: 1}},
	}
	require.NoError(t, WriteCurveCSV(path, points))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "size", rows[0][0])
	assert.Equal(t, []string{"10", "1.000000", "", "0.000000", "2.500000", "0.000000", "2.000000"}, rows[1])
	assert.Equal(t, "0.750000", rows[2][2])
}

func TestWriteTuningCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.csv")
	p := models.DefaultHyperparameters()
	results := []models.TuningResult{
		{Index: 3, Params: p, TestMetrics: models.Metrics{R2: 0.8, RMSE: 1, MAE: 0.5}, Score: 0.8},
		{Index: 0, Params: p, TestMetrics: models.Metrics{R2Undefined: true}},
	}
	require.NoError(t, WriteTuningCSV(path, results))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "3", "100", "10", "2", "1", "sqrt", "42"}, rows[1][:8])
	assert.Equal(t, "0.800000", rows[1][9])
	assert.Equal(t, "", rows[2][9])
}

func TestPlots(t *testing.T) {
	dir := t.TempDir()
	scores := []models.FeatureScore{{Feature: "avg_assists_last5", Score: 0.7}, {Feature: "usage_rate", Score: 0.3}}
	require.NoError(t, PlotImportance(filepath.Join(dir, "importance.png"), scores))
	assert.Error(t, PlotImportance(filepath.Join(dir, "none.png"), nil))

	points := []CurvePoint{
		{Size: 10, Train: models.Metrics{R2: 0.9, RMSE: 1}, Test: models.Metrics{R2: 0.5, RMSE: 2}},
		{Size: 20, Train: models.Metrics{R2: 0.8, RMSE: 1.2}, Test: models.Metrics{R2: 0.6, RMSE: 1.8}},
	}
	require.NoError(t, PlotCurve(filepath.Join(dir, "r2.png"), points, CurveR2))
	require.NoError(t, PlotCurve(filepath.Join(dir, "rmse.png"), points, CurveRMSE))
	assert.Error(t, PlotCurve(filepath.Join(dir, "x.png"), points, CurveMetric(9)))

	for _, name := range []string{"importance.png", "r2.png", "rmse.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}
