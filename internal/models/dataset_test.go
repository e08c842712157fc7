package models

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatasetRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		X    [][]float64
		y    []float64
	}{
		{"empty", nil, nil},
		{"length mismatch", [][]float64{{1}, {2}}, []float64{1}},
		{"ragged rows", [][]float64{{1, 2}, {3}}, []float64{1, 2}},
		{"nan feature", [][]float64{{1}, {math.NaN()}}, []float64{1, 2}},
		{"inf target", [][]float64{{1}, {2}}, []float64{1, math.Inf(1)}},
		{"no features", [][]float64{{}, {}}, []float64{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDataset(tt.X, tt.y)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
		})
	}
}

func TestNewDatasetReportsEveryProblem(t *testing.T) {
	_, err := NewDataset([][]float64{{math.NaN(), 1}, {2, math.Inf(-1)}}, []float64{1, 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0 feature 0")
	assert.Contains(t, err.Error(), "row 1 feature 1")
}

func TestBootstrapKeepsSize(t *testing.T) {
	rs := NewRandomSource(11)
	for n := 1; n <= 50; n++ {
		X := make([][]float64, n)
		y := make([]float64, n)
		for i := range X {
			X[i] = []float64{float64(i)}
			y[i] = float64(i)
		}
		d, err := NewDataset(X, y)
		require.NoError(t, err)
		b := Bootstrap(d, rs)
		require.Equal(t, n, b.Len())
		for i := range b.X {
			assert.Equal(t, b.X[i][0], b.Y[i], "rows and targets stay paired")
		}
	}
}

func TestBootstrapLeavesSourceUntouched(t *testing.T) {
	d := Dataset{X: [][]float64{{1}, {2}, {3}}, Y: []float64{10, 20, 30}}
	_ = Bootstrap(d, NewRandomSource(0))
	assert.Equal(t, [][]float64{{1}, {2}, {3}}, d.X)
	assert.Equal(t, []float64{10, 20, 30}, d.Y)
}

func TestTrainTestSplit(t *testing.T) {
	X := make([][]float64, 10)
	y := make([]float64, 10)
	for i := range X {
		X[i] = []float64{float64(i)}
		y[i] = float64(i)
	}
	d := Dataset{X: X, Y: y}
	train, test, err := TrainTestSplit(d, 0.2, NewRandomSource(5))
	require.NoError(t, err)
	assert.Equal(t, 8, train.Len())
	assert.Equal(t, 2, test.Len())

	seen := map[float64]bool{}
	for _, v := range append(append([]float64{}, train.Y...), test.Y...) {
		seen[v] = true
	}
	assert.Len(t, seen, 10)

	_, _, err = TrainTestSplit(d, 0, NewRandomSource(5))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, _, err = TrainTestSplit(Dataset{X: [][]float64{{1}}, Y: []float64{1}}, 0.5, NewRandomSource(5))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
