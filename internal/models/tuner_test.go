package models

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// stepDatasets returns a train set with a step at x=100 under blocky ±5 noise, and a clean
// test set between the training points. Tiny leaves memorize the noise; wide leaves average
// it away.
func stepDatasets() (train, test Dataset) {
	step := func(x float64) float64 {
		if x < 100 {
			return 0
		}
		return 10
	}
	for i := 0; i < 200; i++ {
		x := float64(i)
		noise := 5.0
		if i%4 >= 2 {
			noise = -5
		}
		train.X = append(train.X, []float64{x})
		train.Y = append(train.Y, step(x)+noise)
	}
	for i := 0; i < 199; i++ {
		if i == 99 {
			continue
		}
		x := float64(i) + 0.5
		test.X = append(test.X, []float64{x})
		test.Y = append(test.Y, step(x))
	}
	return train, test
}

func TestTunerPrefersGeneralizingCombination(t *testing.T) {
	train, test := stepDatasets()
	grid := Grid{
		NEstimators:     []int{5},
		MaxDepth:        []int{20},
		MinSamplesSplit: []int{2},
		MinSamplesLeaf:  []int{1, 20},
		MaxFeatures:     []MaxFeatures{FractionOfFeatures(1.0)},
		RandomSeed:      []int64{7},
	}
	tuner := &Tuner{Logger: zaptest.NewLogger(t), Workers: 2}
	report, err := tuner.Tune(context.Background(), train, test, []string{"x"}, grid)
	require.NoError(t, err)

	assert.Equal(t, 20, report.BestParams.MinSamplesLeaf)
	require.Len(t, report.Results, 2)
	assert.Equal(t, 1, report.Results[0].Index)
	assert.Greater(t, report.Results[0].Score, report.Results[1].Score)
	assert.Equal(t, report.Results[0].Score, report.BestScore)
	assert.Equal(t, report.BestParams, report.Best.Params)
}

func TestTunerTieKeepsFirstCombination(t *testing.T) {
	train, test := stepDatasets()
	p := forestParams()
	p.NEstimators = 3
	grid := SingleGrid(p)
	grid.RandomSeed = []int64{5, 5, 5}
	tuner := &Tuner{Logger: zaptest.NewLogger(t), Workers: 3, TreeWorkers: 1}
	report, err := tuner.Tune(context.Background(), train, test, nil, grid)
	require.NoError(t, err)
	require.Len(t, report.Results, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{report.Results[0].Index, report.Results[1].Index, report.Results[2].Index})
	assert.Equal(t, report.Results[0].Score, report.Results[2].Score)
}

func TestTunerSingleCombination(t *testing.T) {
	train, test := stepDatasets()
	p := forestParams()
	p.NEstimators = 4
	report, err := (&Tuner{}).Tune(context.Background(), train, test, []string{"x"}, SingleGrid(p))
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, p, report.BestParams)
	assert.Len(t, report.Best.Trees, 4)
}

func TestTunerUndefinedTestR2RanksLast(t *testing.T) {
	train, _ := stepDatasets()
	flat := Dataset{X: [][]float64{{10}, {20}, {30}}, Y: []float64{0, 0, 0}}
	p := forestParams()
	p.NEstimators = 2
	report, err := (&Tuner{}).Tune(context.Background(), train, flat, nil, SingleGrid(p))
	require.NoError(t, err)
	assert.True(t, report.Results[0].TestMetrics.R2Undefined)
	assert.Equal(t, undefinedScore, report.BestScore)
	assert.NotNil(t, report.Best)
}

func TestTunerCancelled(t *testing.T) {
	train, test := stepDatasets()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := (&Tuner{}).Tune(ctx, train, test, nil, SingleGrid(forestParams()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report)
}

func TestTunerRejectsMismatchedPartitions(t *testing.T) {
	train, _ := stepDatasets()
	test := Dataset{X: [][]float64{{1, 2}}, Y: []float64{1}}
	_, err := (&Tuner{}).Tune(context.Background(), train, test, nil, SingleGrid(forestParams()))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
