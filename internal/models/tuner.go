package models

import (
	"context"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// undefinedScore ranks a combination whose test R² is undefined below every defined score.
const undefinedScore = -math.MaxFloat64

// TuningResult is the evaluation of one grid combination.
type TuningResult struct {
	Index        int             `json:"index" bson:"index"`
	Params       Hyperparameters `json:"params" bson:"params"`
	TrainMetrics Metrics         `json:"trainMetrics" bson:"train_metrics"`
	TestMetrics  Metrics         `json:"testMetrics" bson:"test_metrics"`
	Score        float64         `json:"score" bson:"score"`
}

// TuningReport holds the best forest and every result ranked by score, best first.
type TuningReport struct {
	Best       *Forest
	BestParams Hyperparameters
	BestScore  float64
	Results    []TuningResult
}

// Tuner runs a grid search scored by test R².
type Tuner struct {
	Logger *zap.Logger
	// Workers bounds how many combinations train at once; 0 means one at a time.
	Workers int
	// TreeWorkers is handed to FitForest for each combination; 0 uses GOMAXPROCS.
	TreeWorkers int
}

// Tune trains one forest per grid combination on train, scores it on test and keeps the
// highest test R². Each combination uses its own RandomSeed value, so with a single seed in the
// grid every combination sees the same random stream. Equal scores resolve to the earliest
// combination in grid order, however the work was scheduled. The context is checked before
// each combination starts; a cancelled search returns the context error and no forest.
func (t *Tuner) Tune(ctx context.Context, train, test Dataset, featureNames []string, grid Grid) (*TuningReport, error) {
	logger := t.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := validateMatrix("Tune", train.X, train.Y); err != nil {
		return nil, err
	}
	if err := validateMatrix("Tune", test.X, test.Y); err != nil {
		return nil, err
	}
	if train.NumFeatures() != test.NumFeatures() {
		return nil, invalidInput("Tune", "train has %d features, test has %d", train.NumFeatures(), test.NumFeatures())
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	workers := t.Workers
	if workers < 1 {
		workers = 1
	}
	var fitOpts []FitOption
	if t.TreeWorkers > 0 {
		fitOpts = append(fitOpts, WithWorkers(t.TreeWorkers))
	}

	results := make([]TuningResult, grid.Size())
	var (
		mu        sync.Mutex
		best      *Forest
		bestIndex = -1
		bestScore = math.Inf(-1)
	)
	logger.Info("grid search started", zap.Int("combinations", grid.Size()), zap.Int("workers", workers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for it := grid.Iter(); it.HasNext(); {
		params, index := it.Next()
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			forest, res, err := evaluate(gctx, train, test, featureNames, params, fitOpts)
			if err != nil {
				return err
			}
			res.Index = index
			results[index] = res
			logger.Info("combination evaluated",
				zap.Int("index", index),
				zap.Int("n_estimators", params.NEstimators),
				zap.Int("max_depth", params.MaxDepth),
				zap.Int("min_samples_split", params.MinSamplesSplit),
				zap.Int("min_samples_leaf", params.MinSamplesLeaf),
				zap.String("max_features", string(params.MaxFeatures)),
				zap.Int64("random_seed", params.RandomSeed),
				zap.Float64("train_r2", res.TrainMetrics.R2),
				zap.Float64("test_r2", res.TestMetrics.R2),
				zap.Float64("test_rmse", res.TestMetrics.RMSE),
				zap.Bool("r2_undefined", res.TestMetrics.R2Undefined),
			)

			mu.Lock()
			defer mu.Unlock()
			if res.Score > bestScore || (res.Score == bestScore && index < bestIndex) {
				best, bestIndex, bestScore = forest, index, res.Score
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	report := &TuningReport{
		Best:       best,
		BestParams: best.Params,
		BestScore:  bestScore,
		Results:    results,
	}
	logger.Info("grid search finished",
		zap.Int("best_index", bestIndex),
		zap.Float64("best_score", bestScore),
	)
	return report, nil
}

func evaluate(ctx context.Context, train, test Dataset, names []string, params Hyperparameters, opts []FitOption) (*Forest, TuningResult, error) {
	forest, err := FitForest(ctx, train, names, params, opts...)
	if err != nil {
		return nil, TuningResult{}, err
	}
	trainMetrics, err := Evaluate(forest, train)
	if err != nil {
		return nil, TuningResult{}, err
	}
	testMetrics, err := Evaluate(forest, test)
	if err != nil {
		return nil, TuningResult{}, err
	}
	score := testMetrics.R2
	if testMetrics.R2Undefined {
		score = undefinedScore
	}
	return forest, TuningResult{Params: params, TrainMetrics: trainMetrics, TestMetrics: testMetrics, Score: score}, nil
}
