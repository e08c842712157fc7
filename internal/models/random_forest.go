package models

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Forest is a bagged ensemble of regression trees. It is read-only once FitForest returns.
type Forest struct {
	Trees        []*Tree         `json:"trees"`
	FeatureNames []string        `json:"featureNames"`
	Params       Hyperparameters `json:"params"`
}

type fitConfig struct {
	workers   int
	bootstrap bool
}

type FitOption func(*fitConfig)

// WithWorkers bounds how many trees are grown concurrently. The forest does not depend on it.
func WithWorkers(n int) FitOption {
	return func(c *fitConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithoutBootstrap grows every tree on the full dataset; trees still differ through their
// feature subsets.
func WithoutBootstrap() FitOption {
	return func(c *fitConfig) { c.bootstrap = false }
}

// FitForest grows params.NEstimators trees. Tree i draws its bootstrap sample and feature
// subsets from its own RandomSource seeded RandomSeed+i, so the same seed gives the same
// forest for any worker count. featureNames may be empty, in which case f0..fk-1 are used.
func FitForest(ctx context.Context, d Dataset, featureNames []string, params Hyperparameters, opts ...FitOption) (*Forest, error) {
	if err := validateMatrix("FitForest", d.X, d.Y); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	names, err := resolveNames(d.NumFeatures(), featureNames)
	if err != nil {
		return nil, err
	}
	cfg := fitConfig{workers: runtime.GOMAXPROCS(0), bootstrap: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	base := NewRandomSource(params.RandomSeed)
	trees := make([]*Tree, params.NEstimators)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for i := range trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rs := base.Child(i)
			sample := d
			if cfg.bootstrap {
				sample = Bootstrap(d, rs)
			}
			t, err := buildTree(sample, params, rs)
			if err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
			trees[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Forest{Trees: trees, FeatureNames: names, Params: params}, nil
}

func resolveNames(k int, names []string) ([]string, error) {
	if len(names) == 0 {
		out := make([]string, k)
		for i := range out {
			out[i] = fmt.Sprintf("f%d", i)
		}
		return out, nil
	}
	if len(names) != k {
		return nil, invalidInput("FitForest", "%d feature names for %d features", len(names), k)
	}
	out := make([]string, k)
	copy(out, names)
	return out, nil
}

func (f *Forest) Name() string { return "RandomForest" }

func (f *Forest) NumFeatures() int { return len(f.FeatureNames) }

// Predict averages the leaf values reached in every tree. x must already be standardized.
func (f *Forest) Predict(x []float64) (float64, error) {
	if err := f.checkRow(x); err != nil {
		return 0, err
	}
	return f.predict(x), nil
}

func (f *Forest) predict(x []float64) float64 {
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.Predict(x)
	}
	return sum / float64(len(f.Trees))
}

func (f *Forest) checkRow(x []float64) error {
	if len(x) != f.NumFeatures() {
		return invalidInput("Forest.Predict", "got %d features, model expects %d", len(x), f.NumFeatures())
	}
	for j, v := range x {
		if !isFinite(v) {
			return invalidInput("Forest.Predict", "feature %d is not finite (%v)", j, v)
		}
	}
	return nil
}

// PredictBatch predicts each row independently, spreading rows over GOMAXPROCS goroutines.
func (f *Forest) PredictBatch(X [][]float64) ([]float64, error) {
	for _, x := range X {
		if err := f.checkRow(x); err != nil {
			return nil, err
		}
	}
	out := make([]float64, len(X))
	workers := runtime.GOMAXPROCS(0)
	chunk := (len(X) + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < len(X); start += chunk {
		end := min(start+chunk, len(X))
		g.Go(func() error {
			for i := start; i < end; i++ {
				out[i] = f.predict(X[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

// ForestStats summarizes the shape of a trained forest.
type ForestStats struct {
	Trees    int `json:"trees"`
	Nodes    int `json:"nodes"`
	Leaves   int `json:"leaves"`
	MaxDepth int `json:"maxDepth"`
}

func (f *Forest) Stats() ForestStats {
	s := ForestStats{Trees: len(f.Trees)}
	for _, t := range f.Trees {
		t.Walk(func(n Node, depth int) {
			s.Nodes++
			if n.IsLeaf() {
				s.Leaves++
			}
			s.MaxDepth = max(s.MaxDepth, depth)
		})
	}
	return s
}
