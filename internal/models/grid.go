package models

import (
	"fmt"

	"go.uber.org/multierr"
)

// Grid lists candidate values per hyperparameter. Every list needs at least one value; a
// single value pins that hyperparameter.
type Grid struct {
	NEstimators     []int         `json:"nEstimators" yaml:"n_estimators" validate:"required,min=1,dive,min=1"`
	MaxDepth        []int         `json:"maxDepth" yaml:"max_depth" validate:"required,min=1,dive,min=0"`
	MinSamplesSplit []int         `json:"minSamplesSplit" yaml:"min_samples_split" validate:"required,min=1,dive,min=1"`
	MinSamplesLeaf  []int         `json:"minSamplesLeaf" yaml:"min_samples_leaf" validate:"required,min=1,dive,min=1"`
	MaxFeatures     []MaxFeatures `json:"maxFeatures" yaml:"max_features" validate:"required,min=1"`
	RandomSeed      []int64       `json:"randomSeed" yaml:"random_seed" validate:"required,min=1"`
}

// SingleGrid pins every hyperparameter to the values in h.
func SingleGrid(h Hyperparameters) Grid {
	return Grid{
		NEstimators:     []int{h.NEstimators},
		MaxDepth:        []int{h.MaxDepth},
		MinSamplesSplit: []int{h.MinSamplesSplit},
		MinSamplesLeaf:  []int{h.MinSamplesLeaf},
		MaxFeatures:     []MaxFeatures{h.MaxFeatures},
		RandomSeed:      []int64{h.RandomSeed},
	}
}

func (g Grid) dims() []int {
	return []int{
		len(g.NEstimators),
		len(g.MaxDepth),
		len(g.MinSamplesSplit),
		len(g.MinSamplesLeaf),
		len(g.MaxFeatures),
		len(g.RandomSeed),
	}
}

// Size is the number of combinations in the Cartesian product.
func (g Grid) Size() int {
	n := 1
	for _, d := range g.dims() {
		n *= d
	}
	return n
}

func (g Grid) Validate() error {
	var errs error
	names := []string{"n_estimators", "max_depth", "min_samples_split", "min_samples_leaf", "max_features", "random_seed"}
	for i, d := range g.dims() {
		if d == 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s: no values", names[i]))
		}
	}
	for _, v := range g.NEstimators {
		errs = multierr.Append(errs, checkEstimators(v))
	}
	for _, v := range g.MaxDepth {
		errs = multierr.Append(errs, checkDepth(v))
	}
	for _, v := range g.MinSamplesSplit {
		errs = multierr.Append(errs, checkMinSplit(v))
	}
	for _, v := range g.MinSamplesLeaf {
		errs = multierr.Append(errs, checkMinLeaf(v))
	}
	for _, v := range g.MaxFeatures {
		errs = multierr.Append(errs, checkMaxFeatures(v))
	}
	if errs != nil {
		return invalidInputErr("Grid.Validate", errs)
	}
	return nil
}

// Iter enumerates the grid like nested loops with RandomSeed innermost and NEstimators
// outermost.
func (g Grid) Iter() *GridIterator {
	dims := g.dims()
	return &GridIterator{grid: g, dims: dims, pos: make([]int, len(dims)), done: g.Size() == 0}
}

// GridIterator is a mixed-radix counter over the grid dimensions.
type GridIterator struct {
	grid  Grid
	dims  []int
	pos   []int
	done  bool
	index int
}

func (it *GridIterator) HasNext() bool { return !it.done }

// Next returns the current combination and its position in iteration order, then advances.
func (it *GridIterator) Next() (Hyperparameters, int) {
	g, p := it.grid, it.pos
	h := Hyperparameters{
		NEstimators:     g.NEstimators[p[0]],
		MaxDepth:        g.MaxDepth[p[1]],
		MinSamplesSplit: g.MinSamplesSplit[p[2]],
		MinSamplesLeaf:  g.MinSamplesLeaf[p[3]],
		MaxFeatures:     g.MaxFeatures[p[4]],
		RandomSeed:      g.RandomSeed[p[5]],
	}
	index := it.index
	it.index++
	it.done = true
	for d := len(p) - 1; d >= 0; d-- {
		p[d]++
		if p[d] < it.dims[d] {
			it.done = false
			break
		}
		p[d] = 0
	}
	return h, index
}

// Combinations drains a fresh iterator.
func (g Grid) Combinations() []Hyperparameters {
	out := make([]Hyperparameters, 0, g.Size())
	for it := g.Iter(); it.HasNext(); {
		h, _ := it.Next()
		out = append(out, h)
	}
	return out
}
