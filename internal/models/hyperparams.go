package models

import (
	"fmt"
	"math"
	"strconv"

	"go.uber.org/multierr"
)

// MaxFeatures picks how many features a node may consider: "sqrt", "log2" or a decimal
// fraction of k such as "0.5". Empty means sqrt.
type MaxFeatures string

const (
	MaxFeaturesSqrt MaxFeatures = "sqrt"
	MaxFeaturesLog2 MaxFeatures = "log2"
)

// FractionOfFeatures returns the strategy that tries floor(f*k) features.
func FractionOfFeatures(f float64) MaxFeatures {
	return MaxFeatures(strconv.FormatFloat(f, 'f', -1, 64))
}

// Count resolves the strategy for k features. The result is always within [1, k].
func (m MaxFeatures) Count(k int) (int, error) {
	var n int
	switch m {
	case "", MaxFeaturesSqrt:
		n = int(math.Floor(math.Sqrt(float64(k))))
	case MaxFeaturesLog2:
		n = int(math.Floor(math.Log2(float64(k))))
	default:
		f, err := strconv.ParseFloat(string(m), 64)
		if err != nil || !(f > 0 && f <= 1) {
			return 0, fmt.Errorf("max features %q: want sqrt, log2 or a fraction in (0, 1]", string(m))
		}
		n = int(math.Floor(f * float64(k)))
	}
	if n < 1 {
		n = 1
	}
	if n > k {
		n = k
	}
	return n, nil
}

// Hyperparameters configure one forest. It is a plain value; copies are independent.
type Hyperparameters struct {
	NEstimators     int         `json:"nEstimators" yaml:"n_estimators" bson:"n_estimators"`
	MaxDepth        int         `json:"maxDepth" yaml:"max_depth" bson:"max_depth"`
	MinSamplesSplit int         `json:"minSamplesSplit" yaml:"min_samples_split" bson:"min_samples_split"`
	MinSamplesLeaf  int         `json:"minSamplesLeaf" yaml:"min_samples_leaf" bson:"min_samples_leaf"`
	MaxFeatures     MaxFeatures `json:"maxFeatures" yaml:"max_features" bson:"max_features"`
	RandomSeed      int64       `json:"randomSeed" yaml:"random_seed" bson:"random_seed"`
}

func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		NEstimators:     100,
		MaxDepth:        10,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     MaxFeaturesSqrt,
		RandomSeed:      42,
	}
}

// Validate reports every out-of-range field at once.
func (h Hyperparameters) Validate() error {
	var errs error
	errs = multierr.Append(errs, checkEstimators(h.NEstimators))
	errs = multierr.Append(errs, checkDepth(h.MaxDepth))
	errs = multierr.Append(errs, checkMinSplit(h.MinSamplesSplit))
	errs = multierr.Append(errs, checkMinLeaf(h.MinSamplesLeaf))
	errs = multierr.Append(errs, checkMaxFeatures(h.MaxFeatures))
	if errs != nil {
		return invalidInputErr("Hyperparameters.Validate", errs)
	}
	return nil
}

func checkEstimators(n int) error {
	if n < 1 {
		return fmt.Errorf("n_estimators %d < 1", n)
	}
	return nil
}

func checkDepth(n int) error {
	if n < 0 {
		return fmt.Errorf("max_depth %d < 0", n)
	}
	return nil
}

func checkMinSplit(n int) error {
	if n < 1 {
		return fmt.Errorf("min_samples_split %d < 1", n)
	}
	return nil
}

func checkMinLeaf(n int) error {
	if n < 1 {
		return fmt.Errorf("min_samples_leaf %d < 1", n)
	}
	return nil
}

func checkMaxFeatures(m MaxFeatures) error {
	_, err := m.Count(1)
	return err
}
