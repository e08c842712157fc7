package models

import "gonum.org/v1/gonum/stat"

// StandardizationParams are per-feature (mean, stdDev) pairs fitted on the training partition
// and reused unchanged for test and inference rows. A zero stdDev is stored as 1.
type StandardizationParams struct {
	Means   []float64 `json:"means" bson:"means"`
	StdDevs []float64 `json:"stdDevs" bson:"std_devs"`
}

// FitStandardizer computes the column means and population standard deviations of X.
// Non-finite values fail the fit rather than being skipped.
func FitStandardizer(X [][]float64) (StandardizationParams, error) {
	if err := validateMatrix("FitStandardizer", X, nil); err != nil {
		return StandardizationParams{}, err
	}
	k := len(X[0])
	p := StandardizationParams{Means: make([]float64, k), StdDevs: make([]float64, k)}
	col := make([]float64, len(X))
	for j := 0; j < k; j++ {
		for i, row := range X {
			col[i] = row[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if allEqual(col) || std == 0 {
			mean, std = col[0], 1
		}
		p.Means[j], p.StdDevs[j] = mean, std
	}
	return p, nil
}

func (p StandardizationParams) NumFeatures() int { return len(p.Means) }

// Apply standardizes every row of X into a new matrix.
func (p StandardizationParams) Apply(X [][]float64) ([][]float64, error) {
	if err := validateMatrix("StandardizationParams.Apply", X, nil); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		z, err := p.ApplyRow(row)
		if err != nil {
			return nil, err
		}
		out[i] = z
	}
	return out, nil
}

// ApplyRow computes (x - mean) / stdDev elementwise.
func (p StandardizationParams) ApplyRow(x []float64) ([]float64, error) {
	if len(x) != len(p.Means) {
		return nil, invalidInput("StandardizationParams.ApplyRow", "got %d features, params cover %d", len(x), len(p.Means))
	}
	out := make([]float64, len(x))
	for j, v := range x {
		if !isFinite(v) {
			return nil, invalidInput("StandardizationParams.ApplyRow", "feature %d is not finite (%v)", j, v)
		}
		out[j] = (v - p.Means[j]) / p.StdDevs[j]
	}
	return out, nil
}

// StandardizeDataset applies p to d's features, keeping the targets.
func StandardizeDataset(p StandardizationParams, d Dataset) (Dataset, error) {
	X, err := p.Apply(d.X)
	if err != nil {
		return Dataset{}, err
	}
	return Dataset{X: X, Y: d.Y}, nil
}
