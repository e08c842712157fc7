package models

import (
	"fmt"
	"math"

	"go.uber.org/multierr"
)

// maxReportedProblems caps how many row problems a validation error lists.
const maxReportedProblems = 10

// Dataset is a read-only feature matrix with its targets. Rows may be shared with other
// datasets (bootstrap samples point at the parent's rows) and must never be mutated.
type Dataset struct {
	X [][]float64
	Y []float64
}

// NewDataset validates X and y at the boundary: non-empty, equal lengths, a constant
// feature count and finite values everywhere.
func NewDataset(X [][]float64, y []float64) (Dataset, error) {
	if err := validateMatrix("NewDataset", X, y); err != nil {
		return Dataset{}, err
	}
	return Dataset{X: X, Y: y}, nil
}

func (d Dataset) Len() int { return len(d.Y) }

// NumFeatures returns k, the per-row feature count.
func (d Dataset) NumFeatures() int {
	if len(d.X) == 0 {
		return 0
	}
	return len(d.X[0])
}

// Subset returns the rows at idx, sharing row storage with d.
func (d Dataset) Subset(idx []int) Dataset {
	X := make([][]float64, len(idx))
	y := make([]float64, len(idx))
	for i, j := range idx {
		X[i] = d.X[j]
		y[i] = d.Y[j]
	}
	return Dataset{X: X, Y: y}
}

func validateMatrix(op string, X [][]float64, y []float64) error {
	if len(X) == 0 {
		return invalidInput(op, "empty dataset")
	}
	if y != nil && len(X) != len(y) {
		return invalidInput(op, "%d feature rows but %d targets", len(X), len(y))
	}
	k := len(X[0])
	if k == 0 {
		return invalidInput(op, "rows have no features")
	}
	var errs error
	problems := 0
	report := func(err error) {
		if problems < maxReportedProblems {
			errs = multierr.Append(errs, err)
		}
		problems++
	}
	for i, row := range X {
		if len(row) != k {
			report(fmt.Errorf("row %d has %d features, want %d", i, len(row), k))
			continue
		}
		for j, v := range row {
			if !isFinite(v) {
				report(fmt.Errorf("row %d feature %d is not finite (%v)", i, j, v))
			}
		}
	}
	for i, v := range y {
		if !isFinite(v) {
			report(fmt.Errorf("target %d is not finite (%v)", i, v))
		}
	}
	if problems > maxReportedProblems {
		errs = multierr.Append(errs, fmt.Errorf("%d more problems", problems-maxReportedProblems))
	}
	if errs != nil {
		return invalidInputErr(op, errs)
	}
	return nil
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Bootstrap draws n rows with replacement from an n-row dataset. Rows repeat or go missing;
// that is where the trees of a forest get their diversity.
func Bootstrap(d Dataset, rs *RandomSource) Dataset {
	n := d.Len()
	idx := make([]int, n)
	for i := 0; i < n; i++ {
		idx[i] = rs.Index(n)
	}
	return d.Subset(idx)
}

// TrainTestSplit shuffles d and holds out testFraction of the rows. Both partitions must end
// up non-empty.
func TrainTestSplit(d Dataset, testFraction float64, rs *RandomSource) (train, test Dataset, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return Dataset{}, Dataset{}, invalidInput("TrainTestSplit", "test fraction %v outside (0, 1)", testFraction)
	}
	n := d.Len()
	nTest := int(math.Round(testFraction * float64(n)))
	if nTest < 1 || nTest >= n {
		return Dataset{}, Dataset{}, invalidInput("TrainTestSplit", "%d rows cannot hold out %v", n, testFraction)
	}
	perm := rs.Perm(n)
	return d.Subset(perm[nTest:]), d.Subset(perm[:nTest]), nil
}
