package models

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Metrics holds the regression scores of one prediction run. When the actual values are all
// equal R² is undefined: R2 is left at 0 and R2Undefined is set.
type Metrics struct {
	R2          float64 `json:"r2" bson:"r2"`
	RMSE        float64 `json:"rmse" bson:"rmse"`
	MAE         float64 `json:"mae" bson:"mae"`
	R2Undefined bool    `json:"r2Undefined,omitempty" bson:"r2_undefined,omitempty"`
}

// Err returns ErrUndefinedMetric for a flagged result and nil otherwise.
func (m Metrics) Err() error {
	if m.R2Undefined {
		return &Error{Kind: ErrUndefinedMetric, Op: "ComputeMetrics", Msg: "actual values have zero variance"}
	}
	return nil
}

func ComputeMetrics(actual, predicted []float64) (Metrics, error) {
	if len(actual) == 0 || len(predicted) == 0 {
		return Metrics{}, invalidInput("ComputeMetrics", "empty input")
	}
	if len(actual) != len(predicted) {
		return Metrics{}, invalidInput("ComputeMetrics", "%d actual values but %d predictions", len(actual), len(predicted))
	}
	n := float64(len(actual))
	mean := stat.Mean(actual, nil)
	var ssRes, ssTot, absErr float64
	for i, a := range actual {
		e := a - predicted[i]
		ssRes += e * e
		absErr += math.Abs(e)
		d := a - mean
		ssTot += d * d
	}
	m := Metrics{
		RMSE: math.Sqrt(ssRes / n),
		MAE:  absErr / n,
	}
	if allEqual(actual) || ssTot == 0 {
		m.R2Undefined = true
	} else {
		m.R2 = 1 - ssRes/ssTot
	}
	return m, nil
}

// Evaluate predicts every row of d with r and scores it against d.Y.
func Evaluate(r Regressor, d Dataset) (Metrics, error) {
	pred, err := r.PredictBatch(d.X)
	if err != nil {
		return Metrics{}, err
	}
	return ComputeMetrics(d.Y, pred)
}
