package models

// Regressor predicts a continuous target from one feature vector.
type Regressor interface {
	Predict(x []float64) (float64, error)
	PredictBatch(X [][]float64) ([]float64, error)
	Name() string
}
