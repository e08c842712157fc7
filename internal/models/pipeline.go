package models

// Pipeline standardizes raw feature vectors with the training parameters before handing
// them to the forest.
type Pipeline struct {
	Scaler StandardizationParams
	Forest *Forest
}

func (p *Pipeline) Name() string { return p.Forest.Name() }

func (p *Pipeline) Predict(x []float64) (float64, error) {
	z, err := p.Scaler.ApplyRow(x)
	if err != nil {
		return 0, err
	}
	return p.Forest.Predict(z)
}

func (p *Pipeline) PredictBatch(X [][]float64) ([]float64, error) {
	Z := make([][]float64, len(X))
	for i, x := range X {
		z, err := p.Scaler.ApplyRow(x)
		if err != nil {
			return nil, err
		}
		Z[i] = z
	}
	return p.Forest.PredictBatch(Z)
}

// SplitAndStandardize splits d, fits a standardizer on the training partition only and
// applies it to both partitions.
func SplitAndStandardize(d Dataset, testFraction float64, rs *RandomSource) (train, test Dataset, scaler StandardizationParams, err error) {
	rawTrain, rawTest, err := TrainTestSplit(d, testFraction, rs)
	if err != nil {
		return Dataset{}, Dataset{}, StandardizationParams{}, err
	}
	scaler, err = FitStandardizer(rawTrain.X)
	if err != nil {
		return Dataset{}, Dataset{}, StandardizationParams{}, err
	}
	if train, err = StandardizeDataset(scaler, rawTrain); err != nil {
		return Dataset{}, Dataset{}, StandardizationParams{}, err
	}
	if test, err = StandardizeDataset(scaler, rawTest); err != nil {
		return Dataset{}, Dataset{}, StandardizationParams{}, err
	}
	return train, test, scaler, nil
}
