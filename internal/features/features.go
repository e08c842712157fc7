package features

import (
	"slices"

	"statforest/internal/data"
	"statforest/internal/models"
)

// Names lists the engineered features in vector order.
var Names = []string{
	"AvgAssistsLast5",
	"AvgAssistsSeason",
	"AvgMinutesLast5",
	"UsageRate",
	"TeamPace",
	"OpponentPace",
	"OpponentDefRating",
	"RestDays",
	"BackToBack",
	"Home",
	"TeammatesOut",
}

// Vectorize turns one game log into the fixed-length feature vector the forest trains on,
// returning a copy of the names alongside.
func Vectorize(g data.GameLog) ([]float64, []string) {
	vec := []float64{
		g.AvgAssistsLast5,
		g.AvgAssistsSeason,
		g.AvgMinutesLast5,
		g.UsageRate,
		g.TeamPace,
		g.OpponentPace,
		g.OpponentDefRating,
		float64(g.RestDays),
		boolToFloat(g.RestDays == 0),
		boolToFloat(g.Home),
		float64(g.TeammatesOut),
	}
	return vec, slices.Clone(Names)
}

// Matrix vectorizes every log and returns the feature matrix with its assists targets.
func Matrix(logs []data.GameLog) ([][]float64, []float64) {
	X := make([][]float64, 0, len(logs))
	y := make([]float64, 0, len(logs))
	for _, g := range logs {
		v, _ := Vectorize(g)
		X = append(X, v)
		y = append(y, g.Assists)
	}
	return X, y
}

// Dataset vectorizes logs into a validated models.Dataset.
func Dataset(logs []data.GameLog) (models.Dataset, error) {
	X, y := Matrix(logs)
	return models.NewDataset(X, y)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
