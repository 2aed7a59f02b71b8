package forecast

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/wonny/vwapcast/internal/prep"
)

// Regressor predicts one value per row
type Regressor interface {
	Predict(x mat.Matrix) []float64
}

// Scores holds RMSE per split in scaled label units, with the raw predictions
type Scores struct {
	Train     float64
	Test      float64
	TrainPred []float64
	TestPred  []float64
}

// Finite reports whether both RMSEs are usable
func (s Scores) Finite() bool {
	return isFinite(s.Train) && isFinite(s.Test)
}

// Evaluate scores model on the train and test segments of a scaled partition.
// The model must already be in inference mode; Predict guarantees that for mlp.Network.
func Evaluate(model Regressor, part prep.Partition) Scores {
	trainPred := model.Predict(part.Train.X)
	testPred := model.Predict(part.Test.X)

	return Scores{
		Train:     RMSE(trainPred, part.Train.Y),
		Test:      RMSE(testPred, part.Test.Y),
		TrainPred: trainPred,
		TestPred:  testPred,
	}
}

// RMSE = sqrt(mean((pred-actual)²)). Empty or mismatched input yields NaN.
func RMSE(pred, actual []float64) float64 {
	if len(pred) == 0 || len(pred) != len(actual) {
		return math.NaN()
	}
	var sum float64
	for i := range pred {
		d := pred[i] - actual[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(pred)))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
