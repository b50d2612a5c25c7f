// Package fitpredictor predicts how well the sizes of a brand size guide fit a
// user's body measurements.
//
// Each size starts at a score of 100. Per bust, waist and hip dimension:
//
//	diff > 5 cm       tight, -30, "<Dim> may be tight"
//	diff < -5 cm      loose, -20, "<Dim> may be loose"
//	|diff| <= 2 cm    "Perfect <dim> fit"
//
// where diff = user - target. The score is floored at 0 and the sizes are
// returned best first. Use pkg/fit for catalogs, custom scoring and logging.
package fitpredictor

import (
	"github.com/baditaflorin/go_fit_predictor/internal/adapters/logger"
	"github.com/baditaflorin/go_fit_predictor/internal/core/domain"
	"github.com/baditaflorin/go_fit_predictor/internal/core/fit"
)

// defaultPredictor uses the default scoring and discards logs.
var defaultPredictor = mustPredictor()

func mustPredictor() *fit.Predictor {
	p, err := fit.NewPredictor(fit.DefaultConfig(), logger.NewNopLogger())
	if err != nil {
		panic(err)
	}
	return p
}

// PredictFit ranks every size of guide against measurements, best first.
func PredictFit(measurements domain.BodyMeasurements, guide domain.SizeGuide) []domain.FitPrediction {
	return defaultPredictor.PredictFit(measurements, guide)
}

// GetBestFitSize returns the first perfect fit, else the first prediction,
// and nil when predictions is empty.
func GetBestFitSize(predictions []domain.FitPrediction) *domain.FitPrediction {
	best, ok := fit.BestFitSize(predictions)
	if !ok {
		return nil
	}
	return &best
}
