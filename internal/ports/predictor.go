package ports

import (
	"github.com/baditaflorin/go_fit_predictor/internal/core/domain"
)

// FitPredictor defines the interface for ranking the sizes of a guide against a user's measurements.
type FitPredictor interface {
	PredictFit(measurements domain.BodyMeasurements, guide domain.SizeGuide) []domain.FitPrediction
}
