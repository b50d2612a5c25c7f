package fit

import (
	"errors"
	"math"
	"sort"

	"github.com/baditaflorin/go_fit_predictor/internal/core/domain"
	"github.com/baditaflorin/go_fit_predictor/internal/ports"
)

// GoodFit is the recommendation used when no dimension produced a message.
const GoodFit = "Good fit"

// ScoringConfig holds the thresholds and penalties of the fit heuristic.
// Thresholds are in centimeters.
type ScoringConfig struct {
	TightThreshold   float64
	LooseThreshold   float64
	PerfectTolerance float64
	TightPenalty     int
	LoosePenalty     int
	PerfectFitScore  int
	MaxScore         int
}

// DefaultConfig returns the default scoring configuration.
// A tight dimension costs more than a loose one.
func DefaultConfig() ScoringConfig {
	return ScoringConfig{
		TightThreshold:   5,
		LooseThreshold:   5,
		PerfectTolerance: 2,
		TightPenalty:     30,
		LoosePenalty:     20,
		PerfectFitScore:  85,
		MaxScore:         100,
	}
}

// Validate checks if the configuration is valid.
func (c ScoringConfig) Validate() error {
	if c.TightThreshold < 0 || c.LooseThreshold < 0 {
		return errors.New("tight and loose thresholds must not be negative")
	}
	if c.PerfectTolerance < 0 {
		return errors.New("perfectTolerance must not be negative")
	}
	if c.TightPenalty < 0 || c.LoosePenalty < 0 {
		return errors.New("penalties must not be negative")
	}
	if c.MaxScore <= 0 {
		return errors.New("maxScore must be greater than 0")
	}
	if c.PerfectFitScore < 0 || c.PerfectFitScore > c.MaxScore {
		return errors.New("perfectFitScore must be between 0 and maxScore")
	}
	return nil
}

// dimension describes one scored body dimension.
type dimension struct {
	name   string
	title  string
	user   func(domain.BodyMeasurements) float64
	target func(domain.SizeEntry) *float64
}

var dimensions = []dimension{
	{
		name:   "bust",
		title:  "Bust",
		user:   func(m domain.BodyMeasurements) float64 { return m.Bust },
		target: func(e domain.SizeEntry) *float64 { return e.Bust },
	},
	{
		name:   "waist",
		title:  "Waist",
		user:   func(m domain.BodyMeasurements) float64 { return m.Waist },
		target: func(e domain.SizeEntry) *float64 { return e.Waist },
	},
	{
		name:   "hip",
		title:  "Hip",
		user:   func(m domain.BodyMeasurements) float64 { return m.Hip },
		target: func(e domain.SizeEntry) *float64 { return e.Hip },
	},
}

// Predictor implements the brand size-fit heuristic.
type Predictor struct {
	config ScoringConfig
	logger ports.Logger
}

// NewPredictor creates a new fit predictor.
func NewPredictor(config ScoringConfig, logger ports.Logger) (*Predictor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Predictor{
		config: config,
		logger: logger,
	}, nil
}

// Config returns the scoring configuration in use.
func (p *Predictor) Config() ScoringConfig {
	return p.config
}

// PredictFit scores every size of the guide against the measurements and returns
// the predictions sorted by fit score, best first. Sizes with equal scores keep
// their guide order. The inputs are not modified.
func (p *Predictor) PredictFit(measurements domain.BodyMeasurements, guide domain.SizeGuide) []domain.FitPrediction {
	p.logger.Debug("Starting fit prediction",
		"brand", guide.Brand,
		"category", guide.Category,
		"sizes", len(guide.Measurements),
	)

	predictions := make([]domain.FitPrediction, 0, len(guide.Measurements))
	for _, entry := range guide.Measurements {
		predictions = append(predictions, p.scoreSize(measurements, entry))
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].FitScore > predictions[j].FitScore
	})

	p.logger.Debug("Computed fit predictions",
		"brand", guide.Brand,
		"category", guide.Category,
		"predictions", len(predictions),
	)

	return predictions
}

// scoreSize scores a single size entry.
func (p *Predictor) scoreSize(measurements domain.BodyMeasurements, entry domain.SizeEntry) domain.FitPrediction {
	score := p.config.MaxScore
	var tooSmall, tooLarge bool
	var recommendations []string

	for _, dim := range dimensions {
		target := dim.target(entry)
		if target == nil {
			continue
		}

		diff := dim.user(measurements) - *target
		absDiff := math.Abs(diff)

		switch {
		case diff > p.config.TightThreshold:
			score -= p.config.TightPenalty
			tooSmall = true
			recommendations = append(recommendations, dim.title+" may be tight")
		case diff < -p.config.LooseThreshold:
			score -= p.config.LoosePenalty
			tooLarge = true
			recommendations = append(recommendations, dim.title+" may be loose")
		case absDiff <= p.config.PerfectTolerance:
			recommendations = append(recommendations, "Perfect "+dim.name+" fit")
		}

		p.logger.Debug("Scored dimension",
			"size", entry.Size,
			"dimension", dim.name,
			"diff", diff,
			"score", score,
		)
	}

	if score < 0 {
		score = 0
	}
	if len(recommendations) == 0 {
		recommendations = []string{GoodFit}
	}

	return domain.FitPrediction{
		Size:            entry.Size,
		FitScore:        score,
		TooSmall:        tooSmall,
		TooLarge:        tooLarge,
		PerfectFit:      score >= p.config.PerfectFitScore && !tooSmall && !tooLarge,
		Recommendations: recommendations,
	}
}

// BestFitSize returns the first perfect fit in the given order, or the first
// prediction when none is perfect. It reports false for an empty list.
// The predictions are not re-sorted.
func BestFitSize(predictions []domain.FitPrediction) (domain.FitPrediction, bool) {
	if len(predictions) == 0 {
		return domain.FitPrediction{}, false
	}
	for _, prediction := range predictions {
		if prediction.PerfectFit {
			return prediction, true
		}
	}
	return predictions[0], true
}
