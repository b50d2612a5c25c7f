package domain

// BodyMeasurements holds a user's body measurements in centimeters.
// Only Bust, Waist and Hip take part in fit prediction.
type BodyMeasurements struct {
	Bust       float64 `json:"bust" yaml:"bust"`
	Waist      float64 `json:"waist" yaml:"waist"`
	Hip        float64 `json:"hip" yaml:"hip"`
	Shoulders  float64 `json:"shoulders,omitempty" yaml:"shoulders,omitempty"`
	ArmLength  float64 `json:"armLength,omitempty" yaml:"armLength,omitempty"`
	LegsLength float64 `json:"legsLength,omitempty" yaml:"legsLength,omitempty"`
	FeetSize   float64 `json:"feetSize,omitempty" yaml:"feetSize,omitempty"`
}

// SizeEntry is a size label with its target measurements.
// A nil target means the brand does not publish that dimension for the size.
type SizeEntry struct {
	Size  string   `json:"size" yaml:"size"`
	Bust  *float64 `json:"bust,omitempty" yaml:"bust,omitempty"`
	Waist *float64 `json:"waist,omitempty" yaml:"waist,omitempty"`
	Hip   *float64 `json:"hip,omitempty" yaml:"hip,omitempty"`
}

// SizeGuide is a brand and category specific size chart.
type SizeGuide struct {
	Brand        string      `json:"brand" yaml:"brand"`
	Category     string      `json:"category" yaml:"category"`
	Measurements []SizeEntry `json:"measurements" yaml:"measurements"`
}

// FitPrediction holds the outcome of scoring one size against a user's measurements.
type FitPrediction struct {
	Size            string   `json:"size"`
	FitScore        int      `json:"fitScore"`
	TooSmall        bool     `json:"tooSmall"`
	TooLarge        bool     `json:"tooLarge"`
	PerfectFit      bool     `json:"perfectFit"`
	Recommendations []string `json:"recommendations"`
}

// BrandRecommendation is the best size found for one size guide.
type BrandRecommendation struct {
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Found       bool            `json:"found"`
	Best        FitPrediction   `json:"best"`
	Predictions []FitPrediction `json:"predictions"`
}

// Cm returns a pointer to v, for building SizeEntry targets.
func Cm(v float64) *float64 {
	return &v
}
