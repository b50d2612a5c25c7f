// Package fit is the public API of the brand size-fit predictor.
package fit

import (
	"context"
	"fmt"
	"sync"

	"github.com/baditaflorin/go_fit_predictor/internal/adapters/catalog"
	"github.com/baditaflorin/go_fit_predictor/internal/adapters/logger"
	"github.com/baditaflorin/go_fit_predictor/internal/adapters/normalizer"
	"github.com/baditaflorin/go_fit_predictor/internal/core/domain"
	corefit "github.com/baditaflorin/go_fit_predictor/internal/core/fit"
	"github.com/baditaflorin/go_fit_predictor/internal/ports"
	"github.com/baditaflorin/go_fit_predictor/internal/warmup"
	"github.com/baditaflorin/l"
)

// Re-exported domain types.
type (
	BodyMeasurements    = domain.BodyMeasurements
	SizeEntry           = domain.SizeEntry
	SizeGuide           = domain.SizeGuide
	FitPrediction       = domain.FitPrediction
	BrandRecommendation = domain.BrandRecommendation
	ScoringConfig       = corefit.ScoringConfig
	WarmupConfig        = warmup.WarmupConfig
)

// Cm returns a pointer to v, for building SizeEntry targets.
func Cm(v float64) *float64 {
	return domain.Cm(v)
}

// DefaultScoringConfig returns the default thresholds and penalties.
func DefaultScoringConfig() ScoringConfig {
	return corefit.DefaultConfig()
}

// DefaultWarmupConfig returns the default warm-up configuration.
func DefaultWarmupConfig() WarmupConfig {
	return warmup.DefaultWarmupConfig()
}

// ErrGuideNotFound is returned by Guide and PredictForBrand for unknown guides.
var ErrGuideNotFound = catalog.ErrGuideNotFound

// Predictor ranks the sizes of brand size guides against body measurements.
type Predictor struct {
	predictor  *corefit.Predictor
	catalog    *catalog.Catalog
	logger     ports.Logger
	normalizer ports.Normalizer
	warmOnce   sync.Once
}

// Option defines a functional option for configuring Predictor.
type Option func(*predictorConfig)

type predictorConfig struct {
	Scoring      ScoringConfig
	Logger       ports.Logger
	Normalizer   ports.Normalizer
	CatalogPath  string
	WarmUp       bool
	WarmUpConfig warmup.WarmupConfig
}

// WithScoringConfig sets custom thresholds and penalties.
func WithScoringConfig(cfg ScoringConfig) Option {
	return func(c *predictorConfig) {
		c.Scoring = cfg
	}
}

// WithLogger sets a custom logger.
func WithLogger(log l.Logger) Option {
	return func(c *predictorConfig) {
		c.Logger = logger.FromExisting(log)
	}
}

// WithQuietLogger discards all log output.
func WithQuietLogger() Option {
	return func(c *predictorConfig) {
		c.Logger = logger.NewNopLogger()
	}
}

// WithNormalizer sets the size label normalizer applied to catalog size labels,
// built-in or loaded from a file.
func WithNormalizer(n ports.Normalizer) Option {
	return func(c *predictorConfig) {
		c.Normalizer = n
	}
}

// WithCatalogFile loads size guides from a YAML file instead of the built-in catalog.
func WithCatalogFile(path string) Option {
	return func(c *predictorConfig) {
		c.CatalogPath = path
	}
}

// WithWarmUp enables warm-up on initialization.
func WithWarmUp(enable bool) Option {
	return func(c *predictorConfig) {
		c.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration.
func WithWarmUpConfig(cfg WarmupConfig) Option {
	return func(c *predictorConfig) {
		c.WarmUpConfig = cfg
		c.WarmUp = true
	}
}

// New creates a new Predictor.
func New(opts ...Option) (*Predictor, error) {
	config := &predictorConfig{
		Scoring:      corefit.DefaultConfig(),
		WarmUpConfig: warmup.DefaultWarmupConfig(),
	}

	for _, opt := range opts {
		opt(config)
	}

	if config.Logger == nil {
		var err error
		config.Logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
	}

	if config.Normalizer == nil {
		config.Normalizer = normalizer.NewNormalizerFactory().CreateNormalizer(normalizer.AliasNormalizerType)
	}

	var (
		cat *catalog.Catalog
		err error
	)
	if config.CatalogPath != "" {
		cat, err = catalog.LoadFile(config.CatalogPath, config.Normalizer)
	} else {
		cat, err = catalog.DefaultWith(config.Normalizer)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	predictor, err := corefit.NewPredictor(config.Scoring, config.Logger)
	if err != nil {
		return nil, err
	}

	p := &Predictor{
		predictor:  predictor,
		catalog:    cat,
		logger:     config.Logger,
		normalizer: config.Normalizer,
	}

	if config.WarmUp {
		p.WarmUp(context.Background(), config.WarmUpConfig)
	}

	return p, nil
}

// PredictFit ranks every size of guide, best first.
func (p *Predictor) PredictFit(measurements BodyMeasurements, guide SizeGuide) []FitPrediction {
	return p.predictor.PredictFit(measurements, guide)
}

// BestFitSize picks the first perfect fit, else the first prediction.
// It reports false for an empty list.
func (p *Predictor) BestFitSize(predictions []FitPrediction) (FitPrediction, bool) {
	return corefit.BestFitSize(predictions)
}

// PredictForBrand looks up a catalog guide and ranks its sizes.
func (p *Predictor) PredictForBrand(measurements BodyMeasurements, brand, category string) ([]FitPrediction, error) {
	guide, err := p.catalog.Lookup(brand, category)
	if err != nil {
		return nil, err
	}
	return p.predictor.PredictFit(measurements, guide), nil
}

// Recommend returns the best size in every catalog guide.
func (p *Predictor) Recommend(ctx context.Context, measurements BodyMeasurements) ([]BrandRecommendation, error) {
	return p.predictor.RecommendAcross(ctx, measurements, p.catalog.Guides())
}

// Guide returns a catalog guide.
func (p *Predictor) Guide(brand, category string) (SizeGuide, error) {
	return p.catalog.Lookup(brand, category)
}

// Guides returns all catalog guides.
func (p *Predictor) Guides() []SizeGuide {
	return p.catalog.Guides()
}

// NormalizeSize returns the canonical form of a size label.
func (p *Predictor) NormalizeSize(label string) string {
	return p.normalizer.Normalize(label)
}

// Close flushes the logger.
func (p *Predictor) Close() error {
	return p.logger.Close()
}

// WarmUp exercises the predictor and normalizer before serving traffic.
// Only the first call runs; concurrent callers wait for it to finish.
// It reports whether this call performed the warm-up.
func (p *Predictor) WarmUp(ctx context.Context, config WarmupConfig) bool {
	ran := false
	p.warmOnce.Do(func() {
		warmupMgr := warmup.NewManager(p.logger, config)
		warmupMgr.RegisterPredictor(p.predictor)
		warmupMgr.RegisterNormalizer(p.normalizer)

		warmupMgr.WarmUp(ctx)
		ran = true
	})
	if !ran {
		p.logger.Debug("System already warmed up, skipping")
	}
	return ran
}
