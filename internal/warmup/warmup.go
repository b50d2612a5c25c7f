package warmup

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/baditaflorin/go_fit_predictor/internal/core/domain"
	"github.com/baditaflorin/go_fit_predictor/internal/ports"
)

// WarmupConfig defines configuration for warming up the system
type WarmupConfig struct {
	// Number of concurrent warmup routines to run
	Concurrency int
	// Number of iterations per routine
	Iterations int
	// Number of sizes in the generated sample guide
	SampleSizes int
	// Warmup duration (0 means no time limit)
	Duration time.Duration
	// Whether to perform GC after warmup
	ForceGC bool
}

// DefaultWarmupConfig returns the default warmup configuration
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Concurrency: runtime.NumCPU(),
		Iterations:  1000,
		SampleSizes: 8,
		Duration:    5 * time.Second,
		ForceGC:     true,
	}
}

// Manager handles system warmup operations
type Manager struct {
	logger      ports.Logger
	predictors  []ports.FitPredictor
	normalizers []ports.Normalizer
	config      WarmupConfig
}

// NewManager creates a new warmup manager
func NewManager(logger ports.Logger, config WarmupConfig) *Manager {
	return &Manager{
		logger: logger,
		config: config,
	}
}

// RegisterPredictor adds a predictor to be warmed up
func (wm *Manager) RegisterPredictor(p ports.FitPredictor) {
	wm.predictors = append(wm.predictors, p)
}

// RegisterNormalizer adds a normalizer to be warmed up
func (wm *Manager) RegisterNormalizer(norm ports.Normalizer) {
	wm.normalizers = append(wm.normalizers, norm)
}

// WarmUp runs the warmup process for all registered components
func (wm *Manager) WarmUp(ctx context.Context) {
	startTime := time.Now()
	wm.logger.Info("Starting system warmup",
		"components", len(wm.predictors)+len(wm.normalizers),
		"concurrency", wm.config.Concurrency,
		"iterations", wm.config.Iterations,
	)

	warmupCtx := ctx
	if wm.config.Duration > 0 {
		var cancel context.CancelFunc
		warmupCtx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	}

	wm.warmUpNormalizers(warmupCtx)
	wm.warmUpPredictors(warmupCtx)

	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	wm.logger.Info("System warmup completed",
		"duration", time.Since(startTime),
	)
}

// run calls fn Iterations times on Concurrency goroutines, stopping early on ctx.
func (wm *Manager) run(ctx context.Context, fn func(iteration int)) {
	concurrency := wm.config.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < wm.config.Iterations; j++ {
				select {
				case <-ctx.Done():
					return
				default:
				}
				fn(j)
			}
		}()
	}
	wg.Wait()
}

// warmUpNormalizers runs warmup for all registered normalizers
func (wm *Manager) warmUpNormalizers(ctx context.Context) {
	if len(wm.normalizers) == 0 {
		return
	}

	wm.logger.Debug("Warming up normalizers", "count", len(wm.normalizers))

	labels := []string{"xs", " Small ", "medium", "extra large", "EU 40", "2xl"}
	wm.run(ctx, func(j int) {
		for _, normalizer := range wm.normalizers {
			_ = normalizer.Normalize(labels[j%len(labels)])
		}
	})
}

// warmUpPredictors runs warmup for all registered predictors
func (wm *Manager) warmUpPredictors(ctx context.Context) {
	if len(wm.predictors) == 0 {
		return
	}

	wm.logger.Debug("Warming up predictors", "count", len(wm.predictors))

	guide := generateSampleGuide(wm.config.SampleSizes)
	users := []domain.BodyMeasurements{
		{Bust: 84, Waist: 66, Hip: 92},  // small
		{Bust: 92, Waist: 74, Hip: 100}, // middle of the chart
		{Bust: 110, Waist: 95, Hip: 120},
	}

	wm.run(ctx, func(j int) {
		for _, predictor := range wm.predictors {
			_ = predictor.PredictFit(users[j%len(users)], guide)
		}
	})
}

// generateSampleGuide builds a guide with evenly spaced sizes
func generateSampleGuide(sizes int) domain.SizeGuide {
	labels := []string{"XXS", "XS", "S", "M", "L", "XL", "XXL", "3XL"}

	guide := domain.SizeGuide{Brand: "warmup", Category: "sample"}
	for i := 0; i < sizes; i++ {
		label := labels[i%len(labels)]
		if i >= len(labels) {
			label = label + "+"
		}
		step := float64(i) * 4
		guide.Measurements = append(guide.Measurements, domain.SizeEntry{
			Size:  label,
			Bust:  domain.Cm(78 + step),
			Waist: domain.Cm(60 + step),
			Hip:   domain.Cm(86 + step),
		})
	}
	return guide
}
