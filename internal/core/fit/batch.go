package fit

import (
	"context"
	"runtime"

	"github.com/baditaflorin/go_fit_predictor/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

// RecommendAcross predicts the best size in every guide concurrently.
// The output keeps the order of guides. Guides without sizes report Found=false.
func (p *Predictor) RecommendAcross(ctx context.Context, measurements domain.BodyMeasurements, guides []domain.SizeGuide) ([]domain.BrandRecommendation, error) {
	p.logger.Debug("Starting batch recommendation", "guides", len(guides))

	results := make([]domain.BrandRecommendation, len(guides))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, guide := range guides {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			predictions := p.PredictFit(measurements, guide)
			best, found := BestFitSize(predictions)
			results[i] = domain.BrandRecommendation{
				Brand:       guide.Brand,
				Category:    guide.Category,
				Found:       found,
				Best:        best,
				Predictions: predictions,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.logger.Error("Batch recommendation cancelled", "error", err)
		return nil, err
	}

	return results, nil
}
