package fit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	p, err := New(WithQuietLogger())
	require.NoError(t, err)
	defer p.Close()

	assert.NotEmpty(t, p.Guides())

	user := BodyMeasurements{Bust: 92, Waist: 72, Hip: 100}
	predictions, err := p.PredictForBrand(user, "zara", "TOPS")
	require.NoError(t, err)
	require.Len(t, predictions, 5)

	best, ok := p.BestFitSize(predictions)
	require.True(t, ok)
	assert.Equal(t, "M", best.Size)
	assert.True(t, best.PerfectFit)
	assert.Equal(t, 100, best.FitScore)
}

func TestPredictForBrand_Unknown(t *testing.T) {
	p, err := New(WithQuietLogger())
	require.NoError(t, err)

	_, err = p.PredictForBrand(BodyMeasurements{Bust: 90}, "Nope", "tops")
	assert.True(t, errors.Is(err, ErrGuideNotFound))
}

func TestPredictFit_InlineGuide(t *testing.T) {
	p, err := New(WithQuietLogger())
	require.NoError(t, err)

	guide := SizeGuide{Brand: "Inline", Measurements: []SizeEntry{
		{Size: "S", Bust: Cm(82), Waist: Cm(70), Hip: Cm(96)},
		{Size: "M", Bust: Cm(88), Waist: Cm(70), Hip: Cm(96)},
	}}
	predictions := p.PredictFit(BodyMeasurements{Bust: 88, Waist: 70, Hip: 96}, guide)
	require.Len(t, predictions, 2)
	assert.Equal(t, "M", predictions[0].Size)
	assert.Equal(t, 70, predictions[1].FitScore)
	assert.Contains(t, predictions[1].Recommendations, "Bust may be tight")
}

func TestNew_InvalidScoring(t *testing.T) {
	cfg := DefaultScoringConfig()
	cfg.LoosePenalty = -5
	_, err := New(WithQuietLogger(), WithScoringConfig(cfg))
	assert.Error(t, err)
}

func TestNew_CatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guides.yaml")
	doc := "guides:\n  - brand: Local\n    category: tees\n    measurements:\n      - {size: medium, bust: 90}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	p, err := New(WithQuietLogger(), WithCatalogFile(path))
	require.NoError(t, err)

	guide, err := p.Guide("local", "tees")
	require.NoError(t, err)
	assert.Equal(t, "M", guide.Measurements[0].Size)

	_, err = New(WithQuietLogger(), WithCatalogFile(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestRecommend(t *testing.T) {
	p, err := New(WithQuietLogger(), WithWarmUpConfig(WarmupConfig{Concurrency: 1, Iterations: 5, SampleSizes: 3}))
	require.NoError(t, err)

	recs, err := p.Recommend(context.Background(), BodyMeasurements{Bust: 92, Waist: 72, Hip: 100})
	require.NoError(t, err)
	require.Len(t, recs, len(p.Guides()))
	for _, rec := range recs {
		assert.True(t, rec.Found, rec.Brand)
		assert.NotEmpty(t, rec.Best.Size)
	}
}

func TestNormalizeSize(t *testing.T) {
	p, err := New(WithQuietLogger())
	require.NoError(t, err)
	assert.Equal(t, "XL", p.NormalizeSize("extra large"))
}

func TestNew_SilentBandTie(t *testing.T) {
	p, err := New(WithQuietLogger())
	require.NoError(t, err)

	// S is 4 cm off on every dimension: no penalty, so it ties M at 100 and
	// keeps its earlier guide position.
	predictions, err := p.PredictForBrand(BodyMeasurements{Bust: 90, Waist: 70, Hip: 98}, "Zara", "tops")
	require.NoError(t, err)

	best, ok := p.BestFitSize(predictions)
	require.True(t, ok)
	assert.Equal(t, "S", best.Size)
	assert.Equal(t, []string{"Good fit"}, best.Recommendations)
	assert.Equal(t, "M", predictions[1].Size)
	assert.Equal(t, 100, predictions[1].FitScore)
}

type lowerNormalizer struct{}

func (lowerNormalizer) Normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

func TestWithNormalizer_BuiltInCatalog(t *testing.T) {
	p, err := New(WithQuietLogger(), WithNormalizer(lowerNormalizer{}))
	require.NoError(t, err)

	guide, err := p.Guide("Zara", "tops")
	require.NoError(t, err)
	assert.Equal(t, "xs", guide.Measurements[0].Size)
	assert.Equal(t, "medium", p.NormalizeSize(" MEDIUM "))
}

func TestWarmUp_Concurrent(t *testing.T) {
	p, err := New(WithQuietLogger())
	require.NoError(t, err)

	cfg := WarmupConfig{Concurrency: 1, Iterations: 2, SampleSizes: 3}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		runs int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p.WarmUp(context.Background(), cfg) {
				mu.Lock()
				runs++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, runs)
	assert.False(t, p.WarmUp(context.Background(), cfg))
}
