package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/baditaflorin/go_fit_predictor/internal/adapters/catalog"
	"github.com/baditaflorin/go_fit_predictor/internal/adapters/logger"
	"github.com/baditaflorin/go_fit_predictor/internal/adapters/mock"
	"github.com/baditaflorin/go_fit_predictor/internal/adapters/store"
	"github.com/baditaflorin/go_fit_predictor/internal/config"
	"github.com/baditaflorin/go_fit_predictor/internal/core/domain"
	"github.com/baditaflorin/go_fit_predictor/internal/core/fit"
	"github.com/baditaflorin/go_fit_predictor/internal/metrics"
	"github.com/baditaflorin/go_fit_predictor/internal/ports"
	"github.com/baditaflorin/go_fit_predictor/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func newTestServer(t *testing.T, kv ports.KeyValueStore) *Server {
	t.Helper()
	log := logger.NewNopLogger()

	cat, err := catalog.Default()
	require.NoError(t, err)
	predictor, err := fit.NewPredictor(fit.DefaultConfig(), log)
	require.NoError(t, err)

	generator := mock.NewAvatarGenerator(time.Millisecond, "https://cdn.example.com", log)
	profiles := profile.NewService(profile.NewRepository(kv), generator, predictor, log)
	return NewServer(predictor, cat, profiles, metrics.New(), log)
}

func do(s *Server, method, uri, body string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	s.Handle(&ctx)
	return &ctx
}

func decode(t *testing.T, ctx *fasthttp.RequestCtx, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), v), string(ctx.Response.Body()))
}

func TestHealthAndGuides(t *testing.T) {
	s := newTestServer(t, store.NewMemoryStore())

	ctx := do(s, "GET", "/health", "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	ctx = do(s, "GET", "/guides?brand=zara", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var guides []domain.SizeGuide
	decode(t, ctx, &guides)
	require.NotEmpty(t, guides)
	for _, g := range guides {
		assert.Equal(t, "Zara", g.Brand)
	}

	ctx = do(s, "POST", "/guides", "")
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode())

	ctx = do(s, "GET", "/nope", "")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestPredict(t *testing.T) {
	s := newTestServer(t, store.NewMemoryStore())

	ctx := do(s, "POST", "/predict", `{"measurements":{"bust":92,"waist":72,"hip":100},"brand":"Zara","category":"tops"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp PredictResponse
	decode(t, ctx, &resp)
	assert.Len(t, resp.Predictions, 5)
	require.NotNil(t, resp.Best)
	assert.Equal(t, "M", resp.Best.Size)
	assert.True(t, resp.Best.PerfectFit)
}

func TestPredict_InlineGuide(t *testing.T) {
	s := newTestServer(t, store.NewMemoryStore())

	body := `{"measurements":{"bust":88,"waist":70,"hip":96},
		"guide":{"brand":"Inline","measurements":[{"size":"ONE SIZE"},{"size":"S","bust":82}]}}`
	ctx := do(s, "POST", "/predict", body)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp PredictResponse
	decode(t, ctx, &resp)
	require.Len(t, resp.Predictions, 2)
	assert.Equal(t, "ONE SIZE", resp.Predictions[0].Size)
	assert.Equal(t, []string{"Good fit"}, resp.Predictions[0].Recommendations)
	assert.Equal(t, 70, resp.Predictions[1].FitScore)
}

func TestPredict_EmptyGuideHasNoBest(t *testing.T) {
	s := newTestServer(t, store.NewMemoryStore())

	ctx := do(s, "POST", "/predict", `{"measurements":{"bust":88},"guide":{"brand":"Empty","measurements":[]}}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp PredictResponse
	decode(t, ctx, &resp)
	assert.Empty(t, resp.Predictions)
	assert.Nil(t, resp.Best)
}

func TestPredict_BadRequests(t *testing.T) {
	s := newTestServer(t, store.NewMemoryStore())

	tests := []struct {
		method string
		body   string
		status int
	}{
		{"GET", "", fasthttp.StatusMethodNotAllowed},
		{"POST", "{", fasthttp.StatusBadRequest},
		{"POST", `{"brand":"Zara","category":"tops"}`, fasthttp.StatusBadRequest},
		{"POST", `{"measurements":{"bust":88}}`, fasthttp.StatusBadRequest},
		{"POST", `{"measurements":{"bust":88},"brand":"Nope"}`, fasthttp.StatusNotFound},
	}
	for _, tc := range tests {
		ctx := do(s, tc.method, "/predict", tc.body)
		assert.Equal(t, tc.status, ctx.Response.StatusCode(), tc.body)
	}
}

func TestBestFit(t *testing.T) {
	s := newTestServer(t, store.NewMemoryStore())

	ctx := do(s, "POST", "/best-fit", `{"predictions":[{"size":"L","fitScore":90},{"size":"M","fitScore":100,"perfectFit":true}]}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var resp struct {
		Best *domain.FitPrediction `json:"best"`
	}
	decode(t, ctx, &resp)
	require.NotNil(t, resp.Best)
	assert.Equal(t, "M", resp.Best.Size)

	ctx = do(s, "POST", "/best-fit", `{"predictions":[]}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	resp.Best = nil
	decode(t, ctx, &resp)
	assert.Nil(t, resp.Best)
}

func TestRecommend(t *testing.T) {
	s := newTestServer(t, store.NewMemoryStore())

	ctx := do(s, "POST", "/recommend", `{"measurements":{"bust":92,"waist":72,"hip":100}}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var recs []domain.BrandRecommendation
	decode(t, ctx, &recs)
	assert.Len(t, recs, s.catalog.Len())
	assert.Equal(t, "Zara", recs[0].Brand)
	assert.Equal(t, "M", recs[0].Best.Size)
}

func TestProfilesFlow(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rs := store.NewRedisStore(store.RedisConfig{Address: mr.Addr(), KeyPrefix: "test:"})
	defer rs.Close()
	s := newTestServer(t, rs)

	ctx := do(s, "GET", "/profiles/u1", "")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())

	ctx = do(s, "POST", "/profiles/u1/avatar", `{"mediaUri":"file://photo.jpg","mediaType":"photo"}`)
	require.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())
	var record profile.AvatarRecord
	decode(t, ctx, &record)
	assert.Equal(t, "https://cdn.example.com/avatars/u1.glb", record.AvatarURL)
	assert.True(t, mr.Exists("test:avatarData:u1"))

	ctx = do(s, "PUT", "/profiles/u1", `{"bust":92,"waist":72,"hip":100}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var updated profile.AvatarRecord
	decode(t, ctx, &updated)
	assert.Equal(t, record.ID, updated.ID)
	assert.Equal(t, record.AvatarURL, updated.AvatarURL)

	ctx = do(s, "GET", "/profiles/u1/predict?brand=zara&category=tops", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var resp PredictResponse
	decode(t, ctx, &resp)
	require.NotNil(t, resp.Best)
	assert.Equal(t, "M", resp.Best.Size)

	ctx = do(s, "POST", "/profiles/u1/wishlist", `{"itemId":"dress-1"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	ctx = do(s, "DELETE", "/profiles/u1/wishlist/dress-1", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var wl struct {
		Items []string `json:"items"`
	}
	decode(t, ctx, &wl)
	assert.Empty(t, wl.Items)

	ctx = do(s, "DELETE", "/profiles/u1", "")
	assert.Equal(t, fasthttp.StatusNoContent, ctx.Response.StatusCode())
	assert.False(t, mr.Exists("test:avatarData:u1"))
}

func TestProfilePredict_Unmeasured(t *testing.T) {
	s := newTestServer(t, store.NewMemoryStore())

	ctx := do(s, "PUT", "/profiles/u2", `{"bust":0,"waist":70,"hip":98}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	ctx = do(s, "GET", "/profiles/u2/predict?brand=zara&category=tops", "")
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, ctx.Response.StatusCode())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, store.NewMemoryStore())

	do(s, "POST", "/predict", `{"measurements":{"bust":92,"waist":72,"hip":100},"brand":"Zara","category":"tops"}`)
	ctx := do(s, "GET", "/metrics", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "fit_predictions_total")
}

func TestOpenStore(t *testing.T) {
	kv, closeFn, err := openStore(config.StoreConfig{Driver: "memory"})
	require.NoError(t, err)
	defer closeFn()
	_, ok := kv.(*store.MemoryStore)
	assert.True(t, ok)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	kv, closeRedis, err := openStore(config.StoreConfig{Driver: "redis", Redis: config.RedisConfig{Address: mr.Addr()}})
	require.NoError(t, err)
	defer closeRedis()
	_, ok = kv.(*store.RedisStore)
	assert.True(t, ok)
}
