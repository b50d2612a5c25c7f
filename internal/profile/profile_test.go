package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/baditaflorin/go_fit_predictor/internal/adapters/logger"
	"github.com/baditaflorin/go_fit_predictor/internal/adapters/mock"
	"github.com/baditaflorin/go_fit_predictor/internal/adapters/store"
	"github.com/baditaflorin/go_fit_predictor/internal/core/domain"
	"github.com/baditaflorin/go_fit_predictor/internal/core/fit"
	"github.com/baditaflorin/go_fit_predictor/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("boom") }
func (failingStore) Set(context.Context, string, []byte) error   { return errors.New("boom") }
func (failingStore) Remove(context.Context, string) error        { return errors.New("boom") }

func TestRepository_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(store.NewMemoryStore())

	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.now = func() time.Time { return clock }

	_, err := repo.Load(ctx, "u1")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	saved, err := repo.Save(ctx, AvatarRecord{UserID: "u1", Measurements: domain.BodyMeasurements{Bust: 88, Waist: 70, Hip: 96}})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, clock, saved.CreatedAt)

	clock = clock.Add(time.Hour)
	updated, err := repo.Save(ctx, AvatarRecord{UserID: "u1", Measurements: domain.BodyMeasurements{Bust: 90, Waist: 72, Hip: 98}})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, saved.CreatedAt, updated.CreatedAt)
	assert.Equal(t, clock, updated.UpdatedAt)

	loaded, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 90.0, loaded.Measurements.Bust)

	require.NoError(t, repo.Delete(ctx, "u1"))
	_, err = repo.Load(ctx, "u1")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestRepository_SaveRequiresUser(t *testing.T) {
	_, err := NewRepository(store.NewMemoryStore()).Save(context.Background(), AvatarRecord{})
	assert.Error(t, err)
}

func TestRepository_StoreErrors(t *testing.T) {
	repo := NewRepository(failingStore{})

	_, err := repo.Load(context.Background(), "u1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrProfileNotFound))

	_, err = repo.Save(context.Background(), AvatarRecord{UserID: "u1"})
	assert.Error(t, err)
}

func TestRepository_CorruptRecord(t *testing.T) {
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), "avatarData:u1", []byte("{not json")))

	_, err := NewRepository(kv).Load(context.Background(), "u1")
	assert.Error(t, err)
}

func TestRepository_Wishlist(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(store.NewMemoryStore())

	items, err := repo.Wishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = repo.AddToWishlist(ctx, "u1", "dress-1")
	require.NoError(t, err)
	_, err = repo.AddToWishlist(ctx, "u1", "jacket-2")
	require.NoError(t, err)
	items, err = repo.AddToWishlist(ctx, "u1", "dress-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"dress-1", "jacket-2"}, items)

	items, err = repo.RemoveFromWishlist(ctx, "u1", "dress-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"jacket-2"}, items)

	items, err = repo.Wishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"jacket-2"}, items)
}

func TestReady(t *testing.T) {
	assert.True(t, Ready(domain.BodyMeasurements{Bust: 88, Waist: 70, Hip: 96}))
	assert.False(t, Ready(domain.BodyMeasurements{Waist: 70, Hip: 96}))
	assert.False(t, Ready(domain.BodyMeasurements{Bust: 88, Waist: -1, Hip: 96}))
	assert.False(t, Ready(domain.BodyMeasurements{}))
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	predictor, err := fit.NewPredictor(fit.DefaultConfig(), logger.NewNopLogger())
	require.NoError(t, err)
	generator := mock.NewAvatarGenerator(time.Millisecond, "https://cdn.example.com", logger.NewNopLogger())
	return NewService(NewRepository(store.NewMemoryStore()), generator, predictor, logger.NewNopLogger())
}

func TestService_CreateAvatarAndPredict(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	record, err := svc.CreateAvatar(ctx, ports.AvatarRequest{UserID: "u1", MediaURI: "file://photo.jpg", MediaType: "photo"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/u1.glb", record.AvatarURL)
	assert.Equal(t, mock.AnalyzedMeasurements, record.Measurements)

	guide := domain.SizeGuide{Brand: "Zara", Measurements: []domain.SizeEntry{
		{Size: "S", Bust: domain.Cm(82), Waist: domain.Cm(64), Hip: domain.Cm(90)},
		{Size: "M", Bust: domain.Cm(88), Waist: domain.Cm(70), Hip: domain.Cm(96)},
	}}
	predictions, err := svc.PredictForUser(ctx, "u1", guide)
	require.NoError(t, err)
	require.Len(t, predictions, 2)
	assert.Equal(t, "M", predictions[0].Size)
	assert.True(t, predictions[0].PerfectFit)
}

func TestService_PredictRequiresMeasurements(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.PredictForUser(ctx, "nobody", domain.SizeGuide{})
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = svc.Repository().Save(ctx, AvatarRecord{UserID: "u2"})
	require.NoError(t, err)
	_, err = svc.PredictForUser(ctx, "u2", domain.SizeGuide{})
	assert.ErrorIs(t, err, ErrMeasurementsMissing)
}

func TestService_CreateAvatarFailure(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateAvatar(context.Background(), ports.AvatarRequest{UserID: "u1"})
	assert.Error(t, err)
}
