package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/baditaflorin/go_fit_predictor/internal/core/domain"
	"github.com/baditaflorin/go_fit_predictor/internal/ports"
)

// ErrMeasurementsMissing is returned when a prediction is requested for a
// profile whose bust, waist or hip has not been measured.
var ErrMeasurementsMissing = errors.New("measurements missing")

// Service ties avatar generation, storage and fit prediction together.
type Service struct {
	repo      *Repository
	generator ports.AvatarGenerator
	predictor ports.FitPredictor
	logger    ports.Logger
}

// NewService creates a profile service.
func NewService(repo *Repository, generator ports.AvatarGenerator, predictor ports.FitPredictor, logger ports.Logger) *Service {
	return &Service{
		repo:      repo,
		generator: generator,
		predictor: predictor,
		logger:    logger,
	}
}

// Repository returns the underlying repository.
func (s *Service) Repository() *Repository {
	return s.repo
}

// CreateAvatar generates an avatar and persists it with its measurements.
func (s *Service) CreateAvatar(ctx context.Context, req ports.AvatarRequest) (AvatarRecord, error) {
	result, err := s.generator.Generate(ctx, req)
	if err != nil {
		s.logger.Error("Avatar generation failed", "user_id", req.UserID, "error", err)
		return AvatarRecord{}, fmt.Errorf("failed to generate avatar: %w", err)
	}

	record, err := s.repo.Save(ctx, AvatarRecord{
		UserID:       req.UserID,
		AvatarURL:    result.AvatarURL,
		Measurements: result.Measurements,
	})
	if err != nil {
		return AvatarRecord{}, err
	}

	s.logger.Info("Avatar stored", "user_id", record.UserID, "record_id", record.ID)
	return record, nil
}

// PredictForUser loads the user's measurements and ranks the sizes of guide.
// It refuses to predict on unmeasured profiles.
func (s *Service) PredictForUser(ctx context.Context, userID string, guide domain.SizeGuide) ([]domain.FitPrediction, error) {
	record, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !Ready(record.Measurements) {
		return nil, fmt.Errorf("%w: %s", ErrMeasurementsMissing, userID)
	}
	return s.predictor.PredictFit(record.Measurements, guide), nil
}
