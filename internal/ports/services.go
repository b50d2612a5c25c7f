package ports

import (
	"context"

	"github.com/baditaflorin/go_fit_predictor/internal/core/domain"
)

// AvatarRequest describes the media and measurements submitted for avatar generation.
type AvatarRequest struct {
	UserID       string
	MediaURI     string
	MediaType    string
	Measurements *domain.BodyMeasurements
}

// AvatarResult is the generated avatar and the measurements it was built from.
type AvatarResult struct {
	AvatarURL    string
	Measurements domain.BodyMeasurements
}

// AvatarGenerator generates a 3D avatar from a photo or video.
type AvatarGenerator interface {
	Generate(ctx context.Context, req AvatarRequest) (AvatarResult, error)
}
