// Package mock provides stand-ins for backend services that are not built yet.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/baditaflorin/go_fit_predictor/internal/core/domain"
	"github.com/baditaflorin/go_fit_predictor/internal/ports"
)

// DefaultAvatarDelay mirrors the latency of the generation backend.
const DefaultAvatarDelay = 3 * time.Second

// AnalyzedMeasurements are returned when a request carries no measurements.
var AnalyzedMeasurements = domain.BodyMeasurements{
	Bust:       88,
	Waist:      70,
	Hip:        96,
	Shoulders:  40,
	ArmLength:  58,
	LegsLength: 80,
	FeetSize:   38,
}

// AvatarGenerator waits for a fixed delay and returns a canned avatar.
type AvatarGenerator struct {
	delay   time.Duration
	baseURL string
	logger  ports.Logger
}

// NewAvatarGenerator creates a mock generator.
func NewAvatarGenerator(delay time.Duration, baseURL string, logger ports.Logger) *AvatarGenerator {
	return &AvatarGenerator{delay: delay, baseURL: baseURL, logger: logger}
}

// Generate implements ports.AvatarGenerator.
func (g *AvatarGenerator) Generate(ctx context.Context, req ports.AvatarRequest) (ports.AvatarResult, error) {
	if req.UserID == "" {
		return ports.AvatarResult{}, fmt.Errorf("avatar request: user id is required")
	}
	if req.MediaURI == "" {
		return ports.AvatarResult{}, fmt.Errorf("avatar request: media is required")
	}

	g.logger.Debug("Generating mock avatar",
		"user_id", req.UserID,
		"media_type", req.MediaType,
		"delay", g.delay,
	)

	timer := time.NewTimer(g.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ports.AvatarResult{}, ctx.Err()
	case <-timer.C:
	}

	measurements := AnalyzedMeasurements
	if req.Measurements != nil {
		measurements = *req.Measurements
	}

	return ports.AvatarResult{
		AvatarURL:    fmt.Sprintf("%s/avatars/%s.glb", g.baseURL, req.UserID),
		Measurements: measurements,
	}, nil
}
