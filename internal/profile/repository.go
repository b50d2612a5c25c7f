// Package profile stores a user's avatar record and wishlist on a key-value store.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/baditaflorin/go_fit_predictor/internal/core/domain"
	"github.com/baditaflorin/go_fit_predictor/internal/ports"
	"github.com/google/uuid"
)

// ErrProfileNotFound is returned when a user has no stored avatar record.
var ErrProfileNotFound = errors.New("profile not found")

const (
	avatarKeyPrefix   = "avatarData:"
	wishlistKeyPrefix = "wishlist:"
)

// AvatarRecord is the persisted result of an avatar scan.
type AvatarRecord struct {
	ID           string                  `json:"id"`
	UserID       string                  `json:"userId"`
	AvatarURL    string                  `json:"avatarUrl,omitempty"`
	Measurements domain.BodyMeasurements `json:"measurements"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

// Repository reads and writes profile data as JSON blobs.
type Repository struct {
	store ports.KeyValueStore
	now   func() time.Time
}

// NewRepository creates a repository on top of store.
func NewRepository(store ports.KeyValueStore) *Repository {
	return &Repository{store: store, now: time.Now}
}

// Save stores the record for its user. A new record gets an id and creation time;
// saving over an existing record keeps both.
func (r *Repository) Save(ctx context.Context, record AvatarRecord) (AvatarRecord, error) {
	if record.UserID == "" {
		return AvatarRecord{}, errors.New("profile: user id is required")
	}

	now := r.now().UTC()
	existing, err := r.Load(ctx, record.UserID)
	switch {
	case err == nil:
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	case errors.Is(err, ErrProfileNotFound):
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		record.CreatedAt = now
	default:
		return AvatarRecord{}, err
	}
	record.UpdatedAt = now

	if err := r.put(ctx, avatarKeyPrefix+record.UserID, record); err != nil {
		return AvatarRecord{}, err
	}
	return record, nil
}

// Load returns the record stored for userID.
func (r *Repository) Load(ctx context.Context, userID string) (AvatarRecord, error) {
	var record AvatarRecord
	if err := r.get(ctx, avatarKeyPrefix+userID, &record); err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			return AvatarRecord{}, fmt.Errorf("%w: %s", ErrProfileNotFound, userID)
		}
		return AvatarRecord{}, err
	}
	return record, nil
}

// Delete removes the avatar record and wishlist of userID.
func (r *Repository) Delete(ctx context.Context, userID string) error {
	if err := r.store.Remove(ctx, avatarKeyPrefix+userID); err != nil {
		return fmt.Errorf("failed to remove profile: %w", err)
	}
	if err := r.store.Remove(ctx, wishlistKeyPrefix+userID); err != nil {
		return fmt.Errorf("failed to remove wishlist: %w", err)
	}
	return nil
}

// Wishlist returns the item ids saved by userID in insertion order.
func (r *Repository) Wishlist(ctx context.Context, userID string) ([]string, error) {
	var items []string
	if err := r.get(ctx, wishlistKeyPrefix+userID, &items); err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	return items, nil
}

// AddToWishlist appends itemID unless it is already present.
func (r *Repository) AddToWishlist(ctx context.Context, userID, itemID string) ([]string, error) {
	items, err := r.Wishlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	if slices.Contains(items, itemID) {
		return items, nil
	}
	items = append(items, itemID)
	if err := r.put(ctx, wishlistKeyPrefix+userID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveFromWishlist drops itemID from the wishlist.
func (r *Repository) RemoveFromWishlist(ctx context.Context, userID, itemID string) ([]string, error) {
	items, err := r.Wishlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	items = slices.DeleteFunc(items, func(id string) bool { return id == itemID })
	if err := r.put(ctx, wishlistKeyPrefix+userID, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) get(ctx context.Context, key string, v interface{}) error {
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (r *Repository) put(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// Ready reports whether measurements are usable for fit prediction.
// The app treats zero values as "not measured yet".
func Ready(m domain.BodyMeasurements) bool {
	return m.Bust > 0 && m.Waist > 0 && m.Hip > 0
}
