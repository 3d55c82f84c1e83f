package repository

import (
	"context"

	"haul/internal/domain"
)

// ProfileRepository reads actor profiles owned by the identity side of the
// platform.
type ProfileRepository interface {
	// GetByID retrieves a profile by ID.
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
}
