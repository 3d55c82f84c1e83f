package memory

import (
	"context"
	"sync"

	"haul/internal/domain"
	"haul/internal/repository"
)

var _ repository.ProfileRepository = (*ProfileRepository)(nil)

// ProfileRepository is an in-memory repository.ProfileRepository.
type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*domain.Profile
}

// NewProfileRepository creates a ProfileRepository holding profiles.
func NewProfileRepository(profiles ...*domain.Profile) *ProfileRepository {
	r := &ProfileRepository{profiles: make(map[string]*domain.Profile)}
	for _, p := range profiles {
		r.Put(p)
	}
	return r
}

// Put adds or replaces a profile.
func (r *ProfileRepository) Put(p *domain.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.profiles[p.ID] = &cp
}

// GetByID retrieves a profile by ID.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}
