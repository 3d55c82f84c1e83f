package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"haul/internal/domain"
	"haul/internal/repository"
)

// ProfileCache is a read-through cache for profiles. GetProfile returns
// nil, nil on a miss.
type ProfileCache interface {
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	SetProfile(ctx context.Context, profile *domain.Profile) error
	InvalidateProfile(ctx context.Context, id string) error
}

// ProfileService resolves authenticated identities to profiles.
type ProfileService struct {
	profileRepo repository.ProfileRepository
	cache       ProfileCache
	log         logrus.FieldLogger
}

// NewProfileService creates a new ProfileService. cache may be nil.
func NewProfileService(profileRepo repository.ProfileRepository, cache ProfileCache, log logrus.FieldLogger) *ProfileService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ProfileService{
		profileRepo: profileRepo,
		cache:       cache,
		log:         log,
	}
}

// GetProfile returns the profile of id, consulting the cache first. Cache
// failures fall through to the repository.
func (s *ProfileService) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	if s.cache != nil {
		cached, err := s.cache.GetProfile(ctx, id)
		if err != nil {
			s.log.WithError(err).WithField("user_id", id).Warn("profile cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(notFound(err, ErrProfileNotFound))
	}

	if s.cache != nil {
		if err := s.cache.SetProfile(ctx, profile); err != nil {
			s.log.WithError(err).WithField("user_id", id).Warn("profile cache write failed")
		}
	}
	return profile, nil
}

// InvalidateProfile drops the cached copy of id so that the next request sees
// the stored profile, e.g. right after an account is deactivated.
func (s *ProfileService) InvalidateProfile(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidUserID
	}
	if s.cache == nil {
		return nil
	}
	if err := s.cache.InvalidateProfile(ctx, id); err != nil {
		s.log.WithError(err).WithField("user_id", id).Error("profile cache invalidation failed")
		return fmt.Errorf("%w: profile cache: %v", ErrStoreUnavailable, err)
	}
	s.log.WithField("user_id", id).Info("profile cache invalidated")
	return nil
}
