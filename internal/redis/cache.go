package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"haul/internal/domain"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewCacheStore creates a new CacheStore. A non-positive ttl falls back to
// DefaultProfileCacheTTL.
func NewCacheStore(client redis.Cmdable, ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		ttl = DefaultProfileCacheTTL
	}
	return &CacheStore{client: client, ttl: ttl}
}

// DefaultProfileCacheTTL bounds how long a deactivated account can keep
// acting when nobody invalidates its cached profile.
const DefaultProfileCacheTTL = 5 * time.Second

const profileCachePrefix = "cache:profile:"

// CachedProfile represents a cached profile entity.
type CachedProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	City      string    `json:"city"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// GetProfile retrieves a profile from cache. Returns nil, nil on a miss.
func (s *CacheStore) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	data, err := s.client.Get(ctx, profileCachePrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cached CachedProfile
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return &domain.Profile{
		ID:        cached.ID,
		Name:      cached.Name,
		Email:     cached.Email,
		Phone:     cached.Phone,
		City:      cached.City,
		Role:      domain.Role(cached.Role),
		Status:    domain.ProfileStatus(cached.Status),
		CreatedAt: cached.CreatedAt,
	}, nil
}

// SetProfile stores a profile in cache.
func (s *CacheStore) SetProfile(ctx context.Context, p *domain.Profile) error {
	data, err := json.Marshal(CachedProfile{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		City:      p.City,
		Role:      string(p.Role),
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, profileCachePrefix+p.ID, data, s.ttl).Err()
}

// InvalidateProfile removes a profile from cache.
func (s *CacheStore) InvalidateProfile(ctx context.Context, id string) error {
	return s.client.Del(ctx, profileCachePrefix+id).Err()
}
