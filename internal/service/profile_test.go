package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haul/internal/domain"
	"haul/internal/repository/memory"
	"haul/internal/service"
)

type stubCache struct {
	profiles      map[string]*domain.Profile
	getErr        error
	invalidateErr error
	sets          int
}

func (c *stubCache) GetProfile(_ context.Context, id string) (*domain.Profile, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.profiles[id], nil
}

func (c *stubCache) SetProfile(_ context.Context, p *domain.Profile) error {
	c.sets++
	c.profiles[p.ID] = p
	return nil
}

func (c *stubCache) InvalidateProfile(_ context.Context, id string) error {
	if c.invalidateErr != nil {
		return c.invalidateErr
	}
	delete(c.profiles, id)
	return nil
}

func TestProfileService_ReadThrough(t *testing.T) {
	repo := memory.NewProfileRepository(driver)
	cache := &stubCache{profiles: map[string]*domain.Profile{}}
	svc := service.NewProfileService(repo, cache, nil)
	ctx := context.Background()

	p, err := svc.GetProfile(ctx, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, driver.Name, p.Name)
	assert.Equal(t, 1, cache.sets)

	// Served from cache even after the repository changes.
	repo.Put(&domain.Profile{ID: driver.ID, Name: "renamed", Role: domain.RoleDriver})
	p, err = svc.GetProfile(ctx, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, driver.Name, p.Name)
	assert.Equal(t, 1, cache.sets)
}

func TestProfileService_CacheFailureFallsThrough(t *testing.T) {
	repo := memory.NewProfileRepository(requester)
	cache := &stubCache{profiles: map[string]*domain.Profile{}, getErr: errors.New("redis down")}
	svc := service.NewProfileService(repo, cache, nil)

	p, err := svc.GetProfile(context.Background(), requester.ID)
	require.NoError(t, err)
	assert.Equal(t, requester.ID, p.ID)
}

func TestProfileService_Unknown(t *testing.T) {
	svc := service.NewProfileService(memory.NewProfileRepository(), nil, nil)

	_, err := svc.GetProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, service.ErrProfileNotFound)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestProfileService_InvalidateSeesDeactivation(t *testing.T) {
	repo := memory.NewProfileRepository(driver)
	cache := &stubCache{profiles: map[string]*domain.Profile{}}
	svc := service.NewProfileService(repo, cache, nil)
	ctx := context.Background()

	p, err := svc.GetProfile(ctx, driver.ID)
	require.NoError(t, err)
	require.True(t, p.IsActive())

	repo.Put(&domain.Profile{ID: driver.ID, Name: driver.Name, Role: domain.RoleDriver, Status: domain.ProfileStatusInactive})
	p, err = svc.GetProfile(ctx, driver.ID)
	require.NoError(t, err)
	assert.True(t, p.IsActive(), "cached copy is served until invalidated")

	require.NoError(t, svc.InvalidateProfile(ctx, driver.ID))
	p, err = svc.GetProfile(ctx, driver.ID)
	require.NoError(t, err)
	assert.False(t, p.IsActive())
}

func TestProfileService_InvalidateErrors(t *testing.T) {
	ctx := context.Background()

	svc := service.NewProfileService(memory.NewProfileRepository(), nil, nil)
	assert.ErrorIs(t, svc.InvalidateProfile(ctx, ""), service.ErrValidation)
	assert.NoError(t, svc.InvalidateProfile(ctx, "drv-1"))

	cache := &stubCache{profiles: map[string]*domain.Profile{}, invalidateErr: errors.New("redis down")}
	svc = service.NewProfileService(memory.NewProfileRepository(), cache, nil)
	assert.ErrorIs(t, svc.InvalidateProfile(ctx, "drv-1"), service.ErrStoreUnavailable)
}
