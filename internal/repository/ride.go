package repository

import (
	"context"

	"haul/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// UpdateIfStatus writes ride only if the stored status still equals
	// expected. Returns ErrNotFound for an unknown ride and ErrConflict when
	// the status has moved on.
	UpdateIfStatus(ctx context.Context, ride *domain.Ride, expected domain.RideStatus) error

	// ListByStatus returns rides in the given status, newest first. An empty
	// city matches every city.
	ListByStatus(ctx context.Context, status domain.RideStatus, city string, page Page) ([]*domain.Ride, error)

	// ListByRequester returns rides created by requesterID, newest first.
	ListByRequester(ctx context.Context, requesterID string, page Page) ([]*domain.Ride, error)

	// ListByDriver returns rides accepted by driverID, newest first.
	ListByDriver(ctx context.Context, driverID string, page Page) ([]*domain.Ride, error)

	// StatsByDriver aggregates completed rides of driverID.
	StatsByDriver(ctx context.Context, driverID string) (*domain.DriverStats, error)
}
