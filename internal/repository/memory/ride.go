package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"haul/internal/domain"
	"haul/internal/repository"
)

// RideRepository is the in-memory repository.RideRepository.
type RideRepository struct {
	view
}

func copyRide(r *domain.Ride) *domain.Ride {
	cp := *r
	if r.Product != nil {
		product := *r.Product
		cp.Product = &product
	}
	return &cp
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	return r.write(ctx, OpRideCreate, func(s *state) error {
		if _, ok := s.rides[ride.ID]; ok {
			return repository.ErrConflict
		}
		s.rides[ride.ID] = copyRide(ride)
		s.rideOrder = append(s.rideOrder, ride.ID)
		return nil
	})
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	var ride *domain.Ride
	err := r.read(ctx, func(s *state) error {
		stored, ok := s.rides[id]
		if !ok {
			return repository.ErrNotFound
		}
		ride = copyRide(stored)
		return nil
	})
	return ride, err
}

// UpdateIfStatus replaces the stored ride when its status equals expected.
func (r *RideRepository) UpdateIfStatus(ctx context.Context, ride *domain.Ride, expected domain.RideStatus) error {
	return r.write(ctx, OpRideUpdate, func(s *state) error {
		stored, ok := s.rides[ride.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if stored.Status != expected {
			return repository.ErrConflict
		}
		s.rides[ride.ID] = copyRide(ride)
		return nil
	})
}

// ListByStatus returns rides in status, optionally restricted to a city.
func (r *RideRepository) ListByStatus(ctx context.Context, status domain.RideStatus, city string, page repository.Page) ([]*domain.Ride, error) {
	return r.list(ctx, page, func(ride *domain.Ride) bool {
		return ride.Status == status && (city == "" || ride.City == city)
	})
}

// ListByRequester returns rides created by requesterID.
func (r *RideRepository) ListByRequester(ctx context.Context, requesterID string, page repository.Page) ([]*domain.Ride, error) {
	return r.list(ctx, page, func(ride *domain.Ride) bool {
		return ride.RequesterID == requesterID
	})
}

// ListByDriver returns rides accepted by driverID.
func (r *RideRepository) ListByDriver(ctx context.Context, driverID string, page repository.Page) ([]*domain.Ride, error) {
	return r.list(ctx, page, func(ride *domain.Ride) bool {
		return ride.DriverID == driverID
	})
}

// StatsByDriver counts completed rides of driverID and sums their prices.
func (r *RideRepository) StatsByDriver(ctx context.Context, driverID string) (*domain.DriverStats, error) {
	stats := &domain.DriverStats{DriverID: driverID, TotalEarnings: decimal.Zero}
	err := r.read(ctx, func(s *state) error {
		for _, ride := range s.rides {
			if ride.DriverID == driverID && ride.Status == domain.RideStatusCompleted {
				stats.CompletedRides++
				stats.TotalEarnings = stats.TotalEarnings.Add(ride.Price)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// list walks rides newest first.
func (r *RideRepository) list(ctx context.Context, page repository.Page, match func(*domain.Ride) bool) ([]*domain.Ride, error) {
	var matched []*domain.Ride
	err := r.read(ctx, func(s *state) error {
		for i := len(s.rideOrder) - 1; i >= 0; i-- {
			ride := s.rides[s.rideOrder[i]]
			if match(ride) {
				matched = append(matched, copyRide(ride))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paginate(matched, page), nil
}
