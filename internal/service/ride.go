package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"haul/internal/domain"
	"haul/internal/repository"
)

// RideService drives rides through their lifecycle.
type RideService struct {
	store               repository.Store
	earnings            EarningsCrediter
	notificationService *NotificationService
	log                 logrus.FieldLogger
}

// NewRideService creates a new RideService. Completed rides are paid out
// through earnings within the completing transaction.
func NewRideService(
	store repository.Store,
	earnings EarningsCrediter,
	notificationService *NotificationService,
	log logrus.FieldLogger,
) *RideService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RideService{
		store:               store,
		earnings:            earnings,
		notificationService: notificationService,
		log:                 log,
	}
}

// CreateRideRequest contains the parameters for creating a ride.
type CreateRideRequest struct {
	Requester          *domain.Profile
	OriginAddress      string
	DestinationAddress string
	Price              decimal.Decimal
	IsProduct          bool
	Product            *domain.ProductDetail
}

// CreateRide creates a new ride in pending state.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) (*domain.Ride, error) {
	if req.Requester == nil || req.Requester.Role != domain.RoleRequester {
		return nil, ErrRequesterOnly
	}
	if err := s.validateCreateRequest(&req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ride := &domain.Ride{
		ID:                 uuid.New().String(),
		RequesterID:        req.Requester.ID,
		RequesterName:      req.Requester.Name,
		RequesterPhone:     req.Requester.Phone,
		City:               req.Requester.City,
		OriginAddress:      req.OriginAddress,
		DestinationAddress: req.DestinationAddress,
		Price:              req.Price,
		IsProduct:          req.IsProduct,
		Product:            req.Product,
		Status:             domain.RideStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.store.Rides().Create(ctx, ride); err != nil {
		return nil, storeError(err)
	}

	s.notificationService.NotifyRideCreated(ctx, ride)
	return ride, nil
}

// validateCreateRequest validates and normalizes the create ride request.
func (s *RideService) validateCreateRequest(req *CreateRideRequest) error {
	req.OriginAddress = strings.TrimSpace(req.OriginAddress)
	req.DestinationAddress = strings.TrimSpace(req.DestinationAddress)
	if req.OriginAddress == "" || req.DestinationAddress == "" {
		return ErrMissingAddress
	}

	if !validMoney(req.Price) {
		return ErrInvalidPrice
	}

	if !req.IsProduct {
		if req.Product != nil {
			return ErrUnexpectedProduct
		}
		return nil
	}

	p := req.Product
	if p == nil {
		return ErrInvalidProduct
	}
	p.Description = strings.TrimSpace(p.Description)
	p.Size = strings.TrimSpace(p.Size)
	if p.Description == "" || p.Size == "" || !inMoneyRange(p.Weight) {
		return ErrInvalidProduct
	}
	return nil
}

// AcceptRideRequest contains the parameters for accepting a ride.
type AcceptRideRequest struct {
	RideID string
	Driver *domain.Profile
}

// AcceptRide assigns a pending ride to a driver. Among concurrent accepts
// exactly one succeeds; the others see ErrRideNotAvailable.
func (s *RideService) AcceptRide(ctx context.Context, req AcceptRideRequest) (*domain.Ride, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if req.Driver == nil || req.Driver.Role != domain.RoleDriver {
		return nil, ErrDriverOnly
	}

	var ride *domain.Ride
	err := runInTx(ctx, s.store, func(tx repository.Store) error {
		current, err := tx.Rides().GetByID(ctx, req.RideID)
		if err != nil {
			return notFound(err, ErrRideNotFound)
		}
		if current.Status != domain.RideStatusPending {
			return ErrRideNotAvailable
		}

		now := time.Now().UTC()
		current.Status = domain.RideStatusAccepted
		current.DriverID = req.Driver.ID
		current.DriverName = req.Driver.Name
		current.DriverPhone = req.Driver.Phone
		current.AcceptedAt = now
		current.UpdatedAt = now

		if err := tx.Rides().UpdateIfStatus(ctx, current, domain.RideStatusPending); err != nil {
			return err
		}
		ride = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"ride_id": ride.ID, "driver_id": ride.DriverID}).Info("ride accepted")
	s.notificationService.NotifyRideAccepted(ctx, ride)
	return ride, nil
}

// UpdateStatusRequest contains the parameters for moving a ride forward.
type UpdateStatusRequest struct {
	RideID string
	Actor  domain.Actor
	Status domain.RideStatus
}

// UpdateStatus applies a status transition requested by a ride participant.
// Completing a ride credits its price to the driver's wallet in the same
// transaction as the status change.
func (s *RideService) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*domain.Ride, error) {
	switch req.Status {
	case domain.RideStatusInProgress, domain.RideStatusCompleted, domain.RideStatusCancelled:
	default:
		return nil, ErrInvalidStatus
	}
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}

	var ride *domain.Ride
	var previous domain.RideStatus
	err := runInTx(ctx, s.store, func(tx repository.Store) error {
		current, err := tx.Rides().GetByID(ctx, req.RideID)
		if err != nil {
			return notFound(err, ErrRideNotFound)
		}
		if err := authorizeParticipant(current, req.Actor); err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(req.Status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, req.Status)
		}

		previous = current.Status
		now := time.Now().UTC()
		current.Status = req.Status
		current.UpdatedAt = now
		switch req.Status {
		case domain.RideStatusInProgress:
			current.StartedAt = now
		case domain.RideStatusCompleted:
			current.CompletedAt = now
		case domain.RideStatusCancelled:
			current.CancelledAt = now
		}

		if err := tx.Rides().UpdateIfStatus(ctx, current, previous); err != nil {
			return err
		}

		if req.Status == domain.RideStatusCompleted {
			if _, err := s.earnings.CreditRideEarningInTx(ctx, tx, CreditRequest{
				DriverID: current.DriverID,
				Amount:   current.Price,
				RideID:   current.ID,
			}); err != nil {
				return err
			}
		}

		ride = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"ride_id":  ride.ID,
		"from":     previous,
		"to":       ride.Status,
		"actor_id": req.Actor.ID,
	}).Info("ride status changed")
	s.notificationService.NotifyRideStatusChanged(ctx, ride, req.Actor)
	return ride, nil
}

// authorizeParticipant checks that actor is the requester or the assigned
// driver of ride, according to the actor's role.
func authorizeParticipant(ride *domain.Ride, actor domain.Actor) error {
	switch actor.Role {
	case domain.RoleDriver:
		if ride.DriverID != "" && ride.DriverID == actor.ID {
			return nil
		}
	case domain.RoleRequester:
		if ride.RequesterID == actor.ID {
			return nil
		}
	}
	return ErrNotRideParticipant
}

// GetRide returns a ride visible to actor: its requester, its driver, or any
// driver while the ride is still pending.
func (s *RideService) GetRide(ctx context.Context, rideID string, actor domain.Actor) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.store.Rides().GetByID(ctx, rideID)
	if err != nil {
		return nil, storeError(notFound(err, ErrRideNotFound))
	}

	if ride.RequesterID == actor.ID {
		return ride, nil
	}
	if actor.Role == domain.RoleDriver && (ride.DriverID == actor.ID || ride.Status == domain.RideStatusPending) {
		return ride, nil
	}
	return nil, ErrNotRideParticipant
}

// ListAvailable returns pending rides, newest first, optionally for one city.
func (s *RideService) ListAvailable(ctx context.Context, city string, offset int) (*ResultPage[*domain.Ride], error) {
	city = strings.TrimSpace(city)
	return listPage(repository.Page{Offset: offset}, func(p repository.Page) ([]*domain.Ride, error) {
		return s.store.Rides().ListByStatus(ctx, domain.RideStatusPending, city, p)
	})
}

// ListHistory returns the rides actor requested (requesters) or accepted
// (drivers), newest first.
func (s *RideService) ListHistory(ctx context.Context, actor domain.Actor, offset int) (*ResultPage[*domain.Ride], error) {
	page := repository.Page{Offset: offset}
	switch actor.Role {
	case domain.RoleDriver:
		return listPage(page, func(p repository.Page) ([]*domain.Ride, error) {
			return s.store.Rides().ListByDriver(ctx, actor.ID, p)
		})
	case domain.RoleRequester:
		return listPage(page, func(p repository.Page) ([]*domain.Ride, error) {
			return s.store.Rides().ListByRequester(ctx, actor.ID, p)
		})
	default:
		return nil, ErrForbidden
	}
}

// DriverStats summarizes the completed rides of driverID.
func (s *RideService) DriverStats(ctx context.Context, driverID string) (*domain.DriverStats, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	stats, err := s.store.Rides().StatsByDriver(ctx, driverID)
	if err != nil {
		return nil, storeError(err)
	}
	return stats, nil
}
