package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusPending    RideStatus = "pending"
	RideStatusAccepted   RideStatus = "accepted"
	RideStatusInProgress RideStatus = "in_progress"
	RideStatusCompleted  RideStatus = "completed"
	RideStatusCancelled  RideStatus = "cancelled"
)

// rideTransitions lists the statuses reachable from each non-terminal status.
var rideTransitions = map[RideStatus][]RideStatus{
	RideStatusPending:    {RideStatusAccepted, RideStatusCancelled},
	RideStatusAccepted:   {RideStatusInProgress, RideStatusCancelled},
	RideStatusInProgress: {RideStatusCompleted, RideStatusCancelled},
}

// Valid reports whether s is a known ride status.
func (s RideStatus) Valid() bool {
	switch s {
	case RideStatusPending, RideStatusAccepted, RideStatusInProgress,
		RideStatusCompleted, RideStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s RideStatus) IsTerminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s RideStatus) CanTransitionTo(next RideStatus) bool {
	for _, candidate := range rideTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ProductDetail describes the cargo of a product delivery ride.
type ProductDetail struct {
	Description string
	Size        string
	Weight      decimal.Decimal
}

// Ride represents a transport request.
type Ride struct {
	ID                 string
	RequesterID        string
	RequesterName      string
	RequesterPhone     string
	City               string
	OriginAddress      string
	DestinationAddress string
	Price              decimal.Decimal
	IsProduct          bool
	Product            *ProductDetail
	Status             RideStatus
	DriverID           string
	DriverName         string
	DriverPhone        string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	AcceptedAt         time.Time
	StartedAt          time.Time
	CompletedAt        time.Time
	CancelledAt        time.Time
}

// DriverStats summarizes the completed work of a driver.
type DriverStats struct {
	DriverID       string
	CompletedRides int
	TotalEarnings  decimal.Decimal
}
