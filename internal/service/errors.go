package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the services wraps exactly one of
// these, so callers can classify failures with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrStoreUnavailable  = errors.New("store temporarily unavailable")
)

var (
	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = fmt.Errorf("%w: ride id is required", ErrValidation)

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = fmt.Errorf("%w: driver id is required", ErrValidation)

	// ErrInvalidUserID is returned when user ID is empty.
	ErrInvalidUserID = fmt.Errorf("%w: user id is required", ErrValidation)

	// ErrInvalidWithdrawalID is returned when withdrawal ID is empty.
	ErrInvalidWithdrawalID = fmt.Errorf("%w: withdrawal id is required", ErrValidation)

	// ErrInvalidPrice is returned when a ride price is not a positive amount in cents.
	ErrInvalidPrice = fmt.Errorf("%w: price must be positive, at most 999999999999.99, with at most two decimal places", ErrValidation)

	// ErrMissingAddress is returned when origin or destination is blank.
	ErrMissingAddress = fmt.Errorf("%w: origin and destination addresses are required", ErrValidation)

	// ErrInvalidProduct is returned when a product ride lacks complete cargo details.
	ErrInvalidProduct = fmt.Errorf("%w: product rides require description, size and a positive weight", ErrValidation)

	// ErrUnexpectedProduct is returned when cargo details are sent for a passenger ride.
	ErrUnexpectedProduct = fmt.Errorf("%w: product details are only accepted when is_product is set", ErrValidation)

	// ErrInvalidStatus is returned when a status update targets an unsupported status.
	ErrInvalidStatus = fmt.Errorf("%w: status must be one of in_progress, completed, cancelled", ErrValidation)

	// ErrInvalidAmount is returned when a wallet amount is not a positive amount in cents.
	ErrInvalidAmount = fmt.Errorf("%w: amount must be positive, at most 999999999999.99, with at most two decimal places", ErrValidation)

	// ErrInvalidBankDetails is returned when any bank field is blank.
	ErrInvalidBankDetails = fmt.Errorf("%w: bank, agency and account are required", ErrValidation)

	// ErrInvalidTransactionType is returned for an unknown ledger type filter.
	ErrInvalidTransactionType = fmt.Errorf("%w: unknown transaction type", ErrValidation)

	// ErrInvalidDateRange is returned when the start of a range is after its end.
	ErrInvalidDateRange = fmt.Errorf("%w: start date must not be after end date", ErrValidation)

	// ErrRideNotFound is returned when the ride does not exist.
	ErrRideNotFound = fmt.Errorf("%w: ride not found", ErrNotFound)

	// ErrWithdrawalNotFound is returned when the withdrawal request does not exist.
	ErrWithdrawalNotFound = fmt.Errorf("%w: withdrawal not found", ErrNotFound)

	// ErrProfileNotFound is returned when an authenticated identity has no profile.
	ErrProfileNotFound = fmt.Errorf("%w: user not found", ErrNotFound)

	// ErrRideNotAvailable is returned when accepting a ride that is no longer pending.
	ErrRideNotAvailable = fmt.Errorf("%w: ride is no longer available", ErrConflict)

	// ErrInvalidTransition is returned when the requested status is not reachable.
	ErrInvalidTransition = fmt.Errorf("%w: illegal status transition", ErrConflict)

	// ErrWithdrawalNotPending is returned when a withdrawal has already been settled.
	ErrWithdrawalNotPending = fmt.Errorf("%w: withdrawal is not pending", ErrConflict)

	// ErrBalanceLimitExceeded is returned when a credit would push a wallet past the largest storable balance.
	ErrBalanceLimitExceeded = fmt.Errorf("%w: wallet balance limit exceeded", ErrConflict)

	// ErrConcurrentUpdate is returned when a unit of work kept losing races.
	ErrConcurrentUpdate = fmt.Errorf("%w: record changed concurrently, retry", ErrConflict)

	// ErrNotRideParticipant is returned when the actor is neither requester nor driver of the ride.
	ErrNotRideParticipant = fmt.Errorf("%w: not a participant of this ride", ErrForbidden)

	// ErrNotWithdrawalOwner is returned when a driver touches another driver's withdrawal.
	ErrNotWithdrawalOwner = fmt.Errorf("%w: withdrawal belongs to another driver", ErrForbidden)

	// ErrDriverOnly is returned when a non-driver calls a driver operation.
	ErrDriverOnly = fmt.Errorf("%w: only drivers can perform this action", ErrForbidden)

	// ErrRequesterOnly is returned when a non-requester calls a requester operation.
	ErrRequesterOnly = fmt.Errorf("%w: only requesters can perform this action", ErrForbidden)

	// ErrInactiveAccount is returned when an inactive actor attempts a mutation.
	ErrInactiveAccount = fmt.Errorf("%w: account is inactive", ErrForbidden)
)
