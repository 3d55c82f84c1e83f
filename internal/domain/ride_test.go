package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRideStatus_CanTransitionTo(t *testing.T) {
	t.Parallel()

	all := []RideStatus{
		RideStatusPending,
		RideStatusAccepted,
		RideStatusInProgress,
		RideStatusCompleted,
		RideStatusCancelled,
	}
	legal := map[[2]RideStatus]bool{
		{RideStatusPending, RideStatusAccepted}:     true,
		{RideStatusPending, RideStatusCancelled}:    true,
		{RideStatusAccepted, RideStatusInProgress}:  true,
		{RideStatusAccepted, RideStatusCancelled}:   true,
		{RideStatusInProgress, RideStatusCompleted}: true,
		{RideStatusInProgress, RideStatusCancelled}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := legal[[2]RideStatus{from, to}]
			assert.Equalf(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestRideStatus_IsTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, RideStatusCompleted.IsTerminal())
	assert.True(t, RideStatusCancelled.IsTerminal())
	assert.False(t, RideStatusPending.IsTerminal())
	assert.False(t, RideStatusAccepted.IsTerminal())
	assert.False(t, RideStatusInProgress.IsTerminal())
}

func TestRideStatus_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, RideStatusInProgress.Valid())
	assert.False(t, RideStatus("IN_TRIP").Valid())
	assert.False(t, RideStatus("").Valid())
}
