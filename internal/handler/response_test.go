package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haul/internal/repository"
	"haul/internal/service"
)

func TestMapErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrInvalidPrice, http.StatusBadRequest},
		{service.ErrInsufficientFunds, http.StatusBadRequest},
		{service.ErrDriverOnly, http.StatusForbidden},
		{service.ErrNotRideParticipant, http.StatusForbidden},
		{service.ErrRideNotFound, http.StatusNotFound},
		{repository.ErrNotFound, http.StatusNotFound},
		{service.ErrRideNotAvailable, http.StatusConflict},
		{service.ErrInvalidTransition, http.StatusConflict},
		{service.ErrConcurrentUpdate, http.StatusConflict},
		{service.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("list rides: %w", repository.ErrUnavailable), http.StatusServiceUnavailable},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, mapErrorToHTTPStatus(tt.err))
		})
	}
}

func TestParseTimeParam(t *testing.T) {
	got, err := parseTimeParam("", false)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = parseTimeParam("2024-03-10", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), got)

	got, err = parseTimeParam("2024-03-10", true)
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, 10, got.Day())
	assert.Equal(t, 23, got.Hour())

	got, err = parseTimeParam("2024-03-10T12:30:00Z", true)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Hour())

	_, err = parseTimeParam("10/03/2024", false)
	assert.Error(t, err)
}
