package firestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"haul/internal/domain"
	"haul/internal/repository"
)

func TestToProfile(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	p := toProfile("u1", userDocument{Name: "Ana", City: "Recife", Type: "user", Status: "inactive", CreatedAt: created})
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, domain.RoleRequester, p.Role)
	assert.False(t, p.IsActive())
	assert.Equal(t, created, p.CreatedAt)

	d := toProfile("d1", userDocument{Type: "driver"})
	assert.Equal(t, domain.RoleDriver, d.Role)
	assert.True(t, d.IsActive())
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want error
	}{
		{"missing document", status.Error(codes.NotFound, "no doc"), repository.ErrNotFound},
		{"backend down", status.Error(codes.Unavailable, "down"), repository.ErrUnavailable},
		{"deadline", context.DeadlineExceeded, repository.ErrUnavailable},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tc.err), tc.want)
		})
	}

	other := errors.New("permission denied")
	assert.Equal(t, other, classify(other))
}
