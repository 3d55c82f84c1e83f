// Package firestore reads actor profiles from the Firestore "users"
// collection maintained by the identity side of the platform.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"haul/internal/domain"
	"haul/internal/repository"
)

const usersCollection = "users"

// legacyRequesterType is how requester accounts are tagged in user documents.
const legacyRequesterType = "user"

var _ repository.ProfileRepository = (*ProfileRepository)(nil)

// userDocument mirrors a document of the users collection.
type userDocument struct {
	Name      string    `firestore:"name"`
	Email     string    `firestore:"email"`
	Phone     string    `firestore:"phone"`
	City      string    `firestore:"city"`
	Type      string    `firestore:"type"`
	Status    string    `firestore:"status"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// ProfileRepository implements repository.ProfileRepository on Firestore.
type ProfileRepository struct {
	client  *firestore.Client
	timeout time.Duration
}

// NewProfileRepository creates a new ProfileRepository. timeout bounds each
// document read; zero disables the bound.
func NewProfileRepository(client *firestore.Client, timeout time.Duration) *ProfileRepository {
	return &ProfileRepository{client: client, timeout: timeout}
}

// GetByID retrieves the profile stored under users/{id}.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	snap, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, classify(err)
	}

	var doc userDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return toProfile(id, doc), nil
}

func toProfile(id string, doc userDocument) *domain.Profile {
	role := domain.Role(doc.Type)
	if doc.Type == legacyRequesterType {
		role = domain.RoleRequester
	}
	// Accounts created before statuses existed carry none.
	st := domain.ProfileStatus(doc.Status)
	if st == "" {
		st = domain.ProfileStatusActive
	}
	return &domain.Profile{
		ID:        id,
		Name:      doc.Name,
		Email:     doc.Email,
		Phone:     doc.Phone,
		City:      doc.City,
		Role:      role,
		Status:    st,
		CreatedAt: doc.CreatedAt,
	}
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	switch status.Code(err) {
	case codes.NotFound:
		return repository.ErrNotFound
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted, codes.Canceled:
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return err
}
