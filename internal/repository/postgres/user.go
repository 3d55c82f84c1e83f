package postgres

import (
	"context"
	"database/sql"
	"time"

	"haul/internal/domain"
	"haul/internal/repository"
)

var _ repository.ProfileRepository = (*UserRepository)(nil)

// UserRepository implements repository.ProfileRepository using PostgreSQL.
type UserRepository struct {
	conn
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB, queryTimeout time.Duration) *UserRepository {
	return &UserRepository{conn: newConn(db, queryTimeout)}
}

// GetByID retrieves a user profile by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT id, name, email, phone, city, role, status, created_at FROM users WHERE id = $1`

	var p domain.Profile
	err := r.queryRow(ctx, func(row rowScanner) error {
		return row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.City, &p.Role, &p.Status, &p.CreatedAt)
	}, query, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
