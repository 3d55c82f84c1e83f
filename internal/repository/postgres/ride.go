package postgres

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"haul/internal/domain"
	"haul/internal/repository"
)

const rideColumns = `id, requester_id, requester_name, requester_phone, city, origin_address, destination_address,
		price, is_product, product_description, product_size, product_weight, status,
		driver_id, driver_name, driver_phone, created_at, updated_at, accepted_at, started_at, completed_at, cancelled_at`

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	conn
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{conn: newConn(db, DefaultQueryTimeout)}
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`

	var description, size sql.NullString
	var weight decimal.NullDecimal
	if ride.Product != nil {
		description = nullString(ride.Product.Description)
		size = nullString(ride.Product.Size)
		weight = decimal.NewNullDecimal(ride.Product.Weight)
	}

	_, err := r.exec(ctx, query,
		ride.ID,
		ride.RequesterID,
		ride.RequesterName,
		ride.RequesterPhone,
		ride.City,
		ride.OriginAddress,
		ride.DestinationAddress,
		ride.Price,
		ride.IsProduct,
		description,
		size,
		weight,
		ride.Status,
		nullString(ride.DriverID),
		nullString(ride.DriverName),
		nullString(ride.DriverPhone),
		ride.CreatedAt,
		ride.UpdatedAt,
		nullTime(ride.AcceptedAt),
		nullTime(ride.StartedAt),
		nullTime(ride.CompletedAt),
		nullTime(ride.CancelledAt),
	)
	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	var ride *domain.Ride
	err := r.queryRow(ctx, func(row rowScanner) error {
		var err error
		ride, err = scanRide(row)
		return err
	}, query, id)
	if err != nil {
		return nil, err
	}
	return ride, nil
}

// UpdateIfStatus writes the mutable fields of ride when the stored status
// equals expected.
func (r *RideRepository) UpdateIfStatus(ctx context.Context, ride *domain.Ride, expected domain.RideStatus) error {
	query := `
		UPDATE rides
		SET status = $1, driver_id = $2, driver_name = $3, driver_phone = $4, updated_at = $5,
			accepted_at = $6, started_at = $7, completed_at = $8, cancelled_at = $9
		WHERE id = $10 AND status = $11
	`

	n, err := r.exec(ctx, query,
		ride.Status,
		nullString(ride.DriverID),
		nullString(ride.DriverName),
		nullString(ride.DriverPhone),
		ride.UpdatedAt,
		nullTime(ride.AcceptedAt),
		nullTime(ride.StartedAt),
		nullTime(ride.CompletedAt),
		nullTime(ride.CancelledAt),
		ride.ID,
		expected,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return r.missOrConflict(ctx, ride.ID)
	}
	return nil
}

func (r *RideRepository) missOrConflict(ctx context.Context, id string) error {
	var exists bool
	err := r.queryRow(ctx, func(row rowScanner) error {
		return row.Scan(&exists)
	}, `SELECT EXISTS (SELECT 1 FROM rides WHERE id = $1)`, id)
	if err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}

// ListByStatus returns rides in status, optionally restricted to a city.
func (r *RideRepository) ListByStatus(ctx context.Context, status domain.RideStatus, city string, page repository.Page) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides
		WHERE status = $1 AND ($2 = '' OR city = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	return r.list(ctx, query, status, city, page.Limit, page.Offset)
}

// ListByRequester returns rides created by requesterID.
func (r *RideRepository) ListByRequester(ctx context.Context, requesterID string, page repository.Page) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides
		WHERE requester_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	return r.list(ctx, query, requesterID, page.Limit, page.Offset)
}

// ListByDriver returns rides accepted by driverID.
func (r *RideRepository) ListByDriver(ctx context.Context, driverID string, page repository.Page) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides
		WHERE driver_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	return r.list(ctx, query, driverID, page.Limit, page.Offset)
}

// StatsByDriver counts completed rides of driverID and sums their prices.
func (r *RideRepository) StatsByDriver(ctx context.Context, driverID string) (*domain.DriverStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(price), 0)
		FROM rides WHERE driver_id = $1 AND status = $2
	`

	stats := &domain.DriverStats{DriverID: driverID}
	err := r.queryRow(ctx, func(row rowScanner) error {
		return row.Scan(&stats.CompletedRides, &stats.TotalEarnings)
	}, query, driverID, domain.RideStatusCompleted)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *RideRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Ride, error) {
	var rides []*domain.Ride
	err := r.query(ctx, func(row rowScanner) error {
		ride, err := scanRide(row)
		if err != nil {
			return err
		}
		rides = append(rides, ride)
		return nil
	}, query, args...)
	return rides, err
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var description, size sql.NullString
	var weight decimal.NullDecimal
	var driverID, driverName, driverPhone sql.NullString
	var acceptedAt, startedAt, completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&ride.ID,
		&ride.RequesterID,
		&ride.RequesterName,
		&ride.RequesterPhone,
		&ride.City,
		&ride.OriginAddress,
		&ride.DestinationAddress,
		&ride.Price,
		&ride.IsProduct,
		&description,
		&size,
		&weight,
		&ride.Status,
		&driverID,
		&driverName,
		&driverPhone,
		&ride.CreatedAt,
		&ride.UpdatedAt,
		&acceptedAt,
		&startedAt,
		&completedAt,
		&cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	if ride.IsProduct {
		ride.Product = &domain.ProductDetail{
			Description: description.String,
			Size:        size.String,
			Weight:      weight.Decimal,
		}
	}
	ride.DriverID = driverID.String
	ride.DriverName = driverName.String
	ride.DriverPhone = driverPhone.String
	ride.AcceptedAt = acceptedAt.Time
	ride.StartedAt = startedAt.Time
	ride.CompletedAt = completedAt.Time
	ride.CancelledAt = cancelledAt.Time

	return &ride, nil
}
