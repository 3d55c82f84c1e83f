package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haul/internal/domain"
	"haul/internal/repository"
)

var rideColumnNames = []string{
	"id", "requester_id", "requester_name", "requester_phone", "city", "origin_address", "destination_address",
	"price", "is_product", "product_description", "product_size", "product_weight", "status",
	"driver_id", "driver_name", "driver_phone", "created_at", "updated_at", "accepted_at", "started_at", "completed_at", "cancelled_at",
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestRideRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRideRepository(db)
	now := time.Now().UTC()

	ride := &domain.Ride{
		ID:                 "ride-1",
		RequesterID:        "req-1",
		OriginAddress:      "A",
		DestinationAddress: "B",
		Price:              decimal.RequireFromString("50.00"),
		IsProduct:          true,
		Product:            &domain.ProductDetail{Description: "box", Size: "M", Weight: decimal.NewFromInt(3)},
		Status:             domain.RideStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	mock.ExpectExec("INSERT INTO rides").
		WithArgs("ride-1", "req-1", "", "", "", "A", "B", ride.Price, true,
			"box", "M", decimal.NewFromInt(3), domain.RideStatusPending,
			nil, nil, nil, now, now, nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), ride))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRideRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRideRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(rideColumnNames).AddRow(
			"ride-1", "req-1", "Ana", "555", "Recife", "A", "B",
			"50.00", false, nil, nil, nil, "accepted",
			"drv-1", "Bruno", "777", now, now, now, nil, nil, nil,
		)
		mock.ExpectQuery("SELECT (.+) FROM rides WHERE id = \\$1").
			WithArgs("ride-1").
			WillReturnRows(rows)

		ride, err := repo.GetByID(ctx, "ride-1")
		require.NoError(t, err)
		assert.Equal(t, domain.RideStatusAccepted, ride.Status)
		assert.Equal(t, "drv-1", ride.DriverID)
		assert.True(t, ride.Price.Equal(decimal.RequireFromString("50")))
		assert.Nil(t, ride.Product)
		assert.True(t, ride.CompletedAt.IsZero())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM rides WHERE id = \\$1").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(rideColumnNames))

		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRideRepository_UpdateIfStatus(t *testing.T) {
	ctx := context.Background()
	ride := &domain.Ride{ID: "ride-1", Status: domain.RideStatusAccepted, DriverID: "drv-1", UpdatedAt: time.Now()}

	t.Run("applied", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRideRepository(db)

		mock.ExpectExec("UPDATE rides").
			WithArgs(domain.RideStatusAccepted, "drv-1", nil, nil, sqlmock.AnyArg(), nil, nil, nil, nil, "ride-1", domain.RideStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateIfStatus(ctx, ride, domain.RideStatusPending))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status moved on", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRideRepository(db)

		mock.ExpectExec("UPDATE rides").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("ride-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := repo.UpdateIfStatus(ctx, ride, domain.RideStatusPending)
		assert.ErrorIs(t, err, repository.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown ride", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRideRepository(db)

		mock.ExpectExec("UPDATE rides").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("ride-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		err := repo.UpdateIfStatus(ctx, ride, domain.RideStatusPending)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRideRepository_ListByStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRideRepository(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(rideColumnNames).
		AddRow("ride-2", "req-1", "", "", "Recife", "A", "B", "20", true, "sofa", "L", "40", "pending",
			nil, nil, nil, now, now, nil, nil, nil, nil).
		AddRow("ride-1", "req-1", "", "", "Recife", "A", "B", "10", false, nil, nil, nil, "pending",
			nil, nil, nil, now.Add(-time.Minute), now, nil, nil, nil, nil)

	mock.ExpectQuery("SELECT (.+) FROM rides\\s+WHERE status = \\$1").
		WithArgs(domain.RideStatusPending, "Recife", 51, 0).
		WillReturnRows(rows)

	rides, err := repo.ListByStatus(context.Background(), domain.RideStatusPending, "Recife", repository.Page{Limit: 51})
	require.NoError(t, err)
	require.Len(t, rides, 2)
	assert.Equal(t, "ride-2", rides[0].ID)
	require.NotNil(t, rides[0].Product)
	assert.Equal(t, "sofa", rides[0].Product.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRideRepository_StatsByDriver(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRideRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\), COALESCE\\(SUM\\(price\\), 0\\)").
		WithArgs("drv-1", domain.RideStatusCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(3, "120.50"))

	stats, err := repo.StatsByDriver(context.Background(), "drv-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.CompletedRides)
	assert.True(t, stats.TotalEarnings.Equal(decimal.RequireFromString("120.50")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
