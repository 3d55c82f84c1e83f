package service_test

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"haul/internal/domain"
	"haul/internal/repository/memory"
	"haul/internal/service"
)

var (
	requester = &domain.Profile{
		ID:     "req-1",
		Name:   "Ana",
		Phone:  "+55 81 5555-0001",
		City:   "Recife",
		Role:   domain.RoleRequester,
		Status: domain.ProfileStatusActive,
	}
	otherRequester = &domain.Profile{ID: "req-2", Name: "Caio", City: "Olinda", Role: domain.RoleRequester, Status: domain.ProfileStatusActive}
	driver         = &domain.Profile{ID: "drv-1", Name: "Bruno", Phone: "+55 81 5555-0002", Role: domain.RoleDriver, Status: domain.ProfileStatusActive}
	otherDriver    = &domain.Profile{ID: "drv-2", Name: "Davi", Role: domain.RoleDriver, Status: domain.ProfileStatusActive}
)

type fixture struct {
	store  *memory.Store
	rides  *service.RideService
	wallet *service.WalletService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memory.NewStore()
	notifier := service.NewNotificationService(log)
	wallet := service.NewWalletService(store, notifier, log)
	return &fixture{
		store:  store,
		rides:  service.NewRideService(store, wallet, notifier, log),
		wallet: wallet,
	}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) createRide(t *testing.T, price string) *domain.Ride {
	t.Helper()
	ride, err := f.rides.CreateRide(context.Background(), service.CreateRideRequest{
		Requester:          requester,
		OriginAddress:      "Rua da Aurora, 100",
		DestinationAddress: "Av. Boa Viagem, 500",
		Price:              money(price),
	})
	require.NoError(t, err)
	return ride
}

// startRide creates a ride, has driver accept it and moves it to in_progress.
func (f *fixture) startRide(t *testing.T, price string) *domain.Ride {
	t.Helper()
	ctx := context.Background()
	ride := f.createRide(t, price)

	_, err := f.rides.AcceptRide(ctx, service.AcceptRideRequest{RideID: ride.ID, Driver: driver})
	require.NoError(t, err)

	ride, err = f.rides.UpdateStatus(ctx, service.UpdateStatusRequest{
		RideID: ride.ID,
		Actor:  driver.Actor(),
		Status: domain.RideStatusInProgress,
	})
	require.NoError(t, err)
	return ride
}

// fund credits amount to driverID through a standalone ride earning.
func (f *fixture) fund(t *testing.T, driverID, amount string) {
	t.Helper()
	_, err := f.wallet.CreditRideEarning(context.Background(), service.CreditRequest{
		DriverID: driverID,
		Amount:   money(amount),
		RideID:   "seed-" + amount,
	})
	require.NoError(t, err)
}

// assertLedgerConsistent checks balance == sum(ledger) and balance >= 0.
func (f *fixture) assertLedgerConsistent(t *testing.T, driverID string) {
	t.Helper()
	rec, err := f.wallet.Reconcile(context.Background(), driverID)
	require.NoError(t, err)
	require.Truef(t, rec.Consistent, "balance %s != ledger %s", rec.Balance, rec.LedgerSum)
	require.False(t, rec.Balance.IsNegative(), "negative balance %s", rec.Balance)
}

var bank = domain.BankDetails{Bank: "001", Agency: "1234", Account: "56789-0"}
