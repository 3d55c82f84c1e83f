package service_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haul/internal/domain"
	"haul/internal/repository"
	"haul/internal/repository/memory"
	"haul/internal/service"
)

// racingStore runs interfere once, right after a transaction lost a
// conditional write, so the retry observes what the competing writer did.
type racingStore struct {
	*memory.Store
	attempts  int
	interfere func()
}

func (s *racingStore) WithTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	s.attempts++
	err := s.Store.WithTransaction(ctx, fn)
	if s.interfere != nil && errors.Is(err, repository.ErrConflict) {
		interfere := s.interfere
		s.interfere = nil
		interfere()
	}
	return err
}

// racing returns services that run on f's store through a racingStore.
func (f *fixture) racing(interfere func()) (*racingStore, *service.RideService, *service.WalletService) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := &racingStore{Store: f.store, interfere: interfere}
	notifier := service.NewNotificationService(log)
	wallet := service.NewWalletService(store, notifier, log)
	return store, service.NewRideService(store, wallet, notifier, log), wallet
}

func (f *fixture) rideCredits(t *testing.T, driverID string) []*domain.Transaction {
	t.Helper()
	page, err := f.wallet.ListTransactions(context.Background(), driverID, service.TransactionQuery{
		Type: domain.TransactionTypeRideCredit,
	})
	require.NoError(t, err)
	return page.Items
}

func TestAcceptRide_RetriesLostConditionalWrite(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	ride := f.createRide(t, "25.00")

	store, rides, _ := f.racing(nil)
	f.store.InjectErrorOnce(memory.OpRideUpdate, repository.ErrConflict)

	accepted, err := rides.AcceptRide(ctx, service.AcceptRideRequest{RideID: ride.ID, Driver: driver})
	require.NoError(t, err)
	assert.Equal(t, 2, store.attempts)
	assert.Equal(t, driver.ID, accepted.DriverID)
	assert.Equal(t, domain.RideStatusAccepted, accepted.Status)
}

func TestAcceptRide_RetrySeesCompetingAccept(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	ride := f.createRide(t, "25.00")

	store, rides, _ := f.racing(func() {
		_, err := f.rides.AcceptRide(ctx, service.AcceptRideRequest{RideID: ride.ID, Driver: otherDriver})
		require.NoError(t, err)
	})
	f.store.InjectErrorOnce(memory.OpRideUpdate, repository.ErrConflict)

	_, err := rides.AcceptRide(ctx, service.AcceptRideRequest{RideID: ride.ID, Driver: driver})
	assert.ErrorIs(t, err, service.ErrRideNotAvailable)
	assert.Equal(t, 2, store.attempts)

	got, err := f.rides.GetRide(ctx, ride.ID, otherDriver.Actor())
	require.NoError(t, err)
	assert.Equal(t, otherDriver.ID, got.DriverID, "the winner's assignment is kept")
}

func TestUpdateStatus_CompletionRetryCreditsOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	ride := f.startRide(t, "40.00")

	store, rides, _ := f.racing(nil)
	f.store.InjectErrorOnce(memory.OpRideUpdate, repository.ErrConflict)

	completed, err := rides.UpdateStatus(ctx, service.UpdateStatusRequest{
		RideID: ride.ID,
		Actor:  driver.Actor(),
		Status: domain.RideStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, store.attempts)
	assert.Equal(t, domain.RideStatusCompleted, completed.Status)

	credits := f.rideCredits(t, driver.ID)
	require.Len(t, credits, 1)
	assert.True(t, credits[0].Amount.Equal(money("40.00")))
	f.assertLedgerConsistent(t, driver.ID)
}

func TestUpdateStatus_CompletionRetrySeesCompetingCompletion(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	ride := f.startRide(t, "40.00")

	store, rides, _ := f.racing(func() {
		_, err := f.rides.UpdateStatus(ctx, service.UpdateStatusRequest{
			RideID: ride.ID,
			Actor:  requester.Actor(),
			Status: domain.RideStatusCompleted,
		})
		require.NoError(t, err)
	})
	f.store.InjectErrorOnce(memory.OpRideUpdate, repository.ErrConflict)

	_, err := rides.UpdateStatus(ctx, service.UpdateStatusRequest{
		RideID: ride.ID,
		Actor:  driver.Actor(),
		Status: domain.RideStatusCompleted,
	})
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
	assert.Equal(t, 2, store.attempts)

	credits := f.rideCredits(t, driver.ID)
	require.Len(t, credits, 1, "the ride is paid exactly once")
	wallet, err := f.wallet.GetBalance(ctx, driver.ID)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(money("40.00")))
	f.assertLedgerConsistent(t, driver.ID)
}

func TestCancelWithdrawal_RetrySeesCompletion(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.fund(t, driver.ID, "100")
	w, err := withdraw(f, driver.ID, "60")
	require.NoError(t, err)

	store, _, wallet := f.racing(func() {
		_, err := f.wallet.CompleteWithdrawal(ctx, w.ID)
		require.NoError(t, err)
	})
	f.store.InjectErrorOnce(memory.OpWithdrawalUpdate, repository.ErrConflict)

	_, err = wallet.CancelWithdrawal(ctx, driver.ID, w.ID)
	assert.ErrorIs(t, err, service.ErrWithdrawalNotPending)
	assert.Equal(t, 2, store.attempts)

	got, err := f.wallet.GetWithdrawal(ctx, driver.ID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusCompleted, got.Status)

	balance, err := f.wallet.GetBalance(ctx, driver.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(money("40")), "no refund after payout")
	f.assertLedgerConsistent(t, driver.ID)
}

func TestCancelWithdrawal_RetriesLostConditionalWrite(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.fund(t, driver.ID, "100")
	w, err := withdraw(f, driver.ID, "60")
	require.NoError(t, err)

	store, _, wallet := f.racing(nil)
	f.store.InjectErrorOnce(memory.OpWithdrawalUpdate, repository.ErrConflict)

	cancelled, err := wallet.CancelWithdrawal(ctx, driver.ID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, store.attempts)
	assert.Equal(t, domain.WithdrawalStatusCancelled, cancelled.Status)

	balance, err := f.wallet.GetBalance(ctx, driver.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(money("100")))
	f.assertLedgerConsistent(t, driver.ID)
}

func TestRequestWithdrawal_OutageRecordsNothing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.fund(t, driver.ID, "100")
	f.store.InjectErrorOnce(memory.OpWithdrawalCreate, repository.ErrUnavailable)

	_, err := withdraw(f, driver.ID, "60")
	assert.ErrorIs(t, err, service.ErrStoreUnavailable)

	page, err := f.wallet.ListWithdrawals(ctx, driver.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	balance, err := f.wallet.GetBalance(ctx, driver.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(money("100")))
}
