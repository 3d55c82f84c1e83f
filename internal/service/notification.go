package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"haul/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationRideCreated         NotificationType = "RIDE_CREATED"
	NotificationRideAccepted        NotificationType = "RIDE_ACCEPTED"
	NotificationRideStatusChanged   NotificationType = "RIDE_STATUS_CHANGED"
	NotificationEarningCredited     NotificationType = "EARNING_CREDITED"
	NotificationWithdrawalRequested NotificationType = "WITHDRAWAL_REQUESTED"
	NotificationWithdrawalCancelled NotificationType = "WITHDRAWAL_CANCELLED"
	NotificationWithdrawalCompleted NotificationType = "WITHDRAWAL_COMPLETED"
)

// Notification represents an event addressed to one party.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Fields      logrus.Fields
}

// NotificationService records lifecycle events for the affected parties.
// Delivery channels are out of scope; events go to the structured log.
type NotificationService struct {
	log logrus.FieldLogger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(log logrus.FieldLogger) *NotificationService {
	return &NotificationService{log: log}
}

// NotifyRideCreated records a new pending ride.
func (s *NotificationService) NotifyRideCreated(ctx context.Context, ride *domain.Ride) {
	s.send(ctx, Notification{
		Type:        NotificationRideCreated,
		RecipientID: ride.RequesterID,
		Fields:      logrus.Fields{"ride_id": ride.ID, "city": ride.City, "price": ride.Price.StringFixed(2)},
	})
}

// NotifyRideAccepted tells the requester which driver took the ride.
func (s *NotificationService) NotifyRideAccepted(ctx context.Context, ride *domain.Ride) {
	s.send(ctx, Notification{
		Type:        NotificationRideAccepted,
		RecipientID: ride.RequesterID,
		Fields:      logrus.Fields{"ride_id": ride.ID, "driver_id": ride.DriverID},
	})
}

// NotifyRideStatusChanged tells the other participant about a transition.
func (s *NotificationService) NotifyRideStatusChanged(ctx context.Context, ride *domain.Ride, actor domain.Actor) {
	recipient := ride.DriverID
	if actor.ID == ride.DriverID {
		recipient = ride.RequesterID
	}
	s.send(ctx, Notification{
		Type:        NotificationRideStatusChanged,
		RecipientID: recipient,
		Fields:      logrus.Fields{"ride_id": ride.ID, "status": ride.Status, "actor_id": actor.ID},
	})
}

// NotifyEarningCredited tells a driver that a ride paid out to the wallet.
func (s *NotificationService) NotifyEarningCredited(ctx context.Context, txn *domain.Transaction) {
	s.send(ctx, Notification{
		Type:        NotificationEarningCredited,
		RecipientID: txn.DriverID,
		Fields:      logrus.Fields{"ride_id": txn.RideID, "amount": txn.Amount.StringFixed(2), "balance": txn.Balance.StringFixed(2)},
	})
}

// NotifyWithdrawal records a change of a withdrawal request.
func (s *NotificationService) NotifyWithdrawal(ctx context.Context, w *domain.Withdrawal) {
	typ := NotificationWithdrawalRequested
	switch w.Status {
	case domain.WithdrawalStatusCancelled:
		typ = NotificationWithdrawalCancelled
	case domain.WithdrawalStatusCompleted:
		typ = NotificationWithdrawalCompleted
	}
	s.send(ctx, Notification{
		Type:        typ,
		RecipientID: w.DriverID,
		Fields:      logrus.Fields{"withdrawal_id": w.ID, "amount": w.Amount.StringFixed(2)},
	})
}

func (s *NotificationService) send(ctx context.Context, n Notification) {
	if s == nil || s.log == nil {
		return
	}
	s.log.WithFields(n.Fields).
		WithContext(ctx).
		WithField("notification", n.Type).
		WithField("recipient_id", n.RecipientID).
		Info("notification")
}
