package notification

import (
	"context"
	"fmt"

	"courtside/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Notifier sends booking pushes to students.
type Notifier interface {
	NotifyBookingsConfirmed(ctx context.Context, userID string, bookings []models.Booking) error
	SendReminder(ctx context.Context, payload models.ReminderPayload) error
}

// TokenLookup resolves a user's FCM registration token.
type TokenLookup interface {
	GetFCMToken(ctx context.Context, userID string) (string, error)
}

// MessageSender is satisfied by *messaging.Client.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMNotifier pushes through Firebase Cloud Messaging. A nil Sender disables pushes.
type FCMNotifier struct {
	Sender MessageSender
	Tokens TokenLookup
	Logger *zap.Logger
}

func NewFCMNotifier(client *messaging.Client, tokens TokenLookup, logger *zap.Logger) *FCMNotifier {
	n := &FCMNotifier{Tokens: tokens, Logger: logger}
	if client != nil {
		n.Sender = client
	}
	return n
}

func (n *FCMNotifier) NotifyBookingsConfirmed(ctx context.Context, userID string, bookings []models.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	return n.send(ctx, userID, func(token string) *messaging.Message {
		return BuildConfirmationMessage(token, bookings)
	})
}

func (n *FCMNotifier) SendReminder(ctx context.Context, payload models.ReminderPayload) error {
	return n.send(ctx, payload.UserID, func(token string) *messaging.Message {
		return BuildReminderMessage(token, payload)
	})
}

func (n *FCMNotifier) send(ctx context.Context, userID string, build func(token string) *messaging.Message) error {
	if n.Sender == nil {
		n.Logger.Debug("Push disabled, skipping notification", zap.String("userID", userID))
		return nil
	}
	token, err := n.Tokens.GetFCMToken(ctx, userID)
	if err != nil {
		return fmt.Errorf("could not look up FCM token for user %s: %w", userID, err)
	}
	if token == "" {
		n.Logger.Debug("User has no FCM token", zap.String("userID", userID))
		return nil
	}

	id, err := n.Sender.Send(ctx, build(token))
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	n.Logger.Info("Push sent", zap.String("userID", userID), zap.String("messageID", id))
	return nil
}
