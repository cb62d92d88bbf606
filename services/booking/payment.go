package booking

import (
	"context"
	"errors"

	walletRepo "courtside/database/repository/wallet"
	"courtside/models"

	"go.uber.org/zap"
)

const (
	MethodBalance  = "balance"
	MethodCheckout = "checkout"
)

// DispatchResult says how a submission was paid. A checkout result is a suspension
// point: the bookings are committed later by Resume.
type DispatchResult struct {
	Method     string
	Total      float64
	NewBalance *float64
	Session    *models.CheckoutSession
}

func totalCost(intents []models.BookingIntent) float64 {
	var total float64
	for _, in := range intents {
		total += in.Cost
	}
	return roundCredits(total)
}

// DispatchPayment deducts the total from userID's stored balance when it covers it, and
// otherwise opens a checkout session for the full amount and stages the intents.
// bookedBy names a coach or admin booking for userID; that caller pays at checkout
// and owns the pending session marker.
func (s *DefaultBookingService) DispatchPayment(ctx context.Context, userID, bookedBy string, intents []models.BookingIntent, studentInitiated bool) (*DispatchResult, error) {
	if bookedBy == userID {
		bookedBy = ""
	}

	total := totalCost(intents)

	balance, err := s.Wallet.GetBalance(ctx, userID)
	if err != nil {
		return nil, newError(ErrPaymentError, err, "Could not read your credit balance.")
	}

	if balance >= total {
		if total == 0 {
			return &DispatchResult{Method: MethodBalance, NewBalance: &balance}, nil
		}
		newBalance, err := s.Wallet.Deduct(ctx, userID, total)
		if errors.Is(err, walletRepo.ErrInsufficientBalance) {
			return nil, newError(ErrPaymentError, err, "Your balance no longer covers %.2f credits.", total)
		}
		if err != nil {
			return nil, newError(ErrPaymentError, err, "Could not deduct %.2f credits from your balance.", total)
		}
		s.Logger.Info("Deducted booking cost from balance",
			zap.String("userID", userID),
			zap.Float64("total", total),
			zap.Float64("newBalance", newBalance))
		return &DispatchResult{Method: MethodBalance, Total: total, NewBalance: &newBalance}, nil
	}

	sess, err := s.Gateway.CreateCheckoutSession(ctx, models.CheckoutRequest{
		UserID:   userID,
		BookedBy: bookedBy,
		Type:     models.CheckoutTypeBooking,
		Credits:  total,
		Intents:  intents,
	})
	if err != nil {
		return nil, newError(ErrPaymentError, err, "Could not start checkout.")
	}

	pending := models.PendingCheckout{
		SessionID:        sess.ID,
		UserID:           userID,
		BookedBy:         bookedBy,
		StudentInitiated: studentInitiated,
		TotalCost:        total,
		Intents:          intents,
		CreatedAt:        s.now(),
	}
	if err := s.Staging.StagePending(ctx, pending, s.Rules.StagingTTL); err != nil {
		return nil, newError(ErrPaymentError, err, "Could not save your booking before checkout.")
	}
	if err := s.Staging.SetMarker(ctx, pending.Payer(), sess.ID, s.Rules.StagingTTL); err != nil {
		// The client still receives the session id in the response.
		s.Logger.Warn("Failed to set pending session marker", zap.String("sessionID", sess.ID), zap.Error(err))
	}

	s.Logger.Info("Booking staged for checkout",
		zap.String("userID", userID),
		zap.String("bookedBy", bookedBy),
		zap.String("sessionID", sess.ID),
		zap.Int("intents", len(intents)),
		zap.Float64("total", total))
	return &DispatchResult{Method: MethodCheckout, Total: total, Session: sess}, nil
}

// refund puts credits back on the wallet after a failed commit.
func (s *DefaultBookingService) refund(ctx context.Context, userID string, amount float64, reason string) error {
	if amount <= 0 {
		return nil
	}
	newBalance, err := s.Wallet.Credit(ctx, userID, amount)
	if err != nil {
		s.Logger.Error("Refund failed",
			zap.String("userID", userID),
			zap.Float64("amount", amount),
			zap.String("reason", reason),
			zap.Error(err))
		return err
	}
	s.Logger.Info("Credits refunded",
		zap.String("userID", userID),
		zap.Float64("amount", amount),
		zap.String("reason", reason),
		zap.Float64("newBalance", newBalance))
	return nil
}
