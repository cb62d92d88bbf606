package booking

import (
	"context"
	"fmt"
	"time"

	"courtside/models"

	"go.uber.org/zap"
)

func (s *DefaultBookingService) ListBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.Bookings.ListByUser(ctx, userID)
}

// ListAvailability returns the open windows of a location on a local date ("2006-01-02")
// with the capacity left on each.
func (s *DefaultBookingService) ListAvailability(ctx context.Context, locationID, date string) ([]models.AvailableWindowResponse, error) {
	day, err := time.ParseInLocation("2006-01-02", date, s.location())
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	// AddDate keeps DST days at their real length.
	end := day.AddDate(0, 0, 1).Add(-time.Nanosecond)

	windows, err := s.Availability.FindOpen(ctx, locationID, day, end)
	if err != nil {
		return nil, err
	}

	out := make([]models.AvailableWindowResponse, 0, len(windows))
	for _, w := range windows {
		count, err := s.Bookings.CountForWindow(ctx, w.LocationID, w.StartTime, w.EndTime)
		if err != nil {
			return nil, err
		}
		remaining := w.MaxCapacity - count
		if remaining < 0 {
			remaining = 0
		}
		out = append(out, models.AvailableWindowResponse{
			AvailabilityWindow: w,
			Booked:             count,
			Remaining:          remaining,
		})
	}
	return out, nil
}

func (s *DefaultBookingService) Balance(ctx context.Context, userID string) (float64, error) {
	return s.Wallet.GetBalance(ctx, userID)
}

// PendingSession returns the checkout session the user was redirected to, or "".
func (s *DefaultBookingService) PendingSession(ctx context.Context, userID string) (string, error) {
	return s.Staging.GetMarker(ctx, userID)
}

// StartTopup opens a checkout for buying credits. Nothing is staged, so Resume
// credits the wallet when the session is paid.
func (s *DefaultBookingService) StartTopup(ctx context.Context, userID string, credits float64) (*models.CheckoutSession, error) {
	if credits <= 0 {
		return nil, newError(ErrPaymentError, nil, "Choose a positive number of credits.")
	}
	sess, err := s.Gateway.CreateCheckoutSession(ctx, models.CheckoutRequest{
		UserID:  userID,
		Type:    models.CheckoutTypeTopup,
		Credits: roundCredits(credits),
	})
	if err != nil {
		return nil, newError(ErrPaymentError, err, "Could not start checkout.")
	}
	if err := s.Staging.SetMarker(ctx, userID, sess.ID, s.Rules.StagingTTL); err != nil {
		s.Logger.Warn("Failed to set pending session marker", zap.String("sessionID", sess.ID), zap.Error(err))
	}
	return sess, nil
}
