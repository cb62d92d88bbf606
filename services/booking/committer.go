package booking

import (
	"context"

	bookingRepo "courtside/database/repository/booking"
	"courtside/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CommitIntents creates one booking per intent in a single transaction and marks
// windows booked once they reach capacity. Any failure leaves no bookings behind.
func (s *DefaultBookingService) CommitIntents(ctx context.Context, userID string, intents []models.BookingIntent, paymentRef string) ([]models.Booking, error) {
	var created []models.Booking

	err := s.Bookings.WithTransaction(ctx, func(ctx context.Context, tx bookingRepo.BookingTx) error {
		// The driver may call this again after a write conflict.
		created = created[:0]
		now := s.now()
		var markFull []string

		for _, intent := range intents {
			if intent.StartTime.Before(now) {
				return newError(ErrPastBooking, nil, "The %s session has already started.", s.display(intent.StartTime))
			}
			if err := tx.LockWindows(ctx, intent.MatchingAvailabilityIDs); err != nil {
				return err
			}
			count, err := tx.CountForWindow(ctx, intent.LocationID, intent.StartTime, intent.EndTime)
			if err != nil {
				return err
			}
			if count >= intent.MaxCapacity {
				return slotFull(s.display(intent.StartTime))
			}

			b := models.Booking{
				ID:          uuid.NewString(),
				UserID:      userID,
				LocationID:  intent.LocationID,
				StartTime:   intent.StartTime,
				EndTime:     intent.EndTime,
				CreditCost:  intent.Cost,
				ServiceName: intent.ServiceName,
				PaymentRef:  paymentRef,
				CreatedAt:   now,
			}
			if err := tx.InsertBooking(ctx, &b); err != nil {
				return err
			}
			created = append(created, b)

			if ReachesCapacity(count, intent.MaxCapacity) {
				markFull = append(markFull, intent.MatchingAvailabilityIDs...)
			}
		}

		if len(markFull) > 0 {
			return tx.MarkWindowsBooked(ctx, markFull)
		}
		return nil
	})
	if err != nil {
		if _, ok := AsBookingError(err); ok {
			return nil, err
		}
		s.Logger.Error("Booking commit failed", zap.String("userID", userID), zap.Error(err))
		return nil, newError(ErrBookingFailed, err, "We couldn't save your booking. Please try again.")
	}

	s.Logger.Info("Bookings committed",
		zap.String("userID", userID),
		zap.String("paymentRef", paymentRef),
		zap.Int("count", len(created)))
	s.afterCommit(ctx, userID, created)
	return created, nil
}

// afterCommit schedules reminders and sends the confirmation push. Failures are logged only.
func (s *DefaultBookingService) afterCommit(ctx context.Context, userID string, bookings []models.Booking) {
	if s.Reminders != nil {
		for _, b := range bookings {
			if err := s.Reminders.ScheduleReminder(ctx, b); err != nil {
				s.Logger.Warn("Failed to schedule reminder", zap.String("bookingID", b.ID), zap.Error(err))
			}
		}
	}
	if s.Notifier != nil {
		if err := s.Notifier.NotifyBookingsConfirmed(ctx, userID, bookings); err != nil {
			s.Logger.Warn("Failed to send booking confirmation", zap.String("userID", userID), zap.Error(err))
		}
	}
}
