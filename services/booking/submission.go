package booking

import (
	"context"
	"errors"
	"time"

	"courtside/models"

	"go.uber.org/zap"
)

// Submit runs resolve, cost, capacity, the advance rule and payment for a selection.
// On the balance path it also commits; on the checkout path it returns the redirect.
func (s *DefaultBookingService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	studentInitiated := IsStudentRole(req.Role)

	intents, err := s.ResolveSlots(ctx, req.Slots, req.TargetDate)
	if err != nil {
		return nil, err
	}

	for i := range intents {
		intents[i].Cost = s.Pricer.Cost(intents[i].ServiceName, intents[i].DurationHours())
		if _, err := s.CheckCapacity(ctx, &intents[i]); err != nil {
			return nil, err
		}
	}

	if err := s.checkAdvance(intents, studentInitiated, s.now()); err != nil {
		return nil, err
	}

	dispatch, err := s.DispatchPayment(ctx, req.UserID, req.BookedBy, intents, studentInitiated)
	if err != nil {
		return nil, err
	}
	if dispatch.Method == MethodCheckout {
		return &SubmitResult{
			Status:      StatusCheckoutRequired,
			SessionID:   dispatch.Session.ID,
			CheckoutURL: dispatch.Session.RedirectURL,
		}, nil
	}

	bookings, err := s.CommitIntents(ctx, req.UserID, intents, PaymentRefBalance)
	if err != nil {
		if refundErr := s.refund(ctx, req.UserID, dispatch.Total, "commit failed"); refundErr != nil {
			return nil, newError(ErrBookingFailed, errors.Join(err, refundErr),
				"Your booking could not be completed and the %.2f credits could not be returned yet. Please contact support.", dispatch.Total)
		}
		return nil, err
	}

	summary := models.NewBookingSummary(bookings)
	summary.NewBalance = dispatch.NewBalance
	s.Logger.Info("Submission booked",
		zap.String("userID", req.UserID),
		zap.Int("count", summary.Count),
		zap.Float64("totalCost", summary.TotalCost))
	return &SubmitResult{Status: StatusBooked, Summary: &summary}, nil
}

// checkAdvance rejects intents in the past and, for students, intents closer than
// the minimum advance.
func (s *DefaultBookingService) checkAdvance(intents []models.BookingIntent, studentInitiated bool, now time.Time) error {
	earliest := now.Add(s.Rules.MinAdvance)
	for _, in := range intents {
		if in.StartTime.Before(now) {
			return newError(ErrPastBooking, nil, "The %s session has already started.", s.display(in.StartTime))
		}
		if studentInitiated && in.StartTime.Before(earliest) {
			return newError(ErrBookingTooSoon, nil,
				"Sessions must be booked at least %d days in advance. %s is too soon.",
				int(s.Rules.MinAdvance.Hours()/24), s.display(in.StartTime))
		}
	}
	return nil
}
