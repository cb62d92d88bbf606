package booking

import (
	"context"
	"fmt"
	"time"

	"courtside/models"

	"go.uber.org/zap"
)

// Resume completes a checkout that was started by Submit or StartTopup.
//
// The session is leased before any work so concurrent callbacks do not both commit.
// The lease becomes a lasting settled mark once the payment is turned into bookings
// or credits; failures before that release it so the user can retry, and a lease
// left behind by a crashed process expires on its own.
func (s *DefaultBookingService) Resume(ctx context.Context, req ResumeRequest) (*ResumeResult, error) {
	sid := req.SessionID
	if sid == "" {
		marker, err := s.Staging.GetMarker(ctx, req.UserID)
		if err != nil {
			return nil, newError(ErrPaymentError, err, "Could not look up your pending payment.")
		}
		sid = marker
	}
	if sid == "" {
		return nil, newError(ErrPaymentError, nil, "There is no pending payment to complete.")
	}

	if req.Cancelled {
		s.clearMarker(ctx, req.UserID, sid)
		s.Logger.Info("Checkout cancelled", zap.String("userID", req.UserID), zap.String("sessionID", sid))
		return nil, newError(ErrPaymentCancelled, nil, "Your payment was cancelled. No charges were made.")
	}

	token, claimed, err := s.Staging.ClaimSession(ctx, sid, s.claimLease())
	if err != nil {
		return nil, newError(ErrPaymentError, err, "Could not process your payment right now.")
	}
	if !claimed {
		done, err := s.Staging.SessionSettled(ctx, sid)
		if err != nil {
			return nil, newError(ErrPaymentError, err, "Could not process your payment right now.")
		}
		if done {
			s.Logger.Info("Checkout session already processed", zap.String("sessionID", sid))
			return &ResumeResult{Status: StatusAlreadyProcessed, SessionID: sid}, nil
		}
		return nil, newError(ErrPaymentError, nil, "Your payment is still being processed. Please try again in a moment.")
	}

	settled := false
	settle := func() {
		settled = true
		if err := s.Staging.SettleSession(context.WithoutCancel(ctx), sid); err != nil {
			s.Logger.Error("Failed to mark checkout session settled", zap.String("sessionID", sid), zap.Error(err))
		}
	}
	defer func() {
		if settled {
			return
		}
		if err := s.Staging.ReleaseSession(context.WithoutCancel(ctx), sid, token); err != nil {
			s.Logger.Warn("Failed to release checkout session claim", zap.String("sessionID", sid), zap.Error(err))
		}
	}()

	v, err := s.verifyWithRetry(ctx, sid)
	if err != nil {
		return nil, newError(ErrPaymentError, err, "We couldn't confirm your payment. Please try again.")
	}
	if v.UserID != "" && v.UserID != req.UserID && v.BookedBy != req.UserID {
		return nil, newError(ErrPermissionDenied, nil, "This payment belongs to another account.")
	}
	if !v.Paid {
		if v.Expired {
			return nil, newError(ErrPaymentError, nil, "Your checkout session expired before payment.")
		}
		return nil, newError(ErrPaymentError, nil, "Your payment has not been completed.")
	}

	pending, err := s.loadPending(ctx, sid, v.Type != models.CheckoutTypeTopup)
	if err != nil {
		return nil, newError(ErrPaymentError, err, "Could not load your booking.")
	}

	if pending == nil {
		newBalance, err := s.Wallet.Credit(ctx, req.UserID, s.creditsFor(v.AmountCents))
		if err != nil {
			return nil, newError(ErrPaymentError, err, "Your payment went through but we could not update your balance. Please try again.")
		}
		settle()
		s.clearMarker(ctx, req.UserID, sid)
		s.Logger.Info("Wallet topped up",
			zap.String("userID", req.UserID),
			zap.String("sessionID", sid),
			zap.Float64("newBalance", newBalance))
		return &ResumeResult{Status: StatusToppedUp, SessionID: sid, NewBalance: &newBalance}, nil
	}

	if req.UserID != pending.UserID && req.UserID != pending.Payer() {
		return nil, newError(ErrPermissionDenied, nil, "This booking belongs to another account.")
	}

	if pending.StudentInitiated {
		if err := s.checkAdvance(pending.Intents, true, s.now()); err != nil {
			if s.compensate(ctx, pending) {
				settle()
			}
			return nil, newError(ErrBookingFailed, err,
				"Your booking could not be completed. The %.2f credits you paid were added to your balance.", pending.TotalCost)
		}
	}

	bookings, err := s.CommitIntents(ctx, pending.UserID, pending.Intents, sid)
	if err != nil {
		if s.compensate(ctx, pending) {
			settle()
		}
		return nil, err
	}
	settle()

	if err := s.Staging.ClearPending(ctx, sid); err != nil {
		s.Logger.Warn("Failed to clear staged booking", zap.String("sessionID", sid), zap.Error(err))
	}
	s.clearMarker(ctx, pending.Payer(), sid)

	summary := models.NewBookingSummary(bookings)
	return &ResumeResult{Status: StatusBooked, SessionID: sid, Summary: &summary}, nil
}

// compensate credits a captured payment whose bookings could not be created to the
// account that paid, and reports whether the credit succeeded.
func (s *DefaultBookingService) compensate(ctx context.Context, pending *models.PendingCheckout) bool {
	if err := s.refund(ctx, pending.Payer(), pending.TotalCost, "booking failed after checkout"); err != nil {
		return false
	}
	if err := s.Staging.ClearPending(ctx, pending.SessionID); err != nil {
		s.Logger.Warn("Failed to clear staged booking", zap.String("sessionID", pending.SessionID), zap.Error(err))
	}
	s.clearMarker(ctx, pending.Payer(), pending.SessionID)
	return true
}

func (s *DefaultBookingService) clearMarker(ctx context.Context, userID, sid string) {
	if err := s.Staging.ClearMarker(ctx, userID, sid); err != nil {
		s.Logger.Warn("Failed to clear pending session marker", zap.String("userID", userID), zap.Error(err))
	}
}

// verifyWithRetry polls the gateway until the session is paid or expired, or until
// VerifyTimeout elapses. After the timeout the last answer wins.
func (s *DefaultBookingService) verifyWithRetry(ctx context.Context, sid string) (*models.PaymentVerification, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Rules.VerifyTimeout)
	defer cancel()

	var (
		last    *models.PaymentVerification
		lastErr error
	)
	for {
		v, err := s.Gateway.VerifySession(ctx, sid)
		if err == nil {
			if v.Paid || v.Expired {
				return v, nil
			}
			last = v
		} else {
			lastErr = err
			s.Logger.Debug("Payment verification attempt failed", zap.String("sessionID", sid), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			if last != nil {
				return last, nil
			}
			if lastErr == nil {
				lastErr = ctx.Err()
			}
			return nil, fmt.Errorf("payment verification timed out: %w", lastErr)
		case <-time.After(s.Rules.VerifyRetryInterval):
		}
	}
}

// loadPending reads the staged booking. With poll set it keeps looking for up to
// StagingPollTimeout before concluding nothing was staged.
func (s *DefaultBookingService) loadPending(ctx context.Context, sid string, poll bool) (*models.PendingCheckout, error) {
	deadline := time.NewTimer(s.Rules.StagingPollTimeout)
	defer deadline.Stop()

	for {
		pending, err := s.Staging.LoadPending(ctx, sid)
		if err != nil {
			return nil, err
		}
		if pending != nil || !poll {
			return pending, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			s.Logger.Info("No staged booking for session, treating as top-up", zap.String("sessionID", sid))
			return nil, nil
		case <-time.After(s.Rules.VerifyRetryInterval):
		}
	}
}

// creditsFor converts a paid amount in cents back to credits.
func (s *DefaultBookingService) creditsFor(cents int64) float64 {
	if s.Rules.CreditPriceCents <= 0 {
		return 0
	}
	return roundCredits(float64(cents) / float64(s.Rules.CreditPriceCents))
}
