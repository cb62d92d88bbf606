package booking

import (
	"context"
	"time"

	"courtside/config"
	availabilityRepo "courtside/database/repository/availability"
	bookingRepo "courtside/database/repository/booking"
	stagingRepo "courtside/database/repository/staging"
	walletRepo "courtside/database/repository/wallet"
	"courtside/models"
	"courtside/services/notification"
	"courtside/services/payment"
	"courtside/services/tasks"

	"go.uber.org/zap"
)

// BookingService turns selected calendar slots into paid bookings.
type BookingService interface {
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error)
	Resume(ctx context.Context, req ResumeRequest) (*ResumeResult, error)
	PendingSession(ctx context.Context, userID string) (string, error)
	ListBookings(ctx context.Context, userID string) ([]models.Booking, error)
	ListAvailability(ctx context.Context, locationID, date string) ([]models.AvailableWindowResponse, error)
	Balance(ctx context.Context, userID string) (float64, error)
	StartTopup(ctx context.Context, userID string, credits float64) (*models.CheckoutSession, error)
}

// Rules are the tunables of the booking flow.
type Rules struct {
	Location            *time.Location
	MinAdvance          time.Duration
	StagingTTL          time.Duration
	VerifyTimeout       time.Duration
	VerifyRetryInterval time.Duration
	StagingPollTimeout  time.Duration
	CreditPriceCents    int64
}

// RulesFromConfig reads Rules from config.AppConfig.
func RulesFromConfig() Rules {
	cfg := config.AppConfig
	return Rules{
		Location:            config.Location(),
		MinAdvance:          time.Duration(cfg.MinAdvanceDays) * 24 * time.Hour,
		StagingTTL:          cfg.StagingTTL,
		VerifyTimeout:       cfg.VerifyTimeout,
		VerifyRetryInterval: cfg.VerifyRetryInterval,
		StagingPollTimeout:  cfg.StagingPollTimeout,
		CreditPriceCents:    cfg.CreditPriceCents,
	}
}

// DefaultBookingService implements BookingService. Reminders and Notifier are optional.
type DefaultBookingService struct {
	Availability availabilityRepo.AvailabilityRepository
	Bookings     bookingRepo.BookingRepository
	Wallet       walletRepo.WalletRepository
	Staging      stagingRepo.StagingRepository
	Gateway      payment.CheckoutGateway
	Reminders    tasks.ReminderScheduler
	Notifier     notification.Notifier
	Pricer       *Pricer
	Rules        Rules
	Logger       *zap.Logger
	Now          func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Result statuses reported to the client.
const (
	StatusBooked           = "booked"
	StatusCheckoutRequired = "checkout_required"
	StatusToppedUp         = "topped_up"
	StatusAlreadyProcessed = "already_processed"
)

// PaymentRefBalance marks bookings paid from the stored balance.
const PaymentRefBalance = "balance"

// SubmitRequest books Slots for UserID. BookedBy is the caller when a coach or admin
// books on a student's behalf; Role is the caller's role.
type SubmitRequest struct {
	UserID     string
	BookedBy   string
	Role       string
	Slots      []models.SelectedSlot
	TargetDate string
}

type SubmitResult struct {
	Status      string                 `json:"status"`
	Summary     *models.BookingSummary `json:"summary,omitempty"`
	SessionID   string                 `json:"sessionId,omitempty"`
	CheckoutURL string                 `json:"checkoutUrl,omitempty"`
}

type ResumeRequest struct {
	UserID    string
	SessionID string
	Cancelled bool
}

type ResumeResult struct {
	Status     string                 `json:"status"`
	SessionID  string                 `json:"sessionId"`
	Summary    *models.BookingSummary `json:"summary,omitempty"`
	NewBalance *float64               `json:"newBalance,omitempty"`
}

// IsStudentRole reports whether the advance-booking rule applies. Tokens without a
// role are treated as students.
func IsStudentRole(role string) bool {
	return role == "" || role == models.RoleStudent
}

const displayLayout = "Mon Jan 2, 3:04 PM"

// commitBudget covers the booking transaction and the wallet writes after verification.
const commitBudget = 30 * time.Second

// claimLease is how long a resumption may hold a checkout session before another
// caller can take it over.
func (s *DefaultBookingService) claimLease() time.Duration {
	return s.Rules.VerifyTimeout + s.Rules.StagingPollTimeout + commitBudget
}

func (s *DefaultBookingService) location() *time.Location {
	if s.Rules.Location == nil {
		return time.UTC
	}
	return s.Rules.Location
}

func (s *DefaultBookingService) display(t time.Time) string {
	return t.In(s.location()).Format(displayLayout)
}
