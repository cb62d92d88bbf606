package models

import "time"

// Checkout session types carried in the session metadata.
const (
	CheckoutTypeBooking = "booking"
	CheckoutTypeTopup   = "topup"
)

// PendingCheckout is the staged booking intent list written before a checkout redirect.
// UserID owns the bookings; BookedBy is set when a coach or admin booked and pays for them.
type PendingCheckout struct {
	SessionID        string          `json:"sessionId"`
	UserID           string          `json:"userId"`
	BookedBy         string          `json:"bookedBy,omitempty"`
	StudentInitiated bool            `json:"studentInitiated"`
	TotalCost        float64         `json:"totalCost"`
	Intents          []BookingIntent `json:"intents"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// Payer is the account that went through checkout.
func (p PendingCheckout) Payer() string {
	if p.BookedBy != "" {
		return p.BookedBy
	}
	return p.UserID
}

// CheckoutRequest describes a checkout session to open with the payment provider.
type CheckoutRequest struct {
	UserID   string
	BookedBy string
	Type     string
	Credits  float64
	Intents  []BookingIntent
	Metadata map[string]string
}

// CheckoutSession is the provider's answer to a CheckoutRequest.
type CheckoutSession struct {
	ID          string `json:"sessionId"`
	RedirectURL string `json:"checkoutUrl"`
}

// PaymentVerification is the verified state of a checkout session.
type PaymentVerification struct {
	SessionID   string
	UserID      string
	BookedBy    string
	Type        string
	Paid        bool
	Expired     bool
	AmountCents int64
}
