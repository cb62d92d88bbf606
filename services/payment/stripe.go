package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"courtside/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"go.uber.org/zap"
)

// maxIntentMetadata is the longest intents JSON carried in session metadata.
// Stripe caps metadata values at 500 characters.
const maxIntentMetadata = 500

type StripeGateway struct {
	SuccessURL string
	CancelURL  string
	Currency   string
	PriceCents int64
	Logger     *zap.Logger
}

func NewStripeGateway(successURL, cancelURL, currency string, priceCents int64, logger *zap.Logger) *StripeGateway {
	return &StripeGateway{
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		Currency:   currency,
		PriceCents: priceCents,
		Logger:     logger,
	}
}

// AmountCents converts a credit amount to the smallest currency unit.
func AmountCents(credits float64, priceCents int64) int64 {
	return int64(math.Round(credits * float64(priceCents)))
}

// BuildMetadata returns the session metadata for a checkout request.
func BuildMetadata(req models.CheckoutRequest) map[string]string {
	md := map[string]string{
		"type":    req.Type,
		"user_id": req.UserID,
	}
	if req.BookedBy != "" && req.BookedBy != req.UserID {
		md["booked_by"] = req.BookedBy
	}
	if req.Type == models.CheckoutTypeBooking {
		md["intent_count"] = strconv.Itoa(len(req.Intents))
		if b, err := json.Marshal(req.Intents); err == nil && len(b) <= maxIntentMetadata {
			md["intents"] = string(b)
		}
	}
	for k, v := range req.Metadata {
		md[k] = v
	}
	return md
}

func productName(req models.CheckoutRequest) string {
	if req.Type == models.CheckoutTypeTopup {
		return fmt.Sprintf("%.2f lesson credits", req.Credits)
	}
	return fmt.Sprintf("Court booking (%d sessions)", len(req.Intents))
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	amount := AmountCents(req.Credits, g.PriceCents)
	if amount <= 0 {
		return nil, fmt.Errorf("invalid checkout amount %d", amount)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.SuccessURL),
		CancelURL:         stripe.String(g.CancelURL),
		ClientReferenceID: stripe.String(req.UserID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(g.Currency),
					UnitAmount: stripe.Int64(amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(productName(req)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	for k, v := range BuildMetadata(req) {
		params.AddMetadata(k, v)
	}

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session creation failed: %w", err)
	}
	g.Logger.Info("Checkout session created",
		zap.String("sessionID", s.ID),
		zap.String("userID", req.UserID),
		zap.String("type", req.Type),
		zap.Int64("amount", amount))

	return &models.CheckoutSession{ID: s.ID, RedirectURL: s.URL}, nil
}

func (g *StripeGateway) VerifySession(ctx context.Context, sessionID string) (*models.PaymentVerification, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := session.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe session lookup failed: %w", err)
	}
	return verificationFromSession(s), nil
}

func verificationFromSession(s *stripe.CheckoutSession) *models.PaymentVerification {
	v := &models.PaymentVerification{
		SessionID:   s.ID,
		UserID:      s.Metadata["user_id"],
		BookedBy:    s.Metadata["booked_by"],
		Type:        s.Metadata["type"],
		Paid:        s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Expired:     s.Status == stripe.CheckoutSessionStatusExpired,
		AmountCents: s.AmountTotal,
	}
	if v.UserID == "" {
		v.UserID = s.ClientReferenceID
	}
	return v
}
