package payment

import (
	"context"

	"courtside/models"
)

// CheckoutGateway opens and verifies hosted checkout sessions.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error)
	VerifySession(ctx context.Context, sessionID string) (*models.PaymentVerification, error)
}
