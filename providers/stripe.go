package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
)

// StripeProvider reads payment intents through stripe-go.
type StripeProvider struct {
	intents *paymentintent.Client
}

// NewStripeProvider builds a client for secretKey. backendURL overrides the
// API host and is only set in tests.
func NewStripeProvider(secretKey, backendURL string) *StripeProvider {
	cfg := &stripe.BackendConfig{}
	if backendURL != "" {
		cfg.URL = stripe.String(backendURL)
	}
	return &StripeProvider{
		intents: &paymentintent.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, cfg),
			Key: secretKey,
		},
	}
}

func (s *StripeProvider) Name() string { return models.PaymentProviderStripe }

func (s *StripeProvider) GetPayment(ctx context.Context, intentID string) (models.ProviderPayment, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.intents.Get(intentID, params)
	if err != nil {
		return models.ProviderPayment{}, fmt.Errorf("stripe GetPaymentIntent: %w", err)
	}

	return models.ProviderPayment{
		Provider:  models.PaymentProviderStripe,
		Reference: pi.ID,
		Status:    string(pi.Status),
		Amount:    pi.Amount,
		Currency:  strings.ToUpper(string(pi.Currency)),
		Completed: pi.Status == stripe.PaymentIntentStatusSucceeded,
	}, nil
}
