package providers

import (
	"context"
	"fmt"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
)

// ShippingProvider defines the interface all carrier integrations must implement.
type ShippingProvider interface {
	// GetRates returns available shipping options for the parcel between two addresses.
	GetRates(ctx context.Context, parcel models.Parcel, origin, destination models.Address) ([]models.ShippingRate, error)

	// PurchaseLabel buys the given rate and returns tracking + label info.
	PurchaseLabel(ctx context.Context, rateID string) (models.PurchasedLabel, error)

	// TrackShipment returns the current tracking status for a given tracking number.
	TrackShipment(ctx context.Context, carrier, trackingNumber string) (models.TrackingStatus, error)
}

// PaymentProvider looks up a payment by the provider's own reference.
type PaymentProvider interface {
	Name() string
	GetPayment(ctx context.Context, reference string) (models.ProviderPayment, error)
}

// APIError is a non-2xx answer from a provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}
