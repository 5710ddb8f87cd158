package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/Hosanna-Mosa/c-t-sub002/providers"
	"github.com/Hosanna-Mosa/c-t-sub002/storage"
	"go.uber.org/zap"
)

var ErrNoRates = errors.New("no shipping rates available for the order's address")

// ShippoShipmentCreator buys the cheapest rate for an order and re-hosts the
// label file.
type ShippoShipmentCreator struct {
	provider providers.ShippingProvider
	labels   storage.LabelStore
	origin   models.Address
	logger   *zap.Logger
}

func NewShippoShipmentCreator(provider providers.ShippingProvider, labels storage.LabelStore, origin models.Address, logger *zap.Logger) *ShippoShipmentCreator {
	return &ShippoShipmentCreator{provider: provider, labels: labels, origin: origin, logger: logger}
}

func (c *ShippoShipmentCreator) CreateShipment(ctx context.Context, order *models.Order, pkg models.PackageInfo) (models.CarrierShipment, error) {
	if order.ShippingAddress == nil {
		return models.CarrierShipment{}, errors.New("order has no shipping address")
	}

	rates, err := c.provider.GetRates(ctx, pkg.Parcel, c.origin, *order.ShippingAddress)
	if err != nil {
		return models.CarrierShipment{}, fmt.Errorf("failed to quote rates: %w", err)
	}
	rate, ok := cheapestRate(rates)
	if !ok {
		return models.CarrierShipment{}, ErrNoRates
	}

	label, err := c.provider.PurchaseLabel(ctx, rate.RateID)
	if err != nil {
		return models.CarrierShipment{}, fmt.Errorf("failed to purchase label: %w", err)
	}

	stored, err := c.labels.StoreLabel(ctx, order.ID.String(), label.TrackingNumber, label.LabelURL)
	if err != nil {
		return models.CarrierShipment{}, fmt.Errorf("failed to store label: %w", err)
	}

	carrier := label.Carrier
	if carrier == "" {
		carrier = rate.Carrier
	}
	c.logger.Info("Purchased carrier label",
		zap.String("order_id", order.ID.String()),
		zap.String("carrier", carrier),
		zap.String("service_level", rate.ServiceLevel),
		zap.Float64("amount", rate.Amount),
		zap.String("transaction_id", label.TransactionID),
	)

	return models.CarrierShipment{
		TrackingNumber: label.TrackingNumber,
		LabelURL:       stored.URL,
		LabelPublicID:  stored.ID,
		Carrier:        carrier,
		TrackingURL:    label.TrackingURL,
	}, nil
}

func cheapestRate(rates []models.ShippingRate) (models.ShippingRate, bool) {
	if len(rates) == 0 {
		return models.ShippingRate{}, false
	}
	best := rates[0]
	for _, r := range rates[1:] {
		if r.Amount < best.Amount {
			best = r
		}
	}
	return best, true
}
