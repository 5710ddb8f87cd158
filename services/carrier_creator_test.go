package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/Hosanna-Mosa/c-t-sub002/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var warehouse = models.Address{Name: "Warehouse", Street1: "9 Dock Rd", City: "Austin", State: "TX", PostalCode: "73301", Country: "US"}

func TestCreateShipment_BuysCheapestRate(t *testing.T) {
	provider := &fakeShippingProvider{
		rates: []models.ShippingRate{
			{Carrier: "fedex", Amount: 18.2, RateID: "r_fedex"},
			{Carrier: "usps", Amount: 7.45, RateID: "r_usps"},
			{Carrier: "ups", Amount: 9.1, RateID: "r_ups"},
		},
		label: models.PurchasedLabel{TrackingNumber: "9400", LabelURL: "https://shippo.example/l.pdf", TrackingURL: "https://t.example/9400"},
	}
	labels := &fakeLabelStore{stored: storage.StoredLabel{URL: "https://cdn.example/l.pdf", ID: "shipping-labels/order_x"}}
	creator := NewShippoShipmentCreator(provider, labels, warehouse, zap.NewNop())

	out, err := creator.CreateShipment(context.Background(), newTestOrder(), testPackage)
	require.NoError(t, err)

	assert.Equal(t, "r_usps", provider.boughtRate)
	assert.Equal(t, "https://shippo.example/l.pdf", labels.source)
	assert.Equal(t, models.CarrierShipment{
		TrackingNumber: "9400",
		LabelURL:       "https://cdn.example/l.pdf",
		LabelPublicID:  "shipping-labels/order_x",
		Carrier:        "usps",
		TrackingURL:    "https://t.example/9400",
	}, out)
}

func TestCreateShipment_Failures(t *testing.T) {
	order := newTestOrder()

	t.Run("no rates", func(t *testing.T) {
		creator := NewShippoShipmentCreator(&fakeShippingProvider{}, &fakeLabelStore{}, warehouse, zap.NewNop())
		_, err := creator.CreateShipment(context.Background(), order, testPackage)
		assert.ErrorIs(t, err, ErrNoRates)
	})

	t.Run("quote error", func(t *testing.T) {
		creator := NewShippoShipmentCreator(&fakeShippingProvider{ratesErr: errors.New("timeout")}, &fakeLabelStore{}, warehouse, zap.NewNop())
		_, err := creator.CreateShipment(context.Background(), order, testPackage)
		assert.ErrorContains(t, err, "timeout")
	})

	t.Run("purchase error", func(t *testing.T) {
		provider := &fakeShippingProvider{
			rates:    []models.ShippingRate{{Carrier: "ups", Amount: 5, RateID: "r1"}},
			labelErr: errors.New("insufficient funds"),
		}
		creator := NewShippoShipmentCreator(provider, &fakeLabelStore{}, warehouse, zap.NewNop())
		_, err := creator.CreateShipment(context.Background(), order, testPackage)
		assert.ErrorContains(t, err, "insufficient funds")
	})

	t.Run("label store error", func(t *testing.T) {
		provider := &fakeShippingProvider{
			rates: []models.ShippingRate{{Carrier: "ups", Amount: 5, RateID: "r1"}},
			label: models.PurchasedLabel{TrackingNumber: "T", LabelURL: "https://x"},
		}
		creator := NewShippoShipmentCreator(provider, &fakeLabelStore{err: errors.New("quota")}, warehouse, zap.NewNop())
		_, err := creator.CreateShipment(context.Background(), order, testPackage)
		assert.ErrorContains(t, err, "failed to store label")
	})
}
