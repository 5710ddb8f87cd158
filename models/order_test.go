package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvancesShipment(t *testing.T) {
	tests := []struct {
		current, next string
		want          bool
	}{
		{ShipmentStatusNone, ShipmentStatusLabelGenerated, true},
		{ShipmentStatusLabelGenerated, ShipmentStatusCarrierHandoff, true},
		{ShipmentStatusLabelGenerated, ShipmentStatusInTransit, true},
		{ShipmentStatusCarrierHandoff, ShipmentStatusDelivered, true},
		{ShipmentStatusInTransit, ShipmentStatusInTransit, false},
		{ShipmentStatusInTransit, ShipmentStatusCarrierHandoff, false},
		{ShipmentStatusDelivered, ShipmentStatusInTransit, false},
		{ShipmentStatusInTransit, ShipmentStatusException, true},
		{ShipmentStatusNone, ShipmentStatusException, false},
		{ShipmentStatusException, ShipmentStatusException, false},
		{ShipmentStatusDelivered, ShipmentStatusException, false},
		{ShipmentStatusException, ShipmentStatusInTransit, true},
		{ShipmentStatusException, ShipmentStatusDelivered, true},
		{ShipmentStatusInTransit, "lost", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AdvancesShipment(tt.current, tt.next), "%q -> %q", tt.current, tt.next)
	}
}

func TestIsLegalState(t *testing.T) {
	assert.True(t, IsLegalState(OrderStatusPlaced, ShipmentStatusNone))
	assert.True(t, IsLegalState(OrderStatusPaid, ShipmentStatusCarrierHandoff))
	assert.True(t, IsLegalState(OrderStatusShipped, ShipmentStatusLabelGenerated))
	assert.True(t, IsLegalState(OrderStatusShipped, ShipmentStatusException))
	assert.True(t, IsLegalState(OrderStatusDelivered, ShipmentStatusDelivered))
	assert.True(t, IsLegalState(OrderStatusCancelled, ShipmentStatusLabelGenerated))

	assert.False(t, IsLegalState(OrderStatusPlaced, ShipmentStatusLabelGenerated))
	assert.False(t, IsLegalState(OrderStatusPaid, ShipmentStatusInTransit))
	assert.False(t, IsLegalState(OrderStatusShipped, ShipmentStatusNone))
	assert.False(t, IsLegalState(OrderStatusShipped, ShipmentStatusDelivered))
	assert.False(t, IsLegalState(OrderStatusDelivered, ShipmentStatusInTransit))
	assert.False(t, IsLegalState(OrderStatusCancelled, ShipmentStatusDelivered))
	assert.False(t, IsLegalState("refunded", ShipmentStatusNone))
}

func TestShipmentStatusFor(t *testing.T) {
	tests := []struct {
		carrier string
		want    string
		ok      bool
	}{
		{CarrierStatusTransit, ShipmentStatusInTransit, true},
		{CarrierStatusDelivered, ShipmentStatusDelivered, true},
		{CarrierStatusReturned, ShipmentStatusException, true},
		{CarrierStatusFailure, ShipmentStatusException, true},
		{CarrierStatusPreTransit, "", false},
		{CarrierStatusUnknown, "", false},
	}
	for _, tt := range tests {
		got, ok := ShipmentStatusFor(tt.carrier)
		assert.Equal(t, tt.ok, ok, tt.carrier)
		assert.Equal(t, tt.want, got, tt.carrier)
	}
}

func TestOrderCustomerFields(t *testing.T) {
	o := &Order{ShippingAddress: &Address{Name: "Ship To"}}
	assert.Equal(t, "", o.CustomerEmail())
	assert.Equal(t, "Ship To", o.CustomerName())
	assert.False(t, o.HasLabel())

	o.User = &User{Name: "Jane Buyer", Email: "jane@example.com"}
	o.TrackingNumber = "1Z999"
	o.LabelURL = "https://labels.example.com/1Z999.pdf"
	assert.Equal(t, "jane@example.com", o.CustomerEmail())
	assert.Equal(t, "Jane Buyer", o.CustomerName())
	assert.True(t, o.HasLabel())
}
