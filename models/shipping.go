package models

import "time"

// Parcel is a package's physical description. Weight is in kilograms,
// dimensions in centimetres.
type Parcel struct {
	WeightKg float64 `json:"weight"`
	LengthCm float64 `json:"length"`
	WidthCm  float64 `json:"width"`
	HeightCm float64 `json:"height"`
}

// PackageInfo is the validated create-label payload.
type PackageInfo struct {
	Parcel
	Force bool `json:"force"`
}

// ShippingRate is one carrier option for a parcel.
type ShippingRate struct {
	Carrier       string  `json:"carrier"`
	ServiceLevel  string  `json:"serviceLevel"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	EstimatedDays int     `json:"estimatedDays"`
	RateID        string  `json:"rateId"`
}

// TransitEstimate is a rate reduced to its delivery window.
type TransitEstimate struct {
	Carrier           string     `json:"carrier"`
	ServiceLevel      string     `json:"serviceLevel"`
	EstimatedDays     int        `json:"estimatedDays"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
}

// ShippingOptions summarises a quote.
type ShippingOptions struct {
	Cheapest *ShippingRate  `json:"cheapest"`
	Fastest  *ShippingRate  `json:"fastest"`
	Options  []ShippingRate `json:"options"`
}

// RateQuoteRequest is the body shared by the rate, transit and options endpoints.
type RateQuoteRequest struct {
	Destination Address `json:"destination" validate:"required"`
	Weight      float64 `json:"weight" validate:"required,gt=0"`
	Length      float64 `json:"length" validate:"required,gt=0"`
	Width       float64 `json:"width" validate:"required,gt=0"`
	Height      float64 `json:"height" validate:"required,gt=0"`
}

// Parcel returns the request's parcel.
func (r *RateQuoteRequest) Parcel() Parcel {
	return Parcel{WeightKg: r.Weight, LengthCm: r.Length, WidthCm: r.Width, HeightCm: r.Height}
}

// PurchasedLabel is what the carrier returns after buying a rate.
type PurchasedLabel struct {
	TrackingNumber string
	LabelURL       string
	TrackingURL    string
	Carrier        string
	TransactionID  string
}

// CarrierShipment is the result of the carrier integration: a purchased label
// re-hosted in our own storage.
type CarrierShipment struct {
	TrackingNumber string `json:"trackingNumber"`
	LabelURL       string `json:"labelUrl"`
	LabelPublicID  string `json:"labelPublicId"`
	Carrier        string `json:"carrier"`
	TrackingURL    string `json:"trackingUrl"`
}

// Carrier tracking statuses as reported by the provider.
const (
	CarrierStatusUnknown    = "UNKNOWN"
	CarrierStatusPreTransit = "PRE_TRANSIT"
	CarrierStatusTransit    = "TRANSIT"
	CarrierStatusDelivered  = "DELIVERED"
	CarrierStatusReturned   = "RETURNED"
	CarrierStatusFailure    = "FAILURE"
)

// TrackingEvent is one scan in a shipment's history.
type TrackingEvent struct {
	Status    string    `json:"status"`
	Details   string    `json:"details,omitempty"`
	Location  string    `json:"location,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TrackingStatus is the carrier's current view of a shipment.
type TrackingStatus struct {
	TrackingNumber string          `json:"trackingNumber"`
	Carrier        string          `json:"carrier"`
	Status         string          `json:"status"`
	SubStatus      string          `json:"subStatus,omitempty"`
	Location       string          `json:"location,omitempty"`
	ETA            *time.Time      `json:"eta,omitempty"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	History        []TrackingEvent `json:"history,omitempty"`
}

// ShipmentStatusFor maps a carrier status to our shipment status. ok is false
// for statuses that carry no new information.
func ShipmentStatusFor(carrierStatus string) (status string, ok bool) {
	switch carrierStatus {
	case CarrierStatusTransit:
		return ShipmentStatusInTransit, true
	case CarrierStatusDelivered:
		return ShipmentStatusDelivered, true
	case CarrierStatusReturned, CarrierStatusFailure:
		return ShipmentStatusException, true
	}
	return "", false
}

// Event types published for shipment changes.
const (
	EventLabelGenerated  = "shipment.label_generated"
	EventCarrierHandoff  = "shipment.carrier_handoff"
	EventTrackingUpdated = "tracking.updated"
)

// ShipmentEvent is published to SNS when label creation or handoff commits.
type ShipmentEvent struct {
	EventType      string    `json:"event_type"`
	OrderID        string    `json:"order_id"`
	UserID         string    `json:"user_id"`
	TrackingNumber string    `json:"tracking_number"`
	Carrier        string    `json:"carrier,omitempty"`
	LabelURL       string    `json:"label_url,omitempty"`
	Status         string    `json:"status"`
	ShipmentStatus string    `json:"shipment_status"`
	Reused         bool      `json:"reused,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// TrackingUpdatedEvent is published to Kafka when sync advances an order.
type TrackingUpdatedEvent struct {
	EventType      string    `json:"event_type"`
	OrderID        string    `json:"order_id"`
	TrackingNumber string    `json:"tracking_number"`
	CarrierStatus  string    `json:"carrier_status"`
	ShipmentStatus string    `json:"shipment_status"`
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
}

// TrackingSyncJob is the SQS message body for a queued sync.
type TrackingSyncJob struct {
	OrderIDs    []string  `json:"order_ids,omitempty"`
	RequestedBy string    `json:"requested_by,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// TrackingSyncResult summarises one sync run.
type TrackingSyncResult struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}
