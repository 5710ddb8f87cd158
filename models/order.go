package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order lifecycle statuses.
const (
	OrderStatusPlaced    = "placed"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Shipment-specific statuses. The empty string means no shipment activity yet.
const (
	ShipmentStatusNone           = ""
	ShipmentStatusLabelGenerated = "label_generated"
	ShipmentStatusCarrierHandoff = "carrier_handoff"
	ShipmentStatusInTransit      = "in_transit"
	ShipmentStatusDelivered      = "delivered"
	ShipmentStatusException      = "exception"
)

// Payment statuses.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Address is a postal address stored as jsonb on the order.
type Address struct {
	Name       string `json:"name" validate:"required"`
	Street1    string `json:"street1" validate:"required"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required,len=2"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductType string  `json:"productType"`
	Name        string  `json:"name"`
	Size        string  `json:"size,omitempty"`
	Color       string  `json:"color,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// User is the customer an order belongs to. Read-only here.
type User struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"type:varchar(255)" json:"name"`
	Email string    `gorm:"type:varchar(255);index" json:"email"`
	Phone string    `gorm:"type:varchar(32)" json:"phone"`
}

// Order is the persisted order record. Only the shipment, notification and
// payment fields are written by this service.
type Order struct {
	ID              uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID   `gorm:"type:uuid;not null;index" json:"userId"`
	User            *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderNumber     string      `gorm:"type:varchar(64);uniqueIndex" json:"orderNumber"`
	Items           []OrderItem `gorm:"serializer:json;type:jsonb" json:"items"`
	TotalAmount     float64     `gorm:"not null;default:0" json:"totalAmount"`
	Currency        string      `gorm:"type:varchar(8);not null;default:'USD'" json:"currency"`
	ShippingAddress *Address    `gorm:"serializer:json;type:jsonb" json:"shippingAddress,omitempty"`

	Status         string `gorm:"type:varchar(32);not null;default:'placed';index" json:"status"`
	ShipmentStatus string `gorm:"type:varchar(32);index" json:"shipmentStatus"`

	TrackingNumber string `gorm:"type:varchar(128);index" json:"trackingNumber,omitempty"`
	LabelURL       string `gorm:"type:varchar(1024)" json:"labelUrl,omitempty"`
	LabelPublicID  string `gorm:"type:varchar(512)" json:"labelPublicId,omitempty"`
	Carrier        string `gorm:"type:varchar(64)" json:"carrier,omitempty"`
	TrackingURL    string `gorm:"type:varchar(1024)" json:"trackingUrl,omitempty"`

	TrackingEmailSentAt *time.Time `json:"trackingEmailSentAt,omitempty"`
	CarrierHandoffAt    *time.Time `json:"carrierHandoffAt,omitempty"`
	DeliveredAt         *time.Time `json:"deliveredAt,omitempty"`

	PaymentStatus    string     `gorm:"type:varchar(32);not null;default:'pending'" json:"paymentStatus"`
	PaymentMethod    string     `gorm:"type:varchar(32)" json:"paymentMethod,omitempty"`
	PaymentReference string     `gorm:"type:varchar(255);uniqueIndex:idx_orders_payment_reference,where:payment_reference <> ''" json:"paymentReference,omitempty"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// HasLabel reports whether a carrier label has been recorded on the order.
func (o *Order) HasLabel() bool {
	return o.TrackingNumber != "" && o.LabelURL != ""
}

// CustomerEmail returns the joined user's e-mail, or "".
func (o *Order) CustomerEmail() string {
	if o.User == nil {
		return ""
	}
	return o.User.Email
}

// CustomerName returns the joined user's name, falling back to the ship-to name.
func (o *Order) CustomerName() string {
	if o.User != nil && o.User.Name != "" {
		return o.User.Name
	}
	if o.ShippingAddress != nil {
		return o.ShippingAddress.Name
	}
	return ""
}

var shipmentRank = map[string]int{
	ShipmentStatusNone:           0,
	ShipmentStatusLabelGenerated: 1,
	ShipmentStatusCarrierHandoff: 2,
	ShipmentStatusInTransit:      3,
	ShipmentStatusDelivered:      4,
}

// AdvancesShipment reports whether moving from current to next is forward
// progress. exception is reachable from any state that has a label.
func AdvancesShipment(current, next string) bool {
	if next == ShipmentStatusException {
		return current != ShipmentStatusNone && current != ShipmentStatusException && current != ShipmentStatusDelivered
	}
	cr, ok := shipmentRank[current]
	if !ok {
		cr = shipmentRank[ShipmentStatusLabelGenerated]
	}
	nr, ok := shipmentRank[next]
	if !ok {
		return false
	}
	return nr > cr
}

// legalShipmentStates lists, per order status, the shipment statuses it may be
// paired with.
var legalShipmentStates = map[string][]string{
	OrderStatusPlaced:    {ShipmentStatusNone},
	OrderStatusPaid:      {ShipmentStatusNone, ShipmentStatusCarrierHandoff},
	OrderStatusShipped:   {ShipmentStatusLabelGenerated, ShipmentStatusCarrierHandoff, ShipmentStatusInTransit, ShipmentStatusException},
	OrderStatusDelivered: {ShipmentStatusNone, ShipmentStatusCarrierHandoff, ShipmentStatusDelivered},
	OrderStatusCancelled: {ShipmentStatusNone, ShipmentStatusLabelGenerated, ShipmentStatusCarrierHandoff, ShipmentStatusInTransit, ShipmentStatusException},
}

// IsLegalState reports whether the (status, shipmentStatus) pair is one the
// service can produce.
func IsLegalState(status, shipmentStatus string) bool {
	for _, s := range legalShipmentStates[status] {
		if s == shipmentStatus {
			return true
		}
	}
	return false
}
