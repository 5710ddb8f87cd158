package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentProviderSquare = "square"
	PaymentProviderStripe = "stripe"
)

// ProviderPayment is a payment as reported by the provider. Amount is in the
// currency's minor unit.
type ProviderPayment struct {
	Provider  string
	Reference string
	Status    string
	Amount    int64
	Currency  string
	Completed bool
}

// PaymentVerification is the audit row for every verification attempt.
type PaymentVerification struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index" json:"orderId"`
	Provider       string    `gorm:"type:varchar(16);not null" json:"provider"`
	Reference      string    `gorm:"type:varchar(255);not null;index" json:"reference"`
	Amount         int64     `json:"amount"`
	Currency       string    `gorm:"type:varchar(8)" json:"currency"`
	ProviderStatus string    `gorm:"type:varchar(32)" json:"providerStatus"`
	Verified       bool      `gorm:"not null" json:"verified"`
	Reason         string    `gorm:"type:text" json:"reason,omitempty"`
	RequestedBy    string    `gorm:"type:varchar(128)" json:"requestedBy"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// VerifyPaymentRequest is the body of the verification endpoints.
type VerifyPaymentRequest struct {
	OrderID         string `json:"orderId" binding:"required"`
	PaymentID       string `json:"paymentId"`
	PaymentIntentID string `json:"paymentIntentId"`
}
