package models

import (
	"time"

	"github.com/google/uuid"
)

const NotificationKindTrackingEmail = "tracking_email"

const (
	OutboxStatusPending = "pending"
	OutboxStatusSending = "sending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)

// NotificationOutbox records the intent to notify a customer. It is written in
// the same transaction as the order change that triggers it; (order_id, kind)
// is unique so an order is never enqueued twice for the same notification.
type NotificationOutbox struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_outbox_order_kind" json:"orderId"`
	Kind           string     `gorm:"type:varchar(32);not null;uniqueIndex:idx_outbox_order_kind" json:"kind"`
	Recipient      string     `gorm:"type:varchar(255);not null" json:"recipient"`
	RecipientName  string     `gorm:"type:varchar(255)" json:"recipientName"`
	OrderNumber    string     `gorm:"type:varchar(64)" json:"orderNumber"`
	TrackingNumber string     `gorm:"type:varchar(128)" json:"trackingNumber"`
	TrackingURL    string     `gorm:"type:varchar(1024)" json:"trackingUrl"`
	Carrier        string     `gorm:"type:varchar(64)" json:"carrier"`
	Status         string     `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	Attempts       int        `gorm:"not null;default:0" json:"attempts"`
	LastError      string     `gorm:"type:text" json:"lastError,omitempty"`
	SentAt         *time.Time `json:"sentAt,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (NotificationOutbox) TableName() string { return "notification_outbox" }
