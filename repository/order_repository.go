package repository

import (
	"context"
	"time"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// shipmentColumns are the order columns written by label creation and handoff.
var shipmentColumns = []string{
	"status", "shipment_status", "tracking_number", "label_url", "label_public_id",
	"carrier", "tracking_url", "carrier_handoff_at",
}

// outboxRefreshColumns are overwritten when an order is re-enqueued while its
// notification is still pending.
var outboxRefreshColumns = []string{
	"recipient", "recipient_name", "tracking_number", "tracking_url", "carrier", "updated_at",
}

// OrderRepository defines data-access operations for orders.
type OrderRepository interface {
	FindByIDWithUser(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Order, error)
	// SaveShipment writes the shipment fields of order and, when intent is
	// non-nil, enqueues the notification in the same transaction. A pending
	// intent for the same order is refreshed rather than duplicated.
	SaveShipment(ctx context.Context, order *models.Order, intent *models.NotificationOutbox) error
	FindTrackable(ctx context.Context, ids []uuid.UUID, limit int) ([]models.Order, error)
	UpdateTracking(ctx context.Context, order *models.Order) error
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) FindByIDWithUser(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).
		Preload("User").
		First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormOrderRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).
		Where("tracking_number = ?", trackingNumber).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormOrderRepository) SaveShipment(ctx context.Context, order *models.Order, intent *models.NotificationOutbox) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(order).
			Select(shipmentColumns).
			Updates(order).Error; err != nil {
			return err
		}
		if intent == nil {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "kind"}},
			DoUpdates: clause.AssignmentColumns(outboxRefreshColumns),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Eq{Column: clause.Column{Table: "notification_outbox", Name: "status"}, Value: models.OutboxStatusPending},
			}},
		}).Create(intent).Error
	})
}

// FindTrackable returns orders that have a label and have not reached a
// terminal state. An empty ids slice means all such orders.
func (r *GormOrderRepository) FindTrackable(ctx context.Context, ids []uuid.UUID, limit int) ([]models.Order, error) {
	var orders []models.Order
	q := r.db.WithContext(ctx).
		Where("tracking_number <> ''").
		Where("shipment_status <> ?", models.ShipmentStatusDelivered).
		Where("status NOT IN ?", []string{models.OrderStatusCancelled, models.OrderStatusDelivered})
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	if err := q.Order("updated_at ASC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormOrderRepository) UpdateTracking(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).
		Model(order).
		Select("status", "shipment_status", "delivered_at").
		Updates(order).Error
}

// NotificationOutboxRepository reads and settles queued notifications.
type NotificationOutboxRepository interface {
	FindPendingForOrder(ctx context.Context, orderID uuid.UUID, kind string) (*models.NotificationOutbox, error)
	// FindPending returns rows waiting to be sent, including claims older
	// than staleBefore whose sender never settled them.
	FindPending(ctx context.Context, staleBefore time.Time, limit int) ([]models.NotificationOutbox, error)
	// Claim moves a row to sending. It reports false when another sender
	// holds a live claim or the row is already settled.
	Claim(ctx context.Context, id uuid.UUID, staleBefore time.Time) (bool, error)
	// MarkSent settles the outbox row and stamps the order's tracking e-mail
	// time, unless it was already stamped, in one transaction.
	MarkSent(ctx context.Context, entry *models.NotificationOutbox, at time.Time) error
	RecordFailure(ctx context.Context, entry *models.NotificationOutbox, errMsg string, maxAttempts int) error
}

type GormNotificationOutboxRepository struct {
	db *gorm.DB
}

func NewGormNotificationOutboxRepository(db *gorm.DB) NotificationOutboxRepository {
	return &GormNotificationOutboxRepository{db: db}
}

func (r *GormNotificationOutboxRepository) FindPendingForOrder(ctx context.Context, orderID uuid.UUID, kind string) (*models.NotificationOutbox, error) {
	var e models.NotificationOutbox
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND kind = ? AND status = ?", orderID, kind, models.OutboxStatusPending).
		First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *GormNotificationOutboxRepository) FindPending(ctx context.Context, staleBefore time.Time, limit int) ([]models.NotificationOutbox, error) {
	var entries []models.NotificationOutbox
	if err := r.db.WithContext(ctx).
		Where("status = ? OR (status = ? AND updated_at < ?)",
			models.OutboxStatusPending, models.OutboxStatusSending, staleBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *GormNotificationOutboxRepository) Claim(ctx context.Context, id uuid.UUID, staleBefore time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.NotificationOutbox{}).
		Where("id = ?", id).
		Where("status = ? OR (status = ? AND updated_at < ?)",
			models.OutboxStatusPending, models.OutboxStatusSending, staleBefore).
		Update("status", models.OutboxStatusSending)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormNotificationOutboxRepository) MarkSent(ctx context.Context, entry *models.NotificationOutbox, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.NotificationOutbox{}).
			Where("id = ?", entry.ID).
			Updates(map[string]interface{}{
				"status":     models.OutboxStatusSent,
				"sent_at":    at,
				"attempts":   gorm.Expr("attempts + 1"),
				"last_error": "",
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Order{}).
			Where("id = ? AND tracking_email_sent_at IS NULL", entry.OrderID).
			Update("tracking_email_sent_at", at).Error
	})
}

func (r *GormNotificationOutboxRepository) RecordFailure(ctx context.Context, entry *models.NotificationOutbox, errMsg string, maxAttempts int) error {
	status := models.OutboxStatusPending
	if entry.Attempts+1 >= maxAttempts {
		status = models.OutboxStatusFailed
	}
	return r.db.WithContext(ctx).
		Model(&models.NotificationOutbox{}).
		Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"status":     status,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": errMsg,
		}).Error
}
