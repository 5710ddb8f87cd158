package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Hosanna-Mosa/c-t-sub002/events"
	"github.com/Hosanna-Mosa/c-t-sub002/models"
	awspkg "github.com/Hosanna-Mosa/c-t-sub002/pkg/aws"
	"github.com/Hosanna-Mosa/c-t-sub002/providers"
	"github.com/Hosanna-Mosa/c-t-sub002/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const syncBatchLimit = 200

// JobQueue accepts serialized background jobs.
type JobQueue interface {
	Send(ctx context.Context, body string) error
}

// OrderTracking is an order's stored shipment fields plus the carrier's live view.
type OrderTracking struct {
	OrderID        string                 `json:"orderId"`
	TrackingNumber string                 `json:"trackingNumber"`
	Carrier        string                 `json:"carrier"`
	TrackingURL    string                 `json:"trackingUrl"`
	Status         string                 `json:"status"`
	ShipmentStatus string                 `json:"shipmentStatus"`
	Live           bool                   `json:"live"`
	Tracking       *models.TrackingStatus `json:"tracking,omitempty"`
}

// NumberTracking is the public lookup result.
type NumberTracking struct {
	TrackingNumber string                 `json:"trackingNumber"`
	OrderID        string                 `json:"orderId,omitempty"`
	Tracking       *models.TrackingStatus `json:"tracking"`
}

// SyncOutcome is either a queued job or an inline result.
type SyncOutcome struct {
	Queued bool
	Result models.TrackingSyncResult
}

type TrackingService interface {
	ForOrder(ctx context.Context, actor Actor, orderID string) (*OrderTracking, *ServiceError)
	ByNumber(ctx context.Context, trackingNumber, carrier string) (*NumberTracking, *ServiceError)
	RequestSync(ctx context.Context, actor Actor, orderIDs []string) (*SyncOutcome, *ServiceError)
	Sync(ctx context.Context, orderIDs []uuid.UUID) (models.TrackingSyncResult, error)
}

type trackingServiceImpl struct {
	orders    repository.OrderRepository
	provider  providers.ShippingProvider
	queue     JobQueue
	publisher events.TrackingPublisher
	metrics   MetricsRecorder
	now       func() time.Time
	logger    *zap.Logger
}

// NewTrackingService creates a TrackingService. queue and publisher are
// optional; without a queue sync runs inline.
func NewTrackingService(
	orders repository.OrderRepository,
	provider providers.ShippingProvider,
	queue JobQueue,
	publisher events.TrackingPublisher,
	metrics MetricsRecorder,
	logger *zap.Logger,
) TrackingService {
	return &trackingServiceImpl{
		orders:    orders,
		provider:  provider,
		queue:     queue,
		publisher: publisher,
		metrics:   metrics,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *trackingServiceImpl) ForOrder(ctx context.Context, actor Actor, orderID string) (*OrderTracking, *ServiceError) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, NotFoundError("Order not found")
	}
	order, err := s.orders.FindByIDWithUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("Order not found")
		}
		s.logger.Error("Failed to load order", zap.String("order_id", orderID), zap.Error(err))
		return nil, PersistenceError("Failed to load order", err)
	}
	if !actor.CanAccess(order.UserID.String()) {
		return nil, ForbiddenError("You do not have access to this order")
	}
	if order.TrackingNumber == "" {
		return nil, NotFoundError("Tracking is not available for this order yet")
	}

	result := &OrderTracking{
		OrderID:        order.ID.String(),
		TrackingNumber: order.TrackingNumber,
		Carrier:        order.Carrier,
		TrackingURL:    order.TrackingURL,
		Status:         order.Status,
		ShipmentStatus: order.ShipmentStatus,
	}
	status, err := s.provider.TrackShipment(ctx, order.Carrier, order.TrackingNumber)
	if err != nil {
		s.logger.Warn("Live tracking unavailable, serving stored fields",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return result, nil
	}
	result.Live = true
	result.Tracking = &status
	return result, nil
}

func (s *trackingServiceImpl) ByNumber(ctx context.Context, trackingNumber, carrier string) (*NumberTracking, *ServiceError) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, ValidationError("Tracking number is required")
	}

	result := &NumberTracking{TrackingNumber: trackingNumber}
	order, err := s.orders.FindByTrackingNumber(ctx, trackingNumber)
	switch {
	case err == nil:
		result.OrderID = order.ID.String()
		if carrier == "" {
			carrier = order.Carrier
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Warn("Order lookup by tracking number failed", zap.String("tracking_number", trackingNumber), zap.Error(err))
	}
	if carrier == "" {
		return nil, ValidationError("Carrier is required for unknown tracking numbers")
	}

	status, err := s.provider.TrackShipment(ctx, carrier, trackingNumber)
	if err != nil {
		s.logger.Error("TrackShipment failed", zap.String("tracking_number", trackingNumber), zap.Error(err))
		var apiErr *providers.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, NotFoundError("Tracking number not found")
		}
		return nil, IntegrationError(http.StatusBadGateway, "Failed to fetch tracking status", err)
	}
	result.Tracking = &status
	return result, nil
}

func (s *trackingServiceImpl) RequestSync(ctx context.Context, actor Actor, orderIDs []string) (*SyncOutcome, *ServiceError) {
	ids := make([]uuid.UUID, 0, len(orderIDs))
	for _, raw := range orderIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, ValidationError(fmt.Sprintf("Invalid order id: %s", raw))
		}
		ids = append(ids, id)
	}

	if s.queue != nil {
		job := models.TrackingSyncJob{
			OrderIDs:    orderIDs,
			RequestedBy: actor.UserID,
			RequestedAt: s.now().UTC(),
		}
		body, err := json.Marshal(job)
		if err != nil {
			return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to encode sync job", Err: err}
		}
		if err := s.queue.Send(ctx, string(body)); err != nil {
			s.logger.Error("Failed to queue tracking sync", zap.Error(err))
			return nil, IntegrationError(http.StatusBadGateway, "Failed to queue tracking sync", err)
		}
		s.logger.Info("Tracking sync queued", zap.Int("orders", len(ids)), zap.String("requested_by", actor.UserID))
		return &SyncOutcome{Queued: true}, nil
	}

	result, err := s.Sync(ctx, ids)
	if err != nil {
		return nil, PersistenceError("Failed to load orders for tracking sync", err)
	}
	return &SyncOutcome{Result: result}, nil
}

// Sync refreshes shipment status from the carrier for trackable orders,
// limited to ids when given. Changes that would move an order backwards are
// ignored.
func (s *trackingServiceImpl) Sync(ctx context.Context, ids []uuid.UUID) (models.TrackingSyncResult, error) {
	var result models.TrackingSyncResult
	orders, err := s.orders.FindTrackable(ctx, ids, syncBatchLimit)
	if err != nil {
		return result, err
	}

	for i := range orders {
		order := &orders[i]
		if ctx.Err() != nil {
			break
		}
		result.Checked++

		status, err := s.provider.TrackShipment(ctx, order.Carrier, order.TrackingNumber)
		if err != nil {
			result.Failed++
			s.logger.Warn("Tracking lookup failed", zap.String("order_id", order.ID.String()), zap.Error(err))
			continue
		}
		changed, err := s.apply(ctx, order, status)
		if err != nil {
			result.Failed++
			s.logger.Error("Failed to save tracking update", zap.String("order_id", order.ID.String()), zap.Error(err))
			continue
		}
		if changed {
			result.Updated++
		}
	}

	s.logger.Info("Tracking sync finished",
		zap.Int("checked", result.Checked),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *trackingServiceImpl) apply(ctx context.Context, order *models.Order, status models.TrackingStatus) (bool, error) {
	next, ok := models.ShipmentStatusFor(status.Status)
	if !ok || !models.AdvancesShipment(order.ShipmentStatus, next) {
		return false, nil
	}

	newStatus := order.Status
	var deliveredAt *time.Time
	switch {
	case next == models.ShipmentStatusDelivered:
		newStatus = models.OrderStatusDelivered
		at := s.now().UTC()
		deliveredAt = &at
	case order.Status == models.OrderStatusPlaced || order.Status == models.OrderStatusPaid:
		newStatus = models.OrderStatusShipped
	}
	if !models.IsLegalState(newStatus, next) {
		s.logger.Warn("Skipping tracking update to an illegal state",
			zap.String("order_id", order.ID.String()),
			zap.String("status", newStatus),
			zap.String("shipment_status", next),
		)
		return false, nil
	}

	order.Status = newStatus
	order.ShipmentStatus = next
	if deliveredAt != nil {
		order.DeliveredAt = deliveredAt
	}
	if err := s.orders.UpdateTracking(ctx, order); err != nil {
		return false, err
	}
	if s.metrics != nil {
		_ = s.metrics.RecordCount(ctx, awspkg.MetricTrackingSynced, map[string]string{"ShipmentStatus": next})
	}

	if s.publisher != nil {
		event := models.TrackingUpdatedEvent{
			EventType:      models.EventTrackingUpdated,
			OrderID:        order.ID.String(),
			TrackingNumber: order.TrackingNumber,
			CarrierStatus:  status.Status,
			ShipmentStatus: order.ShipmentStatus,
			Status:         order.Status,
			Timestamp:      s.now().UTC(),
		}
		if err := s.publisher.PublishTrackingUpdated(ctx, event); err != nil {
			s.logger.Warn("Failed to publish tracking update", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}
	return true, nil
}
