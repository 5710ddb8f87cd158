package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Hosanna-Mosa/c-t-sub002/events"
	"github.com/Hosanna-Mosa/c-t-sub002/models"
	awspkg "github.com/Hosanna-Mosa/c-t-sub002/pkg/aws"
	"github.com/Hosanna-Mosa/c-t-sub002/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CarrierShipmentCreator buys a label for an order and returns where it lives.
type CarrierShipmentCreator interface {
	CreateShipment(ctx context.Context, order *models.Order, pkg models.PackageInfo) (models.CarrierShipment, error)
}

// TrackingNotifier delivers a queued tracking e-mail for an order. It never
// reports failure to the caller; undelivered intents are retried by the relay.
type TrackingNotifier interface {
	Dispatch(ctx context.Context, orderID uuid.UUID)
}

// MetricsRecorder is the part of the CloudWatch client the services use.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, name string, dimensions map[string]string) error
}

// ShipmentResult is returned by create-label and handoff.
type ShipmentResult struct {
	OrderID        string `json:"orderId"`
	TrackingNumber string `json:"trackingNumber"`
	LabelURL       string `json:"labelUrl"`
	LabelPublicID  string `json:"labelPublicId"`
	Carrier        string `json:"carrier,omitempty"`
	TrackingURL    string `json:"trackingUrl,omitempty"`
	Status         string `json:"status"`
	ShipmentStatus string `json:"shipmentStatus"`
	Reused         bool   `json:"reused"`
}

// ShipmentService defines the label and handoff operations.
type ShipmentService interface {
	CreateLabel(ctx context.Context, orderID string, pkg models.PackageInfo) (*ShipmentResult, *ServiceError)
	Handoff(ctx context.Context, orderID string) (*ShipmentResult, *ServiceError)
	PackingSlip(ctx context.Context, orderID string) ([]byte, string, *ServiceError)
}

type shipmentServiceImpl struct {
	orders    repository.OrderRepository
	creator   CarrierShipmentCreator
	notifier  TrackingNotifier
	publisher events.ShipmentPublisher
	metrics   MetricsRecorder
	slips     *PackingSlipRenderer
	now       func() time.Time
	logger    *zap.Logger
}

// NewShipmentService creates a new ShipmentService.
func NewShipmentService(
	orders repository.OrderRepository,
	creator CarrierShipmentCreator,
	notifier TrackingNotifier,
	publisher events.ShipmentPublisher,
	metrics MetricsRecorder,
	logger *zap.Logger,
) ShipmentService {
	return &shipmentServiceImpl{
		orders:    orders,
		creator:   creator,
		notifier:  notifier,
		publisher: publisher,
		metrics:   metrics,
		slips:     NewPackingSlipRenderer(),
		now:       time.Now,
		logger:    logger,
	}
}

func (s *shipmentServiceImpl) loadOrder(ctx context.Context, rawID string) (*models.Order, *ServiceError) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, NotFoundError("Order not found")
	}
	order, err := s.orders.FindByIDWithUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("Order not found")
		}
		s.logger.Error("Failed to load order", zap.String("order_id", rawID), zap.Error(err))
		return nil, PersistenceError("Failed to load order: "+err.Error(), err)
	}
	return order, nil
}

// CreateLabel buys a carrier label for the order, or returns the stored one
// when a label already exists and pkg.Force is false.
func (s *shipmentServiceImpl) CreateLabel(ctx context.Context, orderID string, pkg models.PackageInfo) (*ShipmentResult, *ServiceError) {
	order, svcErr := s.loadOrder(ctx, orderID)
	if svcErr != nil {
		return nil, svcErr
	}
	if order.ShippingAddress == nil {
		return nil, PreconditionError("Order has no shipping address")
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, PreconditionError("Cannot create a label for a cancelled order")
	}

	if !pkg.Force && order.HasLabel() &&
		(order.ShipmentStatus == models.ShipmentStatusLabelGenerated || order.Status == models.OrderStatusShipped) {
		s.logger.Info("Reusing existing label",
			zap.String("order_id", orderID),
			zap.String("tracking_number", order.TrackingNumber),
		)
		s.record(ctx, awspkg.MetricLabelsReused)
		result := resultFor(order)
		result.Reused = true
		return result, nil
	}

	shipment, err := s.creator.CreateShipment(ctx, order, pkg)
	if err != nil {
		s.logger.Error("Carrier shipment creation failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, IntegrationError(http.StatusInternalServerError, err.Error(), err)
	}

	order.TrackingNumber = shipment.TrackingNumber
	order.LabelURL = shipment.LabelURL
	order.LabelPublicID = shipment.LabelPublicID
	order.Carrier = shipment.Carrier
	order.TrackingURL = shipment.TrackingURL
	order.ShipmentStatus = models.ShipmentStatusLabelGenerated
	order.Status = models.OrderStatusShipped
	// a new label has not been handed to the carrier yet
	order.CarrierHandoffAt = nil

	if svcErr := s.persist(ctx, order, models.EventLabelGenerated); svcErr != nil {
		return nil, svcErr
	}

	s.logger.Info("Label created",
		zap.String("order_id", orderID),
		zap.String("tracking_number", order.TrackingNumber),
		zap.String("carrier", order.Carrier),
		zap.Bool("forced", pkg.Force),
	)
	s.record(ctx, awspkg.MetricLabelsCreated)
	return resultFor(order), nil
}

// Handoff records that the carrier has taken the parcel.
func (s *shipmentServiceImpl) Handoff(ctx context.Context, orderID string) (*ShipmentResult, *ServiceError) {
	order, svcErr := s.loadOrder(ctx, orderID)
	if svcErr != nil {
		return nil, svcErr
	}
	if order.TrackingNumber == "" {
		return nil, PreconditionError("Cannot hand off an order without a tracking number")
	}

	now := s.now().UTC()
	order.ShipmentStatus = models.ShipmentStatusCarrierHandoff
	if order.Status == models.OrderStatusPlaced {
		order.Status = models.OrderStatusShipped
	}
	order.CarrierHandoffAt = &now

	if svcErr := s.persist(ctx, order, models.EventCarrierHandoff); svcErr != nil {
		return nil, svcErr
	}

	s.logger.Info("Order handed off to carrier",
		zap.String("order_id", orderID),
		zap.String("tracking_number", order.TrackingNumber),
	)
	s.record(ctx, awspkg.MetricCarrierHandoffs)
	return resultFor(order), nil
}

// persist writes the shipment fields together with the tracking e-mail
// intent, then runs the post-commit side effects.
func (s *shipmentServiceImpl) persist(ctx context.Context, order *models.Order, eventType string) *ServiceError {
	intent := trackingIntent(order)
	if err := s.orders.SaveShipment(ctx, order, intent); err != nil {
		s.logger.Error("Failed to save shipment", zap.String("order_id", order.ID.String()), zap.Error(err))
		return PersistenceError("Failed to save shipment: "+err.Error(), err)
	}

	if intent != nil && s.notifier != nil {
		s.notifier.Dispatch(ctx, order.ID)
	}
	if s.publisher != nil {
		s.publisher.PublishShipment(ctx, models.ShipmentEvent{
			EventType:      eventType,
			OrderID:        order.ID.String(),
			UserID:         order.UserID.String(),
			TrackingNumber: order.TrackingNumber,
			Carrier:        order.Carrier,
			LabelURL:       order.LabelURL,
			Status:         order.Status,
			ShipmentStatus: order.ShipmentStatus,
			Timestamp:      s.now().UTC(),
		})
	}
	return nil
}

// trackingIntent returns the outbox row to enqueue with this write, or nil
// when the customer was already notified or has no address to notify.
func trackingIntent(order *models.Order) *models.NotificationOutbox {
	if order.TrackingEmailSentAt != nil {
		return nil
	}
	email := order.CustomerEmail()
	if email == "" {
		return nil
	}
	return &models.NotificationOutbox{
		OrderID:        order.ID,
		Kind:           models.NotificationKindTrackingEmail,
		Recipient:      email,
		RecipientName:  order.CustomerName(),
		OrderNumber:    order.OrderNumber,
		TrackingNumber: order.TrackingNumber,
		TrackingURL:    order.TrackingURL,
		Carrier:        order.Carrier,
		Status:         models.OutboxStatusPending,
	}
}

func (s *shipmentServiceImpl) record(ctx context.Context, metric string) {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.RecordCount(ctx, metric, nil); err != nil {
		s.logger.Warn("Failed to record metric", zap.String("metric", metric), zap.Error(err))
	}
}

// PackingSlip renders the order's packing slip as a PDF.
func (s *shipmentServiceImpl) PackingSlip(ctx context.Context, orderID string) ([]byte, string, *ServiceError) {
	order, svcErr := s.loadOrder(ctx, orderID)
	if svcErr != nil {
		return nil, "", svcErr
	}
	if order.ShippingAddress == nil {
		return nil, "", PreconditionError("Order has no shipping address")
	}
	pdf, err := s.slips.Render(order)
	if err != nil {
		s.logger.Error("Failed to render packing slip", zap.String("order_id", orderID), zap.Error(err))
		return nil, "", &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to render packing slip", Err: err}
	}
	return pdf, packingSlipFilename(order), nil
}

func resultFor(order *models.Order) *ShipmentResult {
	return &ShipmentResult{
		OrderID:        order.ID.String(),
		TrackingNumber: order.TrackingNumber,
		LabelURL:       order.LabelURL,
		LabelPublicID:  order.LabelPublicID,
		Carrier:        order.Carrier,
		TrackingURL:    order.TrackingURL,
		Status:         order.Status,
		ShipmentStatus: order.ShipmentStatus,
	}
}
