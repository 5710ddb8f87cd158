package events

import (
	"context"
	"encoding/json"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	awspkg "github.com/Hosanna-Mosa/c-t-sub002/pkg/aws"
	"go.uber.org/zap"
)

// ShipmentPublisher announces committed shipment changes. Publishing is best
// effort: failures are logged, never returned.
type ShipmentPublisher interface {
	PublishShipment(ctx context.Context, event models.ShipmentEvent)
}

type SNSShipmentPublisher struct {
	sns      awspkg.SNSPublisher
	topicArn string
	logger   *zap.Logger
}

func NewSNSShipmentPublisher(sns awspkg.SNSPublisher, topicArn string, logger *zap.Logger) *SNSShipmentPublisher {
	return &SNSShipmentPublisher{sns: sns, topicArn: topicArn, logger: logger}
}

func (p *SNSShipmentPublisher) PublishShipment(ctx context.Context, event models.ShipmentEvent) {
	if p.sns == nil || p.topicArn == "" {
		p.logger.Debug("SNS not configured, skipping event publish", zap.String("event_type", event.EventType))
		return
	}
	b, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal SNS event", zap.Error(err))
		return
	}
	if err := p.sns.Publish(ctx, p.topicArn, b, event.EventType); err != nil {
		p.logger.Error("Failed to publish SNS event",
			zap.String("event_type", event.EventType),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
		return
	}
	p.logger.Info("Published SNS event",
		zap.String("event_type", event.EventType),
		zap.String("order_id", event.OrderID),
	)
}
