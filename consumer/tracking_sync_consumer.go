package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	awspkg "github.com/Hosanna-Mosa/c-t-sub002/pkg/aws"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Poller interface {
	Poll(ctx context.Context, handler awspkg.MessageHandler) error
}

type TrackingSyncer interface {
	Sync(ctx context.Context, orderIDs []uuid.UUID) (models.TrackingSyncResult, error)
}

// TrackingSyncConsumer runs queued tracking sync jobs.
type TrackingSyncConsumer struct {
	queue  Poller
	syncer TrackingSyncer
	logger *zap.Logger
}

func NewTrackingSyncConsumer(queue Poller, syncer TrackingSyncer, logger *zap.Logger) *TrackingSyncConsumer {
	return &TrackingSyncConsumer{queue: queue, syncer: syncer, logger: logger}
}

// Start blocks until ctx is cancelled.
func (c *TrackingSyncConsumer) Start(ctx context.Context) {
	c.logger.Info("Tracking sync consumer started")
	if err := c.queue.Poll(ctx, c.Handle); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Error("Tracking sync consumer stopped", zap.Error(err))
	}
}

// snsEnvelope unwraps the SNS → SQS message wrapper
type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// Handle processes one message. Unparseable messages are dropped; sync
// failures are returned so SQS redelivers the job.
func (c *TrackingSyncConsumer) Handle(ctx context.Context, body string) error {
	payload := body
	var envelope snsEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err == nil && envelope.Type == "Notification" {
		payload = envelope.Message
	}

	var job models.TrackingSyncJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		c.logger.Error("Dropping unparseable tracking sync job", zap.Error(err))
		return nil
	}

	ids := make([]uuid.UUID, 0, len(job.OrderIDs))
	for _, raw := range job.OrderIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.logger.Warn("Skipping invalid order id in sync job", zap.String("order_id", raw))
			continue
		}
		ids = append(ids, id)
	}
	if len(job.OrderIDs) > 0 && len(ids) == 0 {
		c.logger.Warn("Tracking sync job has no valid order ids", zap.String("requested_by", job.RequestedBy))
		return nil
	}

	result, err := c.syncer.Sync(ctx, ids)
	if err != nil {
		return fmt.Errorf("tracking sync failed: %w", err)
	}
	c.logger.Info("Tracking sync job processed",
		zap.String("requested_by", job.RequestedBy),
		zap.Int("checked", result.Checked),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
	)
	return nil
}
