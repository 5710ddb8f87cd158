package services

import (
	"context"
	"errors"
	"time"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	awspkg "github.com/Hosanna-Mosa/c-t-sub002/pkg/aws"
	"github.com/Hosanna-Mosa/c-t-sub002/repository"
	"github.com/Hosanna-Mosa/c-t-sub002/sender"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultMaxAttempts = 5
	defaultClaimTTL    = 5 * time.Minute
	defaultSendTimeout = 15 * time.Second
	defaultRelayBatch  = 50
)

// NotificationDispatcher sends queued tracking e-mails. Each outbox row is
// claimed before sending, so the request path and the relay never deliver the
// same row twice while a claim is live.
type NotificationDispatcher struct {
	outbox      repository.NotificationOutboxRepository
	mailer      sender.Mailer
	metrics     MetricsRecorder
	logger      *zap.Logger
	maxAttempts int
	claimTTL    time.Duration
	sendTimeout time.Duration
	batchSize   int
	now         func() time.Time
}

func NewNotificationDispatcher(outbox repository.NotificationOutboxRepository, mailer sender.Mailer, metrics MetricsRecorder, logger *zap.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{
		outbox:      outbox,
		mailer:      mailer,
		metrics:     metrics,
		logger:      logger,
		maxAttempts: DefaultMaxAttempts,
		claimTTL:    defaultClaimTTL,
		sendTimeout: defaultSendTimeout,
		batchSize:   defaultRelayBatch,
		now:         time.Now,
	}
}

// Dispatch sends the pending tracking e-mail for orderID, if there is one.
// It outlives the caller's request context.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, orderID uuid.UUID) {
	if d.mailer == nil {
		d.logger.Warn("E-mail sender not configured, leaving notification queued", zap.String("order_id", orderID.String()))
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.sendTimeout)
	defer cancel()

	entry, err := d.outbox.FindPendingForOrder(ctx, orderID, models.NotificationKindTrackingEmail)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			d.logger.Error("Failed to load queued notification", zap.String("order_id", orderID.String()), zap.Error(err))
		}
		return
	}
	d.deliver(ctx, entry)
}

// RelayPending retries every deliverable row once and reports how many were
// sent.
func (d *NotificationDispatcher) RelayPending(ctx context.Context) (int, error) {
	if d.mailer == nil {
		return 0, nil
	}
	entries, err := d.outbox.FindPending(ctx, d.now().Add(-d.claimTTL), d.batchSize)
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range entries {
		if ctx.Err() != nil {
			break
		}
		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		if d.deliver(sendCtx, &entries[i]) {
			sent++
		}
		cancel()
	}
	return sent, nil
}

// Run relays pending notifications every interval until ctx is done.
func (d *NotificationDispatcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	d.logger.Info("Notification relay started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Notification relay stopped")
			return
		case <-ticker.C:
			sent, err := d.RelayPending(ctx)
			if err != nil {
				d.logger.Error("Notification relay failed", zap.Error(err))
				continue
			}
			if sent > 0 {
				d.logger.Info("Relayed queued notifications", zap.Int("sent", sent))
			}
		}
	}
}

func (d *NotificationDispatcher) deliver(ctx context.Context, entry *models.NotificationOutbox) bool {
	log := d.logger.With(
		zap.String("order_id", entry.OrderID.String()),
		zap.String("outbox_id", entry.ID.String()),
	)

	claimed, err := d.outbox.Claim(ctx, entry.ID, d.now().Add(-d.claimTTL))
	if err != nil {
		log.Error("Failed to claim notification", zap.Error(err))
		return false
	}
	if !claimed {
		log.Debug("Notification already claimed")
		return false
	}

	email := sender.TrackingEmail{
		Name:           entry.RecipientName,
		OrderNumber:    entry.OrderNumber,
		TrackingNumber: entry.TrackingNumber,
		TrackingURL:    entry.TrackingURL,
		Carrier:        entry.Carrier,
	}
	body, err := email.Render()
	if err == nil {
		_, err = d.mailer.Send(ctx, sender.Message{
			To:      entry.Recipient,
			ToName:  entry.RecipientName,
			Subject: email.Subject(),
			HTML:    body,
		})
	}
	if err != nil {
		log.Warn("Tracking e-mail failed", zap.Int("attempt", entry.Attempts+1), zap.Error(err))
		if recErr := d.outbox.RecordFailure(context.WithoutCancel(ctx), entry, err.Error(), d.maxAttempts); recErr != nil {
			log.Error("Failed to record notification failure", zap.Error(recErr))
		}
		return false
	}

	if err := d.outbox.MarkSent(context.WithoutCancel(ctx), entry, d.now().UTC()); err != nil {
		// the row stays claimed and is retried once the claim goes stale
		log.Error("Failed to settle sent notification", zap.Error(err))
		return false
	}
	if d.metrics != nil {
		_ = d.metrics.RecordCount(ctx, awspkg.MetricTrackingEmailsSent, nil)
	}
	log.Info("Tracking e-mail sent", zap.String("recipient", entry.Recipient))
	return true
}
