// Package worker contains the background notification dispatcher. It
// drains the notification outbox on a fixed poll interval and routes each
// row to its delivery channel.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mamacare/appointment-api/internal/model"
	"github.com/mamacare/appointment-api/internal/repository"
	"github.com/mamacare/appointment-api/pkg/logger"
	"github.com/mamacare/appointment-api/pkg/messaging"
	"github.com/mamacare/appointment-api/pkg/metrics"
)

// PushSender delivers a push notification to every device of a user.
type PushSender interface {
	Send(ctx context.Context, targetID uuid.UUID, title, body string, data map[string]string) error
}

// EmailSender delivers a plain-text mail.
type EmailSender interface {
	Send(recipient, subject, body string) error
}

// Config tunes the dispatch loop.
type Config struct {
	BatchSize    int
	PollInterval time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
}

// Notifier polls the outbox and dispatches pending notifications. Failed
// deliveries are retried with a growing delay until MaxRetries, then
// parked as failed. Delivery is at-least-once; consumers dedupe on the
// notification ID.
type Notifier struct {
	cfg     Config
	repo    repository.NotificationRepository
	push    PushSender
	email   EmailSender
	broker  messaging.Broker
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewNotifier(
	cfg Config,
	repo repository.NotificationRepository,
	push PushSender,
	email EmailSender,
	broker messaging.Broker,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Notifier {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	return &Notifier{
		cfg:     cfg,
		repo:    repo,
		push:    push,
		email:   email,
		broker:  broker,
		logger:  logger,
		metrics: metrics,
	}
}

// Start runs the dispatch loop until the context is cancelled.
func (n *Notifier) Start(ctx context.Context) {
	n.logger.Info("notification dispatcher started",
		"batch_size", n.cfg.BatchSize,
		"poll_interval", n.cfg.PollInterval.String())

	ticker := time.NewTicker(n.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			n.logger.Info("notification dispatcher stopped")
			return
		case <-ticker.C:
			if err := n.ProcessBatch(ctx); err != nil {
				n.logger.Error(err, "outbox batch failed")
			}
			n.updateQueueGauge(ctx)
		}
	}
}

// ProcessBatch claims up to BatchSize pending rows and dispatches each.
// Per-row failures are recorded on the row and never abort the batch.
func (n *Notifier) ProcessBatch(ctx context.Context) error {
	batch, err := n.repo.GetPendingWithLock(ctx, n.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("claim pending notifications: %w", err)
	}

	for _, notif := range batch {
		if err := n.dispatch(ctx, notif); err != nil {
			n.markFailure(ctx, notif, err)
			continue
		}
		n.markSent(ctx, notif)
	}
	return nil
}

func (n *Notifier) dispatch(ctx context.Context, notif *model.Notification) error {
	switch notif.Channel {
	case model.ChannelPush:
		return n.push.Send(ctx, notif.TargetID, notif.Title, notif.Body, notif.Data)
	case model.ChannelInApp:
		event := model.NotificationEvent{
			ID:             uuid.New(),
			NotificationID: notif.ID,
			TargetID:       notif.TargetID,
			Title:          notif.Title,
			Body:           notif.Body,
			Data:           notif.Data,
			CreatedAt:      time.Now(),
		}
		return n.broker.Publish(ctx, "notifications:"+notif.TargetID.String(), event)
	case model.ChannelEmail:
		if notif.Recipient == "" {
			return fmt.Errorf("email notification %s has no recipient", notif.ID)
		}
		return n.email.Send(notif.Recipient, notif.Title, notif.Body)
	default:
		return fmt.Errorf("unknown notification channel %q", notif.Channel)
	}
}

func (n *Notifier) markSent(ctx context.Context, notif *model.Notification) {
	now := time.Now()
	notif.Status = model.NotificationStatusSent
	notif.SentAt = &now
	notif.LastError = nil
	notif.NextRetryAt = nil
	if err := n.repo.Update(ctx, notif); err != nil {
		n.logger.Error(err, "failed to mark notification sent", "notification_id", notif.ID.String())
		return
	}
	n.metrics.NotificationsSent.WithLabelValues(string(notif.Channel)).Inc()
}

func (n *Notifier) markFailure(ctx context.Context, notif *model.Notification, cause error) {
	notif.RetryCount++
	msg := cause.Error()
	notif.LastError = &msg

	if notif.RetryCount >= n.cfg.MaxRetries {
		notif.Status = model.NotificationStatusFailed
		notif.NextRetryAt = nil
		n.metrics.NotificationsFailed.WithLabelValues(string(notif.Channel)).Inc()
		n.logger.Error(cause, "notification exhausted retries",
			"notification_id", notif.ID.String(),
			"channel", string(notif.Channel))
	} else {
		next := time.Now().Add(n.cfg.RetryDelay * time.Duration(notif.RetryCount))
		notif.Status = model.NotificationStatusRetrying
		notif.NextRetryAt = &next
		n.logger.Warn("notification delivery failed, will retry",
			"notification_id", notif.ID.String(),
			"channel", string(notif.Channel),
			"retry_count", notif.RetryCount,
			"error", msg)
	}

	if err := n.repo.Update(ctx, notif); err != nil {
		n.logger.Error(err, "failed to record notification failure", "notification_id", notif.ID.String())
	}
}

func (n *Notifier) updateQueueGauge(ctx context.Context) {
	count, err := n.repo.CountPending(ctx)
	if err != nil {
		n.logger.Error(err, "failed to count pending notifications")
		return
	}
	n.metrics.NotifierQueueSize.Set(float64(count))
}
