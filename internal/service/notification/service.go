// Package notification enqueues counterpart notifications into a
// transactional outbox. Delivery happens out-of-band in the worker, so an
// outage of any delivery channel never blocks or fails an appointment
// mutation.
package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/mamacare/appointment-api/internal/model"
	"github.com/mamacare/appointment-api/internal/repository"
	"github.com/mamacare/appointment-api/pkg/logger"
	"github.com/mamacare/appointment-api/pkg/metrics"
)

type Service interface {
	Enqueue(ctx context.Context, targetID uuid.UUID, title, body string, data map[string]string) error
}

type service struct {
	repo    repository.NotificationRepository
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewService(repo repository.NotificationRepository, m *metrics.Metrics, logger *logger.Logger) Service {
	return &service{repo: repo, metrics: m, logger: logger}
}

// Enqueue writes one outbox row per delivery channel. The push row is
// addressed by user id (device tokens are resolved at dispatch time); the
// in-app row is fanned out over the message broker by the worker.
func (s *service) Enqueue(ctx context.Context, targetID uuid.UUID, title, body string, data map[string]string) error {
	for _, channel := range []model.NotificationChannel{model.ChannelPush, model.ChannelInApp} {
		n := &model.Notification{
			TargetID:  targetID,
			Channel:   channel,
			Recipient: targetID.String(),
			Title:     title,
			Body:      body,
			Data:      data,
		}
		if err := s.repo.Create(ctx, n); err != nil {
			return err
		}
		s.metrics.NotificationsEnqueued.Inc()
	}
	return nil
}
