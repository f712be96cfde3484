package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending  NotificationStatus = "pending"
	NotificationStatusSent     NotificationStatus = "sent"
	NotificationStatusRetrying NotificationStatus = "retrying"
	NotificationStatusFailed   NotificationStatus = "failed"
)

type NotificationChannel string

const (
	ChannelPush  NotificationChannel = "push"
	ChannelInApp NotificationChannel = "in_app"
	ChannelEmail NotificationChannel = "email"
)

// Notification is one outbox row. It is written in the same request that
// commits an appointment mutation and dispatched later by the worker, so a
// gateway outage never blocks or fails the mutation.
type Notification struct {
	ID          uuid.UUID           `db:"id" json:"id"`
	TargetID    uuid.UUID           `db:"target_id" json:"target_id"`
	Channel     NotificationChannel `db:"channel" json:"channel"`
	Recipient   string              `db:"recipient" json:"recipient"`
	Title       string              `db:"title" json:"title"`
	Body        string              `db:"body" json:"body"`
	Data        map[string]string   `db:"-" json:"data,omitempty"`
	Status      NotificationStatus  `db:"status" json:"status"`
	RetryCount  int                 `db:"retry_count" json:"retry_count"`
	LastError   *string             `db:"last_error" json:"last_error,omitempty"`
	NextRetryAt *time.Time          `db:"next_retry_at" json:"next_retry_at,omitempty"`
	SentAt      *time.Time          `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt   time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `db:"updated_at" json:"updated_at"`
}

// NotificationEvent is the in-app payload published to the message broker.
type NotificationEvent struct {
	ID             uuid.UUID         `json:"id"`
	NotificationID uuid.UUID         `json:"notification_id"`
	TargetID       uuid.UUID         `json:"target_id"`
	Title          string            `json:"title"`
	Body           string            `json:"body"`
	Data           map[string]string `json:"data,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// DeviceToken is one registered push token for a user.
type DeviceToken struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Token     string    `db:"token" json:"token"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
