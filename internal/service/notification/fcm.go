package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mamacare/appointment-api/internal/repository"
	apperrors "github.com/mamacare/appointment-api/pkg/errors"
	"github.com/mamacare/appointment-api/pkg/logger"
)

// FCMConfig configures the legacy FCM HTTP gateway.
type FCMConfig struct {
	Endpoint  string
	ServerKey string
	Timeout   time.Duration
}

// FCMGateway delivers push notifications to every registered device token
// of the target user. Tokens FCM reports as unregistered are pruned so the
// token set converges on live devices.
type FCMGateway struct {
	cfg    FCMConfig
	tokens repository.DeviceTokenRepository
	client *http.Client
	logger *logger.Logger
}

func NewFCMGateway(cfg FCMConfig, tokens repository.DeviceTokenRepository, logger *logger.Logger) *FCMGateway {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &FCMGateway{
		cfg:    cfg,
		tokens: tokens,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type fcmMessage struct {
	To           string            `json:"to"`
	Priority     string            `json:"priority"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		Error string `json:"error"`
	} `json:"results"`
}

func (g *FCMGateway) Send(ctx context.Context, targetID uuid.UUID, title, body string, data map[string]string) error {
	tokens, err := g.tokens.ListByUser(ctx, targetID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		// No registered device is not a delivery failure.
		g.logger.Warn("no device tokens for user", "user_id", targetID.String())
		return nil
	}

	var failures int
	for _, token := range tokens {
		if err := g.sendOne(ctx, targetID, token, title, body, data); err != nil {
			failures++
			g.logger.Error(err, "push delivery failed", "user_id", targetID.String())
		}
	}
	if failures == len(tokens) {
		return apperrors.NewNotification(fmt.Errorf("all %d device tokens failed", failures))
	}
	return nil
}

func (g *FCMGateway) sendOne(ctx context.Context, targetID uuid.UUID, token, title, body string, data map[string]string) error {
	payload, err := json.Marshal(fcmMessage{
		To:           token,
		Priority:     "high",
		Notification: fcmNotification{Title: title, Body: body},
		Data:         data,
	})
	if err != nil {
		return fmt.Errorf("marshal fcm message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build fcm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+g.cfg.ServerKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("send fcm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fcm returned status %d", resp.StatusCode)
	}

	var result fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode fcm response: %w", err)
	}

	for _, r := range result.Results {
		switch r.Error {
		case "":
		case "NotRegistered", "InvalidRegistration":
			if rmErr := g.tokens.Remove(ctx, targetID, token); rmErr != nil {
				g.logger.Error(rmErr, "failed to prune stale device token")
			}
			return fmt.Errorf("token unregistered")
		default:
			return fmt.Errorf("fcm error: %s", r.Error)
		}
	}
	return nil
}
