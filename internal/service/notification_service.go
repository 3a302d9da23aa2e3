package service

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront-api/internal/config"
	"github.com/spec-kit/storefront-api/internal/events"
	"github.com/spec-kit/storefront-api/internal/notify"
)

// NotificationService forwards auth events to the notifier.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   notify.Notifier
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifier notify.Notifier, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserSignedUp, n.handleUserSignedUp)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventPasswordResetCompleted, n.handlePasswordResetCompleted)
}

func (n *NotificationService) handleUserSignedUp(_ context.Context, event events.Event) error {
	n.logger.Debug("UserSignedUp", zap.String("user_id", event.UserID))
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	resetURL, err := n.resetURL(payload.ResetToken)
	if err != nil {
		return err
	}
	return n.notifier.NotifyPasswordReset(ctx, notify.ResetMessage{
		UserID:    event.UserID,
		Email:     payload.Email,
		ResetURL:  resetURL,
		ExpiresAt: payload.ExpiresAt,
	})
}

func (n *NotificationService) handlePasswordResetCompleted(_ context.Context, event events.Event) error {
	n.logger.Debug("PasswordResetCompleted", zap.String("user_id", event.UserID))
	return nil
}

func (n *NotificationService) resetURL(token string) (string, error) {
	u, err := url.Parse(n.cfg.ResetURL)
	if err != nil {
		return "", fmt.Errorf("parse reset url: %w", err)
	}
	q := u.Query()
	q.Set("resetToken", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
