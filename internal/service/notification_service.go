package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/contacts-service/internal/events"
	"github.com/spec-kit/contacts-service/internal/mailer"
)

// NotificationService turns account events into emails.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     mailer.Sender
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sender mailer.Sender, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleConfirmation)
	n.dispatcher.Subscribe(events.EventEmailConfirmationRequested, n.handleConfirmation)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordReset)
}

func (n *NotificationService) handleConfirmation(ctx context.Context, event events.Event) error {
	return n.send(ctx, event, mailer.KindVerifyEmail)
}

func (n *NotificationService) handlePasswordReset(ctx context.Context, event events.Event) error {
	return n.send(ctx, event, mailer.KindResetPassword)
}

func (n *NotificationService) send(ctx context.Context, event events.Event, kind mailer.Kind) error {
	payload, ok := event.Payload.(events.MailPayload)
	if !ok {
		return fmt.Errorf("event %s: unexpected payload %T", event.Type, event.Payload)
	}

	n.logger.Info("sending notification",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
		zap.String("to", payload.Email))

	return n.sender.Send(ctx, kind, payload.Email, mailer.Data{
		Username:  payload.Username,
		Token:     payload.Token,
		ExpiresAt: payload.ExpiresAt,
	})
}
