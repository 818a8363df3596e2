package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/contacts-service/internal/events"
	"github.com/spec-kit/contacts-service/internal/mailer"
)

type sentMail struct {
	kind mailer.Kind
	to   string
	data mailer.Data
}

type fakeSender struct{ sent []sentMail }

func (f *fakeSender) Send(_ context.Context, kind mailer.Kind, to string, data mailer.Data) error {
	f.sent = append(f.sent, sentMail{kind: kind, to: to, data: data})
	return nil
}

func TestNotificationService_RoutesEventsToTemplates(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(nil)
	sender := &fakeSender{}
	NewNotificationService(dispatcher, sender, nil).RegisterHandlers()

	expires := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	payload := events.MailPayload{Username: "alice", Email: "a@example.com", Token: "tok", ExpiresAt: expires}
	ctx := context.Background()

	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventUserRegistered, Payload: payload}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventEmailConfirmationRequested, Payload: payload}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventPasswordResetRequested, Payload: payload}))

	require.Len(t, sender.sent, 3)
	assert.Equal(t, mailer.KindVerifyEmail, sender.sent[0].kind)
	assert.Equal(t, mailer.KindVerifyEmail, sender.sent[1].kind)
	assert.Equal(t, mailer.KindResetPassword, sender.sent[2].kind)
	assert.Equal(t, "a@example.com", sender.sent[2].to)
	assert.Equal(t, mailer.Data{Username: "alice", Token: "tok", ExpiresAt: expires}, sender.sent[2].data)
}

func TestNotificationService_RejectsUnexpectedPayload(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(nil)
	NewNotificationService(dispatcher, &fakeSender{}, nil).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventUserRegistered, Payload: "nope"})
	assert.Error(t, err)
}
