package mailer

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/contacts-service/internal/config"
)

func testMailer(t *testing.T) *Mailer {
	t.Helper()
	m, err := newMailer(nil, config.MailConfig{
		From:      "noreply@example.com",
		FromName:  "Contacts Service",
		PublicURL: "https://contacts.example.com",
	}, nil)
	require.NoError(t, err)
	return m
}

func TestMailer_Link(t *testing.T) {
	m := testMailer(t)

	assert.Equal(t, "https://contacts.example.com/auth/confirmed_email/tok", m.Link(KindVerifyEmail, "tok"))
	assert.Equal(t, "https://contacts.example.com/auth/reset_password/tok", m.Link(KindResetPassword, "tok"))
}

func TestMailer_Render(t *testing.T) {
	m := testMailer(t)
	expires := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	body, err := m.render(KindResetPassword, Data{Username: "<alice>", Token: "abc.def", ExpiresAt: expires})
	require.NoError(t, err)
	assert.Contains(t, body, `href="https://contacts.example.com/auth/reset_password/abc.def"`)
	assert.Contains(t, body, "&lt;alice&gt;")
	assert.Contains(t, body, "2024-05-01 12:30 UTC")

	body, err = m.render(KindVerifyEmail, Data{Username: "bob", Token: "xyz"})
	require.NoError(t, err)
	assert.Contains(t, body, "auth/confirmed_email/xyz")
}

func TestMailer_Compose(t *testing.T) {
	m := testMailer(t)

	msg, err := m.Compose(KindVerifyEmail, "bob@example.com", Data{Username: "bob", Token: "xyz"})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Subject: Confirm your email")
	assert.Contains(t, buf.String(), "bob@example.com")

	_, err = m.Compose(KindVerifyEmail, "not an address", Data{})
	assert.Error(t, err)
	_, err = m.Compose(Kind("newsletter"), "bob@example.com", Data{})
	assert.Error(t, err)
}

func TestNew_RequiresHost(t *testing.T) {
	_, err := New(config.MailConfig{}, nil)
	assert.Error(t, err)
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := LogSender{Logger: zap.New(core)}

	require.NoError(t, s.Send(context.Background(), KindResetPassword, "a@example.com", Data{Token: "secret"}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "a@example.com", logs.All()[0].ContextMap()["to"])
}
