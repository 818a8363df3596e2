package mailer

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	mail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/spec-kit/contacts-service/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// Kind selects the email template.
type Kind string

const (
	KindVerifyEmail   Kind = "verify_email"
	KindResetPassword Kind = "reset_password"
)

var subjects = map[Kind]string{
	KindVerifyEmail:   "Confirm your email",
	KindResetPassword: "Password reset request",
}

var linkPaths = map[Kind]string{
	KindVerifyEmail:   "auth/confirmed_email/",
	KindResetPassword: "auth/reset_password/",
}

// Data is the template input.
type Data struct {
	Username  string
	Token     string
	ExpiresAt time.Time
}

type view struct {
	Data
	Link string
}

// Sender delivers templated emails.
type Sender interface {
	Send(ctx context.Context, kind Kind, to string, data Data) error
}

// Mailer renders HTML templates and delivers them over SMTP.
type Mailer struct {
	client    *mail.Client
	from      string
	fromName  string
	publicURL string
	templates *template.Template
	logger    *zap.Logger
}

// New builds a Mailer. The SMTP connection is opened per message.
func New(cfg config.MailConfig, logger *zap.Logger) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("mailer: MAIL_SERVER is empty")
	}

	opts := []mail.Option{mail.WithPort(cfg.Port), mail.WithTimeout(10 * time.Second)}
	if cfg.SSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mailer: new client: %w", err)
	}
	return newMailer(client, cfg, logger)
}

func newMailer(client *mail.Client, cfg config.MailConfig, logger *zap.Logger) (*Mailer, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("mailer: parse templates: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	publicURL := cfg.PublicURL
	if !strings.HasSuffix(publicURL, "/") {
		publicURL += "/"
	}
	return &Mailer{
		client:    client,
		from:      cfg.From,
		fromName:  cfg.FromName,
		publicURL: publicURL,
		templates: tpl,
		logger:    logger,
	}, nil
}

// Compose renders the message without sending it.
func (m *Mailer) Compose(kind Kind, to string, data Data) (*mail.Msg, error) {
	subject, ok := subjects[kind]
	if !ok {
		return nil, fmt.Errorf("mailer: unknown template %q", kind)
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.from); err != nil {
		return nil, fmt.Errorf("mailer: from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("mailer: to: %w", err)
	}
	msg.Subject(subject)

	body, err := m.render(kind, data)
	if err != nil {
		return nil, err
	}
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}

func (m *Mailer) render(kind Kind, data Data) (string, error) {
	var buf bytes.Buffer
	err := m.templates.ExecuteTemplate(&buf, string(kind)+".html", view{Data: data, Link: m.Link(kind, data.Token)})
	if err != nil {
		return "", fmt.Errorf("mailer: render %s: %w", kind, err)
	}
	return buf.String(), nil
}

// Link builds the public URL a recipient follows for kind.
func (m *Mailer) Link(kind Kind, token string) string {
	return m.publicURL + linkPaths[kind] + token
}

// Send composes and delivers a message.
func (m *Mailer) Send(ctx context.Context, kind Kind, to string, data Data) error {
	msg, err := m.Compose(kind, to, data)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mailer: send %s: %w", kind, err)
	}
	m.logger.Info("email sent", zap.String("template", string(kind)), zap.String("to", to))
	return nil
}

// LogSender logs emails instead of delivering them. It is used when SMTP is
// not configured.
type LogSender struct {
	Logger *zap.Logger
}

func (s LogSender) Send(_ context.Context, kind Kind, to string, data Data) error {
	s.Logger.Info("email delivery disabled",
		zap.String("template", string(kind)),
		zap.String("to", to),
		zap.Time("expires_at", data.ExpiresAt))
	return nil
}
