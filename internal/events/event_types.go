package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered             EventType = "user_registered"
	EventEmailConfirmationRequested EventType = "email_confirmation_requested"
	EventPasswordResetRequested     EventType = "password_reset_requested"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// MailPayload carries what a notification needs to address and link an email.
// Token is an email-confirmation token or a password-reset token depending on
// the event type.
type MailPayload struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
