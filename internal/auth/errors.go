package auth

import "errors"

var (
	// ErrUnauthenticated covers bad, expired or wrong-purpose tokens, a missing
	// subject, a revoked refresh token and an unknown user.
	ErrUnauthenticated = errors.New("could not validate credentials")
	// ErrInvalidOrExpiredToken is returned for reset and email tokens that are
	// malformed, expired or already consumed.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	// ErrWeakSecret is returned when a new password fails the strength policy.
	ErrWeakSecret = errors.New("password too weak")
	// ErrUserNotFound is returned by the resolver when no user matches a subject.
	ErrUserNotFound = errors.New("user not found")
)
