package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contacts-service/internal/domain"
	apperrors "github.com/spec-kit/contacts-service/pkg/util/errorutil"
)

const currentUserKey = "auth_user"

var errUnauthorized = apperrors.NewUnauthorized(ErrUnauthenticated.Error()).(*apperrors.DomainError)

// AccessVerifier validates access tokens.
type AccessVerifier interface {
	VerifyAccess(token string) (string, error)
}

// Resolver maps a token subject onto a user.
type Resolver interface {
	ResolveUser(ctx context.Context, subject string) (*domain.User, error)
}

// Middleware authenticates bearer access tokens.
type Middleware struct {
	tokens AccessVerifier
	users  Resolver
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens AccessVerifier, users Resolver) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	token, ok := BearerToken(c)
	if !ok {
		return errUnauthorized.Wrap(errors.New("missing bearer token"))
	}

	subject, err := m.tokens.VerifyAccess(token)
	if err != nil {
		return errUnauthorized.Wrap(err)
	}

	user, err := m.users.ResolveUser(c.UserContext(), subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return errUnauthorized.Wrap(err)
		}
		return apperrors.NewInternalError(err)
	}

	c.Locals(currentUserKey, user)
	return c.Next()
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserFromContext retrieves the authenticated user.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(currentUserKey).(*domain.User)
	return user, ok && user != nil
}
