package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/contacts-service/internal/auth"
	"github.com/spec-kit/contacts-service/internal/domain"
	"github.com/spec-kit/contacts-service/internal/events"
	"github.com/spec-kit/contacts-service/internal/repository"
)

// SignupInput carries registration fields.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// AuthService coordinates registration, sessions and account recovery.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	resolver   *auth.UserResolver
	publisher  events.Publisher
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	Users      repository.UserRepository
	Tokens     *auth.TokenManager
	Resolver   *auth.UserResolver
	Publisher  events.Publisher
	BcryptCost int
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.Users,
		tokens:     deps.Tokens,
		resolver:   deps.Resolver,
		publisher:  deps.Publisher,
		bcryptCost: deps.BcryptCost,
		logger:     logger,
	}
}

// Signup creates an unconfirmed account and queues the confirmation email.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	s.sendConfirmation(ctx, events.EventUserRegistered, user)
	return user, nil
}

// Login checks credentials and starts a new session. The new refresh token
// replaces whatever was on record, revoking earlier sessions.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Warn("login rejected", zap.String("email", email))
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(user.Email)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := s.users.UpdateRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return domain.TokenPair{}, err
	}
	s.invalidate(ctx, user.Email)
	return pair, nil
}

// Refresh exchanges the current refresh token for a new pair. Presenting any
// other refresh token revokes the one on record.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	subject, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}

	user, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TokenPair{}, fmt.Errorf("%w: %v", auth.ErrUnauthenticated, auth.ErrUserNotFound)
		}
		return domain.TokenPair{}, err
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		s.logger.Warn("stale refresh token presented, revoking session", zap.String("email", subject))
		if err := s.users.UpdateRefreshToken(ctx, user.ID, nil); err != nil {
			return domain.TokenPair{}, err
		}
		s.invalidate(ctx, subject)
		return domain.TokenPair{}, fmt.Errorf("%w: refresh token revoked", auth.ErrUnauthenticated)
	}

	pair, err := s.issuePair(subject)
	if err != nil {
		return domain.TokenPair{}, err
	}
	swapped, err := s.users.SwapRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if !swapped {
		return domain.TokenPair{}, fmt.Errorf("%w: refresh token already rotated", auth.ErrUnauthenticated)
	}
	s.invalidate(ctx, subject)
	return pair, nil
}

// Logout revokes the refresh token of user.
func (s *AuthService) Logout(ctx context.Context, user *domain.User) error {
	if err := s.users.UpdateRefreshToken(ctx, user.ID, nil); err != nil {
		return err
	}
	s.invalidate(ctx, user.Email)
	return nil
}

// ConfirmEmail marks the account behind an email token as confirmed. It
// reports whether the account was confirmed already.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	subject, err := s.tokens.VerifyEmail(token)
	if err != nil {
		return false, err
	}

	user, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrVerification
		}
		return false, err
	}
	if user.Confirmed {
		return true, nil
	}
	if err := s.users.ConfirmEmail(ctx, subject); err != nil {
		return false, err
	}
	s.invalidate(ctx, subject)
	return false, nil
}

// RequestEmail re-sends the confirmation email. Unknown addresses are not
// reported to the caller.
func (s *AuthService) RequestEmail(ctx context.Context, email string) (bool, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if user.Confirmed {
		return true, nil
	}
	s.sendConfirmation(ctx, events.EventEmailConfirmationRequested, user)
	return false, nil
}

// RequestPasswordReset issues a reset token and queues the reset email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		return err
	}

	token, expiresAt, err := s.tokens.IssueResetToken(user.Email)
	if err != nil {
		return err
	}
	return s.publish(ctx, events.EventPasswordResetRequested, user, token, expiresAt)
}

// ResetPassword sets a new password using a single-use reset token. The token
// is consumed before the password changes, so a failed update costs the caller
// a new reset request rather than leaving a reusable token behind.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	subject, expiresAt, err := s.tokens.VerifyReset(ctx, token)
	if err != nil {
		return err
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.tokens.MarkResetTokenUsed(ctx, token, s.tokens.Remaining(expiresAt)); err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, subject, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.ErrInvalidOrExpiredToken
		}
		return err
	}
	s.invalidate(ctx, subject)
	s.logger.Info("password reset", zap.String("email", subject))
	return nil
}

func (s *AuthService) issuePair(subject string) (domain.TokenPair, error) {
	access, _, err := s.tokens.IssueAccessToken(subject, 0)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, _, err := s.tokens.IssueRefreshToken(subject, 0)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) sendConfirmation(ctx context.Context, eventType events.EventType, user *domain.User) {
	token, expiresAt, err := s.tokens.IssueEmailToken(user.Email)
	if err != nil {
		s.logger.Error("issue email token", zap.String("email", user.Email), zap.Error(err))
		return
	}
	if err := s.publish(ctx, eventType, user, token, expiresAt); err != nil {
		s.logger.Warn("confirmation email not queued", zap.String("email", user.Email), zap.Error(err))
	}
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, user *domain.User, token string, expiresAt time.Time) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   user.Email,
		Timestamp: time.Now().UTC(),
		Payload: events.MailPayload{
			Username:  user.Username,
			Email:     user.Email,
			Token:     token,
			ExpiresAt: expiresAt,
		},
	})
}

// invalidate drops the cached snapshot. Failures are logged and ignored.
func (s *AuthService) invalidate(ctx context.Context, email string) {
	if s.resolver == nil {
		return
	}
	if err := s.resolver.InvalidateUser(ctx, email); err != nil {
		s.logger.Warn("user cache invalidation failed", zap.String("email", email), zap.Error(err))
	}
}
