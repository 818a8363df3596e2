package service

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/contacts-service/internal/auth"
	"github.com/spec-kit/contacts-service/internal/domain"
	"github.com/spec-kit/contacts-service/internal/repository"
)

// AvatarUploader stores avatar images and returns their public URL.
type AvatarUploader interface {
	Upload(ctx context.Context, userID int64, filename, contentType string, body io.Reader) (string, error)
}

// UserService manages the profile of the authenticated user.
type UserService struct {
	users    repository.UserRepository
	avatars  AvatarUploader
	resolver *auth.UserResolver
	logger   *zap.Logger
}

// NewUserService builds the service. avatars may be nil when storage is off.
func NewUserService(users repository.UserRepository, avatars AvatarUploader, resolver *auth.UserResolver, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, avatars: avatars, resolver: resolver, logger: logger}
}

// UpdateAvatar uploads a new avatar for user and stores its URL.
func (s *UserService) UpdateAvatar(ctx context.Context, user *domain.User, filename, contentType string, body io.Reader) (*domain.User, error) {
	if s.avatars == nil {
		return nil, ErrAvatarsDisabled
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrUnsupportedAvatar
	}

	url, err := s.avatars.Upload(ctx, user.ID, filename, contentType, body)
	if err != nil {
		return nil, err
	}
	updated, err := s.users.UpdateAvatar(ctx, user.Email, url)
	if err != nil {
		return nil, err
	}

	if s.resolver != nil {
		if err := s.resolver.InvalidateUser(ctx, user.Email); err != nil {
			s.logger.Warn("user cache invalidation failed", zap.String("email", user.Email), zap.Error(err))
		}
	}
	s.logger.Info("avatar updated", zap.Int64("user_id", user.ID))
	return updated, nil
}
