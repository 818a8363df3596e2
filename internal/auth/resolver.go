package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/contacts-service/internal/cache"
	"github.com/spec-kit/contacts-service/internal/domain"
	"github.com/spec-kit/contacts-service/internal/observability"
)

// DefaultUserCacheTTL bounds how long a cached user snapshot is trusted.
const DefaultUserCacheTTL = 300 * time.Second

const userCachePrefix = "user:"

// UserFinder loads a user from the durable store by subject (email).
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// UserResolver resolves token subjects to users through a cache-aside lookup.
type UserResolver struct {
	users   UserFinder
	cache   cache.Cache
	ttl     time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewUserResolver builds a resolver. ttl <= 0 uses DefaultUserCacheTTL.
func NewUserResolver(users UserFinder, c cache.Cache, ttl time.Duration, logger *zap.Logger, metrics *observability.Metrics) *UserResolver {
	if ttl <= 0 {
		ttl = DefaultUserCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserResolver{users: users, cache: c, ttl: ttl, logger: logger, metrics: metrics}
}

// ResolveUser returns the user for subject. ErrUserNotFound means no such user;
// any other error is an infrastructure failure and must be treated as a denial.
func (r *UserResolver) ResolveUser(ctx context.Context, subject string) (*domain.User, error) {
	key := userCachePrefix + subject

	raw, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read user cache: %w", err)
	}
	if ok {
		var user domain.User
		if err := json.Unmarshal(raw, &user); err == nil {
			r.logger.Debug("user from cache", zap.String("subject", subject))
			r.metrics.RecordUserLookup("cache")
			return &user, nil
		}
		r.logger.Warn("dropping corrupted user cache entry", zap.String("subject", subject))
		if err := r.cache.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("drop user cache: %w", err)
		}
	}

	user, err := r.users.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	payload, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	if err := r.cache.Set(ctx, key, payload, r.ttl); err != nil {
		return nil, fmt.Errorf("write user cache: %w", err)
	}

	r.logger.Debug("user from DB", zap.String("subject", subject))
	r.metrics.RecordUserLookup("db")
	return user, nil
}

// InvalidateUser drops the cached snapshot so the next lookup hits the store.
func (r *UserResolver) InvalidateUser(ctx context.Context, subject string) error {
	if err := r.cache.Delete(ctx, userCachePrefix+subject); err != nil {
		return fmt.Errorf("invalidate user cache: %w", err)
	}
	return nil
}
