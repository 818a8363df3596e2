package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/contacts-service/internal/cache"
	"github.com/spec-kit/contacts-service/internal/config"
	"github.com/spec-kit/contacts-service/internal/observability"
)

// Purpose tags what a token may be presented for.
type Purpose string

const (
	PurposeAccess  Purpose = "access_token"
	PurposeRefresh Purpose = "refresh_token"
	PurposeReset   Purpose = "reset_token"
	PurposeEmail   Purpose = "email_token"
)

const (
	resetKeySuffix    = "_reset"
	usedResetTokenKey = "used_token:"
)

var (
	errWrongPurpose   = errors.New("token purpose mismatch")
	errMissingSubject = errors.New("token subject missing")
)

// Claims describes JWT payload.
type Claims struct {
	Scope Purpose `json:"scope"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies access, refresh, reset and email tokens.
// Reset tokens are signed with a key derived from, and distinct to, the main secret.
type TokenManager struct {
	accessKey []byte
	resetKey  []byte
	ttls      map[Purpose]time.Duration
	cache     cache.Cache
	logger    *zap.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

// NewTokenManager builds a new manager. An empty secret is a startup error.
func NewTokenManager(cfg config.AuthConfig, c cache.Cache, logger *zap.Logger, metrics *observability.Metrics) (*TokenManager, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("auth: empty signing secret")
	}
	if c == nil {
		return nil, errors.New("auth: cache is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenManager{
		accessKey: []byte(cfg.JWTSecret),
		resetKey:  []byte(cfg.JWTSecret + resetKeySuffix),
		ttls: map[Purpose]time.Duration{
			PurposeAccess:  withDefault(cfg.AccessTokenTTL, 15*time.Minute),
			PurposeRefresh: withDefault(cfg.RefreshTokenTTL, 7*24*time.Hour),
			PurposeReset:   withDefault(cfg.ResetTokenTTL, 30*time.Minute),
			PurposeEmail:   withDefault(cfg.EmailTokenTTL, 24*time.Hour),
		},
		cache:   c,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}, nil
}

// WithClock replaces the time source used for issuing and validating tokens.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// TTL returns the default lifetime for a purpose.
func (tm *TokenManager) TTL(p Purpose) time.Duration {
	return tm.ttls[p]
}

// IssueAccessToken signs a short-lived access token. ttl <= 0 uses the default.
func (tm *TokenManager) IssueAccessToken(subject string, ttl time.Duration) (string, time.Time, error) {
	return tm.issue(subject, PurposeAccess, ttl)
}

// IssueRefreshToken signs a long-lived refresh token. ttl <= 0 uses the default.
func (tm *TokenManager) IssueRefreshToken(subject string, ttl time.Duration) (string, time.Time, error) {
	return tm.issue(subject, PurposeRefresh, ttl)
}

// IssueResetToken signs a password-reset token with the reset key.
func (tm *TokenManager) IssueResetToken(subject string) (string, time.Time, error) {
	return tm.issue(subject, PurposeReset, 0)
}

// IssueEmailToken signs an email-confirmation token.
func (tm *TokenManager) IssueEmailToken(subject string) (string, time.Time, error) {
	return tm.issue(subject, PurposeEmail, 0)
}

func (tm *TokenManager) issue(subject string, purpose Purpose, ttl time.Duration) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errMissingSubject
	}
	if ttl <= 0 {
		ttl = tm.ttls[purpose]
	}

	now := tm.now()
	expiresAt := now.Add(ttl).Truncate(time.Second)
	claims := &Claims{
		Scope: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.keyFor(purpose))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s: %w", purpose, err)
	}

	tm.metrics.RecordTokenIssued(string(purpose))
	tm.logger.Info("token issued", zap.String("purpose", string(purpose)), zap.String("subject", subject))
	return signed, expiresAt.UTC(), nil
}

// VerifyAccess returns the subject of a valid access token.
func (tm *TokenManager) VerifyAccess(token string) (string, error) {
	claims, err := tm.verify(token, PurposeAccess)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return claims.Subject, nil
}

// VerifyRefresh returns the subject of a valid refresh token. Callers still
// have to compare the token with the one on record for the subject.
func (tm *TokenManager) VerifyRefresh(token string) (string, error) {
	claims, err := tm.verify(token, PurposeRefresh)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return claims.Subject, nil
}

// VerifyEmail returns the subject of a valid email-confirmation token.
func (tm *TokenManager) VerifyEmail(token string) (string, error) {
	claims, err := tm.verify(token, PurposeEmail)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidOrExpiredToken, err)
	}
	return claims.Subject, nil
}

// VerifyReset returns the subject and expiry of a reset token that is valid
// and has not been consumed yet.
func (tm *TokenManager) VerifyReset(ctx context.Context, token string) (string, time.Time, error) {
	claims, err := tm.verify(token, PurposeReset)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrInvalidOrExpiredToken, err)
	}

	used, err := tm.cache.Exists(ctx, usedResetTokenKey+token)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("check reset token marker: %w", err)
	}
	if used {
		tm.metrics.RecordTokenVerification(string(PurposeReset), "consumed")
		tm.logger.Warn("reset token already used", zap.String("subject", claims.Subject))
		return "", time.Time{}, ErrInvalidOrExpiredToken
	}
	return claims.Subject, claims.ExpiresAt.Time.UTC(), nil
}

// MarkResetTokenUsed records token as consumed for the rest of its validity.
// An already expired token needs no marker.
func (tm *TokenManager) MarkResetTokenUsed(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := tm.cache.Set(ctx, usedResetTokenKey+token, []byte("used"), ttl); err != nil {
		return fmt.Errorf("mark reset token used: %w", err)
	}
	return nil
}

// Remaining returns how long a token expiring at expiresAt stays valid.
func (tm *TokenManager) Remaining(expiresAt time.Time) time.Duration {
	return expiresAt.Sub(tm.now())
}

func (tm *TokenManager) verify(tokenStr string, purpose Purpose) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return tm.keyFor(purpose), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err == nil && !parsed.Valid {
		err = errors.New("invalid token claims")
	}
	if err == nil && claims.Scope != purpose {
		err = errWrongPurpose
	}
	if err == nil && claims.Subject == "" {
		err = errMissingSubject
	}
	if err != nil {
		tm.metrics.RecordTokenVerification(string(purpose), failureReason(err))
		tm.logger.Warn("token rejected", zap.String("purpose", string(purpose)), zap.Error(err))
		return nil, err
	}

	tm.metrics.RecordTokenVerification(string(purpose), "ok")
	return claims, nil
}

func (tm *TokenManager) keyFor(p Purpose) []byte {
	if p == PurposeReset {
		return tm.resetKey
	}
	return tm.accessKey
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, errWrongPurpose):
		return "wrong_purpose"
	case errors.Is(err, errMissingSubject):
		return "missing_subject"
	default:
		return "malformed"
	}
}

func withDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
