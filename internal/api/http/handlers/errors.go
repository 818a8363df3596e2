package handlers

import (
	"errors"
	"net/http"

	"github.com/spec-kit/contacts-service/internal/auth"
	"github.com/spec-kit/contacts-service/internal/service"
	apperrors "github.com/spec-kit/contacts-service/pkg/util/errorutil"
)

// mapError translates auth and service sentinels into DomainErrors. Anything
// else is left for the error middleware, which reports it as a 500.
func mapError(err error) error {
	var de *apperrors.DomainError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &de):
		return de
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrUserNotFound):
		return wrap(apperrors.NewUnauthorized(auth.ErrUnauthenticated.Error()), err)
	case errors.Is(err, auth.ErrInvalidOrExpiredToken):
		return wrap(apperrors.NewInvalidToken(auth.ErrInvalidOrExpiredToken.Error()), err)
	case errors.Is(err, auth.ErrWeakSecret):
		return wrap(apperrors.NewWeakPassword("password too weak"), err)
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperrors.NewUnauthorized("invalid credentials")
	case errors.Is(err, service.ErrEmailTaken):
		return apperrors.NewConflict("account already exists", nil)
	case errors.Is(err, service.ErrAccountNotFound):
		return apperrors.NewNotFound("user", nil)
	case errors.Is(err, service.ErrVerification):
		return apperrors.NewBadRequest("verification error")
	case errors.Is(err, service.ErrContactNotFound):
		return apperrors.NewNotFound("contact", nil)
	case errors.Is(err, service.ErrContactEmailTaken):
		return apperrors.NewConflict("contact with this email already exists", map[string]any{"field": "email"})
	case errors.Is(err, service.ErrUnsupportedAvatar):
		return apperrors.NewValidationError("avatar must be an image", map[string]any{"file": "unsupported content type"})
	case errors.Is(err, service.ErrAvatarsDisabled):
		return apperrors.NewDomainError("STORAGE_DISABLED", "avatar storage is not configured", http.StatusServiceUnavailable, nil)
	default:
		return err
	}
}

func wrap(err, cause error) error {
	return err.(*apperrors.DomainError).Wrap(cause)
}
