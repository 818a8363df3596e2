package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contacts-service/internal/api/dto"
	"github.com/spec-kit/contacts-service/internal/auth"
	"github.com/spec-kit/contacts-service/internal/service"
	apperrors "github.com/spec-kit/contacts-service/pkg/util/errorutil"
)

// AuthHandler exposes the /auth endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	user, err := h.auth.Signup(c.UserContext(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(dto.NewUserResponse(user))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	pair, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(dto.NewTokenResponse(pair))
}

// RefreshToken handles GET /auth/refresh_token.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	token, ok := auth.BearerToken(c)
	if !ok {
		return apperrors.NewUnauthorized("missing bearer token")
	}

	pair, err := h.auth.Refresh(c.UserContext(), token)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(dto.NewTokenResponse(pair))
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(auth.ErrUnauthenticated.Error())
	}
	if err := h.auth.Logout(c.UserContext(), user); err != nil {
		return mapError(err)
	}
	return c.JSON(dto.MessageResponse{Message: "Successfully logged out"})
}

// ConfirmedEmail handles GET /auth/confirmed_email/:token.
func (h *AuthHandler) ConfirmedEmail(c *fiber.Ctx) error {
	already, err := h.auth.ConfirmEmail(c.UserContext(), c.Params("token"))
	if err != nil {
		return mapError(err)
	}
	if already {
		return c.JSON(dto.MessageResponse{Message: "Your email is already confirmed"})
	}
	return c.JSON(dto.MessageResponse{Message: "Email confirmed"})
}

// RequestEmail handles POST /auth/request_email.
func (h *AuthHandler) RequestEmail(c *fiber.Ctx) error {
	var req dto.EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	already, err := h.auth.RequestEmail(c.UserContext(), req.Email)
	if err != nil {
		return mapError(err)
	}
	if already {
		return c.JSON(dto.MessageResponse{Message: "Your email is already confirmed"})
	}
	return c.JSON(dto.MessageResponse{Message: "Check your email for confirmation."})
}

// RequestResetPassword handles POST /auth/request_reset_password.
func (h *AuthHandler) RequestResetPassword(c *fiber.Ctx) error {
	var req dto.EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if err := h.auth.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return mapError(err)
	}
	return c.JSON(dto.MessageResponse{Message: "Password reset link sent, please, check your email."})
}

// ResetPassword handles POST /auth/reset_password/:token.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if err := h.auth.ResetPassword(c.UserContext(), c.Params("token"), req.NewPassword); err != nil {
		return mapError(err)
	}
	return c.JSON(dto.MessageResponse{Message: "Password successfully reset"})
}
