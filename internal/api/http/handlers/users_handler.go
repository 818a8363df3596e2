package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contacts-service/internal/api/dto"
	"github.com/spec-kit/contacts-service/internal/auth"
	"github.com/spec-kit/contacts-service/internal/service"
	apperrors "github.com/spec-kit/contacts-service/pkg/util/errorutil"
)

// UsersHandler exposes the profile of the authenticated user.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(auth.ErrUnauthenticated.Error())
	}
	return c.JSON(dto.NewUserResponse(user))
}

// UpdateAvatar handles PATCH /users/avatar with a multipart "file" field.
func (h *UsersHandler) UpdateAvatar(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(auth.ErrUnauthenticated.Error())
	}

	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"file": "is required"})
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewBadRequest("unreadable upload")
	}
	defer file.Close()

	updated, err := h.users.UpdateAvatar(c.UserContext(), user, header.Filename, header.Header.Get(fiber.HeaderContentType), file)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(dto.NewUserResponse(updated))
}
