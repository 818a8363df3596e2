package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contacts-service/internal/api/dto"
	"github.com/spec-kit/contacts-service/internal/auth"
	"github.com/spec-kit/contacts-service/internal/domain"
	"github.com/spec-kit/contacts-service/internal/service"
	apperrors "github.com/spec-kit/contacts-service/pkg/util/errorutil"
)

const defaultPageSize = 10

// ContactsHandler exposes the address book of the current user.
type ContactsHandler struct {
	contacts *service.ContactService
}

// NewContactsHandler constructs handler.
func NewContactsHandler(contacts *service.ContactService) *ContactsHandler {
	return &ContactsHandler{contacts: contacts}
}

// List handles GET /contacts/all.
func (h *ContactsHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	q := dto.ListQuery{Limit: defaultPageSize}
	if err := c.QueryParser(&q); err != nil {
		return apperrors.NewBadRequest("invalid query")
	}
	if err := dto.Validate(q); err != nil {
		return err
	}

	contacts, err := h.contacts.List(c.UserContext(), user.ID, q.Limit, q.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(dto.NewContactList(contacts))
}

// Get handles GET /contacts/:id.
func (h *ContactsHandler) Get(c *fiber.Ctx) error {
	user, id, err := userAndID(c)
	if err != nil {
		return err
	}

	contact, err := h.contacts.Get(c.UserContext(), user.ID, id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(dto.NewContactResponse(contact))
}

// Create handles POST /contacts.
func (h *ContactsHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	contact, err := h.contacts.Create(c.UserContext(), user.ID, req.ToDomain())
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(dto.NewContactResponse(contact))
}

// Update handles PUT /contacts/:id.
func (h *ContactsHandler) Update(c *fiber.Ctx) error {
	user, id, err := userAndID(c)
	if err != nil {
		return err
	}

	var req dto.ContactUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	contact, err := h.contacts.Update(c.UserContext(), user.ID, id, req.ToPatch())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(dto.NewContactResponse(contact))
}

// Delete handles DELETE /contacts/:id.
func (h *ContactsHandler) Delete(c *fiber.Ctx) error {
	user, id, err := userAndID(c)
	if err != nil {
		return err
	}

	contact, err := h.contacts.Delete(c.UserContext(), user.ID, id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(dto.NewContactResponse(contact))
}

// Search handles GET /contacts/search.
func (h *ContactsHandler) Search(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var q dto.SearchQuery
	if err := c.QueryParser(&q); err != nil {
		return apperrors.NewBadRequest("invalid query")
	}
	if err := dto.Validate(q); err != nil {
		return err
	}
	filter := q.ToDomain()
	if filter.Empty() {
		return apperrors.NewValidationError("at least one search parameter is required", nil)
	}

	contacts, err := h.contacts.Search(c.UserContext(), user.ID, filter)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(dto.NewContactList(contacts))
}

// Birthdays handles GET /contacts/birthdays.
func (h *ContactsHandler) Birthdays(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	contacts, err := h.contacts.UpcomingBirthdays(c.UserContext(), user.ID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(dto.NewContactList(contacts))
}

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized(auth.ErrUnauthenticated.Error())
	}
	return user, nil
}

func userAndID(c *fiber.Ctx) (*domain.User, int64, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, 0, err
	}
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return nil, 0, apperrors.NewValidationError("invalid payload", map[string]any{"id": "must be greater than or equal to 1"})
	}
	return user, int64(id), nil
}
