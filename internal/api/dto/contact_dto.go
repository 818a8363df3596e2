package dto

import (
	"time"

	"github.com/spec-kit/contacts-service/internal/domain"
)

const dateLayout = "2006-01-02"

// ContactRequest payload for creating a contact.
type ContactRequest struct {
	FirstName   string `json:"first_name" validate:"required,min=3,max=50"`
	LastName    string `json:"last_name" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email,max=150"`
	Phone       string `json:"phone" validate:"required,min=9,max=15"`
	Birthday    string `json:"birthday" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"required,min=5,max=250"`
}

// ToDomain converts a validated request.
func (r ContactRequest) ToDomain() domain.Contact {
	birthday, _ := time.Parse(dateLayout, r.Birthday)
	return domain.Contact{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		Phone:       r.Phone,
		Birthday:    birthday,
		Description: r.Description,
	}
}

// ContactUpdateRequest payload for a partial update.
type ContactUpdateRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,min=3,max=50"`
	LastName    *string `json:"last_name" validate:"omitempty,min=3,max=50"`
	Email       *string `json:"email" validate:"omitempty,email,max=150"`
	Phone       *string `json:"phone" validate:"omitempty,min=9,max=15"`
	Birthday    *string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Description *string `json:"description" validate:"omitempty,min=5,max=250"`
}

// ToPatch converts a validated request.
func (r ContactUpdateRequest) ToPatch() domain.ContactPatch {
	patch := domain.ContactPatch{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		Phone:       r.Phone,
		Description: r.Description,
	}
	if r.Birthday != nil {
		if birthday, err := time.Parse(dateLayout, *r.Birthday); err == nil {
			patch.Birthday = &birthday
		}
	}
	return patch
}

// ListQuery paginates /contacts/all.
type ListQuery struct {
	Limit  int `query:"limit" validate:"gte=10,lte=100"`
	Offset int `query:"offset" validate:"gte=0"`
}

// SearchQuery filters /contacts/search.
type SearchQuery struct {
	FirstName string `query:"first_name" validate:"omitempty,max=50"`
	LastName  string `query:"last_name" validate:"omitempty,max=50"`
	Email     string `query:"email" validate:"omitempty,max=150"`
}

// ToDomain converts the query.
func (q SearchQuery) ToDomain() domain.ContactSearch {
	return domain.ContactSearch{FirstName: q.FirstName, LastName: q.LastName, Email: q.Email}
}

// ContactResponse is the public view of a contact.
type ContactResponse struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Birthday    string `json:"birthday"`
	Description string `json:"description"`
	UserID      int64  `json:"user_id"`
}

// NewContactResponse formats a contact.
func NewContactResponse(c *domain.Contact) ContactResponse {
	return ContactResponse{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Phone:       c.Phone,
		Birthday:    c.Birthday.Format(dateLayout),
		Description: c.Description,
		UserID:      c.UserID,
	}
}

// NewContactList formats a slice of contacts.
func NewContactList(cs []domain.Contact) []ContactResponse {
	out := make([]ContactResponse, 0, len(cs))
	for i := range cs {
		out = append(out, NewContactResponse(&cs[i]))
	}
	return out
}
