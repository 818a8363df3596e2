package domain

import "time"

// Contact is an address-book entry owned by a single user.
type Contact struct {
	ID          int64
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Birthday    time.Time
	Description string
	UserID      int64
}

// ContactPatch carries the optional fields of a partial contact update.
type ContactPatch struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Phone       *string
	Birthday    *time.Time
	Description *string
}

// Apply copies the set fields onto c.
func (p ContactPatch) Apply(c *Contact) {
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Birthday != nil {
		c.Birthday = *p.Birthday
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
}

// ContactSearch filters contacts by case-insensitive substrings.
type ContactSearch struct {
	FirstName string
	LastName  string
	Email     string
}

// Empty reports whether no filter is set.
func (s ContactSearch) Empty() bool {
	return s.FirstName == "" && s.LastName == "" && s.Email == ""
}
