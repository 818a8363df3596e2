package http

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/contacts-service/internal/domain"
	"github.com/spec-kit/contacts-service/internal/events"
	"github.com/spec-kit/contacts-service/internal/repository"
)

type memUsers struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*domain.User{}}
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[user.Email]; ok {
		return repository.ErrDuplicate
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	m.byEmail[user.Email] = &cp
	return nil
}

func (m *memUsers) find(fn func(*domain.User) bool) *domain.User {
	for _, u := range m.byEmail {
		if fn(u) {
			return u
		}
	}
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.find(func(u *domain.User) bool { return u.ID == id })
	if u == nil {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdateRefreshToken(_ context.Context, id int64, token *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.find(func(u *domain.User) bool { return u.ID == id })
	if u == nil {
		return pgx.ErrNoRows
	}
	u.RefreshToken = nil
	if token != nil {
		t := *token
		u.RefreshToken = &t
	}
	return nil
}

func (m *memUsers) SwapRefreshToken(_ context.Context, id int64, current, next string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.find(func(u *domain.User) bool { return u.ID == id })
	if u == nil || u.RefreshToken == nil || *u.RefreshToken != current {
		return false, nil
	}
	u.RefreshToken = &next
	return true, nil
}

func (m *memUsers) ConfirmEmail(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Confirmed = true
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, email, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) UpdateAvatar(_ context.Context, email, url string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	u.Avatar = &url
	cp := *u
	return &cp, nil
}

type memContacts struct {
	mu       sync.Mutex
	nextID   int64
	contacts map[int64]domain.Contact
}

func newMemContacts() *memContacts {
	return &memContacts{contacts: map[int64]domain.Contact{}}
}

func (m *memContacts) owned(userID int64) []domain.Contact {
	out := []domain.Contact{}
	for _, c := range m.contacts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memContacts) taken(c domain.Contact) bool {
	for id, other := range m.contacts {
		if id != c.ID && other.UserID == c.UserID && other.Email == c.Email {
			return true
		}
	}
	return false
}

func (m *memContacts) List(_ context.Context, userID int64, limit, offset int) ([]domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.owned(userID)
	if offset >= len(all) {
		return []domain.Contact{}, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (m *memContacts) Get(_ context.Context, userID, id int64) (*domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok || c.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (m *memContacts) Create(_ context.Context, c *domain.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.taken(*c) {
		return repository.ErrDuplicate
	}
	m.nextID++
	c.ID = m.nextID
	m.contacts[c.ID] = *c
	return nil
}

func (m *memContacts) Update(_ context.Context, c *domain.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.contacts[c.ID]
	if !ok || existing.UserID != c.UserID {
		return pgx.ErrNoRows
	}
	if m.taken(*c) {
		return repository.ErrDuplicate
	}
	m.contacts[c.ID] = *c
	return nil
}

func (m *memContacts) Delete(_ context.Context, userID, id int64) (*domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok || c.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	delete(m.contacts, id)
	return &c, nil
}

func (m *memContacts) Search(_ context.Context, userID int64, filter domain.ContactSearch) ([]domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Contact{}
	for _, c := range m.owned(userID) {
		if filter.FirstName == "" || c.FirstName == filter.FirstName {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memContacts) Birthdays(_ context.Context, userID int64, _ time.Time) ([]domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owned(userID), nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) lastToken(t events.EventType) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].Type == t {
			return p.events[i].Payload.(events.MailPayload).Token
		}
	}
	return ""
}
