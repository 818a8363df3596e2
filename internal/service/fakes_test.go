package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/contacts-service/internal/domain"
	"github.com/spec-kit/contacts-service/internal/events"
	"github.com/spec-kit/contacts-service/internal/repository"
)

type fakeUsers struct {
	mu         sync.Mutex
	nextID     int64
	byEmail    map[string]*domain.User
	beforeSwap func()
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*domain.User{}}
}

func (f *fakeUsers) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[user.Email]; ok {
		return repository.ErrDuplicate
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.byEmail[user.Email] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) byID(id int64) *domain.User {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (f *fakeUsers) UpdateRefreshToken(_ context.Context, id int64, token *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.byID(id)
	if u == nil {
		return pgx.ErrNoRows
	}
	if token == nil {
		u.RefreshToken = nil
	} else {
		t := *token
		u.RefreshToken = &t
	}
	return nil
}

func (f *fakeUsers) SwapRefreshToken(_ context.Context, id int64, current, next string) (bool, error) {
	if f.beforeSwap != nil {
		f.beforeSwap()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.byID(id)
	if u == nil || u.RefreshToken == nil || *u.RefreshToken != current {
		return false, nil
	}
	u.RefreshToken = &next
	return true, nil
}

func (f *fakeUsers) ConfirmEmail(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Confirmed = true
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, email, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) UpdateAvatar(_ context.Context, email, url string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	u.Avatar = &url
	cp := *u
	return &cp, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) last() (events.Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return events.Event{}, false
	}
	return p.events[len(p.events)-1], true
}

type fakeContacts struct {
	mu       sync.Mutex
	nextID   int64
	contacts map[int64]domain.Contact
	lastDay  time.Time
}

func newFakeContacts() *fakeContacts {
	return &fakeContacts{contacts: map[int64]domain.Contact{}}
}

func (f *fakeContacts) emailTaken(c domain.Contact) bool {
	for id, existing := range f.contacts {
		if id != c.ID && existing.UserID == c.UserID && existing.Email == c.Email {
			return true
		}
	}
	return false
}

func (f *fakeContacts) List(_ context.Context, userID int64, limit, offset int) ([]domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.owned(userID, func(domain.Contact) bool { return true })
	if offset >= len(all) {
		return []domain.Contact{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakeContacts) Get(_ context.Context, userID, id int64) (*domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok || c.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (f *fakeContacts) Create(_ context.Context, c *domain.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emailTaken(*c) {
		return repository.ErrDuplicate
	}
	f.nextID++
	c.ID = f.nextID
	f.contacts[c.ID] = *c
	return nil
}

func (f *fakeContacts) Update(_ context.Context, c *domain.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.contacts[c.ID]
	if !ok || existing.UserID != c.UserID {
		return pgx.ErrNoRows
	}
	if f.emailTaken(*c) {
		return repository.ErrDuplicate
	}
	f.contacts[c.ID] = *c
	return nil
}

func (f *fakeContacts) Delete(_ context.Context, userID, id int64) (*domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok || c.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	delete(f.contacts, id)
	return &c, nil
}

func (f *fakeContacts) Search(_ context.Context, userID int64, filter domain.ContactSearch) ([]domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	contains := func(v, term string) bool {
		return term == "" || strings.Contains(strings.ToLower(v), strings.ToLower(term))
	}
	return f.owned(userID, func(c domain.Contact) bool {
		return contains(c.FirstName, filter.FirstName) && contains(c.LastName, filter.LastName) && contains(c.Email, filter.Email)
	}), nil
}

func (f *fakeContacts) Birthdays(_ context.Context, userID int64, today time.Time) ([]domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastDay = today
	return f.owned(userID, func(domain.Contact) bool { return true }), nil
}

func (f *fakeContacts) owned(userID int64, keep func(domain.Contact) bool) []domain.Contact {
	out := []domain.Contact{}
	for _, c := range f.contacts {
		if c.UserID == userID && keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeUploader struct {
	url  string
	body string
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, _ int64, _ string, _ string, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(body)
	f.body = string(b)
	return f.url, nil
}
