package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/contacts-service/internal/domain"
)

func newContact(first, email string) domain.Contact {
	return domain.Contact{
		FirstName:   first,
		LastName:    "Smith",
		Email:       email,
		Phone:       "380501234567",
		Birthday:    time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
		Description: "college friend",
	}
}

func TestContactService_CRUD(t *testing.T) {
	repo := newFakeContacts()
	svc := NewContactService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, newContact("Bob", "bob@example.com"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.UserID)

	_, err = svc.Create(ctx, 1, newContact("Bobby", "bob@example.com"))
	assert.ErrorIs(t, err, ErrContactEmailTaken)

	// a different owner may reuse the email
	_, err = svc.Create(ctx, 2, newContact("Bob", "bob@example.com"))
	require.NoError(t, err)

	got, err := svc.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.FirstName)

	_, err = svc.Get(ctx, 2, created.ID)
	assert.ErrorIs(t, err, ErrContactNotFound)

	phone := "380999999999"
	updated, err := svc.Update(ctx, 1, created.ID, domain.ContactPatch{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, "Bob", updated.FirstName)

	_, err = svc.Update(ctx, 1, 999, domain.ContactPatch{Phone: &phone})
	assert.ErrorIs(t, err, ErrContactNotFound)

	deleted, err := svc.Delete(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = svc.Delete(ctx, 1, created.ID)
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestContactService_UpdateEmailConflict(t *testing.T) {
	repo := newFakeContacts()
	svc := NewContactService(repo, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, newContact("Bob", "bob@example.com"))
	require.NoError(t, err)
	ann, err := svc.Create(ctx, 1, newContact("Ann", "ann@example.com"))
	require.NoError(t, err)

	taken := "bob@example.com"
	_, err = svc.Update(ctx, 1, ann.ID, domain.ContactPatch{Email: &taken})
	assert.ErrorIs(t, err, ErrContactEmailTaken)
}

func TestContactService_ListAndSearch(t *testing.T) {
	repo := newFakeContacts()
	svc := NewContactService(repo, nil)
	ctx := context.Background()

	for _, c := range []domain.Contact{
		newContact("Bob", "bob@example.com"),
		newContact("Ann", "ann@example.org"),
		newContact("Bobby", "bobby@example.org"),
	} {
		_, err := svc.Create(ctx, 1, c)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 1, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Ann", page[0].FirstName)

	found, err := svc.Search(ctx, 1, domain.ContactSearch{FirstName: "bob", Email: ".org"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Bobby", found[0].FirstName)
}

func TestContactService_UpcomingBirthdaysUsesClock(t *testing.T) {
	repo := newFakeContacts()
	today := time.Date(2024, 12, 28, 0, 0, 0, 0, time.UTC)
	svc := NewContactService(repo, nil).WithClock(func() time.Time { return today })

	_, err := svc.UpcomingBirthdays(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, today, repo.lastDay)
}
