package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/contacts-service/internal/auth"
	"github.com/spec-kit/contacts-service/internal/cache"
	"github.com/spec-kit/contacts-service/internal/domain"
)

func TestUserService_UpdateAvatar(t *testing.T) {
	users := newFakeUsers()
	ctx := context.Background()
	user := &domain.User{Username: "alice", Email: "a@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, user))

	resolver := auth.NewUserResolver(users, cache.NewMemory(), 0, nil, nil)
	_, err := resolver.ResolveUser(ctx, "a@example.com")
	require.NoError(t, err)

	uploader := &fakeUploader{url: "https://cdn.example.com/avatars/1/x.png"}
	svc := NewUserService(users, uploader, resolver, nil)

	updated, err := svc.UpdateAvatar(ctx, user, "x.png", "image/png", strings.NewReader("img"))
	require.NoError(t, err)
	require.NotNil(t, updated.Avatar)
	assert.Equal(t, uploader.url, *updated.Avatar)
	assert.Equal(t, "img", uploader.body)

	resolved, err := resolver.ResolveUser(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, resolved.Avatar)
	assert.Equal(t, uploader.url, *resolved.Avatar)
}

func TestUserService_UpdateAvatarRejects(t *testing.T) {
	user := &domain.User{ID: 1, Email: "a@example.com"}

	_, err := NewUserService(newFakeUsers(), nil, nil, nil).
		UpdateAvatar(context.Background(), user, "a.png", "image/png", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrAvatarsDisabled)

	_, err = NewUserService(newFakeUsers(), &fakeUploader{}, nil, nil).
		UpdateAvatar(context.Background(), user, "a.txt", "text/plain", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnsupportedAvatar)

	_, err = NewUserService(newFakeUsers(), &fakeUploader{err: assert.AnError}, nil, nil).
		UpdateAvatar(context.Background(), user, "a.png", "image/png", strings.NewReader(""))
	assert.ErrorIs(t, err, assert.AnError)
}
