package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "too short", password: "short", wantErr: true},
		{name: "seven chars", password: "Passw0r", wantErr: true},
		{name: "purely numeric", password: "12345678", wantErr: true},
		{name: "accepted", password: "Passw0rd"},
		{name: "letters only", password: "abcdefgh"},
		{name: "multibyte counts runes", password: "пароль12"},
		{name: "72 ascii bytes", password: strings.Repeat("a", 72)},
		{name: "73 ascii bytes", password: strings.Repeat("a", 73), wantErr: true},
		{name: "72 runes over 72 bytes", password: strings.Repeat("é", 72), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrWeakSecret)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("Passw0rd", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd", hash)

	assert.NoError(t, ComparePassword(hash, "Passw0rd"))
	assert.Error(t, ComparePassword(hash, "wrong-password"))
}
