package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUser_NormalizesAndDefaults(t *testing.T) {
	user, err := NewUser("  Ana  ", " Ana@Example.COM ")
	require.NoError(t, err)
	require.Equal(t, "Ana", user.Name)
	require.Equal(t, "ana@example.com", user.Email)
	require.True(t, user.Active)
	require.False(t, user.Admin)
	require.True(t, user.CanAuthenticate())
}

func TestNewUser_Validation(t *testing.T) {
	_, err := NewUser("", "a@b.c")
	require.ErrorIs(t, err, ErrEmptyName)

	for _, email := range []string{"", "no-at", "@example.com", "ana@"} {
		_, err := NewUser("Ana", email)
		require.ErrorIs(t, err, ErrInvalidEmail, email)
	}
}

func TestValidatePassword(t *testing.T) {
	require.ErrorIs(t, ValidatePassword("   "), ErrEmptyPassword)
	require.ErrorIs(t, ValidatePassword("abc"), ErrWeakPassword)
	require.NoError(t, ValidatePassword("abcd"))
	require.NoError(t, ValidatePassword(strings.Repeat("p", MaxPasswordBytes)))
	require.ErrorIs(t, ValidatePassword(strings.Repeat("p", MaxPasswordBytes+1)), ErrLongPassword)
	// multi-byte runes count by bytes
	require.ErrorIs(t, ValidatePassword(strings.Repeat("é", 37)), ErrLongPassword)
}

func TestUser_ValidateRequiresDigest(t *testing.T) {
	user, err := NewUser("Ana", "ana@example.com")
	require.NoError(t, err)
	require.ErrorIs(t, user.Validate(), ErrEmptyPassword)

	user.PasswordHash = "$2a$10$digest"
	require.NoError(t, user.Validate())

	user.Active = false
	require.False(t, user.CanAuthenticate())
}
