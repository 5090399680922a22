package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAccountService(t *testing.T) *AccountService {
	s := NewAccountService(newTestDB(t))
	s.cost = bcrypt.MinCost
	return s
}

func TestSignupAndLogin(t *testing.T) {
	s := newAccountService(t)
	ctx := context.Background()

	u, err := s.Signup(ctx, "Alice", "correct horse", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Username)
	assert.NotEqual(t, "correct horse", u.Password)

	got, err := s.Login(ctx, "alice", "correct horse")
	require.NoError(t, err, "login is case-insensitive on the username")
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Login(ctx, "alice", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(ctx, "nobody", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.True(t, s.Exists(ctx, u.ID))
	assert.False(t, s.Exists(ctx, u.ID+100))
}

func TestSignup_UsernameTakenIgnoresCase(t *testing.T) {
	s := newAccountService(t)
	ctx := context.Background()
	_, err := s.Signup(ctx, "alice", "s3cret-pass", "s3cret-pass")
	require.NoError(t, err)

	_, err = s.Signup(ctx, "ALICE", "other-pass1", "other-pass1")
	assert.ErrorIs(t, err, ErrUsernameTaken)
	v, ok := Violations(err)
	require.True(t, ok)
	assert.Equal(t, "username_taken", v["username"])
}

func TestSignup_PasswordRules(t *testing.T) {
	s := newAccountService(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		username  string
		password  string
		confirm   string
		sentinel  error
		code      string
	}{
		{"mismatch", "bob", "longenough1", "longenough2", ErrPasswordMismatch, "password_mismatch"},
		{"too short", "bob", "short1", "short1", ErrWeakPassword, "password_too_short"},
		{"numeric", "bob", "1234567890", "1234567890", ErrWeakPassword, "password_numeric"},
		{"same as username", "bobbybobby", "BobbyBobby", "BobbyBobby", ErrWeakPassword, "password_similar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Signup(ctx, tt.username, tt.password, tt.confirm)
			assert.ErrorIs(t, err, tt.sentinel)
			v, ok := Violations(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, v["password2"])
		})
	}
}

func TestSignup_UsernameFormat(t *testing.T) {
	s := newAccountService(t)
	ctx := context.Background()

	for _, name := range []string{"", "has space", "semi;colon"} {
		_, err := s.Signup(ctx, name, "goodpassword", "goodpassword")
		v, ok := Violations(err)
		require.True(t, ok, "username %q should be rejected", name)
		assert.Contains(t, []string{"required", "invalid_username"}, v["username"])
	}

	_, err := s.Signup(ctx, "j.doe+test@x-y_z", "goodpassword", "goodpassword")
	assert.NoError(t, err)
}

func TestUserByID(t *testing.T) {
	s := newAccountService(t)
	ctx := context.Background()
	u, err := s.Signup(ctx, "zed", "zed-password", "zed-password")
	require.NoError(t, err)

	got, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "zed", got.Username)

	_, err = s.UserByID(ctx, u.ID+1)
	assert.ErrorIs(t, err, ErrNotFound)
}
