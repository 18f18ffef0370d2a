package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thumbsmith/thumbsmith/internal/auth"
	"github.com/thumbsmith/thumbsmith/internal/models"
)

func newAuthFixture() (*AuthService, *fakeUserStore) {
	users := newFakeUserStore()
	tokens := auth.NewTokenService("test-secret", time.Hour)
	return NewAuthService(users, tokens), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture()

	result, err := svc.Register(context.Background(), "Alice", "  ALICE@Example.COM ", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.Equal(t, models.RoleUser, result.User.Role)
	assert.NotEqual(t, "hunter22", result.User.PasswordHash, "password must never be stored in clear")

	login, err := svc.Login(context.Background(), "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), "", "a@b.c", "hunter22")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(context.Background(), "Alice", "a@b.c", "short")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), "Alice", "a@b.c", "hunter22")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Impostor", "A@B.C", "hunter22")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), "Alice", "a@b.c", "hunter22")
	require.NoError(t, err)

	// Unknown email and wrong password are indistinguishable.
	_, err = svc.Login(context.Background(), "nobody@b.c", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "a@b.c", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMe(t *testing.T) {
	svc, _ := newAuthFixture()

	result, err := svc.Register(context.Background(), "Alice", "a@b.c", "hunter22")
	require.NoError(t, err)

	user, err := svc.Me(context.Background(), result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", user.Email)

	_, err = svc.Me(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
