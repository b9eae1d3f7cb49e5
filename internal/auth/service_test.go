// ABOUTME: Tests for account registration and login
// ABOUTME: Uses the in-memory MockStore with the real bcrypt hasher and JWT issuer

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/quill/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.MockStore, *JWTIssuer) {
	t.Helper()
	accounts := store.NewMockStore()
	issuer := newTestIssuer(t)
	return NewService(accounts, NewBcryptHasher(), issuer, slog.Default()), accounts, issuer
}

func TestService_RegisterThenLogin(t *testing.T) {
	svc, _, issuer := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice@example.com", "Sup3r$ecret")
	require.NoError(t, err)
	assert.Positive(t, reg.Account.ID)
	assert.Equal(t, "alice@example.com", reg.Account.Identity)
	assert.NotEqual(t, "Sup3r$ecret", reg.Account.PasswordHash)

	claims, err := issuer.Verify(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.Account.ID, claims.AccountID)

	login, err := svc.Login(ctx, "alice@example.com", "Sup3r$ecret")
	require.NoError(t, err)
	assert.Equal(t, reg.Account.ID, login.Account.ID)

	claims, err = issuer.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Identity)
}

func TestService_RegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "Sup3r$ecret")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = svc.Register(ctx, "   ", "Sup3r$ecret")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = svc.Register(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = svc.Register(ctx, "alice", "password")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestService_RegisterDuplicate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "Sup3r$ecret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "An0ther$ecret")
	assert.ErrorIs(t, err, store.ErrDuplicateIdentity)
}

func TestService_RegisterStorageFailure(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	accounts.CreateAccountErr = errors.New("disk full")

	_, err := svc.Register(context.Background(), "alice", "Sup3r$ecret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrDuplicateIdentity)
	assert.Contains(t, err.Error(), "creating account")
}

func TestService_LoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "Sup3r$ecret")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "alice", "Wr0ng$ecret")
	_, unknownIdentity := svc.Login(ctx, "bob", "Sup3r$ecret")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownIdentity, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownIdentity.Error())
}

func TestService_LoginIdentityIsCaseSensitive(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "Sup3r$ecret")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "Alice", "Sup3r$ecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_LoginMissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "alice", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestService_LoginStorageFailure(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	accounts.GetAccountErr = errors.New("connection reset")

	_, err := svc.Login(context.Background(), "alice", "Sup3r$ecret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_LoginRejectsUnhashableInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "Abc12345!")
	require.NoError(t, err)

	for _, password := range []string{
		strings.Repeat("Abc12345!\x00", 8)[:72],
		"Abc12345!\x00",
		strings.Repeat("A", 73),
	} {
		_, err := svc.Login(ctx, "alice", password)
		assert.ErrorIs(t, err, ErrInvalidCredentials, "password %q", password)
	}

	_, err = svc.Register(ctx, "bob", "Abc12345!\x00")
	assert.ErrorIs(t, err, ErrPasswordHasNUL)
}
