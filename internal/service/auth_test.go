package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagebound/bookstore-server/internal/auth"
	domainerrors "github.com/pagebound/bookstore-server/internal/errors"
)

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, RegisterRequest{Email: "  a@x.com ", Password: "pw12345"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.True(t, user.IsActive())
	assert.False(t, user.IsAdmin())
	assert.NotEqual(t, "pw12345", user.PasswordHash)

	_, err = env.auth.Register(ctx, RegisterRequest{Email: "a@x.com", Password: "other-pw"})
	assertCode(t, err, domainerrors.CodeAlreadyExists)
}

func TestAuthService_Register_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "pw12345"}},
		{"malformed email", RegisterRequest{Email: "not-an-email", Password: "pw12345"}},
		{"short password", RegisterRequest{Email: "a@x.com", Password: "pw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(context.Background(), tt.req)
			assertCode(t, err, domainerrors.CodeValidation)
		})
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registered := env.register(t, "a@x.com")

	user, err := env.auth.Authenticate(ctx, "a@x.com", "pw12345")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = env.auth.Authenticate(ctx, "a@x.com", "wrong")
	assertCode(t, err, domainerrors.CodeInvalidCredentials)

	_, err = env.auth.Authenticate(ctx, "nobody@x.com", "pw12345")
	assertCode(t, err, domainerrors.CodeInvalidCredentials)

	// Lookup is an exact match.
	_, err = env.auth.Authenticate(ctx, "A@X.COM", "pw12345")
	assertCode(t, err, domainerrors.CodeInvalidCredentials)
	_, err = env.auth.Authenticate(ctx, " a@x.com", "pw12345")
	assertCode(t, err, domainerrors.CodeInvalidCredentials)
}

func TestAuthService_Authenticate_UnknownEmailHashes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "a@x.com")

	assert.Empty(t, env.auth.dummyHash)

	_, err := env.auth.Authenticate(ctx, "nobody@x.com", "pw12345")
	assertCode(t, err, domainerrors.CodeInvalidCredentials)

	// The miss ran a real argon2 verification with the service's parameters.
	require.NotEmpty(t, env.auth.dummyHash)
	assert.Contains(t, env.auth.dummyHash, fmt.Sprintf("m=%d,t=%d", cheapParams.Memory, cheapParams.Iterations))

	// The hash is computed once.
	first := env.auth.dummyHash
	_, err = env.auth.Authenticate(ctx, "other@x.com", "pw12345")
	assertCode(t, err, domainerrors.CodeInvalidCredentials)
	assert.Equal(t, first, env.auth.dummyHash)
}

func TestAuthService_LoginAndResolve(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registered := env.register(t, "a@x.com")

	token, err := env.auth.Login(ctx, LoginRequest{Email: "a@x.com", Password: "pw12345"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, 1800, token.ExpiresIn)
	assert.NotEmpty(t, token.AccessToken)

	user, err := env.auth.ResolveCurrentUser(ctx, token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestAuthService_ResolveCurrentUser_Failures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")

	t.Run("missing", func(t *testing.T) {
		_, err := env.auth.ResolveCurrentUser(ctx, "")
		assertCode(t, err, domainerrors.CodeUnauthorized)
	})

	t.Run("garbled", func(t *testing.T) {
		_, err := env.auth.ResolveCurrentUser(ctx, "v4.local.garbage")
		assertCode(t, err, domainerrors.CodeUnauthorized)
	})

	t.Run("signed with another key", func(t *testing.T) {
		other, err := auth.NewTokenService([]byte("fedcba9876543210fedcba9876543210"), time.Minute)
		require.NoError(t, err)
		issued, err := other.Issue(user)
		require.NoError(t, err)

		_, err = env.auth.ResolveCurrentUser(ctx, issued.Token)
		assertCode(t, err, domainerrors.CodeUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		shortLived, err := auth.NewTokenService(testKey, time.Millisecond)
		require.NoError(t, err)
		issued, err := shortLived.Issue(user)
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)

		_, err = env.auth.ResolveCurrentUser(ctx, issued.Token)
		assertCode(t, err, domainerrors.CodeTokenExpired)
	})

	t.Run("identity gone", func(t *testing.T) {
		ghost := *user
		ghost.Email = "ghost@x.com"
		issued, err := env.tokens.Issue(&ghost)
		require.NoError(t, err)

		_, err = env.auth.ResolveCurrentUser(ctx, issued.Token)
		assertCode(t, err, domainerrors.CodeUnauthorized)
	})
}

func TestAuthService_Gates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")

	token, err := env.auth.IssueToken(user)
	require.NoError(t, err)

	_, err = env.auth.CurrentActiveUser(ctx, token.AccessToken)
	require.NoError(t, err)

	_, err = env.auth.CurrentAdmin(ctx, token.AccessToken)
	assertCode(t, err, domainerrors.CodeForbidden)

	no := false
	_, err = env.auth.SetUserFlags(ctx, user.ID, UpdateUserFlagsRequest{IsActive: &no})
	require.NoError(t, err)

	// Tokens stay valid, but the reloaded user is now inactive.
	_, err = env.auth.CurrentActiveUser(ctx, token.AccessToken)
	assertCode(t, err, domainerrors.CodeAccountInactive)

	// An inactive user still authenticates.
	_, err = env.auth.Authenticate(ctx, "a@x.com", "pw12345")
	assert.NoError(t, err)
}

func TestAuthService_SetUserFlags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")

	_, err := env.auth.SetUserFlags(ctx, user.ID, UpdateUserFlagsRequest{})
	assertCode(t, err, domainerrors.CodeValidation)

	yes := true
	updated, err := env.auth.SetUserFlags(ctx, user.ID, UpdateUserFlagsRequest{IsAdmin: &yes})
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin())
	assert.True(t, updated.IsActive())

	_, err = env.auth.SetUserFlags(ctx, "usr-missing", UpdateUserFlagsRequest{IsAdmin: &yes})
	assertCode(t, err, domainerrors.CodeNotFound)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin, created, err := env.auth.EnsureAdmin(ctx, "admin@bookstore.com", "admin123")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, admin.IsAdmin())

	again, created, err := env.auth.EnsureAdmin(ctx, "admin@bookstore.com", "ignored")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, admin.ID, again.ID)

	// The original password still works.
	_, err = env.auth.Authenticate(ctx, "admin@bookstore.com", "admin123")
	assert.NoError(t, err)

	user := env.register(t, "a@x.com")
	promoted, created, err := env.auth.EnsureAdmin(ctx, "a@x.com", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, promoted.ID)
	assert.True(t, promoted.IsAdmin())
}
