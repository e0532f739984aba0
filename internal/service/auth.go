package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pagebound/bookstore-server/internal/auth"
	"github.com/pagebound/bookstore-server/internal/domain"
	domainerrors "github.com/pagebound/bookstore-server/internal/errors"
	"github.com/pagebound/bookstore-server/internal/id"
	"github.com/pagebound/bookstore-server/internal/store"
)

// AuthService is the auth gate: it registers and authenticates users, issues
// stateless access tokens, and resolves a token back to the current user.
type AuthService struct {
	store      store.Store
	tokens     *auth.TokenService
	logger     *slog.Logger
	hashParams auth.Params

	// dummyHash is verified against when the email is unknown, so a miss
	// costs the same argon2 work as a wrong password.
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new authentication service.
func NewAuthService(store store.Store, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:      store,
		tokens:     tokens,
		logger:     orDiscard(logger),
		hashParams: auth.DefaultParams,
	}
}

// RegisterRequest contains the credentials of a new account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=1024"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserFlagsRequest changes a user's flags. Nil fields are left unchanged.
type UpdateUserFlagsRequest struct {
	IsActive *bool `json:"is_active,omitempty"`
	IsAdmin  *bool `json:"is_admin,omitempty"`
}

// Token is the bearer credential returned by login.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Register creates an active, non-admin user.
// A duplicate email is an ALREADY_EXISTS error.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, req.Email, req.Password, false)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, email, password string, admin bool) (*domain.User, error) {
	passwordHash, err := auth.HashPasswordWithParams(password, s.hashParams)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: passwordHash,
		Active:       true,
		Admin:        admin,
	}
	user.ID = userID
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, domainerrors.AlreadyExists("email already registered")
		}
		return nil, mapStoreError(err, "create user")
	}
	return user, nil
}

// Authenticate checks an email and password. The email must match the stored
// one exactly. It does not look at the user's flags: an inactive user still
// authenticates and is stopped by RequireActive.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			auth.VerifyPassword(s.unknownUserHash(), password)
			return nil, domainerrors.InvalidCredentials("incorrect email or password")
		}
		return nil, mapStoreError(err, "look up user")
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, domainerrors.InvalidCredentials("incorrect email or password")
	}

	return user, nil
}

func (s *AuthService) unknownUserHash() string {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPasswordWithParams("unknown-user", s.hashParams)
		if err != nil {
			s.logger.Error("dummy hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// IssueToken creates a bearer token for user.
func (s *AuthService) IssueToken(user *domain.User) (*Token, error) {
	issued, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &Token{
		AccessToken: issued.Token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokens.Duration().Seconds()),
		ExpiresAt:   issued.ExpiresAt,
	}, nil
}

// Login authenticates the credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*Token, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Info("login failed", "email", req.Email)
		return nil, err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return token, nil
}

// ResolveCurrentUser maps a bearer token to its user.
//
// Garbled or forged tokens and tokens whose identity no longer resolves are
// UNAUTHORIZED; a genuine token past its expiry is TOKEN_EXPIRED.
func (s *AuthService) ResolveCurrentUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domainerrors.Unauthorized("missing bearer token")
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, domainerrors.TokenExpired("token has expired")
		}
		s.logger.Debug("token rejected", "error", err)
		return nil, domainerrors.Unauthorized("could not validate credentials")
	}

	user, err := s.store.GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.Unauthorized("could not validate credentials")
		}
		return nil, mapStoreError(err, "resolve user")
	}

	return user, nil
}

// RequireActive rejects inactive users.
func (s *AuthService) RequireActive(user *domain.User) error {
	if !user.IsActive() {
		return domainerrors.AccountInactive("inactive user")
	}
	return nil
}

// RequireAdmin rejects users without the admin flag.
func (s *AuthService) RequireAdmin(user *domain.User) error {
	if !user.IsAdmin() {
		return domainerrors.Forbidden("not enough permissions")
	}
	return nil
}

// CurrentActiveUser resolves the token and requires an active user.
func (s *AuthService) CurrentActiveUser(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.ResolveCurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.RequireActive(user); err != nil {
		return nil, err
	}
	return user, nil
}

// CurrentAdmin resolves the token and requires an active admin.
func (s *AuthService) CurrentAdmin(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.CurrentActiveUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.RequireAdmin(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetUserFlags changes a user's active and admin flags.
func (s *AuthService) SetUserFlags(ctx context.Context, userID string, req UpdateUserFlagsRequest) (*domain.User, error) {
	if req.IsActive == nil && req.IsAdmin == nil {
		return nil, domainerrors.Validation("nothing to update")
	}

	user, err := s.store.UpdateUserFlags(ctx, userID, req.IsActive, req.IsAdmin)
	if err != nil {
		return nil, mapStoreError(err, "update user")
	}

	s.logger.Info("user flags updated", "user_id", user.ID, "is_active", user.Active, "is_admin", user.Admin)
	return user, nil
}

// EnsureAdmin makes sure an active admin with the given email exists. A
// missing user is created with password; an existing one is promoted and
// reactivated without touching its password. It reports whether a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, bool, error) {
	email = strings.TrimSpace(email)

	existing, err := s.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin() && existing.IsActive() {
			return existing, false, nil
		}
		yes := true
		user, err := s.store.UpdateUserFlags(ctx, existing.ID, &yes, &yes)
		if err != nil {
			return nil, false, mapStoreError(err, "promote admin")
		}
		s.logger.Info("existing user promoted to admin", "user_id", user.ID, "email", email)
		return user, false, nil

	case !errors.Is(err, store.ErrUserNotFound):
		return nil, false, mapStoreError(err, "look up admin")
	}

	if err := validate.Validate(RegisterRequest{Email: email, Password: password}); err != nil {
		return nil, false, err
	}

	user, err := s.createUser(ctx, email, password, true)
	if err != nil {
		return nil, false, err
	}

	s.logger.Info("default admin created", "user_id", user.ID, "email", email)
	return user, true, nil
}
