package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"

	"github.com/pagebound/bookstore-server/internal/domain"
)

const (
	tokenIssuer   = "bookstore-server"
	tokenAudience = "bookstore-client"

	claimUserID = "user_id"
)

// Token verification errors. Callers map them to distinct API errors.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims are the identity claims carried by an access token.
// Tokens are v4.local, so claims are encrypted and unreadable without the key.
type Claims struct {
	Subject   string // the user's email
	UserID    string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IssuedToken is a freshly signed access token.
type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// TokenService issues and verifies PASETO v4.local access tokens.
// Tokens are stateless: nothing is stored server side and there is no revocation.
type TokenService struct {
	key      paseto.V4SymmetricKey
	duration time.Duration
	now      func() time.Time
}

// NewTokenService creates a token service from a 32-byte symmetric key.
func NewTokenService(key []byte, duration time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}
	if duration <= 0 {
		return nil, fmt.Errorf("token duration must be positive, got %s", duration)
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		key:      symmetricKey,
		duration: duration,
		now:      time.Now,
	}, nil
}

// Duration returns how long issued tokens stay valid.
func (s *TokenService) Duration() time.Duration {
	return s.duration
}

// Issue creates an access token whose subject is the user's email.
func (s *TokenService) Issue(user *domain.User) (*IssuedToken, error) {
	now := s.now()
	expiresAt := now.Add(s.duration)
	tokenID := uuid.NewString()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(user.Email)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expiresAt)
	token.SetJti(tokenID)

	if err := token.Set(claimUserID, user.ID); err != nil {
		return nil, fmt.Errorf("set user claim: %w", err)
	}

	return &IssuedToken{
		Token:     token.V4Encrypt(s.key, nil),
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify decrypts a token and checks its claims.
// It returns ErrTokenExpired for a genuine token past its expiry, and
// ErrTokenInvalid for anything forged, garbled or not yet valid.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	var claims Claims
	if claims.ExpiresAt, err = token.GetExpiration(); err != nil {
		return nil, fmt.Errorf("%w: missing expiration", ErrTokenInvalid)
	}
	now := s.now()
	if !now.Before(claims.ExpiresAt) {
		return nil, ErrTokenExpired
	}
	if nbf, err := token.GetNotBefore(); err != nil || now.Before(nbf) {
		return nil, fmt.Errorf("%w: not yet valid", ErrTokenInvalid)
	}
	if claims.IssuedAt, err = token.GetIssuedAt(); err != nil {
		return nil, fmt.Errorf("%w: missing issued-at", ErrTokenInvalid)
	}
	if claims.Subject, err = token.GetSubject(); err != nil || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if claims.UserID, err = token.GetString(claimUserID); err != nil {
		return nil, fmt.Errorf("%w: missing user id", ErrTokenInvalid)
	}
	if claims.TokenID, err = token.GetJti(); err != nil {
		return nil, fmt.Errorf("%w: missing token id", ErrTokenInvalid)
	}

	return &claims, nil
}
