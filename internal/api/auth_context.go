package api

import (
	"context"

	"github.com/pagebound/bookstore-server/internal/domain"
)

// bearerSecurity marks an operation as requiring the bearer scheme in OpenAPI.
var bearerSecurity = []map[string][]string{{"bearer": {}}}

// RequireUser resolves the bearer token to an active user.
func (s *Server) RequireUser(ctx context.Context) (*domain.User, error) {
	return s.services.Auth.CurrentActiveUser(ctx, bearerToken(ctx))
}

// RequireAdmin resolves the bearer token to an active admin.
func (s *Server) RequireAdmin(ctx context.Context) (*domain.User, error) {
	return s.services.Auth.CurrentAdmin(ctx, bearerToken(ctx))
}
