package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagebound/bookstore-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated, active user",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateUserFlags",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/{id}",
		Summary:     "Update user flags",
		Description: "Activates, deactivates, promotes or demotes a user (admin only)",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleUpdateUserFlags)
}

// UpdateUserFlagsRequest is the request body for changing a user's flags.
type UpdateUserFlagsRequest struct {
	IsActive *bool `json:"is_active,omitempty" doc:"Whether the user may use authenticated endpoints"`
	IsAdmin  *bool `json:"is_admin,omitempty" doc:"Whether the user may manage the catalog"`
}

// UpdateUserFlagsInput wraps the flag update for Huma.
type UpdateUserFlagsInput struct {
	ID   string `path:"id" doc:"User ID"`
	Body UpdateUserFlagsRequest
}

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: newUserResponse(user)}, nil
}

func (s *Server) handleUpdateUserFlags(ctx context.Context, input *UpdateUserFlagsInput) (*UserOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	user, err := s.services.Auth.SetUserFlags(ctx, input.ID, service.UpdateUserFlagsRequest{
		IsActive: input.Body.IsActive,
		IsAdmin:  input.Body.IsAdmin,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: newUserResponse(user)}, nil
}
