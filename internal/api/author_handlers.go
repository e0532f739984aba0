package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagebound/bookstore-server/internal/service"
)

func (s *Server) registerAuthorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAuthors",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors",
		Summary:     "List authors",
		Description: "Returns every author ordered by name",
		Tags:        []string{"Authors"},
	}, s.handleListAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAuthor",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Get author",
		Tags:        []string{"Authors"},
	}, s.handleGetAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createAuthor",
		Method:        http.MethodPost,
		Path:          "/api/v1/authors",
		Summary:       "Create author",
		Description:   "Adds an author (admin only)",
		Tags:          []string{"Authors"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateAuthor",
		Method:      http.MethodPatch,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Update author",
		Description: "Changes the given fields of an author (admin only)",
		Tags:        []string{"Authors"},
		Security:    bearerSecurity,
	}, s.handleUpdateAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteAuthor",
		Method:        http.MethodDelete,
		Path:          "/api/v1/authors/{id}",
		Summary:       "Delete author",
		Description:   "Removes an author; their books stay in the catalog without an author (admin only)",
		Tags:          []string{"Authors"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteAuthor)
}

// AuthorIDInput identifies an author by path.
type AuthorIDInput struct {
	ID string `path:"id" doc:"Author ID"`
}

// AuthorOutput wraps an author response for Huma.
type AuthorOutput struct {
	Body AuthorResponse
}

// ListAuthorsOutput wraps the author list for Huma.
type ListAuthorsOutput struct {
	Body []AuthorResponse
}

// CreateAuthorRequest is the request body for a new author.
type CreateAuthorRequest struct {
	Name string `json:"name" maxLength:"200" doc:"Author name"`
	Bio  string `json:"bio,omitempty" maxLength:"5000" doc:"Short biography"`
}

// CreateAuthorInput wraps the create request for Huma.
type CreateAuthorInput struct {
	Body CreateAuthorRequest
}

// UpdateAuthorRequest is the request body for an author update.
type UpdateAuthorRequest struct {
	Name *string `json:"name,omitempty" maxLength:"200" doc:"Author name"`
	Bio  *string `json:"bio,omitempty" maxLength:"5000" doc:"Short biography"`
}

// UpdateAuthorInput wraps the update request for Huma.
type UpdateAuthorInput struct {
	ID   string `path:"id" doc:"Author ID"`
	Body UpdateAuthorRequest
}

func (s *Server) handleListAuthors(ctx context.Context, _ *struct{}) (*ListAuthorsOutput, error) {
	authors, err := s.services.Catalog.ListAuthors(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]AuthorResponse, 0, len(authors))
	for _, a := range authors {
		resp = append(resp, newAuthorResponse(a))
	}
	return &ListAuthorsOutput{Body: resp}, nil
}

func (s *Server) handleGetAuthor(ctx context.Context, input *AuthorIDInput) (*AuthorOutput, error) {
	author, err := s.services.Catalog.GetAuthor(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: newAuthorResponse(author)}, nil
}

func (s *Server) handleCreateAuthor(ctx context.Context, input *CreateAuthorInput) (*AuthorOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	author, err := s.services.Catalog.CreateAuthor(ctx, service.CreateAuthorRequest{
		Name: input.Body.Name,
		Bio:  input.Body.Bio,
	})
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: newAuthorResponse(author)}, nil
}

func (s *Server) handleUpdateAuthor(ctx context.Context, input *UpdateAuthorInput) (*AuthorOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	author, err := s.services.Catalog.UpdateAuthor(ctx, input.ID, service.UpdateAuthorRequest{
		Name: input.Body.Name,
		Bio:  input.Body.Bio,
	})
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Body: newAuthorResponse(author)}, nil
}

func (s *Server) handleDeleteAuthor(ctx context.Context, input *AuthorIDInput) (*struct{}, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := s.services.Catalog.DeleteAuthor(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
