package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/pagebound/bookstore-server/internal/auth"
	"github.com/pagebound/bookstore-server/internal/service"
	"github.com/pagebound/bookstore-server/internal/store/sqlite"
)

const (
	adminEmail    = "admin@bookstore.com"
	adminPassword = "admin123"
)

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api humatest.TestAPI

	cachedAdminToken string
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWithOptions(t, Options{AuthPerMinute: 600, AuthBurst: 100})
}

func setupTestServerWithOptions(t *testing.T, opts Options) *testServer {
	t.Helper()

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "bookstore.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	key, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute)
	require.NoError(t, err)

	authService := service.NewAuthService(st, tokens, nil)
	services := &Services{
		Auth:    authService,
		Catalog: service.NewCatalogService(st, nil),
		Cart:    service.NewCartService(st, nil),
		Orders:  service.NewOrderService(st, nil),
	}

	_, _, err = authService.EnsureAdmin(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)

	s := NewServer(st, services, opts, nil)
	t.Cleanup(s.Close)

	return &testServer{Server: s, api: humatest.Wrap(t, s.API())}
}

// envelope mirrors response.Envelope with a raw data payload.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details map[string]any  `json:"details"`
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), "body: %s", resp.Body.String())
	return env
}

// decodeData decodes the envelope data of a successful response into v.
func decodeData(t *testing.T, resp *httptest.ResponseRecorder, v any) {
	t.Helper()
	env := decodeEnvelope(t, resp)
	require.True(t, env.Success, "body: %s", resp.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

// login returns an access token for the given credentials.
func (ts *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/auth/login", map[string]any{"email": email, "password": password})
	require.Equal(t, 200, resp.Code, "body: %s", resp.Body.String())

	var token TokenResponse
	decodeData(t, resp, &token)
	return token.AccessToken
}

// registerAndLogin creates a user and returns their access token.
func (ts *testServer) registerAndLogin(t *testing.T, email string) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/auth/register", map[string]any{"email": email, "password": "pw12345"})
	require.Equal(t, 201, resp.Code, "body: %s", resp.Body.String())
	return ts.login(t, email, "pw12345")
}

func (ts *testServer) adminToken(t *testing.T) string {
	t.Helper()
	if ts.cachedAdminToken == "" {
		ts.cachedAdminToken = ts.login(t, adminEmail, adminPassword)
	}
	return ts.cachedAdminToken
}

// createBook creates a book as admin. A nil stock leaves it untracked.
func (ts *testServer) createBook(t *testing.T, title string, price float64, stock *int) BookResponse {
	t.Helper()
	body := map[string]any{"title": title, "price": price}
	if stock != nil {
		body["in_stock"] = *stock
	}

	resp := ts.api.Post("/api/v1/books", bearer(ts.adminToken(t)), body)
	require.Equal(t, 201, resp.Code, "body: %s", resp.Body.String())

	var book BookResponse
	decodeData(t, resp, &book)
	return book
}
