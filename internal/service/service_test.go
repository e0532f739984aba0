package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagebound/bookstore-server/internal/auth"
	"github.com/pagebound/bookstore-server/internal/domain"
	domainerrors "github.com/pagebound/bookstore-server/internal/errors"
	"github.com/pagebound/bookstore-server/internal/store"
	"github.com/pagebound/bookstore-server/internal/store/sqlite"
)

// cheapParams keep registration fast in tests.
var cheapParams = auth.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

var testKey = []byte("0123456789abcdef0123456789abcdef")

type testEnv struct {
	store   *sqlite.Store
	tokens  *auth.TokenService
	auth    *AuthService
	catalog *CatalogService
	cart    *CartService
	orders  *OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "bookstore.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	tokens, err := auth.NewTokenService(testKey, 30*time.Minute)
	require.NoError(t, err)

	authSvc := NewAuthService(st, tokens, nil)
	authSvc.hashParams = cheapParams

	return &testEnv{
		store:   st,
		tokens:  tokens,
		auth:    authSvc,
		catalog: NewCatalogService(st, nil),
		cart:    NewCartService(st, nil),
		orders:  NewOrderService(st, nil),
	}
}

func (e *testEnv) register(t *testing.T, email string) *domain.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), RegisterRequest{Email: email, Password: "pw12345"})
	require.NoError(t, err)
	return user
}

func (e *testEnv) book(t *testing.T, title, price string, stock *int) *domain.Book {
	t.Helper()
	book, err := e.catalog.CreateBook(context.Background(), CreateBookRequest{
		Title: title,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	require.NoError(t, err)
	return book
}

func (e *testEnv) add(t *testing.T, userID, bookID string, quantity int) *domain.CartItem {
	t.Helper()
	item, err := e.cart.Add(context.Background(), userID, AddCartItemRequest{BookID: bookID, Quantity: quantity})
	require.NoError(t, err)
	return item
}

// assertCode checks that err is a domain error with the given code.
func assertCode(t *testing.T, err error, code domainerrors.Code) {
	t.Helper()
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr), "expected domain error, got %T: %v", err, err)
	assert.Equal(t, code, domainErr.Code, "message: %s", domainErr.Message)
}

func TestMapStoreError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domainerrors.Code
	}{
		{"not found", store.ErrBookNotFound, domainerrors.CodeNotFound},
		{"already exists", store.ErrEmailExists, domainerrors.CodeAlreadyExists},
		{"invalid input", store.ErrInvalidInput, domainerrors.CodeValidation},
		{"domain passthrough", domainerrors.ErrEmptyCart, domainerrors.CodeEmptyCart},
		{"anything else", errors.New("disk I/O error"), domainerrors.CodePersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCode(t, mapStoreError(tt.err, "test"), tt.want)
		})
	}

	assert.NoError(t, mapStoreError(nil, "test"))
}
