package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagebound/bookstore-server/internal/domain"
	domainerrors "github.com/pagebound/bookstore-server/internal/errors"
)

func TestCartService_AddIncrements(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	book := env.book(t, "Dune", "9.99", nil)

	first := env.add(t, user.ID, book.ID, 2)
	second := env.add(t, user.ID, book.ID, 3)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	items, err := env.cart.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestCartService_Add_Rejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	book := env.book(t, "Dune", "9.99", domain.IntPtr(2))

	_, err := env.cart.Add(ctx, user.ID, AddCartItemRequest{BookID: book.ID, Quantity: 0})
	assertCode(t, err, domainerrors.CodeValidation)

	_, err = env.cart.Add(ctx, user.ID, AddCartItemRequest{BookID: "bk-missing", Quantity: 1})
	assertCode(t, err, domainerrors.CodeNotFound)

	_, err = env.cart.Add(ctx, user.ID, AddCartItemRequest{BookID: book.ID, Quantity: 3})
	assertCode(t, err, domainerrors.CodeInsufficientStock)

	items, err := env.cart.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartService_Add_CountsExistingLine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	other := env.register(t, "b@x.com")
	book := env.book(t, "Dune", "9.99", domain.IntPtr(2))

	env.add(t, user.ID, book.ID, 2)

	_, err := env.cart.Add(ctx, user.ID, AddCartItemRequest{BookID: book.ID, Quantity: 1})
	assertCode(t, err, domainerrors.CodeInsufficientStock)

	// Nothing is reserved: another user can still add the same units.
	env.add(t, other.ID, book.ID, 2)
}

func TestCartService_RemoveAndClear(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	other := env.register(t, "b@x.com")
	dune := env.book(t, "Dune", "9.99", nil)
	emma := env.book(t, "Emma", "4.50", nil)

	item := env.add(t, user.ID, dune.ID, 1)
	env.add(t, user.ID, emma.ID, 1)

	err := env.cart.Remove(ctx, other.ID, item.ID)
	assertCode(t, err, domainerrors.CodeNotFound)

	require.NoError(t, env.cart.Remove(ctx, user.ID, item.ID))
	err = env.cart.Remove(ctx, user.ID, item.ID)
	assertCode(t, err, domainerrors.CodeNotFound)

	n, err := env.cart.Clear(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	items, err := env.cart.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
