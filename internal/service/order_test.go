package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagebound/bookstore-server/internal/domain"
	domainerrors "github.com/pagebound/bookstore-server/internal/errors"
	"github.com/pagebound/bookstore-server/internal/notify"
	"github.com/pagebound/bookstore-server/internal/store"
)

// failingStore wraps a real store so that one transactional step fails after
// the earlier writes of the order transaction have already happened.
type failingStore struct {
	store.Store
	failOn string
}

func (s *failingStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(&failingTx{Tx: tx, failOn: s.failOn})
	})
}

type failingTx struct {
	store.Tx
	failOn string
}

var errInjected = errors.New("injected failure")

func (tx *failingTx) UpdateOrderTotal(ctx context.Context, orderID string, total decimal.Decimal) error {
	if tx.failOn == "total" {
		return errInjected
	}
	return tx.Tx.UpdateOrderTotal(ctx, orderID, total)
}

func (tx *failingTx) DeleteCartItem(ctx context.Context, userID, itemID string) (bool, error) {
	if tx.failOn == "cart" {
		return false, nil
	}
	return tx.Tx.DeleteCartItem(ctx, userID, itemID)
}

type recordingNotifier struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (n *recordingNotifier) Enqueue(note notify.Notification) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, note)
	return true
}

func stockOf(t *testing.T, env *testEnv, bookID string) *int {
	t.Helper()
	book, err := env.catalog.GetBook(context.Background(), bookID)
	require.NoError(t, err)
	return book.Stock
}

func TestOrderService_PlaceOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	dune := env.book(t, "Dune", "9.99", domain.IntPtr(5))
	emma := env.book(t, "Emma", "4.50", nil)

	env.add(t, user.ID, dune.ID, 2)
	env.add(t, user.ID, emma.ID, 3)

	order, err := env.orders.PlaceOrder(ctx, user.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusCreated, order.Status)
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("33.48")), "total %s", order.TotalPrice)
	require.Len(t, order.Items, 2)
	assert.Equal(t, dune.ID, order.Items[0].BookID)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.True(t, order.Items[0].UnitPrice.Equal(dune.Price))

	assert.Equal(t, 3, *stockOf(t, env, dune.ID))
	assert.Nil(t, stockOf(t, env, emma.ID), "untracked stock stays untracked")

	items, err := env.cart.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	stored, err := env.orders.GetOrder(ctx, user.ID, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalPrice.Equal(order.TotalPrice))
	assert.Len(t, stored.Items, 2)
}

func TestOrderService_PlaceOrder_EmptyCart(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "a@x.com")

	_, err := env.orders.PlaceOrder(context.Background(), user.ID)
	assertCode(t, err, domainerrors.CodeEmptyCart)

	orders, err := env.orders.ListOrders(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_PlaceOrder_PriceSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	book := env.book(t, "Dune", "10.00", nil)

	env.add(t, user.ID, book.ID, 1)
	order, err := env.orders.PlaceOrder(ctx, user.ID)
	require.NoError(t, err)

	price := decimal.RequireFromString("99.00")
	_, err = env.catalog.UpdateBook(ctx, book.ID, UpdateBookRequest{Price: &price})
	require.NoError(t, err)

	stored, err := env.orders.GetOrder(ctx, user.ID, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalPrice.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
}

func TestOrderService_PlaceOrder_StockFloorsAtZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	book := env.book(t, "Dune", "10.00", domain.IntPtr(3))

	env.add(t, user.ID, book.ID, 3)

	// Stock drops after the cart check; ordering is not re-checked.
	_, err := env.catalog.UpdateBook(ctx, book.ID, UpdateBookRequest{Stock: domain.IntPtr(1)})
	require.NoError(t, err)

	order, err := env.orders.PlaceOrder(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, 0, *stockOf(t, env, book.ID))
}

func TestOrderService_PlaceOrder_RollsBack(t *testing.T) {
	for _, failOn := range []string{"total", "cart"} {
		t.Run(failOn, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			user := env.register(t, "a@x.com")
			book := env.book(t, "Dune", "10.00", domain.IntPtr(5))
			env.add(t, user.ID, book.ID, 2)

			orders := NewOrderService(&failingStore{Store: env.store, failOn: failOn}, nil)
			_, err := orders.PlaceOrder(ctx, user.ID)
			require.Error(t, err)
			if failOn == "cart" {
				assertCode(t, err, domainerrors.CodeConflict)
			} else {
				assertCode(t, err, domainerrors.CodePersistence)
				assert.ErrorIs(t, err, errInjected)
			}

			assert.Equal(t, 5, *stockOf(t, env, book.ID))

			items, err := env.cart.List(ctx, user.ID)
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, 2, items[0].Quantity)

			placed, err := env.orders.ListOrders(ctx, user.ID)
			require.NoError(t, err)
			assert.Empty(t, placed)
		})
	}
}

func TestOrderService_PlaceOrder_ConcurrentCallsConvertOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	book := env.book(t, "Dune", "10.00", domain.IntPtr(5))
	env.add(t, user.ID, book.ID, 2)

	const callers = 4
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		placed  int
		empties int
	)
	for range callers {
		wg.Go(func() {
			_, err := env.orders.PlaceOrder(ctx, user.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case domainerrors.Is(err, domainerrors.ErrEmptyCart):
				empties++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 1, placed)
	assert.Equal(t, callers-1, empties)
	assert.Equal(t, 3, *stockOf(t, env, book.ID))
}

func TestOrderService_Notifies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")
	book := env.book(t, "Dune", "10.00", nil)
	env.add(t, user.ID, book.ID, 2)

	notifier := &recordingNotifier{}
	env.orders.SetNotifier(notifier)

	order, err := env.orders.PlaceOrder(ctx, user.ID)
	require.NoError(t, err)

	require.Len(t, notifier.got, 1)
	note := notifier.got[0]
	assert.Equal(t, "a@x.com", note.Email)
	assert.Equal(t, order.ID, note.OrderID)
	assert.Equal(t, 2, note.ItemCount)
	assert.True(t, note.Total.Equal(decimal.RequireFromString("20.00")))
}

func TestOrderService_OwnerScoping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "a@x.com")
	bob := env.register(t, "b@x.com")
	book := env.book(t, "Dune", "10.00", nil)

	env.add(t, alice.ID, book.ID, 1)
	first, err := env.orders.PlaceOrder(ctx, alice.ID)
	require.NoError(t, err)

	env.add(t, alice.ID, book.ID, 1)
	second, err := env.orders.PlaceOrder(ctx, alice.ID)
	require.NoError(t, err)

	orders, err := env.orders.ListOrders(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID, "newest first")
	assert.Equal(t, first.ID, orders[1].ID)

	_, err = env.orders.GetOrder(ctx, bob.ID, first.ID)
	assertCode(t, err, domainerrors.CodeNotFound)
}

// Register, log in, stock a book as admin, fill the cart up to the stock,
// get turned away when adding one more, then check out.
func TestCheckoutScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, err := env.auth.EnsureAdmin(ctx, "admin@bookstore.com", "admin123")
	require.NoError(t, err)
	adminToken, err := env.auth.Login(ctx, LoginRequest{Email: "admin@bookstore.com", Password: "admin123"})
	require.NoError(t, err)
	_, err = env.auth.CurrentAdmin(ctx, adminToken.AccessToken)
	require.NoError(t, err)

	_, err = env.auth.Register(ctx, RegisterRequest{Email: "a@x.com", Password: "pw12345"})
	require.NoError(t, err)
	token, err := env.auth.Login(ctx, LoginRequest{Email: "a@x.com", Password: "pw12345"})
	require.NoError(t, err)
	user, err := env.auth.CurrentActiveUser(ctx, token.AccessToken)
	require.NoError(t, err)

	book, err := env.catalog.CreateBook(ctx, CreateBookRequest{
		Title: "T",
		Price: decimal.RequireFromString("10.0"),
		Stock: domain.IntPtr(2),
	})
	require.NoError(t, err)

	env.add(t, user.ID, book.ID, 2)

	_, err = env.cart.Add(ctx, user.ID, AddCartItemRequest{BookID: book.ID, Quantity: 1})
	assertCode(t, err, domainerrors.CodeInsufficientStock)

	order, err := env.orders.PlaceOrder(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(20)), "total %s", order.TotalPrice)

	assert.Equal(t, 0, *stockOf(t, env, book.ID))

	items, err := env.cart.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
