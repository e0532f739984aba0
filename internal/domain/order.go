package domain

import "github.com/shopspring/decimal"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	// OrderStatusCreated is the state of every freshly placed order.
	OrderStatusCreated OrderStatus = "created"
)

// Order is a placed purchase. TotalPrice is a snapshot taken when the order
// was created and is never recomputed from current book prices.
type Order struct {
	Entity
	UserID     string          `json:"user_id"`
	Status     OrderStatus     `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Items      []OrderItem     `json:"items"`
}

// OrderItem is one line of an order. UnitPrice is the book price captured at
// order time.
type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	BookID    string          `json:"book_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`

	// Book is resolved on reads; nil when the book has since been deleted.
	Book *Book `json:"book,omitempty"`
}

// LineTotal returns quantity × unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsTotal sums the line totals of the order's items.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}
