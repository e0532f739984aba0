package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook_DecrementStock(t *testing.T) {
	tests := []struct {
		name     string
		stock    *int
		quantity int
		want     *int
	}{
		{"within stock", IntPtr(5), 2, IntPtr(3)},
		{"exact stock", IntPtr(2), 2, IntPtr(0)},
		{"over stock floors at zero", IntPtr(2), 7, IntPtr(0)},
		{"untracked stays untracked", nil, 100, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Book{Stock: tt.stock}
			b.DecrementStock(tt.quantity)

			if tt.want == nil {
				assert.Nil(t, b.Stock)
				return
			}
			require.NotNil(t, b.Stock)
			assert.Equal(t, *tt.want, *b.Stock)
		})
	}
}

func TestBook_CanSupply(t *testing.T) {
	assert.True(t, (&Book{}).CanSupply(1000))
	assert.True(t, (&Book{Stock: IntPtr(2)}).CanSupply(2))
	assert.False(t, (&Book{Stock: IntPtr(2)}).CanSupply(3))
	assert.False(t, (&Book{Stock: IntPtr(0)}).CanSupply(1))
}

func TestOrder_ItemsTotal(t *testing.T) {
	order := &Order{
		Items: []OrderItem{
			{Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
			{Quantity: 3, UnitPrice: decimal.RequireFromString("0.10")},
		},
	}

	assert.True(t, decimal.RequireFromString("20.30").Equal(order.ItemsTotal()))
	assert.True(t, decimal.RequireFromString("0.30").Equal(order.Items[1].LineTotal()))
}
