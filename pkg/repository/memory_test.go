package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/pkg/order"
)

func TestMemoryOrderStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryOrderStore()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := s.InsertOrder(ctx, order.CustomerInfo{Name: "Asha"}, 300, order.StatusReceived)
	require.NoError(t, err)
	require.NoError(t, s.InsertOrderItems(ctx, first.ID, []order.Item{{Name: "Garam Masala", Price: 150, Quantity: 2}}))

	second, err := s.InsertOrder(ctx, order.CustomerInfo{Name: "Ravi"}, 110, order.StatusReceived)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	require.NoError(t, s.UpdateOrderStatus(ctx, first.ID, order.StatusAccepted))

	orders, err := s.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	assert.Equal(t, order.StatusAccepted, orders[1].Status)
	assert.Len(t, orders[1].Items, 1)
	assert.True(t, orders[1].UpdatedAt.After(orders[1].CreatedAt))

	assert.ErrorIs(t, s.UpdateOrderStatus(ctx, "missing", order.StatusAccepted), order.ErrNotFound)
	assert.ErrorIs(t, s.InsertOrderItems(ctx, "missing", nil), order.ErrNotFound)
	assert.NoError(t, s.Ping(ctx))
}

func TestMemoryOrderStore_ListIsACopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryOrderStore()
	o, err := s.InsertOrder(ctx, order.CustomerInfo{Name: "Asha"}, 150, order.StatusReceived)
	require.NoError(t, err)
	require.NoError(t, s.InsertOrderItems(ctx, o.ID, []order.Item{{Name: "Turmeric", Price: 80, Quantity: 1}}))

	orders, err := s.ListOrders(ctx)
	require.NoError(t, err)
	orders[0].Items[0].Quantity = 99

	again, err := s.ListOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, again[0].Items[0].Quantity)
}

func TestMemoryOrderStore_DeleteOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryOrderStore()
	o, err := s.InsertOrder(ctx, order.CustomerInfo{Name: "Asha"}, 150, order.StatusReceived)
	require.NoError(t, err)

	require.NoError(t, s.DeleteOrder(ctx, o.ID))
	require.NoError(t, s.DeleteOrder(ctx, "missing"))

	orders, err := s.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}
