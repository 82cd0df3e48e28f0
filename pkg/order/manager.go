// Package order models persisted orders and drives them through the delivery
// lifecycle: received, accepted, preparing, ready, out_for_delivery, delivered.
package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// FilterAll selects every order in OrdersByStatus.
const FilterAll = "all"

var ErrNoItems = errors.New("order must have at least one item")

// listenerTimeout bounds each listener call and each compensating delete.
const listenerTimeout = 5 * time.Second

// Manager keeps the in-memory order list in step with the Store. The list is
// only changed after the Store accepted the change. Mutations are serialized
// by writeMu; readers only take mu and never wait on the Store.
type Manager struct {
	writeMu   sync.Mutex
	mu        sync.RWMutex
	store     Store
	listeners []Listener
	logger    *zap.Logger
	orders    []Order // newest first, guarded by mu
	loading   atomic.Bool
	now       func() time.Time
}

func NewManager(store Store, logger *zap.Logger, listeners ...Listener) *Manager {
	return &Manager{
		store:     store,
		listeners: listeners,
		logger:    logger,
		now:       time.Now,
	}
}

// Loading reports whether a Store call is in flight.
func (m *Manager) Loading() bool {
	return m.loading.Load()
}

// Load replaces the in-memory list with the Store's contents.
func (m *Manager) Load(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.loading.Store(true)
	orders, err := m.store.ListOrders(ctx)
	m.loading.Store(false)
	if err != nil {
		m.logger.Error("Failed to fetch orders", zap.Error(err))
		return fmt.Errorf("failed to fetch orders: %w", err)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	m.mu.Lock()
	m.orders = orders
	m.mu.Unlock()

	m.logger.Info("Orders loaded", zap.Int("count", len(orders)))
	return nil
}

// CreateOrder persists a new order in the received stage and prepends it to
// the list.
func (m *Manager) CreateOrder(ctx context.Context, items []Item, customer CustomerInfo) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrNoItems
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return Order{}, fmt.Errorf("item %q has quantity %d", it.Name, it.Quantity)
		}
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	total := ItemsTotal(items)

	m.loading.Store(true)
	defer m.loading.Store(false)

	created, err := m.store.InsertOrder(ctx, customer, total, StatusReceived)
	if err != nil {
		m.logger.Error("Failed to create order", zap.Error(err))
		return Order{}, fmt.Errorf("failed to create order: %w", err)
	}
	if err := m.store.InsertOrderItems(ctx, created.ID, items); err != nil {
		m.logger.Error("Failed to create order items",
			zap.String("order_id", created.ID),
			zap.Error(err))
		m.discard(ctx, created.ID)
		return Order{}, fmt.Errorf("failed to create order items: %w", err)
	}

	o := *created
	o.Items = make([]Item, len(items))
	copy(o.Items, items)
	o.Total = total
	o.Status = StatusReceived

	m.mu.Lock()
	m.orders = append([]Order{o}, m.orders...)
	m.mu.Unlock()

	m.logger.Info("Order created",
		zap.String("order_id", o.ID),
		zap.Int64("total", o.Total),
		zap.Int("item_count", len(o.Items)))

	m.notify(ctx, o.ID, func(lctx context.Context, l Listener) error {
		return l.OrderCreated(lctx, o.clone())
	})

	return o.clone(), nil
}

// AdvanceStatus moves an order one stage forward. A delivered order is left
// untouched and advanced is false.
func (m *Manager) AdvanceStatus(ctx context.Context, orderID string) (o Order, advanced bool, err error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	// The list only changes under writeMu, so this snapshot stays valid.
	before, err := m.Get(orderID)
	if err != nil {
		return Order{}, false, err
	}

	current := before.Status
	next, ok := current.Next()
	if !ok {
		return before, false, nil
	}

	m.loading.Store(true)
	err = m.store.UpdateOrderStatus(ctx, orderID, next)
	m.loading.Store(false)
	if err != nil {
		m.logger.Error("Failed to update order status",
			zap.String("order_id", orderID),
			zap.String("status", next.String()),
			zap.Error(err))
		return before, false, fmt.Errorf("failed to update order status: %w", err)
	}

	m.mu.Lock()
	i := m.indexOf(orderID)
	m.orders[i].Status = next
	m.orders[i].UpdatedAt = m.now()
	updated := m.orders[i].clone()
	m.mu.Unlock()

	m.logger.Info("Order status updated",
		zap.String("order_id", orderID),
		zap.String("from", current.String()),
		zap.String("to", next.String()))

	m.notify(ctx, orderID, func(lctx context.Context, l Listener) error {
		return l.StatusChanged(lctx, updated.clone(), current)
	})

	return updated, true, nil
}

// notify fans an event out to the listeners. Each call gets its own deadline
// and survives cancellation of the request that caused the change.
func (m *Manager) notify(ctx context.Context, orderID string, fn func(context.Context, Listener) error) {
	base := context.WithoutCancel(ctx)
	for _, l := range m.listeners {
		lctx, cancel := context.WithTimeout(base, listenerTimeout)
		err := fn(lctx, l)
		cancel()
		if err != nil {
			m.logger.Warn("Order listener failed", zap.String("order_id", orderID), zap.Error(err))
		}
	}
}

// discard removes an order row whose items could not be written, so a later
// Load does not surface an order without items.
func (m *Manager) discard(ctx context.Context, orderID string) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listenerTimeout)
	defer cancel()
	if err := m.store.DeleteOrder(dctx, orderID); err != nil {
		m.logger.Error("Failed to discard incomplete order",
			zap.String("order_id", orderID),
			zap.Error(err))
	}
}

// Get returns a copy of one order.
func (m *Manager) Get(orderID string) (Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(orderID)
	if i < 0 {
		return Order{}, ErrNotFound
	}
	return m.orders[i].clone(), nil
}

// Orders returns a copy of every order, newest first.
func (m *Manager) Orders() []Order {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Order, len(m.orders))
	for i, o := range m.orders {
		out[i] = o.clone()
	}
	return out
}

// OrdersByStatus filters by a status name or FilterAll.
func (m *Manager) OrdersByStatus(filter string) ([]Order, error) {
	if filter == FilterAll {
		return m.Orders(), nil
	}
	status, err := ParseStatus(filter)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Order{}
	for _, o := range m.orders {
		if o.Status == status {
			out = append(out, o.clone())
		}
	}
	return out, nil
}

func (m *Manager) indexOf(orderID string) int {
	for i := range m.orders {
		if m.orders[i].ID == orderID {
			return i
		}
	}
	return -1
}
