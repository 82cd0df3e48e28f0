package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/storefront/pkg/order"
)

// MemoryOrderStore keeps orders in process memory. It backs the "memory"
// store driver used for local runs and tests.
type MemoryOrderStore struct {
	mu     sync.Mutex
	orders map[string]*order.Order
	now    func() time.Time
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{
		orders: make(map[string]*order.Order),
		now:    time.Now,
	}
}

func (s *MemoryOrderStore) InsertOrder(_ context.Context, customer order.CustomerInfo, total int64, status order.Status) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	o := &order.Order{
		ID:        uuid.NewString(),
		Customer:  customer,
		Total:     total,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.orders[o.ID] = o

	created := *o
	return &created, nil
}

func (s *MemoryOrderStore) InsertOrderItems(_ context.Context, orderID string, items []order.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("insert items for %s: %w", orderID, order.ErrNotFound)
	}
	o.Items = append(o.Items, items...)
	return nil
}

func (s *MemoryOrderStore) ListOrders(context.Context) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		c := *o
		c.Items = append([]order.Item(nil), o.Items...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryOrderStore) UpdateOrderStatus(_ context.Context, orderID string, status order.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("update status of %s: %w", orderID, order.ErrNotFound)
	}
	o.Status = status
	o.UpdatedAt = s.now()
	return nil
}

// DeleteOrder is a no-op for unknown ids.
func (s *MemoryOrderStore) DeleteOrder(_ context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.orders, orderID)
	return nil
}

func (s *MemoryOrderStore) Ping(context.Context) error {
	return nil
}
