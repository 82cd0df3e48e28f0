package order

import "context"

// Store persists orders and their items.
type Store interface {
	// InsertOrder creates the order row and returns it with the store-assigned
	// id and timestamps. Items are not attached.
	InsertOrder(ctx context.Context, customer CustomerInfo, total int64, status Status) (*Order, error)
	InsertOrderItems(ctx context.Context, orderID string, items []Item) error
	// ListOrders returns every order joined with its items, newest first.
	ListOrders(ctx context.Context) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status Status) error
	// DeleteOrder removes an order and any items attached to it.
	DeleteOrder(ctx context.Context, orderID string) error
	Ping(ctx context.Context) error
}

// Listener is told about changes after they have been persisted.
type Listener interface {
	OrderCreated(ctx context.Context, o Order) error
	StatusChanged(ctx context.Context, o Order, from Status) error
}
