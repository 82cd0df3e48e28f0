// Package messaging publishes order lifecycle events to a broker.
package messaging

import (
	"context"
	"time"

	"github.com/example/storefront/pkg/order"
)

// Publisher sends one event to a topic. key selects the partition.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
	Close() error
}

type OrderCreatedEvent struct {
	OrderID      string       `json:"order_id"`
	CustomerName string       `json:"customer_name"`
	City         string       `json:"city"`
	Items        []order.Item `json:"items"`
	Total        int64        `json:"total"`
	Status       string       `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}

type StatusChangedEvent struct {
	OrderID   string    `json:"order_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

// OrderEvents turns order manager notifications into broker events.
type OrderEvents struct {
	publisher    Publisher
	createdTopic string
	statusTopic  string
}

func NewOrderEvents(publisher Publisher, createdTopic, statusTopic string) *OrderEvents {
	return &OrderEvents{
		publisher:    publisher,
		createdTopic: createdTopic,
		statusTopic:  statusTopic,
	}
}

func (e *OrderEvents) OrderCreated(ctx context.Context, o order.Order) error {
	return e.publisher.PublishEvent(ctx, e.createdTopic, o.ID, OrderCreatedEvent{
		OrderID:      o.ID,
		CustomerName: o.Customer.Name,
		City:         o.Customer.City,
		Items:        o.Items,
		Total:        o.Total,
		Status:       o.Status.String(),
		CreatedAt:    o.CreatedAt,
	})
}

func (e *OrderEvents) StatusChanged(ctx context.Context, o order.Order, from order.Status) error {
	return e.publisher.PublishEvent(ctx, e.statusTopic, o.ID, StatusChangedEvent{
		OrderID:   o.ID,
		From:      from.String(),
		To:        o.Status.String(),
		ChangedAt: o.UpdatedAt,
	})
}
