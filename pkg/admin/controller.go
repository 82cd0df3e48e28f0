// Package admin drives the order dashboard: filtering by status, advancing
// orders through the lifecycle and notifying customers.
package admin

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/example/storefront/pkg/message"
	"github.com/example/storefront/pkg/order"
)

var ErrUnknownFilter = errors.New("unknown status filter")

// Dispatcher delivers notification links. Delivery is fire-and-forget.
type Dispatcher interface {
	Send(d Dispatch)
}

type Controller struct {
	manager     *order.Manager
	formatter   *message.Formatter
	dispatcher  Dispatcher
	logger      *zap.Logger
	deliveryFee int64
	topItems    int
}

func NewController(
	manager *order.Manager,
	formatter *message.Formatter,
	dispatcher Dispatcher,
	logger *zap.Logger,
	deliveryFee int64,
	topItems int,
) *Controller {
	return &Controller{
		manager:     manager,
		formatter:   formatter,
		dispatcher:  dispatcher,
		logger:      logger,
		deliveryFee: deliveryFee,
		topItems:    topItems,
	}
}

// Orders lists orders for a status name or "all". An empty filter means all.
func (c *Controller) Orders(filter string) ([]order.Order, error) {
	if filter == "" {
		filter = order.FilterAll
	}
	orders, err := c.manager.OrdersByStatus(filter)
	if errors.Is(err, order.ErrUnknownStatus) {
		return nil, ErrUnknownFilter
	}
	return orders, err
}

// Advance moves the order one stage forward. advanced is false for delivered
// orders.
func (c *Controller) Advance(ctx context.Context, orderID string) (order.Order, bool, error) {
	return c.manager.AdvanceStatus(ctx, orderID)
}

// Notify builds the status update for the order's current stage and hands it
// to the dispatcher. It returns the rendered message so the dashboard can open
// the link itself.
func (c *Controller) Notify(ctx context.Context, orderID string) (message.Message, error) {
	o, err := c.manager.Get(orderID)
	if err != nil {
		return message.Message{}, err
	}

	msg := c.formatter.StatusUpdate(o)
	phone := c.formatter.NormalizePhone(o.Customer.Phone)

	c.dispatcher.Send(Dispatch{
		OrderID: o.ID,
		Phone:   phone,
		Status:  o.Status.String(),
		URL:     msg.URL,
	})
	c.logger.Info("Customer notification queued",
		zap.String("order_id", o.ID),
		zap.String("status", o.Status.String()))

	return msg, nil
}

// Statistics reports over every known order.
func (c *Controller) Statistics() order.Statistics {
	return order.ComputeStatistics(c.manager.Orders(), c.deliveryFee, c.topItems)
}

// Reload refetches the order list from the Store.
func (c *Controller) Reload(ctx context.Context) error {
	return c.manager.Load(ctx)
}

// Loading reports whether a Store call is in flight.
func (c *Controller) Loading() bool {
	return c.manager.Loading()
}

// Order returns one order by id.
func (c *Controller) Order(orderID string) (order.Order, error) {
	return c.manager.Get(orderID)
}

func (c *Controller) OrderCount() int {
	return len(c.manager.Orders())
}
