package storefront

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/storefront/pkg/cart"
	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/message"
	"github.com/example/storefront/pkg/order"
)

// Receipt is returned to the customer after a successful submission.
type Receipt struct {
	Message  message.Message `json:"message"`
	Order    order.Order     `json:"order"`
	Delivery string          `json:"delivery"`
}

// Checkout turns a validated wizard submission into a message and an order.
type Checkout struct {
	manager   *order.Manager
	formatter *message.Formatter
	logger    *zap.Logger
}

func NewCheckout(manager *order.Manager, formatter *message.Formatter, logger *zap.Logger) *Checkout {
	return &Checkout{manager: manager, formatter: formatter, logger: logger}
}

// Submit validates the session's wizard, renders the order message and
// persists the order. The cart and wizard are reset only when the order was
// stored; on any error the session is left as it was so the customer can
// retry.
func (c *Checkout) Submit(ctx context.Context, s *Session) (*Receipt, error) {
	sub, err := s.Wizard.Submit(s.Cart)
	if err != nil {
		return nil, err
	}

	msg := c.formatter.Order(sub.Lines, sub.Customer, sub.Delivery)

	created, err := c.manager.CreateOrder(ctx, ItemsFromLines(sub.Lines), CustomerInfo(sub.Customer))
	if err != nil {
		return nil, err
	}

	s.Cart.Clear()
	s.Wizard.Reset()

	c.logger.Info("Checkout submitted",
		zap.String("session_id", s.ID),
		zap.String("order_id", created.ID),
		zap.String("delivery", sub.Delivery.String()))

	return &Receipt{Message: msg, Order: created, Delivery: sub.Delivery.String()}, nil
}

// ItemsFromLines snapshots cart lines as order items.
func ItemsFromLines(lines []cart.Line) []order.Item {
	items := make([]order.Item, len(lines))
	for i, l := range lines {
		items[i] = order.Item{
			Name:     l.Product.Name,
			Price:    l.Product.Price,
			Quantity: l.Quantity,
		}
	}
	return items
}

// CustomerInfo snapshots checkout details for storage.
func CustomerInfo(d checkout.CustomerDetails) order.CustomerInfo {
	return order.CustomerInfo{
		Name:     d.Name,
		Phone:    d.FullPhone(),
		Address:  d.Address,
		Landmark: d.Landmark,
		City:     d.City,
		Pincode:  d.Pincode,
	}
}
