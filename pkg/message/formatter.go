// Package message renders order summaries and status updates as shareable
// text plus a WhatsApp deep link. Everything here is pure: the same input
// always yields the same bytes.
package message

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/example/storefront/pkg/cart"
	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/order"
)

const deepLinkBase = "https://wa.me/"

// Message is the rendered text and the link that opens it in WhatsApp.
type Message struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Formatter holds the shop settings that go into every message.
type Formatter struct {
	shopName   string
	recipient  string
	localTown  string
	dialPrefix string
}

func NewFormatter(shopName, recipient, localTown, dialPrefix string) *Formatter {
	return &Formatter{
		shopName:   shopName,
		recipient:  digitsOnly(recipient),
		localTown:  localTown,
		dialPrefix: digitsOnly(dialPrefix),
	}
}

// DeepLink percent-encodes text for a wa.me link to recipient. Spaces become
// %20 rather than '+'.
func DeepLink(recipient, text string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return deepLinkBase + digitsOnly(recipient) + "?text=" + encoded
}

// Order renders a checkout submission addressed to the shop.
func (f *Formatter) Order(lines []cart.Line, d checkout.CustomerDetails, delivery checkout.Delivery) Message {
	var b strings.Builder

	fmt.Fprintf(&b, "*New order for %s*\n\n", f.shopName)
	b.WriteString("*Items:*\n")

	var total int64
	var grams int
	for i, l := range lines {
		fmt.Fprintf(&b, "%d. %s — %d %s (%d g)\n", i+1, l.Product.Name, l.Quantity, units(l.Quantity), l.WeightGrams())
		total += l.Subtotal()
		grams += l.WeightGrams()
	}
	fmt.Fprintf(&b, "\n*Total:* ₹%d\n", total)
	fmt.Fprintf(&b, "*Total weight:* %d g\n\n", grams)

	fmt.Fprintf(&b, "*Name:* %s\n", d.Name)
	fmt.Fprintf(&b, "*Phone:* %s\n\n", d.FullPhone())

	b.WriteString("*Address:*\n")
	b.WriteString(d.Address + "\n")
	if d.Landmark != "" {
		fmt.Fprintf(&b, "Landmark: %s\n", d.Landmark)
	}
	if d.Pincode != "" {
		fmt.Fprintf(&b, "%s - %s\n", d.City, d.Pincode)
	} else {
		b.WriteString(d.City + "\n")
	}
	b.WriteString("\n")
	b.WriteString(f.deliveryNotice(delivery))

	text := b.String()
	return Message{Text: text, URL: DeepLink(f.recipient, text)}
}

func (f *Formatter) deliveryNotice(d checkout.Delivery) string {
	if d == checkout.LocalCollection {
		return fmt.Sprintf("*Local collection:* please collect your order from our %s store. We will message you when it is ready.", f.localTown)
	}
	return "*Courier delivery:* your order will be shipped by courier. Delivery charges are confirmed on WhatsApp."
}

// StatusUpdate renders a message to the customer about an order's current
// status, addressed to the customer's phone.
func (f *Formatter) StatusUpdate(o order.Order) Message {
	var b strings.Builder

	fmt.Fprintf(&b, "Hello %s,\n\n", o.Customer.Name)
	fmt.Fprintf(&b, "%s\n\n", statusLine(o.Status))
	fmt.Fprintf(&b, "*Order:* %s\n", o.ID)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %s × %d\n", it.Name, it.Quantity)
	}
	fmt.Fprintf(&b, "*Total:* ₹%d\n\n", o.Total)
	fmt.Fprintf(&b, "Thank you for shopping with %s.", f.shopName)

	text := b.String()
	return Message{Text: text, URL: DeepLink(f.NormalizePhone(o.Customer.Phone), text)}
}

// NormalizePhone reduces a stored phone number to the digits of an
// international number. Numbers stored with a leading '+' already carry their
// dialing code; anything else gets the shop's prefix unless it starts with it.
func (f *Formatter) NormalizePhone(phone string) string {
	digits := digitsOnly(phone)
	if strings.HasPrefix(strings.TrimSpace(phone), "+") {
		return digits
	}
	if f.dialPrefix != "" && !strings.HasPrefix(digits, f.dialPrefix) {
		return f.dialPrefix + digits
	}
	return digits
}

func statusLine(s order.Status) string {
	switch s {
	case order.StatusReceived:
		return "We have received your order."
	case order.StatusAccepted:
		return "Your order has been accepted."
	case order.StatusPreparing:
		return "Your order is being prepared."
	case order.StatusReady:
		return "Your order is packed and ready."
	case order.StatusOutForDelivery:
		return "Your order is out for delivery."
	case order.StatusDelivered:
		return "Your order has been delivered. Enjoy!"
	default:
		return "Your order status has changed."
	}
}

func units(n int) string {
	if n == 1 {
		return "unit"
	}
	return "units"
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
