package message

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/pkg/cart"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/checkout"
	"github.com/example/storefront/pkg/order"
)

func newFormatter() *Formatter {
	return NewFormatter("Spice Kitchen", "+91 98765 43210", "Davangere", "91")
}

func sampleLines() []cart.Line {
	c := cart.New()
	c.Add(catalog.Product{ID: "garam-masala", Name: "Garam Masala", Price: 150})
	c.Add(catalog.Product{ID: "garam-masala", Name: "Garam Masala", Price: 150})
	c.Add(catalog.Product{ID: "rasam-powder", Name: "Rasam Powder", Price: 110})
	return c.Lines()
}

func sampleDetails() checkout.CustomerDetails {
	return checkout.CustomerDetails{
		Name:        "Asha Rao",
		CountryCode: "+91",
		Phone:       "9876543210",
		Address:     "12 Temple Road",
		Landmark:    "Opp. bus stand",
		City:        "Bangalore",
		Pincode:     "560001",
	}
}

func TestOrder_Text(t *testing.T) {
	msg := newFormatter().Order(sampleLines(), sampleDetails(), checkout.CourierDelivery)

	want := "*New order for Spice Kitchen*\n\n" +
		"*Items:*\n" +
		"1. Garam Masala — 2 units (1000 g)\n" +
		"2. Rasam Powder — 1 unit (500 g)\n" +
		"\n*Total:* ₹410\n" +
		"*Total weight:* 1500 g\n\n" +
		"*Name:* Asha Rao\n" +
		"*Phone:* +91 9876543210\n\n" +
		"*Address:*\n" +
		"12 Temple Road\n" +
		"Landmark: Opp. bus stand\n" +
		"Bangalore - 560001\n\n" +
		"*Courier delivery:* your order will be shipped by courier. Delivery charges are confirmed on WhatsApp."
	assert.Equal(t, want, msg.Text)
}

func TestOrder_LocalCollectionWithoutOptionalFields(t *testing.T) {
	d := sampleDetails()
	d.Landmark = ""
	d.Pincode = ""
	d.City = "Davangere Town"

	msg := newFormatter().Order(sampleLines(), d, checkout.LocalCollection)

	assert.NotContains(t, msg.Text, "Landmark:")
	assert.Contains(t, msg.Text, "12 Temple Road\nDavangere Town\n\n")
	assert.True(t, strings.HasSuffix(msg.Text, "please collect your order from our Davangere store. We will message you when it is ready."))
}

func TestOrder_Deterministic(t *testing.T) {
	f := newFormatter()
	a := f.Order(sampleLines(), sampleDetails(), checkout.CourierDelivery)
	b := f.Order(sampleLines(), sampleDetails(), checkout.CourierDelivery)

	assert.Equal(t, a, b)
}

func TestOrder_URLRoundTrips(t *testing.T) {
	msg := newFormatter().Order(sampleLines(), sampleDetails(), checkout.CourierDelivery)

	require.True(t, strings.HasPrefix(msg.URL, "https://wa.me/919876543210?text="))
	assert.NotContains(t, msg.URL, "+")
	assert.NotContains(t, msg.URL, " ")

	u, err := url.Parse(msg.URL)
	require.NoError(t, err)
	assert.Equal(t, msg.Text, u.Query().Get("text"))
}

func TestDeepLink_EncodesReservedCharacters(t *testing.T) {
	link := DeepLink("91 12345", "a & b = c?")

	assert.Equal(t, "https://wa.me/9112345?text=a%20%26%20b%20%3D%20c%3F", link)
}

func TestStatusUpdate(t *testing.T) {
	o := order.Order{
		ID:        "ord-7",
		Items:     []order.Item{{Name: "Garam Masala", Price: 150, Quantity: 2}},
		Customer:  order.CustomerInfo{Name: "Asha", Phone: "9876543210"},
		Total:     300,
		Status:    order.StatusOutForDelivery,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	msg := newFormatter().StatusUpdate(o)

	assert.Contains(t, msg.Text, "Hello Asha,")
	assert.Contains(t, msg.Text, "Your order is out for delivery.")
	assert.Contains(t, msg.Text, "- Garam Masala × 2\n")
	assert.Contains(t, msg.Text, "*Total:* ₹300")
	assert.True(t, strings.HasPrefix(msg.URL, "https://wa.me/919876543210?text="))
}

func TestNormalizePhone(t *testing.T) {
	f := newFormatter()

	cases := map[string]string{
		"9876543210":     "919876543210",
		"919876543210":   "919876543210",
		"+91 9876543210": "919876543210",
		"+65 81234567":   "6581234567",
		"(987) 654-3210": "919876543210",
	}
	for in, want := range cases {
		assert.Equal(t, want, f.NormalizePhone(in), in)
	}
}
