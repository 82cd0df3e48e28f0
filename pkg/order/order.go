package order

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrUnknownStatus = errors.New("unknown order status")
)

type Status string

const (
	StatusReceived       Status = "received"
	StatusAccepted       Status = "accepted"
	StatusPreparing      Status = "preparing"
	StatusReady          Status = "ready"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
)

// Statuses lists every stage in lifecycle order.
var Statuses = []Status{
	StatusReceived,
	StatusAccepted,
	StatusPreparing,
	StatusReady,
	StatusOutForDelivery,
	StatusDelivered,
}

// nextStatus is the forward-only transition table. Delivered has no entry.
var nextStatus = map[Status]Status{
	StatusReceived:       StatusAccepted,
	StatusAccepted:       StatusPreparing,
	StatusPreparing:      StatusReady,
	StatusReady:          StatusOutForDelivery,
	StatusOutForDelivery: StatusDelivered,
}

// Next returns the stage after s, or false when s is terminal or unknown.
func (s Status) Next() (Status, bool) {
	n, ok := nextStatus[s]
	return n, ok
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a stored or requested value into a Status.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", ErrUnknownStatus
	}
	return s, nil
}

// Item is a snapshot of a product line taken when the order was created.
type Item struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

func (i Item) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// CustomerInfo is the customer snapshot stored with an order. Phone includes
// the dialing code, e.g. "+91 9876543210".
type CustomerInfo struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Landmark string `json:"landmark,omitempty"`
	City     string `json:"city"`
	Pincode  string `json:"pincode,omitempty"`
}

// Order is a persisted order. Total excludes any delivery surcharge and is
// fixed at creation.
type Order struct {
	ID        string       `json:"id"`
	Items     []Item       `json:"items"`
	Customer  CustomerInfo `json:"customer"`
	Total     int64        `json:"total"`
	Status    Status       `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ItemsTotal sums price times quantity over items.
func ItemsTotal(items []Item) int64 {
	var total int64
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}

func (o Order) clone() Order {
	c := o
	c.Items = make([]Item, len(o.Items))
	copy(c.Items, o.Items)
	return c
}
