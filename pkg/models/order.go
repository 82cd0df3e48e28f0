package models

import (
	"time"

	"github.com/example/storefront/pkg/order"
)

type Order struct {
	ID        string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string      `gorm:"type:varchar(100);not null" json:"customer_name"`
	Phone     string      `gorm:"type:varchar(20);not null" json:"customer_phone"`
	Address   string      `gorm:"type:text;not null" json:"customer_address"`
	Landmark  string      `gorm:"type:varchar(255)" json:"customer_landmark"`
	City      string      `gorm:"type:varchar(100);not null" json:"customer_city"`
	Pincode   string      `gorm:"type:varchar(12)" json:"customer_pincode"`
	Total     int64       `gorm:"not null" json:"total_amount"`
	Status    string      `gorm:"type:varchar(20);default:'received';index" json:"status"`
	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderID     string `gorm:"type:varchar(36);not null;index" json:"order_id"`
	ProductName string `gorm:"type:varchar(100);not null" json:"product_name"`
	Price       int64  `gorm:"not null" json:"price"`
	Quantity    int    `gorm:"not null" json:"quantity"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrder maps customer details onto a row. ID and timestamps are filled in
// by the caller or by gorm.
func NewOrder(customer order.CustomerInfo, total int64, status order.Status) *Order {
	return &Order{
		Name:     customer.Name,
		Phone:    customer.Phone,
		Address:  customer.Address,
		Landmark: customer.Landmark,
		City:     customer.City,
		Pincode:  customer.Pincode,
		Total:    total,
		Status:   status.String(),
	}
}

func NewOrderItems(orderID string, items []order.Item) []OrderItem {
	rows := make([]OrderItem, len(items))
	for i, it := range items {
		rows[i] = OrderItem{
			OrderID:     orderID,
			ProductName: it.Name,
			Price:       it.Price,
			Quantity:    it.Quantity,
		}
	}
	return rows
}

// Domain converts the row back. Unknown status values fall back to received
// so a hand-edited row never hides an order from the dashboard.
func (o *Order) Domain() order.Order {
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		status = order.StatusReceived
	}
	items := make([]order.Item, len(o.Items))
	for i, it := range o.Items {
		items[i] = order.Item{Name: it.ProductName, Price: it.Price, Quantity: it.Quantity}
	}
	return order.Order{
		ID:    o.ID,
		Items: items,
		Customer: order.CustomerInfo{
			Name:     o.Name,
			Phone:    o.Phone,
			Address:  o.Address,
			Landmark: o.Landmark,
			City:     o.City,
			Pincode:  o.Pincode,
		},
		Total:     o.Total,
		Status:    status,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
