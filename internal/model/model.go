package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Password  string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductSize is one size variant of a product with its own stock count.
type ProductSize struct {
	Label string `json:"size"`
	Stock int    `json:"stock"`
}

type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Image       string
	Sizes       []ProductSize
	// Stock is the aggregate across all sizes. It is derived from Sizes on
	// every administrative write and decremented by checkout.
	Stock     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalSizeStock sums the per-size stock counts. The persisted aggregate
// stock must equal this whenever sizes are written.
func TotalSizeStock(sizes []ProductSize) int {
	total := 0
	for _, s := range sizes {
		total += s.Stock
	}
	return total
}

type Cart struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem is a cart line with the referenced product's fields resolved at
// read time. Product data is referenced, not copied.
type CartItem struct {
	ProductID       uuid.UUID
	Quantity        int
	ProductName     string
	ProductPrice    decimal.Decimal
	ProductCategory string
	ProductImage    string
	ProductStock    int
}

type Order struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Name          string
	Address       string
	City          string
	PostalCode    string
	Country       string
	PaymentMethod string
	Items         []OrderItem
	TotalPrice    decimal.Decimal
	ShippingFee   decimal.Decimal
	Status        OrderStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Resolved only on privileged listings.
	UserName  string
	UserEmail string
}

// OrderItem is a frozen copy of (product, quantity) with the unit price at
// order time. ProductName is resolved at read time for display.
type OrderItem struct {
	ProductID   uuid.UUID
	Quantity    int
	Price       decimal.Decimal
	ProductName string
}

type DailyRevenue struct {
	Date   string
	Amount decimal.Decimal
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// ParseOrderStatus reports whether s is one of the five recognized values.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// Terminal reports whether no further transition is allowed out of s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

var statusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

// CanTransition reports whether the fulfillment lifecycle permits moving
// from s to the given status. Forward moves are allowed (skipping stages
// included), Cancelled is reachable from any non-terminal state, and
// terminal states permit nothing.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if s.Terminal() || s == to {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	return statusRank[to] > statusRank[s]
}

// OrderPlacedMessage is the payload published after a successful checkout.
type OrderPlacedMessage struct {
	OrderID uuid.UUID `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
}
