package orders

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is a placed customer order. ProductIDs keeps the order in which
// products were resolved.
type Order struct {
	ID          int64
	UserID      int64
	ProductIDs  []int64
	TotalAmount float64
	Status      OrderStatus
	CreatedAt   time.Time
}
