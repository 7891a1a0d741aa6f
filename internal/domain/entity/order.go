package entity

import "time"

// Order status values follow the marketplace lifecycle. The chat service
// reads orders but never transitions them.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	BuyerID    uint      `json:"buyer_id" gorm:"index"`
	Buyer      *User     `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	ProductID  uint      `json:"product_id" gorm:"index"`
	Product    *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity   uint      `json:"quantity"`
	TotalPrice float64   `json:"total_price"`
	Status     string    `json:"status" gorm:"size:20;default:pending"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
