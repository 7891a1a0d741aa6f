package entity

import "time"

type Product struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:200"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	ShopID      uint      `json:"shop_id" gorm:"index"`
	Shop        *Shop     `json:"shop,omitempty" gorm:"foreignKey:ShopID"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
