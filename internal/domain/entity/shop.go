package entity

import "time"

type Shop struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:200"`
	OwnerID     uint      `json:"owner_id" gorm:"uniqueIndex"`
	Owner       *User     `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
