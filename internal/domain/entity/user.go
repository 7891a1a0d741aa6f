package entity

import "time"

// User is the marketplace identity record. The chat service never creates or
// authenticates users; it only reads them to resolve conversation participants.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:150;uniqueIndex"`
	Email     string    `json:"email,omitempty" gorm:"size:254"`
	Role      string    `json:"role" gorm:"size:10;default:buyer"` // "buyer", "seller", "admin"
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
