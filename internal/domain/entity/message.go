package entity

import "time"

// Message belongs to exactly one conversation. The auto-increment ID doubles
// as the tie-breaker for ordering messages created in the same instant.
// IsRead flips to true once, when the other participant fetches the history.
type Message struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID uint      `json:"conversation_id" gorm:"index"`
	SenderID       uint      `json:"sender_id" gorm:"index"`
	Sender         *User     `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Content        string    `json:"content" gorm:"type:text"`
	CreatedAt      time.Time `json:"timestamp"`
	IsRead         bool      `json:"is_read" gorm:"default:false"`
}
