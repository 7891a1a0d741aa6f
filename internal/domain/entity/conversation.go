package entity

import "time"

// Conversation is the single chat thread bound to one order. The unique index
// on OrderID is what makes concurrent start-chat calls converge on one row.
// Participants are fixed at creation to the order's buyer and shop owner.
type Conversation struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	OrderID      uint      `json:"order_id" gorm:"uniqueIndex"`
	Order        *Order    `json:"-" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Participants []User    `json:"participants" gorm:"many2many:conversation_participants"`
	Messages     []Message `json:"messages,omitempty" gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"` // bumped on every appended message
}

// HasParticipant reports whether the user belongs to this conversation.
func (c *Conversation) HasParticipant(userID uint) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}
