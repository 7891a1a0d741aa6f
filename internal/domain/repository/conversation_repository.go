package repository

import (
	"context"

	"weshop/internal/domain/entity"
)

type ConversationRepository interface {
	// GetOrCreateByOrder returns the conversation for orderID, creating it with
	// the given participants when absent. Safe under concurrent first calls:
	// at most one row exists per order. The returned bool is true on creation.
	GetOrCreateByOrder(ctx context.Context, orderID uint, participantIDs []uint) (*entity.Conversation, bool, error)

	// ListByParticipant returns the user's conversations, most recent activity
	// first, with participants and the latest message preloaded.
	ListByParticipant(ctx context.Context, userID uint) ([]*entity.Conversation, error)

	// GetByOrderForUser and GetByIDForUser scope the lookup to conversations
	// the user participates in; anything else reports NotFound so existence is
	// never confirmed to outsiders.
	GetByOrderForUser(ctx context.Context, orderID, userID uint) (*entity.Conversation, error)
	GetByIDForUser(ctx context.Context, id, userID uint) (*entity.Conversation, error)

	// GetByID is the unscoped lookup (participants preloaded) used where the
	// caller must distinguish a missing conversation from a membership denial.
	GetByID(ctx context.Context, id uint) (*entity.Conversation, error)

	// CreateMessage persists the message and bumps the conversation's
	// updated_at in the same transaction.
	CreateMessage(ctx context.Context, message *entity.Message) error

	// ListMessages returns the conversation's messages oldest first.
	ListMessages(ctx context.Context, conversationID uint) ([]*entity.Message, error)

	// MarkMessagesRead flips is_read on every unread message in the
	// conversation not authored by readerID, in a single bulk update.
	MarkMessagesRead(ctx context.Context, conversationID, readerID uint) error
}
