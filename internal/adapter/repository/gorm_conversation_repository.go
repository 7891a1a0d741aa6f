package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"weshop/internal/domain/entity"
	"weshop/internal/domain/repository"
	"weshop/pkg/errors"
)

type gormConversationRepository struct {
	db *gorm.DB
}

func NewGormConversationRepository(db *gorm.DB) repository.ConversationRepository {
	return &gormConversationRepository{db: db}
}

func (r *gormConversationRepository) GetOrCreateByOrder(ctx context.Context, orderID uint, participantIDs []uint) (*entity.Conversation, bool, error) {
	conversation := &entity.Conversation{OrderID: orderID}

	// Insert-or-skip against the unique index on order_id. Losing the race is
	// not an error: RowsAffected == 0 just means another caller won and we
	// fetch their row.
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).
		Create(conversation)
	if result.Error != nil {
		return nil, false, errors.Internal("Failed to create conversation", result.Error)
	}
	created := result.RowsAffected > 0

	if err := r.attachParticipants(ctx, orderID, participantIDs); err != nil {
		return nil, created, err
	}

	conversation, err := r.getByOrder(ctx, orderID)
	if err != nil {
		return nil, created, err
	}

	return conversation, created, nil
}

// attachParticipants enrolls the participant set idempotently: join rows are
// inserted with on-conflict-do-nothing, so re-adding the same pair is a no-op.
func (r *gormConversationRepository) attachParticipants(ctx context.Context, orderID uint, participantIDs []uint) error {
	var conversation entity.Conversation
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&conversation).Error; err != nil {
		return errors.Internal("Failed to load conversation for enrollment", err)
	}

	users := make([]entity.User, 0, len(participantIDs))
	for _, id := range participantIDs {
		users = append(users, entity.User{ID: id})
	}

	if err := r.db.WithContext(ctx).Model(&conversation).Association("Participants").Append(users); err != nil {
		return errors.Internal("Failed to enroll participants", err)
	}
	return nil
}

func (r *gormConversationRepository) getByOrder(ctx context.Context, orderID uint) (*entity.Conversation, error) {
	var conversation entity.Conversation
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("order_id = ?", orderID).
		First(&conversation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}
	return &conversation, nil
}

func (r *gormConversationRepository) ListByParticipant(ctx context.Context, userID uint) ([]*entity.Conversation, error) {
	var conversations []*entity.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", userID).
		Preload("Participants").
		Order("conversations.updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, errors.Internal("Failed to list conversations", err)
	}

	if err := r.loadLatestMessages(ctx, conversations); err != nil {
		return nil, err
	}

	return conversations, nil
}

// loadLatestMessages fills each conversation's Messages with just its newest
// message, for list previews. One DISTINCT ON query instead of N round trips.
func (r *gormConversationRepository) loadLatestMessages(ctx context.Context, conversations []*entity.Conversation) error {
	if len(conversations) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(conversations))
	for _, c := range conversations {
		ids = append(ids, c.ID)
	}

	var latest []entity.Message
	err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (conversation_id) *
		     FROM messages
		     WHERE conversation_id IN ?
		     ORDER BY conversation_id, created_at DESC, id DESC`, ids).
		Scan(&latest).Error
	if err != nil {
		return errors.Internal("Failed to load message previews", err)
	}

	byConversation := make(map[uint]entity.Message, len(latest))
	for _, m := range latest {
		byConversation[m.ConversationID] = m
	}
	for _, c := range conversations {
		if m, ok := byConversation[c.ID]; ok {
			c.Messages = []entity.Message{m}
		}
	}
	return nil
}

func (r *gormConversationRepository) GetByOrderForUser(ctx context.Context, orderID, userID uint) (*entity.Conversation, error) {
	var conversation entity.Conversation
	err := r.scopeToParticipant(ctx, userID).
		Preload("Participants").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Messages.Sender").
		Where("conversations.order_id = ?", orderID).
		First(&conversation).Error
	if err != nil {
		// Non-participants get the same answer as a missing row.
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}
	return &conversation, nil
}

func (r *gormConversationRepository) GetByIDForUser(ctx context.Context, id, userID uint) (*entity.Conversation, error) {
	var conversation entity.Conversation
	err := r.scopeToParticipant(ctx, userID).
		Preload("Participants").
		Where("conversations.id = ?", id).
		First(&conversation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}
	return &conversation, nil
}

func (r *gormConversationRepository) GetByID(ctx context.Context, id uint) (*entity.Conversation, error) {
	var conversation entity.Conversation
	err := r.db.WithContext(ctx).
		Preload("Participants").
		First(&conversation, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}
	return &conversation, nil
}

func (r *gormConversationRepository) scopeToParticipant(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entity.Conversation{}).
		Where("conversations.id IN (SELECT conversation_id FROM conversation_participants WHERE user_id = ?)", userID)
}

func (r *gormConversationRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&entity.Conversation{}).
			Where("id = ?", message.ConversationID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}
	return nil
}

func (r *gormConversationRepository) ListMessages(ctx context.Context, conversationID uint) ([]*entity.Message, error) {
	var messages []*entity.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, errors.Internal("Failed to list messages", err)
	}
	return messages, nil
}

func (r *gormConversationRepository) MarkMessagesRead(ctx context.Context, conversationID, readerID uint) error {
	err := r.db.WithContext(ctx).
		Model(&entity.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Update("is_read", true).Error
	if err != nil {
		return errors.Internal("Failed to mark messages as read", err)
	}
	return nil
}
