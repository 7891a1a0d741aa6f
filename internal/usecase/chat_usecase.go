package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"weshop/internal/domain/entity"
	"weshop/internal/domain/repository"
	"weshop/internal/domain/service"
	"weshop/internal/infrastructure/ratelimit"
	"weshop/pkg/errors"
	"weshop/pkg/logger"
)

// Broadcaster pushes an already-serialized message to every live connection
// on a conversation. Implemented by the websocket Manager; injected so both
// the HTTP post path and the websocket path fan out identically.
type Broadcaster interface {
	BroadcastToConversation(conversationID uint, payload []byte)
}

type ChatUseCase struct {
	conversationRepo repository.ConversationRepository
	orderRepo        repository.OrderRepository
	broadcaster      Broadcaster
	rateLimiter      *ratelimit.RateLimiter
}

func NewChatUseCase(
	conversationRepo repository.ConversationRepository,
	orderRepo repository.OrderRepository,
	broadcaster Broadcaster,
) *ChatUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ChatUseCase{
		conversationRepo: conversationRepo,
		orderRepo:        orderRepo,
		broadcaster:      broadcaster,
		rateLimiter:      rateLimiter,
	}
}

type ParticipantResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type ConversationResponse struct {
	ID                 uint                  `json:"id"`
	OrderID            uint                  `json:"order_id"`
	Participants       []ParticipantResponse `json:"participants"`
	Messages           []*entity.Message     `json:"messages,omitempty"`
	LastMessagePreview string                `json:"last_message_preview,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

const previewLength = 80

// StartConversation opens (or returns) the single conversation for an order.
// Only the order's buyer or the selling shop's owner may call it; repeated
// calls are idempotent and report created=false.
func (uc *ChatUseCase) StartConversation(ctx context.Context, userID, orderID uint) (*ConversationResponse, bool, error) {
	if allowed, waitTime := uc.rateLimiter.Allow(userID, ratelimit.ActionStartChat); !allowed {
		return nil, false, errors.TooManyRequests("Rate limit exceeded. Please wait before starting another conversation", waitTime)
	}

	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}

	if allowed, reason := service.CanStartConversation(userID, order); !allowed {
		logger.Warn("StartConversation denied: user=%d order=%d: %s", userID, orderID, reason)
		return nil, false, errors.Forbidden("You don't have permission to start a conversation for this order", nil)
	}

	buyerID, sellerID, _ := service.ResolveOrderParticipants(order)

	conversation, created, err := uc.conversationRepo.GetOrCreateByOrder(ctx, orderID, []uint{buyerID, sellerID})
	if err != nil {
		return nil, false, err
	}

	return toConversationResponse(conversation, false), created, nil
}

// ListConversations returns the caller's conversations, most recent activity
// first, each with a preview of its latest message.
func (uc *ChatUseCase) ListConversations(ctx context.Context, userID uint) ([]*ConversationResponse, error) {
	conversations, err := uc.conversationRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		responses = append(responses, toConversationResponse(c, false))
	}
	return responses, nil
}

// GetConversationByOrder returns the order's conversation with full history.
// Non-participants get NotFound, never Forbidden, so they cannot confirm the
// conversation exists.
func (uc *ChatUseCase) GetConversationByOrder(ctx context.Context, userID, orderID uint) (*ConversationResponse, error) {
	conversation, err := uc.conversationRepo.GetByOrderForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	return toConversationResponse(conversation, true), nil
}

// GetMessages returns the conversation's messages oldest first and, as a side
// effect, marks every message not authored by the caller as read. Marking is
// idempotent; the caller's own messages are never touched.
func (uc *ChatUseCase) GetMessages(ctx context.Context, userID, conversationID uint) ([]*entity.Message, error) {
	if _, err := uc.conversationRepo.GetByIDForUser(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	messages, err := uc.conversationRepo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if err := uc.conversationRepo.MarkMessagesRead(ctx, conversationID, userID); err != nil {
		// The read itself succeeded; surface the flag failure in logs only.
		logger.Error("Failed to mark conversation %d read for user %d: %v", conversationID, userID, err)
	}

	return messages, nil
}

// PostMessage validates, persists and broadcasts a message, returning the
// stored row. Used by the HTTP surface.
func (uc *ChatUseCase) PostMessage(ctx context.Context, senderID, conversationID uint, content string) (*entity.Message, error) {
	if allowed, waitTime := uc.rateLimiter.Allow(senderID, ratelimit.ActionSendMessage); !allowed {
		return nil, errors.TooManyRequests("Rate limit exceeded. Please slow down", waitTime)
	}

	if strings.TrimSpace(content) == "" {
		return nil, errors.BadRequest("Message content cannot be empty", nil)
	}

	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if allowed, reason := service.CanAccessConversation(senderID, conversation); !allowed {
		logger.Warn("PostMessage denied: user=%d conversation=%d: %s", senderID, conversationID, reason)
		return nil, errors.Forbidden("You are not a participant in this conversation", nil)
	}

	message := &entity.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := uc.conversationRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	uc.broadcast(message)

	return message, nil
}

// SendMessage is the websocket-facing entry point: same pipeline as
// PostMessage, the persisted row travels back to the sender via broadcast.
func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID, conversationID uint, content string) error {
	_, err := uc.PostMessage(ctx, senderID, conversationID, content)
	return err
}

// broadcast serializes once and fans out synchronously, immediately after
// persistence, so every connection observes messages in persisted order.
func (uc *ChatUseCase) broadcast(message *entity.Message) {
	payload, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to serialize message %d for broadcast: %v", message.ID, err)
		return
	}
	uc.broadcaster.BroadcastToConversation(message.ConversationID, payload)
}

// AuthorizeConnect gates a live-channel connect: the conversation must exist
// and the user must be a participant.
func (uc *ChatUseCase) AuthorizeConnect(ctx context.Context, userID, conversationID uint) error {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if allowed, reason := service.CanAccessConversation(userID, conversation); !allowed {
		logger.Warn("WebSocket connect denied: user=%d conversation=%d: %s", userID, conversationID, reason)
		return errors.Forbidden("You are not a participant in this conversation", nil)
	}
	return nil
}

func toConversationResponse(c *entity.Conversation, includeMessages bool) *ConversationResponse {
	resp := &ConversationResponse{
		ID:        c.ID,
		OrderID:   c.OrderID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}

	resp.Participants = make([]ParticipantResponse, 0, len(c.Participants))
	for _, p := range c.Participants {
		resp.Participants = append(resp.Participants, ParticipantResponse{ID: p.ID, Username: p.Username})
	}

	if includeMessages {
		resp.Messages = make([]*entity.Message, 0, len(c.Messages))
		for i := range c.Messages {
			resp.Messages = append(resp.Messages, &c.Messages[i])
		}
	}

	if len(c.Messages) > 0 && !includeMessages {
		resp.LastMessagePreview = truncate(c.Messages[len(c.Messages)-1].Content, previewLength)
	}

	return resp
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
