package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"weshop/internal/usecase"
	"weshop/pkg/errors"
	"weshop/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type postMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// ListConversations returns the caller's conversations, newest activity first.
func (h *ChatHandler) ListConversations(c echo.Context) error {
	userID := c.Get("uid").(uint)

	conversations, err := h.chatUseCase.ListConversations(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversations)
}

// GetConversationByOrder returns the order's conversation with full history.
// 404 covers both "no such conversation" and "caller is not a participant".
func (h *ChatHandler) GetConversationByOrder(c echo.Context) error {
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return response.Error(c, err)
	}
	userID := c.Get("uid").(uint)

	conversation, err := h.chatUseCase.GetConversationByOrder(c.Request().Context(), userID, orderID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversation)
}

// StartChat opens the conversation for an order: 201 when newly created,
// 200 when it already existed.
func (h *ChatHandler) StartChat(c echo.Context) error {
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return response.Error(c, err)
	}
	userID := c.Get("uid").(uint)

	conversation, created, err := h.chatUseCase.StartConversation(c.Request().Context(), userID, orderID)
	if err != nil {
		return response.Error(c, err)
	}

	if created {
		return response.Created(c, conversation)
	}
	return response.Success(c, conversation)
}

// GetMessages returns the ordered message list and marks every message not
// authored by the caller as read.
func (h *ChatHandler) GetMessages(c echo.Context) error {
	conversationID, err := pathID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	userID := c.Get("uid").(uint)

	messages, err := h.chatUseCase.GetMessages(c.Request().Context(), userID, conversationID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

// PostMessage persists a message; live connections on the conversation are
// notified by the same broadcast path the websocket surface uses.
func (h *ChatHandler) PostMessage(c echo.Context) error {
	conversationID, err := pathID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	userID := c.Get("uid").(uint)

	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.PostMessage(c.Request().Context(), userID, conversationID, req.Content)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, errors.BadRequest("Invalid "+name+" parameter", err)
	}
	return uint(id), nil
}
