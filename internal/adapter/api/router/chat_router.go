package router

import (
	"github.com/labstack/echo/v4"

	"weshop/internal/adapter/api/handler"
	"weshop/internal/adapter/api/middleware"
)

// SetupChatRouter wires the request/response chat surface (excluding WebSocket).
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	v1 := e.Group("/v1")
	v1.Use(authMiddleware.Authenticate)

	// Conversation management
	v1.GET("/conversations", chatHandler.ListConversations)
	v1.GET("/conversations/order/:orderId", chatHandler.GetConversationByOrder)
	v1.POST("/orders/:orderId/start-chat", chatHandler.StartChat)

	// Message management
	v1.GET("/conversations/:id/messages", chatHandler.GetMessages)
	v1.POST("/conversations/:id/messages", chatHandler.PostMessage)
}
