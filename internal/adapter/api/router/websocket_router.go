package router

import (
	"github.com/labstack/echo/v4"

	"weshop/internal/adapter/api/handler"
)

// SetupWebSocketRouter wires the live channel. Authentication happens inside
// the handler because browser WebSocket clients cannot send custom headers.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws/chat/:conversationId", wsHandler.HandleChatWebSocket)
}
