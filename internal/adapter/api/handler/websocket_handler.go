package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"weshop/internal/adapter/api/middleware"
	ws "weshop/internal/infrastructure/websocket"
	"weshop/internal/usecase"
	"weshop/pkg/errors"
)

// closeForbidden is the close code sent when a resolved principal is not a
// participant of the requested conversation.
const closeForbidden = 4403

type WebSocketHandler struct {
	wsManager      *ws.Manager
	authMiddleware *middleware.AuthMiddleware
	chatUseCase    *usecase.ChatUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // restrict in production
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, authMiddleware *middleware.AuthMiddleware, chatUseCase *usecase.ChatUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:      wsManager,
		authMiddleware: authMiddleware,
		chatUseCase:    chatUseCase,
	}
}

// HandleChatWebSocket upgrades a connection onto one conversation's channel.
// The principal is resolved before the upgrade; membership is checked right
// after, and a deny closes the connection before any frame is exchanged.
func (h *WebSocketHandler) HandleChatWebSocket(c echo.Context) error {
	conversationID, err := strconv.ParseUint(c.Param("conversationId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid conversation id")
	}

	// Principal resolution happens before the upgrade: an unauthenticated
	// attempt is refused at the handshake with a plain HTTP status.
	userID, err := h.resolvePrincipal(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	if err := h.chatUseCase.AuthorizeConnect(c.Request().Context(), userID, uint(conversationID)); err != nil {
		deadline := time.Now().Add(time.Second)
		conn.WriteControl(
			gorillaws.CloseMessage,
			gorillaws.FormatCloseMessage(closeForbidden, "not a participant"),
			deadline,
		)
		conn.Close()
		return nil
	}

	client := &ws.Client{
		ID:             uuid.NewString(),
		UserID:         userID,
		ConversationID: uint(conversationID),
		Conn:           conn,
		Send:           make(chan []byte, 256),
	}

	h.wsManager.Register(client)

	go client.ReadPump(h.wsManager, h.chatUseCase)
	go client.WritePump()

	return nil
}

// resolvePrincipal accepts the token either as a bearer header or, for
// browser WebSocket clients that cannot set headers, a "token" query param.
func (h *WebSocketHandler) resolvePrincipal(c echo.Context) (uint, error) {
	token := c.QueryParam("token")
	if token == "" {
		authHeader := c.Request().Header.Get("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
	}
	if token == "" {
		return 0, errors.Unauthorized("Missing credentials", nil)
	}
	return h.authMiddleware.VerifyToken(token)
}
