package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	apperrors "weshop/pkg/errors"
	"weshop/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxFrameSize = 4096
)

// MessageSender is the slice of the chat usecase the read pump needs: persist
// an inbound message and fan it out. Implemented by usecase.ChatUseCase.
type MessageSender interface {
	SendMessage(ctx context.Context, senderID, conversationID uint, content string) error
}

// Client is one live connection bound to a single conversation.
type Client struct {
	ID             string // connection id, for logs
	UserID         uint
	ConversationID uint
	Conn           *websocket.Conn
	Send           chan []byte
}

// inboundFrame is the only frame shape a client may send: {"content": "..."}.
type inboundFrame struct {
	Content string `json:"content"`
}

type errorFrame struct {
	Error errorFrameBody `json:"error"`
}

type errorFrameBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ReadPump consumes inbound frames until the connection closes, routing each
// one through the shared SendMessage path. Validation and authorization
// failures go back to this connection only; the connection stays open.
func (c *Client) ReadPump(m *Manager, sender MessageSender) {
	defer func() {
		m.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxFrameSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket client %s read error: %v", c.ID, err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.sendError(m, "VALIDATION_ERROR", "Invalid message format")
			continue
		}

		if err := sender.SendMessage(context.Background(), c.UserID, c.ConversationID, frame.Content); err != nil {
			c.sendError(m, errorCode(err), errorMessage(err))
		}
	}
}

// WritePump drains the send channel onto the socket and keeps the connection
// alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Warn("WebSocket client %s write error: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendError(m *Manager, code, message string) {
	payload, err := json.Marshal(errorFrame{Error: errorFrameBody{Code: code, Message: message}})
	if err != nil {
		return
	}
	m.SendToClient(c, payload)
}

func errorCode(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "INTERNAL_ERROR"
}

func errorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "An unexpected error occurred"
}
