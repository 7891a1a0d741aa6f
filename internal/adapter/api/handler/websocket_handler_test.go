package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"weshop/internal/adapter/api/middleware"
	"weshop/internal/domain/entity"
	ws "weshop/internal/infrastructure/websocket"
	"weshop/internal/usecase"
)

const wsTestSecret = "ws-test-secret"

func wsToken(t *testing.T, userID uint) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(wsTestSecret))
	assert.NoError(t, err)
	return signed
}

// newWSTestServer stands up the full live-channel stack: real manager, real
// JWT verification, in-memory persistence.
func newWSTestServer(t *testing.T) (*httptest.Server, *usecase.ChatUseCase) {
	t.Helper()

	conversationRepo := newMemConversationRepo()
	orderRepo := &memOrderRepo{orders: map[uint]*entity.Order{
		testOrderID: {
			ID:      testOrderID,
			BuyerID: testBuyerID,
			Product: &entity.Product{ID: 7, Shop: &entity.Shop{ID: 3, OwnerID: testSellerID}},
		},
	}}

	wsManager := ws.NewManager()
	chatUseCase := usecase.NewChatUseCase(conversationRepo, orderRepo, wsManager)
	authMiddleware := middleware.NewAuthMiddleware(wsTestSecret)
	wsHandler := NewWebSocketHandler(wsManager, authMiddleware, chatUseCase)

	e := echo.New()
	e.GET("/ws/chat/:conversationId", wsHandler.HandleChatWebSocket)

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	return server, chatUseCase
}

func dialChat(t *testing.T, server *httptest.Server, conversationID uint, token string) (*gorillaws.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") +
		"/ws/chat/" + strconv.FormatUint(uint64(conversationID), 10) +
		"?token=" + token
	return gorillaws.DefaultDialer.Dial(url, nil)
}

func readFrame(t *testing.T, conn *gorillaws.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	assert.NoError(t, err)
	return payload
}

func TestLiveChannelFanOut(t *testing.T) {
	server, chatUseCase := newWSTestServer(t)

	conversation, _, err := chatUseCase.StartConversation(context.Background(), testBuyerID, testOrderID)
	assert.NoError(t, err)

	buyerConn, _, err := dialChat(t, server, conversation.ID, wsToken(t, testBuyerID))
	assert.NoError(t, err)
	defer buyerConn.Close()

	sellerConn, _, err := dialChat(t, server, conversation.ID, wsToken(t, testSellerID))
	assert.NoError(t, err)
	defer sellerConn.Close()

	err = buyerConn.WriteMessage(gorillaws.TextMessage, []byte(`{"content":"hi"}`))
	assert.NoError(t, err)

	// Both ends receive the persisted message, the sender included.
	for _, conn := range []*gorillaws.Conn{buyerConn, sellerConn} {
		var frame entity.Message
		assert.NoError(t, json.Unmarshal(readFrame(t, conn), &frame))
		assert.Equal(t, testBuyerID, frame.SenderID)
		assert.Equal(t, "hi", frame.Content)
		assert.False(t, frame.IsRead)
	}
}

func TestLiveChannelReceivesHTTPPostedMessages(t *testing.T) {
	server, chatUseCase := newWSTestServer(t)
	ctx := context.Background()

	conversation, _, err := chatUseCase.StartConversation(ctx, testBuyerID, testOrderID)
	assert.NoError(t, err)

	sellerConn, _, err := dialChat(t, server, conversation.ID, wsToken(t, testSellerID))
	assert.NoError(t, err)
	defer sellerConn.Close()

	// A message created through the synchronous path reaches live listeners
	// through the same broadcast choke point.
	_, err = chatUseCase.PostMessage(ctx, testBuyerID, conversation.ID, "posted over http")
	assert.NoError(t, err)

	var frame entity.Message
	assert.NoError(t, json.Unmarshal(readFrame(t, sellerConn), &frame))
	assert.Equal(t, "posted over http", frame.Content)
}

func TestLiveChannelEmptyContentErrorFrameKeepsConnectionOpen(t *testing.T) {
	server, chatUseCase := newWSTestServer(t)

	conversation, _, err := chatUseCase.StartConversation(context.Background(), testBuyerID, testOrderID)
	assert.NoError(t, err)

	conn, _, err := dialChat(t, server, conversation.ID, wsToken(t, testBuyerID))
	assert.NoError(t, err)
	defer conn.Close()

	err = conn.WriteMessage(gorillaws.TextMessage, []byte(`{"content":""}`))
	assert.NoError(t, err)

	var errFrame struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(readFrame(t, conn), &errFrame))
	assert.Equal(t, "BAD_REQUEST", errFrame.Error.Code)

	// Connection survives the error and still carries traffic.
	err = conn.WriteMessage(gorillaws.TextMessage, []byte(`{"content":"still here"}`))
	assert.NoError(t, err)

	var frame entity.Message
	assert.NoError(t, json.Unmarshal(readFrame(t, conn), &frame))
	assert.Equal(t, "still here", frame.Content)
}

func TestLiveChannelRejectsNonParticipant(t *testing.T) {
	server, chatUseCase := newWSTestServer(t)

	conversation, _, err := chatUseCase.StartConversation(context.Background(), testBuyerID, testOrderID)
	assert.NoError(t, err)

	conn, _, err := dialChat(t, server, conversation.ID, wsToken(t, testOutsider))
	assert.NoError(t, err, "upgrade succeeds; the close follows immediately")
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.True(t, gorillaws.IsCloseError(err, 4403), "closed with the authorization-failure code, got %v", err)
}

func TestLiveChannelRejectsUnauthenticated(t *testing.T) {
	server, chatUseCase := newWSTestServer(t)

	conversation, _, err := chatUseCase.StartConversation(context.Background(), testBuyerID, testOrderID)
	assert.NoError(t, err)

	_, resp, err := dialChat(t, server, conversation.ID, "not-a-token")
	assert.Error(t, err)
	if assert.NotNil(t, resp) {
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}
