package websocket

import (
	"sync"

	"weshop/pkg/logger"
)

// Manager is the process-wide registry of live connections, keyed by
// conversation id. It is constructed once in main and injected into both the
// websocket handler (register/unregister) and the chat usecase (broadcast),
// so every message-creation path fans out through the same choke point.
type Manager struct {
	mu            sync.Mutex
	conversations map[uint]map[*Client]bool
}

func NewManager() *Manager {
	return &Manager{
		conversations: make(map[uint]map[*Client]bool),
	}
}

// Register adds the client to its conversation's connection set.
func (m *Manager) Register(client *Client) {
	m.mu.Lock()
	clients, ok := m.conversations[client.ConversationID]
	if !ok {
		clients = make(map[*Client]bool)
		m.conversations[client.ConversationID] = clients
	}
	clients[client] = true
	m.mu.Unlock()

	logger.Info("WebSocket client %s registered: user=%d conversation=%d", client.ID, client.UserID, client.ConversationID)
}

// Unregister removes the client and closes its send channel. Safe to call
// more than once for the same client.
func (m *Manager) Unregister(client *Client) {
	m.mu.Lock()
	removed := m.removeLocked(client)
	m.mu.Unlock()

	if removed {
		logger.Info("WebSocket client %s unregistered: user=%d conversation=%d", client.ID, client.UserID, client.ConversationID)
	}
}

// BroadcastToConversation hands the already-serialized payload to every live
// connection on the conversation, including the sender's own for echo. The
// lock covers only enumeration and the buffered channel hand-off; marshaling
// and socket writes happen outside it. A client whose send buffer is full is
// dropped rather than allowed to stall the rest.
func (m *Manager) BroadcastToConversation(conversationID uint, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for client := range m.conversations[conversationID] {
		select {
		case client.Send <- payload:
		default:
			m.removeLocked(client)
			logger.Warn("WebSocket client %s dropped: send buffer full", client.ID)
		}
	}
}

// SendToClient queues a payload for a single connection, used for in-band
// error frames that must not reach the peer.
func (m *Manager) SendToClient(client *Client, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.conversations[client.ConversationID][client] {
		return
	}
	select {
	case client.Send <- payload:
	default:
		m.removeLocked(client)
	}
}

// ConnectionCount reports the number of live connections on a conversation.
func (m *Manager) ConnectionCount(conversationID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conversations[conversationID])
}

func (m *Manager) removeLocked(client *Client) bool {
	clients, ok := m.conversations[client.ConversationID]
	if !ok || !clients[client] {
		return false
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(m.conversations, client.ConversationID)
	}
	close(client.Send)
	return true
}
