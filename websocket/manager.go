package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"khawater/auth"
	"khawater/models"
	"khawater/store"
	"khawater/syncer"
)

// Manager owns the live-sync connections. Each client gets its own set of
// collection syncers scoped to its user; posts are synced globally.
type Manager struct {
	store      store.Store
	auth       *auth.Service
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

type Client struct {
	conn    *websocket.Conn
	userID  string
	send    chan []byte
	manager *Manager

	ctx    context.Context
	cancel context.CancelFunc

	// sendMu guards send against the forward goroutines, which may still
	// be draining snapshots when the client disconnects.
	sendMu     sync.Mutex
	sendClosed bool

	// chatMu guards the per-chat message syncer, swapped when the client
	// opens a different conversation.
	chatMu   sync.Mutex
	chatSync *syncer.Syncer[models.ChatMessage]
}

type envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewManager(st store.Store, svc *auth.Service) *Manager {
	return &Manager{
		store:      st,
		auth:       svc,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (m *Manager) Start() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client] = true
			total := len(m.clients)
			m.mu.Unlock()
			log.Printf("[WS] client %s connected. Total clients: %d", client.userID, total)

		case client := <-m.unregister:
			m.mu.Lock()
			delete(m.clients, client)
			total := len(m.clients)
			m.mu.Unlock()
			client.teardown()
			log.Printf("[WS] client %s disconnected. Total clients: %d", client.userID, total)
		}
	}
}

func (m *Manager) ConnectedClients() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler upgrades the connection, authenticates the token from the query
// string and wires the client's syncers.
func Handler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "Token required", http.StatusUnauthorized)
			return
		}

		claims, err := m.auth.ParseToken(token)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[WS] upgrade failed: %v", err)
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		client := &Client{
			conn:    conn,
			userID:  claims.UserID,
			send:    make(chan []byte, 256),
			manager: m,
			ctx:     ctx,
			cancel:  cancel,
		}

		m.register <- client

		client.enqueue(envelope{Type: "connected", Payload: map[string]interface{}{
			"userId": client.userID,
			"time":   time.Now().Unix(),
		}})

		if err := client.startSyncers(); err != nil {
			log.Printf("[WS] syncer setup for %s failed: %v", client.userID, err)
		}

		go client.writePump()
		go client.readPump()
	}
}

// startSyncers opens the three standing feeds of a session: all posts, the
// user's notifications and the user's chat list.
func (c *Client) startSyncers() error {
	posts, err := syncer.Posts(c.ctx, c.manager.store)
	if err != nil {
		return err
	}
	go c.forward("posts", anyChan(posts.Updates()))

	notifs, err := syncer.Notifications(c.ctx, c.manager.store, c.userID)
	if err != nil {
		return err
	}
	go c.forward("notifications", anyChan(notifs.Updates()))

	chats, err := syncer.Chats(c.ctx, c.manager.store, c.userID)
	if err != nil {
		return err
	}
	go c.forward("chats", anyChan(chats.Updates()))

	return nil
}

// anyChan erases the element type so forward can serve every feed.
func anyChan[T any](in <-chan []T) <-chan interface{} {
	out := make(chan interface{}, 1)
	go func() {
		defer close(out)
		for batch := range in {
			out <- batch
		}
	}()
	return out
}

func (c *Client) forward(kind string, updates <-chan interface{}) {
	for batch := range updates {
		c.enqueue(envelope{Type: kind, Payload: batch})
	}
}

func (c *Client) enqueue(e envelope) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Printf("[WS] marshal error: %v", err)
		return
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return
	}
	select {
	case c.send <- msg:
	default:
		// Slow consumer; the next full snapshot supersedes this one anyway.
	}
}

func (c *Client) teardown() {
	c.cancel()
	c.closeChatSync()
	c.sendMu.Lock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
	c.sendMu.Unlock()
}

func (c *Client) closeChatSync() {
	c.chatMu.Lock()
	defer c.chatMu.Unlock()
	if c.chatSync != nil {
		c.chatSync.Close()
		c.chatSync = nil
	}
}

// openChat swaps the message feed to the given conversation.
func (c *Client) openChat(chatID string) {
	c.closeChatSync()

	ctx, cancel := context.WithCancel(c.ctx)
	msgs, err := syncer.Messages(ctx, c.manager.store, chatID)
	if err != nil {
		cancel()
		log.Printf("[WS] opening chat %s for %s failed: %v", chatID, c.userID, err)
		return
	}

	c.chatMu.Lock()
	c.chatSync = msgs
	c.chatMu.Unlock()

	go func() {
		defer cancel()
		for batch := range msgs.Updates() {
			c.enqueue(envelope{Type: "messages", Payload: map[string]interface{}{
				"chatId":   chatID,
				"messages": batch,
			}})
		}
	}()
}

func (c *Client) readPump() {
	defer func() {
		c.manager.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] read error: %v", err)
			}
			break
		}

		var data map[string]interface{}
		if err := json.Unmarshal(message, &data); err != nil {
			continue
		}

		switch data["type"] {
		case "subscribe_chat":
			if payload, ok := data["payload"].(map[string]interface{}); ok {
				if chatID, ok := payload["chatId"].(string); ok && chatID != "" {
					c.openChat(chatID)
				}
			}
		case "unsubscribe_chat":
			c.closeChatSync()
		case "ping":
			c.enqueue(envelope{Type: "pong", Payload: map[string]interface{}{
				"time": time.Now().Unix(),
			}})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
