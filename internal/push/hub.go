package push

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"printexpress/internal/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards are served from a different origin than the API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub tracks the websocket connections of this gateway node, keyed by user
// id, and fans order events out to them.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	lock       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes registrations until the context is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case client := <-h.register:
			h.lock.Lock()
			if old, ok := h.clients[client.userID]; ok {
				close(old.send)
			}
			h.clients[client.userID] = client
			h.lock.Unlock()
		case client := <-h.unregister:
			h.lock.Lock()
			if current, ok := h.clients[client.userID]; ok && current == client {
				delete(h.clients, client.userID)
				close(client.send)
			}
			h.lock.Unlock()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Send pushes a message to one connected user. Returns false when the user
// has no live connection on this node.
func (h *Hub) Send(userID string, message []byte) bool {
	h.lock.RLock()
	client, ok := h.clients[userID]
	h.lock.RUnlock()
	if !ok {
		return false
	}
	select {
	case client.send <- message:
		return true
	default:
		// A stuck client gets dropped rather than backing up the hub.
		h.unregister <- client
		return false
	}
}

// Broadcast pushes a message to every connected client (staff dashboards).
func (h *Hub) Broadcast(message []byte) {
	h.lock.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.lock.RUnlock()
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			h.unregister <- client
		}
	}
}

// Client is one websocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		// Clients only send heartbeats; anything else is discarded.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// ServeWs upgrades an HTTP request to a websocket and attaches it to the hub.
func (h *Hub) ServeWs(sessions *SessionManager, nodeID string, w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, 256), userID: userID}
	h.register <- client

	if err := sessions.SetUserGateway(r.Context(), userID, nodeID); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Str("user_id", userID).Msg("session registration failed")
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
