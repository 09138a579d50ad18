// speddy/internal/handlers/schedule_hub.go

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ScheduleHub is the single hub pushing schedule changes to open
// calendar views.
var ScheduleHub = NewHub()

// ChangeNotice tells a connected calendar view that a session row
// changed and which one, so it can refetch the affected range.
type ChangeNotice struct {
	Type      string `json:"type"` // session_created, session_moved, ...
	SessionID uint   `json:"sessionId"`
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
}

type Hub struct {
	clients    map[uint][]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uint][]*Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.userID] = append(h.clients[client.userID], client)
			h.mu.Unlock()
			slog.Info("Calendar client connected", "userID", client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			conns := h.clients[client.userID]
			for i, c := range conns {
				if c == client {
					h.clients[client.userID] = append(conns[:i], conns[i+1:]...)
					close(client.send)
					break
				}
			}
			if len(h.clients[client.userID]) == 0 {
				delete(h.clients, client.userID)
			}
			h.mu.Unlock()
			slog.Info("Calendar client disconnected", "userID", client.userID)
		}
	}
}

// NotifyChange fans a change notice out to every open connection of
// the listed users. Slow consumers are dropped rather than blocking a
// request handler.
func (h *Hub) NotifyChange(userIDs []uint, changeType string, sessionID uint) {
	payload, err := json.Marshal(ChangeNotice{Type: changeType, SessionID: sessionID})
	if err != nil {
		slog.Error("Failed to marshal change notice", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, userID := range userIDs {
		for _, client := range h.clients[userID] {
			select {
			case client.send <- payload:
			default:
				slog.Warn("Dropping schedule notice for slow client", "userID", userID)
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	// The calendar feed is one-way; we read only to notice the close.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	defer func() {
		c.conn.Close()
	}()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			slog.Error("Failed to write schedule notice to websocket", "error", err)
			return
		}
	}
}

// ScheduleWSEndpoint upgrades an authenticated request into a calendar
// change feed.
func ScheduleWSEndpoint(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}

	client := &Client{
		hub:    ScheduleHub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID.(uint),
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
