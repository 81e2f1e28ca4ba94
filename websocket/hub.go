// Package websocket pushes notifications to connected users.
package websocket

import (
	"context"
	"log"
	"sync"

	"github.com/anjiri1684/fitness_marketplace/notifications"
	"github.com/google/uuid"
)

// Conn is the subset of *websocket.Conn the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	UserID uuid.UUID
	Conn   Conn
}

type delivery struct {
	userIDs      []uuid.UUID
	notification notifications.Notification
}

type Hub struct {
	clients   map[uuid.UUID]Conn
	clientsMu sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan delivery
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]Conn),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan delivery, 256),
	}
}

func (h *Hub) Register(c *Client)   { h.register <- c }
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

func (h *Hub) Connected(userID uuid.UUID) bool {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// NotifyUsers queues the notification for every connected recipient. Users
// without an open socket are skipped.
func (h *Hub) NotifyUsers(ctx context.Context, userIDs []uuid.UUID, n notifications.Notification) error {
	select {
	case h.broadcast <- delivery{userIDs: userIDs, notification: n}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.clientsMu.Lock()
			for id, conn := range h.clients {
				_ = conn.Close()
				delete(h.clients, id)
			}
			h.clientsMu.Unlock()
			return
		case client := <-h.register:
			log.Printf("Client registered: %s", client.UserID)
			h.clientsMu.Lock()
			h.clients[client.UserID] = client.Conn
			h.clientsMu.Unlock()
		case client := <-h.unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			h.clientsMu.Lock()
			if conn, ok := h.clients[client.UserID]; ok && conn == client.Conn {
				delete(h.clients, client.UserID)
			}
			h.clientsMu.Unlock()
		case d := <-h.broadcast:
			h.deliver(d)
		}
	}
}

func (h *Hub) deliver(d delivery) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for _, userID := range d.userIDs {
		conn, ok := h.clients[userID]
		if !ok {
			continue
		}
		if err := conn.WriteJSON(d.notification); err != nil {
			log.Printf("Error sending notification to client %s: %v", userID, err)
			_ = conn.Close()
			delete(h.clients, userID)
		}
	}
}
