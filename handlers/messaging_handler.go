package handlers

import (
	"log"

	"github.com/anjiri1684/fitness_marketplace/middleware"
	"github.com/anjiri1684/fitness_marketplace/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type wsConn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
	Close() error
}

type AuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

func (h *Handler) ServeWs(c *websocketcontrib.Conn) {
	h.serveWs(c)
}

// serveWs authenticates the socket with its first frame and then keeps it
// registered on the hub until the client goes away. Incoming frames after
// auth are ignored.
func (h *Handler) serveWs(c wsConn) {
	var authMsg AuthMessage
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		log.Printf("WebSocket auth failed: invalid or missing auth message, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		_ = c.Close()
		return
	}

	actor, err := middleware.ParseToken(h.JWTSecret, authMsg.Token)
	if err != nil {
		log.Printf("WebSocket auth failed: invalid token, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		_ = c.Close()
		return
	}

	// The hub owns writes once the client is registered.
	if err := c.WriteJSON(fiber.Map{"type": "auth_ok"}); err != nil {
		_ = c.Close()
		return
	}
	client := &websocket.Client{UserID: actor.UserID, Conn: c}
	h.Hub.Register(client)
	log.Printf("WebSocket client authenticated and registered: %s", actor.UserID)
	defer func() {
		h.Hub.Unregister(client)
		_ = c.Close()
	}()

	for {
		var msg map[string]interface{}
		if err := c.ReadJSON(&msg); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseAbnormalClosure) {
				log.Printf("WebSocket closed for client %s: %v", actor.UserID, err)
			} else {
				log.Printf("WebSocket read error for client %s: %v", actor.UserID, err)
			}
			return
		}
	}
}
