package kds

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/resto-order-core/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	authWait   = 10 * time.Second
)

const (
	MessageAuthenticate = "authenticate"
	MessageAuthResponse = "auth_response"
)

// AuthMessage is the first frame a display sends: it declares the tenant it listens to.
type AuthMessage struct {
	Type     string `json:"type"`
	TenantID uint   `json:"tenant_id"`
}

type AuthResponse struct {
	Type    string `json:"type"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Client is one connected POS terminal, kitchen display or QR session.
type Client struct {
	ID       string
	Role     string
	TenantID uint
	conn     *websocket.Conn
	hub      *Hub
}

// Serve runs a websocket session until the peer goes away. tenantID is the tenant resolved
// from the session token; the declared tenant must match it.
func Serve(hub *Hub, conn *websocket.Conn, tenantID uint, role string) {
	client := &Client{
		ID:       uuid.NewString(),
		Role:     role,
		TenantID: tenantID,
		conn:     conn,
		hub:      hub,
	}
	defer conn.Close()

	if !client.authenticate() {
		return
	}

	sub := hub.Subscribe(tenantID)
	log := utils.InfoLogger.WithFields(logrus.Fields{"client_id": client.ID, "tenant_id": tenantID, "role": role})
	log.Info("kds client subscribed")

	done := make(chan struct{})
	go func() {
		client.writePump(sub)
		close(done)
	}()

	client.readPump()
	sub.Close()
	<-done
	log.Info("kds client disconnected")
}

func (c *Client) authenticate() bool {
	c.conn.SetReadDeadline(time.Now().Add(authWait))

	var msg AuthMessage
	if err := c.conn.ReadJSON(&msg); err != nil {
		return false
	}

	ok := msg.Type == MessageAuthenticate && msg.TenantID == c.TenantID
	resp := AuthResponse{Type: MessageAuthResponse, OK: ok, Message: "Connected successfully"}
	if !ok {
		resp.Message = "tenant mismatch"
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(resp); err != nil {
		return false
	}
	return ok
}

// readPump drains client frames; displays only send pongs and keep-alives.
func (c *Client) readPump() {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				utils.ErrorLogger.Printf("kds websocket error: %v", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (c *Client) writePump(sub *Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-sub.Events():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				// the read side notices the broken connection and closes the subscription
				c.conn.Close()
				drain(sub)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.conn.Close()
				drain(sub)
				return
			}
		}
	}
}

func drain(sub *Subscription) {
	for range sub.Events() {
	}
}
