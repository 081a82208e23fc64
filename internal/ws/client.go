package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ringtoss/backend/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 8192
	sendBuffer     = 256
)

// Controllable is the part of a session a client can drive.
type Controllable interface {
	Apply(c game.Control) error
	Snapshot() *game.Snapshot
}

var errHubStopped = errors.New("ws: hub stopped")

// Inbound message types.
const (
	MsgControl  = "control"
	MsgSnapshot = "snapshot"
	MsgPing     = "ping"
)

// WSMessage is an inbound client frame.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Client is one WebSocket connection watching one session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	session   Controllable
	send      chan []byte
	logger    *zap.Logger
}

// Upgrader builds the upgrader used by Serve. Origins are checked by
// middleware before the upgrade.
func Upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
}

// Serve upgrades the request and attaches the connection to the session's
// room. It returns once the pumps are running.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionID string, s Controllable) error {
	up := Upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &Client{
		hub:       h,
		conn:      conn,
		sessionID: sessionID,
		session:   s,
		send:      make(chan []byte, sendBuffer),
		logger:    h.logger.With(zap.String("session", sessionID)),
	}
	// The client is not shared yet, so the first state goes straight in.
	if data, err := json.Marshal(game.Message{Type: "state", Data: s.Snapshot()}); err == nil {
		c.send <- data
	}
	if !h.join(c) {
		conn.Close()
		return errHubStopped
	}

	go c.writePump()
	go c.readPump()
	return nil
}

func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("invalid message")
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg WSMessage) {
	switch msg.Type {
	case MsgControl:
		var ctl game.Control
		if err := json.Unmarshal(msg.Data, &ctl); err != nil {
			c.sendError("invalid control payload")
			return
		}
		if err := c.session.Apply(ctl); err != nil {
			c.sendError(err.Error())
			return
		}
		c.logger.Debug("control applied", zap.String("type", ctl.Type))

	case MsgSnapshot:
		c.sendJSON(game.Message{Type: "state", Data: c.session.Snapshot()})

	case MsgPing:
		c.sendJSON(game.Message{Type: "pong", Data: time.Now().UnixMilli()})

	default:
		c.sendError("unknown message type: " + msg.Type)
	}
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
				c.logger.Debug("websocket write failed", zap.Error(err))
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

// sendJSON queues v without blocking. Messages for a client the hub has
// already dropped are discarded.
func (c *Client) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("marshal outbound message", zap.Error(err))
		return
	}
	if !c.hub.sendTo(c, data) {
		c.logger.Debug("outbound message dropped")
	}
}

func (c *Client) sendError(message string) {
	c.sendJSON(game.Message{Type: "error", Data: message})
}
