package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/pokeronline/internal/game"
	"github.com/lox/pokeronline/internal/lobby"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// ErrConnectionClosed is returned when a slow client is disconnected.
var ErrConnectionClosed = errors.New("connection closed")

// Connection streams one table's snapshots to a websocket client. A
// connection opened with a session token sees its own hole cards and may
// send actions.
type Connection struct {
	conn   *websocket.Conn
	send   chan *Message
	entry  *lobby.Entry
	viewer string
	logger *log.Logger

	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
	unsubscribe func()
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, entry *lobby.Entry, viewer string, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		entry:  entry,
		viewer: viewer,
		logger: logger.WithPrefix("conn").With("table", entry.ID, "viewer", viewer),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes to the table, queues the current snapshot and begins
// pumping messages.
func (c *Connection) Start() {
	c.unsubscribe = c.entry.Table.SubscribeFunc(c.onEvent)
	s := c.entry.Table.Snapshot()
	c.sendSnapshot(SnapshotData{From: s.State, To: s.State, Snapshot: s})

	go c.writePump()
	go c.readPump()
}

// Done is closed when the connection ends.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.unsubscribe != nil {
			c.unsubscribe()
		}
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message without blocking. A client that falls too far
// behind is disconnected.
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
	}
	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) onEvent(e game.Event) {
	sc, ok := e.(game.StateChangedEvent)
	if !ok {
		return
	}
	c.sendSnapshot(SnapshotData{
		Cause:    sc.Cause,
		From:     sc.From,
		To:       sc.To,
		Action:   sc.Action,
		Snapshot: sc.Snapshot,
	})
}

func (c *Connection) sendSnapshot(data SnapshotData) {
	data.Snapshot = data.Snapshot.Redacted(c.viewer)
	msg, err := NewMessage(MessageTypeSnapshot, data, time.Now())
	if err != nil {
		c.logger.Error("Failed to encode snapshot", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

func (c *Connection) sendError(status int, err error) {
	msg, encErr := NewMessage(MessageTypeError, ErrorData{Error: err.Error(), Code: status}, time.Now())
	if encErr != nil {
		return
	}
	_ = c.SendMessage(msg)
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Debug("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeAction:
		if c.viewer == "" {
			c.sendError(http.StatusUnauthorized, errUnauthorized)
			return
		}
		var data ActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(http.StatusBadRequest, errors.New("invalid action payload"))
			return
		}
		if err := c.entry.Table.Act(c.viewer, game.Action{Kind: data.Kind, Amount: data.Amount}); err != nil {
			c.sendError(statusFor(err), err)
		}
	default:
		c.sendError(http.StatusBadRequest, errors.New("unknown message type "+string(msg.Type)))
	}
}
