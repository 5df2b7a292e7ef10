package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/pokeronline/internal/game"
	"github.com/lox/pokeronline/internal/server"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
)

// ErrClosed is returned when sending on a closed Conn.
var ErrClosed = errors.New("connection closed")

// Event is one decoded message from a table feed. Exactly one of Snapshot
// and Error is set.
type Event struct {
	Snapshot *server.SnapshotData
	Error    *server.ErrorData
	At       time.Time
}

// Conn is a live websocket feed for one table.
type Conn struct {
	conn   *websocket.Conn
	send   chan *server.Message
	events chan Event
	logger *log.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	err       error
	errMu     sync.Mutex
}

// Dial opens the table's websocket feed, authenticated with the current
// session if there is one. Without a session the feed is read-only.
func (c *Client) Dial(ctx context.Context, tableID string) (*Conn, error) {
	u := c.baseURL.JoinPath("/ws/tables/" + tableID)
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if token := c.sessionToken(); token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, &APIError{Status: resp.StatusCode, Message: err.Error()}
		}
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	c.logger.Info("Connected to table", "table", tableID)

	connCtx, cancel := context.WithCancel(context.Background())
	conn := &Conn{
		conn:   ws,
		send:   make(chan *server.Message, 16),
		events: make(chan Event, 256),
		logger: c.logger.With("table", tableID),
		ctx:    connCtx,
		cancel: cancel,
	}
	go conn.readPump()
	go conn.writePump()
	return conn, nil
}

// Events delivers table updates until the connection closes.
func (c *Conn) Events() <-chan Event {
	return c.events
}

// Done is closed when the connection ends.
func (c *Conn) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Err reports why the connection ended, or nil after a clean Close.
func (c *Conn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

// Act sends an action for the logged in player. Rejections arrive later as
// an Event with Error set.
func (c *Conn) Act(a game.Action) error {
	msg, err := server.NewMessage(server.MessageTypeAction, server.ActionData{Kind: a.Kind, Amount: a.Amount}, time.Now())
	if err != nil {
		return err
	}
	select {
	case <-c.ctx.Done():
		return ErrClosed
	default:
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrClosed
	}
}

// Close shuts the connection down.
func (c *Conn) Close() error {
	c.shutdown(nil)
	return nil
}

func (c *Conn) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.errMu.Lock()
		c.err = err
		c.errMu.Unlock()
		c.cancel()
		_ = c.conn.Close()
	})
}

func (c *Conn) readPump() {
	defer close(c.events)
	for {
		var msg server.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && c.ctx.Err() == nil {
				c.logger.Error("WebSocket error", "error", err)
				c.shutdown(err)
			} else {
				c.shutdown(nil)
			}
			return
		}

		ev := Event{At: msg.Timestamp}
		switch msg.Type {
		case server.MessageTypeSnapshot:
			ev.Snapshot = &server.SnapshotData{}
			if err := json.Unmarshal(msg.Data, ev.Snapshot); err != nil {
				c.logger.Warn("Bad snapshot message", "error", err)
				continue
			}
		case server.MessageTypeError:
			ev.Error = &server.ErrorData{}
			if err := json.Unmarshal(msg.Data, ev.Error); err != nil {
				c.logger.Warn("Bad error message", "error", err)
				continue
			}
		default:
			c.logger.Debug("Ignoring message", "type", msg.Type)
			continue
		}

		select {
		case c.events <- ev:
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				c.shutdown(err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.shutdown(err)
				return
			}
		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}
