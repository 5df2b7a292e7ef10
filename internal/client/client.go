// Package client talks to a pokeronline server: the JSON API for accounts
// and tables, and the websocket feed for live play.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/pokeronline/internal/game"
	"github.com/lox/pokeronline/internal/lobby"
	"github.com/lox/pokeronline/internal/server"
)

const requestTimeout = 10 * time.Second

// ErrNotLoggedIn is returned by calls that need a session before Login.
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by an *APIError, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client is a session against one server.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *log.Logger

	mu       sync.RWMutex
	token    string
	username string
}

// New returns a client for the server at baseURL (for example
// "http://localhost:8080").
func New(baseURL string, logger *log.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", baseURL)
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: requestTimeout},
		logger:  logger.WithPrefix("client"),
	}, nil
}

// Username returns the logged in user, if any.
func (c *Client) Username() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username
}

// Signup creates an account. It does not log in.
func (c *Client) Signup(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, "/api/accounts", server.Credentials{Username: username, Password: password}, nil)
}

// Login opens a session used by every later call.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp server.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/sessions", server.Credentials{Username: username, Password: password}, &resp); err != nil {
		return err
	}
	c.mu.Lock()
	c.token, c.username = resp.Token, resp.Username
	c.mu.Unlock()
	c.logger.Debug("Logged in", "username", resp.Username)
	return nil
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodDelete, "/api/sessions", nil, nil)
	c.mu.Lock()
	c.token, c.username = "", ""
	c.mu.Unlock()
	return err
}

// Tables lists the running tables.
func (c *Client) Tables(ctx context.Context) ([]lobby.Summary, error) {
	var out []lobby.Summary
	err := c.do(ctx, http.MethodGet, "/api/tables", nil, &out)
	return out, err
}

// Table finds one table's summary.
func (c *Client) Table(ctx context.Context, id string) (lobby.Summary, error) {
	tables, err := c.Tables(ctx)
	if err != nil {
		return lobby.Summary{}, err
	}
	for _, t := range tables {
		if t.ID == id {
			return t, nil
		}
	}
	return lobby.Summary{}, &APIError{Status: http.StatusNotFound, Message: "table not found: " + id}
}

// CreateTable opens a table from a server template.
func (c *Client) CreateTable(ctx context.Context, template string) (lobby.Summary, error) {
	var out lobby.Summary
	err := c.authed(ctx, http.MethodPost, "/api/tables", server.CreateTableRequest{Template: template}, &out)
	return out, err
}

// Snapshot fetches a table's state as seen by the logged in user.
func (c *Client) Snapshot(ctx context.Context, tableID string) (game.Snapshot, error) {
	var out game.Snapshot
	err := c.do(ctx, http.MethodGet, tablePath(tableID, ""), nil, &out)
	return out, err
}

// Join takes a seat with the table's starting chips.
func (c *Client) Join(ctx context.Context, tableID string) (game.Snapshot, error) {
	return c.tableCall(ctx, http.MethodPost, tableID, "/players", nil)
}

// Leave gives up the seat.
func (c *Client) Leave(ctx context.Context, tableID string) (game.Snapshot, error) {
	return c.tableCall(ctx, http.MethodDelete, tableID, "/players", nil)
}

// Start deals a new hand.
func (c *Client) Start(ctx context.Context, tableID string) (game.Snapshot, error) {
	return c.tableCall(ctx, http.MethodPost, tableID, "/start", nil)
}

// Reset abandons the current hand.
func (c *Client) Reset(ctx context.Context, tableID string) (game.Snapshot, error) {
	return c.tableCall(ctx, http.MethodPost, tableID, "/reset", nil)
}

// Act submits an action over HTTP. Live clients usually act on their
// websocket Conn instead.
func (c *Client) Act(ctx context.Context, tableID string, a game.Action) (game.Snapshot, error) {
	return c.tableCall(ctx, http.MethodPost, tableID, "/actions", a)
}

// History downloads the table's recent hands as a PHH document.
func (c *Client) History(ctx context.Context, tableID string) ([]byte, error) {
	var buf bytes.Buffer
	err := c.do(ctx, http.MethodGet, tablePath(tableID, "/history"), nil, &buf)
	return buf.Bytes(), err
}

// Enqueue joins the matchmaking queue.
func (c *Client) Enqueue(ctx context.Context) (server.QueueResponse, error) {
	var out server.QueueResponse
	err := c.authed(ctx, http.MethodPost, "/api/queue", nil, &out)
	return out, err
}

// QueueStatus reports whether the player is queued or has been seated.
func (c *Client) QueueStatus(ctx context.Context) (server.QueueResponse, error) {
	var out server.QueueResponse
	err := c.authed(ctx, http.MethodGet, "/api/queue", nil, &out)
	return out, err
}

// Dequeue leaves the matchmaking queue.
func (c *Client) Dequeue(ctx context.Context) error {
	return c.authed(ctx, http.MethodDelete, "/api/queue", nil, nil)
}

func (c *Client) tableCall(ctx context.Context, method, tableID, suffix string, body any) (game.Snapshot, error) {
	var out game.Snapshot
	err := c.authed(ctx, method, tablePath(tableID, suffix), body, &out)
	return out, err
}

func (c *Client) authed(ctx context.Context, method, path string, body, out any) error {
	if c.sessionToken() == "" {
		return ErrNotLoggedIn
	}
	return c.do(ctx, method, path, body, out)
}

func (c *Client) sessionToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do sends a JSON request. out may be nil, a *bytes.Buffer for the raw body,
// or a value to decode into.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.sessionToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	c.logger.Debug("Request", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode >= 300 {
		var apiErr server.ErrorData
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(data))
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	switch dst := out.(type) {
	case nil:
		return nil
	case *bytes.Buffer:
		_, err = dst.ReadFrom(resp.Body)
		return err
	default:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding %s %s: %w", method, path, err)
		}
		return nil
	}
}

func tablePath(id, suffix string) string {
	return "/api/tables/" + id + suffix
}
