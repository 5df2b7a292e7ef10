package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lox/pokeronline/internal/auth"
	"github.com/lox/pokeronline/internal/game"
	"github.com/lox/pokeronline/internal/lobby"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func testTemplate() lobby.Template {
	cfg := game.DefaultConfig()
	cfg.MaxSeats = 6
	return lobby.Template{Name: "test", Config: cfg, StartingChips: 100}
}

type testEnv struct {
	server   *Server
	http     *httptest.Server
	registry *lobby.Registry
}

func newTestEnv(t *testing.T, withMatchmaker bool) *testEnv {
	t.Helper()
	logger := testLogger()
	reg := lobby.NewRegistry(10, lobby.WithSeed(3), lobby.WithLogger(logger))

	var mm *lobby.Matchmaker
	if withMatchmaker {
		var err error
		mm, err = lobby.NewMatchmaker(reg, lobby.MatchmakerConfig{Template: testTemplate(), MinPlayers: 2})
		require.NoError(t, err)
	}

	srv := NewServer(Options{
		Registry:   reg,
		Matchmaker: mm,
		Store:      auth.NewMemoryStore(auth.WithCost(bcrypt.MinCost)),
		Sessions:   auth.NewSessions(quartz.NewReal(), time.Hour),
		Templates:  []lobby.Template{testTemplate()},
		Logger:     logger,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{server: srv, http: ts, registry: reg}
}

// do sends a JSON request and returns the status and raw body.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.http.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.http.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

// signup creates an account and returns a session token for it.
func (e *testEnv) signup(t *testing.T, username string) string {
	t.Helper()
	status, _ := e.do(t, http.MethodPost, "/api/accounts", "", Credentials{Username: username, Password: "secret-" + username})
	require.Equal(t, http.StatusCreated, status)

	status, body := e.do(t, http.MethodPost, "/api/sessions", "", Credentials{Username: username, Password: "secret-" + username})
	require.Equal(t, http.StatusCreated, status)
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (e *testEnv) createTable(t *testing.T, token string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/tables", token, CreateTableRequest{Template: "test"})
	require.Equal(t, http.StatusCreated, status, string(body))
	var summary lobby.Summary
	require.NoError(t, json.Unmarshal(body, &summary))
	return summary.ID
}

// wireSnapshot is the subset of a snapshot the tests read back.
type wireSnapshot struct {
	TableID       string `json:"table_id"`
	State         string `json:"state"`
	Pot           int    `json:"pot"`
	CurrentPlayer string `json:"current_player"`
	Players       []struct {
		Username string   `json:"username"`
		Chips    int      `json:"chips"`
		Hole     []string `json:"hole"`
	} `json:"players"`
}

func decodeSnapshot(t *testing.T, body []byte) wireSnapshot {
	t.Helper()
	var s wireSnapshot
	require.NoError(t, json.Unmarshal(body, &s), string(body))
	return s
}

func (s wireSnapshot) hole(username string) []string {
	for _, p := range s.Players {
		if p.Username == username {
			return p.Hole
		}
	}
	return nil
}

type wireSnapshotMessage struct {
	Cause    string       `json:"cause"`
	From     string       `json:"from"`
	To       string       `json:"to"`
	Snapshot wireSnapshot `json:"snapshot"`
}

func dialTable(t *testing.T, e *testEnv, tableID, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.http.URL, "http") + "/ws/tables/" + tableID
	if token != "" {
		url += "?token=" + token
	}
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func readSnapshot(t *testing.T, conn *websocket.Conn) wireSnapshotMessage {
	t.Helper()
	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeSnapshot, msg.Type, string(msg.Data))
	var data wireSnapshotMessage
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}
