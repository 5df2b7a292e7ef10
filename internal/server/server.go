package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/pokeronline/internal/auth"
	"github.com/lox/pokeronline/internal/lobby"
)

const shutdownTimeout = 5 * time.Second

// Options wires the server to its collaborators. Matchmaker may be nil, in
// which case the queue endpoints report 404.
type Options struct {
	Registry   *lobby.Registry
	Matchmaker *lobby.Matchmaker
	Store      auth.Store
	Sessions   *auth.Sessions
	Templates  []lobby.Template
	Logger     *log.Logger
}

// Server serves the table API and websocket table feeds.
type Server struct {
	registry   *lobby.Registry
	matchmaker *lobby.Matchmaker
	store      auth.Store
	sessions   *auth.Sessions
	templates  map[string]lobby.Template
	upgrader   websocket.Upgrader
	logger     *log.Logger

	mu          sync.Mutex
	connections map[*Connection]bool
}

// NewServer creates a server from opts.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	templates := make(map[string]lobby.Template, len(opts.Templates))
	for _, tmpl := range opts.Templates {
		templates[tmpl.Name] = tmpl
	}
	return &Server{
		registry:   opts.Registry,
		matchmaker: opts.Matchmaker,
		store:      opts.Store,
		sessions:   opts.Sessions,
		templates:  templates,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:      logger.WithPrefix("server"),
		connections: make(map[*Connection]bool),
	}
}

// Handler returns the HTTP handler for every route.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("POST /api/sessions", s.handleLogin)
	mux.HandleFunc("DELETE /api/sessions", s.handleLogout)

	mux.HandleFunc("GET /api/tables", s.handleListTables)
	mux.HandleFunc("POST /api/tables", s.authenticated(s.handleCreateTable))
	mux.HandleFunc("GET /api/tables/{id}", s.handleGetTable)
	mux.HandleFunc("DELETE /api/tables/{id}", s.authenticated(s.handleRemoveTable))
	mux.HandleFunc("GET /api/tables/{id}/history", s.handleHistory)
	mux.HandleFunc("POST /api/tables/{id}/players", s.authenticated(s.handleJoin))
	mux.HandleFunc("DELETE /api/tables/{id}/players", s.authenticated(s.handleLeave))
	mux.HandleFunc("POST /api/tables/{id}/start", s.authenticated(s.handleStart))
	mux.HandleFunc("POST /api/tables/{id}/reset", s.authenticated(s.handleReset))
	mux.HandleFunc("POST /api/tables/{id}/actions", s.authenticated(s.handleAct))

	mux.HandleFunc("GET /api/queue", s.authenticated(s.handleQueueStatus))
	mux.HandleFunc("POST /api/queue", s.authenticated(s.handleEnqueue))
	mux.HandleFunc("DELETE /api/queue", s.authenticated(s.handleDequeue))

	mux.HandleFunc("GET /ws/tables/{id}", s.handleWebSocket)
	return s.logRequests(mux)
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	s.closeConnections()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// ConnectionCount returns the number of open websocket feeds.
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.connections)
}

func (s *Server) closeConnections() {
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.connections))
	for conn := range s.connections {
		conns = append(conns, conn)
	}
	s.mu.Unlock()
	for _, conn := range conns {
		_ = conn.Close() // Ignore close errors during shutdown
	}
}

// handleWebSocket upgrades the request and streams snapshots of one table.
// An optional token query parameter identifies the viewer.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	entry, err := s.registry.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	viewer := ""
	if token := r.URL.Query().Get("token"); token != "" {
		name, ok := s.sessions.Resolve(token)
		if !ok {
			writeError(w, errUnauthorized)
			return
		}
		viewer = name
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	c := NewConnection(conn, entry, viewer, s.logger)
	s.mu.Lock()
	s.connections[c] = true
	s.mu.Unlock()
	s.logger.Info("Client connected", "table", entry.ID, "viewer", viewer)

	c.Start()
	go func() {
		<-c.Done()
		s.mu.Lock()
		delete(s.connections, c)
		s.mu.Unlock()
		s.logger.Info("Client disconnected", "table", entry.ID, "viewer", viewer)
	}()
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the hijacker for websocket upgrades.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Upgrade") != "" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("Request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
