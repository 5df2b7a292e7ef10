package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lox/pokeronline/internal/auth"
	"github.com/lox/pokeronline/internal/game"
	"github.com/lox/pokeronline/internal/lobby"
	"github.com/lox/pokeronline/internal/phh"
)

const maxBodyBytes = 1 << 20

var (
	errUnauthorized  = errors.New("unauthorized")
	errBadRequest    = errors.New("bad request")
	errNoMatchmaker  = errors.New("matchmaking is not enabled")
	errUnknownLayout = errors.New("unknown table template")
	errNotSeated     = errors.New("only players seated at the table may do that")
)

// Credentials is the body of account creation and login requests.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse is returned by a successful login.
type SessionResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type CreateTableRequest struct {
	Template string `json:"template"`
}

// QueueResponse reports a player's matchmaking state.
type QueueResponse struct {
	Username string `json:"username"`
	Queued   bool   `json:"queued"`
	TableID  string `json:"table_id,omitempty"`
	Waiting  int    `json:"waiting"`
}

// authenticated resolves the bearer token before calling next.
func (s *Server) authenticated(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, ok := s.sessions.Resolve(bearerToken(r))
		if !ok {
			writeError(w, errUnauthorized)
			return
		}
		next(w, r, username)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req Credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.CreateAccount(r.Context(), req.Username, req.Password); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("Account created", "username", auth.NormalizeUsername(req.Username))
	writeJSON(w, http.StatusCreated, map[string]string{"username": auth.NormalizeUsername(req.Username)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req Credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ok, err := s.store.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, errUnauthorized)
		return
	}
	token := s.sessions.Issue(req.Username)
	writeJSON(w, http.StatusCreated, SessionResponse{Token: token, Username: auth.NormalizeUsername(req.Username)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Revoke(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request, username string) {
	var req CreateTableRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	tmpl, ok := s.templates[req.Template]
	if !ok {
		writeError(w, fmt.Errorf("%w %q", errUnknownLayout, req.Template))
		return
	}
	entry, err := s.registry.Create(tmpl)
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("Table created", "table", entry.ID, "template", tmpl.Name, "by", username)
	writeJSON(w, http.StatusCreated, entry.Summary())
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	entry, err := s.registry.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	viewer, _ := s.sessions.Resolve(bearerToken(r))
	writeJSON(w, http.StatusOK, entry.Table.Snapshot().Redacted(viewer))
}

// handleHistory serves the table's recent hands as a PHH file. Hole cards
// the caller never saw are hidden.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entry, err := s.registry.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	viewer, _ := s.sessions.Resolve(bearerToken(r))

	hands := entry.History().Hands()
	for i, h := range hands {
		hands[i] = h.Redacted(viewer)
	}

	var buf bytes.Buffer
	if err := phh.EncodeAll(&buf, hands); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/toml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleRemoveTable(w http.ResponseWriter, r *http.Request, username string) {
	entry, err := s.registry.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	// Empty tables can be removed by anyone; occupied ones only by a player at them.
	if len(entry.Table.Players()) > 0 && entry.Table.Player(username) == nil {
		writeError(w, errNotSeated)
		return
	}
	if err := s.registry.Remove(entry.ID); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("Table removed", "table", r.PathValue("id"), "by", username)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request, username string) {
	s.withTable(w, r, username, http.StatusCreated, func(entry *lobby.Entry) error {
		_, err := entry.Table.Join(username, entry.Template.StartingChips)
		return err
	})
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request, username string) {
	s.withTable(w, r, username, http.StatusOK, func(entry *lobby.Entry) error {
		return entry.Table.Leave(username)
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request, username string) {
	s.withTable(w, r, username, http.StatusOK, func(entry *lobby.Entry) error {
		if entry.Table.Player(username) == nil {
			return errNotSeated
		}
		return entry.Table.StartGame()
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, username string) {
	s.withTable(w, r, username, http.StatusOK, func(entry *lobby.Entry) error {
		if entry.Table.Player(username) == nil {
			return errNotSeated
		}
		entry.Table.Reset()
		return nil
	})
}

func (s *Server) handleAct(w http.ResponseWriter, r *http.Request, username string) {
	var action game.Action
	if err := decodeJSON(r, &action); err != nil {
		writeError(w, err)
		return
	}
	s.withTable(w, r, username, http.StatusOK, func(entry *lobby.Entry) error {
		return entry.Table.Act(username, action)
	})
}

// withTable runs op against the table named in the path and replies with
// the resulting snapshot as seen by username.
func (s *Server) withTable(w http.ResponseWriter, r *http.Request, username string, status int, op func(*lobby.Entry) error) {
	entry, err := s.registry.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := op(entry); err != nil {
		s.logger.Debug("Table operation rejected", "table", entry.ID, "username", username, "path", r.URL.Path, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, status, entry.Table.Snapshot().Redacted(username))
}

func (s *Server) handleQueueStatus(w http.ResponseWriter, r *http.Request, username string) {
	if s.matchmaker == nil {
		writeError(w, errNoMatchmaker)
		return
	}
	writeJSON(w, http.StatusOK, s.queueStatus(username))
}

func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request, username string) {
	if s.matchmaker == nil {
		writeError(w, errNoMatchmaker)
		return
	}
	if err := s.matchmaker.Enqueue(username); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, s.queueStatus(username))
}

func (s *Server) handleDequeue(w http.ResponseWriter, r *http.Request, username string) {
	if s.matchmaker == nil {
		writeError(w, errNoMatchmaker)
		return
	}
	s.matchmaker.Dequeue(username)
	writeJSON(w, http.StatusOK, s.queueStatus(username))
}

func (s *Server) queueStatus(username string) QueueResponse {
	tableID, seated := s.matchmaker.TableFor(username)
	return QueueResponse{
		Username: username,
		Queued:   !seated && s.matchmaker.Queued(username),
		TableID:  tableID,
		Waiting:  s.matchmaker.QueueLen(),
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errNotSeated):
		return http.StatusForbidden
	case errors.Is(err, errBadRequest),
		errors.Is(err, errUnknownLayout),
		errors.Is(err, auth.ErrInvalidUsername),
		errors.Is(err, auth.ErrInvalidPassword),
		errors.Is(err, game.ErrInvalidBuyIn):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrInvalidAction),
		errors.Is(err, game.ErrInsufficientPlayers),
		errors.Is(err, game.ErrInvalidState),
		errors.Is(err, game.ErrTableFull),
		errors.Is(err, game.ErrDuplicatePlayer),
		errors.Is(err, auth.ErrUsernameTaken),
		errors.Is(err, lobby.ErrAlreadyQueued):
		return http.StatusConflict
	case errors.Is(err, lobby.ErrTableNotFound),
		errors.Is(err, game.ErrUnknownPlayer),
		errors.Is(err, errNoMatchmaker):
		return http.StatusNotFound
	case errors.Is(err, lobby.ErrTooManyTables),
		errors.Is(err, auth.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	writeJSON(w, status, ErrorData{Error: err.Error(), Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
