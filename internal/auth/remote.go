package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RemoteStore delegates accounts to an external credential service over
// HTTP. The service exposes POST {url}/accounts and POST {url}/authenticate,
// both taking {"username","password"}.
type RemoteStore struct {
	url         string
	client      *http.Client
	adminSecret string
	opts        options
}

// NewRemoteStore creates a store that calls the credential service at url.
func NewRemoteStore(url, adminSecret string, opts ...Option) *RemoteStore {
	return &RemoteStore{
		url:         strings.TrimRight(url, "/"),
		adminSecret: adminSecret,
		client:      &http.Client{Timeout: 2 * time.Second},
		opts:        buildOptions(opts),
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authenticateResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func (s *RemoteStore) CreateAccount(ctx context.Context, username, password string) error {
	if err := validateCredentials(username, password); err != nil {
		return err
	}
	resp, err := s.post(ctx, "/accounts", username, password)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	case http.StatusConflict:
		return ErrUsernameTaken
	case http.StatusBadRequest:
		return ErrInvalidUsername
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}
}

func (s *RemoteStore) Authenticate(ctx context.Context, username, password string) (bool, error) {
	if NormalizeUsername(username) == "" || password == "" {
		return false, nil
	}
	resp, err := s.post(ctx, "/authenticate", username, password)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out authenticateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return false, fmt.Errorf("%w: decode error: %v", ErrUnavailable, err)
	}
	return out.Valid, nil
}

func (s *RemoteStore) post(ctx context.Context, path, username, password string) (*http.Response, error) {
	body, err := json.Marshal(credentialsRequest{Username: NormalizeUsername(username), Password: password})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.adminSecret != "" {
		req.Header.Set("X-Admin-Secret", s.adminSecret)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.opts.logger.Warn("Credential service unreachable", "url", s.url+path, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func (s *RemoteStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
