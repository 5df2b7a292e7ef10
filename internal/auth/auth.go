// Package auth stores player accounts and checks their credentials. The game
// engine never calls it; the server uses it to decide which username a
// connection may play as.
package auth

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidUsername = errors.New("auth: invalid username")
	ErrInvalidPassword = errors.New("auth: invalid password")
	ErrUsernameTaken   = errors.New("auth: username already exists")

	// ErrUnavailable indicates the credential backend could not be reached.
	// Callers may choose to fail open (allow) or fail closed (reject).
	ErrUnavailable = errors.New("auth: unavailable")
)

// Store is the account collaborator consumed by the server.
type Store interface {
	// CreateAccount registers a new account. It returns ErrUsernameTaken if
	// the normalized username already exists.
	CreateAccount(ctx context.Context, username, password string) error

	// Authenticate reports whether the credentials match a stored account.
	// An unknown user and a wrong password are both (false, nil).
	Authenticate(ctx context.Context, username, password string) (bool, error)

	Close() error
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_.-]{2,31}$`)

// NormalizeUsername is the canonical account key: trimmed and lower case.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername checks the username against the allowed pattern.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(strings.TrimSpace(username)) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePassword enforces bcrypt's 72 byte limit and a minimum length.
func ValidatePassword(password string) error {
	if len(password) < 6 || len(password) > 72 {
		return ErrInvalidPassword
	}
	return nil
}

// Option configures a store.
type Option func(*options)

type options struct {
	cost   int
	logger *log.Logger
}

// WithCost sets the bcrypt cost used for new password hashes.
func WithCost(cost int) Option {
	return func(o *options) { o.cost = cost }
}

// WithLogger sets the logger; stores log under the "auth" prefix.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(opts []Option) options {
	o := options{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	o.logger = o.logger.WithPrefix("auth")
	return o
}

func hashPassword(password string, cost int) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), cost)
}

func checkPassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

func validateCredentials(username, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	return ValidatePassword(password)
}
