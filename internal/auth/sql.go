package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    username TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL,
    created_at_ms BIGINT NOT NULL,
    last_login_at_ms BIGINT
)`

// SQLStore keeps accounts in SQLite or PostgreSQL through database/sql.
// Every statement is parameterized.
type SQLStore struct {
	db     *sql.DB
	driver string
	opts   options
}

// OpenSQL connects to the database and creates the accounts table if it is
// missing. driver is DriverSQLite or DriverPostgres.
func OpenSQL(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("empty %s dsn", driver)
	}
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// One connection keeps ":memory:" databases alive and serializes writers.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &SQLStore{db: db, driver: driver, opts: buildOptions(opts)}
	s.opts.logger.Debug("Account store ready", "driver", driver)
	return s, nil
}

func (s *SQLStore) CreateAccount(ctx context.Context, username, password string) error {
	if err := validateCredentials(username, password); err != nil {
		return err
	}
	key := NormalizeUsername(username)
	hash, err := hashPassword(password, s.opts.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
INSERT INTO accounts (username, password_hash, created_at_ms)
VALUES (?, ?, ?)
`), key, string(hash), time.Now().UTC().UnixMilli())
	if err != nil {
		if s.isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert account: %w", err)
	}
	s.opts.logger.Info("Account created", "username", key)
	return nil
}

func (s *SQLStore) Authenticate(ctx context.Context, username, password string) (bool, error) {
	key := NormalizeUsername(username)
	if key == "" || password == "" {
		return false, nil
	}

	var hash string
	err := s.db.QueryRowContext(ctx, s.rebind(`
SELECT password_hash
FROM accounts
WHERE username = ?
`), key).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup account: %w", err)
	}
	if !checkPassword([]byte(hash), password) {
		return false, nil
	}

	if _, err := s.db.ExecContext(ctx, s.rebind(`
UPDATE accounts
SET last_login_at_ms = ?
WHERE username = ?
`), time.Now().UTC().UnixMilli(), key); err != nil {
		s.opts.logger.Warn("Failed to record login", "username", key, "error", err)
	}
	return true, nil
}

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// rebind rewrites "?" placeholders as "$1", "$2", ... for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
