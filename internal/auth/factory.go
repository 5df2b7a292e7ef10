package auth

import (
	"context"
	"fmt"
	"strings"
)

const (
	DriverMemory = "memory"
	DriverHTTP   = "http"
)

// Config selects and configures an account store.
type Config struct {
	Driver string // memory, sqlite, postgres or http
	DSN    string // database DSN, or the service URL for http
	Secret string // admin secret sent to the http service
	Cost   int    // bcrypt cost; zero uses the default
}

// Open creates the store named by cfg.Driver.
func Open(ctx context.Context, cfg Config, opts ...Option) (Store, error) {
	if cfg.Cost > 0 {
		opts = append(opts, WithCost(cfg.Cost))
	}

	switch driver := strings.ToLower(strings.TrimSpace(cfg.Driver)); driver {
	case "", DriverMemory:
		return NewMemoryStore(opts...), nil
	case DriverSQLite, DriverPostgres:
		return OpenSQL(ctx, driver, cfg.DSN, opts...)
	case "postgresql":
		return OpenSQL(ctx, DriverPostgres, cfg.DSN, opts...)
	case DriverHTTP:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("http auth driver requires a url")
		}
		return NewRemoteStore(cfg.DSN, cfg.Secret, opts...), nil
	default:
		return nil, fmt.Errorf("invalid auth driver %q (supported: memory, sqlite, postgres, http)", cfg.Driver)
	}
}
