package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lox/pokeronline/internal/auth"
	"github.com/lox/pokeronline/internal/server"
)

const accountTimeout = 10 * time.Second

// AccountCmd groups account management commands.
type AccountCmd struct {
	Create AccountCreateCmd `cmd:"" help:"Create an account"`
	Check  AccountCheckCmd  `cmd:"" help:"Check a username and password"`
}

// StoreFlags select the account store, defaulting to the server config.
type StoreFlags struct {
	Config string `short:"c" default:"pokeronline.hcl" help:"Path to HCL configuration file"`
	Driver string `help:"Account store driver (overrides config)"`
	DSN    string `help:"Account store DSN or service URL (overrides config)"`
	Secret string `env:"POKERONLINE_AUTH_SECRET" help:"Admin secret for the http driver (overrides config)"`
}

func (f StoreFlags) open(ctx context.Context) (auth.Store, error) {
	cfg, err := server.LoadConfig(f.Config)
	if err != nil {
		return nil, err
	}
	storeCfg := cfg.AuthStoreConfig()
	if f.Driver != "" {
		storeCfg.Driver = f.Driver
	}
	if f.DSN != "" {
		storeCfg.DSN = f.DSN
	}
	if f.Secret != "" {
		storeCfg.Secret = f.Secret
	}
	if storeCfg.Driver == auth.DriverMemory {
		return nil, errors.New("the memory account store does not persist; choose sqlite, postgres or http")
	}
	logger, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		return nil, err
	}
	return auth.Open(ctx, storeCfg, auth.WithLogger(logger))
}

// AccountCreateCmd registers a new account.
type AccountCreateCmd struct {
	StoreFlags
	Username string `arg:"" help:"Username to create"`
	Password string `env:"POKERONLINE_PASSWORD" required:"" help:"Password for the new account"`
}

func (c *AccountCreateCmd) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), accountTimeout)
	defer cancel()

	store, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.CreateAccount(ctx, c.Username, c.Password); err != nil {
		return err
	}
	fmt.Printf("Created account %s\n", auth.NormalizeUsername(c.Username))
	return nil
}

// AccountCheckCmd verifies credentials against the store.
type AccountCheckCmd struct {
	StoreFlags
	Username string `arg:"" help:"Username to check"`
	Password string `env:"POKERONLINE_PASSWORD" required:"" help:"Password to check"`
}

func (c *AccountCheckCmd) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), accountTimeout)
	defer cancel()

	store, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ok, err := store.Authenticate(ctx, c.Username, c.Password)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("invalid credentials for %s", auth.NormalizeUsername(c.Username))
	}
	fmt.Printf("Credentials for %s are valid\n", auth.NormalizeUsername(c.Username))
	return nil
}
