package main

import (
	"fmt"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokeronline/internal/auth"
	"github.com/lox/pokeronline/internal/lobby"
	"github.com/lox/pokeronline/internal/randutil"
	"github.com/lox/pokeronline/internal/server"
)

// ServeCmd runs the HTTP and websocket server.
type ServeCmd struct {
	Config   string `short:"c" default:"pokeronline.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Seed     *int64 `help:"Deterministic RNG seed for table shuffles (optional)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	addr := cfg.Addr()
	if c.Addr != "" {
		addr = c.Addr
	}

	logger, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(logger)
	defer cancel()

	store, err := auth.Open(ctx, cfg.AuthStoreConfig(), auth.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	seed := randutil.NewSeed()
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	}

	mmCfg, interval, matchmaking, err := cfg.MatchmakerSettings()
	if err != nil {
		return err
	}
	maxTables := 0
	if matchmaking {
		maxTables = cfg.Matchmaker.MaxTables + len(cfg.Tables)
	}
	registry := lobby.NewRegistry(maxTables, lobby.WithLogger(logger), lobby.WithSeed(seed))

	templates := make([]lobby.Template, 0, len(cfg.Tables))
	for _, tc := range cfg.Tables {
		tmpl, err := tc.Template()
		if err != nil {
			return err
		}
		templates = append(templates, tmpl)

		entry, err := registry.Create(tmpl)
		if err != nil {
			return err
		}
		logger.Info("Created table",
			"id", entry.ID,
			"name", tmpl.Name,
			"stakes", fmt.Sprintf("%d/%d", tmpl.Config.SmallBlind, tmpl.Config.BigBlind),
			"max_seats", tmpl.Config.MaxSeats,
			"action_timeout", tmpl.ActionTimeout)
	}

	var matchmaker *lobby.Matchmaker
	if matchmaking {
		matchmaker, err = lobby.NewMatchmaker(registry, mmCfg)
		if err != nil {
			return err
		}
	}

	srv := server.NewServer(server.Options{
		Registry:   registry,
		Matchmaker: matchmaker,
		Store:      store,
		Sessions:   auth.NewSessions(quartz.NewReal(), cfg.SessionTTLDuration()),
		Templates:  templates,
		Logger:     logger,
	})

	logger.Info("Starting pokeronline server",
		"addr", addr,
		"tables", len(templates),
		"auth", cfg.Auth.Driver,
		"matchmaking", matchmaking)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(gctx, addr) })
	if matchmaker != nil {
		g.Go(func() error { return matchmaker.Run(gctx, interval) })
	}
	return g.Wait()
}
