package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/pokeronline/internal/client"
	"github.com/lox/pokeronline/internal/fileutil"
)

// HistoryCmd downloads a table's recent hands in PHH format.
type HistoryCmd struct {
	ServerFlags
	Table    string `arg:"" help:"Table id"`
	Username string `short:"u" env:"POKERONLINE_USERNAME" help:"Log in to see your own hole cards"`
	Password string `env:"POKERONLINE_PASSWORD" help:"Account password"`
	Out      string `short:"o" type:"path" help:"Write to this file instead of stdout"`
}

func (c *HistoryCmd) Run() error {
	cl, err := client.New(c.Server, log.NewWithOptions(io.Discard, log.Options{}))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if c.Username != "" {
		if err := cl.Login(ctx, c.Username, c.Password); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		defer func() { _ = cl.Logout(context.Background()) }()
	}

	data, err := cl.History(ctx, c.Table)
	if err != nil {
		return err
	}
	if c.Out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return fileutil.WriteFileAtomic(c.Out, data, 0o644)
}
