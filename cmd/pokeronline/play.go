package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/pokeronline/internal/client"
	"github.com/lox/pokeronline/internal/lobby"
	"github.com/lox/pokeronline/internal/tui"
)

// ServerFlags point a client command at a running server.
type ServerFlags struct {
	Server string `short:"s" default:"http://localhost:8080" env:"POKERONLINE_SERVER" help:"Server base URL"`
}

// PlayCmd opens the terminal client on a table.
type PlayCmd struct {
	ServerFlags
	Table    string `arg:"" optional:"" help:"Table id (defaults to the first table, or matchmaking with --queue)"`
	Username string `short:"u" env:"POKERONLINE_USERNAME" help:"Account to play as (omit to spectate)"`
	Password string `env:"POKERONLINE_PASSWORD" help:"Account password"`
	Signup   bool   `help:"Create the account first"`
	Join     bool   `default:"true" negatable:"" help:"Take a seat if not already seated"`
	Queue    bool   `help:"Wait for the matchmaker to seat you"`
	LogFile  string `default:"pokeronline-client.log" help:"Write client logs to this file"`
	LogLevel string `default:"info" help:"Log level"`
}

func (c *PlayCmd) Run() error {
	logger, closeLog, err := fileLogger(c.LogFile, c.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signalContext(logger)
	defer cancel()

	cl, err := client.New(c.Server, logger)
	if err != nil {
		return err
	}
	if c.Username != "" {
		if c.Signup {
			if err := cl.Signup(ctx, c.Username, c.Password); err != nil {
				return fmt.Errorf("signup: %w", err)
			}
		}
		if err := cl.Login(ctx, c.Username, c.Password); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		defer func() { _ = cl.Logout(context.Background()) }()
	}

	tableID, err := c.pickTable(ctx, cl)
	if err != nil {
		return err
	}
	summary, err := cl.Table(ctx, tableID)
	if err != nil {
		return err
	}

	if c.Username != "" && c.Join && !c.Queue {
		_, err := cl.Join(ctx, tableID)
		if err != nil && client.StatusOf(err) != http.StatusConflict {
			return fmt.Errorf("join: %w", err)
		}
	}

	conn, err := cl.Dial(ctx, tableID)
	if err != nil {
		return err
	}
	defer conn.Close()

	model := tui.New(tui.Options{
		Username: cl.Username(),
		TableID:  tableID,
		BigBlind: summary.BigBlind,
		Actor:    conn,
		Events:   conn.Events(),
		Err:      conn.Err,
		Logger:   logger,
	})
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// pickTable resolves which table to open: the argument, the matchmaker's
// choice, or the first listed table.
func (c *PlayCmd) pickTable(ctx context.Context, cl *client.Client) (string, error) {
	if c.Table != "" {
		return c.Table, nil
	}
	if c.Queue {
		if c.Username == "" {
			return "", errors.New("--queue needs --username")
		}
		return waitForSeat(ctx, cl)
	}

	tables, err := cl.Tables(ctx)
	if err != nil {
		return "", err
	}
	if len(tables) == 0 {
		return "", errors.New("no tables are running")
	}
	return tables[0].ID, nil
}

func waitForSeat(ctx context.Context, cl *client.Client) (string, error) {
	status, err := cl.Enqueue(ctx)
	if err != nil {
		return "", fmt.Errorf("enqueue: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "Waiting for a seat (%d in queue)...\n", status.Waiting)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for status.TableID == "" {
		select {
		case <-ctx.Done():
			_ = cl.Dequeue(context.Background())
			return "", ctx.Err()
		case <-ticker.C:
		}
		if status, err = cl.QueueStatus(ctx); err != nil {
			return "", err
		}
	}
	return status.TableID, nil
}

func fileLogger(path, level string) (*log.Logger, func(), error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	var w io.Writer = io.Discard
	closeFn := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}
	return log.NewWithOptions(w, log.Options{Level: lvl, ReportTimestamp: true}), closeFn, nil
}

// TablesCmd lists the tables on a server.
type TablesCmd struct {
	ServerFlags
	NoColor bool `help:"Disable colored output"`
}

func (c *TablesCmd) Run() error {
	if c.NoColor {
		disableColor()
	}
	cl, err := client.New(c.Server, log.NewWithOptions(io.Discard, log.Options{}))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables, err := cl.Tables(ctx)
	if err != nil {
		return err
	}
	return printTables(os.Stdout, tables)
}

func printTables(w io.Writer, tables []lobby.Summary) error {
	if len(tables) == 0 {
		_, _ = fmt.Fprintln(w, dimStyle.Render("No tables running"))
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tName\tState\tPlayers\tBlinds\tHands")
	for _, t := range tables {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%d/%d\t%d\n",
			nameStyle.Render(t.ID), t.Name, t.State, t.Players, t.MaxSeats, t.SmallBlind, t.BigBlind, t.HandNumber)
	}
	return tw.Flush()
}
