// Package simulator plays bot-driven hands on a table and aggregates results.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/pokeronline/internal/bot"
	"github.com/lox/pokeronline/internal/game"
	"github.com/lox/pokeronline/internal/randutil"
	"github.com/lox/pokeronline/internal/statistics"
)

// maxActionsPerHand bounds a hand so a stuck strategy fails loudly.
const maxActionsPerHand = 1000

// Seat names a player and the strategy that plays it.
type Seat struct {
	Name     string
	Strategy string
}

// Config holds configuration for running simulations
type Config struct {
	Hands         int
	Seed          int64
	Table         game.Config
	StartingChips int
	Seats         []Seat
	Logger        *log.Logger

	// HandLog receives formatted hand histories when set.
	HandLog       io.Writer
	ShowHoleCards bool
}

// PlayerResult is one seat's outcome.
type PlayerResult struct {
	Name     string
	Strategy string
	Chips    int
	Stats    *statistics.Statistics
}

// Result summarises a simulation run.
type Result struct {
	Seed        int64
	HandsPlayed int
	// Finished is true when fewer than two players had chips left.
	Finished bool
	Players  []PlayerResult
}

// Simulator runs poker hand simulations
type Simulator struct {
	config Config
	table  *game.Table
	bots   map[string]bot.Bot
	logger *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) (*Simulator, error) {
	if config.Hands <= 0 {
		return nil, fmt.Errorf("hands must be positive, got %d", config.Hands)
	}
	if len(config.Seats) < 2 {
		return nil, fmt.Errorf("at least two seats are required, got %d", len(config.Seats))
	}
	if config.StartingChips <= 0 {
		return nil, fmt.Errorf("starting chips must be positive, got %d", config.StartingChips)
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	logger := config.Logger.WithPrefix("simulator")

	table, err := game.NewTable(config.Table,
		game.WithID("simulation"),
		game.WithRand(randutil.New(config.Seed)),
		game.WithLogger(config.Logger),
	)
	if err != nil {
		return nil, err
	}

	bots := make(map[string]bot.Bot, len(config.Seats))
	for i, seat := range config.Seats {
		b, err := bot.New(seat.Strategy, randutil.New(config.Seed+int64(i)+1), logger)
		if err != nil {
			return nil, fmt.Errorf("seat %s: %w", seat.Name, err)
		}
		if _, err := table.Join(seat.Name, config.StartingChips); err != nil {
			return nil, fmt.Errorf("seat %s: %w", seat.Name, err)
		}
		bots[seat.Name] = b
	}

	return &Simulator{config: config, table: table, bots: bots, logger: logger}, nil
}

// Table exposes the simulated table, mostly for inspection in tests.
func (s *Simulator) Table() *game.Table {
	return s.table
}

// Run plays up to config.Hands hands, stopping early once only one player
// has chips.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	if s.config.HandLog != nil {
		formatter := game.NewEventFormatter(game.FormattingOptions{ShowHoleCards: s.config.ShowHoleCards})
		unsubscribe := s.table.SubscribeFunc(func(e game.Event) {
			if sc, ok := e.(game.StateChangedEvent); ok {
				for _, line := range formatter.Format(sc) {
					_, _ = fmt.Fprintln(s.config.HandLog, line)
				}
			}
		})
		defer unsubscribe()
	}

	stats := make(map[string]*statistics.Statistics, len(s.config.Seats))
	for _, seat := range s.config.Seats {
		stats[seat.Name] = &statistics.Statistics{}
	}
	total := s.config.StartingChips * len(s.config.Seats)
	result := &Result{Seed: s.config.Seed}

	for hand := 0; hand < s.config.Hands; hand++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		before := s.table.Snapshot()
		final, err := s.playHand()
		if errors.Is(err, game.ErrInsufficientPlayers) {
			result.Finished = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", hand+1, err)
		}
		if err := s.table.ValidateChipConservation(total); err != nil {
			return nil, fmt.Errorf("hand %d: %w", hand+1, err)
		}
		if err := s.table.ValidateCards(); err != nil {
			return nil, fmt.Errorf("hand %d: %w", hand+1, err)
		}

		s.record(before, final, stats)
		result.HandsPlayed++
		s.table.Reset()
	}

	for _, p := range s.table.Snapshot().Players {
		st := stats[p.Username]
		if err := st.Validate(); err != nil {
			return nil, fmt.Errorf("statistics for %s: %w", p.Username, err)
		}
		result.Players = append(result.Players, PlayerResult{
			Name:     p.Username,
			Strategy: s.strategyOf(p.Username),
			Chips:    p.Chips,
			Stats:    st,
		})
	}
	if !result.Finished {
		result.Finished = countWithChips(result.Players) < 2
	}
	s.logger.Info("Simulation complete", "hands", result.HandsPlayed, "seed", s.config.Seed)
	return result, nil
}

// playHand starts a hand and asks bots to act until it is over.
func (s *Simulator) playHand() (game.Snapshot, error) {
	if err := s.table.StartGame(); err != nil {
		return game.Snapshot{}, err
	}

	for actions := 0; ; actions++ {
		snap := s.table.Snapshot()
		if !snap.State.Betting() {
			return snap, nil
		}
		if actions >= maxActionsPerHand {
			return snap, fmt.Errorf("hand did not finish after %d actions", actions)
		}

		view, err := bot.NewView(snap, snap.CurrentPlayer, s.config.Table.BigBlind)
		if err != nil {
			return snap, err
		}
		action := s.bots[snap.CurrentPlayer].Decide(view)
		if err := s.table.Act(snap.CurrentPlayer, action); err != nil {
			s.logger.Warn("Bot chose an illegal action, folding", "player", snap.CurrentPlayer, "action", action, "error", err)
			if err := s.table.Act(snap.CurrentPlayer, game.Action{Kind: game.Fold}); err != nil {
				return snap, err
			}
		}
	}
}

func (s *Simulator) record(before, final game.Snapshot, stats map[string]*statistics.Statistics) {
	pot := 0
	won := make(map[string]bool, len(final.Winners))
	for _, w := range final.Winners {
		pot += w.Amount
		if w.Amount > 0 {
			won[w.Username] = true
		}
	}
	showdown := make(map[string]bool, len(final.Showdown))
	for _, h := range final.Showdown {
		showdown[h.Username] = true
	}

	for _, p := range before.Players {
		if p.Chips == 0 {
			continue // sat out
		}
		after, _ := final.Player(p.Username)
		stats[p.Username].Add(statistics.HandResult{
			NetBB:          float64(after.Chips-p.Chips) / float64(s.config.Table.BigBlind),
			WentToShowdown: showdown[p.Username],
			Won:            won[p.Username],
			FinalPotSize:   pot,
			BigBlind:       s.config.Table.BigBlind,
		})
	}
}

func (s *Simulator) strategyOf(name string) string {
	for _, seat := range s.config.Seats {
		if seat.Name == name {
			return seat.Strategy
		}
	}
	return ""
}

func countWithChips(players []PlayerResult) int {
	n := 0
	for _, p := range players {
		if p.Chips > 0 {
			n++
		}
	}
	return n
}
