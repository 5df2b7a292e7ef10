package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sanity-io/litter"

	"github.com/lox/pokeronline/internal/fileutil"
	"github.com/lox/pokeronline/internal/game"
	"github.com/lox/pokeronline/internal/phh"
	"github.com/lox/pokeronline/internal/randutil"
	"github.com/lox/pokeronline/internal/simulator"
)

// SimulateCmd plays bot hands on an in-process table.
type SimulateCmd struct {
	Hands      int      `short:"n" default:"100" help:"Number of hands to play"`
	Players    []string `short:"p" default:"call,random,maniac" help:"Strategy per seat (fold, call, random, maniac)"`
	Chips      int      `default:"200" help:"Starting chips per player"`
	SmallBlind int      `default:"1" help:"Small blind amount"`
	BigBlind   int      `default:"2" help:"Big blind amount"`
	StreetBet  *int     `help:"Opening bet on each post-flop street (defaults to the big blind)"`
	Seed       *int64   `help:"Deterministic RNG seed (optional)"`
	Verbose    bool     `short:"V" help:"Print every hand"`
	ShowCards  bool     `help:"Reveal all hole cards in the hand log"`
	NoColor    bool     `help:"Disable colored output"`
	Dump       bool     `help:"Dump the raw result structure"`
	History    string   `type:"path" help:"Write every hand to this PHH file"`
	Out        string   `short:"o" type:"path" help:"Write a JSON summary to this file"`
	LogLevel   string   `default:"warn" help:"Log level"`
}

func (c *SimulateCmd) Run() error {
	if c.NoColor {
		disableColor()
	}
	logger, err := newLogger(c.LogLevel)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(logger)
	defer cancel()

	seed := randutil.NewSeed()
	if c.Seed != nil {
		seed = *c.Seed
	}

	tableCfg := game.DefaultConfig()
	tableCfg.MaxSeats = max(len(c.Players), 2)
	tableCfg.SmallBlind = c.SmallBlind
	tableCfg.BigBlind = c.BigBlind
	tableCfg.StreetBet = c.BigBlind
	if c.StreetBet != nil {
		tableCfg.StreetBet = *c.StreetBet
	}

	seats := make([]simulator.Seat, len(c.Players))
	for i, strategy := range c.Players {
		seats[i] = simulator.Seat{Name: fmt.Sprintf("%s%d", strings.ToLower(strategy), i+1), Strategy: strategy}
	}

	cfg := simulator.Config{
		Hands:         c.Hands,
		Seed:          seed,
		Table:         tableCfg,
		StartingChips: c.Chips,
		Seats:         seats,
		Logger:        logger,
		ShowHoleCards: c.ShowCards,
	}
	if c.Verbose {
		cfg.HandLog = os.Stdout
	}

	sim, err := simulator.New(cfg)
	if err != nil {
		return err
	}

	var recorder *phh.Recorder
	if c.History != "" {
		recorder = phh.NewRecorder("simulation", tableCfg, c.Hands)
		sim.Table().Subscribe(recorder)
	}

	result, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	if recorder != nil {
		err := fileutil.WriteAtomic(c.History, 0o644, func(w io.Writer) error {
			return phh.EncodeAll(w, recorder.Hands())
		})
		if err != nil {
			return fmt.Errorf("writing hand history: %w", err)
		}
		logger.Info("Wrote hand history", "path", c.History, "hands", len(recorder.Hands()))
	}
	if c.Out != "" {
		if err := fileutil.WriteJSONAtomic(c.Out, summarize(result), 0o644); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
		logger.Info("Wrote summary", "path", c.Out)
	}

	if c.Dump {
		litter.Config.HidePrivateFields = true
		litter.Dump(result)
		return nil
	}
	return printSimulation(os.Stdout, result, c.Hands)
}

func printSimulation(w io.Writer, r *simulator.Result, requested int) error {
	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Simulation: %d of %d hands (seed %d)", r.HandsPlayed, requested, r.Seed)))
	if r.Finished {
		_, _ = fmt.Fprintln(w, dimStyle.Render("Stopped early: only one player has chips left"))
	}
	_, _ = fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "Player\tStrategy\tChips\tbb/100\t95% CI\tShowdown wins\tOther wins")
	for _, p := range r.Players {
		low, high := p.Stats.ConfidenceInterval95()
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t[%.1f, %.1f]\t%d\t%d\n",
			nameStyle.Render(p.Name),
			p.Strategy,
			p.Chips,
			signed(p.Stats.Mean(), fmt.Sprintf("%+.1f", p.Stats.BB100())),
			low*100, high*100,
			p.Stats.ShowdownWins,
			p.Stats.NonShowdownWins)
	}
	return tw.Flush()
}

type simulationSummary struct {
	Seed        int64           `json:"seed"`
	HandsPlayed int             `json:"hands_played"`
	Finished    bool            `json:"finished"`
	Players     []playerSummary `json:"players"`
}

type playerSummary struct {
	Name            string     `json:"name"`
	Strategy        string     `json:"strategy"`
	Chips           int        `json:"chips"`
	Hands           int        `json:"hands"`
	BB100           float64    `json:"bb_per_100"`
	CI95            [2]float64 `json:"ci95_bb_per_100"`
	StdDev          float64    `json:"std_dev_bb"`
	Median          float64    `json:"median_bb"`
	ShowdownWins    int        `json:"showdown_wins"`
	NonShowdownWins int        `json:"non_showdown_wins"`
	MaxPotBB        float64    `json:"max_pot_bb"`
}

func summarize(r *simulator.Result) simulationSummary {
	out := simulationSummary{Seed: r.Seed, HandsPlayed: r.HandsPlayed, Finished: r.Finished}
	for _, p := range r.Players {
		low, high := p.Stats.ConfidenceInterval95()
		out.Players = append(out.Players, playerSummary{
			Name:            p.Name,
			Strategy:        p.Strategy,
			Chips:           p.Chips,
			Hands:           p.Stats.Hands,
			BB100:           p.Stats.BB100(),
			CI95:            [2]float64{low * 100, high * 100},
			StdDev:          p.Stats.StdDev(),
			Median:          p.Stats.Median(),
			ShowdownWins:    p.Stats.ShowdownWins,
			NonShowdownWins: p.Stats.NonShowdownWins,
			MaxPotBB:        p.Stats.MaxPotBB,
		})
	}
	return out
}
