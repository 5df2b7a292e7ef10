// Package bot provides simple table strategies used by the simulator.
package bot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/pokeronline/internal/game"
	"github.com/lox/pokeronline/internal/randutil"
)

// View is what a bot sees when it is asked to act.
type View struct {
	Snapshot game.Snapshot
	Self     game.PlayerSnapshot
	BigBlind int
}

// Option is one legal action. Min and Max bound the raise target and are
// zero for other kinds.
type Option struct {
	Kind game.ActionKind
	Min  int
	Max  int
}

// Bot chooses an action for the seat it plays.
type Bot interface {
	Decide(v View) game.Action
}

// NewView builds the view of username from a snapshot.
func NewView(s game.Snapshot, username string, bigBlind int) (View, error) {
	self, ok := s.Player(username)
	if !ok {
		return View{}, fmt.Errorf("player %s not in snapshot", username)
	}
	return View{Snapshot: s, Self: self, BigBlind: bigBlind}, nil
}

// ToCall is what the player must add to match the current bet.
func (v View) ToCall() int {
	return max(v.Snapshot.CurrentBet-v.Self.Bet, 0)
}

// LegalOptions lists the actions the table would accept from the viewer.
func LegalOptions(v View) []Option {
	opts := []Option{{Kind: game.Fold}}
	if v.ToCall() == 0 {
		opts = append(opts, Option{Kind: game.Check})
	} else {
		opts = append(opts, Option{Kind: game.Call})
	}

	bet := v.Snapshot.CurrentBet
	minRaise := max(2*bet, bet+1, v.BigBlind)
	maxRaise := v.Self.Bet + v.Self.Chips
	if minRaise <= maxRaise {
		opts = append(opts, Option{Kind: game.Raise, Min: minRaise, Max: maxRaise})
	}
	return opts
}

func find(opts []Option, kind game.ActionKind) (Option, bool) {
	for _, o := range opts {
		if o.Kind == kind {
			return o, true
		}
	}
	return Option{}, false
}

// passive checks when it can and otherwise takes fallback.
func passive(opts []Option, fallback game.ActionKind) game.Action {
	if _, ok := find(opts, game.Check); ok {
		return game.Action{Kind: game.Check}
	}
	return game.Action{Kind: fallback}
}

// Strategies returns the names accepted by New.
func Strategies() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var constructors = map[string]func(rng randutil.Source, logger *log.Logger) Bot{
	"fold":   func(_ randutil.Source, logger *log.Logger) Bot { return NewFoldBot(logger) },
	"call":   func(_ randutil.Source, logger *log.Logger) Bot { return NewCallBot(logger) },
	"random": func(rng randutil.Source, logger *log.Logger) Bot { return NewRandBot(rng, logger) },
	"maniac": func(rng randutil.Source, logger *log.Logger) Bot { return NewManiacBot(rng, logger) },
}

// New builds the named strategy.
func New(name string, rng randutil.Source, logger *log.Logger) (Bot, error) {
	ctor, ok := constructors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (want one of %s)", name, strings.Join(Strategies(), ", "))
	}
	return ctor(rng, logger), nil
}
