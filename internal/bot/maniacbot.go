package bot

import (
	"github.com/charmbracelet/log"

	"github.com/lox/pokeronline/internal/game"
	"github.com/lox/pokeronline/internal/randutil"
)

// ManiacBot raises most of the time and shoves short stacks.
type ManiacBot struct {
	rng    randutil.Source
	logger *log.Logger
}

// NewManiacBot creates a new ManiacBot instance
func NewManiacBot(rng randutil.Source, logger *log.Logger) *ManiacBot {
	return &ManiacBot{rng: rng, logger: logger}
}

func (m *ManiacBot) Decide(v View) game.Action {
	opts := LegalOptions(v)
	raise, canRaise := find(opts, game.Raise)
	roll := m.rng.IntN(100)

	if canRaise {
		switch {
		case v.Self.Chips <= 20*v.BigBlind || roll < 30:
			return game.Action{Kind: game.Raise, Amount: raise.Max}
		case roll < 80:
			// Three quarters of the way to a shove
			return game.Action{Kind: game.Raise, Amount: raise.Min + (raise.Max-raise.Min)*3/4}
		}
	}
	if v.ToCall() == 0 {
		return game.Action{Kind: game.Check}
	}
	if roll < 90 {
		return game.Action{Kind: game.Call}
	}
	return game.Action{Kind: game.Fold}
}
