package bot

import (
	"github.com/charmbracelet/log"

	"github.com/lox/pokeronline/internal/game"
	"github.com/lox/pokeronline/internal/randutil"
)

// RandBot picks uniformly among the legal actions.
type RandBot struct {
	rng    randutil.Source
	logger *log.Logger
}

// NewRandBot creates a new RandBot instance
func NewRandBot(rng randutil.Source, logger *log.Logger) *RandBot {
	return &RandBot{rng: rng, logger: logger}
}

func (r *RandBot) Decide(v View) game.Action {
	opts := LegalOptions(v)
	choice := opts[r.rng.IntN(len(opts))]
	if choice.Kind != game.Raise {
		return game.Action{Kind: choice.Kind}
	}
	// Raise amount between min and max
	return game.Action{Kind: game.Raise, Amount: choice.Min + r.rng.IntN(choice.Max-choice.Min+1)}
}
