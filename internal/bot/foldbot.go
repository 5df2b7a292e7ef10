package bot

import (
	"github.com/charmbracelet/log"

	"github.com/lox/pokeronline/internal/game"
)

// FoldBot checks when it can and folds to any bet.
type FoldBot struct {
	logger *log.Logger
}

// NewFoldBot creates a new FoldBot instance
func NewFoldBot(logger *log.Logger) *FoldBot {
	return &FoldBot{logger: logger}
}

func (f *FoldBot) Decide(v View) game.Action {
	return passive(LegalOptions(v), game.Fold)
}
