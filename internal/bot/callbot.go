package bot

import (
	"github.com/charmbracelet/log"

	"github.com/lox/pokeronline/internal/game"
)

// CallBot checks or calls every street and never raises.
type CallBot struct {
	logger *log.Logger
}

// NewCallBot creates a new CallBot instance
func NewCallBot(logger *log.Logger) *CallBot {
	return &CallBot{logger: logger}
}

func (c *CallBot) Decide(v View) game.Action {
	return passive(LegalOptions(v), game.Call)
}
