package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/pokeronline/internal/game"
)

// ErrQuit is returned by ParseCommand for "quit" and "exit".
var ErrQuit = errors.New("quit")

// ParseCommand turns typed input into an action. Accepted forms:
//
//	f, fold
//	k, check
//	c, call
//	r N, raise N, raise to N, bet N
//	allin, shove
//
// allin needs the player's stack, so it is returned as a raise to -1 and
// resolved against the current snapshot by the caller.
func ParseCommand(input string) (game.Action, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return game.Action{}, errors.New("type an action: fold, check, call, raise N or allin")
	}

	switch fields[0] {
	case "q", "quit", "exit":
		return game.Action{}, ErrQuit
	case "f", "fold":
		return game.Action{Kind: game.Fold}, nil
	case "k", "check", "x":
		return game.Action{Kind: game.Check}, nil
	case "c", "call":
		return game.Action{Kind: game.Call}, nil
	case "allin", "all-in", "shove", "jam":
		return game.Action{Kind: game.Raise, Amount: -1}, nil
	case "r", "raise", "b", "bet":
		args := fields[1:]
		if len(args) > 0 && args[0] == "to" {
			args = args[1:]
		}
		if len(args) != 1 {
			return game.Action{}, fmt.Errorf("%s needs an amount, e.g. %q", fields[0], "raise 10")
		}
		amount, err := strconv.Atoi(strings.TrimPrefix(args[0], "$"))
		if err != nil || amount <= 0 {
			return game.Action{}, fmt.Errorf("invalid amount %q", args[0])
		}
		return game.Action{Kind: game.Raise, Amount: amount}, nil
	default:
		return game.Action{}, fmt.Errorf("unknown command %q", fields[0])
	}
}
