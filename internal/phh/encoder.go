package phh

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/lox/pokeronline/internal/game"
)

// Encode writes the hand history to the provided writer in PHH TOML format.
func Encode(w io.Writer, hand *HandHistory) error {
	if hand == nil {
		return fmt.Errorf("phh: hand history is nil")
	}

	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// EncodeAll writes hands as a PHHS file: one numbered table per hand.
func EncodeAll(w io.Writer, hands []*HandHistory) error {
	for i, hand := range hands {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "[%d]\n", i+1); err != nil {
			return err
		}
		if err := Encode(w, hand); err != nil {
			return fmt.Errorf("phh: hand %d: %w", i+1, err)
		}
	}
	return nil
}

// FormatAction converts an applied table action to a PHH action string for
// player index seat (zero based).
func FormatAction(seat int, a game.ActionRecord) string {
	player := fmt.Sprintf("p%d", seat+1)
	switch a.Action.Kind {
	case game.Fold:
		return player + " f"
	case game.Check, game.Call:
		return player + " cc"
	case game.Raise:
		return fmt.Sprintf("%s cbr %d", player, a.Action.Amount)
	default:
		return fmt.Sprintf("# %s %s", player, a.Action)
	}
}
