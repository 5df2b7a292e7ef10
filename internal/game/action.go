package game

import (
	"fmt"
	"strings"
)

// ActionKind is one of the four player decisions.
type ActionKind int

const (
	Fold ActionKind = iota
	Call
	Raise
	Check
)

// String returns the string representation of an action kind
func (k ActionKind) String() string {
	switch k {
	case Fold:
		return "fold"
	case Call:
		return "call"
	case Raise:
		return "raise"
	case Check:
		return "check"
	default:
		return "unknown"
	}
}

// MarshalText encodes the action kind by name.
func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes an action kind by name.
func (k *ActionKind) UnmarshalText(text []byte) error {
	parsed, err := ParseActionKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseActionKind accepts "fold", "call", "raise" or "check" in any case.
func ParseActionKind(s string) (ActionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold":
		return Fold, nil
	case "call":
		return Call, nil
	case "raise":
		return Raise, nil
	case "check":
		return Check, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// Action is a decision submitted by the player whose turn it is. Amount is
// only used by Raise and is the new total bet for the round.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Amount int        `json:"amount,omitempty"`
}

func (a Action) String() string {
	if a.Kind == Raise {
		return fmt.Sprintf("raise to %d", a.Amount)
	}
	return a.Kind.String()
}

// ActionRecord is an applied action as seen in snapshots and events.
type ActionRecord struct {
	Player string `json:"player"`
	Action Action `json:"action"`
	// Paid is how many chips moved from the player's stack to their bet;
	// negative for a fold that took a bet back.
	Paid  int   `json:"paid"`
	State State `json:"state"`
	AllIn bool  `json:"all_in,omitempty"`
}
