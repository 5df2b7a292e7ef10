package game

import "fmt"

// State is the phase of the hand in progress.
type State int

const (
	Waiting State = iota
	Preflop
	Flop
	Turn
	River
	GameOver
)

// String returns the string representation of a state
func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case GameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for st := Waiting; st <= GameOver; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

// Betting reports whether players may act in this state.
func (s State) Betting() bool {
	return s >= Preflop && s <= River
}

// communityCount is the number of board cards dealt on entering s.
func (s State) communityCount() int {
	switch s {
	case Flop:
		return 3
	case Turn, River:
		return 1
	default:
		return 0
	}
}

// PlayerStatus is a player's standing in the current hand.
type PlayerStatus int

const (
	StatusActive PlayerStatus = iota
	StatusSmallBlind
	StatusBigBlind
	StatusRetired
	StatusWinner
)

// String returns the string representation of a status
func (s PlayerStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusSmallBlind:
		return "small_blind"
	case StatusBigBlind:
		return "big_blind"
	case StatusRetired:
		return "retired"
	case StatusWinner:
		return "winner"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s PlayerStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *PlayerStatus) UnmarshalText(text []byte) error {
	for st := StatusActive; st <= StatusWinner; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown player status %q", text)
}
