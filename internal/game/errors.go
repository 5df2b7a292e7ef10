package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAction is the umbrella for rejected player actions.
	ErrInvalidAction = errors.New("invalid action")

	ErrOutOfTurn         = errors.New("not this player's turn")
	ErrHandNotInProgress = errors.New("no betting round in progress")
	ErrUnknownPlayer     = errors.New("player is not seated at this table")
	ErrRaiseTooSmall     = errors.New("raise must be at least double the current bet")
	ErrInsufficientChips = errors.New("not enough chips")
	ErrCannotCheck       = errors.New("cannot check facing a bet")
	ErrUnknownAction     = errors.New("unknown action")

	ErrInsufficientPlayers = errors.New("at least two players with chips are required")
	ErrInvalidState        = errors.New("operation not allowed in the current state")
	ErrTableFull           = errors.New("table is full")
	ErrDuplicatePlayer     = errors.New("player already seated")
	ErrInvalidBuyIn        = errors.New("buy-in must be positive")
	ErrDeckExhausted       = errors.New("deck exhausted")
)

// ActionError describes a rejected action. It matches both ErrInvalidAction
// and the specific reason under errors.Is.
type ActionError struct {
	Player string
	Action Action
	Reason error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s by %s rejected: %v", e.Action, e.Player, e.Reason)
}

func (e *ActionError) Unwrap() []error {
	return []error{ErrInvalidAction, e.Reason}
}

func rejectAction(player string, a Action, reason error) error {
	return &ActionError{Player: player, Action: a, Reason: reason}
}
