package game

import "fmt"

// MaxSeatsLimit keeps every seat's hole cards plus a full board inside one deck.
const MaxSeatsLimit = 22

// Config holds the table limits and stakes.
type Config struct {
	MaxSeats   int
	MinPlayers int
	SmallBlind int
	BigBlind   int
	// StreetBet opens each post-flop betting round. Zero means a round only
	// closes once somebody raises.
	StreetBet int
}

// DefaultConfig returns a ten-seat 1/2 table whose streets open at the big blind.
func DefaultConfig() Config {
	return Config{
		MaxSeats:   10,
		MinPlayers: 2,
		SmallBlind: 1,
		BigBlind:   2,
		StreetBet:  2,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.MaxSeats < 2 || c.MaxSeats > MaxSeatsLimit {
		return fmt.Errorf("max seats must be between 2 and %d, got %d", MaxSeatsLimit, c.MaxSeats)
	}
	if c.MinPlayers < 2 || c.MinPlayers > c.MaxSeats {
		return fmt.Errorf("min players must be between 2 and %d, got %d", c.MaxSeats, c.MinPlayers)
	}
	if c.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive, got %d", c.SmallBlind)
	}
	if c.BigBlind <= c.SmallBlind {
		return fmt.Errorf("big blind (%d) must be greater than small blind (%d)", c.BigBlind, c.SmallBlind)
	}
	if c.StreetBet < 0 {
		return fmt.Errorf("street bet cannot be negative, got %d", c.StreetBet)
	}
	return nil
}
