// Package phh records finished hands in the Poker Hand History format.
package phh

import (
	"strconv"
	"strings"
	"time"
)

// VariantNoLimitHoldem is the PHH variant code for no-limit Texas Hold'em.
const VariantNoLimitHoldem = "NT"

// HandHistory represents a single poker hand encoded in PHH format. Players
// are numbered p1..pN starting from the small blind.
type HandHistory struct {
	Variant           string   `toml:"variant"`
	Table             string   `toml:"table,omitempty"`
	SeatCount         int      `toml:"seat_count,omitempty"`
	Seats             []int    `toml:"seats,omitempty"`
	Antes             []int    `toml:"antes"`
	BlindsOrStraddles []int    `toml:"blinds_or_straddles"`
	MinBet            int      `toml:"min_bet"`
	StartingStacks    []int    `toml:"starting_stacks"`
	FinishingStacks   []int    `toml:"finishing_stacks,omitempty"`
	Winnings          []int    `toml:"winnings,omitempty"`
	Actions           []string `toml:"actions"`
	Players           []string `toml:"players,omitempty"`
	HandID            string   `toml:"hand"`
	Time              string   `toml:"time,omitempty"`
	TimeZone          string   `toml:"time_zone,omitempty"`
	Day               int      `toml:"day,omitempty"`
	Month             int      `toml:"month,omitempty"`
	Year              int      `toml:"year,omitempty"`

	Board     []string  `toml:"-"`
	Timestamp time.Time `toml:"-"`
}

// Redacted returns a copy of the hand with hole cards hidden ("????") for
// every player other than viewer who did not show them down.
func (h *HandHistory) Redacted(viewer string) *HandHistory {
	shown := make(map[string]bool)
	for _, a := range h.Actions {
		if p, rest, ok := strings.Cut(a, " "); ok && strings.HasPrefix(rest, "sm ") {
			shown[p] = true
		}
	}

	out := *h
	out.Actions = make([]string, len(h.Actions))
	for i, a := range h.Actions {
		out.Actions[i] = a
		rest, ok := strings.CutPrefix(a, "d dh ")
		if !ok {
			continue
		}
		p, cards, _ := strings.Cut(rest, " ")
		idx, err := strconv.Atoi(strings.TrimPrefix(p, "p"))
		if err != nil || idx < 1 || idx > len(h.Players) {
			continue
		}
		if h.Players[idx-1] != viewer && !shown[p] {
			out.Actions[i] = "d dh " + p + " " + strings.Repeat("?", len(cards))
		}
	}
	return &out
}
