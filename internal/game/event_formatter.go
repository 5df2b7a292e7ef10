package game

import (
	"fmt"
	"strings"

	"github.com/lox/pokeronline/internal/deck"
)

// FormattingOptions controls how events are rendered as hand-log lines.
type FormattingOptions struct {
	ShowHoleCards bool   // reveal every player's hole cards when the hand starts
	Perspective   string // reveal this player's hole cards only
}

// EventFormatter turns StateChangedEvents into human-readable hand-log lines.
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// Format returns the log lines for one event, oldest first.
func (ef *EventFormatter) Format(event StateChangedEvent) []string {
	s := event.Snapshot
	var lines []string

	switch event.Cause {
	case CauseJoin:
		p := s.Players[len(s.Players)-1]
		lines = append(lines, fmt.Sprintf("%s sits down with %d chips", p.Username, p.Chips))
	case CauseLeave:
		lines = append(lines, "A player left the table")
	case CauseReset:
		lines = append(lines, "Table reset")
	case CauseStart:
		lines = append(lines, ef.formatStart(s)...)
	case CauseAction:
		if event.Action != nil {
			lines = append(lines, ef.formatAction(*event.Action))
		}
	}

	if event.From.Betting() || event.From == Waiting {
		// A hand won by folds ends without dealing the remaining streets.
		for st := max(event.From+1, Flop); st <= event.To && st <= River && boardSize[st] <= len(s.Community); st++ {
			lines = append(lines, formatStreet(st, s.Community))
		}
	}
	if event.To == GameOver && event.From != GameOver {
		lines = append(lines, ef.formatResult(s)...)
	}
	return lines
}

func (ef *EventFormatter) formatStart(s Snapshot) []string {
	lines := []string{fmt.Sprintf("Hand #%d (%s)", s.HandNumber, s.HandID)}
	for _, p := range s.Players {
		switch p.Username {
		case s.SmallBlind:
			lines = append(lines, fmt.Sprintf("%s posts small blind %d", p.Username, p.Bet))
		case s.BigBlind:
			lines = append(lines, fmt.Sprintf("%s posts big blind %d", p.Username, p.Bet))
		}
	}
	for _, p := range s.Players {
		if len(p.Hole) == 0 {
			continue
		}
		if ef.opts.ShowHoleCards || p.Username == ef.opts.Perspective {
			lines = append(lines, fmt.Sprintf("Dealt to %s [%s]", p.Username, deck.FormatCards(p.Hole)))
		}
	}
	return lines
}

func (ef *EventFormatter) formatAction(rec ActionRecord) string {
	var text string
	switch rec.Action.Kind {
	case Fold:
		text = fmt.Sprintf("%s: folds", rec.Player)
	case Check:
		text = fmt.Sprintf("%s: checks", rec.Player)
	case Call:
		if rec.Paid == 0 {
			text = fmt.Sprintf("%s: calls (nothing to add)", rec.Player)
		} else {
			text = fmt.Sprintf("%s: calls %d", rec.Player, rec.Paid)
		}
	case Raise:
		text = fmt.Sprintf("%s: raises to %d", rec.Player, rec.Action.Amount)
	default:
		text = fmt.Sprintf("%s: %s", rec.Player, rec.Action)
	}
	if rec.AllIn {
		text += " and is all-in"
	}
	return text
}

var boardSize = map[State]int{Flop: 3, Turn: 4, River: 5}

func formatStreet(st State, board []deck.Card) string {
	return fmt.Sprintf("*** %s *** [%s]", strings.ToUpper(st.String()), deck.FormatCards(board[:boardSize[st]]))
}

func (ef *EventFormatter) formatResult(s Snapshot) []string {
	var lines []string
	for _, h := range s.Showdown {
		lines = append(lines, fmt.Sprintf("%s shows [%s] (%s)", h.Username, deck.FormatCards(h.Hole), h.Ranking.Describe()))
	}
	for _, w := range s.Winners {
		if w.Ranking != nil {
			lines = append(lines, fmt.Sprintf("%s wins %d with %s", w.Username, w.Amount, w.Ranking.Describe()))
		} else {
			lines = append(lines, fmt.Sprintf("%s wins %d uncontested", w.Username, w.Amount))
		}
	}
	return lines
}
