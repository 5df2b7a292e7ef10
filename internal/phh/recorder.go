package phh

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lox/pokeronline/internal/deck"
	"github.com/lox/pokeronline/internal/game"
)

// DefaultRecorderLimit is how many finished hands a Recorder keeps.
const DefaultRecorderLimit = 100

// Recorder is a table subscriber that builds a HandHistory for every hand
// that reaches GameOver. Hands abandoned by a reset are dropped.
type Recorder struct {
	table  string
	cfg    game.Config
	limit  int
	mu     sync.Mutex
	hand   *handState
	hands  []*HandHistory
	played int
}

type handState struct {
	history *HandHistory
	index   map[string]int // username -> PHH player index
	board   int            // community cards already recorded
}

// NewRecorder records hands for a table with the given name and stakes,
// keeping the most recent limit hands (DefaultRecorderLimit when limit <= 0).
func NewRecorder(table string, cfg game.Config, limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultRecorderLimit
	}
	return &Recorder{table: table, cfg: cfg, limit: limit}
}

// Hands returns the recorded hands, oldest first.
func (r *Recorder) Hands() []*HandHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*HandHistory(nil), r.hands...)
}

// Played returns how many hands have been recorded in total, including any
// that were evicted.
func (r *Recorder) Played() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.played
}

// OnEvent implements game.EventSubscriber.
func (r *Recorder) OnEvent(event game.Event) {
	e, ok := event.(game.StateChangedEvent)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch e.Cause {
	case game.CauseStart:
		r.startLocked(e)
	case game.CauseReset:
		r.hand = nil
		return
	case game.CauseAction:
		if r.hand != nil && e.Action != nil {
			if idx, ok := r.hand.index[e.Action.Player]; ok {
				r.hand.history.Actions = append(r.hand.history.Actions, FormatAction(idx, *e.Action))
			}
		}
	}
	if r.hand == nil {
		return
	}

	r.recordBoardLocked(e.Snapshot.Community)
	if e.To == game.GameOver {
		r.finishLocked(e.Snapshot)
	}
}

func (r *Recorder) startLocked(e game.StateChangedEvent) {
	s := e.Snapshot

	sb := 0
	for i, p := range s.Players {
		if p.Username == s.SmallBlind {
			sb = i
		}
	}

	h := &HandHistory{
		Variant:   VariantNoLimitHoldem,
		Table:     r.table,
		SeatCount: r.cfg.MaxSeats,
		MinBet:    r.cfg.BigBlind,
		HandID:    s.HandID,
		Timestamp: e.Timestamp().UTC(),
	}
	h.Time = h.Timestamp.Format("15:04:05")
	h.TimeZone = "UTC"
	h.Day, h.Month, h.Year = h.Timestamp.Day(), int(h.Timestamp.Month()), h.Timestamp.Year()

	state := &handState{history: h, index: make(map[string]int)}
	for k := range s.Players {
		p := s.Players[(sb+k)%len(s.Players)]
		if len(p.Hole) == 0 {
			continue // sitting out
		}
		state.index[p.Username] = len(h.Players)
		h.Players = append(h.Players, p.Username)
		h.Seats = append(h.Seats, p.Seat+1)
		h.Antes = append(h.Antes, 0)
		h.BlindsOrStraddles = append(h.BlindsOrStraddles, p.Bet)
		h.StartingStacks = append(h.StartingStacks, p.Chips+p.Bet)
	}
	for i, name := range h.Players {
		p, _ := s.Player(name)
		h.Actions = append(h.Actions, fmt.Sprintf("d dh p%d %s", i+1, codes(p.Hole)))
	}
	r.hand = state
}

// recordBoardLocked emits one deal action per street for newly dealt cards.
func (r *Recorder) recordBoardLocked(community []deck.Card) {
	for _, end := range []int{3, 4, 5} {
		if r.hand.board < end && len(community) >= end {
			cards := community[r.hand.board:end]
			r.hand.history.Actions = append(r.hand.history.Actions, "d db "+codes(cards))
			r.hand.history.Board = append(r.hand.history.Board, cardStrings(cards)...)
			r.hand.board = end
		}
	}
}

func (r *Recorder) finishLocked(s game.Snapshot) {
	h := r.hand.history
	for _, sd := range s.Showdown {
		if idx, ok := r.hand.index[sd.Username]; ok {
			h.Actions = append(h.Actions, fmt.Sprintf("p%d sm %s", idx+1, codes(sd.Hole)))
		}
	}

	h.FinishingStacks = make([]int, len(h.Players))
	h.Winnings = make([]int, len(h.Players))
	for i, name := range h.Players {
		if p, ok := s.Player(name); ok {
			h.FinishingStacks[i] = p.Chips
		}
	}
	for _, w := range s.Winners {
		if idx, ok := r.hand.index[w.Username]; ok {
			h.Winnings[idx] += w.Amount
		}
	}

	r.hands = append(r.hands, h)
	if len(r.hands) > r.limit {
		r.hands = r.hands[len(r.hands)-r.limit:]
	}
	r.played++
	r.hand = nil
}

func codes(cards []deck.Card) string {
	return strings.Join(cardStrings(cards), "")
}

func cardStrings(cards []deck.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Code()
	}
	return out
}
