package lobby

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokeronline/internal/game"
)

// TurnTimer folds the current player if they have not acted within the
// timeout. It rearms on every state change of its table.
type TurnTimer struct {
	table   *game.Table
	timeout time.Duration
	clock   quartz.Clock
	logger  *log.Logger

	mu      sync.Mutex
	timer   *quartz.Timer
	seq     uint64 // event the armed timer belongs to
	player  string
	stopped bool

	timeouts    atomic.Uint64
	unsubscribe func()
}

// NewTurnTimer subscribes to table and arms for whoever is due to act.
func NewTurnTimer(table *game.Table, timeout time.Duration, clock quartz.Clock, logger *log.Logger) *TurnTimer {
	t := &TurnTimer{
		table:   table,
		timeout: timeout,
		clock:   clock,
		logger:  logger.WithPrefix("timer").With("table", table.ID()),
	}
	t.unsubscribe = table.SubscribeFunc(t.onEvent)

	s := table.Snapshot()
	t.rearm(s.Seq, s.State, s.CurrentPlayer)
	return t
}

// Timeouts returns how many players have been folded for taking too long.
func (t *TurnTimer) Timeouts() uint64 {
	return t.timeouts.Load()
}

// Pending returns the player the armed timer will fold, if any.
func (t *TurnTimer) Pending() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.player, t.timer != nil
}

// Stop disarms the timer and unsubscribes from the table.
func (t *TurnTimer) Stop() {
	t.unsubscribe()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.disarmLocked()
}

func (t *TurnTimer) onEvent(e game.Event) {
	sc, ok := e.(game.StateChangedEvent)
	if !ok {
		return
	}
	t.rearm(sc.Seq, sc.Snapshot.State, sc.Snapshot.CurrentPlayer)
}

func (t *TurnTimer) rearm(seq uint64, state game.State, player string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || seq < t.seq {
		return
	}
	t.disarmLocked()
	t.seq = seq
	if !state.Betting() || player == "" {
		return
	}

	t.player = player
	t.timer = t.clock.AfterFunc(t.timeout, func() { t.expire(seq, player) }, "lobby", "turn")
}

func (t *TurnTimer) disarmLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.player = ""
}

func (t *TurnTimer) expire(seq uint64, player string) {
	t.mu.Lock()
	if t.stopped || seq != t.seq || player != t.player {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.mu.Unlock()

	// Fold is rejected if the player acted after the timer fired.
	if err := t.table.Act(player, game.Action{Kind: game.Fold}); err != nil {
		t.logger.Debug("Timeout fold skipped", "player", player, "error", err)
		return
	}
	t.timeouts.Add(1)
	t.logger.Warn("Player timed out and folded", "player", player, "timeout", t.timeout)
}
