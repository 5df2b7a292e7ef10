package game

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokeronline/internal/deck"
)

// fixedRand always picks the same index, so the first seated player posts
// the small blind and shuffles are repeatable.
type fixedRand struct{ n int }

func (f fixedRand) IntN(n int) int { return f.n % n }

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newTestTable(t *testing.T, cfg Config, opts ...Option) *Table {
	t.Helper()
	opts = append([]Option{WithRand(fixedRand{}), WithID("test"), WithLogger(testLogger())}, opts...)
	tbl, err := NewTable(cfg, opts...)
	require.NoError(t, err)
	return tbl
}

func seat(t *testing.T, tbl *Table, chips int, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := tbl.Join(name, chips)
		require.NoError(t, err)
	}
}

// stack fixes the deal. Hole cards go out one at a time in seat order, then
// the flop, turn and river.
func stack(tbl *Table, cards string) {
	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	tbl.deck = deck.NewStackedDeck(fixedRand{}, deck.MustParseCards(cards)...)
}

func act(t *testing.T, tbl *Table, name string, a Action) {
	t.Helper()
	require.NoError(t, tbl.Act(name, a), "%s %s", name, a)
}

func call(t *testing.T, tbl *Table, name string) {
	t.Helper()
	act(t, tbl, name, Action{Kind: Call})
}

func playerState(t *testing.T, tbl *Table, name string) PlayerSnapshot {
	t.Helper()
	p, ok := tbl.Snapshot().Player(name)
	require.True(t, ok, "player %s not seated", name)
	return p
}

func currentName(tbl *Table) string {
	return tbl.Snapshot().CurrentPlayer
}
