package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formatHand(t *testing.T, opts FormattingOptions, play func(tbl *Table)) []string {
	t.Helper()
	tbl := newTestTable(t, DefaultConfig())
	formatter := NewEventFormatter(opts)

	var lines []string
	tbl.SubscribeFunc(func(e Event) {
		lines = append(lines, formatter.Format(e.(StateChangedEvent))...)
	})
	seat(t, tbl, 100, "alice", "bob")
	stack(tbl, "AsKdAh2c"+"Qs7h3c"+"9d"+"Jc")
	require.NoError(t, tbl.StartGame())
	play(tbl)
	return lines
}

func TestEventFormatterShowdown(t *testing.T) {
	lines := formatHand(t, FormattingOptions{Perspective: "alice"}, func(tbl *Table) {
		for tbl.State() != GameOver {
			require.NoError(t, tbl.CurrentPlayer().Call())
		}
	})

	assert.Equal(t, []string{
		"alice sits down with 100 chips",
		"bob sits down with 100 chips",
		lines[2],
		"alice posts small blind 1",
		"bob posts big blind 2",
		"Dealt to alice [A♠ A♥]",
		"alice: calls 1",
		"bob: calls (nothing to add)",
		"*** FLOP *** [Q♠ 7♥ 3♣]",
		"alice: calls 2",
		"bob: calls 2",
		"*** TURN *** [Q♠ 7♥ 3♣ 9♦]",
		"alice: calls 2",
		"bob: calls 2",
		"*** RIVER *** [Q♠ 7♥ 3♣ 9♦ J♣]",
		"alice shows [A♠ A♥] (Pair of Aces)",
		"bob shows [K♦ 2♣] (High Card, King)",
		"alice wins 12 with Pair of Aces",
	}, lines)
	assert.True(t, strings.HasPrefix(lines[2], "Hand #1 (hand_"))
}

func TestEventFormatterUncontested(t *testing.T) {
	lines := formatHand(t, FormattingOptions{ShowHoleCards: true}, func(tbl *Table) {
		require.NoError(t, tbl.Player("alice").Call())
		require.NoError(t, tbl.Player("bob").Call())
		require.NoError(t, tbl.Player("alice").Raise(4))
		require.NoError(t, tbl.Player("bob").Fold())
	})

	assert.Contains(t, lines, "Dealt to alice [A♠ A♥]")
	assert.Contains(t, lines, "Dealt to bob [K♦ 2♣]")
	assert.Equal(t, []string{
		"*** FLOP *** [Q♠ 7♥ 3♣]",
		"alice: raises to 4",
		"bob: folds",
		"alice wins 4 uncontested",
	}, lines[len(lines)-4:])
}

func TestEventFormatterAllInRunout(t *testing.T) {
	lines := formatHand(t, FormattingOptions{}, func(tbl *Table) {
		require.NoError(t, tbl.Player("alice").Raise(100))
		require.NoError(t, tbl.Player("bob").Call())
	})

	assert.Contains(t, lines, "alice: raises to 100 and is all-in")
	assert.Contains(t, lines, "bob: calls 98 and is all-in")
	assert.Contains(t, lines, "*** FLOP *** [Q♠ 7♥ 3♣]")
	assert.Contains(t, lines, "*** TURN *** [Q♠ 7♥ 3♣ 9♦]")
	assert.Contains(t, lines, "*** RIVER *** [Q♠ 7♥ 3♣ 9♦ J♣]")
	assert.Equal(t, "alice wins 200 with Pair of Aces", lines[len(lines)-1])
}
