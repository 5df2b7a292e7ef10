package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokeronline/internal/deck"
	"github.com/lox/pokeronline/internal/evaluator"
)

func TestNewTableRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BigBlind = cfg.SmallBlind
	_, err := NewTable(cfg)
	assert.Error(t, err)
}

func TestNewTableStartsWaiting(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	s := tbl.Snapshot()
	assert.Equal(t, Waiting, s.State)
	assert.Equal(t, "test", s.TableID)
	assert.Equal(t, deck.Size, s.DeckRemaining)
	assert.Empty(t, s.Community)
	assert.Nil(t, tbl.CurrentPlayer())
}

func TestGeneratedTableID(t *testing.T) {
	tbl, err := NewTable(DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, tbl.ID(), "table_")
}

func TestStartGameDealsAndPostsBlinds(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob", "carol")

	require.NoError(t, tbl.StartGame())
	s := tbl.Snapshot()

	assert.Equal(t, Preflop, s.State)
	assert.Equal(t, "alice", s.SmallBlind)
	assert.Equal(t, "bob", s.BigBlind)
	assert.Equal(t, "alice", s.CurrentPlayer)
	assert.Equal(t, 2, s.CurrentBet)
	assert.Equal(t, deck.Size-6, s.DeckRemaining)
	assert.Contains(t, s.HandID, "hand_")
	assert.Equal(t, 1, s.HandNumber)

	alice, _ := s.Player("alice")
	bob, _ := s.Player("bob")
	carol, _ := s.Player("carol")
	assert.Equal(t, StatusSmallBlind, alice.Status)
	assert.Equal(t, StatusBigBlind, bob.Status)
	assert.Equal(t, StatusActive, carol.Status)
	assert.Equal(t, 99, alice.Chips)
	assert.Equal(t, 1, alice.Bet)
	assert.Equal(t, 98, bob.Chips)
	assert.Equal(t, 2, bob.Bet)
	for _, p := range s.Players {
		assert.Len(t, p.Hole, 2, p.Username)
	}
	assert.NoError(t, tbl.ValidateCards())
	assert.Equal(t, 300, tbl.TotalChips())
}

func TestStartGameDealsRoundRobin(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob", "carol")
	stack(tbl, "As7c9sAh2d4h")

	require.NoError(t, tbl.StartGame())
	assert.Equal(t, deck.MustParseCards("AsAh"), tbl.Player("alice").Hand())
	assert.Equal(t, deck.MustParseCards("7c2d"), tbl.Player("bob").Hand())
	assert.Equal(t, deck.MustParseCards("9s4h"), tbl.Player("carol").Hand())
}

func TestStartGameRandomSmallBlind(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig(), WithRand(fixedRand{n: 2}))
	seat(t, tbl, 100, "alice", "bob", "carol")

	require.NoError(t, tbl.StartGame())
	s := tbl.Snapshot()
	assert.Equal(t, "carol", s.SmallBlind)
	assert.Equal(t, "alice", s.BigBlind, "big blind wraps to the first seat")
	assert.Equal(t, "carol", s.CurrentPlayer)
}

func TestStartGameRequiresTwoPlayers(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	err := tbl.StartGame()
	assert.ErrorIs(t, err, ErrInsufficientPlayers)

	seat(t, tbl, 100, "alice")
	err = tbl.StartGame()
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
	assert.Equal(t, Waiting, tbl.State())
}

func TestStartGameHonoursMinPlayers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinPlayers = 3
	tbl := newTestTable(t, cfg)
	seat(t, tbl, 100, "alice", "bob")
	assert.ErrorIs(t, tbl.StartGame(), ErrInsufficientPlayers)
}

func TestStartGameOnlyFromWaiting(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob")
	require.NoError(t, tbl.StartGame())
	assert.ErrorIs(t, tbl.StartGame(), ErrInvalidState)
}

func TestCallMovesChipsToBet(t *testing.T) {
	cfg := Config{MaxSeats: 6, MinPlayers: 2, SmallBlind: 10, BigBlind: 20, StreetBet: 20}
	tbl := newTestTable(t, cfg)
	seat(t, tbl, 100, "a", "b", "c", "d")
	require.NoError(t, tbl.StartGame())

	call(t, tbl, "a")
	act(t, tbl, "b", Action{Kind: Check})
	call(t, tbl, "c")

	c := playerState(t, tbl, "c")
	assert.Equal(t, 80, c.Chips)
	assert.Equal(t, 20, c.Bet)
	assert.Equal(t, Preflop, tbl.State())
	assert.Equal(t, "d", currentName(tbl))

	// Raising to less than double the current bet is rejected and changes nothing.
	before := tbl.Snapshot()
	err := tbl.Act("d", Action{Kind: Raise, Amount: 30})
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.ErrorIs(t, err, ErrRaiseTooSmall)
	assert.Equal(t, before, tbl.Snapshot())
}

func TestRaise(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob", "carol")
	require.NoError(t, tbl.StartGame())

	err := tbl.Act("alice", Action{Kind: Raise, Amount: 3})
	assert.ErrorIs(t, err, ErrRaiseTooSmall)

	err = tbl.Act("alice", Action{Kind: Raise, Amount: 101})
	assert.ErrorIs(t, err, ErrInsufficientChips)

	act(t, tbl, "alice", Action{Kind: Raise, Amount: 10})
	alice := playerState(t, tbl, "alice")
	assert.Equal(t, 10, alice.Bet)
	assert.Equal(t, 90, alice.Chips)
	assert.Equal(t, 10, tbl.CurrentBet())
	assert.Equal(t, "bob", currentName(tbl))

	// Everyone still in must match the raise before the flop comes.
	call(t, tbl, "bob")
	assert.Equal(t, Preflop, tbl.State())
	call(t, tbl, "carol")
	assert.Equal(t, Flop, tbl.State())
	assert.Equal(t, 30, tbl.Pot())
}

func TestRaiseAllInExactly(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob", "carol")
	require.NoError(t, tbl.StartGame())

	// Alice has 99 behind plus the 1 chip small blind.
	act(t, tbl, "alice", Action{Kind: Raise, Amount: 100})
	alice := playerState(t, tbl, "alice")
	assert.Zero(t, alice.Chips)
	assert.True(t, alice.AllIn)
	assert.True(t, tbl.Snapshot().LastAction.AllIn)
}

func TestRaiseMustBeFundedFromStack(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob")
	seat(t, tbl, 50, "carol")
	require.NoError(t, tbl.StartGame())

	act(t, tbl, "alice", Action{Kind: Raise, Amount: 20})
	call(t, tbl, "bob")
	require.Equal(t, "carol", currentName(tbl))

	// Raising to 60 costs carol 60 from a 50 chip stack, even though only
	// 40 of it is above the current bet.
	before := tbl.Snapshot()
	err := tbl.Act("carol", Action{Kind: Raise, Amount: 60})
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.ErrorIs(t, err, ErrInsufficientChips)
	assert.Equal(t, before, tbl.Snapshot())

	act(t, tbl, "carol", Action{Kind: Raise, Amount: 50})
	carol := playerState(t, tbl, "carol")
	assert.Zero(t, carol.Chips)
	assert.Equal(t, 50, carol.Bet)
	assert.Equal(t, 50, tbl.CurrentBet())
}

func TestCheckRequiresMatchedBet(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob", "carol")
	require.NoError(t, tbl.StartGame())

	err := tbl.Act("alice", Action{Kind: Check})
	assert.ErrorIs(t, err, ErrCannotCheck)
	assert.ErrorIs(t, err, ErrInvalidAction)

	call(t, tbl, "alice")
	act(t, tbl, "bob", Action{Kind: Check})
	assert.Equal(t, "carol", currentName(tbl))
}

func TestOutOfTurnRejected(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob", "carol")
	require.NoError(t, tbl.StartGame())

	err := tbl.Act("carol", Action{Kind: Call})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfTurn)
	assert.ErrorIs(t, err, ErrInvalidAction)

	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, "carol", actionErr.Player)
	assert.Equal(t, Call, actionErr.Action.Kind)

	assert.ErrorIs(t, tbl.Act("nobody", Action{Kind: Call}), ErrUnknownPlayer)
	assert.ErrorIs(t, tbl.Act("alice", Action{Kind: ActionKind(42)}), ErrUnknownAction)
}

func TestActionsRejectedOutsideHand(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob")

	err := tbl.Player("alice").Call()
	assert.ErrorIs(t, err, ErrHandNotInProgress)
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestFoldReturnsCurrentBet(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob", "carol")
	require.NoError(t, tbl.StartGame())

	require.NoError(t, tbl.Player("alice").Fold())

	alice := playerState(t, tbl, "alice")
	assert.Equal(t, StatusRetired, alice.Status)
	assert.Equal(t, 100, alice.Chips)
	assert.Zero(t, alice.Bet)
	assert.Empty(t, alice.Hole)
	assert.Equal(t, "bob", currentName(tbl))
	assert.NoError(t, tbl.ValidateCards())
	assert.Equal(t, 300, tbl.TotalChips())
}

func TestRetiredPlayersAreSkipped(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob", "carol")
	require.NoError(t, tbl.StartGame())

	call(t, tbl, "alice")
	act(t, tbl, "bob", Action{Kind: Check})
	call(t, tbl, "carol")
	require.Equal(t, Flop, tbl.State())

	// Flop opens after carol, so alice acts first.
	assert.Equal(t, "alice", currentName(tbl))
	require.NoError(t, tbl.Act("alice", Action{Kind: Fold}))
	call(t, tbl, "bob")
	call(t, tbl, "carol")
	require.Equal(t, Turn, tbl.State())

	for i := 0; i < 4; i++ {
		assert.NotEqual(t, "alice", currentName(tbl))
		call(t, tbl, currentName(tbl))
		if tbl.State() == GameOver {
			break
		}
	}
	assert.Equal(t, GameOver, tbl.State())
}

func TestUpdateStateOnlyAdvancesWhenAllMatched(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob", "carol")
	require.NoError(t, tbl.StartGame())

	before := tbl.Snapshot()
	call(t, tbl, "alice")
	after := tbl.Snapshot()

	assert.Equal(t, before.State, after.State)
	assert.Equal(t, before.Pot, after.Pot)
	assert.Equal(t, before.Community, after.Community)
	assert.NotEqual(t, before.CurrentPlayer, after.CurrentPlayer)
}

func TestEveryoneCallsToShowdown(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob", "carol")
	stack(tbl, "As7c9sAh2d4h"+"Kd8c3s"+"5h"+"Jc")

	var events []StateChangedEvent
	tbl.SubscribeFunc(func(e Event) {
		events = append(events, e.(StateChangedEvent))
	})

	require.NoError(t, tbl.StartGame())
	seen := map[State]int{}
	for tbl.State() != GameOver {
		seen[tbl.State()] = len(tbl.CommunityCards())
		require.NoError(t, tbl.CurrentPlayer().Call())
		require.Equal(t, 300, tbl.TotalChips())
	}

	assert.Equal(t, map[State]int{Preflop: 0, Flop: 3, Turn: 4}, seen)

	last := events[len(events)-1]
	assert.Equal(t, Turn, last.From)
	assert.Equal(t, GameOver, last.To)

	s := tbl.Snapshot()
	assert.Len(t, s.Community, 5)
	assert.Zero(t, s.Pot)
	assert.Empty(t, s.CurrentPlayer)
	require.Len(t, s.Winners, 1)
	assert.Equal(t, "alice", s.Winners[0].Username)
	assert.Equal(t, 18, s.Winners[0].Amount)
	assert.Equal(t, evaluator.Pair, s.Winners[0].Ranking.Category)
	assert.Len(t, s.Showdown, 3)

	winners := 0
	for _, p := range s.Players {
		if p.Status == StatusWinner {
			winners++
		}
	}
	assert.Equal(t, 1, winners)

	alice, _ := s.Player("alice")
	bob, _ := s.Player("bob")
	assert.Equal(t, 112, alice.Chips)
	assert.Equal(t, 94, bob.Chips)
	assert.Equal(t, 300, s.TotalChips())
	assert.NoError(t, tbl.ValidateCards())
}

func TestSplitPotGivesOddChipFromSmallBlind(t *testing.T) {
	cfg := Config{MaxSeats: 6, MinPlayers: 2, SmallBlind: 1, BigBlind: 3, StreetBet: 3}
	tbl := newTestTable(t, cfg)
	seat(t, tbl, 100, "alice", "bob", "carol")
	stack(tbl, "2c2h4c3d3s4d"+"9cTcJd"+"Qh"+"Kd")

	require.NoError(t, tbl.StartGame())
	call(t, tbl, "alice")
	call(t, tbl, "bob")
	call(t, tbl, "carol")
	require.Equal(t, Flop, tbl.State())

	call(t, tbl, "alice")
	call(t, tbl, "bob")
	act(t, tbl, "carol", Action{Kind: Fold})
	require.Equal(t, Turn, tbl.State())

	call(t, tbl, "alice")
	call(t, tbl, "bob")
	require.Equal(t, GameOver, tbl.State())

	s := tbl.Snapshot()
	require.Len(t, s.Winners, 2)
	assert.Equal(t, Winner{Username: "alice", Amount: 11, Ranking: s.Winners[0].Ranking}, s.Winners[0])
	assert.Equal(t, "bob", s.Winners[1].Username)
	assert.Equal(t, 10, s.Winners[1].Amount)
	assert.Equal(t, evaluator.Straight, s.Winners[0].Ranking.Category)

	alice, _ := s.Player("alice")
	bob, _ := s.Player("bob")
	carol, _ := s.Player("carol")
	assert.Equal(t, StatusWinner, alice.Status)
	assert.Equal(t, StatusWinner, bob.Status)
	assert.Equal(t, StatusRetired, carol.Status)
	assert.Equal(t, 102, alice.Chips)
	assert.Equal(t, 101, bob.Chips)
	assert.Equal(t, 97, carol.Chips)
}

func TestKickerDecidesShowdown(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob")
	// Both pair kings; alice's queen kicker beats bob's jack.
	stack(tbl, "KhKsQcJd"+"Kd2c7h"+"4s"+"9c")

	require.NoError(t, tbl.StartGame())
	for tbl.State() != GameOver {
		require.NoError(t, tbl.CurrentPlayer().Call())
	}

	s := tbl.Snapshot()
	require.Len(t, s.Winners, 1)
	assert.Equal(t, "alice", s.Winners[0].Username)
}

func TestLastPlayerStandingWins(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob", "carol")
	require.NoError(t, tbl.StartGame())

	call(t, tbl, "alice")
	call(t, tbl, "bob")
	call(t, tbl, "carol")
	require.Equal(t, Flop, tbl.State())

	act(t, tbl, "alice", Action{Kind: Raise, Amount: 4})
	act(t, tbl, "bob", Action{Kind: Fold})
	act(t, tbl, "carol", Action{Kind: Fold})

	s := tbl.Snapshot()
	assert.Equal(t, GameOver, s.State)
	assert.Len(t, s.Community, 3, "no more cards are dealt once the hand is won")
	require.Len(t, s.Winners, 1)
	assert.Equal(t, Winner{Username: "alice", Amount: 6}, s.Winners[0])
	assert.Empty(t, s.Showdown)

	alice, _ := s.Player("alice")
	assert.Equal(t, 104, alice.Chips)
	assert.Equal(t, StatusWinner, alice.Status)
	assert.Equal(t, 300, s.TotalChips())
}

func TestAllInRunsOutTheBoard(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice")
	seat(t, tbl, 10, "bob")
	require.NoError(t, tbl.StartGame())

	act(t, tbl, "alice", Action{Kind: Raise, Amount: 50})
	call(t, tbl, "bob")

	s := tbl.Snapshot()
	assert.Equal(t, GameOver, s.State)
	assert.Len(t, s.Community, 5)
	assert.Equal(t, 110, s.TotalChips())

	// Only 10 of alice's 50 could be called; the rest came back before showdown.
	total := 0
	for _, w := range s.Winners {
		total += w.Amount
	}
	assert.Equal(t, 20, total)
	assert.NoError(t, tbl.ValidateCards())
}

func TestShortBlindAllInSkipsBetting(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 1, "alice")
	seat(t, tbl, 100, "bob")

	// Alice is all-in posting the small blind and bob has nobody to bet against.
	require.NoError(t, tbl.StartGame())
	s := tbl.Snapshot()
	assert.Equal(t, GameOver, s.State)
	assert.Len(t, s.Community, 5)
	assert.Equal(t, 101, s.TotalChips())
}

func TestZeroStreetBetNeedsARaise(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StreetBet = 0
	tbl := newTestTable(t, cfg)
	seat(t, tbl, 100, "alice", "bob")
	require.NoError(t, tbl.StartGame())

	call(t, tbl, "alice")
	call(t, tbl, "bob")
	require.Equal(t, Flop, tbl.State())
	assert.Zero(t, tbl.CurrentBet())

	act(t, tbl, tbl.CurrentPlayer().Username(), Action{Kind: Check})
	act(t, tbl, tbl.CurrentPlayer().Username(), Action{Kind: Check})
	assert.Equal(t, Flop, tbl.State(), "a round with no bet never closes")

	act(t, tbl, tbl.CurrentPlayer().Username(), Action{Kind: Raise, Amount: 5})
	call(t, tbl, tbl.CurrentPlayer().Username())
	assert.Equal(t, Turn, tbl.State())
}

func TestResetMidHandRefundsEveryone(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob", "carol")
	require.NoError(t, tbl.StartGame())
	call(t, tbl, "alice")
	call(t, tbl, "bob")
	call(t, tbl, "carol")
	act(t, tbl, "alice", Action{Kind: Raise, Amount: 8})

	tbl.Reset()
	s := tbl.Snapshot()
	assert.Equal(t, Waiting, s.State)
	assert.Zero(t, s.Pot)
	assert.Zero(t, s.CurrentBet)
	assert.Empty(t, s.Community)
	assert.Empty(t, s.HandID)
	assert.Equal(t, deck.Size, s.DeckRemaining)
	for _, p := range s.Players {
		assert.Equal(t, 100, p.Chips, p.Username)
		assert.Zero(t, p.Bet)
		assert.Empty(t, p.Hole)
		assert.Equal(t, StatusActive, p.Status)
	}
	assert.NoError(t, tbl.ValidateCards())

	require.NoError(t, tbl.StartGame())
	assert.Equal(t, 2, tbl.Snapshot().HandNumber)
}

func TestResetAfterGameOverStartsNextHand(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob")
	require.NoError(t, tbl.StartGame())
	for tbl.State() != GameOver {
		require.NoError(t, tbl.CurrentPlayer().Call())
	}
	total := tbl.TotalChips()

	assert.ErrorIs(t, tbl.StartGame(), ErrInvalidState)
	tbl.Reset()
	require.NoError(t, tbl.StartGame())
	assert.Equal(t, Preflop, tbl.State())
	assert.NoError(t, tbl.ValidateChipConservation(total))
}

func TestJoinRules(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSeats = 2
	tbl := newTestTable(t, cfg)

	_, err := tbl.Join("", 100)
	assert.Error(t, err)
	_, err = tbl.Join("alice", 0)
	assert.ErrorIs(t, err, ErrInvalidBuyIn)

	p, err := tbl.Join("alice", 100)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username())
	assert.Equal(t, 100, p.Chips())

	_, err = tbl.Join("alice", 100)
	assert.ErrorIs(t, err, ErrDuplicatePlayer)

	seat(t, tbl, 100, "bob")
	_, err = tbl.Join("carol", 100)
	assert.ErrorIs(t, err, ErrTableFull)

	require.NoError(t, tbl.StartGame())
	tbl2 := newTestTable(t, DefaultConfig())
	seat(t, tbl2, 100, "x", "y")
	require.NoError(t, tbl2.StartGame())
	_, err = tbl2.Join("z", 100)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestLeave(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob", "carol")

	require.NoError(t, tbl.Leave("bob"))
	assert.Nil(t, tbl.Player("bob"))
	assert.ErrorIs(t, tbl.Leave("bob"), ErrUnknownPlayer)

	require.NoError(t, tbl.StartGame())
	assert.ErrorIs(t, tbl.Leave("alice"), ErrInvalidState)

	for tbl.State() != GameOver {
		require.NoError(t, tbl.CurrentPlayer().Call())
	}
	require.NoError(t, tbl.Leave("carol"))
	assert.Len(t, tbl.Players(), 1)
	assert.NoError(t, tbl.ValidateCards())
}

func TestBustedPlayerSitsOut(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob", "carol")

	tbl.mu.Lock()
	tbl.players[1].chips = 0
	tbl.mu.Unlock()

	require.NoError(t, tbl.StartGame())
	s := tbl.Snapshot()
	bob, _ := s.Player("bob")
	assert.Equal(t, StatusRetired, bob.Status)
	assert.Empty(t, bob.Hole)
	assert.Equal(t, "carol", s.BigBlind)
}

func TestPlayerAccessors(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob")
	require.NoError(t, tbl.StartGame())

	alice := tbl.Player("alice")
	assert.Equal(t, StatusSmallBlind, alice.Status())
	assert.Equal(t, 1, alice.Bet())
	assert.Len(t, alice.Hand(), 2)
	assert.False(t, alice.IsAllIn())

	require.NoError(t, alice.Raise(100))
	assert.True(t, alice.IsAllIn())
	assert.Equal(t, "bob", tbl.CurrentPlayer().Username())
	require.NoError(t, tbl.Player("bob").Fold())
	assert.Equal(t, StatusWinner, alice.Status())
}
