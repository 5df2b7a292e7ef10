package game

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []StateChangedEvent
}

func (r *recorder) OnEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.(StateChangedEvent))
}

func (r *recorder) all() []StateChangedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]StateChangedEvent(nil), r.events...)
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	a, b := &recorder{}, &recorder{}
	bus.Subscribe(a)
	bus.Subscribe(b)
	assert.Equal(t, 2, bus.Len())

	bus.Publish(StateChangedEvent{Seq: 1})
	bus.Unsubscribe(a)
	bus.Publish(StateChangedEvent{Seq: 2})

	assert.Len(t, a.all(), 1)
	assert.Len(t, b.all(), 2)
	assert.Equal(t, 1, bus.Len())
}

func TestSubscribeFuncUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	unsubscribe := bus.SubscribeFunc(func(Event) { calls++ })

	bus.Publish(StateChangedEvent{})
	unsubscribe()
	bus.Publish(StateChangedEvent{})

	assert.Equal(t, 1, calls)
	assert.Zero(t, bus.Len())
}

func TestTableEventsInOrder(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	rec := &recorder{}
	tbl.Subscribe(rec)

	seat(t, tbl, 100, "alice", "bob")
	require.NoError(t, tbl.StartGame())
	call(t, tbl, "alice")

	events := rec.all()
	require.Len(t, events, 4)
	for i, e := range events {
		assert.Equal(t, uint64(i+1), e.Seq)
		assert.Equal(t, e.Seq, e.Snapshot.Seq)
		assert.Equal(t, "test", e.TableID)
		assert.Equal(t, EventTypeStateChanged, e.EventType())
	}

	assert.Equal(t, []Cause{CauseJoin, CauseJoin, CauseStart, CauseAction},
		[]Cause{events[0].Cause, events[1].Cause, events[2].Cause, events[3].Cause})
	assert.Equal(t, Waiting, events[2].From)
	assert.Equal(t, Preflop, events[2].To)

	last := events[3]
	require.NotNil(t, last.Action)
	assert.Equal(t, "alice", last.Action.Player)
	assert.Equal(t, 1, last.Action.Paid)
	assert.Equal(t, Preflop, last.Action.State)
	assert.Equal(t, "bob", last.Snapshot.CurrentPlayer)
}

func TestRejectedActionPublishesNothing(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	seat(t, tbl, 100, "alice", "bob")
	require.NoError(t, tbl.StartGame())

	rec := &recorder{}
	tbl.Subscribe(rec)
	assert.Error(t, tbl.Act("bob", Action{Kind: Call}))
	assert.Empty(t, rec.all())

	tbl.Unsubscribe(rec)
	call(t, tbl, "alice")
	assert.Empty(t, rec.all())
}

func TestSubscriberCanReadTable(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	var states []State
	tbl.SubscribeFunc(func(Event) {
		states = append(states, tbl.State())
	})

	seat(t, tbl, 100, "alice", "bob")
	require.NoError(t, tbl.StartGame())
	assert.Equal(t, []State{Waiting, Waiting, Preflop}, states)
}

func TestConcurrentActionsStayConsistent(t *testing.T) {
	tbl := newTestTable(t, DefaultConfig())
	names := []string{"alice", "bob", "carol", "dave"}
	seat(t, tbl, 100, names...)
	require.NoError(t, tbl.StartGame())

	var lastSeq uint64
	var ordered = true
	tbl.SubscribeFunc(func(e Event) {
		sc := e.(StateChangedEvent)
		if sc.Seq != lastSeq+1 && lastSeq != 0 {
			ordered = false
		}
		lastSeq = sc.Seq
	})

	// Every goroutine hammers Call; only the player whose turn it is succeeds.
	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			for i := 0; i < 200 && tbl.State() != GameOver; i++ {
				_ = tbl.Act(name, Action{Kind: Call})
			}
		}(name)
	}
	wg.Wait()

	assert.True(t, ordered)
	assert.Equal(t, 400, tbl.TotalChips())
	assert.NoError(t, tbl.ValidateCards())
}
