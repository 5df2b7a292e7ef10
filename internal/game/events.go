package game

import (
	"sync"
	"time"
)

// EventType represents a table event type
type EventType string

const (
	EventTypeStateChanged EventType = "state_changed"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is anything published on a table's event bus.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// Cause names the operation that produced a state change.
type Cause string

const (
	CauseJoin   Cause = "join"
	CauseLeave  Cause = "leave"
	CauseStart  Cause = "start"
	CauseAction Cause = "action"
	CauseReset  Cause = "reset"
)

// StateChangedEvent is published after every mutating table operation.
// Snapshot is taken before the table lock is released, so it always
// satisfies the table invariants.
type StateChangedEvent struct {
	TableID  string
	Seq      uint64
	Cause    Cause
	From     State
	To       State
	Action   *ActionRecord
	Snapshot Snapshot

	timestamp time.Time
}

func (e StateChangedEvent) EventType() EventType { return EventTypeStateChanged }
func (e StateChangedEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber receives table events. OnEvent runs synchronously on the
// goroutine that mutated the table and must not call mutating table methods
// itself; read methods and Snapshot are safe.
type EventSubscriber interface {
	OnEvent(event Event)
}

// SubscriberFunc adapts a function to EventSubscriber.
type SubscriberFunc func(event Event)

type funcSubscriber struct {
	fn SubscriberFunc
}

func (s *funcSubscriber) OnEvent(event Event) { s.fn(event) }

// EventBus manages event publishing and subscription
type EventBus struct {
	mu          sync.RWMutex
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *EventBus) Subscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers = append(bus.subscribers, subscriber)
}

// SubscribeFunc registers fn and returns a function that removes it.
func (bus *EventBus) SubscribeFunc(fn SubscriberFunc) (unsubscribe func()) {
	sub := &funcSubscriber{fn: fn}
	bus.Subscribe(sub)
	return func() { bus.Unsubscribe(sub) }
}

// Unsubscribe removes a subscriber from receiving events
func (bus *EventBus) Unsubscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i:i], bus.subscribers[i+1:]...)
			return
		}
	}
}

// Len returns the number of subscribers.
func (bus *EventBus) Len() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subscribers)
}

// Publish delivers the event to every subscriber in subscription order.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	subs := make([]EventSubscriber, len(bus.subscribers))
	copy(subs, bus.subscribers)
	bus.mu.RUnlock()

	for _, sub := range subs {
		sub.OnEvent(event)
	}
}
