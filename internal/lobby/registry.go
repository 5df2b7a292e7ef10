// Package lobby owns the running tables: a registry keyed by table id, a
// matchmaking queue that seats waiting players, and per-table turn timers.
package lobby

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokeronline/internal/game"
	"github.com/lox/pokeronline/internal/phh"
	"github.com/lox/pokeronline/internal/randutil"
)

// DefaultMaxTables caps how many tables one registry will hold.
const DefaultMaxTables = 250

var (
	ErrTableNotFound = errors.New("table not found")
	ErrTooManyTables = errors.New("table limit reached")
	ErrAlreadyQueued = errors.New("player already queued")
)

// Template describes how to build a table.
type Template struct {
	Name          string
	Config        game.Config
	StartingChips int
	// ActionTimeout folds a player who takes longer than this to act.
	// Zero disables the turn timer.
	ActionTimeout time.Duration
}

// Entry is one registered table.
type Entry struct {
	ID       string
	Template Template
	Table    *game.Table
	Created  time.Time

	timer   *TurnTimer
	history *phh.Recorder
}

// History returns the recorder holding the table's finished hands.
func (e *Entry) History() *phh.Recorder {
	return e.history
}

// Timer returns the entry's turn timer, or nil if it has none.
func (e *Entry) Timer() *TurnTimer {
	return e.timer
}

// Summary is the lightweight listing of a table.
type Summary struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	State      game.State `json:"state"`
	Players    int        `json:"players"`
	MaxSeats   int        `json:"max_seats"`
	SmallBlind int        `json:"small_blind"`
	BigBlind   int        `json:"big_blind"`
	HandNumber int        `json:"hand_number"`
}

// Registry tracks the live tables.
type Registry struct {
	mu        sync.RWMutex
	tables    map[string]*Entry
	maxTables int
	seed      int64
	created   int64

	logger *log.Logger
	clock  quartz.Clock
}

// Option configures a Registry or Matchmaker.
type Option func(*settings)

type settings struct {
	logger  *log.Logger
	clock   quartz.Clock
	seed    int64
	hasSeed bool
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithClock sets the clock used for timers and waiting times.
func WithClock(clock quartz.Clock) Option {
	return func(s *settings) { s.clock = clock }
}

// WithSeed makes table shuffles reproducible: table n is seeded with seed+n.
func WithSeed(seed int64) Option {
	return func(s *settings) { s.seed, s.hasSeed = seed, true }
}

func buildSettings(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	if !s.hasSeed {
		s.seed = randutil.NewSeed()
	}
	return s
}

// NewRegistry creates an empty registry. A non-positive maxTables uses
// DefaultMaxTables.
func NewRegistry(maxTables int, opts ...Option) *Registry {
	if maxTables <= 0 {
		maxTables = DefaultMaxTables
	}
	s := buildSettings(opts)
	return &Registry{
		tables:    make(map[string]*Entry),
		maxTables: maxTables,
		seed:      s.seed,
		logger:    s.logger.WithPrefix("lobby"),
		clock:     s.clock,
	}
}

// Create builds a table from tmpl and registers it.
func (r *Registry) Create(tmpl Template) (*Entry, error) {
	if tmpl.StartingChips <= 0 {
		return nil, fmt.Errorf("starting chips must be positive, got %d", tmpl.StartingChips)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tables) >= r.maxTables {
		return nil, fmt.Errorf("%w (%d tables)", ErrTooManyTables, r.maxTables)
	}

	r.created++
	table, err := game.NewTable(tmpl.Config,
		game.WithRand(randutil.New(r.seed+r.created)),
		game.WithClock(r.clock),
		game.WithLogger(r.logger),
	)
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:       table.ID(),
		Template: tmpl,
		Table:    table,
		Created:  r.clock.Now(),
		history:  phh.NewRecorder(tmpl.Name, tmpl.Config, phh.DefaultRecorderLimit),
	}
	table.Subscribe(entry.history)
	if tmpl.ActionTimeout > 0 {
		entry.timer = NewTurnTimer(table, tmpl.ActionTimeout, r.clock, r.logger)
	}
	r.tables[entry.ID] = entry
	r.logger.Info("Table created", "table", entry.ID, "name", tmpl.Name, "tables", len(r.tables))
	return entry, nil
}

// Get looks up a table by id.
func (r *Registry) Get(id string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, id)
	}
	return entry, nil
}

// Remove stops a table's timer and forgets it.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	entry, ok := r.tables[id]
	delete(r.tables, id)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, id)
	}
	if entry.timer != nil {
		entry.timer.Stop()
	}
	r.logger.Info("Table removed", "table", id)
	return nil
}

// Entries returns every table, oldest first.
func (r *Registry) Entries() []*Entry {
	r.mu.RLock()
	entries := make([]*Entry, 0, len(r.tables))
	for _, e := range r.tables {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Created.Equal(entries[j].Created) {
			return entries[i].Created.Before(entries[j].Created)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// List summarizes every table, oldest first.
func (r *Registry) List() []Summary {
	entries := r.Entries()
	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Summary())
	}
	return out
}

// Len returns the number of tables.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// Summary describes the table as it is now.
func (e *Entry) Summary() Summary {
	s := e.Table.Snapshot()
	cfg := e.Table.Config()
	return Summary{
		ID:         e.ID,
		Name:       e.Template.Name,
		State:      s.State,
		Players:    len(s.Players),
		MaxSeats:   cfg.MaxSeats,
		SmallBlind: cfg.SmallBlind,
		BigBlind:   cfg.BigBlind,
		HandNumber: s.HandNumber,
	}
}
