package lobby

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokeronline/internal/game"
)

// DefaultMaxWait is how long a short-handed table waits for more players
// before it starts anyway.
const DefaultMaxWait = 240 * time.Second

// MatchmakerConfig controls how queued players are seated.
type MatchmakerConfig struct {
	Template   Template
	MaxWait    time.Duration
	MinPlayers int
}

// Matchmaker seats queued players at open tables built from one template.
// A table starts as soon as it is full, or once it has MinPlayers and its
// earliest seated player has waited MaxWait. Finished tables are reset,
// busted players are unseated and the table goes back into rotation.
type Matchmaker struct {
	registry *Registry
	cfg      MatchmakerConfig
	clock    quartz.Clock
	logger   *log.Logger

	mu       sync.Mutex
	queue    []string
	queued   map[string]bool
	seated   map[string]string    // username -> table id
	tables   []string             // table ids created by this matchmaker
	openedAt map[string]time.Time // table id -> when its first waiting player sat down
}

// NewMatchmaker creates a matchmaker that opens tables in registry.
func NewMatchmaker(registry *Registry, cfg MatchmakerConfig, opts ...Option) (*Matchmaker, error) {
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	if cfg.MinPlayers < 2 {
		cfg.MinPlayers = 2
	}
	if err := cfg.Template.Config.Validate(); err != nil {
		return nil, fmt.Errorf("matchmaker template: %w", err)
	}
	if cfg.MinPlayers > cfg.Template.Config.MaxSeats {
		return nil, fmt.Errorf("matchmaker min players %d exceeds %d seats", cfg.MinPlayers, cfg.Template.Config.MaxSeats)
	}

	s := settings{logger: registry.logger, clock: registry.clock}
	for _, opt := range opts {
		opt(&s)
	}
	return &Matchmaker{
		registry: registry,
		cfg:      cfg,
		clock:    s.clock,
		logger:   s.logger.WithPrefix("matchmaker"),
		queued:   make(map[string]bool),
		seated:   make(map[string]string),
		openedAt: make(map[string]time.Time),
	}, nil
}

// Enqueue adds a player to the back of the queue.
func (m *Matchmaker) Enqueue(username string) error {
	if username == "" {
		return fmt.Errorf("enqueue: username is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queued[username] {
		return fmt.Errorf("%w: %s", ErrAlreadyQueued, username)
	}
	if id, ok := m.seatedAtLocked(username); ok {
		return fmt.Errorf("%w: %s is seated at %s", ErrAlreadyQueued, username, id)
	}
	m.queue = append(m.queue, username)
	m.queued[username] = true
	m.logger.Debug("Player queued", "player", username, "queue", len(m.queue))
	return nil
}

// Dequeue removes a player who has not been seated yet.
func (m *Matchmaker) Dequeue(username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.queued[username] {
		return false
	}
	delete(m.queued, username)
	for i, name := range m.queue {
		if name == username {
			m.queue = append(m.queue[:i:i], m.queue[i+1:]...)
			break
		}
	}
	return true
}

// QueueLen returns the number of players waiting for a seat.
func (m *Matchmaker) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Queued reports whether a player is waiting for a seat.
func (m *Matchmaker) Queued(username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queued[username]
}

// TableFor returns the table a player was seated at.
func (m *Matchmaker) TableFor(username string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seatedAtLocked(username)
}

// seatedAtLocked returns the table a player was seated at, forgetting the
// seat if they have since left it.
func (m *Matchmaker) seatedAtLocked(username string) (string, bool) {
	id, ok := m.seated[username]
	if !ok {
		return "", false
	}
	entry, err := m.registry.Get(id)
	if err != nil || entry.Table.Player(username) == nil {
		delete(m.seated, username)
		return "", false
	}
	return id, true
}

// Tick recycles finished tables, seats queued players and starts tables that
// are ready. It returns the ids of tables that started a hand.
func (m *Matchmaker) Tick() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	m.recycleLocked()
	m.seatLocked(now)
	return m.startLocked(now)
}

// Run ticks every interval until ctx is cancelled.
func (m *Matchmaker) Run(ctx context.Context, interval time.Duration) error {
	ticker := m.clock.NewTicker(interval, "matchmaker")
	defer ticker.Stop()
	m.logger.Info("Matchmaker running", "interval", interval, "max_wait", m.cfg.MaxWait)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if started := m.Tick(); len(started) > 0 {
				m.logger.Debug("Tables started", "tables", started)
			}
		}
	}
}

func (m *Matchmaker) recycleLocked() {
	live := m.tables[:0]
	for _, id := range m.tables {
		entry, err := m.registry.Get(id)
		if err != nil {
			m.forgetTableLocked(id)
			continue
		}
		live = append(live, id)

		for name, tableID := range m.seated {
			if tableID == id && entry.Table.Player(name) == nil {
				delete(m.seated, name)
			}
		}
		if entry.Table.State() != game.GameOver {
			continue
		}
		entry.Table.Reset()
		for _, p := range entry.Table.Players() {
			if p.Chips() > 0 {
				continue
			}
			if err := entry.Table.Leave(p.Username()); err == nil {
				delete(m.seated, p.Username())
				m.logger.Info("Busted player unseated", "player", p.Username(), "table", id)
			}
		}
		// Players from the last hand have already waited.
		if len(entry.Table.Players()) > 0 {
			m.openedAt[id] = m.clock.Now().Add(-m.cfg.MaxWait)
		}
	}
	m.tables = live
}

func (m *Matchmaker) forgetTableLocked(id string) {
	delete(m.openedAt, id)
	for name, tableID := range m.seated {
		if tableID == id {
			delete(m.seated, name)
		}
	}
}

func (m *Matchmaker) seatLocked(now time.Time) {
	for len(m.queue) > 0 {
		entry, err := m.openTableLocked()
		if err != nil {
			if errors.Is(err, ErrTooManyTables) {
				m.logger.Warn("No table available for queued players", "queue", len(m.queue))
			} else {
				m.logger.Error("Failed to open table", "error", err)
			}
			return
		}

		username := m.queue[0]
		if _, err := entry.Table.Join(username, m.cfg.Template.StartingChips); err != nil {
			m.logger.Error("Failed to seat player", "player", username, "table", entry.ID, "error", err)
			// Drop the player rather than retrying the same failure forever.
			m.queue = m.queue[1:]
			delete(m.queued, username)
			continue
		}
		m.queue = m.queue[1:]
		delete(m.queued, username)
		m.seated[username] = entry.ID
		if _, ok := m.openedAt[entry.ID]; !ok {
			m.openedAt[entry.ID] = now
		}
		m.logger.Info("Player seated", "player", username, "table", entry.ID)
	}
}

// openTableLocked returns the oldest waiting table with a free seat,
// creating one if none exists.
func (m *Matchmaker) openTableLocked() (*Entry, error) {
	for _, id := range m.tables {
		entry, err := m.registry.Get(id)
		if err != nil {
			continue
		}
		if entry.Table.State() == game.Waiting && len(entry.Table.Players()) < entry.Table.Config().MaxSeats {
			return entry, nil
		}
	}
	entry, err := m.registry.Create(m.cfg.Template)
	if err != nil {
		return nil, err
	}
	m.tables = append(m.tables, entry.ID)
	return entry, nil
}

func (m *Matchmaker) startLocked(now time.Time) []string {
	var started []string
	for _, id := range m.tables {
		entry, err := m.registry.Get(id)
		if err != nil || entry.Table.State() != game.Waiting {
			continue
		}
		opened, ok := m.openedAt[id]
		if !ok {
			continue
		}

		players := len(entry.Table.Players())
		full := players >= entry.Table.Config().MaxSeats
		waited := players >= m.cfg.MinPlayers && now.Sub(opened) >= m.cfg.MaxWait
		if !full && !waited {
			continue
		}
		if err := entry.Table.StartGame(); err != nil {
			m.logger.Warn("Failed to start table", "table", id, "error", err)
			continue
		}
		delete(m.openedAt, id)
		started = append(started, id)
		m.logger.Info("Table started", "table", id, "players", players, "full", full)
	}
	return started
}
