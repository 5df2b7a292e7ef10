package game

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokeronline/internal/deck"
	"github.com/lox/pokeronline/internal/gameid"
	"github.com/lox/pokeronline/internal/randutil"
)

// Table is a single Hold'em table. It is safe for concurrent use; operations
// are applied one at a time.
type Table struct {
	mu    sync.Mutex
	pubMu sync.Mutex // keeps events in Seq order

	id     string
	cfg    Config
	rng    randutil.Source
	clock  quartz.Clock
	logger *log.Logger
	bus    *EventBus
	hands  *gameid.Generator

	state      State
	players    []*Player // seat order
	nextSeat   int
	deck       *deck.Deck
	community  []deck.Card
	discards   []deck.Card
	pot        int
	currentBet int
	current    int // index into players, -1 when nobody is to act
	smallBlind int
	bigBlind   int

	handID     string
	handNumber int
	seq        uint64
	winners    []Winner
	showdown   []ShowdownHand
	lastAction *ActionRecord
}

// Option configures a Table.
type Option func(*Table)

// WithRand sets the randomness used for shuffles, blind selection and hand ids.
func WithRand(rng randutil.Source) Option {
	return func(t *Table) { t.rng = rng }
}

// WithLogger sets the logger; the table logs under the "table" prefix.
func WithLogger(logger *log.Logger) Option {
	return func(t *Table) { t.logger = logger }
}

// WithClock sets the clock used for event timestamps and hand ids.
func WithClock(clock quartz.Clock) Option {
	return func(t *Table) { t.clock = clock }
}

// WithID sets the table id instead of generating one.
func WithID(id string) Option {
	return func(t *Table) { t.id = id }
}

// NewTable creates an empty table in the Waiting state with a shuffled deck.
func NewTable(cfg Config, opts ...Option) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid table config: %w", err)
	}

	t := &Table{
		cfg:        cfg,
		bus:        NewEventBus(),
		current:    -1,
		smallBlind: -1,
		bigBlind:   -1,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.rng == nil {
		t.rng = randutil.New(randutil.NewSeed())
	}
	if t.clock == nil {
		t.clock = quartz.NewReal()
	}
	if t.logger == nil {
		t.logger = log.New(io.Discard)
	}

	ids := gameid.NewGenerator(t.rng, t.clock)
	if t.id == "" {
		t.id = ids.WithPrefix("table").Generate()
	}
	t.hands = ids.WithPrefix("hand")
	t.logger = t.logger.WithPrefix("table").With("table", t.id)
	t.deck = deck.NewShuffledDeck(t.rng)
	return t, nil
}

// ID returns the table id
func (t *Table) ID() string {
	return t.id
}

// Config returns the table configuration
func (t *Table) Config() Config {
	return t.cfg
}

// Subscribe registers a subscriber for state-changed events.
func (t *Table) Subscribe(sub EventSubscriber) {
	t.bus.Subscribe(sub)
}

// Unsubscribe removes a subscriber.
func (t *Table) Unsubscribe(sub EventSubscriber) {
	t.bus.Unsubscribe(sub)
}

// SubscribeFunc registers fn and returns a function that removes it.
func (t *Table) SubscribeFunc(fn SubscriberFunc) (unsubscribe func()) {
	return t.bus.SubscribeFunc(fn)
}

// Snapshot returns a consistent copy of the table state.
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// State returns the current phase.
func (t *Table) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Pot returns the chips swept into the pot so far this hand.
func (t *Table) Pot() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pot
}

// CurrentBet returns the bet each player must match this round.
func (t *Table) CurrentBet() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentBet
}

// CommunityCards returns a copy of the board.
func (t *Table) CommunityCards() []deck.Card {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]deck.Card{}, t.community...)
}

// CurrentPlayer returns the player due to act, or nil outside a betting round.
func (t *Table) CurrentPlayer() *Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentPlayerLocked()
}

// Players returns the seated players in seat order.
func (t *Table) Players() []*Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Player(nil), t.players...)
}

// Player looks up a seated player by name.
func (t *Table) Player(username string) *Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playerLocked(username)
}

// Join seats a new player at the end of the seating order. Seats can only be
// taken between hands.
func (t *Table) Join(username string, chips int) (*Player, error) {
	t.mu.Lock()
	switch {
	case username == "":
		t.mu.Unlock()
		return nil, fmt.Errorf("join: username is required")
	case t.state != Waiting && t.state != GameOver:
		t.mu.Unlock()
		return nil, fmt.Errorf("join during %s: %w", t.state, ErrInvalidState)
	case chips <= 0:
		t.mu.Unlock()
		return nil, fmt.Errorf("join with %d chips: %w", chips, ErrInvalidBuyIn)
	case t.playerLocked(username) != nil:
		t.mu.Unlock()
		return nil, fmt.Errorf("join %s: %w", username, ErrDuplicatePlayer)
	case len(t.players) >= t.cfg.MaxSeats:
		t.mu.Unlock()
		return nil, fmt.Errorf("join %s: %w (%d seats)", username, ErrTableFull, t.cfg.MaxSeats)
	}

	p := &Player{
		table:    t,
		username: username,
		seat:     t.nextSeat,
		chips:    chips,
		status:   StatusActive,
	}
	t.nextSeat++
	t.players = append(t.players, p)
	t.logger.Info("Player joined", "player", username, "chips", chips, "seats", len(t.players))

	t.unlockAndPublish(CauseJoin, t.state, nil)
	return p, nil
}

// Leave removes a player between hands.
func (t *Table) Leave(username string) error {
	t.mu.Lock()
	if t.state != Waiting && t.state != GameOver {
		t.mu.Unlock()
		return fmt.Errorf("leave during %s: %w", t.state, ErrInvalidState)
	}
	idx := t.indexLocked(username)
	if idx < 0 {
		t.mu.Unlock()
		return fmt.Errorf("leave %s: %w", username, ErrUnknownPlayer)
	}

	p := t.players[idx]
	t.discards = append(t.discards, p.hand.Clear()...)
	t.players = append(t.players[:idx:idx], t.players[idx+1:]...)
	t.smallBlind = shiftIndex(t.smallBlind, idx)
	t.bigBlind = shiftIndex(t.bigBlind, idx)
	t.logger.Info("Player left", "player", username, "chips", p.chips)

	t.unlockAndPublish(CauseLeave, t.state, nil)
	return nil
}

func shiftIndex(i, removed int) int {
	switch {
	case i == removed:
		return -1
	case i > removed:
		return i - 1
	default:
		return i
	}
}

// StartGame posts the blinds, deals two hole cards to every player with chips
// and opens preflop betting with the small blind to act.
func (t *Table) StartGame() error {
	t.mu.Lock()
	if t.state != Waiting {
		t.mu.Unlock()
		return fmt.Errorf("start game during %s: %w", t.state, ErrInvalidState)
	}

	var seated []int
	for i, p := range t.players {
		if p.chips > 0 {
			seated = append(seated, i)
		}
	}
	if len(seated) < max(2, t.cfg.MinPlayers) {
		t.mu.Unlock()
		return fmt.Errorf("start game with %d players: %w", len(seated), ErrInsufficientPlayers)
	}

	from := t.state
	err := t.startLocked(seated)
	if err != nil {
		t.logger.Error("Failed to start hand", "error", err)
	} else {
		t.logger.Info("Hand started", "hand", t.handID, "players", len(seated),
			"small_blind", t.players[t.smallBlind].username,
			"big_blind", t.players[t.bigBlind].username)
	}
	t.unlockAndPublish(CauseStart, from, nil)
	return err
}

func (t *Table) startLocked(seated []int) error {
	t.handNumber++
	t.handID = t.hands.Generate()
	t.winners, t.showdown, t.lastAction = nil, nil, nil

	for _, p := range t.players {
		if p.chips > 0 {
			p.status = StatusActive
		} else {
			p.status = StatusRetired
		}
	}

	sb := seated[t.rng.IntN(len(seated))]
	bb := t.nextInHand(sb)
	t.smallBlind, t.bigBlind = sb, bb
	t.players[sb].status = StatusSmallBlind
	t.players[bb].status = StatusBigBlind
	t.players[sb].pay(t.cfg.SmallBlind)
	t.players[bb].pay(t.cfg.BigBlind)
	t.currentBet = t.cfg.BigBlind

	for round := 0; round < 2; round++ {
		for _, i := range seated {
			card, ok := t.deck.DealOne()
			if !ok {
				return fmt.Errorf("dealing hole cards: %w", ErrDeckExhausted)
			}
			if err := t.players[i].hand.Add(card); err != nil {
				return fmt.Errorf("dealing hole cards: %w", err)
			}
		}
	}

	t.state = Preflop
	t.current = sb
	if !t.players[sb].canAct() {
		t.current = t.nextActor(sb)
	}

	// Short-stacked blinds can leave nobody with a decision to make.
	if t.roundComplete() {
		return t.closeRoundLocked()
	}
	return nil
}

// Act applies an action for the named player. Rejected actions return an
// *ActionError and leave the table untouched.
func (t *Table) Act(username string, a Action) error {
	t.mu.Lock()
	p, err := t.validateLocked(username, a)
	if err != nil {
		t.mu.Unlock()
		t.logger.Debug("Action rejected", "player", username, "action", a, "error", err)
		return err
	}

	from := t.state
	rec := t.performLocked(p, a)
	t.logger.Debug("Player acted", "player", username, "action", a, "paid", rec.Paid, "pot", t.pot)

	err = t.updateStateLocked()
	if err != nil {
		t.logger.Error("Table update failed", "error", err)
	}
	if t.state == GameOver && from != GameOver {
		t.logHandResult()
	}
	t.unlockAndPublish(CauseAction, from, rec)
	return err
}

func (t *Table) validateLocked(username string, a Action) (*Player, error) {
	if !t.state.Betting() {
		return nil, rejectAction(username, a, ErrHandNotInProgress)
	}
	p := t.playerLocked(username)
	if p == nil {
		return nil, rejectAction(username, a, ErrUnknownPlayer)
	}
	if p != t.currentPlayerLocked() {
		return nil, rejectAction(username, a, ErrOutOfTurn)
	}

	switch a.Kind {
	case Fold, Call:
	case Raise:
		if a.Amount <= t.currentBet || a.Amount < 2*t.currentBet {
			return nil, rejectAction(username, a,
				fmt.Errorf("%w: raise to %d facing %d", ErrRaiseTooSmall, a.Amount, t.currentBet))
		}
		if a.Amount-p.bet > p.chips {
			return nil, rejectAction(username, a,
				fmt.Errorf("%w: raise to %d needs %d, has %d", ErrInsufficientChips, a.Amount, a.Amount-p.bet, p.chips))
		}
	case Check:
		if p.bet != t.currentBet {
			return nil, rejectAction(username, a,
				fmt.Errorf("%w: bet %d, current bet %d", ErrCannotCheck, p.bet, t.currentBet))
		}
	default:
		return nil, rejectAction(username, a, ErrUnknownAction)
	}
	return p, nil
}

func (t *Table) performLocked(p *Player, a Action) *ActionRecord {
	rec := &ActionRecord{Player: p.username, Action: a, State: t.state}

	switch a.Kind {
	case Fold:
		// The current round's bet goes back to the stack; swept chips stay in the pot.
		rec.Paid = -p.bet
		p.chips += p.bet
		p.bet = 0
		p.status = StatusRetired
		t.discards = append(t.discards, p.hand.Clear()...)
	case Raise:
		t.currentBet = a.Amount
		rec.Paid = p.pay(t.currentBet - p.bet)
	case Call:
		rec.Paid = p.pay(t.currentBet - p.bet)
	case Check:
	}

	rec.AllIn = p.inHand() && p.allIn()
	t.lastAction = rec
	return rec
}

// updateStateLocked closes the betting round when every player still in the
// hand has matched the current bet (or is all-in), then passes the turn on.
func (t *Table) updateStateLocked() error {
	if t.state == GameOver {
		return nil
	}
	if t.countInHand() == 1 {
		t.awardUncontestedLocked()
		return nil
	}
	if t.roundComplete() {
		if err := t.closeRoundLocked(); err != nil {
			return err
		}
		if t.state == GameOver {
			return nil
		}
	}
	t.current = t.nextActor(t.current)
	return nil
}

func (t *Table) roundComplete() bool {
	if t.currentBet <= 0 {
		return false
	}
	for _, p := range t.players {
		if p.inHand() && !p.allIn() && p.bet != t.currentBet {
			return false
		}
	}
	return true
}

// closeRoundLocked sweeps bets and deals the next street. With fewer than two
// players able to bet, the remaining streets are dealt straight through.
func (t *Table) closeRoundLocked() error {
	t.sweepBetsLocked()
	for {
		if err := t.dealNextStreetLocked(); err != nil {
			return err
		}
		if t.state == GameOver {
			return nil
		}
		if t.countActors() >= 2 {
			break
		}
	}
	t.currentBet = t.cfg.StreetBet
	return nil
}

func (t *Table) sweepBetsLocked() {
	// Return whatever part of the largest bet nobody else matched.
	high, highIdx, second := 0, -1, 0
	for i, p := range t.players {
		switch {
		case p.bet > high:
			second = high
			high, highIdx = p.bet, i
		case p.bet > second:
			second = p.bet
		}
	}
	if highIdx >= 0 && high > second {
		p := t.players[highIdx]
		p.bet -= high - second
		p.chips += high - second
	}

	for _, p := range t.players {
		t.pot += p.bet
		p.committed += p.bet
		p.bet = 0
	}
	t.currentBet = 0
}

func (t *Table) dealNextStreetLocked() error {
	next := t.state + 1
	n := next.communityCount()
	cards := t.deck.Deal(n)
	t.community = append(t.community, cards...)
	if len(cards) < n {
		return fmt.Errorf("dealing %s: got %d of %d cards: %w", next, len(cards), n, ErrDeckExhausted)
	}
	t.state = next
	t.logger.Debug("Dealt street", "state", next, "board", deck.FormatCards(t.community))

	if next == River {
		return t.showdownLocked()
	}
	return nil
}

// Reset returns the table to Waiting with a freshly shuffled deck. Bets and
// chips committed to an unfinished hand go back to their owners.
func (t *Table) Reset() {
	t.mu.Lock()
	from := t.state
	for _, p := range t.players {
		p.chips += p.bet + p.committed
		p.bet, p.committed = 0, 0
		p.hand.Clear()
		p.status = StatusActive
	}

	t.deck.Reset()
	t.deck.Shuffle()
	t.state = Waiting
	t.community = nil
	t.discards = nil
	t.pot = 0
	t.currentBet = 0
	t.current = -1
	t.smallBlind, t.bigBlind = -1, -1
	t.handID = ""
	t.winners, t.showdown, t.lastAction = nil, nil, nil
	t.logger.Debug("Table reset", "from", from)

	t.unlockAndPublish(CauseReset, from, nil)
}

// unlockAndPublish emits a StateChangedEvent for the mutation just applied.
// The snapshot is built under the table lock; the event is delivered after
// the lock is released.
func (t *Table) unlockAndPublish(cause Cause, from State, rec *ActionRecord) {
	t.seq++
	event := StateChangedEvent{
		TableID:   t.id,
		Seq:       t.seq,
		Cause:     cause,
		From:      from,
		To:        t.state,
		Snapshot:  t.snapshotLocked(),
		timestamp: t.clock.Now(),
	}
	if rec != nil {
		copied := *rec
		event.Action = &copied
	}

	t.pubMu.Lock()
	defer t.pubMu.Unlock()
	t.mu.Unlock()
	t.bus.Publish(event)
}

func (t *Table) currentPlayerLocked() *Player {
	if !t.state.Betting() || t.current < 0 || t.current >= len(t.players) {
		return nil
	}
	return t.players[t.current]
}

func (t *Table) playerLocked(username string) *Player {
	if i := t.indexLocked(username); i >= 0 {
		return t.players[i]
	}
	return nil
}

func (t *Table) indexLocked(username string) int {
	for i, p := range t.players {
		if p.username == username {
			return i
		}
	}
	return -1
}

// nextActor returns the next seat after from that can still act, wrapping
// around and ending with from itself; -1 if none can.
func (t *Table) nextActor(from int) int {
	n := len(t.players)
	for i := 1; i <= n; i++ {
		idx := ((from+i)%n + n) % n
		if t.players[idx].canAct() {
			return idx
		}
	}
	return -1
}

func (t *Table) nextInHand(from int) int {
	n := len(t.players)
	for i := 1; i <= n; i++ {
		idx := (from + i) % n
		if t.players[idx].inHand() {
			return idx
		}
	}
	return -1
}

func (t *Table) countInHand() int {
	n := 0
	for _, p := range t.players {
		if p.inHand() {
			n++
		}
	}
	return n
}

func (t *Table) countActors() int {
	n := 0
	for _, p := range t.players {
		if p.canAct() {
			n++
		}
	}
	return n
}
