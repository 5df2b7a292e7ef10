package game

import (
	"github.com/lox/pokeronline/internal/deck"
	"github.com/lox/pokeronline/internal/evaluator"
)

// Snapshot is a deep copy of table state at one instant.
type Snapshot struct {
	TableID       string           `json:"table_id"`
	HandID        string           `json:"hand_id,omitempty"`
	HandNumber    int              `json:"hand_number"`
	Seq           uint64           `json:"seq"`
	State         State            `json:"state"`
	Pot           int              `json:"pot"`
	CurrentBet    int              `json:"current_bet"`
	CurrentPlayer string           `json:"current_player,omitempty"`
	SmallBlind    string           `json:"small_blind,omitempty"`
	BigBlind      string           `json:"big_blind,omitempty"`
	Community     []deck.Card      `json:"community"`
	Players       []PlayerSnapshot `json:"players"`
	Winners       []Winner         `json:"winners,omitempty"`
	Showdown      []ShowdownHand   `json:"showdown,omitempty"`
	LastAction    *ActionRecord    `json:"last_action,omitempty"`
	DeckRemaining int              `json:"deck_remaining"`
}

// PlayerSnapshot is one seat within a Snapshot.
type PlayerSnapshot struct {
	Username  string       `json:"username"`
	Seat      int          `json:"seat"`
	Chips     int          `json:"chips"`
	Bet       int          `json:"bet"`
	Committed int          `json:"committed"`
	Status    PlayerStatus `json:"status"`
	AllIn     bool         `json:"all_in"`
	Hole      []deck.Card  `json:"hole,omitempty"`
}

// Winner is a share of a pot awarded at the end of a hand.
type Winner struct {
	Username string             `json:"username"`
	Amount   int                `json:"amount"`
	Ranking  *evaluator.Ranking `json:"ranking,omitempty"`
}

// ShowdownHand is one contender's best hand at showdown.
type ShowdownHand struct {
	Username string            `json:"username"`
	Hole     []deck.Card       `json:"hole"`
	Ranking  evaluator.Ranking `json:"ranking"`
}

// Player returns the snapshot of the named player.
func (s Snapshot) Player(username string) (PlayerSnapshot, bool) {
	for _, p := range s.Players {
		if p.Username == username {
			return p, true
		}
	}
	return PlayerSnapshot{}, false
}

// TotalChips is pot plus every bet and stack.
func (s Snapshot) TotalChips() int {
	total := s.Pot
	for _, p := range s.Players {
		total += p.Chips + p.Bet
	}
	return total
}

// Redacted returns a copy with every hole card hidden except the viewer's.
// Cards shown down at showdown stay visible.
func (s Snapshot) Redacted(viewer string) Snapshot {
	out := s
	out.Players = make([]PlayerSnapshot, len(s.Players))
	for i, p := range s.Players {
		if p.Username != viewer {
			p.Hole = nil
		}
		out.Players[i] = p
	}
	return out
}

func (t *Table) snapshotLocked() Snapshot {
	s := Snapshot{
		TableID:       t.id,
		HandID:        t.handID,
		HandNumber:    t.handNumber,
		Seq:           t.seq,
		State:         t.state,
		Pot:           t.pot,
		CurrentBet:    t.currentBet,
		Community:     append([]deck.Card{}, t.community...),
		Players:       make([]PlayerSnapshot, len(t.players)),
		DeckRemaining: t.deck.Remaining(),
	}
	if p := t.currentPlayerLocked(); p != nil {
		s.CurrentPlayer = p.username
	}
	if t.smallBlind >= 0 && t.smallBlind < len(t.players) {
		s.SmallBlind = t.players[t.smallBlind].username
	}
	if t.bigBlind >= 0 && t.bigBlind < len(t.players) {
		s.BigBlind = t.players[t.bigBlind].username
	}
	for i, p := range t.players {
		s.Players[i] = PlayerSnapshot{
			Username:  p.username,
			Seat:      p.seat,
			Chips:     p.chips,
			Bet:       p.bet,
			Committed: p.committed,
			Status:    p.status,
			AllIn:     p.allIn(),
			Hole:      p.hand.Cards(),
		}
	}
	if len(t.winners) > 0 {
		s.Winners = append([]Winner(nil), t.winners...)
	}
	if len(t.showdown) > 0 {
		s.Showdown = append([]ShowdownHand(nil), t.showdown...)
	}
	if t.lastAction != nil {
		rec := *t.lastAction
		s.LastAction = &rec
	}
	return s
}
