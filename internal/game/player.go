package game

import (
	"github.com/lox/pokeronline/internal/deck"
	"github.com/lox/pokeronline/internal/evaluator"
)

// Player is a seat at a table. Its fields are owned by the table; the
// accessors take the table lock and the action methods route through
// Table.Act.
type Player struct {
	table *Table

	username  string
	seat      int
	chips     int
	bet       int
	committed int // chips swept into the pot this hand
	hand      evaluator.Hand
	status    PlayerStatus
}

// Username returns the player's name
func (p *Player) Username() string {
	return p.username
}

// Chips returns the player's stack, excluding the current bet.
func (p *Player) Chips() int {
	p.table.mu.Lock()
	defer p.table.mu.Unlock()
	return p.chips
}

// Bet returns the chips the player has put in during the current round.
func (p *Player) Bet() int {
	p.table.mu.Lock()
	defer p.table.mu.Unlock()
	return p.bet
}

// Status returns the player's standing in the hand.
func (p *Player) Status() PlayerStatus {
	p.table.mu.Lock()
	defer p.table.mu.Unlock()
	return p.status
}

// Hand returns a copy of the player's hole cards.
func (p *Player) Hand() []deck.Card {
	p.table.mu.Lock()
	defer p.table.mu.Unlock()
	return p.hand.Cards()
}

// IsAllIn reports whether the player has no chips behind.
func (p *Player) IsAllIn() bool {
	p.table.mu.Lock()
	defer p.table.mu.Unlock()
	return p.allIn()
}

// Fold gives up the hand.
func (p *Player) Fold() error {
	return p.table.Act(p.username, Action{Kind: Fold})
}

// Call matches the table's current bet, going all-in if short.
func (p *Player) Call() error {
	return p.table.Act(p.username, Action{Kind: Call})
}

// Raise sets the current bet to amount and calls it.
func (p *Player) Raise(amount int) error {
	return p.table.Act(p.username, Action{Kind: Raise, Amount: amount})
}

// Check passes when the player's bet already matches.
func (p *Player) Check() error {
	return p.table.Act(p.username, Action{Kind: Check})
}

func (p *Player) allIn() bool {
	return p.chips == 0
}

// inHand reports whether the player still contests the pot.
func (p *Player) inHand() bool {
	return p.status != StatusRetired
}

// canAct reports whether the player can still make decisions this hand.
func (p *Player) canAct() bool {
	return p.inHand() && !p.allIn()
}

// pay moves up to amount from the stack to the bet and returns what moved.
func (p *Player) pay(amount int) int {
	amount = max(0, min(amount, p.chips))
	p.chips -= amount
	p.bet += amount
	return amount
}
