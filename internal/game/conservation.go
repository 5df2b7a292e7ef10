package game

import (
	"fmt"

	"github.com/lox/pokeronline/internal/deck"
)

// TotalChips is the pot plus every player's bet and stack.
func (t *Table) TotalChips() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalChipsLocked()
}

func (t *Table) totalChipsLocked() int {
	total := t.pot
	for _, p := range t.players {
		total += p.chips + p.bet
	}
	return total
}

// ValidateChipConservation checks that no chips were created or destroyed.
func (t *Table) ValidateChipConservation(expected int) error {
	if actual := t.TotalChips(); actual != expected {
		return fmt.Errorf("chip conservation violated: expected %d, got %d (difference %d)",
			expected, actual, actual-expected)
	}
	return nil
}

// ValidateCards checks that deck, hole cards, board and discards together
// hold each of the 52 cards exactly once.
func (t *Table) ValidateCards() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[deck.Card]string, deck.Size)
	add := func(where string, cards []deck.Card) error {
		for _, c := range cards {
			if prev, dup := seen[c]; dup {
				return fmt.Errorf("card %s found in %s and %s", c, prev, where)
			}
			seen[c] = where
		}
		return nil
	}

	if err := add("deck", t.deck.Cards()); err != nil {
		return err
	}
	for _, p := range t.players {
		if err := add(p.username, p.hand.Cards()); err != nil {
			return err
		}
	}
	if err := add("board", t.community); err != nil {
		return err
	}
	if err := add("discards", t.discards); err != nil {
		return err
	}
	if len(seen) != deck.Size {
		return fmt.Errorf("expected %d cards in play, found %d", deck.Size, len(seen))
	}
	return nil
}
