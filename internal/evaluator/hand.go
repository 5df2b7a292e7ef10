package evaluator

import (
	"fmt"

	"github.com/lox/pokeronline/internal/deck"
)

// Hand is an ordered collection of distinct cards. The zero value is empty and
// ready to use.
type Hand struct {
	cards []deck.Card
}

// NewHand builds a hand from the given cards.
func NewHand(cards ...deck.Card) (*Hand, error) {
	h := &Hand{}
	if err := h.Add(cards...); err != nil {
		return nil, err
	}
	return h, nil
}

// Add appends cards in order. Nothing is added if any card is invalid or
// already held.
func (h *Hand) Add(cards ...deck.Card) error {
	for i, c := range cards {
		if !c.Valid() {
			return fmt.Errorf("add %v: invalid card", c)
		}
		if h.Contains(c) || containsCard(cards[:i], c) {
			return fmt.Errorf("add %s: %w", c, ErrDuplicateCard)
		}
	}
	h.cards = append(h.cards, cards...)
	return nil
}

// Remove drops the card from the hand, reporting whether it was present.
func (h *Hand) Remove(c deck.Card) bool {
	for i, held := range h.cards {
		if held.Equal(c) {
			h.cards = append(h.cards[:i], h.cards[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether the card is in the hand.
func (h *Hand) Contains(c deck.Card) bool {
	return containsCard(h.cards, c)
}

// Cards returns a copy of the held cards in insertion order.
func (h *Hand) Cards() []deck.Card {
	out := make([]deck.Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Len returns the number of cards held.
func (h *Hand) Len() int {
	return len(h.cards)
}

// Clear empties the hand and returns what it held.
func (h *Hand) Clear() []deck.Card {
	held := h.cards
	h.cards = nil
	return held
}

// Evaluate ranks the best five-card hand among the held cards.
func (h *Hand) Evaluate() (Ranking, error) {
	return Evaluate(h.cards)
}

// String returns the cards in display form
func (h *Hand) String() string {
	return deck.FormatCards(h.cards)
}

func containsCard(cards []deck.Card, c deck.Card) bool {
	for _, held := range cards {
		if held.Equal(c) {
			return true
		}
	}
	return false
}
