package deck

import "github.com/lox/pokeronline/internal/randutil"

// Size is the number of cards in a standard deck.
const Size = 52

// Deck is a stack of cards. Cards are dealt from the top and can only come back
// through Reset.
type Deck struct {
	cards []Card // top of the deck is the last element
	rng   randutil.Source
}

// NewDeck creates a full deck in canonical order. The source drives Shuffle;
// a nil source falls back to a clock-seeded generator.
func NewDeck(rng randutil.Source) *Deck {
	if rng == nil {
		rng = randutil.New(randutil.NewSeed())
	}
	d := &Deck{
		cards: make([]Card, 0, Size),
		rng:   rng,
	}
	d.Reset()
	return d
}

// NewShuffledDeck is NewDeck followed by Shuffle.
func NewShuffledDeck(rng randutil.Source) *Deck {
	d := NewDeck(rng)
	d.Shuffle()
	return d
}

// Reset restores all 52 cards in canonical order: suit-major, rank-minor,
// so the card at position i*13+j has suit i and rank j.
func (d *Deck) Reset() {
	d.cards = d.cards[:0]
	for _, suit := range Suits {
		for _, rank := range Ranks {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
}

// Shuffle applies an unbiased Fisher-Yates shuffle to the remaining cards.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes up to n cards from the top and returns them in the order they
// were removed. A short deck yields whatever is left, possibly nothing.
func (d *Deck) Deal(n int) []Card {
	if n <= 0 {
		return []Card{}
	}
	if n > len(d.cards) {
		n = len(d.cards)
	}

	dealt := make([]Card, n)
	top := len(d.cards) - 1
	for i := 0; i < n; i++ {
		dealt[i] = d.cards[top-i]
	}
	d.cards = d.cards[:len(d.cards)-n]
	return dealt
}

// DealOne removes the top card. ok is false when the deck is empty.
func (d *Deck) DealOne() (card Card, ok bool) {
	cards := d.Deal(1)
	if len(cards) == 0 {
		return Card{}, false
	}
	return cards[0], true
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards returns a copy of the remaining cards, bottom first.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// NewStackedDeck returns a full deck whose top cards are the given ones, in
// dealing order, with the rest of the deck beneath them in canonical order.
// Replays and tests use it to fix a deal.
func NewStackedDeck(rng randutil.Source, top ...Card) *Deck {
	d := NewDeck(rng)
	stacked := make(map[Card]bool, len(top))
	for _, c := range top {
		stacked[c] = true
	}

	rest := d.cards[:0]
	for _, c := range d.cards {
		if !stacked[c] {
			rest = append(rest, c)
		}
	}
	for i := len(top) - 1; i >= 0; i-- {
		rest = append(rest, top[i])
	}
	d.cards = rest
	return d
}
