package evaluator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lox/pokeronline/internal/deck"
)

var (
	// ErrInvalidHandSize is returned when fewer than 5 or more than 7 cards are evaluated.
	ErrInvalidHandSize = errors.New("hand must contain between 5 and 7 cards")
	// ErrDuplicateCard is returned when the same card appears twice.
	ErrDuplicateCard = errors.New("duplicate card")
)

const (
	MinCards = 5
	MaxCards = 7
)

// Ranking is the value of the best five-card hand found in a set of cards.
type Ranking struct {
	Category Category `json:"category"`
	// Ranks are the tie-break ranks, most significant first: group ranks by
	// group size then rank, or the top card for straights.
	Ranks []deck.Rank `json:"ranks"`
	// Cards are the five cards making the hand, ordered like Ranks.
	Cards []deck.Card `json:"cards"`
	score uint32
}

// Score packs category and tie-break ranks into one comparable integer;
// higher is stronger.
func (r Ranking) Score() uint32 {
	return r.score
}

// Compare returns -1 if r is weaker than other, 0 if they tie and 1 if r is stronger.
func (r Ranking) Compare(other Ranking) int {
	switch {
	case r.score < other.score:
		return -1
	case r.score > other.score:
		return 1
	default:
		return 0
	}
}

// Beats reports whether r is strictly stronger than other.
func (r Ranking) Beats(other Ranking) bool {
	return r.score > other.score
}

// String describes the hand, e.g. "Full House (K♠ K♥ K♦ 5♣ 5♠)".
func (r Ranking) String() string {
	if len(r.Cards) == 0 {
		return r.Category.String()
	}
	return fmt.Sprintf("%s (%s)", r.Category, deck.FormatCards(r.Cards))
}

// Describe gives the rank-level name such as "Two Pair, Kings and Fives".
func (r Ranking) Describe() string {
	if len(r.Ranks) == 0 {
		return r.Category.String()
	}
	switch r.Category {
	case HighCard:
		return fmt.Sprintf("High Card, %s", rankName(r.Ranks[0]))
	case Pair:
		return fmt.Sprintf("Pair of %s", plural(r.Ranks[0]))
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", plural(r.Ranks[0]), plural(r.Ranks[1]))
	case ThreeOfAKind:
		return fmt.Sprintf("Three %s", plural(r.Ranks[0]))
	case Straight:
		return fmt.Sprintf("Straight, %s high", rankName(r.Ranks[0]))
	case Flush:
		return fmt.Sprintf("Flush, %s high", rankName(r.Ranks[0]))
	case FullHouse:
		return fmt.Sprintf("Full House, %s full of %s", plural(r.Ranks[0]), plural(r.Ranks[1]))
	case FourOfAKind:
		return fmt.Sprintf("Four %s", plural(r.Ranks[0]))
	case StraightFlush:
		return fmt.Sprintf("Straight Flush, %s high", rankName(r.Ranks[0]))
	default:
		return r.Category.String()
	}
}

// Evaluate finds the strongest five-card hand among 5 to 7 cards by trying
// every five-card subset.
func Evaluate(cards []deck.Card) (Ranking, error) {
	if len(cards) < MinCards || len(cards) > MaxCards {
		return Ranking{}, fmt.Errorf("%w: got %d", ErrInvalidHandSize, len(cards))
	}
	for i, c := range cards {
		if !c.Valid() {
			return Ranking{}, fmt.Errorf("invalid card %v at position %d", c, i)
		}
		if containsCard(cards[:i], c) {
			return Ranking{}, fmt.Errorf("%s: %w", c, ErrDuplicateCard)
		}
	}

	var best Ranking
	var five [5]deck.Card
	n := len(cards)
	found := false
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						five = [5]deck.Card{cards[a], cards[b], cards[c], cards[d], cards[e]}
						r := evaluateFive(five)
						if !found || r.score > best.score {
							best = r
							found = true
						}
					}
				}
			}
		}
	}
	return best, nil
}

// MustEvaluate is Evaluate for fixtures; it panics on invalid input.
func MustEvaluate(cards []deck.Card) Ranking {
	r, err := Evaluate(cards)
	if err != nil {
		panic(err)
	}
	return r
}

// evaluateFive classifies exactly five distinct cards.
func evaluateFive(cards [5]deck.Card) Ranking {
	var counts [deck.Ace + 1]int
	flush := true
	for i, c := range cards {
		counts[c.Rank]++
		if i > 0 && c.Suit != cards[0].Suit {
			flush = false
		}
	}

	// Distinct ranks ordered by group size, then rank, both descending.
	groups := make([]deck.Rank, 0, 5)
	for r := deck.Ace; r >= deck.Two; r-- {
		if counts[r] > 0 {
			groups = append(groups, r)
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return counts[groups[i]] > counts[groups[j]]
	})

	straightHigh := deck.Rank(0)
	if len(groups) == 5 {
		switch {
		case groups[0]-groups[4] == 4:
			straightHigh = groups[0]
		case groups[0] == deck.Ace && groups[1] == deck.Five:
			straightHigh = deck.Five
		}
	}

	var category Category
	ranks := groups
	switch {
	case straightHigh != 0 && flush && straightHigh == deck.Ace:
		category = RoyalFlush
		ranks = []deck.Rank{straightHigh}
	case straightHigh != 0 && flush:
		category = StraightFlush
		ranks = []deck.Rank{straightHigh}
	case counts[groups[0]] == 4:
		category = FourOfAKind
	case counts[groups[0]] == 3 && counts[groups[1]] == 2:
		category = FullHouse
	case flush:
		category = Flush
	case straightHigh != 0:
		category = Straight
		ranks = []deck.Rank{straightHigh}
	case counts[groups[0]] == 3:
		category = ThreeOfAKind
	case counts[groups[0]] == 2 && counts[groups[1]] == 2:
		category = TwoPair
	case counts[groups[0]] == 2:
		category = Pair
	default:
		category = HighCard
	}

	return Ranking{
		Category: category,
		Ranks:    ranks,
		Cards:    orderCards(cards, counts[:], straightHigh == deck.Five),
		score:    pack(category, ranks),
	}
}

// pack puts the category in the top bits and up to five 4-bit ranks below it.
func pack(category Category, ranks []deck.Rank) uint32 {
	score := uint32(category) << 20
	for i, r := range ranks {
		score |= uint32(r) << (16 - 4*i)
	}
	return score
}

func orderCards(cards [5]deck.Card, counts []int, wheel bool) []deck.Card {
	out := append([]deck.Card(nil), cards[:]...)
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].Rank, out[j].Rank
		if wheel {
			// The ace plays low in A-2-3-4-5.
			if ri == deck.Ace {
				ri = 1
			}
			if rj == deck.Ace {
				rj = 1
			}
		}
		if counts[out[i].Rank] != counts[out[j].Rank] {
			return counts[out[i].Rank] > counts[out[j].Rank]
		}
		if ri != rj {
			return ri > rj
		}
		return out[i].Suit > out[j].Suit
	})
	return out
}

func rankName(r deck.Rank) string {
	switch r {
	case deck.Two:
		return "Two"
	case deck.Three:
		return "Three"
	case deck.Four:
		return "Four"
	case deck.Five:
		return "Five"
	case deck.Six:
		return "Six"
	case deck.Seven:
		return "Seven"
	case deck.Eight:
		return "Eight"
	case deck.Nine:
		return "Nine"
	case deck.Ten:
		return "Ten"
	case deck.Jack:
		return "Jack"
	case deck.Queen:
		return "Queen"
	case deck.King:
		return "King"
	case deck.Ace:
		return "Ace"
	default:
		return "?"
	}
}

func plural(r deck.Rank) string {
	name := rankName(r)
	if r == deck.Six {
		return name + "es"
	}
	return name + "s"
}
