package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokeronline/internal/deck"
)

func eval(t *testing.T, cards string) Ranking {
	t.Helper()
	r, err := Evaluate(deck.MustParseCards(cards))
	require.NoError(t, err)
	return r
}

func TestEvaluateCategories(t *testing.T) {
	tests := []struct {
		name     string
		cards    string
		category Category
		ranks    []deck.Rank
	}{
		{"royal flush", "AsKsQsJsTs", RoyalFlush, []deck.Rank{deck.Ace}},
		{"straight flush", "9h8h7h6h5h", StraightFlush, []deck.Rank{deck.Nine}},
		{"steel wheel", "5d4d3d2dAd", StraightFlush, []deck.Rank{deck.Five}},
		{"four of a kind", "7s7h7d7cKs", FourOfAKind, []deck.Rank{deck.Seven, deck.King}},
		{"full house", "KsKhKd5c5s", FullHouse, []deck.Rank{deck.King, deck.Five}},
		{"flush", "AhJh8h4h2h", Flush, []deck.Rank{deck.Ace, deck.Jack, deck.Eight, deck.Four, deck.Two}},
		{"straight", "Ts9h8d7c6s", Straight, []deck.Rank{deck.Ten}},
		{"broadway", "AsKhQdJcTs", Straight, []deck.Rank{deck.Ace}},
		{"wheel", "As2h3d4c5s", Straight, []deck.Rank{deck.Five}},
		{"three of a kind", "QsQhQd9c2s", ThreeOfAKind, []deck.Rank{deck.Queen, deck.Nine, deck.Two}},
		{"two pair", "JsJh4d4cAs", TwoPair, []deck.Rank{deck.Jack, deck.Four, deck.Ace}},
		{"pair", "9s9hAdKc3s", Pair, []deck.Rank{deck.Nine, deck.Ace, deck.King, deck.Three}},
		{"high card", "AsJh8d5c3s", HighCard, []deck.Rank{deck.Ace, deck.Jack, deck.Eight, deck.Five, deck.Three}},
		{"no wraparound straight", "QsKhAd2c3s", HighCard, []deck.Rank{deck.Ace, deck.King, deck.Queen, deck.Three, deck.Two}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := eval(t, tt.cards)
			assert.Equal(t, tt.category, r.Category)
			assert.Equal(t, tt.ranks, r.Ranks)
			assert.Len(t, r.Cards, 5)
		})
	}
}

func TestEvaluateBestOfSeven(t *testing.T) {
	tests := []struct {
		name     string
		cards    string
		category Category
		best     string
	}{
		{"flush beats straight on board", "AhKh9h5h2h6c7d", Flush, "AhKh9h5h2h"},
		{"full house from two trips", "AsAhAdKsKhKd2c", FullHouse, "AsAhAdKsKh"},
		{"quads with best kicker", "8s8h8d8c2s3hQd", FourOfAKind, "8s8h8d8cQd"},
		{"straight uses highest run", "4s5h6d7c8s9hAd", Straight, "9h8s7c6d5h"},
		{"two pair picks top pairs", "AsAhKsKhQsQh2c", TwoPair, "AsAhKsKhQs"},
		{"royal hidden in seven", "AsKsQsJsTs9s8s", RoyalFlush, "AsKsQsJsTs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := eval(t, tt.cards)
			assert.Equal(t, tt.category, r.Category)
			assert.ElementsMatch(t,
				rankList(deck.MustParseCards(tt.best)), rankList(r.Cards))
		})
	}
}

func rankList(cards []deck.Card) []deck.Rank {
	out := make([]deck.Rank, len(cards))
	for i, c := range cards {
		out[i] = c.Rank
	}
	return out
}

func TestCategoryOrdering(t *testing.T) {
	ordered := []string{
		"AsJh8d5c3s", // high card
		"9s9hAdKc3s", // pair
		"JsJh4d4cAs", // two pair
		"QsQhQd9c2s", // trips
		"As2h3d4c5s", // wheel
		"AhJh8h4h2h", // flush
		"KsKhKd5c5s", // full house
		"7s7h7d7cKs", // quads
		"9h8h7h6h5h", // straight flush
		"AsKsQsJsTs", // royal
	}
	for i := 1; i < len(ordered); i++ {
		lo := eval(t, ordered[i-1])
		hi := eval(t, ordered[i])
		assert.True(t, hi.Beats(lo), "%s should beat %s", hi, lo)
		assert.Equal(t, -1, lo.Compare(hi))
	}
}

func TestKickersBreakTies(t *testing.T) {
	tests := []struct {
		name   string
		better string
		worse  string
	}{
		{"pair kicker", "9s9hAdKc3s", "9d9cAhQc3h"},
		{"two pair kicker", "JsJh4d4cAs", "JdJc4h4sKs"},
		{"higher second pair", "JsJh5d5c2s", "JdJc4h4sAs"},
		{"flush second card", "AhKh8h4h2h", "AdQd8d4d2d"},
		{"full house trips rank", "3s3h3d2c2s", "2h2d2sAcAs"},
		{"straight beats wheel", "6s5h4d3c2s", "As2h3d4c5s"},
		{"quads kicker", "7s7h7d7cKs", "7s7h7d7cQs"},
		{"high card last kicker", "AsJh8d5c3s", "AhJd8c5s2s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := eval(t, tt.better)
			w := eval(t, tt.worse)
			assert.Equal(t, b.Category, w.Category)
			assert.Equal(t, 1, b.Compare(w))
		})
	}
}

func TestExactTie(t *testing.T) {
	a := eval(t, "AsKhQd9c7s")
	b := eval(t, "AhKdQc9s7h")
	assert.Equal(t, 0, a.Compare(b))
	assert.False(t, a.Beats(b))
	assert.False(t, b.Beats(a))
}

func TestEvaluateRejectsBadInput(t *testing.T) {
	_, err := Evaluate(deck.MustParseCards("AsKsQsJs"))
	assert.ErrorIs(t, err, ErrInvalidHandSize)

	_, err = Evaluate(deck.MustParseCards("AsKsQsJsTs9s8s7s"))
	assert.ErrorIs(t, err, ErrInvalidHandSize)

	_, err = Evaluate(nil)
	assert.ErrorIs(t, err, ErrInvalidHandSize)

	_, err = Evaluate(deck.MustParseCards("AsAsQsJsTs"))
	assert.ErrorIs(t, err, ErrDuplicateCard)

	_, err = Evaluate([]deck.Card{{}, {}, {}, {}, {}})
	assert.Error(t, err)
}

func TestWheelCardsOrderAceLast(t *testing.T) {
	r := eval(t, "As2h3d4c5s")
	assert.Equal(t, deck.Five, r.Cards[0].Rank)
	assert.Equal(t, deck.Ace, r.Cards[4].Rank)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Full House, Kings full of Fives", eval(t, "KsKhKd5c5s").Describe())
	assert.Equal(t, "Two Pair, Jacks and Fours", eval(t, "JsJh4d4cAs").Describe())
	assert.Equal(t, "Pair of Sixes", eval(t, "6s6hAdKc3s").Describe())
	assert.Equal(t, "Straight, Five high", eval(t, "As2h3d4c5s").Describe())
	assert.Equal(t, "Royal Flush", eval(t, "AsKsQsJsTs").Describe())
}
