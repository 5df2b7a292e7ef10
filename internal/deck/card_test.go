package deck

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCards(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Card
		wantErr  bool
	}{
		{
			name:  "royal flush",
			input: "AsKsQsJsTs",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Spades, Rank: King},
				{Suit: Spades, Rank: Queen},
				{Suit: Spades, Rank: Jack},
				{Suit: Spades, Rank: Ten},
			},
		},
		{
			name:  "mixed suits with separators",
			input: "Ah Kd, Qc",
			expected: []Card{
				{Suit: Hearts, Rank: Ace},
				{Suit: Diamonds, Rank: King},
				{Suit: Clubs, Rank: Queen},
			},
		},
		{
			name:  "case insensitive",
			input: "asKHqDjc",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Hearts, Rank: King},
				{Suit: Diamonds, Rank: Queen},
				{Suit: Clubs, Rank: Jack},
			},
		},
		{name: "invalid rank", input: "XsKs", wantErr: true},
		{name: "invalid suit", input: "AsKx", wantErr: true},
		{name: "odd length", input: "AsK", wantErr: true},
		{name: "empty string", input: "", expected: []Card{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCards(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "A♠", NewCard(Spades, Ace).String())
	assert.Equal(t, "T♥", NewCard(Hearts, Ten).String())
	assert.Equal(t, "2♣", NewCard(Clubs, Two).String())
	assert.Equal(t, "Qd", NewCard(Diamonds, Queen).Code())
}

func TestCardEqual(t *testing.T) {
	a := NewCard(Hearts, King)
	assert.True(t, a.Equal(NewCard(Hearts, King)))
	assert.False(t, a.Equal(NewCard(Spades, King)))
	assert.False(t, a.Equal(NewCard(Hearts, Queen)))
}

func TestCardCompareSuitFirst(t *testing.T) {
	aceClubs := NewCard(Clubs, Ace)
	twoSpades := NewCard(Spades, Two)

	// Suit dominates rank.
	assert.Equal(t, -1, aceClubs.Compare(twoSpades))
	assert.Equal(t, 1, twoSpades.Compare(aceClubs))

	assert.Equal(t, -1, NewCard(Hearts, Two).Compare(NewCard(Hearts, Three)))
	assert.Equal(t, 0, NewCard(Hearts, Two).Compare(NewCard(Hearts, Two)))
}

func TestCardIndexMatchesCanonicalOrder(t *testing.T) {
	assert.Equal(t, 0, NewCard(Clubs, Two).Index())
	assert.Equal(t, 12, NewCard(Clubs, Ace).Index())
	assert.Equal(t, 13, NewCard(Diamonds, Two).Index())
	assert.Equal(t, 51, NewCard(Spades, Ace).Index())
}

func TestCardJSON(t *testing.T) {
	cards := MustParseCards("AsTd2c")
	data, err := json.Marshal(cards)
	require.NoError(t, err)
	assert.JSONEq(t, `["As","Td","2c"]`, string(data))

	var back []Card
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, cards, back)

	_, err = json.Marshal(Card{})
	assert.Error(t, err)
}

func TestFormatCards(t *testing.T) {
	assert.Equal(t, "A♠ K♥", FormatCards(MustParseCards("AsKh")))
	assert.Equal(t, "", FormatCards(nil))
}
