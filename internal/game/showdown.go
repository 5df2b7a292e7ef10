package game

import (
	"fmt"
	"sort"

	"github.com/lox/pokeronline/internal/evaluator"
)

// showdownLocked ranks every player still in the hand on hole cards plus the
// board and splits the pot between the strongest. Odd chips go to the tied
// winners in seat order starting from the small blind.
func (t *Table) showdownLocked() error {
	var (
		best    evaluator.Ranking
		winners []int
		ranks   = make(map[int]evaluator.Ranking)
	)
	for i, p := range t.players {
		if !p.inHand() {
			continue
		}
		cards := append(p.hand.Cards(), t.community...)
		r, err := evaluator.Evaluate(cards)
		if err != nil {
			return fmt.Errorf("showdown for %s: %w", p.username, err)
		}
		ranks[i] = r
		t.showdown = append(t.showdown, ShowdownHand{Username: p.username, Hole: p.hand.Cards(), Ranking: r})

		switch {
		case len(winners) == 0 || r.Beats(best):
			best = r
			winners = []int{i}
		case r.Compare(best) == 0:
			winners = append(winners, i)
		}
	}

	t.splitPotLocked(winners, ranks)
	t.finishHandLocked()
	return nil
}

func (t *Table) splitPotLocked(winners []int, ranks map[int]evaluator.Ranking) {
	n := len(t.players)
	start := max(t.smallBlind, 0)
	sort.Slice(winners, func(i, j int) bool {
		return (winners[i]-start+n)%n < (winners[j]-start+n)%n
	})

	share, odd := t.pot/len(winners), t.pot%len(winners)
	for k, i := range winners {
		amount := share
		if k < odd {
			amount++
		}
		p := t.players[i]
		p.chips += amount
		p.status = StatusWinner

		w := Winner{Username: p.username, Amount: amount}
		if r, ok := ranks[i]; ok {
			w.Ranking = &r
		}
		t.winners = append(t.winners, w)
	}
}

// awardUncontestedLocked hands the pot to the last player who has not folded.
func (t *Table) awardUncontestedLocked() {
	t.sweepBetsLocked()
	for i, p := range t.players {
		if p.inHand() {
			t.splitPotLocked([]int{i}, nil)
			break
		}
	}
	t.finishHandLocked()
}

func (t *Table) finishHandLocked() {
	t.pot = 0
	t.currentBet = 0
	for _, p := range t.players {
		p.committed = 0
	}
	t.state = GameOver
	t.current = -1
}

func (t *Table) logHandResult() {
	for _, w := range t.winners {
		if w.Ranking != nil {
			t.logger.Info("Hand won", "hand", t.handID, "player", w.Username, "amount", w.Amount, "hand_rank", w.Ranking.Describe())
		} else {
			t.logger.Info("Hand won uncontested", "hand", t.handID, "player", w.Username, "amount", w.Amount)
		}
	}
}
