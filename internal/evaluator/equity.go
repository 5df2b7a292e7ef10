package evaluator

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lox/pokeronline/internal/deck"
	"github.com/lox/pokeronline/internal/randutil"
)

// EquityResult is one player's share of simulated showdowns.
type EquityResult struct {
	Hole   []deck.Card
	Wins   int
	Ties   int
	Trials int
	// Equity is wins plus split fractions of ties, divided by Trials.
	Equity float64
	// Categories counts the final hand category reached per trial.
	Categories map[Category]int
}

type equityTally struct {
	wins       []int
	ties       []int
	shares     []float64
	categories []map[Category]int
	trials     int
}

func newTally(players int) *equityTally {
	t := &equityTally{
		wins:       make([]int, players),
		ties:       make([]int, players),
		shares:     make([]float64, players),
		categories: make([]map[Category]int, players),
	}
	for i := range t.categories {
		t.categories[i] = make(map[Category]int)
	}
	return t
}

func (t *equityTally) merge(o *equityTally) {
	for i := range t.wins {
		t.wins[i] += o.wins[i]
		t.ties[i] += o.ties[i]
		t.shares[i] += o.shares[i]
		for c, n := range o.categories[i] {
			t.categories[i][c] += n
		}
	}
	t.trials += o.trials
}

// Equity estimates each hole-card pair's chance of winning by dealing out the
// rest of the board at random. A complete board is evaluated once. Trials are
// split across workers, each with its own generator derived from seed.
func Equity(ctx context.Context, holes [][]deck.Card, board []deck.Card, iterations int, seed int64) ([]EquityResult, error) {
	if len(holes) < 2 {
		return nil, errors.New("equity needs at least two hands")
	}
	if len(board) > 5 {
		return nil, fmt.Errorf("board cannot have more than 5 cards, got %d", len(board))
	}
	if iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", iterations)
	}

	var used []deck.Card
	for i, hole := range holes {
		if len(hole) != 2 {
			return nil, fmt.Errorf("hand %d: must contain exactly 2 cards, got %d", i+1, len(hole))
		}
		used = append(used, hole...)
	}
	used = append(used, board...)
	for i, c := range used {
		if containsCard(used[:i], c) {
			return nil, fmt.Errorf("%s: %w", c, ErrDuplicateCard)
		}
	}

	var stub []deck.Card
	for _, c := range deck.NewDeck(nil).Cards() {
		if !containsCard(used, c) {
			stub = append(stub, c)
		}
	}

	workers := min(runtime.NumCPU(), 8)
	if len(board) == 5 {
		iterations, workers = 1, 1
	}
	workers = min(workers, iterations)

	g, ctx := errgroup.WithContext(ctx)
	tallies := make([]*equityTally, workers)
	per, extra := iterations/workers, iterations%workers
	for w := 0; w < workers; w++ {
		trials := per
		if w < extra {
			trials++
		}
		g.Go(func() error {
			t, err := runEquityWorker(ctx, holes, board, stub, trials, seed+int64(w))
			tallies[w] = t
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := newTally(len(holes))
	for _, t := range tallies {
		total.merge(t)
	}

	results := make([]EquityResult, len(holes))
	for i, hole := range holes {
		results[i] = EquityResult{
			Hole:       hole,
			Wins:       total.wins[i],
			Ties:       total.ties[i],
			Trials:     total.trials,
			Equity:     total.shares[i] / float64(total.trials),
			Categories: total.categories[i],
		}
	}
	return results, nil
}

func runEquityWorker(ctx context.Context, holes [][]deck.Card, board, stub []deck.Card, trials int, seed int64) (*equityTally, error) {
	rng := randutil.New(seed)
	tally := newTally(len(holes))
	pool := append([]deck.Card(nil), stub...)
	full := make([]deck.Card, 5)
	seven := make([]deck.Card, 7)
	ranks := make([]Ranking, len(holes))

	for trial := 0; trial < trials; trial++ {
		if trial%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return tally, err
			}
		}

		copy(full, board)
		for i := len(board); i < 5; i++ {
			// Partial Fisher-Yates: pick from the untouched front of the pool.
			j := rng.IntN(len(pool) - (i - len(board)))
			last := len(pool) - 1 - (i - len(board))
			pool[j], pool[last] = pool[last], pool[j]
			full[i] = pool[last]
		}

		var best Ranking
		winners := 0
		for p, hole := range holes {
			copy(seven, hole)
			copy(seven[2:], full)
			r, err := Evaluate(seven)
			if err != nil {
				return tally, err
			}
			ranks[p] = r
			tally.categories[p][r.Category]++
			switch {
			case p == 0 || r.Beats(best):
				best = r
				winners = 1
			case r.Compare(best) == 0:
				winners++
			}
		}

		for p := range holes {
			if ranks[p].Compare(best) != 0 {
				continue
			}
			if winners == 1 {
				tally.wins[p]++
			} else {
				tally.ties[p]++
			}
			tally.shares[p] += 1 / float64(winners)
		}
		tally.trials++
	}
	return tally, nil
}
