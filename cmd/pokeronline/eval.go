package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/lox/pokeronline/internal/deck"
	"github.com/lox/pokeronline/internal/evaluator"
	"github.com/lox/pokeronline/internal/randutil"
)

// EvalCmd ranks hands, or estimates equity between hole cards.
type EvalCmd struct {
	Hands      []string `arg:"" help:"Hands such as 'AsKsQsJsTs', or two-card holes when --board or --iterations is set"`
	Board      string   `short:"b" help:"Community cards (e.g. 'Td7s8h')"`
	Iterations int      `short:"i" default:"0" help:"Monte Carlo iterations for equity (0 skips equity)"`
	Seed       *int64   `help:"Random seed for reproducible equity"`
	NoColor    bool     `help:"Disable colored output"`
}

func (c *EvalCmd) Run() error {
	if c.NoColor {
		disableColor()
	}

	hands := make([][]deck.Card, len(c.Hands))
	for i, h := range c.Hands {
		cards, err := deck.ParseCards(h)
		if err != nil {
			return fmt.Errorf("hand %d: %w", i+1, err)
		}
		hands[i] = cards
	}
	board, err := deck.ParseCards(c.Board)
	if err != nil {
		return fmt.Errorf("board: %w", err)
	}

	if c.Board == "" && c.Iterations <= 0 {
		return printRankings(os.Stdout, c.Hands, hands)
	}

	if len(board) >= 3 {
		combined := make([][]deck.Card, len(hands))
		for i, h := range hands {
			combined[i] = append(append([]deck.Card{}, h...), board...)
		}
		if err := printRankings(os.Stdout, c.Hands, combined); err != nil {
			return err
		}
	}
	if c.Iterations <= 0 {
		return nil
	}

	seed := randutil.NewSeed()
	if c.Seed != nil {
		seed = *c.Seed
	}
	results, err := evaluator.Equity(context.Background(), hands, board, c.Iterations, seed)
	if err != nil {
		return err
	}
	return printEquity(os.Stdout, results)
}

func printRankings(w io.Writer, labels []string, hands [][]deck.Card) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, headerStyle.Render("Hand")+"\t"+headerStyle.Render("Best five")+"\t"+headerStyle.Render("Rank"))

	rankings := make([]evaluator.Ranking, len(hands))
	for i, cards := range hands {
		r, err := evaluator.Evaluate(cards)
		if err != nil {
			return fmt.Errorf("%s: %w", labels[i], err)
		}
		rankings[i] = r
	}
	best := 0
	for i := range rankings {
		if rankings[i].Beats(rankings[best]) {
			best = i
		}
	}

	for i, r := range rankings {
		label := nameStyle.Render(labels[i])
		if len(hands) > 1 && r.Compare(rankings[best]) == 0 {
			label += winStyle.Render(" *")
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", label, deck.FormatCards(r.Cards), categoryStyle.Render(r.Describe()))
	}
	return tw.Flush()
}

func printEquity(w io.Writer, results []evaluator.EquityResult) error {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Equity over %d trials", results[0].Trials)))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "Hole\tEquity\tWin\tTie\tMost common")
	for _, r := range results {
		trials := float64(max(r.Trials, 1))
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%.2f%%\t%.2f%%\t%s\n",
			nameStyle.Render(deck.FormatCards(r.Hole)),
			winStyle.Render(fmt.Sprintf("%.2f%%", r.Equity*100)),
			float64(r.Wins)/trials*100,
			float64(r.Ties)/trials*100,
			categoryStyle.Render(mostCommon(r.Categories)))
	}
	return tw.Flush()
}

func mostCommon(counts map[evaluator.Category]int) string {
	type pair struct {
		category evaluator.Category
		n        int
	}
	pairs := make([]pair, 0, len(counts))
	for c, n := range counts {
		pairs = append(pairs, pair{c, n})
	}
	if len(pairs) == 0 {
		return "-"
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].n != pairs[j].n {
			return pairs[i].n > pairs[j].n
		}
		return pairs[i].category > pairs[j].category
	})
	return pairs[0].category.String()
}
