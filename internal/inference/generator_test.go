package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/samcharles93/loom/internal/logits"
)

// uniformScorer returns flat logits over a fixed vocabulary and records how
// it was called.
type uniformScorer struct {
	vocab    int
	calls    int
	lastSeen [][]int
}

func (s *uniformScorer) score(tokens []int) ([]float32, error) {
	s.calls++
	s.lastSeen = append(s.lastSeen, append([]int(nil), tokens...))
	return make([]float32, s.vocab), nil
}

func newGenerator(seed int64, score Scorer) *Generator {
	return &Generator{
		Score: score,
		Sampler: logits.NewSampler(logits.SamplerConfig{
			Seed:        seed,
			Temperature: 1,
			TopK:        0,
			TopP:        0,
		}),
	}
}

// TestGenerateShape checks the output matrix dimensions and that every row
// starts with the prompt.
func TestGenerateShape(t *testing.T) {
	t.Parallel()
	scorer := &uniformScorer{vocab: 10}
	g := newGenerator(1, scorer.score)

	rows, stats, err := g.Generate(context.Background(), []int{7, 8}, 5, 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if len(row) != 7 {
			t.Fatalf("row %d: expected 7 tokens, got %d", i, len(row))
		}
		if row[0] != 7 || row[1] != 8 {
			t.Fatalf("row %d does not start with prompt: %v", i, row)
		}
	}
	if stats.TokensGenerated != 15 {
		t.Fatalf("expected 15 generated tokens, got %d", stats.TokensGenerated)
	}
	if scorer.calls != 15 {
		t.Fatalf("expected one scoring call per row per step, got %d", scorer.calls)
	}
}

// TestGenerateZeroLength returns the replicated prompt unchanged without
// touching the scorer.
func TestGenerateZeroLength(t *testing.T) {
	t.Parallel()
	scorer := &uniformScorer{vocab: 10}
	g := newGenerator(1, scorer.score)

	rows, _, err := g.Generate(context.Background(), []int{1, 2, 3}, 0, 2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for i, row := range rows {
		if len(row) != 3 || row[0] != 1 || row[1] != 2 || row[2] != 3 {
			t.Fatalf("row %d modified: %v", i, row)
		}
	}
	if scorer.calls != 0 {
		t.Fatalf("expected no scoring calls, got %d", scorer.calls)
	}
}

// TestGenerateDeterministic verifies identical seeds give identical output
// matrices.
func TestGenerateDeterministic(t *testing.T) {
	t.Parallel()
	run := func() [][]int {
		scorer := &uniformScorer{vocab: 50}
		g := newGenerator(42, scorer.score)
		rows, _, err := g.Generate(context.Background(), []int{0}, 16, 2)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		return rows
	}

	a, b := run(), run()
	for r := range a {
		for i := range a[r] {
			if a[r][i] != b[r][i] {
				t.Fatalf("row %d token %d differs: %d vs %d", r, i, a[r][i], b[r][i])
			}
		}
	}
}

// TestGenerateFullHistory checks that every scoring call sees the row's
// complete history including previously drawn tokens.
func TestGenerateFullHistory(t *testing.T) {
	t.Parallel()
	scorer := &uniformScorer{vocab: 10}
	g := newGenerator(3, scorer.score)

	rows, _, err := g.Generate(context.Background(), []int{9}, 3, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	row := rows[0]

	if len(scorer.lastSeen) != 3 {
		t.Fatalf("expected 3 scoring calls, got %d", len(scorer.lastSeen))
	}
	for step, seen := range scorer.lastSeen {
		want := row[:1+step]
		if len(seen) != len(want) {
			t.Fatalf("step %d: scorer saw %d tokens, want %d", step, len(seen), len(want))
		}
		for i := range want {
			if seen[i] != want[i] {
				t.Fatalf("step %d: history mismatch at %d: %v vs %v", step, i, seen, want)
			}
		}
	}
}

// TestGenerateScorerError aborts the call with no partial result.
func TestGenerateScorerError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	calls := 0
	score := func(tokens []int) ([]float32, error) {
		calls++
		if calls == 3 {
			return nil, boom
		}
		return make([]float32, 4), nil
	}
	g := newGenerator(1, score)

	rows, _, err := g.Generate(context.Background(), []int{0}, 5, 1)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped scorer error, got %v", err)
	}
	if rows != nil {
		t.Fatalf("expected no partial result, got %v", rows)
	}
}

// TestGenerateCancelled stops between steps when the context is done.
func TestGenerateCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scorer := &uniformScorer{vocab: 4}
	g := newGenerator(1, scorer.score)
	if _, _, err := g.Generate(ctx, []int{0}, 5, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if scorer.calls != 0 {
		t.Fatalf("expected no scoring after cancellation, got %d calls", scorer.calls)
	}
}
