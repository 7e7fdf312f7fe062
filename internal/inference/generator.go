package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/samcharles93/loom/internal/logits"
)

// Scorer maps a full token history to next-token logits over the vocabulary.
// The generator passes the complete history on every call; implementations
// may cache internal state as long as outputs are unchanged.
type Scorer func(tokens []int) ([]float32, error)

type Stats struct {
	PromptTokens    int
	TokensGenerated int
	Duration        time.Duration
	TPS             float64
}

// Generator drives the autoregressive loop producing parallel continuations
// of a prompt.
type Generator struct {
	Score   Scorer
	Sampler *logits.Sampler

	// OnToken, when set, is invoked after each draw with the sample row
	// index and the drawn token.
	OnToken func(sample, token int)
}

// Generate extends numSamples copies of the initial tokens by length steps
// and returns the resulting rows, each of size len(initial)+length.
//
// Steps are strictly ordered: every row draws its token for step i before
// any row scores step i+1. Within a step rows are independent; they are
// processed in row order so rng consumption, and therefore output, is
// deterministic for a fixed sampler seed. The context is checked between
// steps. A scorer error aborts the whole call with no partial result.
func (g *Generator) Generate(ctx context.Context, initial []int, length, numSamples int) ([][]int, Stats, error) {
	stats := Stats{PromptTokens: len(initial)}

	rows := make([][]int, numSamples)
	for i := range rows {
		rows[i] = make([]int, len(initial), len(initial)+length)
		copy(rows[i], initial)
	}

	start := time.Now()
	for step := 0; step < length; step++ {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		for r := range rows {
			vec, err := g.Score(rows[r])
			if err != nil {
				return nil, stats, fmt.Errorf("score step %d sample %d: %w", step, r, err)
			}
			next := g.Sampler.Sample(vec)
			rows[r] = append(rows[r], next)
			stats.TokensGenerated++
			if g.OnToken != nil {
				g.OnToken(r, next)
			}
		}
	}

	stats.Duration = time.Since(start)
	if stats.Duration.Seconds() > 0 {
		stats.TPS = float64(stats.TokensGenerated) / stats.Duration.Seconds()
	}
	return rows, stats, nil
}
