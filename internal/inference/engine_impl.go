package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/samcharles93/loom/internal/logits"
	"github.com/samcharles93/loom/internal/tokenizer"
)

// EngineImpl wires a scorer and tokenizer into the Engine contract.
type EngineImpl struct {
	score Scorer
	tok   tokenizer.Tokenizer
	now   func() int64
}

// NewEngine returns an engine generating with the given scorer and
// tokenizer.
func NewEngine(score Scorer, tok tokenizer.Tokenizer) *EngineImpl {
	return &EngineImpl{
		score: score,
		tok:   tok,
		now:   func() int64 { return time.Now().UnixNano() },
	}
}

func (e *EngineImpl) Close() error { return nil }

// Generate validates the request, encodes the prompt, runs the sampling loop
// and decodes each sample's continuation. A seed of -1 selects a
// time-derived seed; any other value makes the call reproducible.
func (e *EngineImpl) Generate(ctx context.Context, req *Request, stream StreamFunc) (*Result, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids, err := e.tok.Encode(req.Prompt)
	if err != nil {
		return nil, fmt.Errorf("encode prompt: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("prompt produced no tokens")
	}

	seed := req.Seed
	if seed == -1 {
		seed = e.now()
	}

	if req.EchoPrompt && stream != nil {
		stream(req.Prompt)
	}

	gen := &Generator{
		Score: e.score,
		Sampler: logits.NewSampler(logits.SamplerConfig{
			Seed:        seed,
			Temperature: float32(req.Temperature),
			TopK:        req.TopK,
			TopP:        float32(req.TopP),
		}),
	}
	if stream != nil {
		decode := e.tok.Decode
		if rd, ok := e.tok.(interface{ DecodeRaw([]int) (string, error) }); ok {
			decode = rd.DecodeRaw
		}
		gen.OnToken = func(sample, token int) {
			if sample != 0 {
				return
			}
			s, err := decode([]int{token})
			if err == nil {
				stream(s)
			}
		}
	}

	rows, stats, err := gen.Generate(ctx, ids, req.Length, req.NumSamples)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(rows))
	for i, row := range rows {
		text, err := e.tok.Decode(row[len(ids):])
		if err != nil {
			return nil, fmt.Errorf("decode sample %d: %w", i, err)
		}
		texts[i] = text
	}

	return &Result{Texts: texts, Stats: stats}, nil
}
