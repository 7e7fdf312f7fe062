package model

import (
	"errors"

	"github.com/samcharles93/loom/internal/tensor"
)

// LM is a small deterministic language model used as the scoring collaborator
// for generation. It consists of an embedding matrix, a projection back to
// vocab logits, and a bias vector, all filled from a seed so two models built
// with the same shape and seed score identically.
//
// The hidden state is an exponentially decayed mix of the embeddings of the
// full token history, so later context shifts the distribution. It is
// deliberately simplistic: the point is a cheap, reproducible scorer, not
// model quality.
type LM struct {
	Vocab  int
	Hidden int
	Decay  float32

	emb  tensor.Mat // [Vocab x Hidden]
	proj tensor.Mat // [Vocab x Hidden], logits[i] = dot(proj.Row(i), h)
	bias []float32  // [Vocab]
	h    []float32  // scratch [Hidden]
}

// New constructs a model with the given vocabulary and hidden size. Weights
// are filled deterministically from seed; biases are zero.
func New(vocab, hidden int, seed int64) *LM {
	m := &LM{
		Vocab:  vocab,
		Hidden: hidden,
		Decay:  0.75,
		emb:    tensor.NewMat(vocab, hidden),
		proj:   tensor.NewMat(vocab, hidden),
		bias:   make([]float32, vocab),
		h:      make([]float32, hidden),
	}
	tensor.FillRand(&m.emb, seed+11)
	tensor.FillRand(&m.proj, seed+23)
	return m
}

var errEmptyHistory = errors.New("model: empty token history")

// Score returns next-token logits for the full token history. Token ids
// outside [0, Vocab) are reduced modulo Vocab. The returned slice is newly
// allocated on every call; callers may mutate it freely.
func (m *LM) Score(tokens []int) ([]float32, error) {
	if len(tokens) == 0 {
		return nil, errEmptyHistory
	}

	h := m.h
	for i := range h {
		h[i] = 0
	}
	for _, tok := range tokens {
		if tok < 0 || tok >= m.Vocab {
			tok = tok % m.Vocab
			if tok < 0 {
				tok += m.Vocab
			}
		}
		row := m.emb.Row(tok)
		for i := range h {
			h[i] = m.Decay*h[i] + (1-m.Decay)*row[i]
		}
	}

	logits := make([]float32, m.Vocab)
	tensor.MatVec(logits, &m.proj, h)
	for i := range logits {
		// scale up so sampling is not uniform over near-identical values
		logits[i] = logits[i]*400 + m.bias[i]
	}
	return logits, nil
}
