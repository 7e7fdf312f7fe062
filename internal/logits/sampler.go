package logits

import (
	"math"
	"math/rand"
)

// SamplerConfig configures the behaviour of a Sampler.
type SamplerConfig struct {
	Seed        int64
	Temperature float32
	TopK        int
	TopP        float32
}

// Validate reports the first invalid sampling parameter, if any. Callers
// reject a configuration before any scoring work happens.
func (c SamplerConfig) Validate() error {
	if c.Temperature <= 0 {
		return &ConfigError{Param: "temperature", Reason: "must be positive"}
	}
	if c.TopK < 0 {
		return &ConfigError{Param: "top_k", Reason: "must not be negative"}
	}
	if c.TopP < 0 || c.TopP > 1 {
		return &ConfigError{Param: "top_p", Reason: "must be in [0,1]"}
	}
	return nil
}

// ConfigError describes an invalid sampling parameter.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "sampling config: " + e.Param + " " + e.Reason
}

// Sampler draws tokens from logits vectors. Randomness comes from an owned
// rand.Rand seeded from the configuration, never from package-global state,
// so two samplers with identical configs draw identical token streams.
type Sampler struct {
	rng  *rand.Rand
	cfg  SamplerConfig
	prob []float64
}

// NewSampler returns a new sampler with the provided configuration. The
// configuration is assumed to have passed Validate.
func NewSampler(cfg SamplerConfig) *Sampler {
	if cfg.Temperature <= 0 {
		cfg.Temperature = 1
	}
	return &Sampler{
		rng: rand.New(rand.NewSource(cfg.Seed)),
		cfg: cfg,
	}
}

// Sample draws a single index from the provided logits vector. The vector is
// modified in place:
//
//  1. Logits are scaled by the inverse temperature.
//  2. Filter applies the configured top-k / top-p truncation.
//  3. A softmax over the full vector is computed with max subtraction for
//     numerical stability; excluded entries contribute zero mass.
//  4. A value drawn from the sampler's rng is mapped through the cumulative
//     distribution to an index.
func (s *Sampler) Sample(logits []float32) int {
	invTemp := 1 / s.cfg.Temperature
	if invTemp != 1 {
		for i := range logits {
			logits[i] *= invTemp
		}
	}

	Filter(logits, s.cfg.TopK, s.cfg.TopP)

	maxi := argmax(logits)
	maxv := logits[maxi]

	if cap(s.prob) < len(logits) {
		s.prob = make([]float64, len(logits))
	}
	prob := s.prob[:len(logits)]
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxv))
		prob[i] = e
		sum += e
	}
	if sum == 0 {
		return maxi
	}

	r := s.rng.Float64() * sum
	var c float64
	for i := range prob {
		c += prob[i]
		if r < c {
			return i
		}
	}
	return maxi
}

// argmax returns the index of the maximum value in the slice. If the slice is
// empty it panics.
func argmax(x []float32) int {
	if len(x) == 0 {
		panic("argmax: empty slice")
	}
	bestI := 0
	bestV := x[0]
	for i := 1; i < len(x); i++ {
		if x[i] > bestV {
			bestV = x[i]
			bestI = i
		}
	}
	return bestI
}
