package inference

import (
	"fmt"

	"github.com/samcharles93/loom/internal/logits"
)

// Request carries fully resolved generation parameters.
type Request struct {
	Prompt string

	Length     int
	NumSamples int
	Seed       int64

	Temperature float64
	TopK        int
	TopP        float64

	EchoPrompt bool
}

// GenDefaults are optional server- or config-level sampling defaults applied
// below per-request options.
type GenDefaults struct {
	Temperature *float64
	TopK        *int
	TopP        *float64
	Length      *int
}

// RequestOptions are per-call overrides. All fields are pointers so "not
// set" is distinguishable from zero values.
type RequestOptions struct {
	Prompt string

	Length     *int
	NumSamples *int
	Seed       *int64

	Temperature *float64
	TopK        *int
	TopP        *float64

	EchoPrompt *bool
}

// ResolveRequest layers baked-in defaults, GenDefaults and RequestOptions
// into a Request, lowest precedence first.
func ResolveRequest(opts RequestOptions, defaults GenDefaults) Request {
	req := Request{
		Prompt:      opts.Prompt,
		Length:      64,
		NumSamples:  1,
		Seed:        -1,
		Temperature: 0.8,
		TopK:        40,
		TopP:        0.95,
	}

	if defaults.Temperature != nil && *defaults.Temperature > 0 {
		req.Temperature = *defaults.Temperature
	}
	if defaults.TopK != nil && *defaults.TopK >= 0 {
		req.TopK = *defaults.TopK
	}
	if defaults.TopP != nil && *defaults.TopP >= 0 && *defaults.TopP <= 1 {
		req.TopP = *defaults.TopP
	}
	if defaults.Length != nil && *defaults.Length >= 0 {
		req.Length = *defaults.Length
	}

	if opts.Length != nil {
		req.Length = *opts.Length
	}
	if opts.NumSamples != nil {
		req.NumSamples = *opts.NumSamples
	}
	if opts.Seed != nil {
		req.Seed = *opts.Seed
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}
	if opts.TopK != nil {
		req.TopK = *opts.TopK
	}
	if opts.TopP != nil {
		req.TopP = *opts.TopP
	}
	if opts.EchoPrompt != nil {
		req.EchoPrompt = *opts.EchoPrompt
	}

	return req
}

// Validate rejects invalid parameters before any scoring call is issued.
func (r *Request) Validate() error {
	cfg := logits.SamplerConfig{
		Temperature: float32(r.Temperature),
		TopK:        r.TopK,
		TopP:        float32(r.TopP),
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if r.Length < 0 {
		return fmt.Errorf("length must not be negative, got %d", r.Length)
	}
	if r.NumSamples < 1 {
		return fmt.Errorf("num samples must be at least 1, got %d", r.NumSamples)
	}
	return nil
}
