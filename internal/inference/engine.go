package inference

import "context"

// StreamFunc receives decoded text for the first sample as tokens are drawn.
type StreamFunc func(token string)

type Engine interface {
	Generate(ctx context.Context, req *Request, stream StreamFunc) (*Result, error)
	Close() error
}

// Result holds the decoded continuation of every sample. Texts[i] is the
// text generated after the prompt for sample i.
type Result struct {
	Texts []string
	Stats Stats
}
