package api

import (
	"time"

	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"

	"github.com/samcharles93/loom/internal/inference"
)

// Server exposes a generation engine over an OpenAI-style HTTP surface.
type Server struct {
	engine   inference.Engine
	defaults inference.GenDefaults
	modelID  string
	clock    func() time.Time
	limiter  *rate.Limiter
}

type Option func(*Server)

// WithRateLimit caps completion requests at rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithModelID sets the model identifier reported in responses.
func WithModelID(id string) Option {
	return func(s *Server) {
		s.modelID = id
	}
}

// WithDefaults sets sampling defaults applied below per-request parameters.
func WithDefaults(d inference.GenDefaults) Option {
	return func(s *Server) {
		s.defaults = d
	}
}

func NewServer(engine inference.Engine, opts ...Option) *Server {
	s := &Server{
		engine:  engine,
		modelID: "loom",
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all routes to the echo instance.
func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/completions", s.handleCompletions)
	e.GET("/v1/models", s.handleListModels)
}

func (s *Server) allow() bool {
	return s.limiter == nil || s.limiter.Allow()
}
