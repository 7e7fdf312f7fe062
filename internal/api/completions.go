package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/loom/internal/inference"
)

// CompletionRequest is an OpenAI-style text completion request. Pointer
// fields distinguish "not set" from zero values so engine defaults apply.
type CompletionRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	N           *int     `json:"n,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopK        *int     `json:"top_k,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	Seed        *int64   `json:"seed,omitempty"`
	Stream      *bool    `json:"stream,omitempty"`
	Echo        *bool    `json:"echo,omitempty"`
}

type CompletionResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
	Usage   CompletionUsage    `json:"usage"`
}

type CompletionChoice struct {
	Index        int    `json:"index"`
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"`
}

type CompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionChunk is a streaming SSE chunk.
type CompletionChunk struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
}

func (s *Server) handleCompletions(c *echo.Context) error {
	if !s.allow() {
		return writeError(c, http.StatusTooManyRequests, "rate_limit_error", "completion rate limit exceeded", "", "")
	}

	req, err := decodeJSON[CompletionRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Prompt == "" {
		return writeBadRequest(c, "prompt is required")
	}

	opts := inference.RequestOptions{
		Prompt:      req.Prompt,
		Length:      req.MaxTokens,
		NumSamples:  req.N,
		Seed:        req.Seed,
		Temperature: req.Temperature,
		TopK:        req.TopK,
		TopP:        req.TopP,
		EchoPrompt:  req.Echo,
	}
	inferReq := inference.ResolveRequest(opts, s.defaults)
	if err := inferReq.Validate(); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error(), "", "")
	}

	completionID := "cmpl-" + uuid.NewString()
	created := s.clock().Unix()

	if req.Stream != nil && *req.Stream {
		if inferReq.NumSamples != 1 {
			return writeBadRequest(c, "streaming supports only n=1")
		}
		return s.handleCompletionsStream(c, &inferReq, completionID, created)
	}
	return s.handleCompletionsSync(c, &inferReq, completionID, created)
}

func (s *Server) handleCompletionsSync(c *echo.Context, req *inference.Request, completionID string, created int64) error {
	result, err := s.engine.Generate(c.Request().Context(), req, nil)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
	}

	choices := make([]CompletionChoice, len(result.Texts))
	for i, text := range result.Texts {
		if req.EchoPrompt {
			text = req.Prompt + text
		}
		choices[i] = CompletionChoice{
			Index:        i,
			Text:         text,
			FinishReason: "length",
		}
	}

	return c.JSON(http.StatusOK, CompletionResponse{
		ID:      completionID,
		Object:  "text_completion",
		Created: created,
		Model:   s.modelID,
		Choices: choices,
		Usage: CompletionUsage{
			PromptTokens:     result.Stats.PromptTokens,
			CompletionTokens: result.Stats.TokensGenerated,
			TotalTokens:      result.Stats.PromptTokens + result.Stats.TokensGenerated,
		},
	})
}

func (s *Server) handleCompletionsStream(c *echo.Context, req *inference.Request, completionID string, created int64) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")

	flusher, ok := res.(interface{ Flush() })
	if !ok {
		return writeBadRequest(c, "streaming unsupported")
	}

	emit := func(text, finish string) {
		_ = sendSSEChunk(res, CompletionChunk{
			ID:      completionID,
			Object:  "text_completion",
			Created: created,
			Model:   s.modelID,
			Choices: []CompletionChoice{{Index: 0, Text: text, FinishReason: finish}},
		})
		flusher.Flush()
	}

	_, err := s.engine.Generate(c.Request().Context(), req, func(tok string) {
		emit(tok, "")
	})
	if err != nil {
		_ = sendSSEChunk(res, map[string]any{"error": err.Error()})
		flusher.Flush()
		return nil
	}

	emit("", "length")
	_, _ = res.Write([]byte("data: [DONE]\n\n"))
	flusher.Flush()
	return nil
}

func (s *Server) handleListModels(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"object": "list",
		"data": []map[string]any{
			{
				"id":       s.modelID,
				"object":   "model",
				"created":  time.Now().Unix(),
				"owned_by": "local",
			},
		},
	})
}
