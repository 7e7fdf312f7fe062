package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/loom/internal/inference"
	"github.com/samcharles93/loom/internal/model"
	"github.com/samcharles93/loom/internal/tokenizer"
)

func generateCmd() *cli.Command {
	var (
		prompt     string
		length     int64
		samples    int64
		temp       float64
		topK       int64
		topP       float64
		seed       int64
		echoPrompt bool
	)

	return &cli.Command{
		Name:  "generate",
		Usage: "Generate text continuations of a prompt",
		Flags: append(append(commonModelFlags(), loggingFlags()...),
			&cli.StringFlag{
				Name:        "prompt",
				Aliases:     []string{"p"},
				Usage:       "prompt text (omit for interactive mode)",
				Destination: &prompt,
			},
			&cli.Int64Flag{
				Name:        "length",
				Aliases:     []string{"l"},
				Usage:       "number of tokens to generate",
				Value:       64,
				Destination: &length,
			},
			&cli.Int64Flag{
				Name:        "samples",
				Aliases:     []string{"n"},
				Usage:       "number of parallel samples",
				Value:       1,
				Destination: &samples,
			},
			&cli.Float64Flag{
				Name:        "temp",
				Aliases:     []string{"t"},
				Usage:       "sampling temperature",
				Value:       0.8,
				Destination: &temp,
			},
			&cli.Int64Flag{
				Name:        "topk",
				Usage:       "top-k sampling parameter (0 = disabled)",
				Value:       40,
				Destination: &topK,
			},
			&cli.Float64Flag{
				Name:        "topp",
				Usage:       "top-p sampling parameter (0 = disabled)",
				Value:       0.95,
				Destination: &topP,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "sampling RNG seed (-1 = time-derived)",
				Value:       -1,
				Destination: &seed,
			},
			&cli.BoolFlag{
				Name:        "echo-prompt",
				Usage:       "print prompt text before generation",
				Destination: &echoPrompt,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := LoadConfig()
			applyCommonConfig(cmd, cfg)
			log := newLogger()

			engine := newBuiltinEngine()
			defer engine.Close()

			buildRequest := func(p string) inference.Request {
				opts := inference.RequestOptions{Prompt: p}
				l, k, n := int(length), int(topK), int(samples)
				if cmd.IsSet("length") {
					opts.Length = &l
				}
				if cmd.IsSet("temp") {
					opts.Temperature = &temp
				}
				if cmd.IsSet("topk") {
					opts.TopK = &k
				}
				if cmd.IsSet("topp") {
					opts.TopP = &topP
				}
				opts.NumSamples = &n
				opts.EchoPrompt = &echoPrompt

				req := inference.ResolveRequest(opts, cfg.genDefaults())
				req.Seed = seed
				if req.Seed == -1 && cfg.Seed != nil {
					req.Seed = *cfg.Seed
				}
				return req
			}

			run := func(p string) error {
				req := buildRequest(p)
				if err := req.Validate(); err != nil {
					return err
				}

				var stream inference.StreamFunc
				if req.NumSamples == 1 {
					stream = func(tok string) { fmt.Print(tok) }
				}

				res, err := engine.Generate(ctx, &req, stream)
				if err != nil {
					return fmt.Errorf("generation: %w", err)
				}

				if req.NumSamples == 1 {
					fmt.Println()
				} else {
					for i, text := range res.Texts {
						if req.EchoPrompt {
							text = req.Prompt + text
						}
						fmt.Printf("=== sample %d ===\n%s\n", i, text)
					}
				}
				log.Info("generation done",
					"tokens", res.Stats.TokensGenerated,
					"duration", res.Stats.Duration.Round(time.Millisecond).String(),
					"tps", fmt.Sprintf("%.1f", res.Stats.TPS))
				return nil
			}

			if prompt != "" {
				return run(prompt)
			}

			// Interactive mode: one generation per input line.
			log.Info("interactive mode, type /exit to quit")
			for {
				line, err := readInteractiveLine("> ")
				if err != nil {
					if errors.Is(err, io.EOF) {
						return nil
					}
					return err
				}
				trimmed := strings.TrimSpace(line)
				if trimmed == "/exit" {
					return nil
				}
				if trimmed == "" {
					continue
				}
				if err := run(trimmed); err != nil {
					log.Error("generation failed", "error", err)
				}
			}
		},
	}
}

// newBuiltinEngine wires the deterministic scorer and byte tokenizer into an
// inference engine from the process-wide model flags.
func newBuiltinEngine() *inference.EngineImpl {
	lm := model.New(tokenizer.ByteVocabSize, int(hidden), modelSeed)
	tok := &tokenizer.ByteTokenizer{CleanupSpaces: !rawDecode}
	return inference.NewEngine(lm.Score, tok)
}
