package main

import "github.com/urfave/cli/v3"

var (
	modelSeed int64
	hidden    int64
	rawDecode bool
	logLevel  string
	logFormat string
)

// commonModelFlags configure the built-in deterministic scorer. The model
// identifier is its weight seed; the byte tokenizer fixes the vocabulary.
func commonModelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "model-seed",
			Aliases:     []string{"m"},
			Usage:       "weight seed identifying the model",
			Value:       1,
			Destination: &modelSeed,
		},
		&cli.Int64Flag{
			Name:        "hidden",
			Usage:       "hidden size of the model",
			Value:       64,
			Destination: &hidden,
		},
		&cli.BoolFlag{
			Name:        "raw",
			Usage:       "disable tokenizer decode cleanup",
			Destination: &rawDecode,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
	}
}
