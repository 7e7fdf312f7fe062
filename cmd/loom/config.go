package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/loom/internal/inference"
)

// Config represents the loom configuration file
// (~/.config/loom/config.yaml). Sampling fields are pointers so "not set" is
// distinguishable from zero values.
type Config struct {
	// Sampling defaults
	Temperature *float64 `yaml:"temperature"`
	TopK        *int     `yaml:"top_k"`
	TopP        *float64 `yaml:"top_p"`
	Length      *int     `yaml:"length"`
	Seed        *int64   `yaml:"seed"`

	// Model
	ModelSeed *int64 `yaml:"model_seed"`
	Hidden    *int   `yaml:"hidden"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "loom", "config.yaml")
}

// LoadConfig reads the config file. A missing or unreadable file yields a
// zero Config.
func LoadConfig() Config {
	return loadConfigFile(configPath())
}

func loadConfigFile(path string) Config {
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// genDefaults converts config file sampling defaults into engine defaults.
func (c Config) genDefaults() inference.GenDefaults {
	return inference.GenDefaults{
		Temperature: c.Temperature,
		TopK:        c.TopK,
		TopP:        c.TopP,
		Length:      c.Length,
	}
}

// applyCommonConfig applies config file values to flag variables that were
// not set explicitly on the command line.
func applyCommonConfig(c *cli.Command, cfg Config) {
	if cfg.ModelSeed != nil && !c.IsSet("model-seed") {
		modelSeed = *cfg.ModelSeed
	}
	if cfg.Hidden != nil && !c.IsSet("hidden") {
		hidden = int64(*cfg.Hidden)
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the resolved configuration",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := configPath()
			fmt.Printf("config file: %s\n", path)
			cfg := LoadConfig()
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}
}
