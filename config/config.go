// Package config loads process settings from the environment and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"

	"github.com/dimaq12/minesweeper/models"
)

// Config holds process configuration. Flags override environment values.
type Config struct {
	Addr       string `env:"MINESWEEPER_ADDR" envDefault:"127.0.0.1:9091"`
	Difficulty string `env:"MINESWEEPER_DIFFICULTY" envDefault:"medium"`
	HTTP       bool   `env:"MINESWEEPER_HTTP" envDefault:"true"`
	Headless   bool   `env:"MINESWEEPER_HEADLESS" envDefault:"false"`
	LogLevel   string `env:"MINESWEEPER_LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"MINESWEEPER_LOG_FORMAT" envDefault:"text"`
	LogFile    string `env:"MINESWEEPER_LOG_FILE"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Parse reads the environment, then flags from args, and validates the result.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP API listen address")
	fs.StringVar(&cfg.Difficulty, "difficulty", cfg.Difficulty, "Difficulty of the first game (easy, medium, hard)")
	fs.BoolVar(&cfg.HTTP, "http", cfg.HTTP, "Serve the HTTP API")
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "Run without the terminal UI")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Write logs to this file instead of stderr")
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the process cannot start with.
func (c Config) Validate() error {
	if _, err := models.ParseDifficulty(c.Difficulty); err != nil {
		return fmt.Errorf("difficulty: %w", err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log format: unknown format %q", c.LogFormat)
	}
	if c.Headless && !c.HTTP {
		return errors.New("headless mode needs the HTTP API enabled")
	}
	if c.HTTP && c.Addr == "" {
		return errors.New("addr is required when the HTTP API is enabled")
	}
	return nil
}

// StartDifficulty is the difficulty of the game created at startup.
func (c Config) StartDifficulty() (models.Difficulty, error) {
	return models.ParseDifficulty(c.Difficulty)
}

// NewLogger builds the process logger. While the terminal UI owns the screen,
// logs go to LogFile or are dropped. The returned close func releases the file.
func (c Config) NewLogger() (*logrus.Logger, func() error, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)

	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	closeFn := func() error { return nil }
	switch {
	case c.LogFile != "":
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		log.SetOutput(f)
		closeFn = f.Close
	case !c.Headless:
		log.SetOutput(io.Discard)
	default:
		log.SetOutput(os.Stderr)
	}
	return log, closeFn, nil
}
