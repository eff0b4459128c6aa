package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gigurra/receipt-relay/internal"
	"github.com/rs/zerolog"
)

// loadConfig reads the config file named by path, or the default config file
// when path is empty. A missing default file means built-in defaults; a
// missing explicit file is an error.
func loadConfig(path string) (*internal.Config, error) {
	if path != "" {
		return internal.LoadConfig(path)
	}

	path = internal.DefaultConfigPath()
	if path == "" {
		return internal.DefaultConfig(), nil
	}
	cfg, err := internal.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		return internal.DefaultConfig(), nil
	}
	return cfg, err
}

// loadRunConfig loads the config and applies the command-line overrides
func loadRunConfig(p CommonParams) (*internal.Config, error) {
	cfg, err := loadConfig(p.Config)
	if err != nil {
		return nil, err
	}

	if p.Headless {
		cfg.Browser.Headless = true
	}
	if p.RemoteURL != "" {
		cfg.Browser.RemoteURL = p.RemoteURL
	}
	if p.LogLevel != "" {
		cfg.Log.Level = p.LogLevel
	}
	if p.LogFormat != "" {
		cfg.Log.Format = p.LogFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *internal.Config, workflow string) (zerolog.Logger, error) {
	log, err := internal.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return log, err
	}
	return internal.ForWorkflow(log, workflow), nil
}

func writeConfigTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	return internal.DefaultConfig().Save(path)
}
