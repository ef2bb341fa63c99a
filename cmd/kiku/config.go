package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hyperjump/kiku/internal/config"
	"github.com/hyperjump/kiku/pkg/utils"
	"go.uber.org/zap"
)

const defaultConfigPath = "/usr/local/etc/kiku/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory wins when present; when neither exists, defaults are
// used. Returns the config and the path actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(fallback); err == nil {
				path = fallback
			}
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			var cfg config.Config
			config.ApplyDefaults(&cfg)
			return &cfg, "", cfg.Validate()
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, bool, error) {
	debug := cfg.Debug || debugFlag
	logger, err := utils.NewLoggerWithLevel(debug, cfg.LogLevel)
	return logger, debug, err
}
