// Package bootstrap wires the crawler from its configuration.
//
// The bootstrap process follows these phases:
//   - Phase 1: Config & Logger - Load configuration and create logger
//   - Phase 2: Sink - Connect to Elasticsearch and create missing indices
//   - Phase 3: Crawler - History client, enrichment, metrics and watermark
//   - Phase 4: Run - Poll until interrupted, serving health and metrics
package bootstrap

import (
	"errors"
	"fmt"

	"github.com/AbsaOSS/spot/internal/config"
	"github.com/AbsaOSS/spot/internal/logger"
)

var errConfigRequired = errors.New("config is required")

// Deps holds the dependencies shared by every command.
type Deps struct {
	Config *config.Config
	Logger logger.Logger
}

// NewDeps loads the configuration at path and creates the logger. Debug
// forces the debug level.
func NewDeps(path string, debug bool) (*Deps, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := CreateLogger(cfg, debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return &Deps{Config: cfg, Logger: log}, nil
}

// CreateLogger builds the logger. Logs go to stderr when documents are
// printed to stdout.
func CreateLogger(cfg *config.Config, debug bool) (logger.Logger, error) {
	if cfg == nil {
		return nil, errConfigRequired
	}
	logCfg := cfg.Logging
	if debug {
		logCfg.Level = "debug"
	}
	if cfg.Sink.Type == config.SinkStdout {
		logCfg.OutputPaths = []string{"stderr"}
	}

	log, err := logger.New(logCfg)
	if err != nil {
		return nil, err
	}
	return log.With(logger.String("service", "spot")), nil
}
