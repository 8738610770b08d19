// Package common provides shared utilities for command implementations.
package common

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/AbsaOSS/spot/internal/bootstrap"
)

// Viper keys bound by the root command.
const (
	KeyConfig = "config"
	KeyDebug  = "debug"
)

// TimeLayout is the layout of time flags, read as UTC.
const TimeLayout = "2006-01-02T15:04:05"

// Version is set at build time with -ldflags "-X ...common.Version=...".
var Version = "dev"

// NewDeps loads the configuration named by --config or SPOT_CONFIG.
func NewDeps() (*bootstrap.Deps, error) {
	deps, err := bootstrap.NewDeps(viper.GetString(KeyConfig), viper.GetBool(KeyDebug))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	return deps, nil
}

// ParseTime parses a time flag. An empty value returns nil.
func ParseTime(flag, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(TimeLayout, value)
	if err != nil {
		return nil, fmt.Errorf("--%s must look like %s: %w", flag, TimeLayout, err)
	}
	return &t, nil
}
