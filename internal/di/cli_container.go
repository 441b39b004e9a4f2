package di

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/logging"
)

// Options carries the global command line flags into the container
type Options struct {
	ConfigFile string
	Verbose    bool
}

// configProvider loads and validates the configuration named by the flags
func (o Options) configProvider() func() (*config.Config, error) {
	return func() (*config.Config, error) {
		cfg, err := config.New(o.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
}

// loggerProvider builds the run logger, honouring --verbose
func (o Options) loggerProvider() func(*config.Config) (*zap.Logger, error) {
	return func(cfg *config.Config) (*zap.Logger, error) {
		return logging.InitLogger(cfg, o.Verbose)
	}
}
