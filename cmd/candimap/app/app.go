// Package app provides the application context and dependency management
// for the candimap CLI. Configuration, logging and the reconciliation rules
// live here and are handed to commands through appcontext.Interface.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/candimap/internal/appcontext"
	"github.com/agentstation/candimap/pkg/errors"
	"github.com/agentstation/candimap/pkg/rules"
)

// App represents the candimap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Rules (lazy-loaded, singleton)
	mu    sync.RWMutex
	rules *rules.Config
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the environment, .env files and the config
// file; options may override it.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// RulesFile returns the configured rules file, empty for the embedded defaults.
func (a *App) RulesFile() string {
	return a.config.RulesFile
}

// Rules returns the reconciliation rules, loading them on first use.
// Configuration warnings are logged once, at load time.
func (a *App) Rules() (*rules.Config, error) {
	a.mu.RLock()
	if a.rules != nil {
		cfg := a.rules
		a.mu.RUnlock()
		return cfg, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.rules != nil {
		return a.rules, nil
	}

	if a.config.RulesFile == "" {
		a.rules = rules.Default()
		return a.rules, nil
	}

	cfg, err := rules.LoadFile(a.config.RulesFile)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().
		Str("path", a.config.RulesFile).
		Int("warnings", len(cfg.Warnings())).
		Msg("Loaded rules")
	a.rules = cfg
	return cfg, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return &errors.ValidationError{Field: "config", Message: "cannot be nil"}
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "cannot be nil"}
		}
		a.logger = logger
		return nil
	}
}

// WithRules sets the rules instead of loading them (useful for testing).
func WithRules(cfg *rules.Config) Option {
	return func(a *App) error {
		a.rules = cfg
		return nil
	}
}

var _ appcontext.Interface = (*App)(nil)
