// Package appcontext provides the shared application context interface
// used by all commands. Commands accept this interface rather than the
// concrete App type so they can be tested with Mock.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/candimap/pkg/rules"
)

// Interface defines the application context that commands need.
type Interface interface {
	// Rules returns the reconciliation rules: the configured rules file
	// overlaid on the embedded defaults, loaded once.
	Rules() (*rules.Config, error)

	// RulesFile returns the configured rules file path, empty for the defaults.
	RulesFile() string

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, wide, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
