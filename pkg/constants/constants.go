// Package constants provides shared constants used throughout the candimap codebase.
// This includes name bounds, file permissions, sentinel values and other settings
// that should be consistent across the reconciliation pipeline and the CLI.
package constants

// Name bounds applied by the validator when the rules do not override them.
const (
	// MinNameLength is the minimum number of characters in a candidate name
	MinNameLength = 2

	// MaxNameLength is the maximum number of characters in a candidate name
	MaxNameLength = 15
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Sentinel values written into normalized fields.
const (
	// UnclassifiedParty is the canonical party for empty or unmatched affiliations
	UnclassifiedParty = "未分類"

	// ProportionalRegion is the canonical region for nationwide proportional slots
	ProportionalRegion = "比例代表"
)

// Limits for the CLI collaborators.
const (
	// MaxConcurrentLoads is the maximum number of input files decoded at once
	MaxConcurrentLoads = 4
)

// Path constants
const (
	// DefaultConfigName is the config file name searched in $HOME and the working directory
	DefaultConfigName = ".candimap"

	// EnvPrefix is the prefix for environment variables read by the CLI
	EnvPrefix = "CANDIMAP"
)
