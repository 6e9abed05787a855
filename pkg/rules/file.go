package rules

import (
	_ "embed"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/candimap/pkg/errors"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// File is the YAML form of the reconciliation rules. Pointer fields
// distinguish a key the file omits (nil) from a key it sets to an empty
// value. Omitted keys take the default; empty keys disable the rule.
type File struct {
	Denylist                  *[]string          `yaml:"denylist,omitempty" json:"denylist,omitempty"`
	SuspiciousPatterns        *[]string          `yaml:"suspiciousPatterns,omitempty" json:"suspiciousPatterns,omitempty"`
	Punctuation               *string            `yaml:"punctuation,omitempty" json:"punctuation,omitempty"`
	NameLength                *LengthRange       `yaml:"nameLength,omitempty" json:"nameLength,omitempty"`
	NameShapes                *[]string          `yaml:"nameShapes,omitempty" json:"nameShapes,omitempty"`
	PartyTaxonomy             *[]string          `yaml:"partyTaxonomy,omitempty" json:"partyTaxonomy,omitempty"`
	PartyAliases              *map[string]string `yaml:"partyAliases,omitempty" json:"partyAliases,omitempty"`
	UnclassifiedParty         *string            `yaml:"unclassifiedParty,omitempty" json:"unclassifiedParty,omitempty"`
	ProportionalRegion        *string            `yaml:"proportionalRegion,omitempty" json:"proportionalRegion,omitempty"`
	ProportionalRegionAliases *[]string          `yaml:"proportionalRegionAliases,omitempty" json:"proportionalRegionAliases,omitempty"`
	DedupStrategyOrder        *[]string          `yaml:"dedupStrategyOrder,omitempty" json:"dedupStrategyOrder,omitempty"`
	LatestSourceMarkers       *[]string          `yaml:"latestSourceMarkers,omitempty" json:"latestSourceMarkers,omitempty"`
}

// LengthRange bounds the number of characters in a name.
type LengthRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// DefaultFile returns the embedded default rules.
func DefaultFile() File {
	f, err := ParseFile(defaultsYAML)
	if err != nil {
		panic("rules: embedded defaults: " + err.Error())
	}
	return f
}

// ParseFile decodes a rules file without applying defaults.
func ParseFile(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, errors.WrapParse("yaml", "", err)
	}
	return f, nil
}

// Overlay returns base with every key set in f replaced.
func Overlay(base, f File) File {
	out := base
	if f.Denylist != nil {
		out.Denylist = f.Denylist
	}
	if f.SuspiciousPatterns != nil {
		out.SuspiciousPatterns = f.SuspiciousPatterns
	}
	if f.Punctuation != nil {
		out.Punctuation = f.Punctuation
	}
	if f.NameLength != nil {
		out.NameLength = f.NameLength
	}
	if f.NameShapes != nil {
		out.NameShapes = f.NameShapes
	}
	if f.PartyTaxonomy != nil {
		out.PartyTaxonomy = f.PartyTaxonomy
	}
	if f.PartyAliases != nil {
		out.PartyAliases = f.PartyAliases
	}
	if f.UnclassifiedParty != nil {
		out.UnclassifiedParty = f.UnclassifiedParty
	}
	if f.ProportionalRegion != nil {
		out.ProportionalRegion = f.ProportionalRegion
	}
	if f.ProportionalRegionAliases != nil {
		out.ProportionalRegionAliases = f.ProportionalRegionAliases
	}
	if f.DedupStrategyOrder != nil {
		out.DedupStrategyOrder = f.DedupStrategyOrder
	}
	if f.LatestSourceMarkers != nil {
		out.LatestSourceMarkers = f.LatestSourceMarkers
	}
	return out
}

// Parse decodes a rules file, fills omitted keys from the defaults and
// compiles the result. Only a file that is not valid YAML is an error;
// unusable values become warnings on the returned Config.
func Parse(data []byte) (*Config, error) {
	f, err := ParseFile(data)
	if err != nil {
		return nil, err
	}
	return Compile(Overlay(DefaultFile(), f)), nil
}

// LoadFile reads and parses the rules file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		var parseErr *errors.ParseError
		if errors.As(err, &parseErr) {
			parseErr.File = path
		}
		return nil, errors.NewConfigError("rules", "cannot load "+path, err)
	}
	return cfg, nil
}
