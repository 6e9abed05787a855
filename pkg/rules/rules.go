// Package rules holds the reconciliation configuration: the denylist,
// suspicious role patterns, plausible name shapes, the party taxonomy, the
// proportional region aliases and the dedup strategy order.
//
// A Config is compiled once from a File and never changes afterwards; every
// pipeline stage receives it explicitly. Compilation never fails. Values that
// cannot be used are dropped and reported as Warnings, and the affected rule
// fails open: an empty denylist rejects nothing, an empty taxonomy classifies
// every party as unclassified.
package rules

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/agentstation/candimap/pkg/constants"
	"github.com/agentstation/candimap/pkg/dedup"
)

// Warning describes a configuration value that could not be used as given.
type Warning struct {
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

// String returns "field: message".
func (w Warning) String() string {
	return w.Field + ": " + w.Message
}

// Config is the compiled, immutable rule set. Accessors return copies.
type Config struct {
	denylist            []string
	suspicious          []*regexp.Regexp
	punctuation         string
	minLength           int
	maxLength           int
	shapes              []*regexp.Regexp
	parties             []string
	partyAliases        map[string]string
	unclassified        string
	proportionalRegion  string
	proportionalAliases []string
	strategies          []dedup.StrategyType
	latestMarkers       []string
	warnings            []Warning
}

var defaultConfig = sync.OnceValue(func() *Config {
	return Compile(DefaultFile())
})

// Default returns the compiled embedded defaults.
func Default() *Config {
	return defaultConfig()
}

// Compile turns a File into a Config. Keys left nil in f are treated as
// empty; use Overlay with DefaultFile to fill them first.
func Compile(f File) *Config {
	c := &Config{}

	c.denylist = cleanList(deref(f.Denylist))
	if len(c.denylist) == 0 {
		c.warn("denylist", "empty; no name is rejected as organizational text")
	}

	for _, pattern := range deref(f.SuspiciousPatterns) {
		re, err := regexp.Compile(pattern)
		if err != nil {
			c.warn("suspiciousPatterns", fmt.Sprintf("skipping %q: %v", pattern, err))
			continue
		}
		c.suspicious = append(c.suspicious, re)
	}
	if len(c.suspicious) == 0 {
		c.warn("suspiciousPatterns", "no usable pattern; role words are not checked")
	}

	if f.Punctuation != nil {
		for _, r := range *f.Punctuation {
			if r > unicode.MaxASCII || (!unicode.IsPunct(r) && !unicode.IsSymbol(r)) {
				c.warn("punctuation", fmt.Sprintf("ignoring %q: not an ASCII symbol", r))
				continue
			}
			if !strings.ContainsRune(c.punctuation, r) {
				c.punctuation += string(r)
			}
		}
	}
	if c.punctuation == "" {
		c.warn("punctuation", "empty; punctuation is not checked")
	}

	c.minLength, c.maxLength = constants.MinNameLength, constants.MaxNameLength
	if f.NameLength != nil {
		if f.NameLength.Min < 1 || f.NameLength.Max < f.NameLength.Min {
			c.warn("nameLength", fmt.Sprintf("invalid range [%d,%d]; using [%d,%d]",
				f.NameLength.Min, f.NameLength.Max, c.minLength, c.maxLength))
		} else {
			c.minLength, c.maxLength = f.NameLength.Min, f.NameLength.Max
		}
	}

	for _, pattern := range deref(f.NameShapes) {
		re, err := regexp.Compile(pattern)
		if err != nil {
			c.warn("nameShapes", fmt.Sprintf("skipping %q: %v", pattern, err))
			continue
		}
		c.shapes = append(c.shapes, re)
	}
	if len(c.shapes) == 0 {
		c.warn("nameShapes", "no usable shape; name shape is not checked")
	}

	c.parties = cleanList(deref(f.PartyTaxonomy))
	if len(c.parties) == 0 {
		c.warn("partyTaxonomy", "empty; only partyAliases targets are recognized, every other party is unclassified")
	}

	c.partyAliases = make(map[string]string)
	if f.PartyAliases != nil {
		for _, alias := range slices.Sorted(maps.Keys(*f.PartyAliases)) {
			target := strings.TrimSpace((*f.PartyAliases)[alias])
			alias = strings.TrimSpace(alias)
			if alias == "" || target == "" {
				c.warn("partyAliases", fmt.Sprintf("skipping incomplete alias %q -> %q", alias, target))
				continue
			}
			if !slices.Contains(c.parties, target) {
				c.warn("partyAliases", fmt.Sprintf("alias %q points outside the taxonomy: %q", alias, target))
			}
			c.partyAliases[alias] = target
		}
	}

	c.unclassified = strings.TrimSpace(derefString(f.UnclassifiedParty))
	if c.unclassified == "" {
		c.unclassified = constants.UnclassifiedParty
		c.warn("unclassifiedParty", "empty; using "+c.unclassified)
	}

	c.proportionalRegion = strings.TrimSpace(derefString(f.ProportionalRegion))
	if c.proportionalRegion == "" {
		c.proportionalRegion = constants.ProportionalRegion
		c.warn("proportionalRegion", "empty; using "+c.proportionalRegion)
	}

	c.proportionalAliases = cleanList(deref(f.ProportionalRegionAliases))
	if len(c.proportionalAliases) == 0 {
		c.warn("proportionalRegionAliases", "empty; no region is treated as proportional")
	}

	c.compileStrategies(deref(f.DedupStrategyOrder))

	c.latestMarkers = cleanList(deref(f.LatestSourceMarkers))

	return c
}

// compileStrategies parses the strategy order. The identifier and
// name-region strategies are always present so that survivors never share an
// identifier or an unambiguous (name, region) pair.
func (c *Config) compileStrategies(names []string) {
	seen := make(map[dedup.StrategyType]bool)
	for _, name := range names {
		t, err := dedup.ParseStrategyType(name)
		if err != nil {
			c.warn("dedupStrategyOrder", fmt.Sprintf("skipping unknown strategy %q", name))
			continue
		}
		if seen[t] {
			c.warn("dedupStrategyOrder", fmt.Sprintf("skipping repeated strategy %q", name))
			continue
		}
		seen[t] = true
		c.strategies = append(c.strategies, t)
	}

	if len(c.strategies) == 0 {
		c.strategies = dedup.StrategyTypes()
		c.warn("dedupStrategyOrder", "empty; using the default order")
		return
	}

	for _, required := range []dedup.StrategyType{dedup.StrategyTypeIdentifier, dedup.StrategyTypeNameRegion} {
		if !seen[required] {
			c.strategies = append(c.strategies, required)
			c.warn("dedupStrategyOrder", fmt.Sprintf("%s is required; appended", required))
		}
	}
}

func (c *Config) warn(field, message string) {
	c.warnings = append(c.warnings, Warning{Field: field, Message: message})
}

// Denylist returns the organizational substrings a name may not contain.
func (c *Config) Denylist() []string { return slices.Clone(c.denylist) }

// SuspiciousPatterns returns the role patterns a name may not match.
func (c *Config) SuspiciousPatterns() []*regexp.Regexp { return slices.Clone(c.suspicious) }

// Punctuation returns the ASCII symbols a name may not contain.
func (c *Config) Punctuation() string { return c.punctuation }

// NameLength returns the inclusive bounds on name length in characters.
func (c *Config) NameLength() (minLength, maxLength int) { return c.minLength, c.maxLength }

// NameShapes returns the plausible name patterns.
func (c *Config) NameShapes() []*regexp.Regexp { return slices.Clone(c.shapes) }

// PartyTaxonomy returns the canonical party names in configured order.
func (c *Config) PartyTaxonomy() []string { return slices.Clone(c.parties) }

// PartyAliases returns the alias to canonical party mapping.
func (c *Config) PartyAliases() map[string]string { return maps.Clone(c.partyAliases) }

// UnclassifiedParty returns the sentinel for unmatched or empty parties.
func (c *Config) UnclassifiedParty() string { return c.unclassified }

// ProportionalRegion returns the sentinel region for proportional slots.
func (c *Config) ProportionalRegion() string { return c.proportionalRegion }

// ProportionalRegionAliases returns the region strings that denote a
// nationwide proportional slot.
func (c *Config) ProportionalRegionAliases() []string { return slices.Clone(c.proportionalAliases) }

// StrategyOrder returns the dedup strategy chain in priority order.
func (c *Config) StrategyOrder() []dedup.StrategyType { return slices.Clone(c.strategies) }

// LatestSourceMarkers returns the substrings that mark a source as the
// designated latest artifact.
func (c *Config) LatestSourceMarkers() []string { return slices.Clone(c.latestMarkers) }

// Warnings returns the problems found while compiling.
func (c *Config) Warnings() []Warning { return slices.Clone(c.warnings) }

// File returns the effective rules in file form.
func (c *Config) File() File {
	patterns := func(res []*regexp.Regexp) *[]string {
		out := make([]string, len(res))
		for i, re := range res {
			out[i] = re.String()
		}
		return &out
	}
	strategies := make([]string, len(c.strategies))
	for i, t := range c.strategies {
		strategies[i] = t.String()
	}
	return File{
		Denylist:                  ptr(c.Denylist()),
		SuspiciousPatterns:        patterns(c.suspicious),
		Punctuation:               ptr(c.punctuation),
		NameLength:                &LengthRange{Min: c.minLength, Max: c.maxLength},
		NameShapes:                patterns(c.shapes),
		PartyTaxonomy:             ptr(c.PartyTaxonomy()),
		PartyAliases:              ptr(c.PartyAliases()),
		UnclassifiedParty:         ptr(c.unclassified),
		ProportionalRegion:        ptr(c.proportionalRegion),
		ProportionalRegionAliases: ptr(c.ProportionalRegionAliases()),
		DedupStrategyOrder:        &strategies,
		LatestSourceMarkers:       ptr(c.LatestSourceMarkers()),
	}
}

// cleanList trims entries and drops blanks and repeats, keeping order.
func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func deref[T any](p *[]T) []T {
	if p == nil {
		return nil
	}
	return *p
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func ptr[T any](v T) *T { return &v }
