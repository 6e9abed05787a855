// Package provenance keeps the audit trail of a reconciliation run: which
// records were rejected and why, which names were split and by which rule,
// and which duplicates were discarded in favor of which survivor.
package provenance

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/candimap/pkg/constants"
	"github.com/agentstation/candimap/pkg/errors"
)

// Kind is the kind of audit entry.
type Kind string

// Entry kinds.
const (
	KindRejection Kind = "rejection"
	KindSplit     Kind = "split"
	KindRemoval   Kind = "removal"
)

// Entry is one audited decision about one input record.
type Entry struct {
	Kind   Kind   `yaml:"kind" json:"kind"`
	Index  int    `yaml:"index" json:"index"` // Input position of the record
	Ref    string `yaml:"ref,omitempty" json:"ref,omitempty"`
	Name   string `yaml:"name" json:"name"`
	Source string `yaml:"source,omitempty" json:"source,omitempty"`

	// Reason is the rejection reason code, the split rule or the merge rule.
	Reason string `yaml:"reason" json:"reason"`
	Detail string `yaml:"detail,omitempty" json:"detail,omitempty"`

	// Removal only.
	Strategy      string `yaml:"strategy,omitempty" json:"strategy,omitempty"`
	Key           string `yaml:"key,omitempty" json:"key,omitempty"`
	Survivor      string `yaml:"survivor,omitempty" json:"survivor,omitempty"`
	SurvivorIndex *int   `yaml:"survivorIndex,omitempty" json:"survivorIndex,omitempty"`
}

// String renders the entry on one line.
func (e Entry) String() string {
	switch e.Kind {
	case KindRemoval:
		return fmt.Sprintf("#%d %s: removed by %s [%s] in favor of %s (%s)", e.Index, e.Name, e.Strategy, e.Key, e.Survivor, e.Reason)
	case KindSplit:
		return fmt.Sprintf("#%d %s: split by %s -> %s", e.Index, e.Name, e.Reason, e.Detail)
	default:
		if e.Detail != "" {
			return fmt.Sprintf("#%d %s: rejected (%s: %s)", e.Index, e.Name, e.Reason, e.Detail)
		}
		return fmt.Sprintf("#%d %s: rejected (%s)", e.Index, e.Name, e.Reason)
	}
}

// Tracker collects audit entries during a run.
type Tracker interface {
	// Track records an entry
	Track(entry Entry)

	// FindByKind returns the entries of one kind in tracking order
	FindByKind(kind Kind) []Entry

	// FindByIndex returns the entries about one input record
	FindByIndex(index int) []Entry

	// Entries returns a copy of every entry in tracking order
	Entries() []Entry

	// Clear removes all entries
	Clear()
}

// tracker is the default implementation.
type tracker struct {
	entries []Entry
	enabled bool
}

// NewTracker creates a new tracker. A disabled tracker records nothing.
func NewTracker(enabled bool) Tracker {
	return &tracker{enabled: enabled}
}

// Track records an entry.
func (t *tracker) Track(entry Entry) {
	if !t.enabled {
		return
	}
	t.entries = append(t.entries, entry)
}

// FindByKind returns the entries of one kind.
func (t *tracker) FindByKind(kind Kind) []Entry {
	var out []Entry
	for _, e := range t.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// FindByIndex returns the entries about one input record.
func (t *tracker) FindByIndex(index int) []Entry {
	var out []Entry
	for _, e := range t.entries {
		if e.Index == index {
			out = append(out, e)
		}
	}
	return out
}

// Entries returns a copy of every entry.
func (t *tracker) Entries() []Entry {
	if !t.enabled {
		return nil
	}
	return slices.Clone(t.entries)
}

// Clear removes all entries.
func (t *tracker) Clear() {
	t.entries = nil
}

// Report summarizes an audit trail.
type Report struct {
	Rejections map[string]int `yaml:"rejections" json:"rejections"` // By reason code
	Splits     map[string]int `yaml:"splits" json:"splits"`         // By split rule
	Removals   map[string]int `yaml:"removals" json:"removals"`     // By strategy
	MergeRules map[string]int `yaml:"mergeRules" json:"mergeRules"` // By deciding merge rule
	Entries    []Entry        `yaml:"entries" json:"entries"`
}

// GenerateReport groups entries by kind and reason.
func GenerateReport(entries []Entry) *Report {
	report := &Report{
		Rejections: make(map[string]int),
		Splits:     make(map[string]int),
		Removals:   make(map[string]int),
		MergeRules: make(map[string]int),
		Entries:    slices.Clone(entries),
	}
	for _, e := range entries {
		switch e.Kind {
		case KindRejection:
			report.Rejections[e.Reason]++
		case KindSplit:
			report.Splits[e.Reason]++
		case KindRemoval:
			report.Removals[e.Strategy]++
			report.MergeRules[e.Reason]++
		}
	}
	return report
}

// String generates a human-readable report.
func (r *Report) String() string {
	var sb strings.Builder

	sb.WriteString("Audit Report\n")
	sb.WriteString("============\n\n")

	section := func(title string, counts map[string]int) {
		total := 0
		for _, n := range counts {
			total += n
		}
		sb.WriteString(fmt.Sprintf("%s: %d\n", title, total))
		for _, key := range slices.Sorted(maps.Keys(counts)) {
			sb.WriteString(fmt.Sprintf("  %-28s %d\n", key, counts[key]))
		}
	}
	section("Rejected", r.Rejections)
	section("Split", r.Splits)
	section("Removed", r.Removals)
	section("Decided by", r.MergeRules)

	if len(r.Entries) > 0 {
		sb.WriteString("\nEntries\n")
		sb.WriteString(strings.Repeat("-", 40))
		sb.WriteString("\n")
		for _, e := range r.Entries {
			sb.WriteString(e.String())
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// File is an audit report stored on disk.
type File struct {
	RunID  string  `yaml:"runId,omitempty" json:"runId,omitempty"`
	Report *Report `yaml:"audit" json:"audit"`
}

// Save writes the report to path as YAML.
func Save(path string, f File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return errors.WrapResource("encode", "audit", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return errors.WrapIO("create", dir, err)
		}
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Load reads an audit report from a YAML file.
// Returns nil, nil if the file doesn't exist (not an error).
func Load(path string) (*File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return &f, nil
}
