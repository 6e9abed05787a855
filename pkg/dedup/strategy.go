// Package dedup detects duplicate candidate records. Each Strategy derives a
// grouping key from a record; any key shared by more than one record forms a
// duplicate group. Strategies are composed into an ordered Chain.
package dedup

import (
	"fmt"
	"strings"

	"github.com/agentstation/candimap/pkg/candidates"
	"github.com/agentstation/candimap/pkg/errors"
)

// StrategyType represents the type of duplicate detection strategy.
type StrategyType string

// String returns the string representation of a strategy type.
func (s StrategyType) String() string {
	return string(s)
}

// Name returns the name of the strategy type.
func (s StrategyType) Name() string {
	words := strings.Split(s.String(), "-")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

const (
	// StrategyTypeIdentifier groups records by site-assigned identifier.
	StrategyTypeIdentifier StrategyType = "by-identifier"
	// StrategyTypeProfileURL groups records by canonical profile URL.
	StrategyTypeProfileURL StrategyType = "by-profile-url"
	// StrategyTypeNameRegion groups records by name and region.
	StrategyTypeNameRegion StrategyType = "by-name-region"
	// StrategyTypeContentHash groups records by a hash of their identity fields.
	StrategyTypeContentHash StrategyType = "by-content-hash"
)

// StrategyTypes returns every known strategy type in default priority order.
func StrategyTypes() []StrategyType {
	return []StrategyType{
		StrategyTypeIdentifier,
		StrategyTypeProfileURL,
		StrategyTypeNameRegion,
		StrategyTypeContentHash,
	}
}

// ParseStrategyType parses a strategy name. Underscores and case are ignored
// and the "by-" prefix is optional.
func ParseStrategyType(s string) (StrategyType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "_", "-")
	if !strings.HasPrefix(key, "by-") {
		key = "by-" + key
	}
	for _, t := range StrategyTypes() {
		if string(t) == key {
			return t, nil
		}
	}
	return "", &errors.ValidationError{
		Field:   "strategy",
		Value:   s,
		Message: fmt.Sprintf("unknown dedup strategy %q", s),
	}
}

// Strategy groups records that represent the same candidate.
type Strategy interface {
	// Type returns the strategy type
	Type() StrategyType

	// Description returns a human-readable description
	Description() string

	// Group partitions records by key. Groups are ordered by their first
	// member and members are ascending indexes into records. Records the
	// strategy cannot key (an empty identifier, say) belong to no group.
	Group(records []candidates.Record) []Group
}

// keyFunc derives a grouping key. ok is false when the record has no key.
type keyFunc func(r candidates.Record) (key string, ok bool)

// baseStrategy provides common strategy functionality.
type baseStrategy struct {
	typ         StrategyType
	description string
	key         keyFunc
}

// Type returns the strategy type.
func (s *baseStrategy) Type() StrategyType {
	return s.typ
}

// Description returns a human-readable description.
func (s *baseStrategy) Description() string {
	return s.description
}

// Group partitions records by the strategy key.
func (s *baseStrategy) Group(records []candidates.Record) []Group {
	return groupBy(s.typ, records, s.key)
}

// New creates the strategy for a type.
func New(t StrategyType) (Strategy, error) {
	switch t {
	case StrategyTypeIdentifier:
		return NewIdentifierStrategy(), nil
	case StrategyTypeProfileURL:
		return NewProfileURLStrategy(), nil
	case StrategyTypeNameRegion:
		return NewNameRegionStrategy(), nil
	case StrategyTypeContentHash:
		return NewContentHashStrategy(), nil
	default:
		return nil, &errors.ValidationError{
			Field:   "strategy",
			Value:   t,
			Message: fmt.Sprintf("unknown dedup strategy %q", t),
		}
	}
}

// NewIdentifierStrategy groups by the site-assigned identifier.
func NewIdentifierStrategy() Strategy {
	return &baseStrategy{
		typ:         StrategyTypeIdentifier,
		description: "Records sharing a non-empty identifier",
		key: func(r candidates.Record) (string, bool) {
			id := strings.TrimSpace(r.Identifier)
			return id, id != ""
		},
	}
}

// NewProfileURLStrategy groups by canonical profile URL.
func NewProfileURLStrategy() Strategy {
	return &baseStrategy{
		typ:         StrategyTypeProfileURL,
		description: "Records sharing a canonical profile URL",
		key: func(r candidates.Record) (string, bool) {
			u := CanonicalURL(r.ProfileURL)
			return u, u != ""
		},
	}
}

// NewContentHashStrategy groups by a hash of every identity field.
func NewContentHashStrategy() Strategy {
	return &baseStrategy{
		typ:         StrategyTypeContentHash,
		description: "Records identical apart from provenance",
		key: func(r candidates.Record) (string, bool) {
			return ContentHash(r), true
		},
	}
}
