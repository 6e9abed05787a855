package dedup

import (
	"github.com/agentstation/candimap/pkg/candidates"
)

// Group is a set of records sharing a key under one strategy.
type Group struct {
	Strategy StrategyType `json:"strategy" yaml:"strategy"`
	Key      string       `json:"key" yaml:"key"`
	Members  []int        `json:"members" yaml:"members"` // Ascending indexes into the grouped slice
}

// IsDuplicate reports whether the group has more than one member.
func (g Group) IsDuplicate() bool {
	return len(g.Members) > 1
}

// Records returns the group members from the slice the group was built over.
func (g Group) Records(records []candidates.Record) []candidates.Record {
	out := make([]candidates.Record, 0, len(g.Members))
	for _, i := range g.Members {
		out = append(out, records[i])
	}
	return out
}

// Duplicates filters groups down to those with more than one member.
func Duplicates(groups []Group) []Group {
	var out []Group
	for _, g := range groups {
		if g.IsDuplicate() {
			out = append(out, g)
		}
	}
	return out
}

// groupBy buckets records by key, keeping first-seen order for both groups
// and members.
func groupBy(typ StrategyType, records []candidates.Record, key keyFunc) []Group {
	index := make(map[string]int)
	var groups []Group
	for i, r := range records {
		k, ok := key(r)
		if !ok {
			continue
		}
		gi, seen := index[k]
		if !seen {
			gi = len(groups)
			index[k] = gi
			groups = append(groups, Group{Strategy: typ, Key: k})
		}
		groups[gi].Members = append(groups[gi].Members, i)
	}
	return groups
}
