package dedup

import (
	"slices"
	"strings"

	"github.com/agentstation/candimap/pkg/candidates"
)

// NameRegionStrategy groups records with the same name and region. Two
// same-named candidates in one region are common enough that a shared
// (name, region) is not proof of identity: records whose identifiers are both
// present and differ are never put in the same group. Records without an
// identifier join the group of the first identified record for their key.
type NameRegionStrategy struct {
	baseStrategy
}

// NewNameRegionStrategy creates a name and region strategy.
func NewNameRegionStrategy() Strategy {
	s := &NameRegionStrategy{
		baseStrategy: baseStrategy{
			typ:         StrategyTypeNameRegion,
			description: "Records with the same name and region, unless their identifiers disagree",
		},
	}
	s.key = nameRegionKey
	return s
}

// Group partitions records by name and region, then splits each bucket by
// identifier.
func (s *NameRegionStrategy) Group(records []candidates.Record) []Group {
	var groups []Group
	for _, bucket := range groupBy(s.typ, records, s.key) {
		groups = append(groups, splitByIdentifier(bucket, records)...)
	}
	slices.SortStableFunc(groups, func(a, b Group) int {
		return a.Members[0] - b.Members[0]
	})
	return groups
}

func nameRegionKey(r candidates.Record) (string, bool) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return "", false
	}
	return name + "/" + strings.TrimSpace(r.Region), true
}

func splitByIdentifier(bucket Group, records []candidates.Record) []Group {
	var ids []string
	members := make(map[string][]int)
	var unidentified []int
	for _, i := range bucket.Members {
		id := strings.TrimSpace(records[i].Identifier)
		if id == "" {
			unidentified = append(unidentified, i)
			continue
		}
		if _, seen := members[id]; !seen {
			ids = append(ids, id)
		}
		members[id] = append(members[id], i)
	}

	if len(ids) <= 1 {
		return []Group{bucket}
	}

	groups := make([]Group, 0, len(ids))
	for n, id := range ids {
		g := Group{Strategy: bucket.Strategy, Key: bucket.Key + "@" + id, Members: members[id]}
		if n == 0 {
			g.Members = mergeSorted(g.Members, unidentified)
		}
		groups = append(groups, g)
	}
	return groups
}

// mergeSorted merges two ascending index slices.
func mergeSorted(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] < b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
