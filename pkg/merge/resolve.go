// Package merge resolves duplicate groups. Each group keeps exactly one
// survivor, chosen by an ordered list of selection rules, and every other
// member is discarded with an audit entry.
package merge

import (
	"strings"

	"github.com/agentstation/candimap/pkg/candidates"
)

// Rule names the selection rule that decided a group.
type Rule string

// Selection rules, in priority order.
const (
	// RuleLatest prefers the only member flagged as the latest artifact.
	RuleLatest Rule = "latest"
	// RuleEnrichment prefers the member with the most enrichment fields.
	RuleEnrichment Rule = "enrichment"
	// RuleCollectedAt prefers the most recently collected member.
	RuleCollectedAt Rule = "collected-at"
	// RuleInputOrder prefers the member that came first in the input.
	RuleInputOrder Rule = "input-order"
)

// String returns the rule name.
func (r Rule) String() string {
	return string(r)
}

// Member is a record together with its position in the original input.
type Member struct {
	Record candidates.Record
	Index  int
}

// Resolution is the outcome of resolving one group.
type Resolution struct {
	Survivor  Member
	Winner    int // Position of the survivor within the group
	Discarded []Member
	Rule      Rule

	// Backfilled is the identifier copied onto a survivor that had none,
	// when every identified member of the group agreed on it.
	Backfilled string
}

// Resolve picks the survivor of a group. Rules are applied in order and
// each one only breaks the ties left by the previous:
//
//  1. the single member flagged latest, if exactly one is;
//  2. the most non-empty enrichment fields;
//  3. the latest collectedAt, with an unknown time oldest;
//  4. the smallest input index.
//
// Resolve panics on an empty group.
func Resolve(group []Member) Resolution {
	if len(group) == 0 {
		panic("merge: resolve of an empty group")
	}

	winner, rule := selectSurvivor(group)

	res := Resolution{
		Survivor: group[winner],
		Winner:   winner,
		Rule:     rule,
	}
	res.Survivor.Record = group[winner].Record.Clone()
	for i, m := range group {
		if i != winner {
			res.Discarded = append(res.Discarded, m)
		}
	}

	if strings.TrimSpace(res.Survivor.Record.Identifier) == "" {
		if id, ok := agreedIdentifier(group); ok {
			res.Survivor.Record.Identifier = id
			res.Backfilled = id
		}
	}
	return res
}

func selectSurvivor(group []Member) (int, Rule) {
	tied := make([]int, len(group))
	for i := range group {
		tied[i] = i
	}

	var latest []int
	for _, i := range tied {
		if group[i].Record.Latest {
			latest = append(latest, i)
		}
	}
	if len(latest) == 1 {
		return latest[0], RuleLatest
	}

	tied = keepMax(tied, func(i int) int { return group[i].Record.EnrichmentCount() }, func(a, b int) int { return a - b })
	if len(tied) == 1 {
		return tied[0], RuleEnrichment
	}

	tied = keepMax(tied, func(i int) candidates.Timestamp { return group[i].Record.CollectedAt }, func(a, b candidates.Timestamp) int {
		return a.Compare(b.Time)
	})
	if len(tied) == 1 {
		return tied[0], RuleCollectedAt
	}

	first := tied[0]
	for _, i := range tied[1:] {
		if group[i].Index < group[first].Index {
			first = i
		}
	}
	return first, RuleInputOrder
}

// keepMax returns the members of idx whose value is the maximum.
func keepMax[T any](idx []int, value func(int) T, compare func(a, b T) int) []int {
	var best []int
	var top T
	for _, i := range idx {
		v := value(i)
		switch {
		case len(best) == 0 || compare(v, top) > 0:
			best, top = []int{i}, v
		case compare(v, top) == 0:
			best = append(best, i)
		}
	}
	return best
}

func agreedIdentifier(group []Member) (string, bool) {
	var id string
	for _, m := range group {
		other := strings.TrimSpace(m.Record.Identifier)
		switch {
		case other == "":
		case id == "":
			id = other
		case other != id:
			return "", false
		}
	}
	return id, id != ""
}
