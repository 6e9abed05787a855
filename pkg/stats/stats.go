// Package stats derives count statistics from a record set. Statistics are
// never stored or updated in place; they are recounted from the records
// every time they are needed.
package stats

import (
	"maps"
	"slices"

	"github.com/agentstation/candimap/pkg/candidates"
	"github.com/agentstation/candimap/pkg/constants"
)

// Aggregate counts records by normalized party, region and district type in
// a single pass. Records without a normalized party count as unclassified
// and records without a region are not counted by prefecture.
func Aggregate(records []candidates.Record) candidates.Statistics {
	s := candidates.Statistics{
		ByParty:            make(map[string]int),
		ByPrefecture:       make(map[string]int),
		ByConstituencyType: make(map[string]int),
	}
	for _, r := range records {
		party := r.PartyNormalized
		if party == "" {
			party = constants.UnclassifiedParty
		}
		s.ByParty[party]++
		if r.Region != "" {
			s.ByPrefecture[r.Region]++
		}
		s.ByConstituencyType[r.DistrictType.String()]++
	}
	return s
}

// Coverage counts the distinct parties and prefectures in s.
func Coverage(s candidates.Statistics) candidates.Coverage {
	return candidates.Coverage{
		Parties:     len(s.ByParty),
		Prefectures: len(s.ByPrefecture),
	}
}

// Drift lists the differences between authored statistics and a fresh
// recount, one entry per differing count.
type Drift struct {
	Dimension string `json:"dimension" yaml:"dimension"` // byParty, byPrefecture or byConstituencyType
	Key       string `json:"key" yaml:"key"`
	Authored  int    `json:"authored" yaml:"authored"`
	Actual    int    `json:"actual" yaml:"actual"`
}

// Compare returns the counts in authored that disagree with actual, ordered
// by dimension and key.
func Compare(authored, actual candidates.Statistics) []Drift {
	var drift []Drift
	dimensions := []struct {
		name             string
		authored, actual map[string]int
	}{
		{"byParty", authored.ByParty, actual.ByParty},
		{"byPrefecture", authored.ByPrefecture, actual.ByPrefecture},
		{"byConstituencyType", authored.ByConstituencyType, actual.ByConstituencyType},
	}
	for _, d := range dimensions {
		keys := slices.Sorted(maps.Keys(d.authored))
		for k := range d.actual {
			if _, ok := d.authored[k]; !ok {
				keys = append(keys, k)
			}
		}
		slices.Sort(keys)
		for _, k := range keys {
			if d.authored[k] != d.actual[k] {
				drift = append(drift, Drift{Dimension: d.name, Key: k, Authored: d.authored[k], Actual: d.actual[k]})
			}
		}
	}
	return drift
}
