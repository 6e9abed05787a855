package merge_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/candimap/pkg/candidates"
	"github.com/agentstation/candimap/pkg/dedup"
	"github.com/agentstation/candimap/pkg/merge"
)

func at(day int) candidates.Timestamp {
	return candidates.NewTimestamp(time.Date(2025, 7, day, 9, 0, 0, 0, time.UTC))
}

func members(records ...candidates.Record) []merge.Member {
	out := make([]merge.Member, len(records))
	for i, r := range records {
		out[i] = merge.Member{Record: r, Index: i}
	}
	return out
}

func TestResolveRules(t *testing.T) {
	tests := []struct {
		name   string
		group  []merge.Member
		winner int
		rule   merge.Rule
	}{
		{
			name: "single latest wins over enrichment",
			group: members(
				candidates.Record{Name: "a", Career: "x", Occupation: "y"},
				candidates.Record{Name: "b", Latest: true},
			),
			winner: 1,
			rule:   merge.RuleLatest,
		},
		{
			name: "two latest fall through to enrichment",
			group: members(
				candidates.Record{Name: "a", Latest: true},
				candidates.Record{Name: "b", Latest: true, Career: "x"},
				candidates.Record{Name: "c", Career: "x", Occupation: "y"},
			),
			winner: 2,
			rule:   merge.RuleEnrichment,
		},
		{
			name: "more enrichment wins over newer",
			group: members(
				candidates.Record{Name: "a", CollectedAt: at(9)},
				candidates.Record{Name: "b", CollectedAt: at(1), Websites: []string{"https://b.example"}},
			),
			winner: 1,
			rule:   merge.RuleEnrichment,
		},
		{
			name: "newer wins when enrichment ties",
			group: members(
				candidates.Record{Name: "a", CollectedAt: at(1)},
				candidates.Record{Name: "b", CollectedAt: at(3)},
				candidates.Record{Name: "c"},
			),
			winner: 1,
			rule:   merge.RuleCollectedAt,
		},
		{
			name: "input order breaks full ties",
			group: []merge.Member{
				{Record: candidates.Record{Name: "a", CollectedAt: at(2)}, Index: 7},
				{Record: candidates.Record{Name: "b", CollectedAt: at(2)}, Index: 3},
			},
			winner: 1,
			rule:   merge.RuleInputOrder,
		},
		{
			name:   "single member",
			group:  members(candidates.Record{Name: "a"}),
			winner: 0,
			rule:   merge.RuleEnrichment,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := merge.Resolve(tt.group)
			assert.Equal(t, tt.winner, res.Winner)
			assert.Equal(t, tt.rule, res.Rule)
			assert.Equal(t, tt.group[tt.winner].Record.Name, res.Survivor.Record.Name)
			assert.Len(t, res.Discarded, len(tt.group)-1)
		})
	}
}

func TestResolveSameProfileURLKeepsLaterCollection(t *testing.T) {
	older := candidates.Record{Name: "山田太郎", ProfileURL: "https://example.jp/c/1", CollectedAt: at(1)}
	newer := candidates.Record{Name: "山田太郎", ProfileURL: "https://example.jp/c/1", CollectedAt: at(5)}

	res := merge.Resolve(members(older, newer))

	assert.Equal(t, merge.RuleCollectedAt, res.Rule)
	assert.Equal(t, at(5), res.Survivor.Record.CollectedAt)
	require.Len(t, res.Discarded, 1)
	assert.Equal(t, at(1), res.Discarded[0].Record.CollectedAt)
}

func TestResolveBackfillsAgreedIdentifier(t *testing.T) {
	res := merge.Resolve(members(
		candidates.Record{Name: "a", Identifier: "c-1"},
		candidates.Record{Name: "a", Career: "x"},
	))
	assert.Equal(t, "c-1", res.Survivor.Record.Identifier)
	assert.Equal(t, "c-1", res.Backfilled)

	res = merge.Resolve(members(
		candidates.Record{Name: "a", Identifier: "c-1"},
		candidates.Record{Name: "a", Identifier: "c-2"},
		candidates.Record{Name: "a", Career: "x"},
	))
	assert.Empty(t, res.Survivor.Record.Identifier)
	assert.Empty(t, res.Backfilled)
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	group := members(
		candidates.Record{Name: "a", Identifier: "c-1", Websites: []string{"https://a.example"}},
		candidates.Record{Name: "a", Career: "x", Websites: []string{"https://b.example"}},
	)
	res := merge.Resolve(group)
	res.Survivor.Record.Websites[0] = "changed"

	assert.Empty(t, group[1].Record.Identifier)
	assert.Equal(t, "https://b.example", group[1].Record.Websites[0])
}

func TestResolveEmptyGroupPanics(t *testing.T) {
	assert.Panics(t, func() { merge.Resolve(nil) })
}

func TestRunSurvivorOrdering(t *testing.T) {
	records := []candidates.Record{
		{Name: "一郎", Region: "東京都"},
		{Name: "二郎", Region: "東京都", Identifier: "b"},
		{Name: "三郎", Region: "東京都"},
		{Name: "二郎", Region: "東京都", Identifier: "b", Career: "市議"},
		{Name: "四郎", Region: "東京都"},
	}

	out := merge.Run(records, dedup.DefaultChain())

	names := make([]string, len(out.Survivors))
	for i, r := range out.Survivors {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"一郎", "二郎", "三郎", "四郎"}, names)
	assert.Equal(t, "市議", out.Survivors[1].Career, "survivor takes the earliest member's place")
	assert.Equal(t, []int{0, 3, 2, 4}, out.Indexes)

	require.Len(t, out.Removals, 1)
	assert.Equal(t, merge.Removal{
		Strategy:      dedup.StrategyTypeIdentifier,
		Key:           "b",
		Rule:          merge.RuleEnrichment,
		Index:         1,
		Record:        records[1],
		Survivor:      "b",
		SurvivorIndex: 3,
	}, out.Removals[0])
	assert.Equal(t, 1, out.Groups[dedup.StrategyTypeIdentifier])
}

func TestRunNeverDiscardsTwice(t *testing.T) {
	records := []candidates.Record{
		{Identifier: "a", Name: "山田太郎", Region: "東京都", ProfileURL: "https://example.jp/a"},
		{Identifier: "a", Name: "山田太郎", Region: "東京都", ProfileURL: "https://example.jp/a"},
		{Name: "山田太郎", Region: "東京都", ProfileURL: "https://example.jp/a"},
	}

	out := merge.Run(records, dedup.DefaultChain())

	require.Len(t, out.Survivors, 1)
	assert.Len(t, out.Removals, 2)
	assert.Equal(t, len(records), len(out.Survivors)+out.Discarded())

	seen := make(map[int]bool)
	for _, r := range out.Removals {
		assert.False(t, seen[r.Index], "record %d discarded twice", r.Index)
		seen[r.Index] = true
	}
	assert.Equal(t, 1, out.Groups[dedup.StrategyTypeIdentifier])
	assert.Equal(t, 1, out.Groups[dedup.StrategyTypeProfileURL])
	assert.Zero(t, out.Groups[dedup.StrategyTypeNameRegion])
}

func TestRunKeepsDisagreeingIdentifiers(t *testing.T) {
	records := []candidates.Record{
		{Identifier: "p-1", Name: "佐藤一郎", Region: "北海道"},
		{Identifier: "p-2", Name: "佐藤一郎", Region: "北海道"},
		{Name: "佐藤一郎", Region: "北海道", Career: "元町長"},
	}

	out := merge.Run(records, dedup.DefaultChain())

	require.Len(t, out.Survivors, 2)
	assert.Equal(t, "p-1", out.Survivors[0].Identifier, "unidentified record merged into p-1 and backfilled")
	assert.Equal(t, "元町長", out.Survivors[0].Career)
	assert.Equal(t, "p-2", out.Survivors[1].Identifier)
}

func TestRunUntouchedRecordsPassThrough(t *testing.T) {
	records := []candidates.Record{
		{Name: "一郎", Region: "東京都", Websites: []string{"https://a.example"}},
		{Name: "二郎", Region: "大阪府"},
	}

	out := merge.Run(records, nil)

	if diff := cmp.Diff(records, out.Survivors); diff != "" {
		t.Errorf("survivors mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, out.Removals)
}
