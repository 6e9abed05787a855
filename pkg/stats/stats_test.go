package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/candimap/pkg/candidates"
	"github.com/agentstation/candimap/pkg/stats"
)

func TestAggregate(t *testing.T) {
	records := []candidates.Record{
		{PartyNormalized: "自由民主党", Region: "東京都", DistrictType: candidates.DistrictSingleMember},
		{PartyNormalized: "自由民主党", Region: "比例代表", DistrictType: candidates.DistrictProportional},
		{PartyNormalized: "無所属", Region: "東京都", DistrictType: candidates.DistrictSingleMember},
		{Region: "", DistrictType: ""},
	}

	got := stats.Aggregate(records)

	assert.Equal(t, candidates.Statistics{
		ByParty:            map[string]int{"自由民主党": 2, "無所属": 1, "未分類": 1},
		ByPrefecture:       map[string]int{"東京都": 2, "比例代表": 1},
		ByConstituencyType: map[string]int{"single_member": 2, "proportional": 1, "unknown": 1},
	}, got)
	assert.Equal(t, candidates.Coverage{Parties: 3, Prefectures: 2}, stats.Coverage(got))
}

func TestAggregateEmpty(t *testing.T) {
	got := stats.Aggregate(nil)
	assert.NotNil(t, got.ByParty)
	assert.Empty(t, got.ByParty)
	assert.Equal(t, candidates.Coverage{}, stats.Coverage(got))
}

func TestAggregateIsARecount(t *testing.T) {
	records := []candidates.Record{{PartyNormalized: "公明党", Region: "大阪府"}}
	first := stats.Aggregate(records)
	first.ByParty["公明党"] = 99

	assert.Equal(t, 1, stats.Aggregate(records).ByParty["公明党"])
}

func TestCompare(t *testing.T) {
	authored := candidates.Statistics{
		ByParty:      map[string]int{"公明党": 3, "無所属": 1},
		ByPrefecture: map[string]int{"大阪府": 4},
	}
	actual := candidates.Statistics{
		ByParty:            map[string]int{"公明党": 2, "無所属": 1, "参政党": 1},
		ByPrefecture:       map[string]int{"大阪府": 4},
		ByConstituencyType: map[string]int{"unknown": 4},
	}

	assert.Equal(t, []stats.Drift{
		{Dimension: "byParty", Key: "公明党", Authored: 3, Actual: 2},
		{Dimension: "byParty", Key: "参政党", Authored: 0, Actual: 1},
		{Dimension: "byConstituencyType", Key: "unknown", Authored: 0, Actual: 4},
	}, stats.Compare(authored, actual))

	assert.Empty(t, stats.Compare(actual, actual))
}
