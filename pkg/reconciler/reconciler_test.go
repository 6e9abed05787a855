package reconciler_test

import (
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/candimap/pkg/candidates"
	"github.com/agentstation/candimap/pkg/dedup"
	"github.com/agentstation/candimap/pkg/logging"
	"github.com/agentstation/candimap/pkg/merge"
	"github.com/agentstation/candimap/pkg/provenance"
	"github.com/agentstation/candimap/pkg/reconciler"
	"github.com/agentstation/candimap/pkg/rules"
	"github.com/agentstation/candimap/pkg/validator"
)

func day(d int) candidates.Timestamp {
	return candidates.NewTimestamp(time.Date(2025, 7, d, 9, 0, 0, 0, time.UTC))
}

func fixedClock() utc.Time {
	return utc.New(time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC))
}

func testOptions(t *testing.T) []reconciler.Option {
	t.Helper()
	return []reconciler.Option{
		reconciler.WithLogger(&logging.Nop),
		reconciler.WithClock(fixedClock),
		reconciler.WithRunID("test-run"),
	}
}

// passes mimics two overlapping collection passes over the same site.
func passes() []candidates.Record {
	return []candidates.Record{
		// 0: concatenated name and reading
		{Identifier: "c-1", Name: "板津ゆかイタヅユカ", Party: "立憲", Region: "東京都", DistrictType: candidates.DistrictSingleMember,
			ProfileURL: "https://example.jp/c/1", Source: "pass-1.json", CollectedAt: day(1)},
		// 1: office name captured by a loose selector
		{Name: "事務局", Source: "pass-1.json"},
		// 2: same candidate as 0, second pass, more complete
		{Identifier: "c-1", Name: "板津ゆか", Reading: "イタヅユカ", Party: "立憲民主党", Region: "東京都",
			DistrictType: candidates.DistrictSingleMember, Career: "元都議会議員", Source: "pass-2.json", CollectedAt: day(2)},
		// 3 and 4: same profile page, collected on different days
		{Name: "森まさこモリマサコ", Party: "自民", Region: "福島県", ProfileURL: "https://example.jp/c/2",
			Source: "pass-1.json", CollectedAt: day(1)},
		{Name: "森まさこ", Reading: "モリマサコ", Party: "自由民主党", Region: "福島県", ProfileURL: "https://example.jp/c/2/",
			Source: "pass-2.json", CollectedAt: day(5)},
		// 5: digit in name
		{Name: "田中太郎1", Source: "pass-1.json"},
		// 6 and 7: proportional slot spelled two ways, second pass is the latest artifact
		{Name: "山田太郎", Region: "全国", Source: "pass-1.json"},
		{Name: "山田太郎", Region: "比例", Source: "pass-2-latest.json"},
		// 8 and 9: same name and region, different site identifiers
		{Identifier: "p-1", Name: "佐藤一郎", Region: "北海道"},
		{Identifier: "p-2", Name: "佐藤一郎", Region: "北海道"},
		// 10 and 11: identical apart from provenance
		{Name: "鈴木花子", Party: "公明党", Region: "大阪府", Source: "pass-1.json", CollectedAt: day(1)},
		{Name: "鈴木花子", Party: "公明党", Region: "大阪府", Source: "pass-2.json", CollectedAt: day(3)},
	}
}

func names(records []candidates.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestReconcile(t *testing.T) {
	input := passes()
	res, err := reconciler.Reconcile(input, nil, testOptions(t)...)
	require.NoError(t, err)

	data := res.Records()
	assert.Equal(t, []string{"板津ゆか", "森まさこ", "山田太郎", "佐藤一郎", "佐藤一郎", "鈴木花子"}, names(data))

	t.Run("survivors", func(t *testing.T) {
		assert.Equal(t, "元都議会議員", data[0].Career)
		assert.Equal(t, "立憲民主党", data[0].PartyNormalized)

		assert.Equal(t, "モリマサコ", data[1].Reading)
		assert.Equal(t, day(5), data[1].CollectedAt)

		assert.Equal(t, "比例代表", data[2].Region)
		assert.Equal(t, candidates.DistrictProportional, data[2].DistrictType)
		assert.True(t, data[2].Latest)
		assert.Equal(t, "pass-2-latest.json", data[2].Source)
		assert.Equal(t, "未分類", data[2].PartyNormalized)

		assert.Equal(t, "p-1", data[3].Identifier)
		assert.Equal(t, "p-2", data[4].Identifier)
		assert.Equal(t, day(3), data[5].CollectedAt)
	})

	t.Run("statistics", func(t *testing.T) {
		assert.Equal(t, candidates.Statistics{
			ByParty:            map[string]int{"立憲民主党": 1, "自由民主党": 1, "未分類": 3, "公明党": 1},
			ByPrefecture:       map[string]int{"東京都": 1, "福島県": 1, "比例代表": 1, "北海道": 2, "大阪府": 1},
			ByConstituencyType: map[string]int{"single_member": 1, "proportional": 1, "unknown": 4},
		}, res.Envelope.Statistics)
	})

	t.Run("metadata", func(t *testing.T) {
		md := res.Envelope.Metadata
		assert.Equal(t, 6, md.TotalCandidates)
		assert.Equal(t, 12, md.InputCount)
		assert.Equal(t, 2, md.RejectedCount)
		assert.Equal(t, 4, md.DuplicatesRemoved)
		assert.Equal(t, 6, md.DiscardedCount)
		assert.Equal(t, candidates.Coverage{Parties: 4, Prefectures: 5}, md.Coverage)
		assert.Equal(t, "test-run", md.RunID)
		assert.Equal(t, fixedClock(), md.GeneratedAt)
		assert.Equal(t, []string{"by-identifier", "by-profile-url", "by-name-region", "by-content-hash"}, md.Strategies)
	})

	t.Run("result statistics", func(t *testing.T) {
		s := res.Metadata.Stats
		assert.Equal(t, 12, s.Input)
		assert.Equal(t, 2, s.Rejected)
		assert.Equal(t, 2, s.Split)
		assert.Equal(t, 4, s.Duplicates)
		assert.Equal(t, 6, s.Survivors)
		assert.Equal(t, map[validator.Reason]int{validator.ReasonDenylist: 1, validator.ReasonDigit: 1}, s.RejectedByReason)
		assert.Equal(t, map[dedup.StrategyType]int{
			dedup.StrategyTypeIdentifier: 1,
			dedup.StrategyTypeProfileURL: 1,
			dedup.StrategyTypeNameRegion: 2,
		}, s.RemovedByStrategy)
		assert.Equal(t, "Reconciled 12 records into 6 candidates (2 rejected, 4 duplicates removed, 2 names split)", res.Summary())
	})

	t.Run("audit", func(t *testing.T) {
		report := res.Report()
		assert.Equal(t, map[string]int{"denylist": 1, "contains-digit": 1}, report.Rejections)
		assert.Equal(t, map[string]int{"ideograph-hiragana-katakana": 2}, report.Splits)
		assert.Equal(t, map[string]int{
			merge.RuleEnrichment.String():  1,
			merge.RuleCollectedAt.String(): 2,
			merge.RuleLatest.String():      1,
		}, report.MergeRules)

		var removals []provenance.Entry
		for _, e := range res.Provenance {
			if e.Kind == provenance.KindRemoval {
				removals = append(removals, e)
			}
		}
		require.Len(t, removals, 4)
		assert.Equal(t, 0, removals[0].Index)
		assert.Equal(t, "c-1", removals[0].Survivor)
		require.NotNil(t, removals[0].SurvivorIndex)
		assert.Equal(t, 2, *removals[0].SurvivorIndex)
		assert.Equal(t, "by-profile-url", removals[1].Strategy)
		assert.Equal(t, 3, removals[1].Index)
		assert.Equal(t, 4, *removals[1].SurvivorIndex)
	})

	t.Run("input untouched", func(t *testing.T) {
		if diff := cmp.Diff(passes(), input); diff != "" {
			t.Errorf("input modified (-want +got):\n%s", diff)
		}
	})
}

func TestReconcileIdempotent(t *testing.T) {
	first, err := reconciler.Reconcile(passes(), nil, testOptions(t)...)
	require.NoError(t, err)

	second, err := reconciler.Reconcile(first.Records(), nil, testOptions(t)...)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Records(), second.Records()); diff != "" {
		t.Errorf("second run changed survivors (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.Envelope.Statistics, second.Envelope.Statistics)
	assert.Zero(t, second.Metadata.Stats.Discarded())
}

func TestReconcileDeterministic(t *testing.T) {
	a, err := reconciler.Reconcile(passes(), nil, testOptions(t)...)
	require.NoError(t, err)
	b, err := reconciler.Reconcile(passes(), nil, testOptions(t)...)
	require.NoError(t, err)

	assert.Equal(t, a.Envelope, b.Envelope)
	assert.Equal(t, a.Provenance, b.Provenance)
}

func TestReconcileInvariants(t *testing.T) {
	res, err := reconciler.Reconcile(passes(), nil, testOptions(t)...)
	require.NoError(t, err)

	stats := res.Metadata.Stats
	assert.Equal(t, stats.Input, stats.Survivors+stats.Discarded())

	ids := make(map[string]bool)
	pairs := make(map[string][]string)
	for _, r := range res.Records() {
		if r.Identifier != "" {
			assert.False(t, ids[r.Identifier], "identifier %s survives twice", r.Identifier)
			ids[r.Identifier] = true
		}
		key := r.Name + "/" + r.Region
		for _, other := range pairs[key] {
			assert.True(t, r.Identifier != "" && other != "" && r.Identifier != other,
				"%s survives twice without disagreeing identifiers", key)
		}
		pairs[key] = append(pairs[key], r.Identifier)
	}
}

func TestReconcileProfileURLKeepsLaterCollection(t *testing.T) {
	records := []candidates.Record{
		{Name: "山田太郎", Region: "東京都", ProfileURL: "https://example.jp/c/9", CollectedAt: day(1)},
		{Name: "山田太郎", Region: "神奈川県", ProfileURL: "https://example.jp/c/9", CollectedAt: day(4)},
	}

	res, err := reconciler.Reconcile(records, nil, testOptions(t)...)
	require.NoError(t, err)

	require.Len(t, res.Records(), 1)
	assert.Equal(t, "神奈川県", res.Records()[0].Region)
	assert.Equal(t, 1, res.Envelope.Metadata.DuplicatesRemoved)
}

func TestReconcileContentHash(t *testing.T) {
	cfg, err := rules.Parse([]byte("dedupStrategyOrder: [by-content-hash]\n"))
	require.NoError(t, err)

	records := []candidates.Record{
		{Name: "鈴木花子", Region: "大阪府", Source: "a.json", CollectedAt: day(1)},
		{Name: "鈴木花子", Region: "大阪府", Source: "b.json", CollectedAt: day(2)},
	}

	res, err := reconciler.Reconcile(records, cfg, testOptions(t)...)
	require.NoError(t, err)

	require.Len(t, res.Records(), 1)
	assert.Equal(t, "b.json", res.Records()[0].Source)
	assert.Equal(t, 1, res.Metadata.Stats.RemovedByStrategy[dedup.StrategyTypeContentHash])
	assert.Equal(t, []dedup.StrategyType{
		dedup.StrategyTypeContentHash,
		dedup.StrategyTypeIdentifier,
		dedup.StrategyTypeNameRegion,
	}, res.Metadata.Strategies)
	assert.True(t, res.HasWarnings())
}

func TestReconcileKeepsUnsafeSplitWhole(t *testing.T) {
	res, err := reconciler.Reconcile([]candidates.Record{{Name: "森モリ"}}, nil, testOptions(t)...)
	require.NoError(t, err)

	require.Len(t, res.Records(), 1)
	assert.Equal(t, "森モリ", res.Records()[0].Name)
	assert.Empty(t, res.Records()[0].Reading)
	assert.Equal(t, 1, res.Metadata.Stats.SplitsSkipped)
}

func TestReconcileEmpty(t *testing.T) {
	res, err := reconciler.Reconcile(nil, nil, testOptions(t)...)
	require.NoError(t, err)

	assert.NotNil(t, res.Envelope.Data)
	assert.Empty(t, res.Envelope.Data)
	assert.Zero(t, res.Envelope.Metadata.TotalCandidates)
}

func TestReconcileWithoutProvenance(t *testing.T) {
	opts := append(testOptions(t), reconciler.WithProvenance(false))
	res, err := reconciler.Reconcile(passes(), nil, opts...)
	require.NoError(t, err)

	assert.Empty(t, res.Provenance)
	assert.Len(t, res.Records(), 6)
}

func TestReconcileLogsConfigWarnings(t *testing.T) {
	cfg, err := rules.Parse([]byte("denylist: []\n"))
	require.NoError(t, err)

	log := logging.NewTestLogger(t)
	res, err := reconciler.Reconcile([]candidates.Record{{Name: "事務局"}}, cfg,
		reconciler.WithLogger(log.Logger), reconciler.WithRunID("warn-run"))
	require.NoError(t, err)

	assert.Len(t, res.Records(), 1, "empty denylist fails open")
	log.AssertContains(t, `"field":"denylist"`)
	log.AssertContains(t, `"run_id":"warn-run"`)
	log.AssertContains(t, "Reconciliation complete")
}

func TestOptionsRejectNil(t *testing.T) {
	_, err := reconciler.New(nil, reconciler.WithLogger(nil))
	assert.Error(t, err)
	_, err = reconciler.New(nil, reconciler.WithClock(nil))
	assert.Error(t, err)
	_, err = reconciler.New(nil, reconciler.WithRunID(""))
	assert.Error(t, err)
}

func TestValidateName(t *testing.T) {
	assert.Equal(t, validator.ReasonDenylist, reconciler.ValidateName("事務局", nil).Reason)
	assert.Equal(t, validator.ReasonDigit, reconciler.ValidateName("田中太郎1", nil).Reason)
	assert.True(t, reconciler.ValidateName("山田太郎", nil).Accepted)

	cfg, err := rules.Parse([]byte("denylist: []\n"))
	require.NoError(t, err)
	assert.True(t, reconciler.ValidateName("事務局", cfg).Accepted)

	r, err := reconciler.New(cfg)
	require.NoError(t, err)
	assert.True(t, r.ValidateName("事務局").Accepted)
	assert.Same(t, cfg, r.Config())
}
