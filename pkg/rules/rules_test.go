package rules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/candimap/pkg/dedup"
	"github.com/agentstation/candimap/pkg/errors"
	"github.com/agentstation/candimap/pkg/rules"
)

func warningFields(cfg *rules.Config) []string {
	var fields []string
	for _, w := range cfg.Warnings() {
		fields = append(fields, w.Field)
	}
	return fields
}

func TestDefaultIsClean(t *testing.T) {
	cfg := rules.Default()

	assert.Empty(t, cfg.Warnings())
	assert.Contains(t, cfg.Denylist(), "事務局")
	assert.Contains(t, cfg.PartyTaxonomy(), "無所属")
	assert.Equal(t, "未分類", cfg.UnclassifiedParty())
	assert.Equal(t, "比例代表", cfg.ProportionalRegion())
	assert.Equal(t, dedup.StrategyTypes(), cfg.StrategyOrder())
	assert.Equal(t, []string{"latest"}, cfg.LatestSourceMarkers())
	assert.Len(t, cfg.NameShapes(), 4)

	minLen, maxLen := cfg.NameLength()
	assert.Equal(t, 2, minLen)
	assert.Equal(t, 15, maxLen)
}

func TestAccessorsReturnCopies(t *testing.T) {
	cfg := rules.Default()

	deny := cfg.Denylist()
	deny[0] = "changed"
	assert.NotEqual(t, "changed", cfg.Denylist()[0])

	aliases := cfg.PartyAliases()
	aliases["自民"] = "changed"
	assert.Equal(t, "自由民主党", cfg.PartyAliases()["自民"])
}

func TestParseOmittedKeysKeepDefaults(t *testing.T) {
	cfg, err := rules.Parse([]byte("denylist:\n  - 後援会\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"後援会"}, cfg.Denylist())
	assert.Equal(t, rules.Default().PartyTaxonomy(), cfg.PartyTaxonomy())
	assert.Empty(t, cfg.Warnings())
}

func TestParseEmptyKeysFailOpen(t *testing.T) {
	cfg, err := rules.Parse([]byte("denylist: []\npartyTaxonomy: []\npartyAliases: {}\n"))
	require.NoError(t, err)

	assert.Empty(t, cfg.Denylist())
	assert.Empty(t, cfg.PartyTaxonomy())
	assert.Contains(t, warningFields(cfg), "denylist")
	assert.Contains(t, warningFields(cfg), "partyTaxonomy")
}

func TestCompileSkipsBadPatterns(t *testing.T) {
	cfg, err := rules.Parse([]byte("suspiciousPatterns:\n  - '代表('\n  - 担当\n"))
	require.NoError(t, err)

	require.Len(t, cfg.SuspiciousPatterns(), 1)
	assert.Equal(t, "担当", cfg.SuspiciousPatterns()[0].String())
	assert.Equal(t, []string{"suspiciousPatterns"}, warningFields(cfg))
}

func TestCompileStrategyOrder(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		want     []dedup.StrategyType
		warnings int
	}{
		{
			name: "custom order",
			yaml: "dedupStrategyOrder: [by-name-region, by-identifier]\n",
			want: []dedup.StrategyType{dedup.StrategyTypeNameRegion, dedup.StrategyTypeIdentifier},
		},
		{
			name:     "empty falls back to default",
			yaml:     "dedupStrategyOrder: []\n",
			want:     dedup.StrategyTypes(),
			warnings: 1,
		},
		{
			name: "required strategies are appended",
			yaml: "dedupStrategyOrder: [by-content-hash, by-unknown, by-content-hash]\n",
			want: []dedup.StrategyType{
				dedup.StrategyTypeContentHash,
				dedup.StrategyTypeIdentifier,
				dedup.StrategyTypeNameRegion,
			},
			warnings: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := rules.Parse([]byte(tt.yaml))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.StrategyOrder())
			assert.Len(t, cfg.Warnings(), tt.warnings)
		})
	}
}

func TestCompileInvalidValues(t *testing.T) {
	cfg, err := rules.Parse([]byte("nameLength: {min: 5, max: 3}\npunctuation: '!あ'\nunclassifiedParty: ''\n"))
	require.NoError(t, err)

	minLen, maxLen := cfg.NameLength()
	assert.Equal(t, 2, minLen)
	assert.Equal(t, 15, maxLen)
	assert.Equal(t, "!", cfg.Punctuation())
	assert.Equal(t, "未分類", cfg.UnclassifiedParty())
	assert.ElementsMatch(t, []string{"nameLength", "punctuation", "unclassifiedParty"}, warningFields(cfg))
}

func TestCompileEmptyFile(t *testing.T) {
	cfg := rules.Compile(rules.File{})

	assert.NotEmpty(t, cfg.Warnings())
	assert.Equal(t, dedup.StrategyTypes(), cfg.StrategyOrder())
	assert.Equal(t, "未分類", cfg.UnclassifiedParty())
}

func TestFileRoundTrip(t *testing.T) {
	f := rules.Default().File()
	again := rules.Compile(f)

	assert.Equal(t, rules.Default().File(), again.File())
	assert.Empty(t, again.Warnings())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	_, err := rules.LoadFile(filepath.Join(dir, "missing.yaml"))
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("denylist: [unclosed\n"), 0o644))
	_, err = rules.LoadFile(bad)
	assert.True(t, errors.IsConfigError(err))

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("latestSourceMarkers: [final]\n"), 0o644))
	cfg, err := rules.LoadFile(good)
	require.NoError(t, err)
	assert.Equal(t, []string{"final"}, cfg.LatestSourceMarkers())
}
