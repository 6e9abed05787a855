package table

import (
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/agentstation/candimap/pkg/provenance"
	"github.com/agentstation/candimap/pkg/rules"
	"github.com/agentstation/candimap/pkg/splitter"
	"github.com/agentstation/candimap/pkg/validator"
)

// EntriesToTableData converts audit entries to table format, one row per entry.
func EntriesToTableData(entries []provenance.Entry) Data {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		survivor := "-"
		if e.Kind == provenance.KindRemoval {
			survivor = e.Survivor
			if e.SurvivorIndex != nil {
				survivor += " (#" + strconv.Itoa(*e.SurvivorIndex) + ")"
			}
		}
		reason := e.Reason
		if e.Strategy != "" {
			reason = e.Strategy + " / " + e.Reason
		}
		rows = append(rows, []string{
			strconv.Itoa(e.Index),
			string(e.Kind),
			e.Name,
			reason,
			dash(e.Detail),
			survivor,
		})
	}
	return Data{
		Headers:         []string{"#", "Kind", "Name", "Reason", "Detail", "Survivor"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft},
	}
}

// ReportToTableData converts an audit report summary to table format.
func ReportToTableData(report *provenance.Report) Data {
	var rows [][]string
	for _, section := range []struct {
		name   string
		counts map[string]int
	}{
		{"rejected", report.Rejections},
		{"split", report.Splits},
		{"removed", report.Removals},
		{"decided by", report.MergeRules},
	} {
		for i, key := range slices.Sorted(maps.Keys(section.counts)) {
			label := ""
			if i == 0 {
				label = section.name
			}
			rows = append(rows, []string{label, key, FormatNumber(section.counts[key])})
		}
	}
	return Data{
		Headers:         []string{"Stage", "Reason", "Records"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight},
	}
}

// NamedVerdict pairs a name with its validation verdict.
type NamedVerdict struct {
	Name    string            `json:"name" yaml:"name"`
	Verdict validator.Verdict `json:"verdict" yaml:"verdict"`
}

// VerdictsToTableData converts validation verdicts to table format.
func VerdictsToTableData(verdicts []NamedVerdict) Data {
	rows := make([][]string, 0, len(verdicts))
	for _, v := range verdicts {
		status := "✓"
		if !v.Verdict.Accepted {
			status = "✗"
		}
		rows = append(rows, []string{
			v.Name,
			status,
			dash(v.Verdict.Reason.String()),
			dash(v.Verdict.Detail),
		})
	}
	return Data{
		Headers:         []string{"Name", "OK", "Reason", "Detail"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignCenter, AlignLeft, AlignLeft},
	}
}

// RawSplit pairs a raw string with its split.
type RawSplit struct {
	Raw    string          `json:"raw" yaml:"raw"`
	Result splitter.Result `json:"result" yaml:"result"`
}

// SplitsToTableData converts name/reading splits to table format.
func SplitsToTableData(splits []RawSplit) Data {
	rows := make([][]string, 0, len(splits))
	for _, s := range splits {
		rows = append(rows, []string{s.Raw, s.Result.Name, dash(s.Result.Reading), s.Result.Rule.String()})
	}
	return Data{
		Headers: []string{"Raw", "Name", "Reading", "Rule"},
		Rows:    rows,
	}
}

// WarningsToTableData converts configuration warnings to table format.
func WarningsToTableData(warnings []rules.Warning) Data {
	rows := make([][]string, 0, len(warnings))
	for _, w := range warnings {
		rows = append(rows, []string{w.Field, w.Message})
	}
	return Data{
		Headers: []string{"Field", "Warning"},
		Rows:    rows,
	}
}

// formatTimestamp formats a collection time for display.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}
