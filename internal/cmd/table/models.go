// Package table provides common table formatting utilities for CLI commands.
package table

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/agentstation/candimap/pkg/candidates"
	"github.com/agentstation/candimap/pkg/stats"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// RecordsToTableData converts candidate records to table format.
func RecordsToTableData(records []candidates.Record, wide bool) Data {
	headers := []string{"Name", "Reading", "Party", "Region", "Type"}
	if wide {
		headers = append(headers, "ID", "Source", "Collected", "Career")
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := []string{
			r.Name,
			dash(r.Reading),
			dash(r.PartyNormalized),
			dash(r.Region),
			r.DistrictType.String(),
		}
		if wide {
			collected := "-"
			if !r.CollectedAt.IsZero() {
				collected = formatTimestamp(r.CollectedAt.Time)
			}
			source := dash(r.Source)
			if r.Latest {
				source += " *"
			}
			row = append(row, dash(r.Identifier), source, collected, dash(Truncate(r.Career, 40)))
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows}
}

// StatisticsToTableData converts dataset statistics to a dimension/key/count table.
// Keys are sorted by descending count, then by key.
func StatisticsToTableData(s candidates.Statistics) Data {
	var rows [][]string
	for _, dim := range []struct {
		name   string
		counts map[string]int
	}{
		{"party", s.ByParty},
		{"prefecture", s.ByPrefecture},
		{"district type", s.ByConstituencyType},
	} {
		keys := slices.Sorted(maps.Keys(dim.counts))
		slices.SortStableFunc(keys, func(a, b string) int {
			return dim.counts[b] - dim.counts[a]
		})
		for i, key := range keys {
			label := ""
			if i == 0 {
				label = dim.name
			}
			rows = append(rows, []string{label, key, FormatNumber(dim.counts[key])})
		}
	}

	return Data{
		Headers:         []string{"Dimension", "Key", "Count"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight},
	}
}

// DriftToTableData converts statistics drift to table format.
func DriftToTableData(drift []stats.Drift) Data {
	rows := make([][]string, 0, len(drift))
	for _, d := range drift {
		rows = append(rows, []string{
			d.Dimension,
			d.Key,
			strconv.Itoa(d.Authored),
			strconv.Itoa(d.Actual),
			fmt.Sprintf("%+d", d.Actual-d.Authored),
		})
	}
	return Data{
		Headers:         []string{"Dimension", "Key", "Authored", "Actual", "Delta"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight},
	}
}

// FormatNumber formats a count with thousand separators.
func FormatNumber(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Truncate shortens s to at most n characters, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
