// Package stats provides the stats command implementation.
package stats

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/candimap/internal/appcontext"
	"github.com/agentstation/candimap/internal/cmd/output"
	"github.com/agentstation/candimap/internal/cmd/table"
	"github.com/agentstation/candimap/pkg/candidates"
	"github.com/agentstation/candimap/pkg/errors"
	"github.com/agentstation/candimap/pkg/stats"
)

// Report is the recomputed statistics of a dataset file.
type Report struct {
	File       string                `json:"file" yaml:"file"`
	Candidates int                   `json:"candidates" yaml:"candidates"`
	Statistics candidates.Statistics `json:"statistics" yaml:"statistics"`
	Coverage   candidates.Coverage   `json:"coverage" yaml:"coverage"`
	Drift      []stats.Drift         `json:"drift" yaml:"drift"`
}

// NewCommand creates the stats command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:     "stats FILE",
		GroupID: "inspect",
		Short:   "Recount dataset statistics and report drift",
		Long: `Stats recomputes the party, prefecture and district type counts of a
dataset file from its records and compares them with the statistics the
file carries. Hand-edited or stale datasets show up as drift.`,
		Example: `  candimap stats candidates.json
  candimap stats candidates.json --check`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := Recount(args[0])
			if err != nil {
				return err
			}
			app.Logger().Debug().
				Str("file", report.File).
				Int("drift", len(report.Drift)).
				Msg("Recounted statistics")

			w := cmd.OutOrStdout()
			if err := write(w, output.DetectFormat(app.OutputFormat(), w), report); err != nil {
				return err
			}

			if check && len(report.Drift) > 0 {
				return &errors.ValidationError{
					Field:   "statistics",
					Value:   len(report.Drift),
					Message: fmt.Sprintf("%d counts differ from the records", len(report.Drift)),
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "exit with an error when the statistics drift")

	return cmd
}

// Recount loads a dataset file and recomputes its statistics.
func Recount(path string) (*Report, error) {
	env, err := candidates.LoadFile(path)
	if err != nil {
		return nil, err
	}
	actual := stats.Aggregate(env.Data)
	return &Report{
		File:       path,
		Candidates: len(env.Data),
		Statistics: actual,
		Coverage:   stats.Coverage(actual),
		Drift:      stats.Compare(env.Statistics, actual),
	}, nil
}

func write(w io.Writer, format output.Format, report *Report) error {
	if !format.IsTable() {
		return output.NewFormatter(format).Format(w, report)
	}

	if err := output.Write(w, format, nil, func(bool) table.Data {
		return table.StatisticsToTableData(report.Statistics)
	}); err != nil {
		return err
	}
	if len(report.Drift) == 0 {
		_, err := fmt.Fprintf(w, "\n%d candidates, no drift\n", report.Candidates)
		return err
	}
	if _, err := fmt.Fprintf(w, "\n%d candidates, %d counts drift:\n", report.Candidates, len(report.Drift)); err != nil {
		return err
	}
	return output.Write(w, format, nil, func(bool) table.Data {
		return table.DriftToTableData(report.Drift)
	})
}
