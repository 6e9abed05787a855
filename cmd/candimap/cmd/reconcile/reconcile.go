package reconcile

import (
	"context"
	"io"

	"github.com/agentstation/candimap/internal/appcontext"
	"github.com/agentstation/candimap/internal/cmd/output"
	"github.com/agentstation/candimap/internal/cmd/table"
	"github.com/agentstation/candimap/internal/metrics"
	"github.com/agentstation/candimap/pkg/candidates"
	"github.com/agentstation/candimap/pkg/errors"
	"github.com/agentstation/candimap/pkg/logging"
	"github.com/agentstation/candimap/pkg/provenance"
	"github.com/agentstation/candimap/pkg/reconciler"
	"github.com/agentstation/candimap/pkg/rules"
)

// Summary is printed instead of the dataset when it is written to a file.
type Summary struct {
	RunID      string             `json:"runId" yaml:"runId"`
	Output     string             `json:"output" yaml:"output"`
	Input      int                `json:"input" yaml:"input"`
	Rejected   int                `json:"rejected" yaml:"rejected"`
	Split      int                `json:"split" yaml:"split"`
	Duplicates int                `json:"duplicates" yaml:"duplicates"`
	Survivors  int                `json:"survivors" yaml:"survivors"`
	Audit      *provenance.Report `json:"audit" yaml:"audit"`
	Warnings   []rules.Warning    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Execute runs the reconcile command.
func Execute(ctx context.Context, app appcontext.Interface, flags *Flags, w io.Writer) error {
	if len(flags.Inputs) == 0 {
		return &errors.ValidationError{Field: "input", Message: "at least one input file is required"}
	}

	// Step 1: Load rules and records
	cfg, err := app.Rules()
	if err != nil {
		return err
	}

	ctx = logging.WithStage(logging.WithLogger(ctx, app.Logger()), "load")
	records, err := candidates.LoadFiles(ctx, flags.Inputs)
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Debug().
		Int("files", len(flags.Inputs)).
		Int("records", len(records)).
		Msg("Loaded input records")

	// Step 2: Reconcile
	opts := []reconciler.Option{reconciler.WithLogger(app.Logger())}
	if flags.RunID != "" {
		opts = append(opts, reconciler.WithRunID(flags.RunID))
	}
	res, err := reconciler.Reconcile(records, cfg, opts...)
	if err != nil {
		return err
	}

	// Step 3: Write artifacts
	if flags.Audit != "" {
		if err := provenance.Save(flags.Audit, provenance.File{RunID: res.Metadata.RunID, Report: res.Report()}); err != nil {
			return err
		}
	}
	if flags.MetricsFile != "" {
		m := metrics.New()
		m.Observe(res)
		if err := m.WriteTextfile(flags.MetricsFile); err != nil {
			return err
		}
	}

	// Step 4: Print the dataset or a summary
	format := output.DetectFormat(app.OutputFormat(), w)
	if flags.Write == "" {
		return output.Write(w, format, res.Envelope, func(wide bool) table.Data {
			return table.RecordsToTableData(res.Records(), wide)
		})
	}

	if err := candidates.SaveFile(flags.Write, res.Envelope); err != nil {
		return err
	}
	summary := newSummary(res, flags.Write)
	return output.Write(w, format, summary, func(bool) table.Data {
		return summaryTable(summary)
	})
}

func newSummary(res *reconciler.Result, path string) Summary {
	s := res.Metadata.Stats
	return Summary{
		RunID:      res.Metadata.RunID,
		Output:     path,
		Input:      s.Input,
		Rejected:   s.Rejected,
		Split:      s.Split,
		Duplicates: s.Duplicates,
		Survivors:  s.Survivors,
		Audit:      res.Report(),
		Warnings:   res.Warnings,
	}
}

// summaryTable lists the record flow followed by the audit counts.
func summaryTable(s Summary) table.Data {
	data := table.ReportToTableData(s.Audit)
	rows := [][]string{
		{"input", "", table.FormatNumber(s.Input)},
		{"survivors", s.Output, table.FormatNumber(s.Survivors)},
	}
	data.Rows = append(rows, data.Rows...)
	for _, w := range s.Warnings {
		data.Rows = append(data.Rows, []string{"warning", w.Field, w.Message})
	}
	return data
}
