// Package reconcile provides the reconcile command implementation.
package reconcile

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/candimap/internal/appcontext"
)

// Flags holds the reconcile command flags.
type Flags struct {
	Inputs      []string
	Write       string
	Audit       string
	MetricsFile string
	RunID       string
}

// NewCommand creates the reconcile command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "reconcile [file...]",
		GroupID: "core",
		Short:   "Reconcile collection passes into one candidate dataset",
		Long: `Reconcile merges the records of one or more collection passes into one
canonical candidate dataset.

Inputs are JSON or YAML files holding either a full dataset envelope or a
bare array of records. Records keep their file order; a record without a
source is stamped with its file name.

The pipeline:
• Rejects records whose name is not a plausible candidate name
• Splits names captured together with their katakana reading
• Normalizes parties and proportional regions
• Detects duplicates by identifier, profile URL, name and region, content
• Keeps the most complete, most recently collected record of each group
• Recomputes statistics from the survivors

Without --write the dataset is written to stdout.`,
		Example: `  candimap reconcile -i pass-1.json -i pass-2.json -w candidates.json
  candimap reconcile pass-*.json --audit audit.yaml
  candimap reconcile pass-1.json --rules rules.yaml -o yaml
  candimap reconcile pass-*.json -w out.json --metrics-file /var/lib/node_exporter/candimap.prom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.Inputs = append(flags.Inputs, args...)
			return Execute(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringArrayVarP(&flags.Inputs, "input", "i", nil, "input file (repeatable)")
	cmd.Flags().StringVarP(&flags.Write, "write", "w", "", "write the dataset to this file (.json, .yaml)")
	cmd.Flags().StringVar(&flags.Audit, "audit", "", "write the audit trail to this YAML file")
	cmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	cmd.Flags().StringVar(&flags.RunID, "run-id", "", "run ID recorded in the dataset (default: random UUID)")

	return cmd
}
