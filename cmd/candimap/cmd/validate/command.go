// Package validate provides the validate command implementation.
package validate

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/candimap/internal/appcontext"
	"github.com/agentstation/candimap/internal/cmd/output"
	"github.com/agentstation/candimap/internal/cmd/table"
	"github.com/agentstation/candimap/pkg/errors"
	"github.com/agentstation/candimap/pkg/reconciler"
)

// NewCommand creates the validate command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:     "validate [name...]",
		GroupID: "core",
		Short:   "Check whether names are plausible candidate names",
		Long: `Validate applies the reconciliation name checks to each name and prints
the verdict with its reason code. Without arguments, names are read from
stdin, one per line.

Reason codes: empty, length, denylist, contains-digit, punctuation, latin,
shape, suspicious.`,
		Example: `  candimap validate 山田太郎 事務局
  jq -r '.[].name' pass-1.json | candimap validate --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				var err error
				if names, err = readLines(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			cfg, err := app.Rules()
			if err != nil {
				return err
			}
			r, err := reconciler.New(cfg, reconciler.WithLogger(app.Logger()))
			if err != nil {
				return err
			}

			verdicts := make([]table.NamedVerdict, len(names))
			rejected := 0
			for i, name := range names {
				verdicts[i] = table.NamedVerdict{Name: name, Verdict: r.ValidateName(name)}
				if !verdicts[i].Verdict.Accepted {
					rejected++
				}
			}

			w := cmd.OutOrStdout()
			format := output.DetectFormat(app.OutputFormat(), w)
			if err := output.Write(w, format, verdicts, func(bool) table.Data {
				return table.VerdictsToTableData(verdicts)
			}); err != nil {
				return err
			}

			if strict && rejected > 0 {
				return &errors.ValidationError{
					Field:   "name",
					Value:   rejected,
					Message: fmt.Sprintf("%d of %d names rejected", rejected, len(names)),
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when any name is rejected")

	return cmd
}

// readLines returns the non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapIO("read", "stdin", err)
	}
	return lines, nil
}
