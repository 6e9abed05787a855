// Package split provides the split command implementation.
package split

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/candimap/internal/appcontext"
	"github.com/agentstation/candimap/internal/cmd/output"
	"github.com/agentstation/candimap/internal/cmd/table"
	"github.com/agentstation/candimap/pkg/errors"
	"github.com/agentstation/candimap/pkg/splitter"
)

// NewCommand creates the split command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "split [raw...]",
		GroupID: "core",
		Short:   "Separate names captured together with their reading",
		Long: `Split separates a display name from the katakana reading it was captured
with, such as 板津ゆかイタヅユカ, and prints the rule that decided the
split. Strings no rule fits are printed unchanged with rule "none".
Without arguments, strings are read from stdin, one per line.`,
		Example: `  candimap split 板津ゆかイタヅユカ "山田 ヤマダタロウ"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raws := args
			if len(raws) == 0 {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					if line := strings.TrimSpace(scanner.Text()); line != "" {
						raws = append(raws, line)
					}
				}
				if err := scanner.Err(); err != nil {
					return errors.WrapIO("read", "stdin", err)
				}
			}

			splits := make([]table.RawSplit, len(raws))
			for i, raw := range raws {
				splits[i] = table.RawSplit{Raw: raw, Result: splitter.Match(raw)}
			}
			app.Logger().Debug().Int("strings", len(splits)).Msg("Split names")

			w := cmd.OutOrStdout()
			return output.Write(w, output.DetectFormat(app.OutputFormat(), w), splits, func(bool) table.Data {
				return table.SplitsToTableData(splits)
			})
		},
	}

	return cmd
}
