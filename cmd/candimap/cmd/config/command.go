// Package config provides the config command implementation.
package config

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/agentstation/candimap/internal/appcontext"
	"github.com/agentstation/candimap/internal/cmd/output"
	"github.com/agentstation/candimap/internal/cmd/table"
	"github.com/agentstation/candimap/pkg/errors"
	"github.com/agentstation/candimap/pkg/rules"
)

// View is the effective rule set as printed by the config command.
type View struct {
	Source   string          `json:"source" yaml:"source"`
	Rules    rules.File      `json:"rules" yaml:"rules"`
	Warnings []rules.Warning `json:"warnings" yaml:"warnings"`
}

// NewCommand creates the config command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		defaults bool
		check    bool
	)

	cmd := &cobra.Command{
		Use:     "config",
		GroupID: "inspect",
		Short:   "Show the effective reconciliation rules",
		Long: `Config prints the rules a reconcile run would use: the embedded
defaults overlaid with the rules file given by --rules or the config file.
Values that could not be used are listed as warnings and replaced by their
defaults.`,
		Example: `  candimap config
  candimap config --rules rules.yaml --check
  candimap config --defaults -o yaml > rules.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := Effective(app, defaults)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if err := write(w, output.DetectFormat(app.OutputFormat(), w), view); err != nil {
				return err
			}

			if check && len(view.Warnings) > 0 {
				return &errors.ValidationError{
					Field:   "rules",
					Value:   view.Source,
					Message: fmt.Sprintf("%d rule values could not be used", len(view.Warnings)),
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "show the embedded defaults and ignore any rules file")
	cmd.Flags().BoolVar(&check, "check", false, "exit with an error when any rule value produced a warning")

	return cmd
}

// Effective resolves the rules the application would reconcile with.
func Effective(app appcontext.Interface, defaults bool) (*View, error) {
	cfg := rules.Default()
	source := "defaults"
	if !defaults {
		var err error
		if cfg, err = app.Rules(); err != nil {
			return nil, err
		}
		if path := app.RulesFile(); path != "" {
			source = path
		}
	}
	return &View{
		Source:   source,
		Rules:    cfg.File(),
		Warnings: cfg.Warnings(),
	}, nil
}

func write(w io.Writer, format output.Format, view *View) error {
	if !format.IsTable() {
		return output.NewFormatter(format).Format(w, view)
	}

	data, err := yaml.MarshalWithOptions(view.Rules, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return errors.WrapParse("yaml", view.Source, err)
	}
	if _, err := fmt.Fprintf(w, "# source: %s\n%s", view.Source, data); err != nil {
		return err
	}
	if len(view.Warnings) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n%d warnings:\n", len(view.Warnings)); err != nil {
		return err
	}
	return output.Write(w, format, nil, func(bool) table.Data {
		return table.WarningsToTableData(view.Warnings)
	})
}
