package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLintCommand creates the lint subcommand.
func NewLintCommand(configPath *string) *cobra.Command {
	var (
		rulesPath string
		warnOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "lint <questionnaire.yaml>...",
		Short: "Report suspicious conditions and branches",
		Long: `Load each questionnaire file and report conditions that reference unknown
answer keys or options, unrecognised clauses, numeric comparisons on
non-numeric questions and branches to unknown questions.

The command fails when any issue is found unless --warn-only is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args, rulesPath, *configPath, warnOnly)
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "", "take rules from this file instead of the questionnaire file")
	cmd.Flags().BoolVar(&warnOnly, "warn-only", false, "print issues without failing")

	return cmd
}

func runLint(cmd *cobra.Command, paths []string, rulesPath, configPath string, warnOnly bool) error {
	out := cmd.OutOrStdout()
	total := 0

	for _, path := range paths {
		e, q, err := buildEngine(path, rulesPath, configPath)
		if err != nil {
			return err
		}

		issues := e.Lint()
		total += len(issues)
		fmt.Fprintf(out, "%s: %d questions, %d rules, %d issues\n", path, len(q.Questions), len(q.Rules), len(issues))
		for _, issue := range issues {
			fmt.Fprintf(out, "  %s\n", issue)
		}
	}

	if total > 0 && !warnOnly {
		return fmt.Errorf("%d issue(s) found", total)
	}
	return nil
}
