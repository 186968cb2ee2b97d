package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"aid-eligibility-workers/internal/engine"
	"aid-eligibility-workers/internal/engine/navigator"
	"aid-eligibility-workers/internal/engine/rules"
)

// Script is an ordered list of answers to submit.
type Script struct {
	Answers []ScriptAnswer `yaml:"answers"`
}

type ScriptAnswer struct {
	Key   string      `yaml:"key"`
	Value interface{} `yaml:"value"`
}

// NewSimulateCommand creates the simulate subcommand.
func NewSimulateCommand(configPath *string) *cobra.Command {
	var (
		rulesPath  string
		scriptPath string
	)

	cmd := &cobra.Command{
		Use:   "simulate <questionnaire.yaml>",
		Short: "Replay an answer script and print the eligibility results",
		Long: `Start an interview, submit each answer of the script in order and print
the questions asked, how the interview ended and the categorised aid
programs. Answers left in the script once the interview has completed
are reported and ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, args[0], rulesPath, scriptPath, *configPath)
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "", "take rules from this file instead of the questionnaire file")
	cmd.Flags().StringVar(&scriptPath, "script", "", "answer script (required)")
	_ = cmd.MarkFlagRequired("script")

	return cmd
}

func readScript(path string) (*Script, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var s Script
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	return &s, nil
}

func runSimulate(cmd *cobra.Command, path, rulesPath, scriptPath, configPath string) error {
	e, _, err := buildEngine(path, rulesPath, configPath)
	if err != nil {
		return err
	}
	script, err := readScript(scriptPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	state := e.Start("simulation")

	for i, a := range script.Answers {
		if state.IsComplete() {
			fmt.Fprintf(out, "interview complete, %d answer(s) ignored\n", len(script.Answers)-i)
			break
		}
		q := e.CurrentQuestion(state)
		if q != nil {
			fmt.Fprintf(out, "[%3d%%] %s %s\n", state.Progress, q.ID, q.Text)
		}
		fmt.Fprintf(out, "       %s = %v\n", a.Key, a.Value)

		state, err = e.SubmitAnswer(state, a.Key, a.Value)
		if err != nil {
			return fmt.Errorf("answer %d (%s): %w", i+1, a.Key, err)
		}
	}

	printOutcome(out, e, state)
	return nil
}

func printOutcome(out io.Writer, e *engine.Engine, state *navigator.State) {
	fmt.Fprintf(out, "\nstatus: %s (%d%%)\n", state.Status, state.Progress)
	if state.TerminationReason != "" {
		fmt.Fprintf(out, "terminated: %s", state.TerminationReason)
		if state.TerminatedBy != "" {
			fmt.Fprintf(out, " by %s", state.TerminatedBy)
		}
		fmt.Fprintln(out)
	}
	if !state.IsComplete() {
		if q := e.CurrentQuestion(state); q != nil {
			fmt.Fprintf(out, "next question: %s %s\n", q.ID, q.Text)
		}
	}
	for _, w := range state.Warnings {
		fmt.Fprintf(out, "warning: %s at %s: %s\n", w.Code, w.QuestionID, w.Message)
	}

	results := e.AnalyzeEligibility(state.Answers)
	summary := rules.Summarize(results)
	fmt.Fprintf(out, "\nresults: %d eligible, %d maybe, %d ineligible\n", summary.Eligible, summary.Maybe, summary.Ineligible)
	for _, r := range results {
		fmt.Fprintf(out, "  %-10s %.1f %s %s\n", r.Category, r.Confidence, r.RuleID, r.Title)
	}
}
