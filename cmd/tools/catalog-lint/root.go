package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aid-eligibility-workers/internal/common/config"
	"aid-eligibility-workers/internal/common/logger"
	"aid-eligibility-workers/internal/engine"
	"aid-eligibility-workers/internal/models"
	"aid-eligibility-workers/internal/store"
)

// Version is set at build time.
var Version = "dev"

// NewRootCommand creates the root command for catalog-lint.
func NewRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "catalog-lint",
		Short: "Check and simulate aid eligibility questionnaires",
		Long: `catalog-lint loads questionnaire YAML files the way the workers do.

lint reports conditions and branches that load but behave unexpectedly.
simulate walks an answer script through the interview and prints the
aid programs the answers qualify for.`,
		Version:      Version,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "worker config file providing the early-termination policy")

	cmd.AddCommand(NewLintCommand(&configPath))
	cmd.AddCommand(NewSimulateCommand(&configPath))

	return cmd
}

// buildEngine reads the questionnaire at path, optionally taking rules from a
// separate file, and builds an engine with the policy of the config file if one
// is given.
func buildEngine(path, rulesPath, configPath string) (*engine.Engine, *models.Questionnaire, error) {
	q, err := store.ReadQuestionnaire(path)
	if err != nil {
		return nil, nil, err
	}
	if rulesPath != "" {
		r, err := store.ReadQuestionnaire(rulesPath)
		if err != nil {
			return nil, nil, err
		}
		q.Rules = r.Rules
	}

	var engineCfg config.EngineConfig
	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, nil, err
		}
		engineCfg = cfg.Engine
	}

	e, err := engine.New(q.Questions, q.Rules, engine.OptionsFromConfig(engineCfg, logger.NewNoOpLogger())...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return e, q, nil
}
