package engine

import (
	"aid-eligibility-workers/internal/common/config"
	"aid-eligibility-workers/internal/common/logger"
	"aid-eligibility-workers/internal/engine/navigator"
)

// PolicyFromConfig returns the configured early-termination policy, or the default
// policy when none is configured.
func PolicyFromConfig(cfg config.EngineConfig) *navigator.Policy {
	if len(cfg.EarlyTermination) == 0 {
		return navigator.DefaultPolicy()
	}
	preds := make([]navigator.Predicate, 0, len(cfg.EarlyTermination))
	for _, p := range cfg.EarlyTermination {
		preds = append(preds, navigator.Predicate{Name: p.Name, Condition: p.Condition})
	}
	return navigator.NewPolicy(preds...)
}

// OptionsFromConfig returns the options shared by every engine the service builds.
func OptionsFromConfig(cfg config.EngineConfig, log logger.Logger, extra ...Option) []Option {
	opts := []Option{
		WithLogger(log),
		WithPolicy(PolicyFromConfig(cfg)),
	}
	return append(opts, extra...)
}
