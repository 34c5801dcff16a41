// Package validate evaluates canonical reports through four independent
// rule tiers: blocking errors, logical warnings, consistency warnings, and
// anomaly detection against a prior period. All tiers always run; the
// verdict is derived from the collected issue list alone.
package validate

import (
	"github.com/azstat/report-cli/internal/config"
	"github.com/azstat/report-cli/internal/model"
)

// ruleFunc is one rule tier. Tiers receive the report, the optional
// previous-period report, and the tolerance configuration, and return
// whatever issues they find. Tiers never fail.
type ruleFunc func(report, previous *model.Report, cfg config.ValidationConfig) []model.Issue

// Engine runs the rule tiers over a report. Stateless per invocation and
// safe for concurrent use.
type Engine struct {
	cfg   config.ValidationConfig
	tiers []ruleFunc
}

// New builds an Engine with the given tolerance configuration.
func New(cfg config.ValidationConfig) *Engine {
	return &Engine{
		cfg: cfg,
		tiers: []ruleFunc{
			blockingErrors,
			logicalWarnings,
			consistencyWarnings,
			anomalies,
		},
	}
}

// Validate evaluates the report and derives the result. The previous
// report, when non-nil, serves only as the anomaly-tier baseline; passing
// nil disables that tier and nothing else.
func (e *Engine) Validate(report *model.Report, previous *model.Report) model.ValidationResult {
	var issues []model.Issue
	for _, tier := range e.tiers {
		issues = append(issues, tier(report, previous, e.cfg)...)
	}
	return model.NewValidationResult(issues)
}
