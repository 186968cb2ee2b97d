package navigator

import (
	"strings"

	"aid-eligibility-workers/internal/engine/expression"
	"aid-eligibility-workers/internal/models"
)

// Predicate is one early-termination shortcut.
type Predicate struct {
	Name      string `json:"name"`
	Condition string `json:"condition"`
}

// Policy is an ordered list of predicates. The first match ends the interview.
type Policy struct {
	predicates []Predicate
}

func NewPolicy(predicates ...Predicate) *Policy {
	return &Policy{predicates: append([]Predicate{}, predicates...)}
}

// DefaultPolicy ends the interview for non-residents, minors and people living in an institution.
func DefaultPolicy() *Policy {
	return NewPolicy(
		Predicate{Name: "not_resident", Condition: "q_residence_lux = opt_non"},
		Predicate{Name: "minor", Condition: "q_age < 18"},
		Predicate{Name: "institution", Condition: "q_institution = opt_oui"},
	)
}

func (p *Policy) Predicates() []Predicate {
	if p == nil {
		return nil
	}
	return append([]Predicate{}, p.predicates...)
}

// Match returns the first predicate satisfied by answers.
func (p *Policy) Match(e *expression.Evaluator, answers models.AnswerSet) (Predicate, bool) {
	if p == nil {
		return Predicate{}, false
	}
	for _, pred := range p.predicates {
		// A blank condition would always match.
		if strings.TrimSpace(pred.Condition) == "" {
			continue
		}
		if e.Evaluate(pred.Condition, answers) {
			return pred, true
		}
	}
	return Predicate{}, false
}
