package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"aid-eligibility-workers/internal/engine/catalog"
	"aid-eligibility-workers/internal/engine/expression"
	"aid-eligibility-workers/internal/engine/navigator"
	"aid-eligibility-workers/internal/engine/rules"
)

// LintIssue is a questionnaire problem that does not prevent loading but makes a
// condition or branch behave differently from what its author likely meant.
type LintIssue struct {
	Source  string `json:"source"` // question, rule or policy
	ID      string `json:"id"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i LintIssue) String() string {
	return fmt.Sprintf("%s %s [%s]: %s", i.Source, i.ID, i.Field, i.Message)
}

type linter struct {
	catalog *catalog.Catalog
	issues  []LintIssue
}

func lint(c *catalog.Catalog, rs []rules.Rule, policy *navigator.Policy) []LintIssue {
	l := &linter{catalog: c}

	for _, q := range c.Questions() {
		l.condition("question", q.ID, "display_condition", q.DisplayCondition)
		l.branches(q)
	}
	for _, r := range rs {
		l.condition("rule", r.ID, "condition", r.Condition)
	}
	if policy != nil {
		for _, p := range policy.Predicates() {
			l.condition("policy", p.Name, "condition", p.Condition)
		}
	}
	return l.issues
}

func (l *linter) add(source, id, field, format string, args ...interface{}) {
	l.issues = append(l.issues, LintIssue{
		Source:  source,
		ID:      id,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

func (l *linter) condition(source, id, field, condition string) {
	if strings.TrimSpace(condition) == "" {
		return
	}

	node, err := expression.Parse(condition)
	if err != nil {
		l.add(source, id, field, "syntax error: %v", err)
		return
	}

	expression.Walk(node, func(n expression.Node) {
		switch t := n.(type) {
		case expression.Invalid:
			l.add(source, id, field, "unrecognised clause %q is never satisfied", t.Text)
		case expression.Compare:
			q, ok := l.question(source, id, field, t.Key)
			if !ok {
				return
			}
			if t.Op.Numeric() {
				if q.AnswerType != catalog.AnswerNumber {
					l.add(source, id, field, "numeric comparison %q on %s question %s", t.String(), q.AnswerType, q.ID)
				}
				if _, err := cast.ToFloat64E(t.Value); err != nil {
					l.add(source, id, field, "%q compares against non-numeric %q and is never satisfied", t.String(), t.Value)
				}
				return
			}
			l.option(source, id, field, q, t.Value)
		case expression.In:
			q, ok := l.question(source, id, field, t.Key)
			if !ok {
				return
			}
			for _, v := range t.Values {
				l.option(source, id, field, q, v)
			}
		}
	})
}

func (l *linter) question(source, id, field, key string) (*catalog.Question, bool) {
	q, ok := l.catalog.ByKey(key)
	if !ok {
		l.add(source, id, field, "unknown answer key %q", key)
	}
	return q, ok
}

func (l *linter) option(source, id, field string, q *catalog.Question, value string) {
	if q.AnswerType == catalog.AnswerNumber {
		return
	}
	if _, ok := q.Options[value]; !ok {
		l.add(source, id, field, "%q is not an option of %s (%s)", value, q.AnswerKey, strings.Join(q.OptionCodes(), ","))
	}
}

func (l *linter) branches(q *catalog.Question) {
	values := make([]string, 0, len(q.BranchMap))
	for v := range q.BranchMap {
		values = append(values, v)
	}
	sort.Strings(values)

	for _, v := range values {
		target := strings.TrimSpace(q.BranchMap[v])
		if v != navigator.DefaultBranch && q.AnswerType != catalog.AnswerNumber {
			if _, ok := q.Options[v]; !ok {
				l.add("question", q.ID, "branch_map", "branch value %q is not an option", v)
			}
		}
		if strings.EqualFold(target, navigator.EndSentinel) {
			continue
		}
		if _, ok := l.catalog.ByID(target); !ok {
			l.add("question", q.ID, "branch_map", "branch %q points to unknown question %q", v, target)
		}
	}
}
