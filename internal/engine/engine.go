// Package engine wires the expression evaluator, the question catalog, the navigator
// and the rule categorizer into one immutable value that any number of interview
// sessions can share.
package engine

import (
	"sort"

	"github.com/google/uuid"

	"aid-eligibility-workers/internal/common/errors"
	"aid-eligibility-workers/internal/common/logger"
	"aid-eligibility-workers/internal/engine/catalog"
	"aid-eligibility-workers/internal/engine/expression"
	"aid-eligibility-workers/internal/engine/navigator"
	"aid-eligibility-workers/internal/engine/rules"
	"aid-eligibility-workers/internal/models"
)

type Engine struct {
	catalog      *catalog.Catalog
	rules        []rules.Rule
	eval         *expression.Evaluator
	nav          *navigator.Navigator
	logger       logger.Logger
	newSessionID func() string
	lintIssues   []LintIssue
}

type options struct {
	logger       logger.Logger
	policy       *navigator.Policy
	onFailure    expression.FailureHook
	onTransition navigator.TransitionHook
	newSessionID func() string
}

type Option func(*options)

func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.logger = log
		}
	}
}

// WithPolicy replaces the default early-termination policy.
func WithPolicy(p *navigator.Policy) Option {
	return func(o *options) { o.policy = p }
}

func WithEvaluationFailureHook(hook expression.FailureHook) Option {
	return func(o *options) { o.onFailure = hook }
}

func WithTransitionHook(hook navigator.TransitionHook) Option {
	return func(o *options) { o.onTransition = hook }
}

func WithSessionIDGenerator(fn func() string) Option {
	return func(o *options) { o.newSessionID = fn }
}

// New validates the records and builds an engine. Only catalog errors are returned;
// lint findings are logged.
func New(questions []models.QuestionRecord, ruleRecords []models.RuleRecord, opts ...Option) (*Engine, error) {
	o := options{
		logger:       logger.NewNoOpLogger(),
		policy:       navigator.DefaultPolicy(),
		newSessionID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}

	c, err := catalog.Load(questions)
	if err != nil {
		return nil, err
	}
	rs, err := rules.Load(ruleRecords)
	if err != nil {
		return nil, err
	}

	eval := expression.New(
		expression.WithLogger(o.logger),
		expression.WithFailureHook(o.onFailure),
	)

	e := &Engine{
		catalog: c,
		rules:   rs,
		eval:    eval,
		nav: navigator.New(c, eval,
			navigator.WithPolicy(o.policy),
			navigator.WithLogger(o.logger),
			navigator.WithTransitionHook(o.onTransition),
		),
		logger:       o.logger,
		newSessionID: o.newSessionID,
	}

	e.lintIssues = lint(c, rs, o.policy)
	for _, issue := range e.lintIssues {
		e.logger.Warn("Questionnaire lint issue", map[string]interface{}{
			"source":  issue.Source,
			"id":      issue.ID,
			"field":   issue.Field,
			"message": issue.Message,
		})
	}

	e.logger.Info("Engine initialized", map[string]interface{}{
		"questions":  c.Len(),
		"rules":      len(rs),
		"lintIssues": len(e.lintIssues),
	})
	return e, nil
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

func (e *Engine) Rules() []rules.Rule {
	return e.rules
}

// FirstQuestion returns the first question shown to a new session, or nil.
func (e *Engine) FirstQuestion() *catalog.Question {
	return e.nav.First()
}

// Start opens a session. An empty id is replaced by a generated one.
func (e *Engine) Start(sessionID string) *navigator.State {
	if sessionID == "" {
		sessionID = e.newSessionID()
	}
	return e.nav.Start(sessionID)
}

// Restart discards any previous state and opens a new session.
func (e *Engine) Restart() *navigator.State {
	return e.Start("")
}

func (e *Engine) SubmitAnswer(state *navigator.State, answerKey string, value interface{}) (*navigator.State, error) {
	return e.nav.Submit(state, answerKey, value)
}

func (e *Engine) Previous(state *navigator.State) *navigator.State {
	return e.nav.Previous(state)
}

// CurrentQuestion returns the question the state is waiting on, or nil.
func (e *Engine) CurrentQuestion(state *navigator.State) *catalog.Question {
	if state == nil || state.CurrentQuestionID == "" {
		return nil
	}
	q, _ := e.catalog.ByID(state.CurrentQuestionID)
	return q
}

// EarlyTermination returns the early-termination predicate matched by answers.
func (e *Engine) EarlyTermination(answers models.AnswerSet) (navigator.Predicate, bool) {
	return e.nav.Policy().Match(e.eval, answers)
}

// CanCompleteNow reports whether answers are enough to categorize: an
// early-termination predicate matches, or every question on the navigated path
// has an answer.
func (e *Engine) CanCompleteNow(answers models.AnswerSet) bool {
	if _, matched := e.EarlyTermination(answers); matched {
		return true
	}
	return len(e.missingKeys(answers)) == 0
}

func (e *Engine) AnalyzeEligibility(answers models.AnswerSet) []rules.Result {
	return rules.Categorize(e.rules, answers, e.eval)
}

// InvalidAnswer is an answer that does not fit its question.
type InvalidAnswer struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

type Validation struct {
	Valid        bool            `json:"valid"`
	MissingKeys  []string        `json:"missingKeys"`
	Invalid      []InvalidAnswer `json:"invalid,omitempty"`
	UnknownKeys  []string        `json:"unknownKeys,omitempty"`
	TerminatedBy string          `json:"terminatedBy,omitempty"`
}

// ValidateAnswers lists questions on the navigated path without an answer (none once an
// early-termination predicate matches) and answers that fail their answer type.
// Keys that match no question are reported but do not invalidate the set.
func (e *Engine) ValidateAnswers(answers models.AnswerSet) Validation {
	v := Validation{MissingKeys: []string{}}

	if pred, matched := e.EarlyTermination(answers); matched {
		v.TerminatedBy = pred.Name
	} else {
		v.MissingKeys = e.missingKeys(answers)
	}

	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		q, ok := e.catalog.ByKey(k)
		if !ok {
			v.UnknownKeys = append(v.UnknownKeys, k)
			continue
		}
		if err := catalog.ValidateValue(q, answers[k]); err != nil {
			reason := err.Error()
			if se, ok := errors.AsStandardError(err); ok {
				reason = se.Details
			}
			v.Invalid = append(v.Invalid, InvalidAnswer{Key: k, Reason: reason})
		}
	}

	v.Valid = len(v.MissingKeys) == 0 && len(v.Invalid) == 0
	return v
}

// missingKeys lists the unanswered questions on the path the answers navigate.
// Questions a branch skips, or that come after an END branch, are not missing.
func (e *Engine) missingKeys(answers models.AnswerSet) []string {
	return e.nav.Pending(answers)
}

// Lint returns the problems found in the questionnaire when the engine was built.
func (e *Engine) Lint() []LintIssue {
	return append([]LintIssue{}, e.lintIssues...)
}
