// Package expression parses and evaluates the boolean condition language used by
// question display conditions, early-termination predicates and eligibility rules.
//
//	q_residence_lux = opt_oui AND (q_age >= 18 OR q_statut IN {opt_A,opt_B})
//
// Evaluation is total: a condition that cannot be understood is not satisfied.
package expression

import (
	"fmt"
	"strings"
	"sync"

	"aid-eligibility-workers/internal/common/logger"
	"aid-eligibility-workers/internal/models"
)

// FailureCode is logged with every condition that could not be fully understood.
const FailureCode = "EXPRESSION_EVALUATION_FAILED"

// FailureHook is called each time a malformed condition is evaluated.
type FailureHook func(condition string, err error)

// Evaluator evaluates conditions, caching one AST per distinct condition string.
// It is safe for concurrent use.
type Evaluator struct {
	cache     sync.Map // condition -> *compiled
	logger    logger.Logger
	onFailure FailureHook
}

type Option func(*Evaluator)

func WithLogger(log logger.Logger) Option {
	return func(e *Evaluator) {
		if log != nil {
			e.logger = log
		}
	}
}

func WithFailureHook(hook FailureHook) Option {
	return func(e *Evaluator) {
		e.onFailure = hook
	}
}

type compiled struct {
	node Node  // nil when the condition is structurally broken
	err  error // parse error, or the first unrecognised clause
}

func New(opts ...Option) *Evaluator {
	e := &Evaluator{logger: logger.NewNoOpLogger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEvaluator = New()

// Evaluate evaluates condition against answers with a shared, silent evaluator.
func Evaluate(condition string, answers models.AnswerSet) bool {
	return defaultEvaluator.Evaluate(condition, answers)
}

// Evaluate reports whether condition holds for answers. An Unknown result is
// false. It never panics.
func (e *Evaluator) Evaluate(condition string, answers models.AnswerSet) (result bool) {
	if strings.TrimSpace(condition) == "" {
		return true
	}

	defer func() {
		if r := recover(); r != nil {
			e.report(condition, fmt.Errorf("panic during evaluation: %v", r))
			result = false
		}
	}()

	c := e.compile(condition)
	if c.err != nil {
		e.report(condition, c.err)
	}
	if c.node == nil {
		return false
	}
	return c.node.Eval(answers) == True
}

// Check returns the problem Evaluate would report for condition, if any.
func (e *Evaluator) Check(condition string) error {
	if strings.TrimSpace(condition) == "" {
		return nil
	}
	return e.compile(condition).err
}

func (e *Evaluator) compile(condition string) *compiled {
	if c, ok := e.cache.Load(condition); ok {
		return c.(*compiled)
	}

	node, err := Parse(condition)
	if err == nil {
		Walk(node, func(n Node) {
			if inv, ok := n.(Invalid); ok && err == nil {
				err = fmt.Errorf("unrecognised clause %q", inv.Text)
			}
		})
	}

	c, _ := e.cache.LoadOrStore(condition, &compiled{node: node, err: err})
	return c.(*compiled)
}

func (e *Evaluator) report(condition string, err error) {
	e.logger.Warn("Condition could not be evaluated, treating as false", map[string]interface{}{
		"errorCode": FailureCode,
		"condition": condition,
		"error":     err,
	})
	if e.onFailure != nil {
		e.onFailure(condition, err)
	}
}
