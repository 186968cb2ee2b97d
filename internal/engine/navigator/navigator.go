// Package navigator is the question state machine: it decides which question to show
// after each answer and when the interview is complete.
package navigator

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"aid-eligibility-workers/internal/common/errors"
	"aid-eligibility-workers/internal/common/logger"
	"aid-eligibility-workers/internal/engine/catalog"
	"aid-eligibility-workers/internal/engine/expression"
	"aid-eligibility-workers/internal/models"
)

const (
	// EndSentinel as a branch target completes the interview (case-insensitive).
	EndSentinel = "END"
	// DefaultBranch is followed when no entry matches the value, and when a question is passed through.
	DefaultBranch = "*"

	maxProgressInFlight = 90
)

// TransitionHook observes the outcome of every Submit.
type TransitionHook func(outcome string)

// Navigator is stateless; all session data lives in State.
type Navigator struct {
	catalog      *catalog.Catalog
	eval         *expression.Evaluator
	policy       *Policy
	logger       logger.Logger
	onTransition TransitionHook
}

type Option func(*Navigator)

func WithPolicy(p *Policy) Option {
	return func(n *Navigator) { n.policy = p }
}

func WithLogger(log logger.Logger) Option {
	return func(n *Navigator) {
		if log != nil {
			n.logger = log
		}
	}
}

func WithTransitionHook(hook TransitionHook) Option {
	return func(n *Navigator) { n.onTransition = hook }
}

func New(c *catalog.Catalog, e *expression.Evaluator, opts ...Option) *Navigator {
	n := &Navigator{
		catalog: c,
		eval:    e,
		policy:  DefaultPolicy(),
		logger:  logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Navigator) Policy() *Policy {
	return n.policy
}

// First returns the first question shown for an empty answer set, or nil.
func (n *Navigator) First() *catalog.Question {
	empty := models.AnswerSet{}
	for _, q := range n.catalog.Questions() {
		if catalog.ShouldShow(n.eval, q, empty) {
			return q
		}
	}
	return nil
}

// Start returns the initial state of a new session.
func (n *Navigator) Start(sessionID string) *State {
	state := &State{
		SessionID: sessionID,
		Answers:   models.AnswerSet{},
		Visited:   []string{},
	}
	if first := n.First(); first != nil {
		n.show(state, first)
	} else {
		n.complete(state, ReasonCatalogExhausted)
	}
	return state
}

// Submit records value for answerKey and moves to the next question. The input
// state is not modified.
func (n *Navigator) Submit(state *State, answerKey string, value interface{}) (*State, error) {
	if state.IsComplete() {
		return nil, errors.NewSessionCompleteError(state.SessionID)
	}
	q, ok := n.catalog.ByKey(answerKey)
	if !ok {
		return nil, errors.NewAnswerKeyUnknownError(answerKey)
	}
	if err := catalog.ValidateValue(q, value); err != nil {
		return nil, err
	}

	next := state.Clone()
	next.Answers[answerKey] = value

	// Answering a question on the path rewinds the path to it.
	if i := next.visitedIndex(q.ID); i >= 0 {
		next.Visited = next.Visited[:i+1]
	} else {
		next.Visited = append(next.Visited, q.ID)
	}

	if pred, matched := n.policy.Match(n.eval, next.Answers); matched {
		next.TerminatedBy = pred.Name
		n.complete(next, ReasonEarlyTermination)
		n.logger.Info("Interview terminated early", map[string]interface{}{
			"sessionId": next.SessionID,
			"predicate": pred.Name,
		})
		n.transition(ReasonEarlyTermination)
		return next, nil
	}

	outcome := n.advance(next, q, cast.ToString(value), true)
	n.transition(outcome)
	return next, nil
}

// advance follows branches from origin, passing through hidden or already visited
// questions, with order fallback. An unanswered origin only follows its default
// branch. It returns the transition outcome.
func (n *Navigator) advance(state *State, origin *catalog.Question, value string, answered bool) string {
	current := origin

	for steps := 0; ; steps++ {
		if steps > n.catalog.Len() {
			n.warn(state, Warning{
				Code:       WarningBranchCycle,
				QuestionID: current.ID,
				Message:    fmt.Sprintf("no question to show after passing through %d questions", steps),
			})
			n.complete(state, ReasonBranchCycle)
			return ReasonBranchCycle
		}

		target, ok := branchTarget(current, value, answered)
		if !ok {
			if q := n.nextByOrder(state, current); q != nil {
				n.show(state, q)
				return OutcomeNext
			}
			n.complete(state, ReasonCatalogExhausted)
			return ReasonCatalogExhausted
		}

		if strings.EqualFold(target, EndSentinel) {
			n.complete(state, ReasonBranchEnd)
			return ReasonBranchEnd
		}

		q, ok := n.catalog.ByID(target)
		if !ok {
			n.warn(state, Warning{
				Code:       WarningDanglingBranch,
				QuestionID: current.ID,
				Target:     target,
				Message:    fmt.Sprintf("branch of %s points to unknown question %s", current.ID, target),
			})
			n.complete(state, ReasonDanglingBranch)
			return ReasonDanglingBranch
		}

		if state.visitedIndex(q.ID) < 0 && catalog.ShouldShow(n.eval, q, state.Answers) {
			n.show(state, q)
			return OutcomeNext
		}

		current = q
		answered = false
	}
}

// Pending walks the path answers would take from the first question, following
// branches and END the way Submit does, and returns the answer keys of the questions
// on that path that have no answer yet. An unanswered question is passed through as
// if hidden. Early termination is not applied.
func (n *Navigator) Pending(answers models.AnswerSet) []string {
	pending := []string{}

	quiet := *n
	quiet.logger = logger.NewNoOpLogger()

	state := &State{Answers: answers, Visited: []string{}}
	first := quiet.First()
	if first == nil {
		return pending
	}
	quiet.show(state, first)

	for !state.IsComplete() {
		q, ok := quiet.catalog.ByID(state.CurrentQuestionID)
		if !ok {
			break
		}
		value, answered := answers[q.AnswerKey]
		answered = answered && value != nil
		if !answered {
			pending = append(pending, q.AnswerKey)
		}
		quiet.advance(state, q, cast.ToString(value), answered)
	}
	return pending
}

func branchTarget(q *catalog.Question, value string, answered bool) (string, bool) {
	if len(q.BranchMap) == 0 {
		return "", false
	}
	if answered {
		if target, ok := q.BranchMap[value]; ok && strings.TrimSpace(target) != "" {
			return strings.TrimSpace(target), true
		}
	}
	if target, ok := q.BranchMap[DefaultBranch]; ok && strings.TrimSpace(target) != "" {
		return strings.TrimSpace(target), true
	}
	return "", false
}

// nextByOrder returns the first question after from, in catalog order, that is shown
// and not yet on the path.
func (n *Navigator) nextByOrder(state *State, from *catalog.Question) *catalog.Question {
	for i := n.catalog.Index(from.ID) + 1; i < n.catalog.Len(); i++ {
		q := n.catalog.At(i)
		if state.visitedIndex(q.ID) < 0 && catalog.ShouldShow(n.eval, q, state.Answers) {
			return q
		}
	}
	return nil
}

// Previous returns the state positioned on the nearest earlier question of the path
// that is still shown. Answers are kept. If there is none, state is returned as a copy.
func (n *Navigator) Previous(state *State) *State {
	prev := state.Clone()

	from := len(prev.Visited)
	if !prev.IsComplete() {
		if i := prev.visitedIndex(prev.CurrentQuestionID); i >= 0 {
			from = i
		}
	}

	for j := from - 1; j >= 0; j-- {
		q, ok := n.catalog.ByID(prev.Visited[j])
		if !ok || !catalog.ShouldShow(n.eval, q, prev.Answers) {
			continue
		}
		prev.Visited = prev.Visited[:j]
		n.show(prev, q)
		return prev
	}

	// Path exhausted: fall back to catalog order before the current question.
	start := n.catalog.Len()
	if i := n.catalog.Index(prev.CurrentQuestionID); i >= 0 {
		start = i
	}
	for i := start - 1; i >= 0; i-- {
		q := n.catalog.At(i)
		if catalog.ShouldShow(n.eval, q, prev.Answers) {
			prev.Visited = prev.Visited[:0]
			n.show(prev, q)
			return prev
		}
	}
	return prev
}

func (n *Navigator) show(state *State, q *catalog.Question) {
	state.CurrentQuestionID = q.ID
	if state.visitedIndex(q.ID) < 0 {
		state.Visited = append(state.Visited, q.ID)
	}
	state.Status = StatusAwaitingAnswer
	state.Terminal = false
	state.TerminationReason = ""
	state.TerminatedBy = ""
	state.Progress = n.progress(state)
}

func (n *Navigator) complete(state *State, reason string) {
	state.CurrentQuestionID = ""
	state.Status = StatusComplete
	state.Terminal = true
	state.TerminationReason = reason
	state.Progress = 100
}

func (n *Navigator) progress(state *State) int {
	total := n.catalog.Len()
	if total == 0 {
		return 0
	}
	p := 100 * len(state.Visited) / total
	if p > maxProgressInFlight {
		p = maxProgressInFlight
	}
	return p
}

func (n *Navigator) warn(state *State, w Warning) {
	state.Warnings = append(state.Warnings, w)
	n.logger.Warn("Navigation warning, completing interview", map[string]interface{}{
		"sessionId":  state.SessionID,
		"code":       w.Code,
		"questionId": w.QuestionID,
		"target":     w.Target,
	})
}

func (n *Navigator) transition(outcome string) {
	if n.onTransition != nil {
		n.onTransition(outcome)
	}
}
