package expression

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aid-eligibility-workers/internal/common/logger"
	"aid-eligibility-workers/internal/models"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		answers   models.AnswerSet
		expected  bool
	}{
		{"empty condition", "", models.AnswerSet{}, true},
		{"whitespace condition", "   ", nil, true},
		{"equality match", "k = v", models.AnswerSet{"k": "v"}, true},
		{"equality mismatch", "k = v", models.AnswerSet{"k": "other"}, false},
		{"double equals", "k == v", models.AnswerSet{"k": "v"}, true},
		{"equality missing key", "k = v", models.AnswerSet{}, false},
		{"inequality match", "k != v", models.AnswerSet{"k": "v"}, false},
		{"inequality mismatch", "k != v", models.AnswerSet{"k": "w"}, true},
		{"inequality missing key", "k != v", models.AnswerSet{}, true},
		{"equality renders numbers", "q_age = 25", models.AnswerSet{"q_age": 25.0}, true},
		{"equality does not coerce", "q_age = 25", models.AnswerSet{"q_age": "25.0"}, false},
		{"quoted literal", `q_city = "Esch sur Alzette"`, models.AnswerSet{"q_city": "Esch sur Alzette"}, true},

		{"numeric ge boundary", "age >= 18", models.AnswerSet{"age": 18}, true},
		{"numeric ge below", "age >= 18", models.AnswerSet{"age": 17}, false},
		{"numeric not a number", "age >= 18", models.AnswerSet{"age": "not-a-number"}, false},
		{"numeric string answer", "age >= 18", models.AnswerSet{"age": "21"}, true},
		{"numeric float", "q_revenus_mensuels <= 3000", models.AnswerSet{"q_revenus_mensuels": 2999.5}, true},
		{"numeric gt", "x > 1.5", models.AnswerSet{"x": 2}, true},
		{"numeric lt", "x < -1", models.AnswerSet{"x": -2}, true},
		{"numeric missing key", "age < 18", models.AnswerSet{}, false},
		{"numeric bool answer", "age < 18", models.AnswerSet{"age": true}, false},
		{"numeric literal not a number", "age < abc", models.AnswerSet{"age": 4}, false},

		{"and both", "a = x AND b = y", models.AnswerSet{"a": "x", "b": "y"}, true},
		{"and first mismatch", "a = x AND b = y", models.AnswerSet{"a": "z", "b": "y"}, false},
		{"and second mismatch", "a = x AND b = y", models.AnswerSet{"a": "x", "b": "z"}, false},
		{"or one", "a = x OR b = y", models.AnswerSet{"a": "x", "b": "z"}, true},
		{"or none", "a = x OR b = y", models.AnswerSet{"a": "w", "b": "z"}, false},
		{"and binds tighter than or", "a = 1 OR b = 1 AND c = 1", models.AnswerSet{"a": "1", "b": "0", "c": "0"}, true},
		{"parentheses override", "(a = 1 OR b = 1) AND c = 1", models.AnswerSet{"a": "1", "b": "0", "c": "0"}, false},
		{"nested parentheses", "((a = 1) AND (b = 1 OR (c = 1)))", models.AnswerSet{"a": "1", "c": "1"}, true},

		{"not keyword", "NOT k = v", models.AnswerSet{"k": "v"}, false},
		{"bang prefix", "!k = v", models.AnswerSet{"k": "w"}, true},
		{"not group", "NOT (a = x OR b = y)", models.AnswerSet{"a": "w", "b": "z"}, true},
		{"not binds to one clause", "NOT a = x AND b = y", models.AnswerSet{"a": "w", "b": "y"}, true},
		{"double negation", "NOT NOT a = x", models.AnswerSet{"a": "x"}, true},

		{"in braces match", "k IN {opt_A,opt_B}", models.AnswerSet{"k": "opt_B"}, true},
		{"in braces miss", "k IN {opt_A,opt_B}", models.AnswerSet{"k": "opt_C"}, false},
		{"in spaced braces", "k IN { opt_A , opt_B }", models.AnswerSet{"k": "opt_A"}, true},
		{"in without braces", "k IN opt_A,opt_B", models.AnswerSet{"k": "opt_B"}, true},
		{"in missing key", "k IN {opt_A}", models.AnswerSet{}, false},
		{"in empty list", "k IN {}", models.AnswerSet{"k": ""}, false},

		{"literal true", "true", nil, true},
		{"literal false", "FALSE", nil, false},

		{"unknown clause", "just words here", models.AnswerSet{"just": "words"}, false},
		{"unknown clause beside valid or", "a = x OR gibberish", models.AnswerSet{"a": "x"}, true},
		{"unknown clause beside false or", "a = y OR gibberish", models.AnswerSet{"a": "x"}, false},
		{"negated unknown clause", "NOT total garbage", models.AnswerSet{}, false},
		{"bang unknown clause", "!gibberish", models.AnswerSet{}, false},
		{"and with negated unknown clause", "a = x AND NOT gibberish", models.AnswerSet{"a": "x"}, false},
		{"false and unknown clause negated", "NOT (a = y AND gibberish)", models.AnswerSet{"a": "x"}, true},
		{"negated in without list", "a = x AND NOT q_statut IN opt_A opt_B", models.AnswerSet{"a": "x", "q_statut": "opt_C"}, false},
		{"unbalanced open", "(a = x", models.AnswerSet{"a": "x"}, false},
		{"unbalanced close", "a = x)", models.AnswerSet{"a": "x"}, false},
		{"dangling and", "a = x AND", models.AnswerSet{"a": "x"}, false},
		{"leading or", "OR a = x", models.AnswerSet{"a": "x"}, false},
		{"empty group", "()", nil, false},
		{"unterminated quote", `a = "x`, models.AnswerSet{"a": "x"}, false},
		{"lowercase keyword is not an operator", "a = x and b = y", models.AnswerSet{"a": "x", "b": "y"}, false},
		{"missing operand", "a >=", models.AnswerSet{"a": 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Evaluate(tt.condition, tt.answers))
		})
	}
}

func TestTruth_Kleene(t *testing.T) {
	lit := func(v Truth) Node {
		switch v {
		case True:
			return Literal{Value: true}
		case False:
			return Literal{Value: false}
		}
		return Invalid{Text: "?"}
	}

	tests := []struct {
		l, r    Truth
		and, or Truth
	}{
		{True, True, True, True},
		{True, False, False, True},
		{True, Unknown, Unknown, True},
		{False, False, False, False},
		{False, Unknown, False, Unknown},
		{Unknown, Unknown, Unknown, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.l.String()+"_"+tt.r.String(), func(t *testing.T) {
			assert.Equal(t, tt.and, And{Left: lit(tt.l), Right: lit(tt.r)}.Eval(nil))
			assert.Equal(t, tt.and, And{Left: lit(tt.r), Right: lit(tt.l)}.Eval(nil))
			assert.Equal(t, tt.or, Or{Left: lit(tt.l), Right: lit(tt.r)}.Eval(nil))
			assert.Equal(t, tt.or, Or{Left: lit(tt.r), Right: lit(tt.l)}.Eval(nil))
		})
	}
	assert.Equal(t, Unknown, Not{X: Invalid{Text: "?"}}.Eval(nil))
}

func TestEvaluate_IsTotal(t *testing.T) {
	inputs := []string{
		"(", ")", "((((", "))))", "AND", "OR OR", "NOT", "!", "!!", "{", "}", ",",
		"IN", "a IN", "a IN {", "a IN {b", "a = = b", "= b", "a <", "'", `"`,
		"a = x AND (b = y OR", "NOT (", "a IN {b,,c}", "\x00\xff", "(a = x) (b = y)",
	}
	answers := models.AnswerSet{"a": "x", "b": nil}

	for _, in := range inputs {
		assert.NotPanics(t, func() {
			Evaluate(in, answers)
		}, in)
	}
}

func TestEvaluator_FailureHook(t *testing.T) {
	var failures []string
	e := New(
		WithLogger(logger.NewTestLogger(t)),
		WithFailureHook(func(condition string, err error) {
			failures = append(failures, condition)
		}),
	)

	assert.True(t, e.Evaluate("a = x", models.AnswerSet{"a": "x"}))
	assert.Empty(t, failures)

	assert.False(t, e.Evaluate("a = x AND", models.AnswerSet{"a": "x"}))
	assert.False(t, e.Evaluate("nonsense", nil))
	assert.Equal(t, []string{"a = x AND", "nonsense"}, failures)

	require.Error(t, e.Check("(a = x"))
	require.Error(t, e.Check("a = x OR rubbish clause"))
	require.NoError(t, e.Check("a = x OR b IN {1,2}"))
	require.NoError(t, e.Check(""))
}

func TestEvaluator_ConcurrentUse(t *testing.T) {
	e := New()
	answers := models.AnswerSet{"q_age": 30, "q_residence_lux": "opt_oui"}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.True(t, e.Evaluate("q_residence_lux = opt_oui AND q_age >= 18", answers))
			}
		}()
	}
	wg.Wait()
}

func TestParse(t *testing.T) {
	node, err := Parse("a = 1 OR b = 2 AND NOT c IN {x,y}")
	require.NoError(t, err)

	or, ok := node.(Or)
	require.True(t, ok, "top level should be Or, got %T", node)
	assert.Equal(t, Compare{Op: OpEq, Key: "a", Value: "1"}, or.Left)

	and, ok := or.Right.(And)
	require.True(t, ok)
	assert.Equal(t, Not{X: In{Key: "c", Values: []string{"x", "y"}}}, and.Right)

	assert.Equal(t, "(a = 1 OR (b = 2 AND NOT c IN {x,y}))", node.String())
}

func TestKeys(t *testing.T) {
	node, err := Parse("q_age >= 18 AND (q_statut IN {a,b} OR q_age < 65) AND NOT q_institution = opt_oui")
	require.NoError(t, err)
	assert.Equal(t, []string{"q_age", "q_statut", "q_institution"}, Keys(node))
}

func TestOp_Numeric(t *testing.T) {
	assert.True(t, OpGe.Numeric())
	assert.True(t, OpLt.Numeric())
	assert.False(t, OpEq.Numeric())
	assert.False(t, OpNe.Numeric())
}
