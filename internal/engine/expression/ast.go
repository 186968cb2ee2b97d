package expression

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"aid-eligibility-workers/internal/models"
)

// Node is one element of a parsed condition.
type Node interface {
	Eval(answers models.AnswerSet) Truth
	String() string
}

// Truth is a three-valued result. Unknown comes from clauses that matched no known
// form and propagates through NOT, AND and OR using Kleene logic.
type Truth int8

const (
	False Truth = iota
	True
	Unknown
)

func truth(b bool) Truth {
	if b {
		return True
	}
	return False
}

func (t Truth) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	}
	return "unknown"
}

// Op is a comparison operator.
type Op string

const (
	OpEq Op = "="
	OpNe Op = "!="
	OpGt Op = ">"
	OpGe Op = ">="
	OpLt Op = "<"
	OpLe Op = "<="
)

// Numeric reports whether the operator compares numbers rather than strings.
func (o Op) Numeric() bool {
	switch o {
	case OpGt, OpGe, OpLt, OpLe:
		return true
	}
	return false
}

type Or struct{ Left, Right Node }

func (n Or) Eval(a models.AnswerSet) Truth {
	l, r := n.Left.Eval(a), n.Right.Eval(a)
	switch {
	case l == True || r == True:
		return True
	case l == False && r == False:
		return False
	}
	return Unknown
}

func (n Or) String() string { return fmt.Sprintf("(%s OR %s)", n.Left, n.Right) }

type And struct{ Left, Right Node }

func (n And) Eval(a models.AnswerSet) Truth {
	l, r := n.Left.Eval(a), n.Right.Eval(a)
	switch {
	case l == False || r == False:
		return False
	case l == True && r == True:
		return True
	}
	return Unknown
}

func (n And) String() string { return fmt.Sprintf("(%s AND %s)", n.Left, n.Right) }

type Not struct{ X Node }

func (n Not) Eval(a models.AnswerSet) Truth {
	switch n.X.Eval(a) {
	case True:
		return False
	case False:
		return True
	}
	return Unknown
}

func (n Not) String() string { return fmt.Sprintf("NOT %s", n.X) }

type Literal struct{ Value bool }

func (n Literal) Eval(models.AnswerSet) Truth { return truth(n.Value) }
func (n Literal) String() string              { return fmt.Sprintf("%t", n.Value) }

// Invalid is a clause that matched no known form. It evaluates to Unknown, so
// negating it does not make it hold.
type Invalid struct{ Text string }

func (n Invalid) Eval(models.AnswerSet) Truth { return Unknown }
func (n Invalid) String() string              { return fmt.Sprintf("INVALID(%s)", n.Text) }

// Compare is `key OP value`. Equality compares the answer rendered as a string;
// ordering operators parse both sides as float64 and fail closed.
type Compare struct {
	Op    Op
	Key   string
	Value string
}

func (n Compare) Eval(a models.AnswerSet) Truth { return truth(n.holds(a)) }

func (n Compare) holds(a models.AnswerSet) bool {
	answer, ok := lookup(a, n.Key)
	switch n.Op {
	case OpEq:
		return ok && cast.ToString(answer) == n.Value
	case OpNe:
		return !ok || cast.ToString(answer) != n.Value
	}

	if !ok {
		return false
	}
	left, ok := toNumber(answer)
	if !ok {
		return false
	}
	right, err := cast.ToFloat64E(n.Value)
	if err != nil {
		return false
	}

	switch n.Op {
	case OpGt:
		return left > right
	case OpGe:
		return left >= right
	case OpLt:
		return left < right
	case OpLe:
		return left <= right
	}
	return false
}

func (n Compare) String() string { return fmt.Sprintf("%s %s %s", n.Key, n.Op, n.Value) }

// In is `key IN {v1,v2}`.
type In struct {
	Key    string
	Values []string
}

func (n In) Eval(a models.AnswerSet) Truth { return truth(n.holds(a)) }

func (n In) holds(a models.AnswerSet) bool {
	answer, ok := lookup(a, n.Key)
	if !ok {
		return false
	}
	s := cast.ToString(answer)
	for _, v := range n.Values {
		if s == v {
			return true
		}
	}
	return false
}

func (n In) String() string {
	return fmt.Sprintf("%s IN {%s}", n.Key, strings.Join(n.Values, ","))
}

func lookup(a models.AnswerSet, key string) (interface{}, bool) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// toNumber accepts numbers and numeric strings. Booleans are not numbers here.
func toNumber(v interface{}) (float64, bool) {
	if _, isBool := v.(bool); isBool {
		return 0, false
	}
	if s, isString := v.(string); isString {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Walk calls fn for n and every node below it, depth first.
func Walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	fn(n)
	switch t := n.(type) {
	case Or:
		Walk(t.Left, fn)
		Walk(t.Right, fn)
	case And:
		Walk(t.Left, fn)
		Walk(t.Right, fn)
	case Not:
		Walk(t.X, fn)
	}
}

// Keys returns the answer keys referenced by n, in first-seen order.
func Keys(n Node) []string {
	var keys []string
	seen := make(map[string]bool)
	Walk(n, func(node Node) {
		var key string
		switch t := node.(type) {
		case Compare:
			key = t.Key
		case In:
			key = t.Key
		default:
			return
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	})
	return keys
}
