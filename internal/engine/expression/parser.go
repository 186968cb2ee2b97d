package expression

import (
	"fmt"
	"strings"
)

// Parse builds the AST for a condition. Precedence, loosest first: OR, AND, NOT,
// parenthesised group, comparison. An empty condition parses to Literal{true}.
//
// Clauses that match no known form become Invalid nodes instead of errors, so the
// rest of the condition still evaluates. Structural problems (unbalanced parentheses,
// a dangling operator, an unterminated quote) are returned as errors.
func Parse(condition string) (Node, error) {
	if strings.TrimSpace(condition) == "" {
		return Literal{Value: true}, nil
	}

	tokens, err := lex(condition)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at %d", tok.text, tok.pos)
	}
	return node, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	if p.peek().kind == tokNot {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{X: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.peek()
	switch tok.kind {
	case tokLParen:
		p.next()
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("unbalanced parenthesis opened at %d", tok.pos)
		}
		return node, nil
	case tokRParen, tokEOF, tokAnd, tokOr:
		if tok.kind == tokEOF {
			return nil, fmt.Errorf("expected condition at end of input")
		}
		return nil, fmt.Errorf("expected condition at %d, got %q", tok.pos, tok.text)
	}
	return p.parseClause(), nil
}

// parseClause consumes tokens up to the next boolean operator or parenthesis and
// interprets them as a single comparison.
func (p *parser) parseClause() Node {
	var clause []token
	for {
		switch p.peek().kind {
		case tokAnd, tokOr, tokLParen, tokRParen, tokEOF:
			return interpret(clause)
		}
		clause = append(clause, p.next())
	}
}

func interpret(clause []token) Node {
	switch {
	case len(clause) == 1 && isValue(clause[0]):
		switch strings.ToLower(clause[0].text) {
		case "true":
			return Literal{Value: true}
		case "false":
			return Literal{Value: false}
		}
	case len(clause) == 3 && clause[0].kind == tokWord && clause[1].kind == tokOp && isValue(clause[2]):
		return Compare{Op: Op(clause[1].text), Key: clause[0].text, Value: clause[2].text}
	case len(clause) >= 3 && clause[0].kind == tokWord && clause[1].kind == tokIn:
		if values, ok := valueList(clause[2:]); ok {
			return In{Key: clause[0].text, Values: values}
		}
	}
	return Invalid{Text: joinTokens(clause)}
}

// valueList accepts `{a,b}` or `a,b`.
func valueList(tokens []token) ([]string, bool) {
	if tokens[0].kind == tokLBrace {
		if tokens[len(tokens)-1].kind != tokRBrace {
			return nil, false
		}
		tokens = tokens[1 : len(tokens)-1]
	}

	values := []string{}
	expectValue := true
	for _, tok := range tokens {
		switch {
		case expectValue && isValue(tok):
			values = append(values, tok.text)
			expectValue = false
		case !expectValue && tok.kind == tokComma:
			expectValue = true
		default:
			return nil, false
		}
	}
	if expectValue && len(values) > 0 {
		return nil, false
	}
	return values, true
}

func isValue(tok token) bool {
	return tok.kind == tokWord || tok.kind == tokString
}

func joinTokens(tokens []token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.text
	}
	return strings.Join(parts, " ")
}
