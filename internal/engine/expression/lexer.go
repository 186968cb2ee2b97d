package expression

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokString
	tokOp
	tokAnd
	tokOr
	tokNot
	tokIn
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func isSpecial(r rune) bool {
	return strings.ContainsRune("(){},=!<>\"'", r) || unicode.IsSpace(r)
}

// lex splits a condition into tokens. Keywords are recognised in upper case only.
func lex(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, token{tokLParen, "(", i})
			i++
		case r == ')':
			tokens = append(tokens, token{tokRParen, ")", i})
			i++
		case r == '{':
			tokens = append(tokens, token{tokLBrace, "{", i})
			i++
		case r == '}':
			tokens = append(tokens, token{tokRBrace, "}", i})
			i++
		case r == ',':
			tokens = append(tokens, token{tokComma, ",", i})
			i++
		case r == '=':
			tokens = append(tokens, token{tokOp, string(OpEq), i})
			i++
			if i < len(runes) && runes[i] == '=' {
				i++
			}
		case r == '!':
			if i+1 < len(runes) && runes[i+1] == '=' {
				tokens = append(tokens, token{tokOp, string(OpNe), i})
				i += 2
			} else {
				tokens = append(tokens, token{tokNot, "!", i})
				i++
			}
		case r == '<' || r == '>':
			op := string(r)
			if i+1 < len(runes) && runes[i+1] == '=' {
				op += "="
			}
			tokens = append(tokens, token{tokOp, op, i})
			i += len(op)
		case r == '"' || r == '\'':
			end := i + 1
			for end < len(runes) && runes[end] != r {
				end++
			}
			if end >= len(runes) {
				return nil, fmt.Errorf("unterminated quote at %d", i)
			}
			tokens = append(tokens, token{tokString, string(runes[i+1 : end]), i})
			i = end + 1
		default:
			start := i
			for i < len(runes) && !isSpecial(runes[i]) {
				i++
			}
			word := string(runes[start:i])
			tokens = append(tokens, token{keyword(word), word, start})
		}
	}

	return append(tokens, token{tokEOF, "", len(runes)}), nil
}

func keyword(word string) tokenKind {
	switch word {
	case "AND":
		return tokAnd
	case "OR":
		return tokOr
	case "NOT":
		return tokNot
	case "IN":
		return tokIn
	}
	return tokWord
}
