package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// node is a compiled expression tree node.
type node interface {
	eval(vars map[string]any) (any, error)
}

type literal struct{ value any }

type variable struct{ path string }

type notNode struct{ operand node }

type logical struct {
	and         bool
	left, right node
}

type comparison struct {
	op          string
	left, right node
	compare     func(left, right any) (bool, error)
}

var keywords = map[string]bool{"and": true, "or": true, "not": true, "contains": true}

type parser struct {
	toks []token
	pos  int
	ops  map[string]BinaryOp
}

// parse builds the expression tree for src.
//
//	or         := and ("or" and)*
//	and        := unary ("and" unary)*
//	unary      := ("not" | "!") unary | comparison
//	comparison := operand (op operand)?
//	operand    := "(" or ")" | string | number | true | false | null | path
func parse(src string, ops map[string]BinaryOp) (node, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &SyntaxError{Msg: "empty expression"}
	}
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, ops: ops}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
	return root, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) atKeyword(word string) bool {
	t := p.peek()
	return t.kind == tokIdent && t.text == word
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("or") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &logical{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("and") {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &logical{and: true, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if t := p.peek(); p.atKeyword("not") || (t.kind == tokOp && t.text == "!") {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &notNode{operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op, compare, ok := p.operator(p.peek())
	if !ok {
		return left, nil
	}
	p.next()
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &comparison{op: op, left: left, right: right, compare: compare}, nil
}

// operator resolves t as a binary operator, built-in or custom.
func (p *parser) operator(t token) (string, func(l, r any) (bool, error), bool) {
	switch t.kind {
	case tokOp:
		if fn, ok := builtinOps[t.text]; ok {
			return t.text, fn, true
		}
	case tokIdent:
		if t.text == "contains" {
			return t.text, builtinOps["contains"], true
		}
		if fn, ok := p.ops[t.text]; ok {
			return t.text, func(l, r any) (bool, error) { return fn(l, r), nil }, true
		}
	}
	return "", nil, false
}

func (p *parser) parseOperand() (node, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, &SyntaxError{Pos: closing.pos, Msg: "expected ')'"}
		}
		return inner, nil

	case tokString:
		return literal{value: t.text}, nil

	case tokNumber:
		f, _ := strconv.ParseFloat(t.text, 64)
		return literal{value: f}, nil

	case tokIdent:
		switch t.text {
		case "true":
			return literal{value: true}, nil
		case "false":
			return literal{value: false}, nil
		case "null", "nil":
			return literal{value: nil}, nil
		}
		if keywords[t.text] {
			return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected keyword %q", t.text)}
		}
		for _, part := range strings.Split(t.text, ".") {
			if part == "" {
				return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("invalid path %q", t.text)}
			}
		}
		return variable{path: t.text}, nil

	case tokEOF:
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected end of expression"}

	default:
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
}
