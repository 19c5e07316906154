package expr

import "fmt"

// BinaryOp is a custom comparison between two resolved operands.
type BinaryOp func(left, right any) bool

// Evaluator compiles expressions, optionally with custom operators.
type Evaluator struct {
	ops map[string]BinaryOp
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithCustomOperator registers a word operator such as "matches". Names
// must be identifiers; keywords and built-in operators cannot be replaced.
func WithCustomOperator(name string, fn BinaryOp) Option {
	return func(e *Evaluator) {
		if keywords[name] || fn == nil {
			return
		}
		if e.ops == nil {
			e.ops = make(map[string]BinaryOp)
		}
		e.ops[name] = fn
	}
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compile parses src. Syntax errors are *SyntaxError.
func (e *Evaluator) Compile(src string) (*Program, error) {
	root, err := parse(src, e.ops)
	if err != nil {
		return nil, err
	}
	return &Program{src: src, root: root}, nil
}

// Evaluate compiles and runs src in one step.
func (e *Evaluator) Evaluate(src string, vars map[string]any) (bool, error) {
	p, err := e.Compile(src)
	if err != nil {
		return false, err
	}
	return p.Eval(vars)
}

// Compile parses src with the default evaluator.
func Compile(src string) (*Program, error) {
	return New().Compile(src)
}

// Eval compiles and runs src with the default evaluator.
func Eval(src string, vars map[string]any) (bool, error) {
	return New().Evaluate(src, vars)
}

// Program is a compiled expression. It is immutable and safe for
// concurrent use.
type Program struct {
	src  string
	root node
}

// Eval runs the program against vars and reports the truthiness of the
// result.
func (p *Program) Eval(vars map[string]any) (bool, error) {
	v, err := p.root.eval(vars)
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.src, err)
	}
	return truthy(v), nil
}

// String returns the source expression.
func (p *Program) String() string { return p.src }

func (n literal) eval(map[string]any) (any, error) { return n.value, nil }

func (n variable) eval(vars map[string]any) (any, error) {
	v, _ := lookup(vars, n.path)
	return v, nil
}

func (n *notNode) eval(vars map[string]any) (any, error) {
	v, err := n.operand.eval(vars)
	if err != nil {
		return nil, err
	}
	return !truthy(v), nil
}

func (n *logical) eval(vars map[string]any) (any, error) {
	l, err := n.left.eval(vars)
	if err != nil {
		return nil, err
	}
	if truthy(l) != n.and {
		// short circuit: false for and, true for or
		return !n.and, nil
	}
	r, err := n.right.eval(vars)
	if err != nil {
		return nil, err
	}
	return truthy(r), nil
}

func (n *comparison) eval(vars map[string]any) (any, error) {
	l, err := n.left.eval(vars)
	if err != nil {
		return nil, err
	}
	r, err := n.right.eval(vars)
	if err != nil {
		return nil, err
	}
	ok, err := n.compare(l, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.op, err)
	}
	return ok, nil
}

var builtinOps = map[string]func(l, r any) (bool, error){
	"==": func(l, r any) (bool, error) { return equal(l, r), nil },
	"!=": func(l, r any) (bool, error) { return !equal(l, r), nil },
	"<":  ordered(func(c int) bool { return c < 0 }),
	"<=": ordered(func(c int) bool { return c <= 0 }),
	">":  ordered(func(c int) bool { return c > 0 }),
	">=": ordered(func(c int) bool { return c >= 0 }),
	"contains": func(l, r any) (bool, error) {
		return contains(l, r), nil
	},
}

func ordered(accept func(int) bool) func(l, r any) (bool, error) {
	return func(l, r any) (bool, error) {
		c, err := order(l, r)
		if err != nil {
			return false, err
		}
		return accept(c), nil
	}
}
