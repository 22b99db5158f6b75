package expr

// CmpOp is a comparison operator.
type CmpOp uint8

const (
	Lt CmpOp = iota
	Le
	Gt
	Ge
	Eq
	Ne
)

var cmpSymbols = [...]string{Lt: "<", Le: "<=", Gt: ">", Ge: ">=", Eq: "==", Ne: "!="}

func (o CmpOp) String() string {
	if int(o) < len(cmpSymbols) {
		return cmpSymbols[o]
	}
	return "?"
}

func (o CmpOp) test(l, r int64) bool {
	switch o {
	case Lt:
		return l < r
	case Le:
		return l <= r
	case Gt:
		return l > r
	case Ge:
		return l >= r
	case Eq:
		return l == r
	case Ne:
		return l != r
	}
	return false
}

type constBool bool

// True and False are the boolean literals.
var (
	True  Bool = constBool(true)
	False Bool = constBool(false)
)

func (c constBool) Eval(Resolver) (bool, error) { return bool(c), nil }
func (constBool) IsParameterized() bool         { return false }
func (constBool) References() []string          { return nil }
func (c constBool) String() string {
	if c {
		return "true"
	}
	return "false"
}

type compare struct {
	l, r Int
	op   CmpOp
}

// Compare returns l op r, folded when both sides are literals.
func Compare(op CmpOp, l, r Int) Bool {
	lc, lok := l.(constInt)
	rc, rok := r.(constInt)
	if lok && rok {
		return constBool(op.test(int64(lc), int64(rc)))
	}
	return compare{l: l, r: r, op: op}
}

func (c compare) Eval(r Resolver) (bool, error) {
	l, err := c.l.Eval(r)
	if err != nil {
		return false, err
	}
	rv, err := c.r.Eval(r)
	if err != nil {
		return false, err
	}
	return c.op.test(l, rv), nil
}

func (c compare) IsParameterized() bool {
	return c.l.IsParameterized() || c.r.IsParameterized()
}

func (c compare) References() []string {
	return mergeRefs(c.l.References(), c.r.References())
}

func (c compare) String() string {
	return c.l.String() + " " + c.op.String() + " " + c.r.String()
}

type logic struct {
	l, r Bool
	and  bool
}

// And short-circuits: r is not evaluated when l is false.
func And(l, r Bool) Bool {
	if lc, ok := l.(constBool); ok {
		if !lc {
			return False
		}
		return r
	}
	return logic{l: l, r: r, and: true}
}

// Or short-circuits: r is not evaluated when l is true.
func Or(l, r Bool) Bool {
	if lc, ok := l.(constBool); ok {
		if lc {
			return True
		}
		return r
	}
	return logic{l: l, r: r}
}

func (g logic) Eval(r Resolver) (bool, error) {
	l, err := g.l.Eval(r)
	if err != nil {
		return false, err
	}
	if g.and != l {
		return l, nil
	}
	return g.r.Eval(r)
}

func (g logic) IsParameterized() bool {
	return g.l.IsParameterized() || g.r.IsParameterized()
}

func (g logic) References() []string {
	return mergeRefs(g.l.References(), g.r.References())
}

func (g logic) String() string {
	op := " || "
	if g.and {
		op = " && "
	}
	return g.wrap(g.l) + op + g.wrap(g.r)
}

func (g logic) wrap(b Bool) string {
	if inner, ok := b.(logic); ok && inner.and != g.and {
		return "(" + inner.String() + ")"
	}
	return b.String()
}

type not struct {
	x Bool
}

// Not negates x.
func Not(x Bool) Bool {
	if c, ok := x.(constBool); ok {
		return !c
	}
	return not{x}
}

func (n not) Eval(r Resolver) (bool, error) {
	v, err := n.x.Eval(r)
	return !v, err
}
func (n not) IsParameterized() bool { return n.x.IsParameterized() }
func (n not) References() []string  { return n.x.References() }
func (n not) String() string {
	switch n.x.(type) {
	case logic, compare:
		return "!(" + n.x.String() + ")"
	}
	return "!" + n.x.String()
}
