package expr

import (
	"math/bits"
	"strconv"

	"github.com/wippyai/bitcodec/errors"
)

// Op is a binary arithmetic operator.
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

var opSymbols = [...]string{OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/"}

func (o Op) String() string {
	if int(o) < len(opSymbols) {
		return opSymbols[o]
	}
	return "?"
}

func (o Op) precedence() int {
	if o == OpMul || o == OpDiv {
		return 2
	}
	return 1
}

type constInt int64

// Const returns a literal integer expression.
func Const(v int64) Int { return constInt(v) }

func (c constInt) Eval(Resolver) (int64, error) { return int64(c), nil }
func (constInt) IsParameterized() bool          { return false }
func (constInt) References() []string           { return nil }
func (c constInt) String() string               { return strconv.FormatInt(int64(c), 10) }

type refInt string

// Ref returns an expression that reads name from the resolver at eval time.
func Ref(name string) Int { return refInt(name) }

func (r refInt) Eval(res Resolver) (int64, error) { return Lookup(res, string(r)) }
func (refInt) IsParameterized() bool              { return true }
func (r refInt) References() []string             { return []string{string(r)} }
func (r refInt) String() string                   { return string(r) }

type negInt struct {
	x Int
}

// Neg returns -x.
func Neg(x Int) Int {
	if c, ok := x.(constInt); ok {
		return -c
	}
	return negInt{x}
}

func (n negInt) Eval(r Resolver) (int64, error) {
	v, err := n.x.Eval(r)
	if err != nil {
		return 0, err
	}
	return -v, nil
}
func (n negInt) IsParameterized() bool { return n.x.IsParameterized() }
func (n negInt) References() []string  { return n.x.References() }
func (n negInt) String() string {
	if _, ok := n.x.(binaryInt); ok {
		return "-(" + n.x.String() + ")"
	}
	return "-" + n.x.String()
}

type binaryInt struct {
	l, r Int
	op   Op
}

// Binary combines l and r with op. Literal operands fold immediately, so an
// expression built only from constants is itself a constant.
func Binary(op Op, l, r Int) Int {
	lc, lok := l.(constInt)
	rc, rok := r.(constInt)
	if lok && rok {
		if v, err := apply(op, int64(lc), int64(rc)); err == nil {
			return constInt(v)
		}
	}
	switch {
	case rok && rc == 0 && (op == OpAdd || op == OpSub):
		return l
	case lok && lc == 0 && op == OpAdd:
		return r
	case rok && rc == 1 && (op == OpMul || op == OpDiv):
		return l
	case lok && lc == 1 && op == OpMul:
		return r
	}
	return binaryInt{l: l, r: r, op: op}
}

func Add(l, r Int) Int { return Binary(OpAdd, l, r) }
func Sub(l, r Int) Int { return Binary(OpSub, l, r) }
func Mul(l, r Int) Int { return Binary(OpMul, l, r) }
func Div(l, r Int) Int { return Binary(OpDiv, l, r) }

// Sum adds all terms. An empty sum is the literal 0.
func Sum(terms ...Int) Int {
	acc := Const(0)
	for _, t := range terms {
		acc = Add(acc, t)
	}
	return acc
}

func (b binaryInt) Eval(r Resolver) (int64, error) {
	l, err := b.l.Eval(r)
	if err != nil {
		return 0, err
	}
	rv, err := b.r.Eval(r)
	if err != nil {
		return 0, err
	}
	return apply(b.op, l, rv)
}

func (b binaryInt) IsParameterized() bool {
	return b.l.IsParameterized() || b.r.IsParameterized()
}

func (b binaryInt) References() []string {
	return mergeRefs(b.l.References(), b.r.References())
}

func (b binaryInt) String() string {
	return b.side(b.l, false) + " " + b.op.String() + " " + b.side(b.r, true)
}

func (b binaryInt) side(e Int, right bool) string {
	child, ok := e.(binaryInt)
	if !ok {
		return e.String()
	}
	cp, pp := child.op.precedence(), b.op.precedence()
	if cp < pp || (right && cp == pp && (b.op == OpSub || b.op == OpDiv)) {
		return "(" + child.String() + ")"
	}
	return child.String()
}

func apply(op Op, l, r int64) (int64, error) {
	switch op {
	case OpAdd:
		s := l + r
		if (l >= 0) == (r >= 0) && (s >= 0) != (l >= 0) {
			return 0, errors.Overflow(errors.PhaseEval, nil, l, "int64 addition")
		}
		return s, nil
	case OpSub:
		s := l - r
		if (l >= 0) != (r >= 0) && (s >= 0) != (l >= 0) {
			return 0, errors.Overflow(errors.PhaseEval, nil, l, "int64 subtraction")
		}
		return s, nil
	case OpMul:
		if l == 0 || r == 0 {
			return 0, nil
		}
		hi, lo := bits.Mul64(abs64(l), abs64(r))
		neg := (l < 0) != (r < 0)
		if hi != 0 || (!neg && lo > 1<<63-1) || (neg && lo > 1<<63) {
			return 0, errors.Overflow(errors.PhaseEval, nil, l, "int64 multiplication")
		}
		return l * r, nil
	case OpDiv:
		if r == 0 {
			return 0, errors.New(errors.PhaseEval, errors.KindDivisionByZero).
				Detail("%d / 0", l).
				Build()
		}
		return l / r, nil
	}
	return 0, errors.Unsupported(errors.PhaseEval, "operator "+op.String())
}

func abs64(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}
