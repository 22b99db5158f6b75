package expr

import (
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/wippyai/bitcodec/errors"
	"github.com/wippyai/bitcodec/expr/internal/token"
)

// Parse parses an integer expression such as "constantPoolCount - 1" or
// "outer.length * 8".
func Parse(src string) (Int, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	e, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return e, nil
}

// ParseBool parses a boolean expression built from comparisons, &&, || and !.
func ParseBool(src string) (Bool, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return e, nil
}

// MustParse is like Parse but panics on error. For package-level schemas.
func MustParse(src string) Int {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

type parser struct {
	src    string
	tokens []token.Token
	pos    int
}

func newParser(src string) (*parser, error) {
	toks, err := token.Tokenize(src)
	if err != nil {
		var te *token.Error
		if stderrors.As(err, &te) {
			return nil, errors.Syntax(src, te.Col, te.Msg)
		}
		return nil, errors.Syntax(src, 0, err.Error())
	}
	return &parser{src: src, tokens: toks}, nil
}

func (p *parser) peek() *token.Token {
	return &p.tokens[p.pos]
}

func (p *parser) next() *token.Token {
	t := &p.tokens[p.pos]
	if t.Type != token.EOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(typ token.Type) (*token.Token, error) {
	t := p.next()
	if t.Type != typ {
		return nil, p.errorf(t, "expected %v, got %v", typ, describe(t))
	}
	return t, nil
}

func (p *parser) expectEnd() error {
	if t := p.peek(); t.Type != token.EOF {
		return p.errorf(t, "unexpected %v", describe(t))
	}
	return nil
}

func (p *parser) errorf(t *token.Token, format string, args ...any) error {
	return errors.New(errors.PhaseParse, errors.KindSyntax).
		Value(p.src).
		Detail("column %d in %q: "+format, append([]any{t.Col, p.src}, args...)...).
		Build()
}

func describe(t *token.Token) string {
	if t.Type == token.EOF || t.Type == token.Number || t.Type == token.Ident {
		if t.Value == "" {
			return t.Type.String()
		}
		return t.Type.String() + " " + strconv.Quote(t.Value)
	}
	return t.Type.String()
}

// or := and { "||" and }
func (p *parser) parseOr() (Bool, error) {
	l, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == token.Or {
		p.next()
		r, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l = Or(l, r)
	}
	return l, nil
}

// and := not { "&&" not }
func (p *parser) parseAnd() (Bool, error) {
	l, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == token.And {
		p.next()
		r, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		l = And(l, r)
	}
	return l, nil
}

// not := "!" not | "(" or ")" | "true" | "false" | comparison
func (p *parser) parseNot() (Bool, error) {
	t := p.peek()
	switch {
	case t.Type == token.Not:
		p.next()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Not(x), nil
	case t.Type == token.Ident && t.Value == "true":
		p.next()
		return True, nil
	case t.Type == token.Ident && t.Value == "false":
		p.next()
		return False, nil
	case t.Type == token.LParen:
		// A parenthesis may open a boolean group or an arithmetic operand.
		save := p.pos
		p.next()
		if b, err := p.parseOr(); err == nil {
			if _, err := p.expect(token.RParen); err == nil {
				return b, nil
			}
		}
		p.pos = save
	}
	return p.parseComparison()
}

// comparison := additive cmp additive
func (p *parser) parseComparison() (Bool, error) {
	l, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	t := p.next()
	var op CmpOp
	switch t.Type {
	case token.Lt:
		op = Lt
	case token.Le:
		op = Le
	case token.Gt:
		op = Gt
	case token.Ge:
		op = Ge
	case token.Eq:
		op = Eq
	case token.Ne:
		op = Ne
	default:
		return nil, p.errorf(t, "expected comparison operator, got %v", describe(t))
	}
	r, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return Compare(op, l, r), nil
}

// additive := multiplicative { ("+" | "-") multiplicative }
func (p *parser) parseAdditive() (Int, error) {
	l, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op Op
		switch p.peek().Type {
		case token.Plus:
			op = OpAdd
		case token.Minus:
			op = OpSub
		default:
			return l, nil
		}
		p.next()
		r, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		l = Binary(op, l, r)
	}
}

// multiplicative := unary { ("*" | "/") unary }
func (p *parser) parseMultiplicative() (Int, error) {
	l, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op Op
		switch p.peek().Type {
		case token.Star:
			op = OpMul
		case token.Slash:
			op = OpDiv
		default:
			return l, nil
		}
		p.next()
		r, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		l = Binary(op, l, r)
	}
}

// unary := "-" unary | primary
func (p *parser) parseUnary() (Int, error) {
	if p.peek().Type == token.Minus {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Neg(x), nil
	}
	return p.parsePrimary()
}

// primary := number | identifier | "(" additive ")"
func (p *parser) parsePrimary() (Int, error) {
	t := p.next()
	switch t.Type {
	case token.Number:
		v, err := parseNumber(t.Value)
		if err != nil {
			return nil, p.errorf(t, "invalid number %q", t.Value)
		}
		return Const(v), nil
	case token.Ident:
		if strings.HasSuffix(t.Value, ".") || strings.Contains(t.Value, "..") {
			return nil, p.errorf(t, "malformed reference %q", t.Value)
		}
		return Ref(t.Value), nil
	case token.LParen:
		e, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, p.errorf(t, "expected operand, got %v", describe(t))
}

func parseNumber(s string) (int64, error) {
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return strconv.ParseInt(s[2:], 16, 64)
	}
	return strconv.ParseInt(s, 10, 64)
}
