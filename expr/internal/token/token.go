package token

import (
	"fmt"
	"unicode"
)

type Type int

const (
	EOF Type = iota
	Number
	Ident
	LParen
	RParen
	Plus
	Minus
	Star
	Slash
	Lt
	Le
	Gt
	Ge
	Eq
	Ne
	And
	Or
	Not
)

var typeNames = [...]string{
	EOF:    "end of input",
	Number: "number",
	Ident:  "identifier",
	LParen: "'('",
	RParen: "')'",
	Plus:   "'+'",
	Minus:  "'-'",
	Star:   "'*'",
	Slash:  "'/'",
	Lt:     "'<'",
	Le:     "'<='",
	Gt:     "'>'",
	Ge:     "'>='",
	Eq:     "'=='",
	Ne:     "'!='",
	And:    "'&&'",
	Or:     "'||'",
	Not:    "'!'",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

type Token struct {
	Value string
	Type  Type
	Col   int
}

// Error reports a character the tokenizer does not recognize.
type Error struct {
	Col int
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("column %d: %s", e.Col, e.Msg)
}

// Tokenize splits an expression into tokens. The result always ends with EOF.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	runes := []rune(input)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		col := i + 1

		if unicode.IsSpace(r) {
			continue
		}

		// Two-character operators
		if i+1 < len(runes) {
			pair := string(runes[i : i+2])
			var typ Type = -1
			switch pair {
			case "<=":
				typ = Le
			case ">=":
				typ = Ge
			case "==":
				typ = Eq
			case "!=":
				typ = Ne
			case "&&":
				typ = And
			case "||":
				typ = Or
			}
			if typ >= 0 {
				tokens = append(tokens, Token{pair, typ, col})
				i++
				continue
			}
		}

		switch r {
		case '(':
			tokens = append(tokens, Token{"(", LParen, col})
			continue
		case ')':
			tokens = append(tokens, Token{")", RParen, col})
			continue
		case '+':
			tokens = append(tokens, Token{"+", Plus, col})
			continue
		case '-':
			tokens = append(tokens, Token{"-", Minus, col})
			continue
		case '*':
			tokens = append(tokens, Token{"*", Star, col})
			continue
		case '/':
			tokens = append(tokens, Token{"/", Slash, col})
			continue
		case '<':
			tokens = append(tokens, Token{"<", Lt, col})
			continue
		case '>':
			tokens = append(tokens, Token{">", Gt, col})
			continue
		case '!':
			tokens = append(tokens, Token{"!", Not, col})
			continue
		}

		// Number: decimal or 0x hex
		if unicode.IsDigit(r) {
			start := i
			if r == '0' && i+1 < len(runes) && (runes[i+1] == 'x' || runes[i+1] == 'X') {
				i += 2
				for i < len(runes) && isHexDigit(runes[i]) {
					i++
				}
			} else {
				for i < len(runes) && unicode.IsDigit(runes[i]) {
					i++
				}
			}
			if i < len(runes) && isIdentRune(runes[i]) {
				return nil, &Error{Col: i + 1, Msg: fmt.Sprintf("malformed number %q", string(runes[start:i+1]))}
			}
			tokens = append(tokens, Token{string(runes[start:i]), Number, col})
			i--
			continue
		}

		// Identifier, optionally dotted: outer.count
		if isIdentStart(r) {
			start := i
			for i < len(runes) && (isIdentRune(runes[i]) || runes[i] == '.') {
				i++
			}
			tokens = append(tokens, Token{string(runes[start:i]), Ident, col})
			i--
			continue
		}

		return nil, &Error{Col: col, Msg: fmt.Sprintf("unexpected character %q", r)}
	}

	tokens = append(tokens, Token{"", EOF, len(runes) + 1})
	return tokens, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentRune(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
