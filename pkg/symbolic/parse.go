package symbolic

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/aretw0/quiver/pkg/domain"
)

// DefaultMaxDepth bounds the nesting depth the parser accepts.
const DefaultMaxDepth = 256

// Parser turns text into canonical expressions over a fixed set of
// variables.
type Parser struct {
	vars     map[string]*Sym
	maxDepth int
}

// NewParser returns a parser that recognises the given variable names.
func NewParser(vars ...string) *Parser {
	p := &Parser{vars: make(map[string]*Sym, len(vars)), maxDepth: DefaultMaxDepth}
	for _, v := range vars {
		p.vars[v] = Symbol(v)
	}
	return p
}

// Parse parses src. Errors are *domain.SyntaxError.
func (p *Parser) Parse(src string) (Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	ps := &parseState{Parser: p, src: src, toks: toks}
	e, err := ps.expr()
	if err != nil {
		return nil, err
	}
	if t := ps.peek(); t.kind != tokEOF {
		return nil, ps.errorf(t.pos, "unexpected %s", t)
	}
	return e, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPower
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of expression"
	case tokNumber:
		return "number " + t.text
	case tokIdent:
		return "name " + t.text
	}
	return fmt.Sprintf("%q", t.text)
}

func lex(src string) ([]token, error) {
	var toks []token
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || c == '.':
			start, digits, dot := i, 0, false
			for i < len(src) && (isDigit(src[i]) || (src[i] == '.' && !dot)) {
				if src[i] == '.' {
					dot = true
				} else {
					digits++
				}
				i++
			}
			if digits == 0 {
				return nil, &domain.SyntaxError{Expression: src, Pos: start, Msg: "invalid number literal"}
			}
			toks = append(toks, token{kind: tokNumber, text: src[start:i], pos: start})
		case isLetter(c):
			start := i
			for i < len(src) && (isLetter(src[i]) || isDigit(src[i])) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})
		case c == '*':
			if i+1 < len(src) && src[i+1] == '*' {
				toks = append(toks, token{kind: tokPower, text: "**", pos: i})
				i += 2
				continue
			}
			toks = append(toks, token{kind: tokStar, text: "*", pos: i})
			i++
		default:
			kind, ok := punct[c]
			if !ok {
				return nil, &domain.SyntaxError{Expression: src, Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
			}
			toks = append(toks, token{kind: kind, text: string(c), pos: i})
			i++
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

var punct = map[byte]tokenKind{
	'+': tokPlus,
	'-': tokMinus,
	'/': tokSlash,
	'(': tokLParen,
	')': tokRParen,
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

type parseState struct {
	*Parser
	src   string
	toks  []token
	pos   int
	depth int
}

func (ps *parseState) peek() token { return ps.toks[ps.pos] }

func (ps *parseState) next() token {
	t := ps.toks[ps.pos]
	if t.kind != tokEOF {
		ps.pos++
	}
	return t
}

func (ps *parseState) errorf(pos int, format string, args ...any) error {
	return &domain.SyntaxError{Expression: ps.src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// expr := term (('+' | '-') term)*
func (ps *parseState) expr() (Expr, error) {
	left, err := ps.term()
	if err != nil {
		return nil, err
	}
	for {
		op := ps.peek().kind
		if op != tokPlus && op != tokMinus {
			return left, nil
		}
		ps.next()
		right, err := ps.term()
		if err != nil {
			return nil, err
		}
		if op == tokPlus {
			left = Sum(left, right)
		} else {
			left = Sub(left, right)
		}
	}
}

// term := unary (('*' | '/') unary)*
func (ps *parseState) term() (Expr, error) {
	left, err := ps.unary()
	if err != nil {
		return nil, err
	}
	for {
		op := ps.peek().kind
		if op != tokStar && op != tokSlash {
			return left, nil
		}
		ps.next()
		right, err := ps.unary()
		if err != nil {
			return nil, err
		}
		if op == tokStar {
			left = Product(left, right)
		} else {
			left = Div(left, right)
		}
	}
}

// unary := ('+' | '-') unary | power
func (ps *parseState) unary() (Expr, error) {
	ps.depth++
	defer func() { ps.depth-- }()
	if ps.depth > ps.maxDepth {
		return nil, ps.errorf(ps.peek().pos, "expression nested too deeply")
	}

	switch ps.peek().kind {
	case tokPlus:
		ps.next()
		return ps.unary()
	case tokMinus:
		ps.next()
		e, err := ps.unary()
		if err != nil {
			return nil, err
		}
		return Neg(e), nil
	}
	return ps.power()
}

// power := primary ('**' unary)?
func (ps *parseState) power() (Expr, error) {
	base, err := ps.primary()
	if err != nil {
		return nil, err
	}
	if ps.peek().kind != tokPower {
		return base, nil
	}
	ps.next()
	exp, err := ps.unary()
	if err != nil {
		return nil, err
	}
	return Power(base, exp), nil
}

func (ps *parseState) primary() (Expr, error) {
	t := ps.next()
	switch t.kind {
	case tokNumber:
		return ps.number(t)
	case tokIdent:
		if s, ok := ps.vars[t.text]; ok {
			return s, nil
		}
		if !IsFunction(t.text) {
			return nil, ps.errorf(t.pos, "name %q is not defined", t.text)
		}
		if ps.peek().kind != tokLParen {
			return nil, ps.errorf(ps.peek().pos, "function %s must be called", t.text)
		}
		ps.next()
		arg, err := ps.group(t.pos)
		if err != nil {
			return nil, err
		}
		return Apply(t.text, arg)
	case tokLParen:
		return ps.group(t.pos)
	}
	return nil, ps.errorf(t.pos, "unexpected %s", t)
}

// group parses the inside of a parenthesis opened at pos.
func (ps *parseState) group(pos int) (Expr, error) {
	e, err := ps.expr()
	if err != nil {
		return nil, err
	}
	if t := ps.next(); t.kind != tokRParen {
		return nil, ps.errorf(t.pos, "unclosed parenthesis at %d, found %s", pos, t)
	}
	return e, nil
}

func (ps *parseState) number(t token) (Expr, error) {
	text := t.text
	float := strings.Contains(text, ".")
	if strings.HasPrefix(text, ".") {
		text = "0" + text
	}
	if strings.HasSuffix(text, ".") {
		text += "0"
	}
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return nil, ps.errorf(t.pos, "invalid number literal %q", t.text)
	}
	return &Num{val: r, float: float}, nil
}
