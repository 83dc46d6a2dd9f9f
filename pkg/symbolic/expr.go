package symbolic

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Expr is a node of a symbolic expression tree.
type Expr interface {
	// String renders the expression in Python syntax.
	String() string
	// LaTeX renders the expression for typesetting.
	LaTeX() string
	// Equal reports structural equality of canonical trees.
	Equal(other Expr) bool

	precedence() int
	toNode() node
}

// Printing precedence, lowest binds loosest.
const (
	precAdd = iota + 1
	precMul
	precPow
	precAtom
)

// Num is an exact rational number.
// Decimal literals keep a float flag so they print as decimals.
type Num struct {
	val   *big.Rat
	float bool
}

// Int returns the integer n.
func Int(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

// Frac returns the rational p/q. It panics when q is zero.
func Frac(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: zero denominator")
	}
	return &Num{val: big.NewRat(p, q)}
}

// Float returns a number flagged as a decimal.
func Float(f float64) *Num {
	r := new(big.Rat)
	if r.SetFloat64(f) == nil {
		return nil
	}
	return &Num{val: r, float: true}
}

// Rat returns a copy of the exact value.
func (n *Num) Rat() *big.Rat { return new(big.Rat).Set(n.val) }

// Float64 returns the nearest float64; it may be ±Inf for huge values.
func (n *Num) Float64() float64 {
	f, _ := n.val.Float64()
	return f
}

// IsFloat reports whether the value came from a decimal literal.
func (n *Num) IsFloat() bool { return n.float }

func (n *Num) isInt() bool    { return n.val.IsInt() }
func (n *Num) isZero() bool   { return n.val.Sign() == 0 }
func (n *Num) isOne() bool    { return n.val.Cmp(ratOne) == 0 }
func (n *Num) isNegOne() bool { return n.val.Cmp(ratNegOne) == 0 }
func (n *Num) sign() int      { return n.val.Sign() }

var (
	ratOne    = big.NewRat(1, 1)
	ratNegOne = big.NewRat(-1, 1)
	ratHalf   = big.NewRat(1, 2)
)

func (n *Num) String() string {
	switch {
	case n.float:
		return formatFloat(n.Float64())
	case n.val.IsInt():
		return n.val.Num().String()
	default:
		return n.val.RatString()
	}
}

func (n *Num) LaTeX() string {
	if n.float || n.val.IsInt() {
		return n.String()
	}
	v := new(big.Rat).Abs(n.val)
	sign := ""
	if n.val.Sign() < 0 {
		sign = "- "
	}
	return sign + `\frac{` + v.Num().String() + `}{` + v.Denom().String() + `}`
}

func (n *Num) Equal(other Expr) bool {
	o, ok := other.(*Num)
	return ok && n.val.Cmp(o.val) == 0
}

func (n *Num) precedence() int {
	switch {
	case n.val.Sign() < 0:
		return precAdd
	case !n.float && !n.val.IsInt():
		return precMul
	}
	return precAtom
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

func numAdd(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Add(a.val, b.val), float: a.float || b.float}
}

func numMul(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Mul(a.val, b.val), float: a.float || b.float}
}

func numNeg(a *Num) *Num {
	return &Num{val: new(big.Rat).Neg(a.val), float: a.float}
}

// numPow raises a number to a numeric power. ok is false when the result
// is not a number: zero to a negative power, or an irrational value.
func numPow(base, exp *Num) (*Num, bool) {
	if base.float || exp.float {
		f := math.Pow(base.Float64(), exp.Float64())
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		return Float(f), true
	}
	if !exp.isInt() {
		return nil, false
	}
	e := exp.val.Num()
	if base.isZero() {
		if e.Sign() < 0 {
			return nil, false
		}
		return Int(0), true
	}

	// Exact: for a huge exponent this loops until the worker is killed.
	abs := new(big.Int).Abs(e)
	num := new(big.Int).Exp(new(big.Int).Abs(base.val.Num()), abs, nil)
	den := new(big.Int).Exp(base.val.Denom(), abs, nil)
	if base.sign() < 0 && abs.Bit(0) == 1 {
		num.Neg(num)
	}
	if e.Sign() < 0 {
		num, den = den, num
		if den.Sign() < 0 {
			num.Neg(num)
			den.Neg(den)
		}
	}
	return &Num{val: new(big.Rat).SetFrac(num, den)}, true
}

// Sym is a free variable.
type Sym struct {
	name string
}

// Symbol returns the variable with the given name.
func Symbol(name string) *Sym { return &Sym{name: name} }

// Name returns the variable name.
func (s *Sym) Name() string { return s.name }

func (s *Sym) String() string  { return s.name }
func (s *Sym) LaTeX() string   { return s.name }
func (s *Sym) precedence() int { return precAtom }

func (s *Sym) Equal(other Expr) bool {
	o, ok := other.(*Sym)
	return ok && s.name == o.name
}
