package symbolic

import (
	"math/big"
	"sort"
	"strings"
)

// Add is a sum of two or more terms. Numeric constants are folded into a
// single trailing term.
type Add struct {
	terms []Expr
}

// Mul is a product of two or more factors. A numeric coefficient, when
// present, is the first factor.
type Mul struct {
	factors []Expr
}

// Pow is base raised to exp, kept only when it cannot be evaluated.
type Pow struct {
	base, exp Expr
}

// Terms returns the summands.
func (a *Add) Terms() []Expr { return append([]Expr(nil), a.terms...) }

// Factors returns the multiplicands.
func (m *Mul) Factors() []Expr { return append([]Expr(nil), m.factors...) }

// Base returns the base of the power.
func (p *Pow) Base() Expr { return p.base }

// Exp returns the exponent.
func (p *Pow) Exp() Expr { return p.exp }

func (a *Add) precedence() int { return precAdd }
func (m *Mul) precedence() int { return precMul }
func (p *Pow) precedence() int { return precPow }

// Sum returns the canonical sum of terms.
func Sum(terms ...Expr) Expr {
	var flat []Expr
	for _, t := range terms {
		if a, ok := t.(*Add); ok {
			flat = append(flat, a.terms...)
			continue
		}
		flat = append(flat, t)
	}

	constant := Int(0)
	type group struct {
		coeff *Num
		rest  Expr
	}
	var order []string
	groups := map[string]*group{}
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			constant = numAdd(constant, n)
			continue
		}
		c, rest := splitCoeff(t)
		key := rest.String()
		if g, ok := groups[key]; ok {
			g.coeff = numAdd(g.coeff, c)
			continue
		}
		groups[key] = &group{coeff: c, rest: rest}
		order = append(order, key)
	}

	sort.Strings(order)
	out := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		g := groups[key]
		switch {
		case g.coeff.isZero():
		case g.coeff.isOne() && !g.coeff.float:
			out = append(out, g.rest)
		default:
			out = append(out, Product(g.coeff, g.rest))
		}
	}
	if !constant.isZero() {
		out = append(out, constant)
	}

	switch len(out) {
	case 0:
		return constant
	case 1:
		return out[0]
	}
	return &Add{terms: out}
}

// Product returns the canonical product of factors.
func Product(factors ...Expr) Expr {
	var flat []Expr
	for _, f := range factors {
		if m, ok := f.(*Mul); ok {
			flat = append(flat, m.factors...)
			continue
		}
		flat = append(flat, f)
	}

	coeff := Int(1)
	type group struct {
		base Expr
		exps []Expr
	}
	var order []string
	groups := map[string]*group{}
	singular := false
	for _, f := range flat {
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		if zeroDivisor(f) {
			singular = true
		}
		base, exp := splitPow(f)
		key := base.String()
		if g, ok := groups[key]; ok {
			g.exps = append(g.exps, exp)
			continue
		}
		groups[key] = &group{base: base, exps: []Expr{exp}}
		order = append(order, key)
	}
	if coeff.isZero() && !singular {
		return coeff
	}

	var rest []Expr
	for _, key := range order {
		g := groups[key]
		exp := g.exps[0]
		if len(g.exps) > 1 {
			exp = Sum(g.exps...)
		}
		switch r := Power(g.base, exp).(type) {
		case *Num:
			coeff = numMul(coeff, r)
		case *Mul:
			for _, f := range r.factors {
				if n, ok := f.(*Num); ok {
					coeff = numMul(coeff, n)
					continue
				}
				rest = append(rest, f)
			}
		default:
			rest = append(rest, r)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].String() < rest[j].String() })

	if len(rest) == 1 && !coeff.isOne() && !coeff.isZero() {
		if a, ok := rest[0].(*Add); ok {
			terms := make([]Expr, len(a.terms))
			for i, t := range a.terms {
				terms[i] = Product(coeff, t)
			}
			return Sum(terms...)
		}
	}

	switch {
	case len(rest) == 0:
		return coeff
	case len(rest) == 1 && coeff.isOne() && !coeff.float:
		return rest[0]
	case coeff.isOne() && !coeff.float:
		return &Mul{factors: rest}
	}
	return &Mul{factors: append([]Expr{coeff}, rest...)}
}

// Power returns base**exp in canonical form.
func Power(base, exp Expr) Expr {
	if e, ok := exp.(*Num); ok {
		switch {
		case e.isZero():
			return Int(1)
		case e.isOne() && !e.float:
			return base
		}
	}
	if b, ok := base.(*Num); ok && b.isOne() && !b.float {
		return Int(1)
	}

	e, expNum := exp.(*Num)
	switch b := base.(type) {
	case *Num:
		if expNum {
			if r, ok := numPow(b, e); ok {
				return r
			}
		}
	case *Pow:
		if expNum && e.isInt() && !e.float {
			return Power(b.base, Product(b.exp, e))
		}
	case *Mul:
		if expNum && e.isInt() && !e.float {
			factors := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				factors[i] = Power(f, e)
			}
			return Product(factors...)
		}
	}
	return &Pow{base: base, exp: exp}
}

// Neg returns -a.
func Neg(a Expr) Expr { return Product(Int(-1), a) }

// Sub returns a - b.
func Sub(a, b Expr) Expr { return Sum(a, Neg(b)) }

// Div returns a / b.
func Div(a, b Expr) Expr { return Product(a, Power(b, Int(-1))) }

// splitCoeff separates a term into its numeric coefficient and the rest.
func splitCoeff(t Expr) (*Num, Expr) {
	m, ok := t.(*Mul)
	if !ok {
		return Int(1), t
	}
	c, ok := m.factors[0].(*Num)
	if !ok {
		return Int(1), t
	}
	if len(m.factors) == 2 {
		return c, m.factors[1]
	}
	return c, &Mul{factors: m.factors[1:]}
}

func splitPow(f Expr) (Expr, Expr) {
	if p, ok := f.(*Pow); ok {
		return p.base, p.exp
	}
	return f, Int(1)
}

// zeroDivisor reports whether f is zero raised to a negative power.
func zeroDivisor(f Expr) bool {
	p, ok := f.(*Pow)
	if !ok {
		return false
	}
	b, ok := p.base.(*Num)
	if !ok || !b.isZero() {
		return false
	}
	e, ok := p.exp.(*Num)
	return ok && e.sign() < 0
}

func negativeTerm(t Expr) bool {
	switch v := t.(type) {
	case *Num:
		return v.sign() < 0
	case *Mul:
		c, ok := v.factors[0].(*Num)
		return ok && c.sign() < 0
	}
	return false
}

func (a *Add) String() string { return a.format(Expr.String) }
func (a *Add) LaTeX() string  { return a.format(Expr.LaTeX) }

func (a *Add) format(render func(Expr) string) string {
	var b strings.Builder
	for i, t := range a.terms {
		switch {
		case i == 0:
			b.WriteString(render(t))
		case negativeTerm(t):
			b.WriteString(" - ")
			b.WriteString(render(Neg(t)))
		default:
			b.WriteString(" + ")
			b.WriteString(render(t))
		}
	}
	return b.String()
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	return ok && equalAll(a.terms, o.terms)
}

// fraction splits a product into sign, numerator and denominator factors.
func (m *Mul) fraction() (negative bool, num, den []Expr) {
	factors := m.factors
	if c, ok := factors[0].(*Num); ok {
		factors = factors[1:]
		if c.sign() < 0 {
			negative = true
			c = numNeg(c)
		}
		switch {
		case c.float:
			if !c.isOne() {
				num = append(num, c)
			}
		default:
			if p := c.val.Num(); !p.IsInt64() || p.Int64() != 1 {
				num = append(num, &Num{val: new(big.Rat).SetInt(p)})
			}
			if q := c.val.Denom(); !q.IsInt64() || q.Int64() != 1 {
				den = append(den, &Num{val: new(big.Rat).SetInt(q)})
			}
		}
	}
	for _, f := range factors {
		if p, ok := f.(*Pow); ok {
			if e, ok := p.exp.(*Num); ok && e.sign() < 0 {
				den = append(den, Power(p.base, numNeg(e)))
				continue
			}
		}
		num = append(num, f)
	}
	return negative, num, den
}

func (m *Mul) String() string {
	negative, num, den := m.fraction()
	var b strings.Builder
	if negative {
		b.WriteString("-")
	}
	b.WriteString(joinFactors(num, "*", Expr.String, "1"))
	if len(den) > 0 {
		b.WriteString("/")
		d := joinFactors(den, "*", Expr.String, "1")
		if len(den) > 1 || den[0].precedence() <= precMul {
			d = "(" + d + ")"
		}
		b.WriteString(d)
	}
	return b.String()
}

func (m *Mul) LaTeX() string {
	negative, num, den := m.fraction()
	sign := ""
	if negative {
		sign = "- "
	}
	n := joinFactors(num, " ", Expr.LaTeX, "1")
	if len(den) == 0 {
		return sign + n
	}
	return sign + `\frac{` + n + `}{` + joinFactors(den, " ", Expr.LaTeX, "1") + `}`
}

func joinFactors(fs []Expr, sep string, render func(Expr) string, empty string) string {
	if len(fs) == 0 {
		return empty
	}
	parts := make([]string, len(fs))
	for i, f := range fs {
		s := render(f)
		if f.precedence() < precMul {
			if sep == "*" {
				s = "(" + s + ")"
			} else {
				s = `\left(` + s + `\right)`
			}
		}
		parts[i] = s
	}
	return strings.Join(parts, sep)
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	return ok && equalAll(m.factors, o.factors)
}

func (p *Pow) String() string {
	if e, ok := p.exp.(*Num); ok && e.isNegOne() && !e.float {
		b := p.base.String()
		if p.base.precedence() <= precPow {
			b = "(" + b + ")"
		}
		return "1/" + b
	}
	b, e := p.base.String(), p.exp.String()
	if p.base.precedence() <= precPow {
		b = "(" + b + ")"
	}
	if p.exp.precedence() < precAtom {
		e = "(" + e + ")"
	}
	return b + "**" + e
}

func (p *Pow) LaTeX() string {
	base := p.base.LaTeX()
	if p.base.precedence() <= precPow {
		base = `\left(` + base + `\right)`
	}
	if e, ok := p.exp.(*Num); ok && !e.float {
		switch {
		case e.isNegOne():
			return `\frac{1}{` + p.base.LaTeX() + `}`
		case e.sign() < 0:
			return `\frac{1}{` + Power(p.base, numNeg(e)).LaTeX() + `}`
		case e.val.Cmp(ratHalf) == 0:
			return `\sqrt{` + p.base.LaTeX() + `}`
		}
	}
	return base + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func equalAll(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
