/*
Package symbolic is a small symbolic math kernel for right-hand sides of
first-order differential equations.

Expressions are immutable trees of exact rational numbers (math/big.Rat),
symbols, sums, products, powers and the elementary functions sin, cos, exp
and log. Constructors evaluate eagerly, so parsing "x + x" yields 2*x and
"2**10" yields 1024. Integer powers of rationals are computed exactly; a tower
such as 9**9**9**9 therefore never finishes and must only be parsed inside an
isolated worker (see pkg/compiler).

The parser accepts the arithmetic subset of Python: + - * / **, unary signs,
parentheses, integer and decimal literals, and calls of the supported
functions. Variables are passed explicitly to NewParser.

	p := symbolic.NewParser("x", "y")
	expr, err := p.Parse("x**2 - sin(y)")
*/
package symbolic
