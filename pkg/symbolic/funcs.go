package symbolic

import "fmt"

// Func is an application of an elementary function to one argument.
type Func struct {
	name string
	arg  Expr
}

// Supported function names.
const (
	FuncSin = "sin"
	FuncCos = "cos"
	FuncExp = "exp"
	FuncLog = "log"
)

var functions = map[string]func(Expr) Expr{
	FuncSin: Sin,
	FuncCos: Cos,
	FuncExp: Exp,
	FuncLog: Log,
}

// Apply calls the named function on arg.
func Apply(name string, arg Expr) (Expr, error) {
	fn, ok := functions[name]
	if !ok {
		return nil, fmt.Errorf("unknown function %q", name)
	}
	return fn(arg), nil
}

// IsFunction reports whether name is a supported function.
func IsFunction(name string) bool {
	_, ok := functions[name]
	return ok
}

// Name returns the function name.
func (f *Func) Name() string { return f.name }

// Arg returns the argument.
func (f *Func) Arg() Expr { return f.arg }

func Sin(arg Expr) Expr {
	if isExactZero(arg) {
		return Int(0)
	}
	return &Func{name: FuncSin, arg: arg}
}

func Cos(arg Expr) Expr {
	if isExactZero(arg) {
		return Int(1)
	}
	return &Func{name: FuncCos, arg: arg}
}

func Exp(arg Expr) Expr {
	if isExactZero(arg) {
		return Int(1)
	}
	if l, ok := arg.(*Func); ok && l.name == FuncLog {
		return l.arg
	}
	return &Func{name: FuncExp, arg: arg}
}

func Log(arg Expr) Expr {
	if n, ok := arg.(*Num); ok && n.isOne() && !n.float {
		return Int(0)
	}
	return &Func{name: FuncLog, arg: arg}
}

func isExactZero(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.isZero() && !n.float
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	if f.name == FuncExp {
		return "e^{" + f.arg.LaTeX() + "}"
	}
	return `\` + f.name + `{\left(` + f.arg.LaTeX() + ` \right)}`
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) precedence() int { return precAtom }
