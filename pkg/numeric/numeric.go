// Package numeric lowers symbolic expressions to flat stack programs that
// evaluate at float64 precision.
//
// A Program is plain data: it serializes to JSON, so a worker process can
// compile it and hand it back to the caller, who evaluates it without ever
// touching the parser.
package numeric

import (
	"errors"
	"fmt"
	"math"

	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/symbolic"
)

var (
	// ErrDivisionByZero is returned when a denominator evaluates to zero.
	ErrDivisionByZero = fmt.Errorf("%w: division by zero", domain.ErrPointDomain)
	// ErrDomain is returned for arguments outside a function's real domain.
	ErrDomain = fmt.Errorf("%w: math domain error", domain.ErrPointDomain)

	errEmptyStack = errors.New("stack underflow")
)

// Function is a real function of two variables.
type Function interface {
	Eval(x, y float64) (float64, error)
}

// FunctionFunc adapts an ordinary function to Function.
type FunctionFunc func(x, y float64) (float64, error)

// Eval calls f(x, y).
func (f FunctionFunc) Eval(x, y float64) (float64, error) { return f(x, y) }

// Program is a compiled expression.
type Program struct {
	vars  []string
	code  []Instr
	depth int
}

// Vars returns the variable names in argument order.
func (p *Program) Vars() []string { return append([]string(nil), p.vars...) }

// Len returns the number of instructions.
func (p *Program) Len() int { return len(p.code) }

// Compile lowers e to a program over vars. Every free symbol of e must be
// listed in vars.
func Compile(e symbolic.Expr, vars ...string) (*Program, error) {
	index := make(map[string]int, len(vars))
	for i, v := range vars {
		index[v] = i
	}
	p := &Program{vars: append([]string(nil), vars...)}
	if err := p.emit(e, index); err != nil {
		return nil, err
	}
	if err := p.verify(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Program) emit(e symbolic.Expr, index map[string]int) error {
	switch v := e.(type) {
	case *symbolic.Num:
		p.code = append(p.code, Instr{Op: OpConst, Value: v.Float64()})
	case *symbolic.Sym:
		i, ok := index[v.Name()]
		if !ok {
			return fmt.Errorf("unbound variable %q", v.Name())
		}
		p.code = append(p.code, Instr{Op: OpVar, Index: i})
	case *symbolic.Add:
		terms := v.Terms()
		for _, t := range terms {
			if err := p.emit(t, index); err != nil {
				return err
			}
		}
		p.code = append(p.code, Instr{Op: OpAdd, Arity: len(terms)})
	case *symbolic.Mul:
		factors := v.Factors()
		for _, f := range factors {
			if err := p.emit(f, index); err != nil {
				return err
			}
		}
		p.code = append(p.code, Instr{Op: OpMul, Arity: len(factors)})
	case *symbolic.Pow:
		if err := p.emit(v.Base(), index); err != nil {
			return err
		}
		if n, ok := v.Exp().(*symbolic.Num); ok && n.Float64() == -1 {
			p.code = append(p.code, Instr{Op: OpRecip})
			return nil
		}
		if err := p.emit(v.Exp(), index); err != nil {
			return err
		}
		p.code = append(p.code, Instr{Op: OpPow})
	case *symbolic.Func:
		if err := p.emit(v.Arg(), index); err != nil {
			return err
		}
		op, ok := funcOps[v.Name()]
		if !ok {
			return fmt.Errorf("unsupported function %q", v.Name())
		}
		p.code = append(p.code, Instr{Op: op})
	default:
		return fmt.Errorf("unsupported expression %T", e)
	}
	return nil
}

var funcOps = map[string]Op{
	symbolic.FuncSin: OpSin,
	symbolic.FuncCos: OpCos,
	symbolic.FuncExp: OpExp,
	symbolic.FuncLog: OpLog,
}

// verify checks stack discipline and records the maximum depth.
func (p *Program) verify() error {
	depth, peak := 0, 0
	for i, in := range p.code {
		pop, err := in.pops()
		if err != nil {
			return fmt.Errorf("instruction %d: %w", i, err)
		}
		if depth < pop {
			return fmt.Errorf("instruction %d: %w", i, errEmptyStack)
		}
		if in.Op == OpVar && (in.Index < 0 || in.Index >= len(p.vars)) {
			return fmt.Errorf("instruction %d: variable index %d out of range", i, in.Index)
		}
		depth = depth - pop + 1
		if depth > peak {
			peak = depth
		}
	}
	if depth != 1 {
		return fmt.Errorf("program leaves %d values on the stack", depth)
	}
	p.depth = peak
	return nil
}

// Eval evaluates the program with positional arguments.
func (p *Program) Eval(args ...float64) (float64, error) {
	if len(args) != len(p.vars) {
		return 0, fmt.Errorf("program takes %d arguments, got %d", len(p.vars), len(args))
	}
	stack := make([]float64, 0, p.depth)
	for _, in := range p.code {
		switch in.Op {
		case OpConst:
			stack = append(stack, in.Value)
		case OpVar:
			stack = append(stack, args[in.Index])
		case OpAdd, OpMul:
			top := len(stack) - in.Arity
			acc := stack[top]
			for _, v := range stack[top+1:] {
				if in.Op == OpAdd {
					acc += v
				} else {
					acc *= v
				}
			}
			stack = append(stack[:top], acc)
		default:
			n := len(stack) - 1
			if in.Op == OpPow {
				base, exp := stack[n-1], stack[n]
				r, err := pow(base, exp)
				if err != nil {
					return 0, err
				}
				stack = append(stack[:n-1], r)
				continue
			}
			r, err := unary(in.Op, stack[n])
			if err != nil {
				return 0, err
			}
			stack[n] = r
		}
	}
	return stack[0], nil
}

func pow(base, exp float64) (float64, error) {
	if base == 0 && exp < 0 {
		return 0, ErrDivisionByZero
	}
	r := math.Pow(base, exp)
	if math.IsNaN(r) && !math.IsNaN(base) && !math.IsNaN(exp) {
		return 0, ErrDomain
	}
	return r, nil
}

func unary(op Op, v float64) (float64, error) {
	switch op {
	case OpRecip:
		if v == 0 {
			return 0, ErrDivisionByZero
		}
		return 1 / v, nil
	case OpSin:
		return math.Sin(v), nil
	case OpCos:
		return math.Cos(v), nil
	case OpExp:
		return math.Exp(v), nil
	case OpLog:
		if v <= 0 {
			return 0, ErrDomain
		}
		return math.Log(v), nil
	}
	return 0, fmt.Errorf("unknown opcode %d", op)
}

// Func binds a two-variable program as a Function.
type Func struct {
	p *Program
}

// Bind returns p as a Function of (x, y). p must take exactly two variables.
func Bind(p *Program) (*Func, error) {
	if len(p.vars) != 2 {
		return nil, fmt.Errorf("function of two variables required, program takes %d", len(p.vars))
	}
	return &Func{p: p}, nil
}

// Eval evaluates the function at (x, y).
func (f *Func) Eval(x, y float64) (float64, error) { return f.p.Eval(x, y) }

// Program returns the underlying program.
func (f *Func) Program() *Program { return f.p }
