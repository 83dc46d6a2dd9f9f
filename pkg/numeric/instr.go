package numeric

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Op is an instruction opcode.
type Op uint8

const (
	OpConst Op = iota + 1
	OpVar
	OpAdd
	OpMul
	OpPow
	OpRecip
	OpSin
	OpCos
	OpExp
	OpLog
)

var opNames = map[Op]string{
	OpConst: "const",
	OpVar:   "var",
	OpAdd:   "add",
	OpMul:   "mul",
	OpPow:   "pow",
	OpRecip: "recip",
	OpSin:   "sin",
	OpCos:   "cos",
	OpExp:   "exp",
	OpLog:   "log",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "op(" + strconv.Itoa(int(o)) + ")"
}

// Instr is one stack machine instruction.
type Instr struct {
	Op    Op
	Value float64 // OpConst
	Index int     // OpVar
	Arity int     // OpAdd, OpMul
}

func (in Instr) pops() (int, error) {
	switch in.Op {
	case OpConst, OpVar:
		return 0, nil
	case OpAdd, OpMul:
		if in.Arity < 2 {
			return 0, fmt.Errorf("%s needs at least two operands, got %d", in.Op, in.Arity)
		}
		return in.Arity, nil
	case OpPow:
		return 2, nil
	case OpRecip, OpSin, OpCos, OpExp, OpLog:
		return 1, nil
	}
	return 0, fmt.Errorf("unknown opcode %d", in.Op)
}

type instrJSON struct {
	Op    string `json:"op"`
	Value string `json:"value,omitempty"`
	Index int    `json:"index,omitempty"`
	Arity int    `json:"arity,omitempty"`
}

// MarshalJSON encodes constants as strings so infinities survive.
func (in Instr) MarshalJSON() ([]byte, error) {
	j := instrJSON{Op: in.Op.String(), Index: in.Index, Arity: in.Arity}
	if in.Op == OpConst {
		j.Value = strconv.FormatFloat(in.Value, 'g', -1, 64)
	}
	return json.Marshal(j)
}

func (in *Instr) UnmarshalJSON(data []byte) error {
	var j instrJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	op, ok := opByName[j.Op]
	if !ok {
		return fmt.Errorf("unknown opcode %q", j.Op)
	}
	*in = Instr{Op: op, Index: j.Index, Arity: j.Arity}
	if op == OpConst {
		v, err := strconv.ParseFloat(j.Value, 64)
		if err != nil {
			return fmt.Errorf("constant %q: %w", j.Value, err)
		}
		in.Value = v
	}
	return nil
}

var opByName = func() map[string]Op {
	m := make(map[string]Op, len(opNames))
	for op, name := range opNames {
		m[name] = op
	}
	return m
}()

type programJSON struct {
	Vars []string `json:"vars"`
	Code []Instr  `json:"code"`
}

// MarshalJSON encodes the program.
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(programJSON{Vars: p.vars, Code: p.code})
}

// UnmarshalJSON decodes and verifies a program.
func (p *Program) UnmarshalJSON(data []byte) error {
	var j programJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	q := Program{vars: j.Vars, code: j.Code}
	if err := q.verify(); err != nil {
		return fmt.Errorf("invalid program: %w", err)
	}
	*p = q
	return nil
}
