package symbolic

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"
)

// ErrMalformed is returned by Unmarshal for trees that are not canonical
// expressions.
var ErrMalformed = errors.New("malformed expression tree")

const maxTreeDepth = 4096

type node struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
	Float bool   `json:"float,omitempty"`
	Name  string `json:"name,omitempty"`
	Args  []node `json:"args,omitempty"`
}

func (n *Num) toNode() node  { return node{Type: "num", Value: n.val.RatString(), Float: n.float} }
func (s *Sym) toNode() node  { return node{Type: "sym", Name: s.name} }
func (f *Func) toNode() node { return node{Type: "func", Name: f.name, Args: []node{f.arg.toNode()}} }
func (a *Add) toNode() node  { return node{Type: "add", Args: toNodes(a.terms)} }
func (m *Mul) toNode() node  { return node{Type: "mul", Args: toNodes(m.factors)} }
func (p *Pow) toNode() node  { return node{Type: "pow", Args: []node{p.base.toNode(), p.exp.toNode()}} }

func toNodes(es []Expr) []node {
	out := make([]node, len(es))
	for i, e := range es {
		out[i] = e.toNode()
	}
	return out
}

// Marshal encodes an expression tree as JSON.
func Marshal(e Expr) ([]byte, error) {
	if e == nil {
		return nil, errors.New("marshal nil expression")
	}
	return json.Marshal(e.toNode())
}

// Unmarshal decodes a tree produced by Marshal. The tree is rebuilt as is,
// without simplification.
func Unmarshal(data []byte) (Expr, error) {
	var n node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return fromNode(n, 0)
}

func fromNode(n node, depth int) (Expr, error) {
	if depth > maxTreeDepth {
		return nil, fmt.Errorf("%w: too deep", ErrMalformed)
	}
	args := func(lo, hi int) ([]Expr, error) {
		if len(n.Args) < lo || (hi > 0 && len(n.Args) > hi) {
			return nil, fmt.Errorf("%w: %s with %d arguments", ErrMalformed, n.Type, len(n.Args))
		}
		out := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			e, err := fromNode(a, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	}

	switch n.Type {
	case "num":
		r, ok := new(big.Rat).SetString(n.Value)
		if !ok {
			return nil, fmt.Errorf("%w: number %q", ErrMalformed, n.Value)
		}
		return &Num{val: r, float: n.Float}, nil
	case "sym":
		if n.Name == "" {
			return nil, fmt.Errorf("%w: unnamed symbol", ErrMalformed)
		}
		return Symbol(n.Name), nil
	case "func":
		if !IsFunction(n.Name) {
			return nil, fmt.Errorf("%w: unknown function %q", ErrMalformed, n.Name)
		}
		a, err := args(1, 1)
		if err != nil {
			return nil, err
		}
		return &Func{name: n.Name, arg: a[0]}, nil
	case "add":
		a, err := args(2, 0)
		if err != nil {
			return nil, err
		}
		return &Add{terms: a}, nil
	case "mul":
		a, err := args(2, 0)
		if err != nil {
			return nil, err
		}
		return &Mul{factors: a}, nil
	case "pow":
		a, err := args(2, 2)
		if err != nil {
			return nil, err
		}
		return &Pow{base: a[0], exp: a[1]}, nil
	}
	return nil, fmt.Errorf("%w: node type %q", ErrMalformed, n.Type)
}

// Walk calls fn for e and every subexpression in depth-first order.
func Walk(e Expr, fn func(Expr)) {
	fn(e)
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			Walk(t, fn)
		}
	case *Mul:
		for _, f := range v.factors {
			Walk(f, fn)
		}
	case *Pow:
		Walk(v.base, fn)
		Walk(v.exp, fn)
	case *Func:
		Walk(v.arg, fn)
	}
}

// FreeSymbols returns the sorted names of the variables used in e.
func FreeSymbols(e Expr) []string {
	seen := map[string]bool{}
	Walk(e, func(x Expr) {
		if s, ok := x.(*Sym); ok {
			seen[s.name] = true
		}
	})
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
