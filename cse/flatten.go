/*
Copyright (C) 2024  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package cse

import "strings"

// COp tags a single control-tape instruction, per spec.md §3's "Control
// item" enumeration.
type COp int

const (
	OpInt COp = iota
	OpStr
	OpTrue
	OpFalse
	OpDummy
	OpNilTuple
	OpYStar
	OpIdent
	OpOperatorValue // an operator symbol pushed as a plain value (naive flattening path)
	OpLambda
	OpTau
	OpGamma
	OpBeta
	OpDelta
	OpEnvRemove
	OpBinaryOp
	OpUnaryOp
)

// Control is one instruction of a δ control structure.
type Control struct {
	Op     COp
	Name   string   // operator symbol, identifier name, or string literal content
	IntVal int      // integer literal; tau arity; delta id; env id (meaning depends on Op)
	Params []string // λ parameter names, in order
}

// DeltaTable maps δ ids to their instruction sequences. δ0 is the entry
// point; ids are allocated densely starting at 1 by Flatten*.
type DeltaTable struct {
	Deltas [][]Control
}

func (dt *DeltaTable) alloc() int {
	id := len(dt.Deltas)
	dt.Deltas = append(dt.Deltas, nil)
	return id
}

// Get returns the instructions for δid, or an internal-invariant error if
// id was never allocated — per spec.md §7 this should be unreachable given
// well-formed standardized input.
func (dt *DeltaTable) Get(id int) ([]Control, *Error) {
	if id < 0 || id >= len(dt.Deltas) {
		return nil, newErr(ErrFlatten, "reference to undefined δ%d", id)
	}
	return dt.Deltas[id], nil
}

// flattenCurriedBinary is the operator set the optimized flattener
// recognizes inside a curried gamma(gamma(op,X),Y) shape (spec.md §4.2
// rule 1). It is deliberately wider than the standardizer's own
// curriedBinaryOps since @ and nested standardizations can produce a
// curried relational/equality application too.
var flattenCurriedBinary = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "**": true,
	"eq": true, "ne": true, "gr": true, "ge": true, "ls": true, "le": true,
	"aug": true,
}

var flattenCurriedUnary = map[string]bool{"neg": true, "not": true}

type flattener struct {
	dt        *DeltaTable
	optimized bool
}

// FlattenOptimized compiles a standardized tree with the operator- and
// conditional-recognizing rules of spec.md §4.2 (the "-optflat" dump).
func FlattenOptimized(root *Node) (*DeltaTable, *Error) {
	return runFlatten(root, true)
}

// FlattenPlain compiles a standardized tree without the curried-operator
// shortcut recognition (the "-flat" dump): every gamma other than the
// conditional shape is treated as a generic application, relying on the
// CSE machine's γ rule to apply operator symbols the same way it applies
// curried builtins. Conditionals become β with then/else δs in both modes.
// This supplements spec.md §6 with a second, naive control-structure
// view for comparison against the optimized one; both execute to the
// same result.
func FlattenPlain(root *Node) (*DeltaTable, *Error) {
	return runFlatten(root, false)
}

func runFlatten(root *Node, optimized bool) (*DeltaTable, *Error) {
	f := &flattener{dt: &DeltaTable{Deltas: [][]Control{nil}}, optimized: optimized}
	instrs, err := f.flatten(root)
	if err != nil {
		return nil, err
	}
	f.dt.Deltas[0] = instrs
	return f.dt, nil
}

func (f *flattener) flatten(n *Node) ([]Control, *Error) {
	switch {
	case n.IsTerminal():
		return f.flattenTerminal(n)
	case n.Label == "gamma":
		return f.flattenGamma(n)
	case n.Label == "lambda":
		return f.flattenLambda(n)
	case n.Label == "tau":
		return f.flattenTau(n)
	case directBinaryOps[n.Label]:
		return f.flattenDirectBinary(n)
	case n.Label == "=":
		if len(n.Children) != 2 {
			return nil, newErr(ErrFlatten, "'=' node must have exactly 2 children, got %d", len(n.Children))
		}
		return f.flatten(n.Children[1])
	default:
		return nil, newErr(ErrFlatten, "cannot flatten node with label %q", n.Label)
	}
}

func (f *flattener) flattenTerminal(n *Node) ([]Control, *Error) {
	kind, val, ok := SplitToken(n.Label)
	if ok {
		switch kind {
		case "ID":
			return []Control{{Op: OpIdent, Name: val}}, nil
		case "INT":
			iv, err := parseIntLiteral(val)
			if err != nil {
				return nil, err
			}
			return []Control{{Op: OpInt, IntVal: iv}}, nil
		case "STR":
			return []Control{{Op: OpStr, Name: strings.Trim(val, "'")}}, nil
		default:
			return nil, newErr(ErrFlatten, "unknown terminal token kind %q", kind)
		}
	}

	switch n.Label {
	case "true":
		return []Control{{Op: OpTrue}}, nil
	case "false":
		return []Control{{Op: OpFalse}}, nil
	case "dummy":
		return []Control{{Op: OpDummy}}, nil
	case "<nil>":
		return []Control{{Op: OpNilTuple}}, nil
	case "<Y*>":
		return []Control{{Op: OpYStar}}, nil
	case "()":
		return []Control{{Op: OpNilTuple}}, nil
	default:
		// A bare operator leaf reached generically (plain-flatten mode's
		// decomposition of a curried operator application): push it as a
		// first-class value, letting γ apply it like a curried builtin.
		if flattenCurriedBinary[n.Label] || flattenCurriedUnary[n.Label] || directBinaryOps[n.Label] {
			return []Control{{Op: OpOperatorValue, Name: n.Label}}, nil
		}
		return nil, newErr(ErrFlatten, "unrecognized terminal leaf %q", n.Label)
	}
}

func parseIntLiteral(digits string) (int, *Error) {
	n := 0
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, newErr(ErrFlatten, "malformed integer literal %q", digits)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

func (f *flattener) flattenGamma(n *Node) ([]Control, *Error) {
	if len(n.Children) != 2 {
		return nil, newErr(ErrFlatten, "'gamma' node must have exactly 2 children, got %d", len(n.Children))
	}
	l, r := n.Children[0], n.Children[1]

	if f.optimized {
		// Rule 1: curried binary operator gamma(gamma(op,X),Y).
		if l.Label == "gamma" && len(l.Children) == 2 && l.Children[0].IsTerminal() && flattenCurriedBinary[l.Children[0].Label] {
			op := l.Children[0].Label
			x, y := l.Children[1], r
			fx, err := f.flatten(x)
			if err != nil {
				return nil, err
			}
			fy, err := f.flatten(y)
			if err != nil {
				return nil, err
			}
			out := append(append([]Control{}, fx...), fy...)
			out = append(out, Control{Op: OpBinaryOp, Name: op})
			return out, nil
		}

		// Rule 2: curried unary operator gamma(op,X).
		if l.IsTerminal() && flattenCurriedUnary[l.Label] {
			fx, err := f.flatten(r)
			if err != nil {
				return nil, err
			}
			out := append(append([]Control{}, fx...), Control{Op: OpUnaryOp, Name: l.Label})
			return out, nil
		}
	}

	// Rule 3: conditional gamma(gamma(gamma(->,B),T),E), in both modes.
	if l.Label == "gamma" && len(l.Children) == 2 && l.Children[0].Label == "gamma" &&
		len(l.Children[0].Children) == 2 && l.Children[0].Children[0].Label == "->" {
		b := l.Children[0].Children[1]
		t := l.Children[1]
		e := r
		thenID := f.dt.alloc()
		elseID := f.dt.alloc()
		thenInstrs, err := f.flatten(t)
		if err != nil {
			return nil, err
		}
		f.dt.Deltas[thenID] = thenInstrs
		elseInstrs, err := f.flatten(e)
		if err != nil {
			return nil, err
		}
		f.dt.Deltas[elseID] = elseInstrs
		fb, err := f.flatten(b)
		if err != nil {
			return nil, err
		}
		out := append([]Control{}, fb...)
		out = append(out, Control{Op: OpBeta})
		out = append(out, Control{Op: OpDelta, IntVal: elseID})
		out = append(out, Control{Op: OpDelta, IntVal: thenID})
		return out, nil
	}

	// Rule 4: generic application.
	fr, err := f.flatten(r)
	if err != nil {
		return nil, err
	}
	fl, err := f.flatten(l)
	if err != nil {
		return nil, err
	}
	out := append(append([]Control{}, fr...), fl...)
	out = append(out, Control{Op: OpGamma})
	return out, nil
}

func (f *flattener) flattenLambda(n *Node) ([]Control, *Error) {
	if len(n.Children) != 2 {
		return nil, newErr(ErrFlatten, "'lambda' node must have exactly 2 children, got %d", len(n.Children))
	}
	param, body := n.Children[0], n.Children[1]
	params, err := paramNames(param)
	if err != nil {
		return nil, err
	}
	k := f.dt.alloc()
	instrs, err := f.flatten(body)
	if err != nil {
		return nil, err
	}
	f.dt.Deltas[k] = instrs
	return []Control{{Op: OpLambda, Params: params, IntVal: k}}, nil
}

func (f *flattener) flattenTau(n *Node) ([]Control, *Error) {
	var out []Control
	for i := len(n.Children) - 1; i >= 0; i-- {
		instrs, err := f.flatten(n.Children[i])
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
	}
	out = append(out, Control{Op: OpTau, IntVal: len(n.Children)})
	return out, nil
}

func (f *flattener) flattenDirectBinary(n *Node) ([]Control, *Error) {
	if len(n.Children) != 2 {
		return nil, newErr(ErrFlatten, "%s: expected 2 operands, got %d", n.Label, len(n.Children))
	}
	fl, err := f.flatten(n.Children[0])
	if err != nil {
		return nil, err
	}
	fr, err := f.flatten(n.Children[1])
	if err != nil {
		return nil, err
	}
	out := append(append([]Control{}, fl...), fr...)
	out = append(out, Control{Op: OpBinaryOp, Name: n.Label})
	return out, nil
}

// paramNames extracts the ordered parameter-name list from a lambda's
// parameter subtree: a single <ID:x> leaf, a ","-labeled or "tau"-labeled
// tuple of <ID:x> leaves, or the "()" empty-tuple leaf (a zero-arg lambda,
// encoded with one synthetic unnamed parameter per spec.md §4.2).
func paramNames(param *Node) ([]string, *Error) {
	if param.Label == "()" {
		return []string{""}, nil
	}
	if param.Label == "," || param.Label == "tau" {
		names := make([]string, len(param.Children))
		for i, c := range param.Children {
			_, val, ok := SplitToken(c.Label)
			if !ok {
				return nil, newErr(ErrStandardize, "lambda parameter tuple element %q is not an identifier", c.Label)
			}
			names[i] = val
		}
		return names, nil
	}
	_, val, ok := SplitToken(param.Label)
	if !ok {
		return nil, newErr(ErrStandardize, "lambda parameter %q is not an identifier", param.Label)
	}
	return []string{val}, nil
}
