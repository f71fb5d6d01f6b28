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

// curriedBinaryOps rewrite via gamma(gamma(op, L), R), per spec.md §4.1.
var curriedBinaryOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "**": true, "aug": true,
}

// directBinaryOps stay as a direct binary node; the flattener consumes
// them as a single instruction instead of a curried application pair.
var directBinaryOps = map[string]bool{
	"&": true, "or": true, "eq": true, "ne": true,
	"gr": true, "ge": true, "ls": true, "le": true,
}

// Standardize rewrites a raw AST into the standardized tree of spec.md
// §4.1: a pure, total, idempotent tree-to-tree rewrite grounded on
// original_source/Standardizer/standardizer.py's node-by-node switch.
func Standardize(n *Node) (*Node, *Error) {
	if n == nil {
		return nil, nil
	}
	if n.IsTerminal() {
		return Leaf(n.Label), nil
	}

	// Definitions are rewritten bottom-up: a rec, function_form, within or
	// and child of a definition construct is first standardized to '='.
	switch n.Label {
	case "let", "where", "rec", "within", "and":
		children := append([]*Node{}, n.Children...)
		for i, c := range children {
			if c.Label == "rec" || c.Label == "function_form" || c.Label == "within" || c.Label == "and" {
				sc, err := Standardize(c)
				if err != nil {
					return nil, err
				}
				children[i] = sc
			}
		}
		n = NewNode(n.Label, children...)
	}

	switch {
	case n.Label == "let":
		if len(n.Children) != 2 || n.Children[0].Label != "=" {
			return nil, newErr(ErrStandardize, "let: expected a single '=' binding and a body, got %d children", len(n.Children))
		}
		bind := n.Children[0]
		if len(bind.Children) != 2 {
			return nil, newErr(ErrStandardize, "let: binding '=' must have exactly 2 children")
		}
		x, e1 := bind.Children[0], bind.Children[1]
		e2 := n.Children[1]
		se1, err := Standardize(e1)
		if err != nil {
			return nil, err
		}
		se2, err := Standardize(e2)
		if err != nil {
			return nil, err
		}
		return NewNode("gamma", NewNode("lambda", x.Copy(), se2), se1), nil

	case n.Label == "where":
		if len(n.Children) != 2 || n.Children[1].Label != "=" {
			return nil, newErr(ErrStandardize, "where: expected a body and a single '=' binding, got %d children", len(n.Children))
		}
		e1 := n.Children[0]
		bind := n.Children[1]
		if len(bind.Children) != 2 {
			return nil, newErr(ErrStandardize, "where: binding '=' must have exactly 2 children")
		}
		x, e2 := bind.Children[0], bind.Children[1]
		se1, err := Standardize(e1)
		if err != nil {
			return nil, err
		}
		se2, err := Standardize(e2)
		if err != nil {
			return nil, err
		}
		return NewNode("gamma", NewNode("lambda", x.Copy(), se1), se2), nil

	case n.Label == "function_form":
		if len(n.Children) < 3 {
			return nil, newErr(ErrStandardize, "function_form: expected name, >=1 parameter, and a body, got %d children", len(n.Children))
		}
		p := n.Children[0]
		params := n.Children[1 : len(n.Children)-1]
		body := n.Children[len(n.Children)-1]
		sbody, err := Standardize(body)
		if err != nil {
			return nil, err
		}
		chain := buildLambdaChain(params, sbody)
		return NewNode("=", p.Copy(), chain), nil

	case n.Label == "lambda":
		if len(n.Children) < 2 {
			return nil, newErr(ErrStandardize, "lambda: expected >=1 parameter and a body, got %d children", len(n.Children))
		}
		params := n.Children[:len(n.Children)-1]
		body := n.Children[len(n.Children)-1]
		sbody, err := Standardize(body)
		if err != nil {
			return nil, err
		}
		return buildLambdaChain(params, sbody), nil

	case n.Label == "rec":
		if len(n.Children) != 1 || n.Children[0].Label != "=" {
			return nil, newErr(ErrStandardize, "rec: expected a single '=' binding, got %d children", len(n.Children))
		}
		bind := n.Children[0]
		if len(bind.Children) != 2 {
			return nil, newErr(ErrStandardize, "rec: binding '=' must have exactly 2 children")
		}
		x, e := bind.Children[0], bind.Children[1]
		se, err := Standardize(e)
		if err != nil {
			return nil, err
		}
		return NewNode("=", x.Copy(), NewNode("gamma", Leaf("<Y*>"), NewNode("lambda", x.Copy(), se))), nil

	case n.Label == "within":
		if len(n.Children) != 2 || n.Children[0].Label != "=" || n.Children[1].Label != "=" {
			return nil, newErr(ErrStandardize, "within: expected two '=' bindings, got %d children", len(n.Children))
		}
		b1, b2 := n.Children[0], n.Children[1]
		if len(b1.Children) != 2 || len(b2.Children) != 2 {
			return nil, newErr(ErrStandardize, "within: each binding must have exactly 2 children")
		}
		x1, e1 := b1.Children[0], b1.Children[1]
		x2, e2 := b2.Children[0], b2.Children[1]
		se1, err := Standardize(e1)
		if err != nil {
			return nil, err
		}
		se2, err := Standardize(e2)
		if err != nil {
			return nil, err
		}
		return NewNode("=", x2.Copy(), NewNode("gamma", NewNode("lambda", x1.Copy(), se2), se1)), nil

	case n.Label == "and":
		if len(n.Children) < 2 {
			return nil, newErr(ErrStandardize, "and: expected >=2 '=' bindings, got %d children", len(n.Children))
		}
		xs := make([]*Node, len(n.Children))
		es := make([]*Node, len(n.Children))
		for i, bind := range n.Children {
			if bind.Label != "=" || len(bind.Children) != 2 {
				return nil, newErr(ErrStandardize, "and: every child must be an '=' binding with 2 children")
			}
			xs[i] = bind.Children[0].Copy()
			se, err := Standardize(bind.Children[1])
			if err != nil {
				return nil, err
			}
			es[i] = se
		}
		return NewNode("=", NewNode("tau", xs...), NewNode("tau", es...)), nil

	case n.Label == "->":
		if len(n.Children) != 3 {
			return nil, newErr(ErrStandardize, "->: expected 3 children (condition, then, else), got %d", len(n.Children))
		}
		b, t, e := n.Children[0], n.Children[1], n.Children[2]
		sb, err := Standardize(b)
		if err != nil {
			return nil, err
		}
		st, err := Standardize(t)
		if err != nil {
			return nil, err
		}
		se, err := Standardize(e)
		if err != nil {
			return nil, err
		}
		return NewNode("gamma", NewNode("gamma", NewNode("gamma", Leaf("->"), sb), st), se), nil

	case n.Label == "@":
		if len(n.Children) != 3 {
			return nil, newErr(ErrStandardize, "@: expected 3 children (E1, name, E2), got %d", len(n.Children))
		}
		e1, name, e2 := n.Children[0], n.Children[1], n.Children[2]
		se1, err := Standardize(e1)
		if err != nil {
			return nil, err
		}
		se2, err := Standardize(e2)
		if err != nil {
			return nil, err
		}
		return NewNode("gamma", NewNode("gamma", name.Copy(), se1), se2), nil

	case curriedBinaryOps[n.Label]:
		if len(n.Children) != 2 {
			return nil, newErr(ErrStandardize, "%s: expected 2 operands, got %d", n.Label, len(n.Children))
		}
		l, err := Standardize(n.Children[0])
		if err != nil {
			return nil, err
		}
		r, err := Standardize(n.Children[1])
		if err != nil {
			return nil, err
		}
		return NewNode("gamma", NewNode("gamma", Leaf(n.Label), l), r), nil

	case directBinaryOps[n.Label]:
		if len(n.Children) != 2 {
			return nil, newErr(ErrStandardize, "%s: expected 2 operands, got %d", n.Label, len(n.Children))
		}
		l, err := Standardize(n.Children[0])
		if err != nil {
			return nil, err
		}
		r, err := Standardize(n.Children[1])
		if err != nil {
			return nil, err
		}
		return NewNode(n.Label, l, r), nil

	case n.Label == "not" || n.Label == "neg":
		if len(n.Children) != 1 {
			return nil, newErr(ErrStandardize, "%s: expected 1 operand, got %d", n.Label, len(n.Children))
		}
		arg, err := Standardize(n.Children[0])
		if err != nil {
			return nil, err
		}
		return NewNode("gamma", Leaf(n.Label), arg), nil

	default:
		if n.IsTerminal() {
			return Leaf(n.Label), nil
		}
		children := make([]*Node, len(n.Children))
		for i, c := range n.Children {
			sc, err := Standardize(c)
			if err != nil {
				return nil, err
			}
			children[i] = sc
		}
		return NewNode(n.Label, children...), nil
	}
}

// buildLambdaChain nests a multi-parameter lambda into single-parameter
// lambdas, innermost body last: lambda(V1, lambda(V2, ... lambda(Vn, E))).
func buildLambdaChain(params []*Node, body *Node) *Node {
	result := body
	for i := len(params) - 1; i >= 0; i-- {
		result = NewNode("lambda", params[i].Copy(), result)
	}
	return result
}
