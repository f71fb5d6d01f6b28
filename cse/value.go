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

// VKind tags the runtime representation of a Value. The teacher's own
// scm.Scmer packs this into an unsafe 16-byte struct for speed; the CSE
// machine favors a plain tagged struct instead, since the machine's cost
// is dominated by environment/control-tape bookkeeping, not value
// representation (see DESIGN.md).
type VKind int

const (
	VInt VKind = iota
	VStr
	VBool
	VDummy
	VTuple
	VClosure
	VEta
	VBuiltin
	VOperator
	VYStar
)

// Closure is a captured function value: parameter names, body δ id, and
// the id (not pointer) of the environment active when the λ instruction
// ran. Per spec.md §3, the defining environment must outlive the closure.
type Closure struct {
	Params      []string
	BodyDelta   int
	DefiningEnv int
}

// Eta wraps a Closure produced by applying <Y*>, giving it recursive
// self-reference at the next application (spec.md §9).
type Eta struct {
	Closure Closure
}

// Value is a tagged stack/bindings value.
type Value struct {
	Kind    VKind
	Int     int
	Str     string
	Bool    bool
	Tuple   []Value
	Closure Closure
	Eta     Eta
	Name    string // builtin or operator symbol
}

func IntValue(i int) Value         { return Value{Kind: VInt, Int: i} }
func StrValue(s string) Value      { return Value{Kind: VStr, Str: s} }
func BoolValue(b bool) Value       { return Value{Kind: VBool, Bool: b} }
func DummyValue() Value            { return Value{Kind: VDummy} }
func TupleValue(vs []Value) Value  { return Value{Kind: VTuple, Tuple: vs} }
func ClosureValue(c Closure) Value { return Value{Kind: VClosure, Closure: c} }
func EtaValue(e Eta) Value         { return Value{Kind: VEta, Eta: e} }
func BuiltinValue(name string) Value {
	return Value{Kind: VBuiltin, Name: name}
}
func OperatorValue(name string) Value { return Value{Kind: VOperator, Name: name} }
func YStarValue() Value               { return Value{Kind: VYStar} }

var emptyTuple = TupleValue(nil)

// IsCallable reports whether v is a value γ applies as a function per
// spec.md §4.3 step 5 (closure, eta, builtin, operator, or <Y*>). A tuple
// can also appear as F in γ, for selection, and is not counted here.
func (v Value) IsCallable() bool {
	switch v.Kind {
	case VClosure, VEta, VBuiltin, VOperator, VYStar:
		return true
	default:
		return false
	}
}

// IsFunction reports whether v is a closure or eta, for the Isfunction
// builtin predicate (spec.md §4.5).
func (v Value) IsFunction() bool {
	return v.Kind == VClosure || v.Kind == VEta
}

// Equal implements structural equality for eq/ne (spec.md §4.4):
// integers, strings, truth tokens, dummy, the empty tuple, and tuples
// compared elementwise. Functions and operators are never equal to
// anything, including themselves, mirroring the reference's treatment
// of eq/ne as a data-only comparison.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case VInt:
		return v.Int == o.Int
	case VStr:
		return v.Str == o.Str
	case VBool:
		return v.Bool == o.Bool
	case VDummy:
		return true
	case VTuple:
		if len(v.Tuple) != len(o.Tuple) {
			return false
		}
		for i := range v.Tuple {
			if !v.Tuple[i].Equal(o.Tuple[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsEmpty reports whether v is the empty tuple, empty string, or integer
// zero — the general truthiness the Null builtin uses (spec.md §9 Open
// Question 2: this implementation keeps the reference's conflation but
// documents it as a deliberate, not accidental, choice).
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case VTuple:
		return len(v.Tuple) == 0
	case VStr:
		return v.Str == ""
	case VInt:
		return v.Int == 0
	case VDummy:
		return false
	default:
		return false
	}
}
