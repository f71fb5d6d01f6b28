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

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/google/btree"
)

// Declaration describes one builtin, following the shape of the
// teacher's scm.Declaration/Declare pattern in scm/declare.go, adapted
// to this machine's fixed unary/binary builtin table (spec.md §4.5).
type Declaration struct {
	Name    string
	Desc    string
	MinArgs int
	MaxArgs int
	Fn      func(args ...Value) (Value, *Error)
}

func lessDeclaration(a, b *Declaration) bool { return a.Name < b.Name }

var registry = btree.NewG[*Declaration](32, lessDeclaration)

func declare(d *Declaration) {
	registry.ReplaceOrInsert(d)
}

// Stdout is where Print/print write; tests may redirect it.
var Stdout io.Writer = os.Stdout

func init() {
	declare(&Declaration{Name: "Print", Desc: "writes a value to stdout", MinArgs: 1, MaxArgs: 1, Fn: builtinPrint})
	declare(&Declaration{Name: "print", Desc: "alias of Print", MinArgs: 1, MaxArgs: 1, Fn: builtinPrint})
	declare(&Declaration{Name: "Isinteger", Desc: "true iff argument is an integer", MinArgs: 1, MaxArgs: 1, Fn: typePredicate(func(v Value) bool { return v.Kind == VInt })})
	declare(&Declaration{Name: "Isstring", Desc: "true iff argument is a string", MinArgs: 1, MaxArgs: 1, Fn: typePredicate(func(v Value) bool { return v.Kind == VStr })})
	declare(&Declaration{Name: "Istuple", Desc: "true iff argument is a tuple", MinArgs: 1, MaxArgs: 1, Fn: typePredicate(func(v Value) bool { return v.Kind == VTuple })})
	declare(&Declaration{Name: "Isdummy", Desc: "true iff argument is dummy", MinArgs: 1, MaxArgs: 1, Fn: typePredicate(func(v Value) bool { return v.Kind == VDummy })})
	declare(&Declaration{Name: "Istruthvalue", Desc: "true iff argument is true or false", MinArgs: 1, MaxArgs: 1, Fn: typePredicate(func(v Value) bool { return v.Kind == VBool })})
	declare(&Declaration{Name: "Isfunction", Desc: "true iff argument is a closure or eta", MinArgs: 1, MaxArgs: 1, Fn: typePredicate(Value.IsFunction)})
	declare(&Declaration{Name: "Stem", Desc: "first character of a string", MinArgs: 1, MaxArgs: 1, Fn: builtinStem})
	declare(&Declaration{Name: "Stern", Desc: "string remainder after the first character", MinArgs: 1, MaxArgs: 1, Fn: builtinStern})
	declare(&Declaration{Name: "Conc", Desc: "concatenates two strings", MinArgs: 2, MaxArgs: 2, Fn: builtinConc})
	declare(&Declaration{Name: "Order", Desc: "length of a string or tuple", MinArgs: 1, MaxArgs: 1, Fn: builtinOrder})
	declare(&Declaration{Name: "Null", Desc: "true iff argument is empty", MinArgs: 1, MaxArgs: 1, Fn: builtinNull})
	declare(&Declaration{Name: "ItoS", Desc: "integer to string", MinArgs: 1, MaxArgs: 1, Fn: builtinItoS})
	declare(&Declaration{Name: "aug", Desc: "appends an element to a tuple", MinArgs: 2, MaxArgs: 2, Fn: builtinAug})
}

// LookupBuiltin finds a Declaration by name.
func LookupBuiltin(name string) (*Declaration, bool) {
	d, ok := registry.Get(&Declaration{Name: name})
	return d, ok
}

// IsCurriedBuiltin reports whether name's γ-dispatch must pop a second
// argument and discard a sentinel control instruction before invoking,
// per spec.md §4.3 step 5 and §9's "Partial binary builtins" note.
func IsCurriedBuiltin(name string) bool {
	d, ok := LookupBuiltin(name)
	return ok && d.MinArgs == 2
}

// InstallBuiltins binds every declared builtin name into env (normally
// e0), the way scm.Declare binds into the root *scm.Env.
func InstallBuiltins(envs *Envs, env int) {
	registry.Ascend(func(d *Declaration) bool {
		envs.Bind(env, d.Name, BuiltinValue(d.Name))
		return true
	})
}

func typePredicate(pred func(Value) bool) func(...Value) (Value, *Error) {
	return func(args ...Value) (Value, *Error) {
		return BoolValue(pred(args[0])), nil
	}
}

func builtinPrint(args ...Value) (Value, *Error) {
	fmt.Fprint(Stdout, FormatValue(args[0]))
	return args[0], nil
}

func builtinStem(args ...Value) (Value, *Error) {
	s := args[0]
	if s.Kind != VStr {
		return Value{}, newErr(ErrType, "Stem requires a string")
	}
	if s.Str == "" {
		return StrValue(""), nil
	}
	r := []rune(s.Str)
	return StrValue(string(r[0])), nil
}

func builtinStern(args ...Value) (Value, *Error) {
	s := args[0]
	if s.Kind != VStr {
		return Value{}, newErr(ErrType, "Stern requires a string")
	}
	if s.Str == "" {
		return StrValue(""), nil
	}
	r := []rune(s.Str)
	return StrValue(string(r[1:])), nil
}

func builtinConc(args ...Value) (Value, *Error) {
	a, b := args[0], args[1]
	if a.Kind != VStr || b.Kind != VStr {
		return Value{}, newErr(ErrType, "Conc requires two strings")
	}
	return StrValue(a.Str + b.Str), nil
}

func builtinOrder(args ...Value) (Value, *Error) {
	v := args[0]
	switch v.Kind {
	case VStr:
		return IntValue(len([]rune(v.Str))), nil
	case VTuple:
		return IntValue(len(v.Tuple)), nil
	default:
		return Value{}, newErr(ErrType, "Order requires a string or tuple")
	}
}

func builtinNull(args ...Value) (Value, *Error) {
	return BoolValue(args[0].IsEmpty()), nil
}

func builtinItoS(args ...Value) (Value, *Error) {
	v := args[0]
	if v.Kind != VInt {
		return Value{}, newErr(ErrType, "ItoS requires an integer")
	}
	return StrValue(strconv.Itoa(v.Int)), nil
}

func builtinAug(args ...Value) (Value, *Error) {
	return Aug(args[0], args[1])
}
