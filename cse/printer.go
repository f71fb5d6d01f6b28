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
	"strconv"
	"strings"
)

// FormatValue renders v the way Print/print do: tuples as "(a, b, c)",
// strings with \n and \t escapes interpreted, the empty tuple as "nil"
// (spec.md §4.5).
func FormatValue(v Value) string {
	switch v.Kind {
	case VInt:
		return strconv.Itoa(v.Int)
	case VStr:
		return interpretEscapes(v.Str)
	case VBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case VDummy:
		return "dummy"
	case VTuple:
		if len(v.Tuple) == 0 {
			return "nil"
		}
		parts := make([]string, len(v.Tuple))
		for i, e := range v.Tuple {
			parts[i] = FormatValue(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case VClosure, VEta:
		return "<function>"
	case VBuiltin, VOperator:
		return v.Name
	case VYStar:
		return "<Y*>"
	default:
		return ""
	}
}

func interpretEscapes(s string) string {
	var b strings.Builder
	r := []rune(s)
	for i := 0; i < len(r); i++ {
		if r[i] == '\\' && i+1 < len(r) {
			switch r[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case 't':
				b.WriteByte('\t')
				i++
				continue
			}
		}
		b.WriteRune(r[i])
	}
	return b.String()
}

// FormatControl renders a single control item the way -flat/-optflat/-cse
// print it.
func FormatControl(c Control) string {
	switch c.Op {
	case OpInt:
		return strconv.Itoa(c.IntVal)
	case OpStr:
		return "'" + c.Name + "'"
	case OpTrue:
		return "true"
	case OpFalse:
		return "false"
	case OpDummy:
		return "dummy"
	case OpNilTuple:
		return "nil"
	case OpYStar:
		return "<Y*>"
	case OpIdent:
		return c.Name
	case OpOperatorValue:
		return c.Name
	case OpLambda:
		return "λ" + strings.Join(c.Params, ",") + "^" + strconv.Itoa(c.IntVal)
	case OpTau:
		return "τ" + strconv.Itoa(c.IntVal)
	case OpGamma:
		return "γ"
	case OpBeta:
		return "β"
	case OpDelta:
		return "δ" + strconv.Itoa(c.IntVal)
	case OpEnvRemove:
		return "env_remove_" + strconv.Itoa(c.IntVal)
	case OpBinaryOp, OpUnaryOp:
		return c.Name
	default:
		return "?"
	}
}

// FormatDeltaTable renders every δ in dt, one per line, in the
// "δk = tok1 tok2 …" format of spec.md §6.
func FormatDeltaTable(dt *DeltaTable) string {
	var b strings.Builder
	for k, instrs := range dt.Deltas {
		b.WriteString("δ")
		b.WriteString(strconv.Itoa(k))
		b.WriteString(" = ")
		toks := make([]string, len(instrs))
		for i, c := range instrs {
			toks[i] = FormatControl(c)
		}
		b.WriteString(strings.Join(toks, " "))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatStackValue renders a stack value for -cse trace lines. Unlike
// FormatValue, strings keep their quotes and escapes are not interpreted,
// so the trace is a faithful dump rather than user-facing output.
func FormatStackValue(v Value) string {
	switch v.Kind {
	case VStr:
		return "'" + v.Str + "'"
	case VTuple:
		parts := make([]string, len(v.Tuple))
		for i, e := range v.Tuple {
			parts[i] = FormatStackValue(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case VClosure:
		return "Closure(" + strings.Join(v.Closure.Params, ",") + "^" + strconv.Itoa(v.Closure.BodyDelta) + "@" + strconv.Itoa(v.Closure.DefiningEnv) + ")"
	case VEta:
		return "Eta(" + FormatStackValue(ClosureValue(v.Eta.Closure)) + ")"
	default:
		return FormatValue(v)
	}
}
