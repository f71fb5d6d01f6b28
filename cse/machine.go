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
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/google/uuid"
)

// StepCap is the safety trip of spec.md §4.3: a run that takes more steps
// than this is assumed to be a runaway loop rather than legitimate work.
const StepCap = 100000

// Machine is the CSE machine of spec.md §4.3: a control tape C, a value
// stack S, and a tree of environments reached through the append-only
// Envs vector. C and S are backed by gods' arraystack, the same
// container family npillmayer-gorgo reaches for when it needs an ordered
// LIFO/ordered structure around its own table construction.
type Machine struct {
	C     *arraystack.Stack
	S     *arraystack.Stack
	Envs  *Envs
	DT    *DeltaTable
	Cur   int
	RunID uuid.UUID
	Steps int
}

// NewMachine initializes a machine against dt: e0 plus builtins, δ0
// pushed onto C in reverse order so its first instruction is on top.
func NewMachine(dt *DeltaTable) *Machine {
	envs := NewEnvs()
	InstallBuiltins(envs, 0)
	m := &Machine{
		C:     arraystack.New(),
		S:     arraystack.New(),
		Envs:  envs,
		DT:    dt,
		Cur:   0,
		RunID: uuid.New(),
	}
	m.pushControls(dt.Deltas[0])
	return m
}

func (m *Machine) pushControls(instrs []Control) {
	for i := len(instrs) - 1; i >= 0; i-- {
		m.C.Push(instrs[i])
	}
}

func (m *Machine) popControl() (Control, bool) {
	v, ok := m.C.Pop()
	if !ok {
		return Control{}, false
	}
	return v.(Control), true
}

func (m *Machine) popValue() (Value, *Error) {
	v, ok := m.S.Pop()
	if !ok {
		return Value{}, newErr(ErrRange, "stack underflow")
	}
	return v.(Value), nil
}

func (m *Machine) pushValue(v Value) {
	m.S.Push(v)
}

// Done reports whether the control tape is empty (spec.md §4.3
// termination condition).
func (m *Machine) Done() bool {
	return m.C.Empty()
}

// Result returns the top of S, the program result at termination.
func (m *Machine) Result() (Value, *Error) {
	v, ok := m.S.Peek()
	if !ok {
		return Value{}, newErr(ErrRange, "stack is empty at program end")
	}
	return v.(Value), nil
}

// nextInstr pops the next control instruction and applies the step-cap
// check, without dispatching it. ok is false once C is empty; err is set
// when the step cap trips (instr is not meaningful in that case).
func (m *Machine) nextInstr() (instr Control, ok bool, err *Error) {
	instr, ok = m.popControl()
	if !ok {
		return Control{}, false, nil
	}
	m.Steps++
	if m.Steps > StepCap {
		top, _ := m.Result()
		return instr, true, newErr(ErrResource, "step cap exceeded; stack top was %s", FormatStackValue(top))
	}
	return instr, true, nil
}

// Step pops and executes a single control instruction.
func (m *Machine) Step() *Error {
	instr, ok, err := m.nextInstr()
	if !ok {
		return nil
	}
	if err != nil {
		return err
	}
	return m.dispatch(instr)
}

func (m *Machine) dispatch(instr Control) *Error {
	switch instr.Op {
	case OpInt:
		m.pushValue(IntValue(instr.IntVal))
	case OpStr:
		m.pushValue(StrValue(instr.Name))
	case OpTrue:
		m.pushValue(BoolValue(true))
	case OpFalse:
		m.pushValue(BoolValue(false))
	case OpDummy:
		m.pushValue(DummyValue())
	case OpNilTuple:
		m.pushValue(emptyTuple)
	case OpYStar:
		m.pushValue(YStarValue())
	case OpOperatorValue:
		m.pushValue(OperatorValue(instr.Name))

	case OpIdent:
		v, err := m.Envs.Lookup(m.Cur, instr.Name)
		if err != nil {
			return err
		}
		m.pushValue(v)

	case OpLambda:
		m.pushValue(ClosureValue(Closure{Params: instr.Params, BodyDelta: instr.IntVal, DefiningEnv: m.Cur}))

	case OpTau:
		n := instr.IntVal
		vals := make([]Value, n)
		for i := 0; i < n; i++ {
			v, err := m.popValue()
			if err != nil {
				return newErr(ErrRange, "stack underflow building τ%d", n)
			}
			vals[i] = v
		}
		m.pushValue(TupleValue(vals))

	case OpGamma:
		return m.applyGamma()

	case OpBeta:
		return m.applyBeta()

	case OpDelta:
		return newErr(ErrFlatten, "δ%d marker reached outside β dispatch", instr.IntVal)

	case OpEnvRemove:
		m.Cur = m.Envs.Remove(instr.IntVal)

	case OpBinaryOp:
		r, err := m.popValue()
		if err != nil {
			return newErr(ErrRange, "stack underflow for operator %s", instr.Name)
		}
		l, err := m.popValue()
		if err != nil {
			return newErr(ErrRange, "stack underflow for operator %s", instr.Name)
		}
		res, aerr := ApplyBinary(instr.Name, l, r)
		if aerr != nil {
			return aerr
		}
		m.pushValue(res)

	case OpUnaryOp:
		a, err := m.popValue()
		if err != nil {
			return newErr(ErrRange, "stack underflow for operator %s", instr.Name)
		}
		res, aerr := ApplyUnary(instr.Name, a)
		if aerr != nil {
			return aerr
		}
		m.pushValue(res)

	default:
		return newErr(ErrFlatten, "unknown control instruction")
	}
	return nil
}

func (m *Machine) applyGamma() *Error {
	f, err := m.popValue()
	if err != nil {
		return newErr(ErrRange, "stack underflow applying γ")
	}
	a, err := m.popValue()
	if err != nil {
		return newErr(ErrRange, "stack underflow applying γ")
	}

	switch f.Kind {
	case VBuiltin:
		return m.applyBuiltin(f.Name, a)

	case VOperator:
		return m.applyOperatorValue(f.Name, a)

	case VTuple:
		if a.Kind != VInt {
			return newErr(ErrType, "tuple selection requires an integer index")
		}
		if a.Int < 1 || a.Int > len(f.Tuple) {
			return newErr(ErrRange, "tuple index %d out of bounds (length %d)", a.Int, len(f.Tuple))
		}
		m.pushValue(f.Tuple[a.Int-1])

	case VYStar:
		if a.Kind != VClosure {
			return newErr(ErrType, "<Y*> requires a closure")
		}
		m.pushValue(EtaValue(Eta{Closure: a.Closure}))

	case VEta:
		return m.applyEta(f.Eta.Closure, f, a)

	case VClosure:
		return m.applyClosure(f.Closure, a)

	default:
		return newErr(ErrType, "cannot apply a non-callable value")
	}
	return nil
}

func (m *Machine) applyBuiltin(name string, a Value) *Error {
	decl, ok := LookupBuiltin(name)
	if !ok {
		return newErr(ErrName, "unknown builtin %q", name)
	}
	if IsCurriedBuiltin(name) {
		b, err := m.popValue()
		if err != nil {
			return newErr(ErrRange, "builtin %s missing second argument", name)
		}
		m.popControl() // discard the leftover partial-application marker
		res, aerr := decl.Fn(a, b)
		if aerr != nil {
			return aerr
		}
		m.pushValue(res)
		return nil
	}
	res, aerr := decl.Fn(a)
	if aerr != nil {
		return aerr
	}
	m.pushValue(res)
	return nil
}

// applyOperatorValue handles an operator symbol reached as a plain
// callable value — the naive/-flat flattening path, which relies on γ to
// apply operators exactly like a curried builtin (spec.md §9).
func (m *Machine) applyOperatorValue(name string, a Value) *Error {
	if flattenCurriedUnary[name] {
		res, err := ApplyUnary(name, a)
		if err != nil {
			return err
		}
		m.pushValue(res)
		return nil
	}
	b, err := m.popValue()
	if err != nil {
		return newErr(ErrRange, "operator %s missing second argument", name)
	}
	m.popControl() // discard the leftover partial-application marker
	res, aerr := ApplyBinary(name, a, b)
	if aerr != nil {
		return aerr
	}
	m.pushValue(res)
	return nil
}

func (m *Machine) applyEta(closure Closure, self Value, arg Value) *Error {
	if len(closure.Params) == 0 {
		return newErr(ErrFlatten, "eta closure has no parameter to bind")
	}
	eNew := m.Envs.Alloc(closure.DefiningEnv)
	m.Envs.Bind(eNew, closure.Params[0], self)
	body, err := m.DT.Get(closure.BodyDelta)
	if err != nil {
		return err
	}
	m.C.Push(Control{Op: OpGamma})
	m.C.Push(Control{Op: OpEnvRemove, IntVal: eNew})
	m.pushControls(body)
	m.pushValue(arg)
	m.Cur = eNew
	return nil
}

func (m *Machine) applyClosure(closure Closure, a Value) *Error {
	eNew := m.Envs.Alloc(closure.DefiningEnv)
	if len(closure.Params) == 1 {
		m.Envs.Bind(eNew, closure.Params[0], a)
	} else {
		if a.Kind != VTuple || len(a.Tuple) != len(closure.Params) {
			return newErr(ErrType, "closure expects %d arguments, got %s", len(closure.Params), FormatStackValue(a))
		}
		for i, p := range closure.Params {
			m.Envs.Bind(eNew, p, a.Tuple[i])
		}
	}
	body, err := m.DT.Get(closure.BodyDelta)
	if err != nil {
		return err
	}
	m.C.Push(Control{Op: OpEnvRemove, IntVal: eNew})
	m.pushControls(body)
	m.Cur = eNew
	return nil
}

func (m *Machine) applyBeta() *Error {
	cond, err := m.popValue()
	if err != nil {
		return newErr(ErrRange, "stack underflow applying β")
	}
	elseMarker, ok := m.popControl()
	if !ok || elseMarker.Op != OpDelta {
		return newErr(ErrFlatten, "β missing else δ-marker")
	}
	thenMarker, ok := m.popControl()
	if !ok || thenMarker.Op != OpDelta {
		return newErr(ErrFlatten, "β missing then δ-marker")
	}
	if cond.Kind != VBool {
		return newErr(ErrValue, "β requires a truth value")
	}
	target := elseMarker.IntVal
	if cond.Bool {
		target = thenMarker.IntVal
	}
	instrs, derr := m.DT.Get(target)
	if derr != nil {
		return derr
	}
	m.pushControls(instrs)
	return nil
}

// Run executes dt to completion and returns the final stack top.
func Run(dt *DeltaTable) (Value, *Error) {
	m := NewMachine(dt)
	for !m.Done() {
		if err := m.Step(); err != nil {
			return Value{}, err
		}
	}
	return m.Result()
}
