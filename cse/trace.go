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
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// TraceStep is one row of a -cse trace: the instruction about to execute,
// the control tape remaining after it (instruction excluded) and the
// stack just before it runs, and the environment bookkeeping at that
// point (spec.md §6), grounded on
// original_source/cse_machine.py's record_state/print_trace.
type TraceStep struct {
	Instruction string
	Control     []string
	Stack       []string
	CurrentEnv  int
	ActiveEnvs  []int
}

// RunTraced executes dt like Run but additionally records one TraceStep
// per instruction. Each step's Control/Stack snapshot is taken right
// after the instruction is popped off C but before it dispatches,
// matching original_source/CSE_Machine/cse_machine.py's
// `instr = self.control.pop(); self.record_state(instr)` ordering: the
// recorded control excludes the instruction currently executing, and the
// recorded stack is the pre-dispatch state. The returned uuid is the
// Machine's RunID, so callers dumping multiple trace runs (e.g. across
// -watch re-runs) can tell them apart in the header they print ahead of
// FormatTrace's output.
func RunTraced(dt *DeltaTable) ([]TraceStep, Value, uuid.UUID, *Error) {
	m := NewMachine(dt)
	var steps []TraceStep

	for {
		step, ok, err := m.stepTraced()
		if !ok {
			break
		}
		steps = append(steps, step)
		if err != nil {
			return steps, Value{}, m.RunID, err
		}
	}

	res, err := m.Result()
	return steps, res, m.RunID, err
}

// stepTraced pops and dispatches one instruction, returning the TraceStep
// captured between the pop and the dispatch. ok is false once C is empty.
func (m *Machine) stepTraced() (TraceStep, bool, *Error) {
	instr, ok, err := m.nextInstr()
	if !ok {
		return TraceStep{}, false, nil
	}
	step := TraceStep{
		Instruction: FormatControl(instr),
		Control:     m.controlTokens(),
		Stack:       m.stackTokens(),
		CurrentEnv:  m.Cur,
		ActiveEnvs:  append([]int{}, m.Envs.Active()...),
	}
	if err != nil {
		return step, true, err
	}
	return step, true, m.dispatch(instr)
}

// controlTokens renders the remaining C in natural order: the next
// instruction to run first, matching cse_machine.py's
// `list(reversed(self.control))` (self.control is stored reversed so
// .pop() executes front-to-back; un-reversing it restores declaration
// order). gods' arraystack.Values() already returns top-of-stack first,
// so no reversal is needed here.
func (m *Machine) controlTokens() []string {
	vals := m.C.Values()
	toks := make([]string, len(vals))
	for i, v := range vals {
		toks[i] = FormatControl(v.(Control))
	}
	return toks
}

// stackTokens renders S the way cse_machine.py's `list(self.stack)` does:
// bottom-of-stack first, top (most recently pushed) last.
func (m *Machine) stackTokens() []string {
	vals := m.S.Values()
	toks := make([]string, len(vals))
	for i, v := range vals {
		toks[len(vals)-1-i] = FormatStackValue(v.(Value))
	}
	return toks
}

// TraceHeader renders the one-line header printed ahead of a -cse trace,
// identifying which Machine run produced it.
func TraceHeader(runID uuid.UUID) string {
	return fmt.Sprintf("run %s", runID)
}

// FormatTrace renders a full trace in the per-step format of spec.md §6:
// instruction, remaining control, stack contents, current environment
// id, and the set of active environment ids.
func FormatTrace(steps []TraceStep) string {
	var b strings.Builder
	for i, s := range steps {
		fmt.Fprintf(&b, "%d: %s\n", i, s.Instruction)
		fmt.Fprintf(&b, "  control: %s\n", strings.Join(s.Control, " "))
		fmt.Fprintf(&b, "  stack:   %s\n", strings.Join(s.Stack, " "))
		fmt.Fprintf(&b, "  env:     %d  active: %s\n", s.CurrentEnv, formatIntSet(s.ActiveEnvs))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatIntSet(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
