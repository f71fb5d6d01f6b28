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
	"bytes"
	"strings"
	"testing"
)

// runSource drives a program through Parse/Standardize/FlattenOptimized/Run
// and returns whatever Print wrote to Stdout, mirroring spec.md §8's
// source-to-stdout end-to-end scenarios.
func runSource(t *testing.T, src string) string {
	t.Helper()
	var buf bytes.Buffer
	old := Stdout
	Stdout = &buf
	defer func() { Stdout = old }()

	ast, err := Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	st, err := Standardize(ast)
	if err != nil {
		t.Fatalf("standardize: %v", err)
	}
	dt, err := FlattenOptimized(st)
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if _, err := Run(dt); err != nil {
		t.Fatalf("run: %v", err)
	}
	return buf.String()
}

func TestEndToEndScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"S1_arith", "Print (2 + 3 * 4)", "14"},
		{"S2_rec_sum", "let rec Sum n = n eq 0 -> 0 | n + Sum (n-1) in Print (Sum 10)", "55"},
		{"S3_and_binding", "let x=3 and y=4 in Print (x+y)", "7"},
		{"S4_tuple_index", "let t = (1, 2, 3) in Print (t 2)", "2"},
		{"S5_conc", "Print (Conc 'Hello ' 'World')", "Hello World"},
		{"S6_fact", "let rec fact n = n eq 0 -> 1 | n * fact (n-1) in Print (fact 6)", "720"},
		{"S7_deep_recursion", "let rec f n = n eq 0 -> 0 | f (n-1) in Print (f 1000)", "0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := runSource(t, c.src)
			if got != c.want {
				t.Fatalf("%s: got %q, want %q", c.name, got, c.want)
			}
		})
	}
}

func TestStandardizationIdempotence(t *testing.T) {
	src := "let rec fact n = n eq 0 -> 1 | n * fact (n-1) in Print (fact 6)"
	ast, err := Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	st1, err := Standardize(ast)
	if err != nil {
		t.Fatalf("standardize 1: %v", err)
	}
	st2, err := Standardize(st1.Copy())
	if err != nil {
		t.Fatalf("standardize 2: %v", err)
	}
	if st1.String() != st2.String() {
		t.Fatalf("standardization is not idempotent:\n--- once ---\n%s\n--- twice ---\n%s", st1, st2)
	}
}

// standardizedLabels collects every internal (non-terminal) node label in
// a standardized tree.
func standardizedLabels(n *Node, out map[string]bool) {
	if n.IsTerminal() {
		return
	}
	out[n.Label] = true
	for _, c := range n.Children {
		standardizedLabels(c, out)
	}
}

func TestStandardizationTargetSet(t *testing.T) {
	allowed := map[string]bool{
		"gamma": true, "lambda": true, "=": true, "tau": true,
		"&": true, "or": true, "eq": true, "ne": true,
		"gr": true, "ge": true, "ls": true, "le": true,
	}
	srcs := []string{
		"let rec fact n = n eq 0 -> 1 | n * fact (n-1) in Print (fact 6)",
		"let x=3 and y=4 in Print (x+y)",
		"fn a b . a + b",
		"let t = (1, 2, 3) in Print (t 2)",
	}
	for _, src := range srcs {
		ast, err := Parse(src)
		if err != nil {
			t.Fatalf("parse %q: %v", src, err)
		}
		st, err := Standardize(ast)
		if err != nil {
			t.Fatalf("standardize %q: %v", src, err)
		}
		labels := map[string]bool{}
		standardizedLabels(st, labels)
		for l := range labels {
			if !allowed[l] {
				t.Fatalf("standardized tree for %q contains disallowed label %q", src, l)
			}
		}
	}
}

func TestDeltaCoverage(t *testing.T) {
	src := "let rec fact n = n eq 0 -> 1 | n * fact (n-1) in Print (fact 6)"
	ast, err := Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	st, err := Standardize(ast)
	if err != nil {
		t.Fatalf("standardize: %v", err)
	}
	dt, err := FlattenOptimized(st)
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	for id, instrs := range dt.Deltas {
		for _, instr := range instrs {
			switch instr.Op {
			case OpLambda, OpDelta:
				if _, gerr := dt.Get(instr.IntVal); gerr != nil {
					t.Fatalf("δ%d references undefined δ%d", id, instr.IntVal)
				}
			}
		}
	}
}

func TestTupleIndexingBounds(t *testing.T) {
	got := runSource(t, "let t = (10, 20, 30) in Print (t 3)")
	if got != "30" {
		t.Fatalf("got %q, want 30", got)
	}

	ast, err := Parse("let t = (10, 20, 30) in Print (t 4)")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	st, err := Standardize(ast)
	if err != nil {
		t.Fatalf("standardize: %v", err)
	}
	dt, err := FlattenOptimized(st)
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if _, rerr := Run(dt); rerr == nil {
		t.Fatalf("expected out-of-bounds tuple index to error")
	} else if rerr.Kind != ErrRange {
		t.Fatalf("expected ErrRange, got %v", rerr.Kind)
	}
}

func TestBetaRoundTrip(t *testing.T) {
	then := runSource(t, "Print (true -> 1 | 2)")
	if then != "1" {
		t.Fatalf("true branch: got %q, want 1", then)
	}
	els := runSource(t, "Print (false -> 1 | 2)")
	if els != "2" {
		t.Fatalf("false branch: got %q, want 2", els)
	}
}

func TestYStarFixpoint(t *testing.T) {
	got := runSource(t, "let rec even n = n eq 0 -> true | (n eq 1 -> false | even (n-2)) in Print (even 10)")
	if got != "true" {
		t.Fatalf("got %q, want true", got)
	}
}

func TestUnboundIdentifierError(t *testing.T) {
	ast, err := Parse("Print (x + 1)")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	st, err := Standardize(ast)
	if err != nil {
		t.Fatalf("standardize: %v", err)
	}
	dt, err := FlattenOptimized(st)
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if _, rerr := Run(dt); rerr == nil {
		t.Fatalf("expected unbound-name error")
	} else if rerr.Kind != ErrName {
		t.Fatalf("expected ErrName, got %v", rerr.Kind)
	}
}

func TestPlainAndOptimizedFlattenAgree(t *testing.T) {
	src := "let rec fact n = n eq 0 -> 1 | n * fact (n-1) in Print (fact 6)"
	ast, err := Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	st, err := Standardize(ast)
	if err != nil {
		t.Fatalf("standardize: %v", err)
	}

	var buf bytes.Buffer
	old := Stdout
	Stdout = &buf
	defer func() { Stdout = old }()

	dtOpt, err := FlattenOptimized(st)
	if err != nil {
		t.Fatalf("flatten optimized: %v", err)
	}
	if _, err := Run(dtOpt); err != nil {
		t.Fatalf("run optimized: %v", err)
	}

	buf.Reset()
	dtPlain, err := FlattenPlain(st)
	if err != nil {
		t.Fatalf("flatten plain: %v", err)
	}
	if _, err := Run(dtPlain); err != nil {
		t.Fatalf("run plain: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "720" {
		t.Fatalf("plain flatten result: got %q, want 720", buf.String())
	}
}

func TestFloorDivision(t *testing.T) {
	if got := runSource(t, "Print ((0 - 7) / 2)"); got != "-4" {
		t.Fatalf("floor div: got %q, want -4", got)
	}
}

func TestTraceRunsToCompletion(t *testing.T) {
	var buf bytes.Buffer
	old := Stdout
	Stdout = &buf
	defer func() { Stdout = old }()

	ast, err := Parse("Print (2 + 3 * 4)")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	st, err := Standardize(ast)
	if err != nil {
		t.Fatalf("standardize: %v", err)
	}
	dt, err := FlattenOptimized(st)
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	steps, result, _, rerr := RunTraced(dt)
	if rerr != nil {
		t.Fatalf("run traced: %v", rerr)
	}
	if len(steps) == 0 {
		t.Fatalf("expected at least one trace step")
	}
	if result.Kind != VInt || result.Int != 14 {
		t.Fatalf("got %v, want 14", result)
	}
	// The first step's recorded control never includes the instruction
	// that step is about to execute (it was already popped), and its
	// stack snapshot is the state before that instruction runs.
	first := steps[0]
	if len(first.Stack) != 0 {
		t.Fatalf("first step should see an empty stack, got %v", first.Stack)
	}
	for _, tok := range first.Control {
		if tok == first.Instruction {
			t.Fatalf("recorded control %v should not re-include the executing instruction %q", first.Control, first.Instruction)
		}
	}
}
