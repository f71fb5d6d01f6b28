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

// rpalvm runs the standardize/flatten/execute pipeline of package cse over
// a source file (spec.md §6). Flags are scanned by hand against os.Args,
// the way tools/jitgen/main.go and the teacher's own main() wire things up,
// rather than through flag.FlagSet or a third-party CLI framework.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/launix-de/rpalvm/cse"
)

const usage = `usage: rpalvm <file> [flags]

flags:
  -h, --help    print this usage and exit
  -ast          print the raw AST
  -st           print the standardized tree
  -flat         print the naive flattened control structures
  -optflat      print the optimized flattened control structures
  -cse          print the step-by-step CSE machine trace
  -allt         print both the raw AST and the standardized tree
  -repl         run an interactive read-eval-print loop instead of a file
  -watch        re-run <file> whenever it changes on disk
  -tracefile F  stream the -cse trace through lz4 to F instead of stdout
  -v            include a stack dump with internal panics
`

type flags struct {
	file      string
	ast       bool
	st        bool
	flat      bool
	optflat   bool
	cseTrace  bool
	allt      bool
	repl      bool
	watch     bool
	tracefile string
	verbose   bool
}

func parseFlags(args []string) (flags, error) {
	var f flags
	i := 0
	for i < len(args) {
		arg := args[i]
		switch arg {
		case "-h", "--help":
			fmt.Print(usage)
			os.Exit(0)
		case "-ast":
			f.ast = true
		case "-st":
			f.st = true
		case "-flat":
			f.flat = true
		case "-optflat":
			f.optflat = true
		case "-cse":
			f.cseTrace = true
		case "-allt":
			f.allt = true
		case "-repl":
			f.repl = true
		case "-watch":
			f.watch = true
		case "-v", "--verbose":
			f.verbose = true
		case "-tracefile":
			if i+1 >= len(args) {
				return f, fmt.Errorf("-tracefile requires a path argument")
			}
			i++
			f.tracefile = args[i]
		default:
			if len(arg) > 0 && arg[0] == '-' {
				return f, fmt.Errorf("unknown flag %q", arg)
			}
			if f.file != "" {
				return f, fmt.Errorf("unexpected extra argument %q", arg)
			}
			f.file = arg
		}
		i++
	}
	return f, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) (code int) {
	f, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("internal error: %v", r)
			if f.verbose {
				msg += "\n" + string(debug.Stack())
			}
			fmt.Fprintln(os.Stderr, msg)
			code = 1
		}
	}()

	if f.repl {
		runRepl()
		return 0
	}

	if f.file == "" {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	if f.watch {
		return runWatch(f)
	}

	return runFile(f)
}

func runFile(f flags) int {
	src, err := os.ReadFile(f.file)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "file not found: %s\n", f.file)
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	out, cerr := execute(string(src), f)
	if out != "" {
		fmt.Println(out)
	}
	if cerr != nil {
		fmt.Fprintln(os.Stderr, cerr.Error())
		return 1
	}
	return 0
}

// execute runs one source program through standardize/flatten/run and
// returns whatever diagnostic dumps the flags asked for, joined by
// newlines, plus any error that aborted the run.
func execute(src string, f flags) (string, *cse.Error) {
	var parts []string

	ast, err := cse.Parse(src)
	if err != nil {
		return "", err
	}
	if f.ast || f.allt {
		parts = append(parts, ast.String())
	}

	st, err := cse.Standardize(ast)
	if err != nil {
		return joinParts(parts), err
	}
	if f.st || f.allt {
		parts = append(parts, st.String())
	}

	if f.flat {
		dt, ferr := cse.FlattenPlain(st)
		if ferr != nil {
			return joinParts(parts), ferr
		}
		parts = append(parts, cse.FormatDeltaTable(dt))
	}

	dt, err := cse.FlattenOptimized(st)
	if err != nil {
		return joinParts(parts), err
	}
	if f.optflat {
		parts = append(parts, cse.FormatDeltaTable(dt))
	}

	if f.tracefile != "" {
		return joinParts(parts), traceToFile(dt, f.tracefile)
	}

	if f.cseTrace {
		steps, _, runID, rerr := cse.RunTraced(dt)
		parts = append(parts, cse.TraceHeader(runID)+"\n"+cse.FormatTrace(steps))
		return joinParts(parts), rerr
	}

	if _, rerr := cse.Run(dt); rerr != nil {
		return joinParts(parts), rerr
	}
	return joinParts(parts), nil
}

func joinParts(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "\n"
		}
		out += p
	}
	return out
}
