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

package main

import (
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/chzyer/readline"

	"github.com/launix-de/rpalvm/cse"
)

const newprompt = "\033[32m>\033[0m "
const contprompt = "\033[32m.\033[0m "
const resultprompt = "\033[31m=\033[0m "

// runRepl reads one top-level expression at a time — continuing across
// lines while parens are unbalanced — and runs it through the same
// standardize/flatten/execute pipeline main.go uses for file mode,
// printing the result the way Print would (spec.md SPEC_FULL.md §C).
// Grounded on scm/prompt.go's Repl: readline config, ^C/EOF handling, and
// the panic-recover-per-line texture all follow it line for line.
func runRepl() {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            newprompt,
		HistoryFile:       ".rpalvm-history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	oldline := ""
	for {
		line, err := l.Readline()
		line = oldline + line
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			oldline = ""
			l.SetPrompt(newprompt)
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			panic(err)
		}
		if strings.TrimSpace(line) == "" {
			oldline = ""
			continue
		}

		if !parensBalanced(line) {
			oldline = line + "\n"
			l.SetPrompt(contprompt)
			continue
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Println("panic:", r, string(debug.Stack()))
				}
			}()
			result, cerr := replEval(line)
			if cerr != nil {
				fmt.Println(cerr.Error())
			} else {
				fmt.Print(resultprompt)
				fmt.Println(result)
			}
		}()
		oldline = ""
		l.SetPrompt(newprompt)
	}
}

func replEval(line string) (string, *cse.Error) {
	ast, err := cse.Parse(line)
	if err != nil {
		return "", err
	}
	st, err := cse.Standardize(ast)
	if err != nil {
		return "", err
	}
	dt, err := cse.FlattenOptimized(st)
	if err != nil {
		return "", err
	}
	v, err := cse.Run(dt)
	if err != nil {
		return "", err
	}
	return cse.FormatValue(v), nil
}

// parensBalanced reports whether line has no more open '(' than ')',
// used to decide whether the REPL needs another line of input before it
// has a complete expression.
func parensBalanced(line string) bool {
	depth := 0
	inString := false
	for _, r := range line {
		switch {
		case r == '\'':
			inString = !inString
		case inString:
			// ignore parens inside string literals
		case r == '(':
			depth++
		case r == ')':
			depth--
		}
	}
	return depth <= 0
}
