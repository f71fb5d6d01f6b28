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
	"bufio"
	"fmt"
	"os"

	"github.com/pierrec/lz4/v4"

	"github.com/launix-de/rpalvm/cse"
)

// traceToFile runs dt with tracing and writes the formatted -cse trace
// through an lz4.Writer to path instead of stdout (SPEC_FULL.md §B); a
// deep-recursion trace such as spec.md §8 S7 runs to tens of thousands of
// lines. The run completes and all its steps are held in memory before
// the first line is written. Failures creating the file or flushing the
// trace are reported as ErrResource; errors from closing the lz4 writer
// and the file are not checked. A runtime error from the run itself keeps
// its original Kind.
func traceToFile(dt *cse.DeltaTable, path string) *cse.Error {
	out, err := os.Create(path)
	if err != nil {
		return cse.NewResourceError(err.Error())
	}
	defer out.Close()

	zw := lz4.NewWriter(out)
	defer zw.Close()
	bw := bufio.NewWriter(zw)

	steps, _, runID, rerr := cse.RunTraced(dt)
	fmt.Fprintln(bw, cse.TraceHeader(runID))
	fmt.Fprintln(bw, cse.FormatTrace(steps))
	if ferr := bw.Flush(); ferr != nil {
		return cse.NewResourceError(ferr.Error())
	}
	return rerr
}
