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
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// runWatch re-runs f.file every time it changes on disk, for interactive
// development against the interpreter (SPEC_FULL.md §B/§C: a developer-
// ergonomics addition, no analogue in spec.md or the original). It runs
// the file once immediately, then blocks on fsnotify events for the
// containing directory (watching the directory, not the file, survives
// editors that replace the file via rename-on-save).
func runWatch(f flags) int {
	code := runFile(f)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer watcher.Close()

	dir := filepath.Dir(f.file)
	if dir == "" {
		dir = "."
	}
	if err := watcher.Add(dir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	target := filepath.Clean(f.file)
	fmt.Fprintf(os.Stderr, "watching %s for changes (ctrl-c to stop)\n", f.file)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return code
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Fprintf(os.Stderr, "--- %s changed, re-running ---\n", f.file)
			code = runFile(f)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return code
			}
			fmt.Fprintln(os.Stderr, watchErr)
		}
	}
}
