/*
MIT License

Copyright (c) 2025 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// WritePidFile writes pid as an ASCII decimal followed by LF, mode 0644,
// matching the format spec.md §6 specifies so external tools (init
// scripts) can read it back with a plain integer parse.
func WritePidFile(path string, pid int) error {
	data := []byte(strconv.Itoa(pid) + "\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write pid file %s: %w", path, err)
	}
	return nil
}

// ReadPidFile parses the pid out of an existing PID file.
func ReadPidFile(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("config: read pid file %s: %w", path, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("config: malformed pid file %s: %w", path, err)
	}
	return pid, nil
}

// RenameToOldBin renames path to path+".oldbin", the step a binary upgrade
// takes before the successor writes its own PID file at the primary path
// (spec.md §4.7 step 2).
func RenameToOldBin(path string) error {
	if err := os.Rename(path, path+".oldbin"); err != nil {
		return fmt.Errorf("config: rename pid file to oldbin: %w", err)
	}
	return nil
}

// RestoreFromOldBin reverses RenameToOldBin, used when an in-flight
// upgrade aborts and the successor pid exits before taking over
// (spec.md §4.4 reap-sweep rollback).
func RestoreFromOldBin(path string) error {
	if err := os.Rename(path+".oldbin", path); err != nil {
		return fmt.Errorf("config: restore pid file from oldbin: %w", err)
	}
	return nil
}

// RemovePidFile deletes the PID file; called once, on master exit.
func RemovePidFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("config: remove pid file %s: %w", path, err)
	}
	return nil
}
