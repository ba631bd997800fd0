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

// Package upgrade implements the live binary-upgrade mechanics of
// spec.md §4.7: handing the current listener fds to a freshly exec'd copy
// of the running binary via an environment variable, and renaming the PID
// file out of the way so the successor can claim it. Go has no fork(2),
// so "fork, and in the child exec the new binary" becomes a single
// os/exec.Command against os.Executable() — the parent keeps supervising
// old workers exactly as before, it just never forked in the first place.
package upgrade

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/nabbar/ngcore/core/config"
	"github.com/nabbar/ngcore/core/cycle"
)

// Run performs one upgrade attempt: build the NGINX= env value from every
// non-ignored listener in c, rename pidPath to pidPath+".oldbin", and exec
// a new copy of the running binary with the same argv. It returns the
// successor's pid for the master to track as new_binary, or an error. If
// the successor cannot be started, the .oldbin file is renamed back before
// Run returns; a successor that starts and later exits is handled by the
// reap sweep's aborted-upgrade path (spec.md §4.4).
func Run(c *cycle.Cycle, pidPath string) (successorPid int, err error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("upgrade: resolve self executable: %w", err)
	}

	// ExtraFiles renumbers every inherited fd to 3+i in the child; the
	// NGINX= value must describe those new numbers, not the master's own.
	var fds []int
	extra := make([]*os.File, 0, len(c.ActiveListeners()))
	for _, l := range c.ActiveListeners() {
		if l.Ignore {
			continue
		}
		extra = append(extra, l.File())
		fds = append(fds, 3+len(extra)-1)
	}

	env := append(os.Environ(), cycle.EnvListeners+"="+cycle.BuildEnvValue(fds))

	if err := config.RenameToOldBin(pidPath); err != nil {
		return 0, fmt.Errorf("upgrade: %w", err)
	}

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = extra

	if err := cmd.Start(); err != nil {
		_ = config.RestoreFromOldBin(pidPath)
		return 0, fmt.Errorf("upgrade: exec successor: %w", err)
	}

	return cmd.Process.Pid, nil
}
