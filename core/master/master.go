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

// Package master implements the supervisor loop: the process that owns the
// listening sockets' canonical fds, spawns and reaps workers and cache
// helpers, and drives config reload and binary upgrade. There is exactly
// one master per running instance (spec.md §2, §4.3).
package master

import (
	"sync"
	"time"

	"github.com/nabbar/ngcore/core/config"
	"github.com/nabbar/ngcore/core/cycle"
	"github.com/nabbar/ngcore/core/module"
	"github.com/nabbar/ngcore/core/process"
	coresig "github.com/nabbar/ngcore/core/signal"
	"github.com/nabbar/ngcore/logger"
)

// exitEvent is pushed by the per-child Wait goroutine Spawn installs; it is
// the Go-native substitute for a SIGCHLD handler collecting status via
// non-blocking waitpid (spec.md §4.4) — one always-running goroutine per
// live child instead of polling on a signal.
type exitEvent struct {
	slot int
}

// UpgradeFunc performs the actual binary re-exec (spec.md §4.7) and
// reports the successor's pid, or an error if the exec never happened.
// Kept as an injected function so this package never imports os/exec
// directly — core/upgrade owns that mechanics.
type UpgradeFunc func(c *cycle.Cycle, pidPath string) (successorPid int, err error)

// InitCycleFunc builds a fresh cycle from the current on-disk config,
// validating it before any worker is disturbed (spec.md §4.3 step 8,
// "reload atomicity"). Supplied by the caller (cmd/ngcored) since only it
// knows how to parse the configured file format into module subtrees.
type InitCycleFunc func(prev *cycle.Cycle) (*cycle.Cycle, error)

// Master owns the process table, the current cycle, and the signal flags
// driving the supervisor loop.
type Master struct {
	mu sync.Mutex

	Log    logger.Logger
	Conf   *config.Core
	Mods   *module.Registry
	Table  *process.Table
	Flags  *coresig.Flags
	Cycle  *cycle.Cycle
	ArgV0  string
	Binary string // path to the executable, re-exec'd on upgrade

	// ConfigPath, when set, is appended as "-c <path>" to every spawned
	// worker/cache-helper's argv: a re-exec'd child has no access to the
	// master's in-memory config tree, so it re-parses the same file for
	// itself (cmd/ngcored's entrypoint dispatch runs config.Load before
	// branching on process.ResolveEntrypoint either way).
	ConfigPath string

	UpgradeFn   UpgradeFunc
	InitCycleFn InitCycleFunc

	exits chan exitEvent

	delay      time.Duration
	alarmTimer *time.Timer
	sigio      int
	newBinary  int
	noAccept   bool
	restart    bool
	pidPath    string
}

// New wires a Master around an already-validated initial cycle.
func New(log logger.Logger, conf *config.Core, mods *module.Registry, c *cycle.Cycle) *Master {
	return &Master{
		Log:   log,
		Conf:  conf,
		Mods:  mods,
		Table: process.NewTable(),
		Flags: &coresig.Flags{},
		Cycle: c,
		exits: make(chan exitEvent, 64),
	}
}
