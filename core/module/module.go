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

// Package module defines the lifecycle contract every built-in subsystem
// (listener drivers, stats, cache helpers, ...) implements, and the
// registry the master/worker cores drive it through.
package module

import "github.com/nabbar/ngcore/core/cycle"

// Module is a subsystem hooked into the four lifecycle points a process
// generation passes through. A module is registered once at startup and
// then driven by every cycle the process lives through.
//
// InitMaster runs in the master for every cycle it builds (startup and each
// reload), where nginx's ngx_init_cycle runs its module loop; ExitMaster
// runs once, as the master exits (ngx_master_process_exit).
// InitProcess/ExitProcess run in every worker, cache manager, and cache
// loader, once per process, not per cycle — a worker that outlives a
// config reload is not re-initialized.
type Module interface {
	// Name identifies the module for logging and registry lookups.
	Name() string

	// InitMaster runs once in the master process for a given cycle, before
	// any worker of that generation is spawned. An error here aborts the
	// cycle the way a failed config parse does (spec.md §4.3 reconfigure
	// "validate-before-swap").
	InitMaster(c *cycle.Cycle) error

	// ExitMaster runs once in the master process as it is about to exit.
	ExitMaster(c *cycle.Cycle)

	// InitProcess runs once in a freshly spawned worker/cache-manager/
	// cache-loader, after signal mask and privileges are dropped but
	// before the process enters its event loop.
	InitProcess(c *cycle.Cycle) error

	// ExitProcess runs once as that child process is about to exit.
	ExitProcess(c *cycle.Cycle)
}
