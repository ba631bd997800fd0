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

// Package config holds the values the core reads at startup and on every
// reconfigure signal: daemonization, worker count, privilege-drop target,
// resource limits, affinity, and the environment allowlist. It is parsed
// with viper from a YAML or TOML file; cobra flags bound with BindFlags
// override file values whose key matches a flag name.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// DebugPoints governs what happens when the worker lifecycle hits an
// internal consistency check it doesn't expect to fail.
type DebugPoints string

const (
	DebugPointsStop  DebugPoints = "stop"
	DebugPointsAbort DebugPoints = "abort"
)

// Core mirrors spec.md §3 "Core configuration": the values consumed by the
// supervision core itself, as opposed to the per-module config trees
// stored opaquely on a Cycle.
type Core struct {
	Daemonize     bool   `mapstructure:"daemonize" yaml:"daemonize" toml:"daemonize"`
	MasterProcess bool   `mapstructure:"master_process" yaml:"master_process" toml:"master_process"`
	WorkerCount   string `mapstructure:"worker_processes" yaml:"worker_processes" toml:"worker_processes"`

	PidFile    string `mapstructure:"pid" yaml:"pid" toml:"pid"`
	WorkingDir string `mapstructure:"working_directory" yaml:"working_directory" toml:"working_directory"`

	User  string `mapstructure:"user" yaml:"user" toml:"user"`
	Group string `mapstructure:"group" yaml:"group" toml:"group"`

	NicePriority *int `mapstructure:"worker_priority" yaml:"worker_priority" toml:"worker_priority"`

	RLimitNoFile *uint64 `mapstructure:"worker_rlimit_nofile" yaml:"worker_rlimit_nofile" toml:"worker_rlimit_nofile"`
	RLimitCore   *uint64 `mapstructure:"worker_rlimit_core" yaml:"worker_rlimit_core" toml:"worker_rlimit_core"`

	CPUAffinity []string `mapstructure:"worker_cpu_affinity" yaml:"worker_cpu_affinity" toml:"worker_cpu_affinity"`

	EnvAllowlist []string `mapstructure:"env" yaml:"env" toml:"env"`

	// Listen enumerates the sockets this instance's workers share, each
	// formatted "network address" (e.g. "tcp 127.0.0.1:8080",
	// "unix /run/ngcore.sock"). Parsed by cmd/ngcored into cycle.Listeners
	// at InitCycleFn time; the core itself stays agnostic of transport.
	Listen []string `mapstructure:"listen" yaml:"listen" toml:"listen"`

	ShutdownTimeout time.Duration `mapstructure:"worker_shutdown_timeout" yaml:"worker_shutdown_timeout" toml:"worker_shutdown_timeout"`
	TimerResolution time.Duration `mapstructure:"timer_resolution" yaml:"timer_resolution" toml:"timer_resolution"`

	DebugPoints DebugPoints `mapstructure:"debug_points" yaml:"debug_points" toml:"debug_points"`
}

// Default returns the Core values used when no config file sets them,
// matching the original's built-in defaults.
func Default() *Core {
	return &Core{
		Daemonize:       false,
		MasterProcess:   true,
		WorkerCount:     "1",
		PidFile:         "/var/run/ngcore.pid",
		ShutdownTimeout: 0,
		TimerResolution: 0,
		DebugPoints:     DebugPointsStop,
	}
}

// ResolveWorkerCount turns WorkerCount ("auto" or a decimal integer) into
// a concrete worker count, with "auto" resolving to runtime.NumCPU.
func (c *Core) ResolveWorkerCount() (int, error) {
	if c.WorkerCount == "" || c.WorkerCount == "auto" {
		return runtime.NumCPU(), nil
	}
	var n int
	if _, err := fmt.Sscanf(c.WorkerCount, "%d", &n); err != nil {
		return 0, fmt.Errorf("config: invalid worker_processes %q: %w", c.WorkerCount, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("config: worker_processes must be >= 0, got %d", n)
	}
	return n, nil
}
