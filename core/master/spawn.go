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

package master

import (
	"github.com/nabbar/ngcore/core/config"
	"github.com/nabbar/ngcore/core/process"
)

// spawnOne starts one child of entry/disposition and installs the
// exit-watch goroutine that stands in for SIGCHLD + waitpid: the original
// relies on a signal handler to reap asynchronously; Go instead lets
// exec.Cmd.Wait block in its own goroutine and report back over a channel,
// with the same at-least-once, coalesced-by-flag delivery contract as
// every other signal in this core (only Flags.Reap is ever set twice for
// the same exit; the reap sweep is what makes that idempotent).
func (m *Master) spawnOne(spec process.Spec) (int, error) {
	idx, err := process.Spawn(m.Table, spec)
	if err != nil {
		return -1, err
	}

	sl := m.Table.Get(idx)
	cmd := sl.Cmd

	go func(idx int, cmd interface{ Wait() error }) {
		waitErr := cmd.Wait()

		m.mu.Lock()
		if s := m.Table.Get(idx); s != nil {
			s.Exited = true
			if s.Cmd.ProcessState != nil {
				s.ExitCode = s.Cmd.ProcessState.ExitCode()
			} else if waitErr != nil {
				s.ExitCode = -1
			}
		}
		m.mu.Unlock()

		m.exits <- exitEvent{slot: idx}
		m.Flags.Reap.Store(true)
	}(idx, cmd)

	return idx, nil
}

// Start spawns the first worker set and any cache helpers the initial
// cycle declares. The caller runs this once, before Run, so the listening
// sockets already have workers attached by the time the supervisor loop
// starts polling for signals (spec.md §4.2 "master startup").
func (m *Master) Start() {
	m.spawnWorkerSet(m.workerCount(), process.JustSpawn)
	m.spawnCacheHelpers()
}

// spawnWorkerSet starts n workers of the given disposition against the
// current cycle's listeners.
func (m *Master) spawnWorkerSet(n int, disposition process.Disposition) {
	env := config.BuildWorkerEnviron(m.Conf.EnvAllowlist)
	for i := 0; i < n; i++ {
		_, err := m.spawnOne(process.Spec{
			Entry:       process.EntrypointWorker,
			Disposition: disposition,
			Args:        m.childArgs(),
			Listeners:   m.Cycle.ActiveListeners(),
			Slot:        -1,
			Env:         env,
		})
		if err != nil {
			m.Log.Error("spawn worker: ", err)
		}
	}
}

// childArgs builds the argv every re-exec'd child needs to re-parse the
// same configuration file cmd/ngcored loaded for the master.
func (m *Master) childArgs() []string {
	if m.ConfigPath == "" {
		return nil
	}
	return []string{"-c", m.ConfigPath}
}

// spawnCacheHelpers starts the cache manager and cache loader, only if the
// current cycle declares any Path with a manager or loader callback
// (spec.md §4.9).
func (m *Master) spawnCacheHelpers() {
	if !m.Cycle.HasCacheHelpers() {
		return
	}
	env := config.BuildWorkerEnviron(m.Conf.EnvAllowlist)
	if _, err := m.spawnOne(process.Spec{
		Entry:       process.EntrypointCacheManager,
		Disposition: process.Respawn,
		Args:        m.childArgs(),
		Slot:        -1,
		Env:         env,
	}); err != nil {
		m.Log.Error("spawn cache manager: ", err)
	}
	if _, err := m.spawnOne(process.Spec{
		Entry:       process.EntrypointCacheLoader,
		Disposition: process.NoRespawn,
		Args:        m.childArgs(),
		Slot:        -1,
		Env:         env,
	}); err != nil {
		m.Log.Error("spawn cache loader: ", err)
	}
}
