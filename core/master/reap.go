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

// reap sweeps the process table for exited slots (spec.md §4.4), draining
// every pending exitEvent first so back-to-back exits delivered between
// sweeps are not missed; the events themselves only matter for waking the
// loop, the per-slot state is authoritative.
func (m *Master) reap() (live bool) {
	for {
		select {
		case <-m.exits:
		default:
			goto drained
		}
	}
drained:

	m.Table.Range(func(i int, sl *process.Slot) {
		if !sl.Exited {
			return
		}

		exitedPid := sl.Pid

		if !sl.Detached {
			_ = sl.Channel.Close()
			m.broadcastCloseChannel(i, exitedPid)
		}

		respawned := false
		if (sl.Disposition == process.Respawn || sl.Disposition == process.JustRespawn) && !sl.Exiting && !m.Flags.Terminate.Load() && !m.Flags.Quit.Load() {
			newIdx, err := m.spawnOne(process.Spec{
				Entry:       sl.Entry,
				Disposition: sl.Disposition,
				Args:        m.childArgs(),
				Listeners:   m.Cycle.ActiveListeners(),
				Slot:        i,
				Env:         sl.Env,
			})
			if err != nil {
				m.Log.Error("respawn ", sl.Entry, " (was slot ", i, "): ", err)
			} else {
				respawned = true
				if ns := m.Table.Get(newIdx); ns != nil {
					m.broadcastOpenChannel(newIdx, ns)
				}
			}
		}

		if exitedPid == m.newBinary {
			if err := config.RestoreFromOldBin(m.pidPath); err != nil {
				m.Log.Warn("binary upgrade aborted, restore pid file: ", err)
			}
			m.newBinary = 0
			if m.noAccept {
				m.restart = true
			}
		}

		if !respawned {
			m.Table.Free(i)
		}
	})

	return m.anyLive()
}

// anyLive reports whether any non-detached, non-exited process remains —
// the master loop's exit condition (spec.md §4.3 step 5).
func (m *Master) anyLive() bool {
	live := false
	m.Table.Range(func(i int, sl *process.Slot) {
		if sl.Live() && !sl.Detached {
			live = true
		}
	})
	return live
}
