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
	"fmt"

	"github.com/nabbar/ngcore/core/channel"
	"github.com/nabbar/ngcore/core/cycle"
	"github.com/nabbar/ngcore/core/process"
)

// initCycle builds and validates a fresh cycle without disturbing any
// existing worker (spec.md §4.3 "Reload atomicity"): a failure here leaves
// m.Cycle untouched.
func (m *Master) initCycle() (*cycle.Cycle, error) {
	if m.InitCycleFn == nil {
		return nil, fmt.Errorf("master: no InitCycleFn configured")
	}
	next, err := m.InitCycleFn(m.Cycle)
	if err != nil {
		return nil, err
	}
	if err := m.Mods.InitMaster(next); err != nil {
		next.Destroy()
		return nil, err
	}
	return next, nil
}

// oldWorkerSlots returns the indices of every live worker slot, used right
// before a reconfigure spawns the new generation's workers so the
// post-handshake SHUTDOWN broadcast targets exactly the generation being
// replaced, not the one that just started.
func (m *Master) oldWorkerSlots() []int {
	var out []int
	m.Table.Range(func(i int, sl *process.Slot) {
		if sl.Live() && sl.Entry == process.EntrypointWorker && !sl.Exiting {
			out = append(out, i)
		}
	})
	return out
}

// quitGeneration sends SHUTDOWN to every slot index captured by
// oldWorkerSlots before the new generation was spawned.
func (m *Master) quitGeneration(slots []int) {
	for _, i := range slots {
		sl := m.Table.Get(i)
		if sl == nil {
			continue
		}
		sl.Exiting = true
		m.sendTo(i, sl, channel.CmdQuit)
	}
}
