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
	"syscall"
	"time"

	"github.com/nabbar/ngcore/core/channel"
	"github.com/nabbar/ngcore/core/process"
	coresig "github.com/nabbar/ngcore/core/signal"
)

// wakeInterval stands in for sigsuspend's indefinite block: Go has no
// portable primitive covering both os.Signal delivery and our own
// exit-watch goroutines at once, so the loop wakes on a short tick and
// re-checks every flag. The flags are still the single source of truth —
// this only changes how promptly a pending one is noticed.
const wakeInterval = 20 * time.Millisecond

// Run blocks, driving the supervisor loop described in spec.md §4.3 until
// the master decides to exit, at which point it calls exitProcess and does
// not return.
func (m *Master) Run() {
	stop := coresig.Watch(m.Flags)
	defer stop()

	m.pidPath = m.Conf.PidFile

	ticker := time.NewTicker(wakeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
		case <-m.exits:
			m.Flags.Reap.Store(true)
		}

		m.tick()
	}
}

// tick runs one pass of the loop body (spec.md §4.3 steps 1, 4-12; steps 2
// and 3 are the blocking wait and clock refresh, both folded into Run's
// select above).
func (m *Master) tick() {
	if m.delay > 0 && coresig.TestAndClear(&m.Flags.Alarm) {
		m.delay *= 2
		m.armAlarm(m.delay)
	}

	live := m.anyLive()
	if coresig.TestAndClear(&m.Flags.Reap) {
		live = m.reap()
	}

	if !live && (m.Flags.Terminate.Load() || m.Flags.Quit.Load()) {
		m.exit()
		return
	}

	switch {
	case m.Flags.Terminate.Load():
		m.stepTerminate()
	case m.Flags.Quit.Load():
		// Quit stays set: the exit check above and reap's respawn guard both
		// read it. A worker ignores a repeated QUIT once it is exiting.
		m.broadcast(channel.CmdQuit)
		for _, l := range m.Cycle.ActiveListeners() {
			_ = l.Close()
		}
	case coresig.TestAndClear(&m.Flags.Reconfigure):
		m.stepReconfigure()
	}

	if coresig.TestAndClear(&m.Flags.Restart) || m.restart {
		m.restart = false
		m.spawnWorkerSet(m.workerCount(), process.Respawn)
	}

	if coresig.TestAndClear(&m.Flags.Reopen) {
		if err := m.Cycle.ReopenFiles(); err != nil {
			m.Log.Warn("reopen master log files: ", err)
		}
		m.broadcast(channel.CmdReopen)
	}

	if coresig.TestAndClear(&m.Flags.ChangeBinary) {
		m.stepChangeBinary()
	}

	if coresig.TestAndClear(&m.Flags.NoAccept) {
		m.noAccept = true
		m.broadcast(channel.CmdQuit)
	}
}

// stepTerminate implements the doubling-delay TERMINATE/SIGKILL escalation
// (spec.md §4.3 step 6).
func (m *Master) stepTerminate() {
	if m.delay == 0 {
		m.delay = 50 * time.Millisecond
		m.sigio = m.workerCount() + 2
		m.armAlarm(m.delay)
		return
	}

	m.sigio--
	if m.sigio > 0 {
		return
	}

	if m.delay > 1000*time.Millisecond {
		m.killAll()
	} else {
		m.broadcast(channel.CmdTerminate)
	}
	m.sigio = m.workerCount() + 2
}

// armAlarm programs the stand-in for spec.md §4.3 step 1's interval timer:
// a one-shot timer that sets Flags.Alarm after d elapses, so tick's
// doubling check (above) eventually fires even though nothing in this
// process ever delivers a real SIGALRM. Any previously pending timer for
// the same termination episode is stopped first, since delay is only ever
// armed again after the prior one already fired (tick clears Alarm via
// TestAndClear before re-arming) or on a fresh stepTerminate episode.
func (m *Master) armAlarm(d time.Duration) {
	if m.alarmTimer != nil {
		m.alarmTimer.Stop()
	}
	m.alarmTimer = time.AfterFunc(d, func() {
		m.Flags.Alarm.Store(true)
	})
}

// killAll sends SIGKILL directly to every live, non-detached slot; unlike
// every other command this one has no channel equivalent, so it bypasses
// sendTo/broadcast entirely.
func (m *Master) killAll() {
	m.Table.Range(func(i int, sl *process.Slot) {
		if sl == nil || !sl.Live() || sl.Detached {
			return
		}
		dead, _ := channel.Kill(sl.Pid, syscall.SIGKILL)
		if dead {
			sl.Exited = true
			m.Flags.Reap.Store(true)
		}
	})
}

// stepReconfigure implements spec.md §4.3 step 8.
func (m *Master) stepReconfigure() {
	if m.newBinary != 0 {
		m.spawnWorkerSet(m.workerCount(), process.JustRespawn)
		m.noAccept = false
		return
	}

	next, err := m.initCycle()
	if err != nil {
		m.Log.Error("reconfigure: init_cycle failed, keeping current cycle: ", err)
		return
	}

	oldSlots := m.oldWorkerSlots()

	m.Cycle = next

	m.spawnWorkerSet(m.workerCount(), process.JustRespawn)
	m.spawnCacheHelpers()

	time.Sleep(100 * time.Millisecond)

	m.quitGeneration(oldSlots)
}

func (m *Master) workerCount() int {
	n, err := m.Conf.ResolveWorkerCount()
	if err != nil {
		m.Log.Warn("worker_processes: ", err, ", defaulting to 1")
		return 1
	}
	return n
}

// stepChangeBinary implements spec.md §4.7. The exec itself is delegated
// to core/upgrade so this package does not need os/exec.
func (m *Master) stepChangeBinary() {
	m.Log.Info("starting binary upgrade")
	if m.UpgradeFn == nil {
		m.Log.Warn("binary upgrade requested but no upgrade function is configured")
		return
	}
	pid, err := m.UpgradeFn(m.Cycle, m.pidPath)
	if err != nil {
		m.Log.Error("binary upgrade failed: ", err)
		return
	}
	m.newBinary = pid
}
