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
	"github.com/nabbar/ngcore/core/channel"
	"github.com/nabbar/ngcore/core/process"
	"github.com/nabbar/ngcore/logger"
)

// sendTo delivers cmd to slot i, falling back to kill(pid, signo) on a
// transient channel error (spec.md §4.2). A dead process found this way is
// marked exited immediately and a reap is scheduled rather than waiting
// for the Wait goroutine, which may race it by one loop tick.
func (m *Master) sendTo(i int, sl *process.Slot, cmd channel.Command) {
	if sl == nil || !sl.Live() || sl.Detached {
		return
	}

	err := sl.Channel.Send(channel.Message{Command: cmd, Pid: int32(sl.Pid), Slot: int32(i)})
	if err == nil {
		return
	}
	if !channel.IsTemporary(err) {
		m.Log.WithFields(logger.Fields{"slot": i, "pid": sl.Pid}).Warn("channel send failed, falling back to kill: ", err)
	}

	dead, kerr := channel.Kill(sl.Pid, cmd.Signal())
	if kerr != nil && !dead {
		m.Log.WithFields(logger.Fields{"slot": i, "pid": sl.Pid}).Warn("kill fallback failed: ", kerr)
		return
	}
	if dead {
		sl.Exited = true
		m.Flags.Reap.Store(true)
	}
}

// broadcast sends cmd to every live, non-detached slot.
func (m *Master) broadcast(cmd channel.Command) {
	m.Table.Range(func(i int, sl *process.Slot) {
		m.sendTo(i, sl, cmd)
	})
}

// broadcastOpenChannel tells every live slot other than newSlot that a new
// peer exists, carrying that peer's channel fd (spec.md §4.4: "broadcast
// OPEN_CHANNEL").
func (m *Master) broadcastOpenChannel(newSlot int, newSl *process.Slot) {
	f, err := newSl.Channel.File()
	if err != nil {
		m.Log.Warn("open_channel: could not dup fd for broadcast: ", err)
		return
	}
	defer f.Close()

	m.Table.Range(func(i int, sl *process.Slot) {
		if i == newSlot || sl == nil || !sl.Live() || sl.Detached {
			return
		}
		_ = sl.Channel.Send(channel.Message{
			Command: channel.CmdOpenChannel,
			Pid:     int32(newSl.Pid),
			Slot:    int32(newSlot),
			Fd:      int32(f.Fd()),
		})
	})
}

// broadcastCloseChannel tells every remaining live slot that deadSlot's
// process exited, so they drop the fd they hold for it.
func (m *Master) broadcastCloseChannel(deadSlot, deadPid int) {
	m.Table.Range(func(i int, sl *process.Slot) {
		if i == deadSlot || sl == nil || !sl.Live() || sl.Detached {
			return
		}
		_ = sl.Channel.Send(channel.Message{
			Command: channel.CmdCloseChannel,
			Pid:     int32(deadPid),
			Slot:    int32(deadSlot),
		})
	})
}
