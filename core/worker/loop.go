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

package worker

import (
	"net"
	"time"

	"github.com/nabbar/ngcore/core/channel"
	coresig "github.com/nabbar/ngcore/core/signal"
)

// Run drives the worker event loop of spec.md §4.5 "Loop" until the
// process exits; it never returns. The out-of-scope HTTP/event-loop
// collaborator is represented by acceptLoop, which accepts and tracks
// connections but implements no request protocol (spec.md §1's
// Non-goals: request-level concurrency is a separate spec).
func (w *Worker) Run() {
	stop := w.installChannelReader()
	defer stop()

	for _, ln := range w.listeners {
		go w.acceptLoop(ln)
	}

	var shutdownTimer *time.Timer
	var shutdownC <-chan time.Time

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		<-ticker.C

		if coresig.TestAndClear(&w.flags.Terminate) {
			w.log.Info("terminate received, exiting immediately")
			w.exitProcess()
			return
		}

		if coresig.TestAndClear(&w.flags.Quit) && !w.exiting {
			w.beginGracefulExit()
			if w.shutdownTimeout > 0 {
				shutdownTimer = time.NewTimer(w.shutdownTimeout)
				shutdownC = shutdownTimer.C
			}
		}

		if coresig.TestAndClear(&w.flags.Reopen) {
			if err := w.cycle.ReopenFiles(); err != nil {
				w.log.Warn("reopen log files: ", err)
			}
			if err := w.log.Reopen(); err != nil {
				w.log.Warn("reopen logger: ", err)
			}
		}

		if w.exiting && w.noTimersLeft() {
			w.exitProcess()
			return
		}

		if shutdownC != nil {
			select {
			case <-shutdownC:
				w.log.Warn("shutdown timeout elapsed with connections still open, forcing exit")
				w.exitProcess()
				return
			default:
			}
		}
	}
}

// noTimersLeft stands in for the out-of-scope event loop's
// no_timers_left() (spec.md §4.5 Loop, first bullet): with no request
// pipeline implemented, the only "timer" this core tracks itself is the
// set of accepted connections still open.
func (w *Worker) noTimersLeft() bool {
	w.connMu.Lock()
	defer w.connMu.Unlock()
	return len(w.conns) == 0
}

// beginGracefulExit implements spec.md §4.5 Loop's QUIT branch: stop
// accepting, close what's open, mark exiting.
func (w *Worker) beginGracefulExit() {
	w.exiting = true
	w.CloseListeners()
	w.closeIdleConnections()
}

// CloseListeners closes every inherited listener this worker holds. Safe
// to call more than once. Cache helpers call this directly during Init
// (spec.md §4.9: "close listening sockets"); a real worker calls it once,
// on QUIT.
func (w *Worker) CloseListeners() {
	for _, ln := range w.listeners {
		_ = ln.Close()
	}
}

func (w *Worker) closeIdleConnections() {
	w.connMu.Lock()
	defer w.connMu.Unlock()
	for c := range w.conns {
		_ = c.Close()
		delete(w.conns, c)
	}
}

func (w *Worker) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		if !w.trackConn(conn) {
			_ = conn.Close()
			continue
		}
		go w.serve(conn)
	}
}

// serve is the stand-in for the out-of-scope request pipeline: it exists
// only to exercise listener and connection-accounting lifecycle, not to
// implement any protocol (spec.md §1 Non-goals).
func (w *Worker) serve(conn net.Conn) {
	defer w.untrackConn(conn)
	defer conn.Close()

	buf := make([]byte, 1)
	_, _ = conn.Read(buf)
}

func (w *Worker) trackConn(c net.Conn) bool {
	w.connMu.Lock()
	defer w.connMu.Unlock()
	if w.connLimit > 0 && len(w.conns) >= w.connLimit {
		return false
	}
	w.conns[c] = struct{}{}
	return true
}

func (w *Worker) untrackConn(c net.Conn) {
	w.connMu.Lock()
	defer w.connMu.Unlock()
	delete(w.conns, c)
}

// installChannelReader starts a goroutine blocked on Channel.Recv in a
// loop, dispatching each record onto the flags/peer-fd state the main
// loop polls. This is the Go-native form of "register the channel fd with
// the event loop for reading" (spec.md §4.5 step 11): Go's net package has
// no select-style readiness primitive across heterogeneous fds, so a
// dedicated goroutine plays that role, exactly as the master's per-slot
// Wait() goroutines play the role of SIGCHLD.
func (w *Worker) installChannelReader() (stop func()) {
	done := make(chan struct{})

	go func() {
		for {
			msg, err := w.ch.Recv()
			if err != nil {
				select {
				case <-done:
				default:
					w.log.Warn("channel read failed, treating as TERMINATE: ", err)
					w.flags.Terminate.Store(true)
				}
				return
			}
			w.dispatch(msg)
		}
	}()

	return func() { close(done) }
}

func (w *Worker) dispatch(msg channel.Message) {
	switch msg.Command {
	case channel.CmdQuit:
		w.flags.Quit.Store(true)
	case channel.CmdTerminate:
		w.flags.Terminate.Store(true)
	case channel.CmdReopen:
		w.flags.Reopen.Store(true)
	case channel.CmdOpenChannel:
		w.peersMu.Lock()
		w.peers[int(msg.Slot)] = int(msg.Fd)
		w.peersMu.Unlock()
	case channel.CmdCloseChannel:
		w.peersMu.Lock()
		if fd, ok := w.peers[int(msg.Slot)]; ok {
			_ = closeRawFd(fd)
			delete(w.peers, int(msg.Slot))
		}
		w.peersMu.Unlock()
	}
}
