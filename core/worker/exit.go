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
	"golang.org/x/sys/unix"
)

// exitProcess implements spec.md §4.5 "Worker exit": run every module's
// ExitProcess hook, warn about connections still open past a graceful
// QUIT (these would be leaks in a real request pipeline; here the
// condition can only arise from the shutdown-timeout escape hatch, since
// beginGracefulExit already closed everything it can see), destroy the
// cycle's arena, and exit(0). A failed Init never reaches here — its
// caller (cmd/ngcored) calls os.Exit(2) directly per spec.md §7.
func (w *Worker) exitProcess() {
	if w.mods != nil {
		w.mods.ExitProcess(w.cycle)
	}

	if w.exiting {
		w.connMu.Lock()
		leaked := len(w.conns)
		w.connMu.Unlock()
		if leaked > 0 {
			w.log.Warn("exiting with ", leaked, " connection(s) still open")
			if w.conf.DebugPoints == "abort" {
				panic("ngcore: debug point, connections leaked past graceful shutdown")
			}
		}
	}

	w.peersMu.Lock()
	for slot, fd := range w.peers {
		_ = closeRawFd(fd)
		delete(w.peers, slot)
	}
	w.peersMu.Unlock()

	w.cycle.Destroy()
	_ = w.log.Close()

	exitFunc(0)
}

func closeRawFd(fd int) error {
	return unix.Close(fd)
}
