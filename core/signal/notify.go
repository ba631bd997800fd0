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

package signal

import (
	"os"
	"os/signal"
	"syscall"
)

// Logical names for the master's operator-facing signals, per spec.md §6.
const (
	SigShutdown    = syscall.SIGQUIT
	SigTerminate   = syscall.SIGTERM
	SigInterrupt   = syscall.SIGINT
	SigReconfigure = syscall.SIGHUP
	SigReopen      = syscall.SIGUSR1
	SigChangeBin   = syscall.SIGUSR2
	SigNoAccept    = syscall.SIGWINCH
)

// Watch installs signal.Notify for the master's full signal set and
// returns a stop function. Delivery happens on a dedicated runtime-managed
// goroutine (Go has no sigsuspend equivalent); that goroutine does nothing
// but set a flag, which is the Go-native analogue of an async-signal-safe
// handler — all real work happens later, polled by the master loop.
func Watch(f *Flags) (stop func()) {
	ch := make(chan os.Signal, 16)
	signal.Notify(ch,
		SigShutdown, SigTerminate, SigInterrupt, SigReconfigure,
		SigReopen, SigChangeBin, SigNoAccept,
	)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case s := <-ch:
				switch s {
				case SigShutdown:
					f.Quit.Store(true)
				case SigTerminate, SigInterrupt:
					f.Terminate.Store(true)
				case SigReconfigure:
					f.Reconfigure.Store(true)
				case SigReopen:
					f.Reopen.Store(true)
				case SigChangeBin:
					f.ChangeBinary.Store(true)
				case SigNoAccept:
					f.NoAccept.Store(true)
				}
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
