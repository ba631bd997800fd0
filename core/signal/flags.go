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

// Package signal models the process-wide sig_atomic flags spec.md §9 asks
// to be preserved verbatim: a fixed record of booleans, set only by a
// signal-delivery goroutine (the Go stand-in for an async-signal-safe
// handler) and polled/cleared only by the owning loop. It is deliberately
// not a channel of events — multiple deliveries of the same signal must
// coalesce into one pending flag, never queue.
package signal

import "sync/atomic"

// Flags is the fixed set of pending-signal booleans shared by the master
// loop and (in reduced form) the worker loop. Every field is an
// atomic.Bool; do not add a mutex here, the whole point is lock-free,
// at-least-once, coalescing notification.
type Flags struct {
	Reap         atomic.Bool
	Terminate    atomic.Bool
	Quit         atomic.Bool
	Reconfigure  atomic.Bool
	Restart      atomic.Bool
	Reopen       atomic.Bool
	ChangeBinary atomic.Bool
	NoAccept     atomic.Bool
	Alarm        atomic.Bool
}

// TestAndClear reports whether f was set, clearing it atomically.
func TestAndClear(f *atomic.Bool) bool {
	return f.CompareAndSwap(true, false)
}
