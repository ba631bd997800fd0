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

package cachehelper

import (
	"os"
	"time"

	"github.com/nabbar/ngcore/core/worker"
)

// loaderInitialDelay is the fixed wait before the cache loader touches any
// Path, matching spec.md §4.9/§9: the loader gives the listening workers a
// head start so it never competes with them for disk bandwidth during the
// first minute after a reload. Recorded as an Open-Question decision in
// DESIGN.md rather than made configurable.
const loaderInitialDelay = 60 * time.Second

// loaderPollInterval is how often the initial wait re-checks Stopping, so a
// QUIT/TERMINATE sent during the head start is honored promptly instead of
// only after the full minute.
const loaderPollInterval = 50 * time.Millisecond

// RunLoader starts the cache loader: build the worker, close the listening
// sockets, wait out loaderInitialDelay (abortable), then run every Path's
// loader exactly once before exiting. Unlike RunManager this role never
// loops — spec.md §4.9 describes the loader as a one-shot pass.
func RunLoader(opts worker.Options) {
	opts.Index = worker.NoIndex
	opts.ConnectionLimit = helperConnectionLimit

	w, err := worker.Init(opts)
	if err != nil {
		opts.Log.Error("cache loader: init: ", err)
		os.Exit(2)
	}
	w.CloseListeners()

	stop := w.StartChannelReader()
	defer stop()

	if !sleepInterruptible(loaderInitialDelay, w.Stopping) {
		w.ExitProcess()
		return
	}

	for _, p := range w.Cycle().Paths {
		if w.Stopping() {
			break
		}
		if p.Loader == nil {
			continue
		}
		if err = p.Loader(p.Root); err != nil {
			w.Log().Error("cache loader: ", p.Root, ": ", err)
		}
	}

	w.ExitProcess()
}

// sleepInterruptible waits up to d, polling stop every loaderPollInterval,
// and returns false the moment stop reports true instead of completing the
// full wait.
func sleepInterruptible(d time.Duration, stop func() bool) bool {
	deadline := time.Now().Add(d)

	for time.Now().Before(deadline) {
		if stop() {
			return false
		}
		time.Sleep(loaderPollInterval)
	}

	return !stop()
}
