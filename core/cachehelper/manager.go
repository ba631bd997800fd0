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

// Package cachehelper implements the two helper roles of spec.md §4.9: the
// cache manager (runs forever, periodically pruning every cache Path) and
// the cache loader (runs once at startup, then exits). Both reuse
// core/worker's Init exactly as the original reuses worker_process_init,
// passing worker.NoIndex so Init skips CPU affinity and the real
// network accept loop is never started.
package cachehelper

import (
	"os"
	"time"

	"github.com/nabbar/ngcore/core/worker"
)

// helperConnectionLimit matches spec.md §4.9's connection_n=512 for both
// cache helpers.
const helperConnectionLimit = 512

// defaultManagerDelay is the fallback interval when no Path declares a
// manager, or every manager's suggestion is larger than an hour.
const defaultManagerDelay = time.Hour

// minManagerDelay floors whatever a manager callback suggests.
const minManagerDelay = time.Millisecond

// RunManager starts the cache manager: build the worker, close the
// listening sockets so Unix-domain listener files survive (spec.md §4.9),
// then loop, running every Path's manager and sleeping for the minimum
// suggested delay, until TERMINATE or QUIT is observed.
func RunManager(opts worker.Options) {
	opts.Index = worker.NoIndex
	opts.ConnectionLimit = helperConnectionLimit

	w, err := worker.Init(opts)
	if err != nil {
		opts.Log.Error("cache manager: init: ", err)
		os.Exit(2)
	}
	w.CloseListeners()

	stop := w.StartChannelReader()
	defer stop()

	for {
		if w.Stopping() {
			w.ExitProcess()
			return
		}
		time.Sleep(tickManager(w))
	}
}

// tickManager runs one pass over every Path with a manager callback and
// returns the delay to wait before the next pass: the minimum of every
// Path's suggestion, floored at minManagerDelay, defaulting to
// defaultManagerDelay when nothing suggests a shorter interval.
func tickManager(w *worker.Worker) time.Duration {
	next := defaultManagerDelay

	for _, p := range w.Cycle().Paths {
		if p.Manager == nil {
			continue
		}
		d, err := p.Manager(p.Root)
		if err != nil {
			w.Log().Warn("cache manager: ", p.Root, ": ", err)
			continue
		}
		if d < minManagerDelay {
			d = minManagerDelay
		}
		if d < next {
			next = d
		}
	}

	return next
}
