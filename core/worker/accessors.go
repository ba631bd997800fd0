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
	"github.com/nabbar/ngcore/core/cycle"
	"github.com/nabbar/ngcore/logger"
)

// StartChannelReader exposes installChannelReader to core/cachehelper,
// which reuses Init/exitProcess but drives its own loop instead of Run
// (spec.md §4.9: the cache manager/loader have their own event handler,
// not the accept-driven worker loop).
func (w *Worker) StartChannelReader() (stop func()) {
	return w.installChannelReader()
}

// Stopping reports whether a TERMINATE or QUIT has been received; it does
// not clear either flag. Cache helpers poll this between iterations
// (spec.md §4.9: "Honors terminate/quit mid-iteration").
func (w *Worker) Stopping() bool {
	return w.flags.Terminate.Load() || w.flags.Quit.Load()
}

// ExitProcess runs the shared worker-exit sequence (spec.md §4.5/§4.9) and
// does not return.
func (w *Worker) ExitProcess() {
	w.exitProcess()
}

// Cycle exposes the configuration generation this worker was built for.
func (w *Worker) Cycle() *cycle.Cycle {
	return w.cycle
}

// Log exposes this worker's logger, pre-tagged with slot/role fields by
// whoever called Init.
func (w *Worker) Log() logger.Logger {
	return w.log
}
