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

// Package worker implements the child-process lifecycle of spec.md §4.5:
// privilege drop, affinity, module init, the channel-driven event loop,
// and graceful-vs-immediate exit. It is shared by the real network worker
// and, with WorkerIndex == -1, by the cache manager/loader helpers of
// spec.md §4.9, exactly as the original reuses worker_process_init for
// both.
package worker

import (
	"net"
	"sync"
	"time"

	"github.com/nabbar/ngcore/core/channel"
	"github.com/nabbar/ngcore/core/config"
	"github.com/nabbar/ngcore/core/cycle"
	"github.com/nabbar/ngcore/core/module"
	coresig "github.com/nabbar/ngcore/core/signal"
	"github.com/nabbar/ngcore/logger"
)

// WorkerIndex marks the role a Worker plays once Init resolves affinity and
// connection accounting: a real network worker is assigned a small ordinal
// used for CPU affinity; the cache helpers pass -1 (spec.md §4.9: "no
// affinity, no event-driven accept").
type WorkerIndex = int

const NoIndex WorkerIndex = -1

// Options gathers everything Init needs to stand up one child process.
// Slot is used only for log fields; the worker has no access to
// the master's process table past its own Channel.
type Options struct {
	Cycle   *cycle.Cycle
	Conf    *config.Core
	Mods    *module.Registry
	Channel *channel.Channel
	Log     logger.Logger

	Slot  int
	Index WorkerIndex // -1 for cache helpers

	// ConnectionLimit caps tracked accepted connections; cache helpers set
	// this to 512 per spec.md §4.9, cmd/ngcored gives a real worker 1024;
	// 0 means no cap.
	ConnectionLimit int
}

// Worker holds the running state of one child after Init completed every
// step of spec.md §4.5.
type Worker struct {
	cycle *cycle.Cycle
	conf  *config.Core
	mods  *module.Registry
	ch    *channel.Channel
	log   logger.Logger

	slot  int
	index WorkerIndex

	flags coresig.Flags

	listeners []net.Listener

	connMu    sync.Mutex
	conns     map[net.Conn]struct{}
	connLimit int

	peersMu sync.Mutex
	peers   map[int]int // peer slot -> fd, installed by OPEN_CHANNEL

	shutdownTimeout time.Duration
	exiting         bool
}

// exitFunc is a var, not a bare os.Exit call, so tests can observe the
// code instead of killing the test binary (mirrors core/master's
// exitProcess indirection).
var exitFunc = osExit
