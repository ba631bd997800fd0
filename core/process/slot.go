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

// Package process implements the fixed-size process table indexed by slot,
// the spawner that re-execs the current binary to stand up a child, and
// the disposition policy governing respawn/signal-sweep exemption.
package process

import (
	"os/exec"

	"github.com/nabbar/ngcore/core/channel"
)

// Entrypoint names which role a spawned child resolves to once it reads
// NGCORE_ENTRYPOINT from its environment; this is the Go substitute for "child invokes
// proc(cycle, data) and does not return" — an exec boundary means the
// parent cannot hand over a live closure, only a name.
type Entrypoint string

const (
	EntrypointWorker       Entrypoint = "worker"
	EntrypointCacheManager Entrypoint = "cache-manager"
	EntrypointCacheLoader  Entrypoint = "cache-loader"
)

// Disposition governs respawn policy and signal-sweep exemption for a slot,
// exactly as spec.md §4.1 enumerates.
type Disposition uint8

const (
	NoRespawn Disposition = iota
	JustSpawn
	Respawn
	JustRespawn
	Detached
)

func (d Disposition) String() string {
	switch d {
	case NoRespawn:
		return "no_respawn"
	case JustSpawn:
		return "just_spawn"
	case Respawn:
		return "respawn"
	case JustRespawn:
		return "just_respawn"
	case Detached:
		return "detached"
	default:
		return "unknown"
	}
}

// respawns reports whether the supervisor should re-spawn this disposition
// after the child exits.
func (d Disposition) respawns() bool {
	return d == Respawn || d == JustRespawn
}

// exemptFromSweep reports whether a just-spawned slot with this
// disposition is exempt from the signal round immediately following spawn
// (spec.md §3: just_spawn "exempt from the next signal sweep").
func (d Disposition) exemptFromSweep() bool {
	return d == JustSpawn || d == JustRespawn
}

// Slot is one entry in the process table. Invariant: Pid is a positive
// integer exactly between a successful Spawn and the corresponding Reap;
// -1 otherwise (spec.md §8 invariant 1).
type Slot struct {
	Pid         int
	Name        string
	Entry       Entrypoint
	Disposition Disposition
	Channel     *channel.Channel
	Cmd         *exec.Cmd
	Env         []string // environment Spawn used, preserved so a reap respawn reuses it

	JustSpawn bool
	Detached  bool
	Exiting   bool
	Exited    bool
	ExitCode  int

	// Peers holds the channel fd this process's peers have announced via
	// OPEN_CHANNEL, keyed by the peer's slot number — spec.md §8 invariant
	// 2: every live pair of workers holds exactly one fd for the other.
	Peers map[int]int
}

func newEmptySlot() *Slot {
	return &Slot{Pid: -1, Peers: make(map[int]int)}
}

// Live reports whether the slot currently holds a supervised, non-exited
// process (used to compute the master loop's "live" predicate, spec.md
// §4.3 step 4).
func (s *Slot) Live() bool {
	return s.Pid != -1 && !s.Exited
}
