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

package process

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/nabbar/ngcore/core/channel"
	"github.com/nabbar/ngcore/core/cycle"
)

// EnvEntrypoint and EnvChannelFd are read by the re-exec'd child to resolve
// which role it plays and which inherited fd carries its control channel.
// Go has no fork(); re-exec with a marked environment is the idiomatic
// substitute for nginx's post-fork dispatch on a role enum.
const (
	EnvEntrypoint = "NGCORE_ENTRYPOINT"
	EnvSlot       = "NGCORE_SLOT"
	EnvChannelFd  = "NGCORE_CHANNEL_FD"
)

// Spec describes one child the master wants running.
type Spec struct {
	Entry       Entrypoint
	Disposition Disposition
	Args        []string // argv passed to the re-exec'd binary; the role travels in EnvEntrypoint
	Listeners   []*cycle.Listener

	// Slot pins the child to a specific table index instead of letting
	// Spawn pick the next free one via Table.Alloc. A respawn passes its
	// predecessor's exited slot here so it reoccupies the same index
	// (spec.md §4.4, §9); -1 means "allocate any free slot", the choice
	// for every fresh, non-respawn spawn.
	Slot int

	// Env, when non-nil, replaces the inherited os.Environ() wholesale —
	// the Go-native placement of spec.md §4.5 step 1 ("rebuild the
	// environment from the cycle's env list"). Since a re-exec'd child
	// starts with whatever envp the parent gave it at exec time, there is
	// no post-fork "rebuild" to perform inside the child; the parent
	// builds the filtered environment before Spawn ever calls exec.
	Env []string
}

// Spawn re-execs the current binary (os.Executable) to start a child
// matching spec, installs it into a free slot of t, and returns that slot's
// index. The child inherits spec.Listeners by fd via ExtraFiles, plus one
// more fd for its end of a fresh control-channel socketpair; the parent
// keeps the other end in the returned Slot.Channel.
//
// This is the direct substitute for the original's fork()+proc(cycle,data)
// pattern: Go offers no safe fork, so role dispatch crosses an exec
// boundary via environment variables instead of a live closure argument.
func Spawn(t *Table, spec Spec) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return -1, fmt.Errorf("process: resolve self executable: %w", err)
	}

	parentCh, childFile, err := channel.New()
	if err != nil {
		return -1, fmt.Errorf("process: create control channel: %w", err)
	}

	var (
		idx int
		sl  *Slot
	)
	if spec.Slot >= 0 {
		idx = spec.Slot
		sl = t.Reset(idx)
		if sl == nil {
			_ = parentCh.Close()
			_ = childFile.Close()
			return -1, fmt.Errorf("process: slot %d out of range for respawn", idx)
		}
	} else {
		idx, sl = t.Alloc()
	}

	cmd := exec.Command(exe, spec.Args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = nil

	extra := make([]*os.File, 0, len(spec.Listeners)+1)
	for _, l := range spec.Listeners {
		extra = append(extra, l.File())
	}
	extra = append(extra, childFile)
	cmd.ExtraFiles = extra

	// ExtraFiles[i] lands at fd 3+i in the child; the channel is always
	// last, so its fd number is len(extra)+2.
	channelFd := 3 + len(extra) - 1

	base := spec.Env
	if base == nil {
		base = os.Environ()
	}
	env := append(append([]string{}, base...),
		EnvEntrypoint+"="+string(spec.Entry),
		EnvSlot+"="+strconv.Itoa(idx),
		EnvChannelFd+"="+strconv.Itoa(channelFd),
	)

	// Same-generation listener handoff reuses the binary-upgrade env
	// mechanism (cycle.EnvListeners/BuildEnvValue): the child recovers
	// network/address for each fd with getsockname rather than trusting a
	// second, bespoke description, exactly as an upgrade successor does.
	if len(spec.Listeners) > 0 {
		fds := make([]int, len(spec.Listeners))
		for i := range spec.Listeners {
			fds[i] = 3 + i
		}
		env = append(env, cycle.EnvListeners+"="+cycle.BuildEnvValue(fds))
	}
	cmd.Env = env

	if err := cmd.Start(); err != nil {
		_ = parentCh.Close()
		_ = childFile.Close()
		t.Free(idx)
		return -1, fmt.Errorf("process: start %s: %w", spec.Entry, err)
	}
	_ = childFile.Close() // parent's copy of the child's fd, now duped into the child

	sl.Pid = cmd.Process.Pid
	sl.Name = string(spec.Entry)
	sl.Entry = spec.Entry
	sl.Disposition = spec.Disposition
	sl.Channel = parentCh
	sl.Cmd = cmd
	sl.Env = spec.Env
	sl.JustSpawn = spec.Disposition.exemptFromSweep()
	sl.Detached = spec.Disposition == Detached
	sl.Exiting = false
	sl.Exited = false
	sl.ExitCode = 0

	return idx, nil
}

// InheritChannel recovers the child-side control channel from the fd named
// by NGCORE_CHANNEL_FD. Call this once, early, in a re-exec'd child.
func InheritChannel() (*channel.Channel, error) {
	v := os.Getenv(EnvChannelFd)
	if v == "" {
		return nil, fmt.Errorf("process: %s not set", EnvChannelFd)
	}
	fd, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("process: invalid %s=%q: %w", EnvChannelFd, v, err)
	}
	f := os.NewFile(uintptr(fd), "ngcore-channel")
	if f == nil {
		return nil, fmt.Errorf("process: fd %d from %s is not valid", fd, EnvChannelFd)
	}
	return channel.FromFile(f)
}

// ResolveEntrypoint reads NGCORE_ENTRYPOINT, returning ok=false when unset
// (i.e. this process is the master, not a re-exec'd child).
func ResolveEntrypoint() (Entrypoint, bool) {
	v := os.Getenv(EnvEntrypoint)
	if v == "" {
		return "", false
	}
	return Entrypoint(v), true
}

// ResolveSlot reads NGCORE_SLOT, the index the child was allocated in the
// parent's table, for inclusion in log fields and channel bookkeeping.
func ResolveSlot() (int, error) {
	v := os.Getenv(EnvSlot)
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1, fmt.Errorf("process: invalid %s=%q: %w", EnvSlot, v, err)
	}
	return n, nil
}
