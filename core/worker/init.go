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
	"fmt"
	"math/rand"
	"net"
	"os"
	"os/user"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sys/unix"

	"github.com/nabbar/ngcore/core/affinity"
	"github.com/nabbar/ngcore/core/cycle"
)

// Init runs every step of spec.md §4.5's "after fork, in child" sequence
// except step 1 (environment rebuild), which this module's Go-native
// process model performs before exec, in core/process.Spawn — a re-exec'd
// child starts with the filtered envp already in place, so there is no
// post-fork rebuild left to perform here.
func Init(opts Options) (*Worker, error) {
	w := &Worker{
		cycle:           opts.Cycle,
		conf:            opts.Conf,
		mods:            opts.Mods,
		ch:              opts.Channel,
		log:             opts.Log,
		slot:            opts.Slot,
		index:           opts.Index,
		conns:           make(map[net.Conn]struct{}),
		connLimit:       opts.ConnectionLimit,
		peers:           make(map[int]int),
		shutdownTimeout: opts.Conf.ShutdownTimeout,
	}

	// step 2: priority
	if opts.Conf.NicePriority != nil {
		if err := unix.Setpriority(unix.PRIO_PROCESS, 0, *opts.Conf.NicePriority); err != nil {
			return nil, fmt.Errorf("worker: setpriority: %w", err)
		}
	}

	// step 3: rlimits
	if opts.Conf.RLimitNoFile != nil {
		lim := unix.Rlimit{Cur: *opts.Conf.RLimitNoFile, Max: *opts.Conf.RLimitNoFile}
		if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &lim); err != nil {
			return nil, fmt.Errorf("worker: setrlimit nofile: %w", err)
		}
	}
	if opts.Conf.RLimitCore != nil {
		lim := unix.Rlimit{Cur: *opts.Conf.RLimitCore, Max: *opts.Conf.RLimitCore}
		if err := unix.Setrlimit(unix.RLIMIT_CORE, &lim); err != nil {
			return nil, fmt.Errorf("worker: setrlimit core: %w", err)
		}
	}

	// step 4: drop privileges if running as root
	if os.Geteuid() == 0 && opts.Conf.User != "" {
		if err := dropPrivileges(opts.Conf.User, opts.Conf.Group); err != nil {
			return nil, fmt.Errorf("worker: drop privileges: %w", err)
		}
	}

	// step 5: CPU affinity, only for real workers (index >= 0)
	if opts.Index >= 0 && len(opts.Conf.CPUAffinity) > 0 {
		if err := applyAffinity(opts.Index, opts.Conf.CPUAffinity); err != nil {
			w.log.Warn("cpu affinity: ", err)
		}
	}

	// step 6: re-enable core dumps after setuid
	_ = unix.Prctl(unix.PR_SET_DUMPABLE, 1, 0, 0, 0)

	// step 7: working directory
	if opts.Conf.WorkingDir != "" {
		if err := os.Chdir(opts.Conf.WorkingDir); err != nil {
			return nil, fmt.Errorf("worker: chdir %s: %w", opts.Conf.WorkingDir, err)
		}
	}

	// step 8: the blocked signal mask master installs before sigsuspend has
	// no counterpart here — this module's signal handling is built on
	// signal.Notify (core/signal), which never blocks delivery to begin
	// with, so there is no mask left to clear. Preserved as a design note,
	// not a call, per SPEC_FULL.md's ambient-stack discussion of §9.

	// step 9: seed the PRNG
	now := time.Now()
	seed := (int64(os.Getpid()) << 16) ^ now.Unix() ^ int64(now.Nanosecond())
	_ = rand.New(rand.NewSource(seed)) // discarded: core itself has no per-request randomness to seed

	// step 10: module init hooks
	if opts.Mods != nil {
		if err := opts.Mods.InitProcess(opts.Cycle); err != nil {
			return nil, fmt.Errorf("worker: module init_process: %w", err)
		}
	}

	// step 11 (first half): recover this generation's listeners from the
	// NGINX= environment variable process.Spawn set for a same-generation
	// child (or an upgrade successor, if this is its first cycle), and
	// derive the connection-accepting net.Listener view of each.
	inherited, err := cycle.InheritListeners()
	if err != nil {
		return nil, fmt.Errorf("worker: inherit listeners: %w", err)
	}
	w.listeners = make([]net.Listener, 0, len(inherited))
	for _, l := range inherited {
		ln, err := l.Listener()
		if err != nil {
			return nil, fmt.Errorf("worker: wrap inherited listener: %w", err)
		}
		w.listeners = append(w.listeners, ln)
	}

	return w, nil
}

// dropPrivileges resolves user/group by name and applies setgid/setgroups/
// setuid in that order, matching spec.md §4.5 step 4's ordering (group
// identity must be fixed before the process gives up the privilege needed
// to change it).
func dropPrivileges(userName, groupName string) error {
	u, err := user.Lookup(userName)
	if err != nil {
		return fmt.Errorf("lookup user %q: %w", userName, err)
	}

	gidStr := u.Gid
	if groupName != "" {
		g, err := user.LookupGroup(groupName)
		if err != nil {
			return fmt.Errorf("lookup group %q: %w", groupName, err)
		}
		gidStr = g.Gid
	}

	gid, err := strconv.Atoi(gidStr)
	if err != nil {
		return fmt.Errorf("parse gid %q: %w", gidStr, err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return fmt.Errorf("parse uid %q: %w", u.Uid, err)
	}

	if err := unix.Setgid(gid); err != nil {
		return fmt.Errorf("setgid(%d): %w", gid, err)
	}

	groupIDs, err := u.GroupIds()
	if err == nil {
		gids := make([]int, 0, len(groupIDs))
		for _, s := range groupIDs {
			if n, err := strconv.Atoi(s); err == nil {
				gids = append(gids, n)
			}
		}
		_ = unix.Setgroups(gids) // best-effort initgroups equivalent
	}

	if err := unix.Setuid(uid); err != nil {
		return fmt.Errorf("setuid(%d): %w", uid, err)
	}

	return nil
}

// applyAffinity resolves and applies this worker's CPU mask, per spec.md
// §4.8: "auto" mode picks one CPU out of the full online set; explicit
// mode reuses the last configured mask once the worker index runs past
// the configured list.
func applyAffinity(index int, configured []string) error {
	auto := len(configured) == 1 && configured[0] == "auto"

	var masks []affinity.Mask
	if !auto {
		masks = make([]affinity.Mask, 0, len(configured))
		for _, s := range configured {
			m, err := affinity.Parse(s)
			if err != nil {
				return err
			}
			masks = append(masks, m)
		}
	}

	m, err := affinity.For(index, masks, auto, runtime.NumCPU())
	if err != nil {
		return err
	}
	return m.Apply(0)
}
