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

// Package cycle implements the configuration-generation object: an
// immutable bundle of listeners, open log files, cache paths, shared-memory
// zones, and a scoped cleanup arena. A reload produces a new Cycle that
// points at its predecessor through Prev. The master does not destroy a
// cycle it has replaced; only the current cycle is destroyed, when the
// master exits.
package cycle

import (
	"fmt"
	"os"
	"sync"

	"github.com/nabbar/ngcore/core/arena"
	"github.com/nabbar/ngcore/logger"
)

// Cycle is one configuration generation. It is built once by InitCycle and
// never mutated afterward — every field is populated before the cycle is
// published (swapped into the master's current-cycle pointer).
type Cycle struct {
	Arena     *arena.Arena
	Log       logger.Logger
	Listeners []*Listener
	OpenFiles []*os.File
	Paths     []Path
	Zones     []*Zone
	Prev      *Cycle

	mu   sync.RWMutex
	tree map[string]interface{}
}

// New builds an empty Cycle chained to prev (may be nil for the first
// generation). The caller populates Listeners/Paths/Zones/tree and then
// publishes it; on any validation failure the caller should call Destroy
// instead of publishing, per the "reload atomicity" rule (spec.md §4.3).
func New(prev *Cycle, log logger.Logger) *Cycle {
	return &Cycle{
		Arena: arena.New(),
		Log:   log,
		Prev:  prev,
		tree:  make(map[string]interface{}),
	}
}

// Set stores a module's parsed configuration under key, addressable later
// by that module (spec.md §3: "parsed configuration tree, opaque to the
// core, addressed by module key").
func (c *Cycle) Set(key string, val interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree[key] = val
}

// Lookup retrieves a module's parsed configuration by key.
func (c *Cycle) Lookup(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.tree[key]
	return v, ok
}

// HasCacheHelpers reports whether any Path declares a manager or loader
// callback, which is what gates spawning the cache manager/loader helpers
// (spec.md §4.9).
func (c *Cycle) HasCacheHelpers() bool {
	for _, p := range c.Paths {
		if p.Manager != nil || p.Loader != nil {
			return true
		}
	}
	return false
}

// ActiveListeners returns every non-Ignore listener: the set that should be
// handed to a freshly spawned worker set.
func (c *Cycle) ActiveListeners() []*Listener {
	out := make([]*Listener, 0, len(c.Listeners))
	for _, l := range c.Listeners {
		if !l.Ignore {
			out = append(out, l)
		}
	}
	return out
}

// SameListenerAddresses reports whether c and other declare the same set of
// (network, address) pairs, ignoring fd identity — the round-trip property
// a successful reload must preserve (spec.md §8 invariant 4).
func (c *Cycle) SameListenerAddresses(other *Cycle) bool {
	if other == nil {
		return false
	}

	key := func(l *Listener) string { return l.Network + " " + l.Address }

	a := make(map[string]int)
	for _, l := range c.ActiveListeners() {
		a[key(l)]++
	}
	b := make(map[string]int)
	for _, l := range other.ActiveListeners() {
		b[key(l)]++
	}

	if len(a) != len(b) {
		return false
	}
	for k, n := range a {
		if b[k] != n {
			return false
		}
	}
	return true
}

// Destroy releases every resource the cycle owns: closes every listener
// not flagged Ignore (inherited ones included) and open files, unmaps
// zones, and runs the
// arena's cleanup stack in reverse order. Called once no process still
// references this generation (spec.md §3 Cycle lifecycle).
func (c *Cycle) Destroy() {
	for _, l := range c.Listeners {
		if !l.Ignore {
			_ = l.Close()
		}
	}
	for _, f := range c.OpenFiles {
		_ = f.Close()
	}
	for _, z := range c.Zones {
		_ = z.Close()
	}
	c.Arena.Destroy()
}

// ReopenFiles closes and reopens every OpenFiles entry in place, used by
// the REOPEN command (spec.md §4.5, §8 round-trip property).
func (c *Cycle) ReopenFiles() error {
	for i, f := range c.OpenFiles {
		name := f.Name()
		if err := f.Close(); err != nil {
			return fmt.Errorf("cycle: close %q: %w", name, err)
		}
		nf, err := os.OpenFile(name, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
		if err != nil {
			return fmt.Errorf("cycle: reopen %q: %w", name, err)
		}
		c.OpenFiles[i] = nf
	}
	return nil
}
