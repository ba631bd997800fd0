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

package module

import (
	"fmt"
	"sync"

	"github.com/nabbar/ngcore/core/cycle"
)

// Registry holds the ordered set of registered modules. Init hooks run in
// registration order; Exit hooks run in reverse, mirroring the teardown
// order every dependency-respecting lifecycle manager in the corpus uses.
type Registry struct {
	mu   sync.Mutex
	mods []Module
	idx  map[string]int
}

// NewRegistry returns an empty module registry.
func NewRegistry() *Registry {
	return &Registry{idx: make(map[string]int)}
}

// Register appends m to the registry. Registering two modules under the
// same Name is an error; names must be stable across reloads.
func (r *Registry) Register(m Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.idx[m.Name()]; dup {
		return fmt.Errorf("module: %q already registered", m.Name())
	}
	r.idx[m.Name()] = len(r.mods)
	r.mods = append(r.mods, m)
	return nil
}

// Get returns the registered module named name, or nil.
func (r *Registry) Get(name string) Module {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.idx[name]
	if !ok {
		return nil
	}
	return r.mods[i]
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mods)
}

// InitMaster calls InitMaster on every module in registration order,
// stopping at the first error (the cycle under construction is abandoned,
// the previous one stays live).
func (r *Registry) InitMaster(c *cycle.Cycle) error {
	for _, m := range r.snapshot() {
		if err := m.InitMaster(c); err != nil {
			return fmt.Errorf("module %q: init master: %w", m.Name(), err)
		}
	}
	return nil
}

// ExitMaster calls ExitMaster on every module in reverse registration order.
func (r *Registry) ExitMaster(c *cycle.Cycle) {
	mods := r.snapshot()
	for i := len(mods) - 1; i >= 0; i-- {
		mods[i].ExitMaster(c)
	}
}

// InitProcess calls InitProcess on every module in registration order,
// stopping at the first error (the child exits immediately, spec.md §4.5).
func (r *Registry) InitProcess(c *cycle.Cycle) error {
	for _, m := range r.snapshot() {
		if err := m.InitProcess(c); err != nil {
			return fmt.Errorf("module %q: init process: %w", m.Name(), err)
		}
	}
	return nil
}

// ExitProcess calls ExitProcess on every module in reverse registration
// order.
func (r *Registry) ExitProcess(c *cycle.Cycle) {
	mods := r.snapshot()
	for i := len(mods) - 1; i >= 0; i-- {
		mods[i].ExitProcess(c)
	}
}

func (r *Registry) snapshot() []Module {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Module, len(r.mods))
	copy(out, r.mods)
	return out
}
