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

// Package arena models the scoped, generation-wide cleanup stack a cycle
// owns: every resource allocated for one configuration generation registers
// a release callback here, and the callbacks run in reverse order exactly
// once, when the generation is retired.
package arena

import "sync"

// Arena is a LIFO stack of cleanup callbacks. A Go runtime reclaims memory
// on its own, so Arena carries no allocator — it exists purely to give
// non-memory resources (open files, environment arrays, mmap'd zones) the
// same "freed when the generation dies" lifetime spec.md requires of the
// memory pool.
type Arena struct {
	mu     sync.Mutex
	fns    []func()
	closed bool
}

// New returns an empty Arena.
func New() *Arena {
	return &Arena{}
}

// Defer registers fn to run when the Arena is destroyed. Callbacks run in
// reverse registration order, mirroring the pool's LIFO cleanup-handler
// semantics. Registering on an already-destroyed Arena runs fn immediately.
func (a *Arena) Defer(fn func()) {
	if fn == nil {
		return
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		fn()
		return
	}
	a.fns = append(a.fns, fn)
	a.mu.Unlock()
}

// Destroy runs every registered callback in reverse order and marks the
// Arena closed; it is safe to call more than once, later calls are no-ops.
func (a *Arena) Destroy() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	fns := a.fns
	a.fns = nil
	a.closed = true
	a.mu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// Closed reports whether Destroy has already run.
func (a *Arena) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}
