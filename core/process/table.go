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

import "sync"

// Table is the fixed-size-in-spirit vector of Slots, keyed by slot number
// independent of pid (spec.md §9: "a reimplementation must keep this
// indirection"). It grows on demand (Go has no static process limit to
// mirror) but every index, once assigned, keeps its identity for the life
// of the table.
type Table struct {
	mu   sync.Mutex
	s    []*Slot
	last int // high-water mark, spec.md §4.4
}

// NewTable returns an empty process table.
func NewTable() *Table {
	return &Table{}
}

// Alloc returns the index of a free slot, reusing the lowest-numbered
// slot whose Pid is -1 before growing the table, and records the
// high-water mark.
func (t *Table) Alloc() (int, *Slot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, sl := range t.s {
		if sl.Pid == -1 {
			if i > t.last {
				t.last = i
			}
			return i, sl
		}
	}

	sl := newEmptySlot()
	t.s = append(t.s, sl)
	i := len(t.s) - 1
	t.last = i
	return i, sl
}

// Reset reoccupies slot i in place, for a respawn that must keep its
// predecessor's slot number (spec.md §4.4, §9). The slice position and the
// high-water mark are left untouched since occupancy doesn't change.
func (t *Table) Reset(i int) *Slot {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 || i >= len(t.s) {
		return nil
	}
	t.s[i] = newEmptySlot()
	return t.s[i]
}

// Get returns the slot at index i, or nil if out of range.
func (t *Table) Get(i int) *Slot {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 || i >= len(t.s) {
		return nil
	}
	return t.s[i]
}

// Free resets slot i to empty. If i is the current high-water mark, the
// mark is decremented (spec.md §4.4: "if this slot is the high-water mark,
// decrement last_process; else set pid=-1").
func (t *Table) Free(i int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 || i >= len(t.s) {
		return
	}
	t.s[i] = newEmptySlot()
	if i == t.last {
		for t.last > 0 && t.s[t.last].Pid == -1 {
			t.last--
		}
	}
}

// Len returns the number of allocated slot entries (including reused free
// ones); it is not the count of live processes.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.s)
}

// Range calls fn, in ascending index order, for every slot that holds a pid
// or has exited; empty slots are skipped. Range iterates over a snapshot
// and holds no lock while fn runs, so fn may call back into Table.
func (t *Table) Range(fn func(i int, s *Slot)) {
	t.mu.Lock()
	snapshot := make([]*Slot, len(t.s))
	copy(snapshot, t.s)
	t.mu.Unlock()

	for i, s := range snapshot {
		if s.Pid != -1 || s.Exited {
			fn(i, s)
		}
	}
}
