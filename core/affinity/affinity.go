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

// Package affinity parses the per-worker CPU affinity directive and resolves
// it to a concrete CPU set for a given worker index, per spec.md §4.8.
package affinity

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Mask is a CPU bitmask: bit i set means "CPU i is eligible". Bit 0 is CPU 0.
type Mask struct {
	set *bitset.BitSet
}

// Parse reads a bitmask string where the leftmost character is the
// highest-indexed bit and '1'/'0' mark membership, e.g. "0101" == CPUs {0,2}.
func Parse(s string) (Mask, error) {
	if s == "" {
		return Mask{}, fmt.Errorf("affinity: empty mask")
	}

	b := bitset.New(uint(len(s)))
	n := len(s)
	for i, r := range s {
		switch r {
		case '1':
			b.Set(uint(n - 1 - i))
		case '0':
			// leave clear
		default:
			return Mask{}, fmt.Errorf("affinity: invalid character %q in mask %q", r, s)
		}
	}

	if b.Count() == 0 {
		return Mask{}, fmt.Errorf("affinity: mask %q selects no CPU", s)
	}

	return Mask{set: b}, nil
}

// All returns the mask selecting every CPU in [0, ncpu).
func All(ncpu int) Mask {
	b := bitset.New(uint(ncpu))
	for i := 0; i < ncpu; i++ {
		b.Set(uint(i))
	}
	return Mask{set: b}
}

// Count returns the number of CPUs selected by the mask.
func (m Mask) Count() int {
	if m.set == nil {
		return 0
	}
	return int(m.set.Count())
}

// Nth returns the index (in CPU-number space) of the n-th set bit, scanning
// from bit 0 upward. It is used both by auto mode (picking one CPU out of
// the full set for a given worker) and is otherwise unused for explicit
// masks, which are applied whole.
func (m Mask) Nth(n int) (int, bool) {
	if m.set == nil {
		return 0, false
	}
	count := 0
	for i, e := m.set.NextSet(0); e; i, e = m.set.NextSet(i + 1) {
		if count == n {
			return int(i), true
		}
		count++
	}
	return 0, false
}

// CPUs returns the sorted list of CPU indices selected by the mask.
func (m Mask) CPUs() []int {
	if m.set == nil {
		return nil
	}
	var out []int
	for i, e := m.set.NextSet(0); e; i, e = m.set.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

// For resolves the mask to apply to worker index n (0-based), given the
// configured masks and whether auto mode is in effect.
//
//   - auto: select CPU (n mod popcount(full)) out of the full online-CPU set.
//   - explicit: use masks[n] if present, otherwise reuse the last configured
//     mask (boundary behavior: more workers than configured masks).
func For(n int, masks []Mask, auto bool, ncpu int) (Mask, error) {
	if auto {
		full := All(ncpu)
		if full.Count() == 0 {
			return Mask{}, fmt.Errorf("affinity: no online CPUs")
		}
		cpu, _ := full.Nth(n % full.Count())
		b := bitset.New(uint(ncpu))
		b.Set(uint(cpu))
		return Mask{set: b}, nil
	}

	if len(masks) == 0 {
		return Mask{}, fmt.Errorf("affinity: no masks configured")
	}
	if n < len(masks) {
		return masks[n], nil
	}
	return masks[len(masks)-1], nil
}
