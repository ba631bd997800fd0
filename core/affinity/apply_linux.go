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

//go:build linux

package affinity

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Apply binds the calling thread's process to the CPUs selected by m via
// sched_setaffinity(2). The worker calls this for itself right after fork
// (spec.md §4.5 step 5), before any other thread could be created.
func (m Mask) Apply(pid int) error {
	if m.set == nil {
		return fmt.Errorf("affinity: empty mask")
	}

	var set unix.CPUSet
	set.Zero()
	for _, cpu := range m.CPUs() {
		set.Set(cpu)
	}

	return unix.SchedSetaffinity(pid, &set)
}
