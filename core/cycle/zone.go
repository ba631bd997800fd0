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

package cycle

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Zone is a named shared-memory region mapped MAP_SHARED so every worker
// of every generation sees the same bytes. Per-zone locking and layout are
// out of core scope (spec.md §5); the core only owns creation and release.
type Zone struct {
	Name string
	Size int

	data []byte
}

// NewZone mmaps size bytes anonymously and shared, so the mapping survives
// across fork/exec into worker processes that inherit it (workers are
// spawned via re-exec in this module, not fork, so in practice a zone is
// only useful to code within the master plus its cache helpers unless the
// zone is backed by a file instead of MAP_ANON).
func NewZone(name string, size int) (*Zone, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cycle: zone %q: size must be positive", name)
	}

	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("cycle: zone %q: mmap: %w", name, err)
	}

	return &Zone{Name: name, Size: size, data: b}, nil
}

// Bytes exposes the mapped region.
func (z *Zone) Bytes() []byte {
	return z.data
}

// Close unmaps the region.
func (z *Zone) Close() error {
	if z.data == nil {
		return nil
	}
	err := unix.Munmap(z.data)
	z.data = nil
	return err
}
