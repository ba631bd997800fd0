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
	"net"
	"os"
)

// Listener is a bound socket owned by a Cycle. Workers never open their own
// listeners (except ReusePort ones, which bind independently by design);
// they always inherit the fd from the master, by ExtraFiles for a
// same-generation spawn or by the NGINX environment variable across a
// binary upgrade.
type Listener struct {
	Network   string // "tcp" or "unix"
	Address   string
	Inherited bool // came from a predecessor binary via NGINX=
	Ignore    bool // superseded by a newer cycle, do not hand to new workers
	ReusePort bool // each worker binds its own copy instead of inheriting

	file *os.File
}

// Listen opens a fresh listener for addr ("tcp"/"unix") and wraps it. The
// returned Listener owns file and must be closed via Close or handed off
// via File before the process exits, or the fd leaks.
func Listen(network, address string) (*Listener, error) {
	ln, err := net.Listen(network, address)
	if err != nil {
		return nil, fmt.Errorf("cycle: listen %s %s: %w", network, address, err)
	}

	var f *os.File
	switch t := ln.(type) {
	case *net.TCPListener:
		f, err = t.File()
	case *net.UnixListener:
		f, err = t.File()
	default:
		_ = ln.Close()
		return nil, fmt.Errorf("cycle: unsupported listener type for %s", network)
	}
	// File() dups the fd; close the original net.Listener, we keep the dup.
	_ = ln.Close()
	if err != nil {
		return nil, fmt.Errorf("cycle: extract fd for %s %s: %w", network, address, err)
	}

	return &Listener{Network: network, Address: address, file: f}, nil
}

// FromFile wraps an inherited fd (either ExtraFiles from the parent, or
// recovered from the NGINX= env var during upgrade) as a Listener.
func FromFile(f *os.File, network, address string) *Listener {
	return &Listener{Network: network, Address: address, file: f, Inherited: true}
}

// File returns the underlying *os.File. Repeated calls return the same
// file; callers that need an independent fd (e.g. for ExtraFiles to two
// different children) should dup it themselves.
func (l *Listener) File() *os.File {
	return l.file
}

// Fd returns the raw descriptor number, used to populate the NGINX=
// environment variable during binary upgrade.
func (l *Listener) Fd() uintptr {
	return l.file.Fd()
}

// Listener re-derives a net.Listener from the held fd, for the worker that
// will actually Accept() on it.
func (l *Listener) Listener() (net.Listener, error) {
	ln, err := net.FileListener(l.file)
	if err != nil {
		return nil, fmt.Errorf("cycle: FileListener %s %s: %w", l.Network, l.Address, err)
	}
	return ln, nil
}

// Close releases the underlying fd. Only the master calls this, and only
// when the owning cycle is destroyed or the listener was never handed to
// any worker (spec.md §3 Listener lifecycle).
func (l *Listener) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
