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

package channel

import (
	"fmt"
	"net"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Channel is one end of the socketpair between master and a child, or
// between two peer workers once an OPEN_CHANNEL record installed it. It is
// a thin wrapper over *net.UnixConn so the worker's event loop can select
// on it like any other connection.
type Channel struct {
	conn *net.UnixConn
}

// New creates a connected, non-blocking AF_UNIX SOCK_STREAM socketpair and
// returns index 0 wrapped as a Channel and index 1 as an *os.File. The parent keeps index 0 and is
// expected to close index 1's *os.File view (childFile) after handing it to
// the spawned process via exec.Cmd.ExtraFiles.
func New() (parent *Channel, childFile *os.File, err error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("channel: socketpair: %w", err)
	}

	if err = unix.SetNonblock(fds[0], true); err != nil {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
		return nil, nil, fmt.Errorf("channel: set nonblocking: %w", err)
	}

	pf := os.NewFile(uintptr(fds[0]), "ngcore-channel")
	cf := os.NewFile(uintptr(fds[1]), "ngcore-channel")

	c, err := wrap(pf)
	if err != nil {
		_ = pf.Close()
		_ = cf.Close()
		return nil, nil, err
	}

	return c, cf, nil
}

// FromFile wraps an inherited channel fd (e.g. fd 3 in a re-exec'd worker)
// as a Channel. The file is consumed; callers must not use it afterward.
func FromFile(f *os.File) (*Channel, error) {
	return wrap(f)
}

func wrap(f *os.File) (*Channel, error) {
	conn, err := net.FileConn(f)
	if err != nil {
		return nil, fmt.Errorf("channel: FileConn: %w", err)
	}
	_ = f.Close()

	uc, ok := conn.(*net.UnixConn)
	if !ok {
		_ = conn.Close()
		return nil, fmt.Errorf("channel: not a unix socket connection")
	}

	return &Channel{conn: uc}, nil
}

// File returns the underlying fd as *os.File for use as ExtraFiles[n].
func (c *Channel) File() (*os.File, error) {
	return c.conn.File()
}

// Conn exposes the raw connection so the worker's event loop can select on
// it alongside its listeners.
func (c *Channel) Conn() *net.UnixConn {
	return c.conn
}

// Send writes one Message, attaching Fd as SCM_RIGHTS ancillary data when
// cmd is OPEN_CHANNEL (the only command that carries a descriptor).
func (c *Channel) Send(m Message) error {
	b := m.encode()

	var oob []byte
	if m.Command == CmdOpenChannel && m.Fd >= 0 {
		oob = unix.UnixRights(int(m.Fd))
	}

	_, _, err := c.conn.WriteMsgUnix(b, oob, nil)
	return err
}

// Recv reads one Message. If the sender attached a descriptor it is
// returned in Message.Fd; the caller owns the resulting fd and must close
// it eventually.
func (c *Channel) Recv() (Message, error) {
	b := make([]byte, messageSize)
	oob := make([]byte, unix.CmsgSpace(4))

	n, oobn, _, _, err := c.conn.ReadMsgUnix(b, oob)
	if err != nil {
		return Message{}, err
	}
	if n < messageSize {
		return Message{}, fmt.Errorf("channel: short read (%d bytes)", n)
	}

	m := decodeMessage(b)

	if oobn > 0 {
		scms, err := unix.ParseSocketControlMessage(oob[:oobn])
		if err == nil {
			for _, scm := range scms {
				fds, err := unix.ParseUnixRights(&scm)
				if err == nil && len(fds) > 0 {
					m.Fd = int32(fds[0])
				}
			}
		}
	}

	return m, nil
}

// Close closes this end of the channel.
func (c *Channel) Close() error {
	return c.conn.Close()
}

// IsTemporary reports whether err from Send/Recv is the kind of transient
// condition (EAGAIN/EPIPE) the spec says should fall back to kill(pid, sig).
func IsTemporary(err error) bool {
	return isErrno(err, syscall.EAGAIN) || isErrno(err, syscall.EPIPE)
}

func isErrno(err error, errno syscall.Errno) bool {
	for {
		if e, ok := err.(syscall.Errno); ok {
			return e == errno
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
		if err == nil {
			return false
		}
	}
}
