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
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// EnvListeners is the environment variable a successor binary reads at
// startup to recover the predecessor's listening sockets (spec.md §4.7).
const EnvListeners = "NGINX"

// ParseInheritedFds splits the NGINX= value into fd numbers. Both ':' and
// ';' separators are accepted on input (spec.md §9 open question); callers
// that re-emit the variable always use ';' (see BuildEnvValue).
func ParseInheritedFds(value string) ([]int, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ';' || r == ':'
	})

	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("cycle: invalid fd %q in %s: %w", f, EnvListeners, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// BuildEnvValue formats fds the canonical way: always ';'-separated, always
// terminated by a trailing separator, matching the original's "fd1;fd2;…;".
func BuildEnvValue(fds []int) string {
	var b strings.Builder
	for _, fd := range fds {
		b.WriteString(strconv.Itoa(fd))
		b.WriteByte(';')
	}
	return b.String()
}

// InheritListeners builds Listener records for every fd named in the
// NGINX= environment variable, recovering each socket's address and
// network by querying it rather than trusting any external description.
func InheritListeners() ([]*Listener, error) {
	fds, err := ParseInheritedFds(os.Getenv(EnvListeners))
	if err != nil {
		return nil, err
	}

	out := make([]*Listener, 0, len(fds))
	for _, fd := range fds {
		l, err := inheritOne(fd)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func inheritOne(fd int) (*Listener, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return nil, fmt.Errorf("cycle: getsockname(fd=%d): %w", fd, err)
	}

	network, address := describeSockaddr(sa)

	f := os.NewFile(uintptr(fd), fmt.Sprintf("inherited-fd-%d", fd))
	if f == nil {
		return nil, fmt.Errorf("cycle: fd %d is not valid", fd)
	}

	return FromFile(f, network, address), nil
}

func describeSockaddr(sa unix.Sockaddr) (network, address string) {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return "tcp", fmt.Sprintf("%d.%d.%d.%d:%d", a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3], a.Port)
	case *unix.SockaddrInet6:
		return "tcp", fmt.Sprintf("[%x]:%d", a.Addr, a.Port)
	case *unix.SockaddrUnix:
		return "unix", a.Name
	default:
		return "tcp", ""
	}
}
