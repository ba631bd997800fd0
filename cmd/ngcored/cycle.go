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

package main

import (
	"fmt"
	"strings"

	"github.com/nabbar/ngcore/core/config"
	"github.com/nabbar/ngcore/core/cycle"
	"github.com/nabbar/ngcore/logger"
)

// newCycleBuilder returns the InitCycleFn the master calls on every startup
// and every RECONFIGURE. It turns conf.Listen's "network address" entries
// into cycle.Listeners, reusing the predecessor's fd whenever the address
// is unchanged (the same correctness requirement as spec.md §8 invariant 4
// — a reload preserves listener addresses — applied at the one layer that
// actually knows how to bind a socket, since core/master stays transport-
// agnostic). Module InitMaster hooks are NOT invoked here: master.initCycle
// already does that once this function returns.
func newCycleBuilder(conf *config.Core, log logger.Logger) func(prev *cycle.Cycle) (*cycle.Cycle, error) {
	return func(prev *cycle.Cycle) (*cycle.Cycle, error) {
		c := cycle.New(prev, log)

		reusable := make(map[string]*cycle.Listener)
		if prev != nil {
			for _, l := range prev.ActiveListeners() {
				reusable[l.Network+" "+l.Address] = l
			}
		}

		for _, spec := range conf.Listen {
			network, address, err := parseListenSpec(spec)
			if err != nil {
				return nil, err
			}

			key := network + " " + address
			if old, ok := reusable[key]; ok {
				c.Listeners = append(c.Listeners, old)
				delete(reusable, key)
				continue
			}

			ln, err := cycle.Listen(network, address)
			if err != nil {
				return nil, fmt.Errorf("listen directive %q: %w", spec, err)
			}
			c.Listeners = append(c.Listeners, ln)
		}

		return c, nil
	}
}

// parseListenSpec splits one config.Core.Listen entry ("tcp 127.0.0.1:8080"
// or "unix /run/ngcore.sock") into its network and address parts.
func parseListenSpec(spec string) (network, address string, err error) {
	fields := strings.Fields(spec)
	if len(fields) != 2 {
		return "", "", fmt.Errorf("listen directive %q: want \"network address\"", spec)
	}
	switch fields[0] {
	case "tcp", "tcp4", "tcp6", "unix":
		return fields[0], fields[1], nil
	default:
		return "", "", fmt.Errorf("listen directive %q: unsupported network %q", spec, fields[0])
	}
}
