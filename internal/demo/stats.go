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

package demo

import (
	"sync/atomic"

	"github.com/nabbar/ngcore/core/cycle"
)

// Stats counts how many times this process generation has run InitProcess
// and ExitProcess, purely to give a reader something to assert against in
// tests of the registry's ordering and per-process (not per-cycle) rerun
// behavior.
type Stats struct {
	inits atomic.Int64
	exits atomic.Int64
}

func NewStats() *Stats { return &Stats{} }

func (s *Stats) Name() string { return "stats" }

func (s *Stats) InitMaster(c *cycle.Cycle) error {
	c.Log.Info("stats: tracking this cycle")
	return nil
}

func (s *Stats) ExitMaster(c *cycle.Cycle) {}

func (s *Stats) InitProcess(c *cycle.Cycle) error {
	n := s.inits.Add(1)
	c.Log.Info("stats: process init #", n)
	return nil
}

func (s *Stats) ExitProcess(c *cycle.Cycle) {
	n := s.exits.Add(1)
	c.Log.Info("stats: process exit #", n)
}

// Inits reports how many InitProcess calls this Stats instance has seen in
// the current process's lifetime.
func (s *Stats) Inits() int64 { return s.inits.Load() }

// Exits reports how many ExitProcess calls this Stats instance has seen in
// the current process's lifetime.
func (s *Stats) Exits() int64 { return s.exits.Load() }
