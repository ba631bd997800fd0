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

// Package demo registers the two built-in modules cmd/ngcored ships so the
// master/worker lifecycle hooks have something concrete to drive: Echo (a
// stand-in for a listener-owning subsystem) and Stats (a pure
// init/exit-counting subsystem). Neither implements a real wire protocol —
// that stays out of scope, per the request-level-protocol non-goal.
package demo

import (
	"fmt"

	"github.com/nabbar/ngcore/core/cycle"
)

// Echo is grounded the way a listener-owning subsystem module would be:
// it validates, at InitMaster time, that the cycle it is about to serve
// actually declares a listener, and logs its process-level lifecycle
// transitions so a reader can watch a worker's module hooks fire in the
// log stream.
type Echo struct{}

func NewEcho() *Echo { return &Echo{} }

func (e *Echo) Name() string { return "echo" }

func (e *Echo) InitMaster(c *cycle.Cycle) error {
	if len(c.ActiveListeners()) == 0 {
		return fmt.Errorf("demo/echo: no active listener in this cycle")
	}
	c.Log.Info("echo: registered against ", len(c.ActiveListeners()), " listener(s)")
	return nil
}

func (e *Echo) ExitMaster(c *cycle.Cycle) {
	c.Log.Info("echo: master exiting")
}

func (e *Echo) InitProcess(c *cycle.Cycle) error {
	c.Log.Info("echo: worker ready")
	return nil
}

func (e *Echo) ExitProcess(c *cycle.Cycle) {
	c.Log.Info("echo: worker exiting")
}
