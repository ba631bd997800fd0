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

package master

import "github.com/nabbar/ngcore/core/config"

// exit runs the master-exit sequence (spec.md §4.6) and terminates the
// process. Callers invoke this from the loop and never return from it.
func (m *Master) exit() {
	if m.pidPath != "" {
		if err := config.RemovePidFile(m.pidPath); err != nil {
			m.Log.Warn("remove pid file: ", err)
		}
	}

	m.Mods.ExitMaster(m.Cycle)

	for _, l := range m.Cycle.ActiveListeners() {
		_ = l.Close()
	}

	m.Cycle.Destroy()

	_ = m.Log.Close()
	exitProcess(0)
}
