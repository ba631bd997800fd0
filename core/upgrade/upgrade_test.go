/*
 *  MIT License
 *
 *  Copyright (c) 2025 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

package upgrade_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/ngcore/core/config"
	"github.com/nabbar/ngcore/core/cycle"
	"github.com/nabbar/ngcore/core/upgrade"
	"github.com/nabbar/ngcore/logger"
)

var _ = Describe("Run", func() {
	It("renames the pid file to .oldbin and execs a successor that inherits listener fds", func() {
		dir, err := os.MkdirTemp("", "ngcore-upgrade-*")
		Expect(err).ToNot(HaveOccurred())
		defer os.RemoveAll(dir)

		pidPath := filepath.Join(dir, "ngcore.pid")
		Expect(config.WritePidFile(pidPath, os.Getpid())).To(Succeed())

		l, err := cycle.Listen("tcp", "127.0.0.1:0")
		Expect(err).ToNot(HaveOccurred())
		defer l.Close()

		c := cycle.New(nil, logger.NewSilent())
		c.Listeners = []*cycle.Listener{l}

		pid, err := upgrade.Run(c, pidPath)
		Expect(err).ToNot(HaveOccurred())
		Expect(pid).To(BeNumerically(">", 0))

		Expect(pidPath).ToNot(BeAnExistingFile())
		Expect(pidPath + ".oldbin").To(BeAnExistingFile())

		// the spawned successor is this same test binary re-invoked with the
		// original argv; it runs the test suite again and exits quickly.
		p, err := os.FindProcess(pid)
		Expect(err).ToNot(HaveOccurred())
		_, _ = p.Wait()
	})
})
