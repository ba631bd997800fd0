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

package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/ngcore/core/config"
)

var _ = Describe("Core.ResolveWorkerCount", func() {
	It("resolves \"auto\" to runtime.NumCPU", func() {
		c := config.Default()
		c.WorkerCount = "auto"
		n, err := c.ResolveWorkerCount()
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(BeNumerically(">", 0))
	})

	It("parses an explicit integer", func() {
		c := config.Default()
		c.WorkerCount = "4"
		n, err := c.ResolveWorkerCount()
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(4))
	})

	It("rejects garbage", func() {
		c := config.Default()
		c.WorkerCount = "lots"
		_, err := c.ResolveWorkerCount()
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("PID file lifecycle", func() {
	It("writes, reads, renames to .oldbin, and restores", func() {
		dir, err := os.MkdirTemp("", "ngcore-pid-*")
		Expect(err).ToNot(HaveOccurred())
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, "ngcore.pid")
		Expect(config.WritePidFile(path, 4242)).To(Succeed())

		pid, err := config.ReadPidFile(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(pid).To(Equal(4242))

		Expect(config.RenameToOldBin(path)).To(Succeed())
		Expect(path).ToNot(BeAnExistingFile())
		Expect(path + ".oldbin").To(BeAnExistingFile())

		Expect(config.RestoreFromOldBin(path)).To(Succeed())
		Expect(path).To(BeAnExistingFile())

		Expect(config.RemovePidFile(path)).To(Succeed())
		Expect(path).ToNot(BeAnExistingFile())
	})

	It("RemovePidFile is a no-op when the file is already gone", func() {
		Expect(config.RemovePidFile("/nonexistent/path/to/pid")).To(Succeed())
	})
})

var _ = Describe("BuildWorkerEnviron", func() {
	It("passes literal KEY=VALUE entries through unchanged", func() {
		env := config.BuildWorkerEnviron([]string{"FOO=bar"})
		Expect(env).To(ContainElement("FOO=bar"))
	})

	It("inherits a bare name from the current environment when present", func() {
		Expect(os.Setenv("NGCORE_TEST_VAR", "hello")).To(Succeed())
		defer os.Unsetenv("NGCORE_TEST_VAR")

		env := config.BuildWorkerEnviron([]string{"NGCORE_TEST_VAR"})
		Expect(env).To(ContainElement("NGCORE_TEST_VAR=hello"))
	})

	It("omits a bare name absent from the environment", func() {
		env := config.BuildWorkerEnviron([]string{"NGCORE_DEFINITELY_UNSET_VAR"})
		Expect(env).ToNot(ContainElement(ContainSubstring("NGCORE_DEFINITELY_UNSET_VAR=")))
	})

	It("always carries TZ even when the allowlist omits it", func() {
		Expect(os.Setenv("TZ", "UTC")).To(Succeed())
		defer os.Unsetenv("TZ")

		env := config.BuildWorkerEnviron(nil)
		Expect(env).To(ContainElement("TZ=UTC"))
	})
})
