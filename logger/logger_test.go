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

package logger_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/ngcore/logger"
)

var _ = Describe("Logger", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "ngcore-logger-*")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(dir)).ToNot(HaveOccurred())
	})

	It("writes to an attached file and Reopen survives a rename", func() {
		path := filepath.Join(dir, "access.log")

		lg := logger.New(logger.InfoLevel)
		Expect(lg.AddFile(path, true)).To(Succeed())

		lg.Info("first line")

		renamed := path + ".1"
		Expect(os.Rename(path, renamed)).To(Succeed())

		Expect(lg.Reopen()).To(Succeed())
		lg.Info("second line")

		_, err := os.Stat(path)
		Expect(err).ToNot(HaveOccurred())

		old, err := os.ReadFile(renamed)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(old)).To(ContainSubstring("first line"))

		fresh, err := os.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(fresh)).To(ContainSubstring("second line"))

		Expect(lg.Close()).To(Succeed())
	})

	It("WithFields returns a non-nil derived logger", func() {
		lg := logger.New(logger.InfoLevel)
		child := lg.WithFields(logger.Fields{"slot": 3})
		Expect(child).ToNot(BeNil())
	})

	It("repeated Reopen calls are idempotent with no attached file", func() {
		lg := logger.New(logger.InfoLevel)
		Expect(lg.Reopen()).To(Succeed())
		Expect(lg.Reopen()).To(Succeed())
	})
})
