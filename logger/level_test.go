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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/ngcore/logger"
)

var _ = Describe("Level", func() {
	DescribeTable("ParseLevel round-trips known names",
		func(in string, want logger.Level) {
			Expect(logger.ParseLevel(in)).To(Equal(want))
		},
		Entry("debug", "debug", logger.DebugLevel),
		Entry("info", "info", logger.InfoLevel),
		Entry("empty defaults to info", "", logger.InfoLevel),
		Entry("warn", "warn", logger.WarnLevel),
		Entry("warning", "warning", logger.WarnLevel),
		Entry("error", "error", logger.ErrorLevel),
		Entry("fatal", "fatal", logger.FatalLevel),
		Entry("panic", "panic", logger.PanicLevel),
		Entry("critical", "critical", logger.PanicLevel),
	)

	It("falls back to info on an unknown name", func() {
		Expect(logger.ParseLevel("not-a-level")).To(Equal(logger.InfoLevel))
	})

	It("stringifies back to its canonical name", func() {
		Expect(logger.WarnLevel.String()).To(Equal("warning"))
	})
})
