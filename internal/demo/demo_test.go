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

package demo_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/ngcore/core/cycle"
	"github.com/nabbar/ngcore/core/module"
	"github.com/nabbar/ngcore/internal/demo"
	"github.com/nabbar/ngcore/logger"
)

var _ = Describe("Echo", func() {
	It("rejects a cycle with no active listener", func() {
		e := demo.NewEcho()
		c := cycle.New(nil, logger.NewSilent())
		Expect(e.InitMaster(c)).To(HaveOccurred())
	})

	It("registers cleanly through the module registry", func() {
		r := module.NewRegistry()
		Expect(r.Register(demo.NewEcho())).To(Succeed())
		Expect(r.Get("echo")).ToNot(BeNil())
	})
})

var _ = Describe("Stats", func() {
	It("counts InitProcess/ExitProcess calls across a registry-driven run", func() {
		s := demo.NewStats()
		r := module.NewRegistry()
		Expect(r.Register(s)).To(Succeed())

		c := cycle.New(nil, logger.NewSilent())
		Expect(r.InitProcess(c)).To(Succeed())
		Expect(r.InitProcess(c)).To(Succeed())
		r.ExitProcess(c)

		Expect(s.Inits()).To(Equal(int64(2)))
		Expect(s.Exits()).To(Equal(int64(1)))
	})
})
