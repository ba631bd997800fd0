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

package module_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/ngcore/core/cycle"
	"github.com/nabbar/ngcore/core/module"
	"github.com/nabbar/ngcore/logger"
)

type fakeModule struct {
	name string
	log  *[]string
	fail bool
}

func (f *fakeModule) Name() string { return f.name }
func (f *fakeModule) InitMaster(c *cycle.Cycle) error {
	*f.log = append(*f.log, "initmaster:"+f.name)
	if f.fail {
		return errTest
	}
	return nil
}
func (f *fakeModule) ExitMaster(c *cycle.Cycle)  { *f.log = append(*f.log, "exitmaster:"+f.name) }
func (f *fakeModule) InitProcess(c *cycle.Cycle) error {
	*f.log = append(*f.log, "initprocess:"+f.name)
	return nil
}
func (f *fakeModule) ExitProcess(c *cycle.Cycle) { *f.log = append(*f.log, "exitprocess:"+f.name) }

var errTest = fmtErrorf("boom")

func fmtErrorf(s string) error { return &simpleErr{s} }

type simpleErr struct{ s string }

func (e *simpleErr) Error() string { return e.s }

var _ = Describe("Registry", func() {
	It("rejects duplicate names", func() {
		r := module.NewRegistry()
		var log []string
		Expect(r.Register(&fakeModule{name: "a", log: &log})).To(Succeed())
		Expect(r.Register(&fakeModule{name: "a", log: &log})).To(HaveOccurred())
	})

	It("runs Init in registration order and Exit in reverse", func() {
		r := module.NewRegistry()
		var log []string
		Expect(r.Register(&fakeModule{name: "a", log: &log})).To(Succeed())
		Expect(r.Register(&fakeModule{name: "b", log: &log})).To(Succeed())

		c := cycle.New(nil, logger.NewSilent())
		Expect(r.InitMaster(c)).To(Succeed())
		r.ExitMaster(c)

		Expect(log).To(Equal([]string{
			"initmaster:a", "initmaster:b",
			"exitmaster:b", "exitmaster:a",
		}))
	})

	It("stops InitProcess at the first error", func() {
		r := module.NewRegistry()
		var log []string
		Expect(r.Register(&fakeModule{name: "a", log: &log, fail: true})).To(Succeed())
		Expect(r.Register(&fakeModule{name: "b", log: &log})).To(Succeed())

		c := cycle.New(nil, logger.NewSilent())
		err := r.InitProcess(c)
		Expect(err).To(HaveOccurred())
		Expect(log).To(Equal([]string{"initprocess:a"}))
	})

	It("Get finds registered modules by name", func() {
		r := module.NewRegistry()
		var log []string
		m := &fakeModule{name: "a", log: &log}
		Expect(r.Register(m)).To(Succeed())

		var got module.Module = m
		Expect(r.Get("a")).To(BeIdenticalTo(got))
		Expect(r.Get("missing")).To(BeNil())
		Expect(r.Len()).To(Equal(1))
	})
})
