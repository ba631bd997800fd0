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

package process_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/ngcore/core/process"
)

var _ = Describe("Table", func() {
	It("grows on Alloc and assigns ascending indices", func() {
		t := process.NewTable()

		i0, s0 := t.Alloc()
		i1, s1 := t.Alloc()

		Expect(i0).To(Equal(0))
		Expect(i1).To(Equal(1))
		Expect(s0.Pid).To(Equal(-1))
		Expect(s1.Pid).To(Equal(-1))
		Expect(t.Len()).To(Equal(2))
	})

	It("reuses a freed slot before growing", func() {
		t := process.NewTable()
		i0, s0 := t.Alloc()
		s0.Pid = 1234

		_, _ = t.Alloc()
		t.Free(i0)

		i2, s2 := t.Alloc()
		Expect(i2).To(Equal(i0))
		Expect(s2.Pid).To(Equal(-1))
		Expect(t.Len()).To(Equal(2))
	})

	It("Reset reoccupies a slot in place without growing the table", func() {
		t := process.NewTable()
		i0, s0 := t.Alloc()
		s0.Pid = 1234
		i1, s1 := t.Alloc()
		s1.Pid = 5678

		reset := t.Reset(i0)
		Expect(reset.Pid).To(Equal(-1))
		Expect(t.Get(i0)).To(BeIdenticalTo(reset))
		Expect(t.Len()).To(Equal(2))
		_ = i1
	})

	It("Reset lets a respawn reoccupy its own index even when a lower slot is free", func() {
		t := process.NewTable()
		i0, s0 := t.Alloc()
		s0.Pid = 1
		_, s1 := t.Alloc()
		s1.Pid = 2
		i2, s2 := t.Alloc()
		s2.Pid = 3

		t.Free(i0) // some unrelated, earlier slot already reaped

		reset := t.Reset(i2)
		Expect(reset.Pid).To(Equal(-1))
		Expect(t.Get(i2)).To(BeIdenticalTo(reset))
		Expect(t.Len()).To(Equal(3))

		// Alloc's first-fit scan would hand back i0 instead of i2, which is
		// exactly the mismatch a respawn must avoid by naming its slot
		// explicitly via Reset instead of going through Alloc.
		allocIdx, _ := t.Alloc()
		Expect(allocIdx).To(Equal(i0))
		Expect(allocIdx).ToNot(Equal(i2))
	})

	It("Reset returns nil out of range", func() {
		t := process.NewTable()
		Expect(t.Reset(0)).To(BeNil())
		Expect(t.Reset(-1)).To(BeNil())
	})

	It("Get returns nil out of range", func() {
		t := process.NewTable()
		Expect(t.Get(0)).To(BeNil())
		Expect(t.Get(-1)).To(BeNil())
	})

	It("Range only visits slots that are live or have exited", func() {
		t := process.NewTable()
		_, empty := t.Alloc()
		_ = empty

		_, live := t.Alloc()
		live.Pid = 42

		var seen []int
		t.Range(func(i int, s *process.Slot) { seen = append(seen, i) })

		Expect(seen).To(Equal([]int{1}))
	})
})
