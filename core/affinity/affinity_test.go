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

package affinity_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/ngcore/core/affinity"
)

var _ = Describe("Mask", func() {
	It("parses leftmost-char-is-highest-bit strings", func() {
		m, err := affinity.Parse("0101")
		Expect(err).ToNot(HaveOccurred())
		Expect(m.CPUs()).To(Equal([]int{0, 2}))
	})

	It("rejects a mask with no set bits", func() {
		_, err := affinity.Parse("0000")
		Expect(err).To(HaveOccurred())
	})

	It("rejects invalid characters", func() {
		_, err := affinity.Parse("01x1")
		Expect(err).To(HaveOccurred())
	})

	It("All selects every CPU in range", func() {
		m := affinity.All(4)
		Expect(m.CPUs()).To(Equal([]int{0, 1, 2, 3}))
		Expect(m.Count()).To(Equal(4))
	})

	Describe("For", func() {
		It("resolves auto mode to CPU (n mod popcount) of the full set", func() {
			m, err := affinity.For(5, nil, true, 4)
			Expect(err).ToNot(HaveOccurred())
			Expect(m.CPUs()).To(Equal([]int{1})) // 5 mod 4 == 1
		})

		It("boundary: reuses the last configured mask when workers exceed masks", func() {
			m0, _ := affinity.Parse("01")
			m1, _ := affinity.Parse("10")
			masks := []affinity.Mask{m0, m1}

			got, err := affinity.For(5, masks, false, 4)
			Expect(err).ToNot(HaveOccurred())
			Expect(got.CPUs()).To(Equal(m1.CPUs()))
		})

		It("explicit mode picks the mask matching the worker index", func() {
			m0, _ := affinity.Parse("01")
			m1, _ := affinity.Parse("10")
			masks := []affinity.Mask{m0, m1}

			got, err := affinity.For(0, masks, false, 4)
			Expect(err).ToNot(HaveOccurred())
			Expect(got.CPUs()).To(Equal(m0.CPUs()))
		})
	})
})
