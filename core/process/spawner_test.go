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
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/ngcore/core/process"
)

var _ = Describe("entrypoint environment resolution", func() {
	AfterEach(func() {
		_ = os.Unsetenv(process.EnvEntrypoint)
		_ = os.Unsetenv(process.EnvSlot)
		_ = os.Unsetenv(process.EnvChannelFd)
	})

	It("reports ok=false when NGCORE_ENTRYPOINT is unset, i.e. this is the master", func() {
		_, ok := process.ResolveEntrypoint()
		Expect(ok).To(BeFalse())
	})

	It("recovers entrypoint and slot set by a spawning parent", func() {
		Expect(os.Setenv(process.EnvEntrypoint, string(process.EntrypointWorker))).To(Succeed())
		Expect(os.Setenv(process.EnvSlot, "3")).To(Succeed())

		e, ok := process.ResolveEntrypoint()
		Expect(ok).To(BeTrue())
		Expect(e).To(Equal(process.EntrypointWorker))

		slot, err := process.ResolveSlot()
		Expect(err).ToNot(HaveOccurred())
		Expect(slot).To(Equal(3))
	})

	It("rejects a non-numeric slot value", func() {
		Expect(os.Setenv(process.EnvSlot, "not-a-number")).To(Succeed())
		_, err := process.ResolveSlot()
		Expect(err).To(HaveOccurred())
	})

	It("rejects InheritChannel when NGCORE_CHANNEL_FD is unset", func() {
		_, err := process.InheritChannel()
		Expect(err).To(HaveOccurred())
	})
})
