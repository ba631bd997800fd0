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

package channel_test

import (
	"os"
	"syscall"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/ngcore/core/channel"
)

var _ = Describe("Channel", func() {
	var (
		parent *channel.Channel
		cf     *os.File
		child  *channel.Channel
	)

	BeforeEach(func() {
		var err error
		parent, cf, err = channel.New()
		Expect(err).ToNot(HaveOccurred())

		child, err = channel.FromFile(cf)
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		_ = parent.Close()
		_ = child.Close()
	})

	It("round-trips a plain command record", func() {
		msg := channel.Message{Command: channel.CmdQuit, Pid: 123, Slot: 2, Fd: -1}
		Expect(parent.Send(msg)).To(Succeed())

		got, err := child.Recv()
		Expect(err).ToNot(HaveOccurred())
		Expect(got.Command).To(Equal(channel.CmdQuit))
		Expect(got.Pid).To(Equal(int32(123)))
		Expect(got.Slot).To(Equal(int32(2)))
	})

	It("carries a file descriptor on OPEN_CHANNEL via SCM_RIGHTS", func() {
		tmp, err := os.CreateTemp("", "ngcore-fd-*")
		Expect(err).ToNot(HaveOccurred())
		defer os.Remove(tmp.Name())
		defer tmp.Close()

		msg := channel.Message{Command: channel.CmdOpenChannel, Pid: 55, Slot: 1, Fd: int32(tmp.Fd())}
		Expect(parent.Send(msg)).To(Succeed())

		got, err := child.Recv()
		Expect(err).ToNot(HaveOccurred())
		Expect(got.Command).To(Equal(channel.CmdOpenChannel))
		Expect(got.Fd).ToNot(Equal(int32(-1)))

		received := os.NewFile(uintptr(got.Fd), "received")
		defer received.Close()
		_, err = received.WriteString("hello")
		Expect(err).ToNot(HaveOccurred())
	})

	It("maps commands to their POSIX-signal fallback", func() {
		Expect(channel.CmdQuit.Signal()).To(Equal(syscall.SIGQUIT))
		Expect(channel.CmdTerminate.Signal()).To(Equal(syscall.SIGTERM))
		Expect(channel.CmdReopen.Signal()).To(Equal(syscall.SIGUSR1))
	})

	It("Kill reports dead=true for a pid that does not exist", func() {
		dead, err := channel.Kill(1<<30, syscall.SIGTERM)
		Expect(err).ToNot(HaveOccurred())
		Expect(dead).To(BeTrue())
	})
})
