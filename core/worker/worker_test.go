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

package worker_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/ngcore/core/channel"
	"github.com/nabbar/ngcore/core/config"
	"github.com/nabbar/ngcore/core/cycle"
	"github.com/nabbar/ngcore/core/module"
	"github.com/nabbar/ngcore/core/worker"
	"github.com/nabbar/ngcore/logger"
)

var _ = Describe("Init", func() {
	AfterEach(func() {
		_ = os.Unsetenv(cycle.EnvListeners)
	})

	It("builds a Worker with no listeners when NGINX= is unset", func() {
		parent, childFile, err := channel.New()
		Expect(err).ToNot(HaveOccurred())
		defer parent.Close()
		child, err := channel.FromFile(childFile)
		Expect(err).ToNot(HaveOccurred())
		defer child.Close()

		c := cycle.New(nil, logger.NewSilent())

		w, err := worker.Init(worker.Options{
			Cycle:   c,
			Conf:    config.Default(),
			Mods:    module.NewRegistry(),
			Channel: child,
			Log:     logger.NewSilent(),
			Slot:    0,
			Index:   worker.NoIndex,
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(w).ToNot(BeNil())
		Expect(w.Cycle()).To(BeIdenticalTo(c))
		Expect(w.Stopping()).To(BeFalse())
	})

	It("fails a module's InitProcess error", func() {
		parent, childFile, err := channel.New()
		Expect(err).ToNot(HaveOccurred())
		defer parent.Close()
		child, err := channel.FromFile(childFile)
		Expect(err).ToNot(HaveOccurred())
		defer child.Close()

		mods := module.NewRegistry()
		Expect(mods.Register(&failingModule{})).To(Succeed())

		_, err = worker.Init(worker.Options{
			Cycle:   cycle.New(nil, logger.NewSilent()),
			Conf:    config.Default(),
			Mods:    mods,
			Channel: child,
			Log:     logger.NewSilent(),
			Index:   worker.NoIndex,
		})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("channel dispatch", func() {
	It("observes QUIT sent over the control channel as Stopping()", func() {
		parent, childFile, err := channel.New()
		Expect(err).ToNot(HaveOccurred())
		defer parent.Close()
		child, err := channel.FromFile(childFile)
		Expect(err).ToNot(HaveOccurred())

		w, err := worker.Init(worker.Options{
			Cycle:   cycle.New(nil, logger.NewSilent()),
			Conf:    config.Default(),
			Mods:    module.NewRegistry(),
			Channel: child,
			Log:     logger.NewSilent(),
			Index:   worker.NoIndex,
		})
		Expect(err).ToNot(HaveOccurred())

		stop := w.StartChannelReader()
		defer stop()

		Expect(parent.Send(channel.Message{Command: channel.CmdQuit})).To(Succeed())

		Eventually(w.Stopping, time.Second, 10*time.Millisecond).Should(BeTrue())
	})
})

type failingModule struct{}

func (failingModule) Name() string                         { return "failing" }
func (failingModule) InitMaster(*cycle.Cycle) error         { return nil }
func (failingModule) ExitMaster(*cycle.Cycle)               {}
func (failingModule) InitProcess(*cycle.Cycle) error        { return os.ErrInvalid }
func (failingModule) ExitProcess(*cycle.Cycle)              {}
