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

package cycle_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/ngcore/core/cycle"
	"github.com/nabbar/ngcore/logger"
)

var _ = Describe("Cycle", func() {
	It("chains to its predecessor and starts with an empty config tree", func() {
		prev := cycle.New(nil, logger.NewSilent())
		next := cycle.New(prev, logger.NewSilent())

		Expect(next.Prev).To(BeIdenticalTo(prev))
		_, ok := next.Lookup("anything")
		Expect(ok).To(BeFalse())
	})

	It("Set/Lookup round-trips a module's opaque config", func() {
		c := cycle.New(nil, logger.NewSilent())
		c.Set("http", map[string]int{"workers": 4})

		v, ok := c.Lookup("http")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(map[string]int{"workers": 4}))
	})

	It("reports no cache helpers needed when no Path declares callbacks", func() {
		c := cycle.New(nil, logger.NewSilent())
		c.Paths = []cycle.Path{{Root: "/var/cache/x"}}
		Expect(c.HasCacheHelpers()).To(BeFalse())
	})

	It("reports cache helpers needed when a Path declares a manager", func() {
		c := cycle.New(nil, logger.NewSilent())
		c.Paths = []cycle.Path{{
			Root: "/var/cache/x",
			Manager: func(root string) (time.Duration, error) {
				return time.Hour, nil
			},
		}}
		Expect(c.HasCacheHelpers()).To(BeTrue())
	})

	Describe("SameListenerAddresses", func() {
		It("is true for two cycles with identical active listener addresses", func() {
			a := cycle.New(nil, logger.NewSilent())
			a.Listeners = []*cycle.Listener{{Network: "tcp", Address: "0.0.0.0:8080"}}

			b := cycle.New(nil, logger.NewSilent())
			b.Listeners = []*cycle.Listener{{Network: "tcp", Address: "0.0.0.0:8080"}}

			Expect(a.SameListenerAddresses(b)).To(BeTrue())
		})

		It("ignores Ignore-flagged listeners on both sides", func() {
			a := cycle.New(nil, logger.NewSilent())
			a.Listeners = []*cycle.Listener{
				{Network: "tcp", Address: "0.0.0.0:8080"},
				{Network: "tcp", Address: "0.0.0.0:9999", Ignore: true},
			}

			b := cycle.New(nil, logger.NewSilent())
			b.Listeners = []*cycle.Listener{{Network: "tcp", Address: "0.0.0.0:8080"}}

			Expect(a.SameListenerAddresses(b)).To(BeTrue())
		})

		It("is false when the address sets differ", func() {
			a := cycle.New(nil, logger.NewSilent())
			a.Listeners = []*cycle.Listener{{Network: "tcp", Address: "0.0.0.0:8080"}}

			b := cycle.New(nil, logger.NewSilent())
			b.Listeners = []*cycle.Listener{{Network: "tcp", Address: "0.0.0.0:8081"}}

			Expect(a.SameListenerAddresses(b)).To(BeFalse())
		})
	})

	Describe("Destroy", func() {
		It("runs the arena's cleanup stack", func() {
			c := cycle.New(nil, logger.NewSilent())
			called := false
			c.Arena.Defer(func() { called = true })

			c.Destroy()

			Expect(called).To(BeTrue())
		})
	})
})

var _ = Describe("ParseInheritedFds / BuildEnvValue", func() {
	It("accepts both ':' and ';' separated fd lists", func() {
		semis, err := cycle.ParseInheritedFds("6;7;8;")
		Expect(err).ToNot(HaveOccurred())
		Expect(semis).To(Equal([]int{6, 7, 8}))

		colons, err := cycle.ParseInheritedFds("6:7:8")
		Expect(err).ToNot(HaveOccurred())
		Expect(colons).To(Equal([]int{6, 7, 8}))
	})

	It("returns nil for an empty value", func() {
		fds, err := cycle.ParseInheritedFds("")
		Expect(err).ToNot(HaveOccurred())
		Expect(fds).To(BeEmpty())
	})

	It("always emits ';'-separated output regardless of input form", func() {
		Expect(cycle.BuildEnvValue([]int{6, 7, 8})).To(Equal("6;7;8;"))
	})

	It("rejects a non-numeric fd", func() {
		_, err := cycle.ParseInheritedFds("6;x;8")
		Expect(err).To(HaveOccurred())
	})
})
