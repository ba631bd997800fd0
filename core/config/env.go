/*
MIT License

Copyright (c) 2025 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package config

import (
	"os"
	"strings"
)

// BuildWorkerEnviron produces the environment a worker/cache-helper child
// should receive: every allowlist entry that contains '=' is passed
// through literally; every entry without one is looked up in the master's
// own environment and inherited by name if present. TZ is always carried
// even if the allowlist omits it, matching the original's hard-coded
// exception.
func BuildWorkerEnviron(allowlist []string) []string {
	out := make([]string, 0, len(allowlist)+1)
	sawTZ := false

	for _, e := range allowlist {
		if strings.Contains(e, "=") {
			out = append(out, e)
			if strings.HasPrefix(e, "TZ=") {
				sawTZ = true
			}
			continue
		}
		if e == "TZ" {
			sawTZ = true
		}
		if v, ok := os.LookupEnv(e); ok {
			out = append(out, e+"="+v)
		}
	}

	if !sawTZ {
		if v, ok := os.LookupEnv("TZ"); ok {
			out = append(out, "TZ="+v)
		}
	}

	return out
}
