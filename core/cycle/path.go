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

package cycle

import "time"

// Manager is periodically invoked by the cache manager helper to prune one
// cache directory. It returns the delay the helper should wait before the
// next call; the helper takes the minimum suggestion across all Paths.
type Manager func(root string) (next time.Duration, err error)

// Loader is invoked once at startup by the cache loader helper to
// repopulate in-memory state from one cache directory.
type Loader func(root string) error

// Path is a directory root with optional manager/loader callbacks. Cache
// helpers are only launched if at least one Path in the cycle declares
// either callback (spec.md §4.9).
type Path struct {
	Root    string
	Manager Manager
	Loader  Loader
}
