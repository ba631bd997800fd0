/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package logger wraps logrus with the two behaviors the process-lifecycle
// core actually needs: structured fields attached per slot/pid/cycle, and a
// file-backed hook that can be told to Reopen its target path on REOPEN.
package logger

// Logger is the minimal surface every core package depends on. The master,
// each worker, and the cache helpers each hold one Logger, cloned with their
// own Fields (slot, pid, role) at creation.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})
	Panic(args ...interface{})

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})

	// WithFields returns a derived Logger carrying the merged fields; the
	// receiver is left untouched.
	WithFields(f Fields) Logger

	// SetLevel changes the minimum severity emitted from this point on.
	SetLevel(l Level)

	// AddFile attaches a file-backed hook writing entries to path, creating
	// it if create is true. Reopen/Close act on every attached file.
	AddFile(path string, create bool) error

	// Reopen drops and lazily reacquires every attached file handle; the
	// Go-native form of the REOPEN channel command / SIGUSR1 signal.
	Reopen() error

	// Close flushes and releases every attached file handle.
	Close() error
}
