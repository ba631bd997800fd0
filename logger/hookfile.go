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

package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// fileHook is a logrus hook that appends to a path on disk and knows how
// to drop and re-acquire its file handle. That single trick — Close sets
// the handle to nil, the next Write lazily reopens the path — is the
// entire implementation of the REOPEN channel command: the master and
// every worker each hold one fileHook per configured log path, and
// servicing REOPEN is just calling Reopen on each of them.
type fileHook struct {
	m     sync.Mutex
	h     *os.File
	path  string
	flags int
	mode  os.FileMode
	fmt   logrus.Formatter
	last  time.Time
}

func newFileHook(path string, create bool, mode os.FileMode, format logrus.Formatter) (*fileHook, error) {
	if path == "" {
		return nil, fmt.Errorf("logger: empty file path")
	}

	flags := os.O_WRONLY | os.O_APPEND
	if create {
		flags |= os.O_CREATE
	}
	if mode == 0 {
		mode = 0644
	}

	f := &fileHook{
		path:  path,
		flags: flags,
		mode:  mode,
		fmt:   format,
	}

	h, err := f.openCreate()
	if err != nil {
		return nil, err
	}
	_ = h.Close()

	return f, nil
}

func (f *fileHook) openCreate() (*os.File, error) {
	h, err := os.OpenFile(f.path, f.flags, f.mode)
	if err != nil {
		return nil, err
	}
	if _, err = h.Seek(0, io.SeekEnd); err != nil {
		_ = h.Close()
		return nil, err
	}
	return h, nil
}

func (f *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (f *fileHook) Fire(entry *logrus.Entry) error {
	p, err := f.fmt.Format(entry)
	if err != nil {
		return err
	}
	_, err = f.Write(p)
	return err
}

func (f *fileHook) write(p []byte) (int, error) {
	f.m.Lock()
	defer f.m.Unlock()

	var err error
	if f.h == nil {
		if f.h, err = f.openCreate(); err != nil {
			return 0, fmt.Errorf("logger: cannot open %q: %w", f.path, err)
		}
	} else if _, err = f.h.Seek(0, io.SeekEnd); err != nil {
		return 0, fmt.Errorf("logger: cannot seek %q to EOF: %w", f.path, err)
	}

	return f.h.Write(p)
}

func (f *fileHook) Write(p []byte) (n int, err error) {
	if n, err = f.write(p); err != nil {
		_ = f.closeHandle()
		n, err = f.write(p)
	}
	if err != nil {
		return n, err
	}

	f.m.Lock()
	defer f.m.Unlock()
	if f.last.IsZero() || time.Since(f.last) > 30*time.Second {
		_ = f.h.Sync()
		f.last = time.Now()
	}
	return n, err
}

func (f *fileHook) closeHandle() error {
	f.m.Lock()
	defer f.m.Unlock()

	if f.h == nil {
		return nil
	}

	var err error
	if e := f.h.Sync(); e != nil {
		err = fmt.Errorf("logger: sync %q: %w", f.path, e)
	}
	if e := f.h.Close(); e != nil {
		err = fmt.Errorf("logger: close %q: %w", f.path, e)
	}
	f.h = nil
	return err
}

// Reopen drops the current file handle; the next log line transparently
// reopens the path, picking up a file that was rotated out from under it.
func (f *fileHook) Reopen() error {
	return f.closeHandle()
}

func (f *fileHook) Close() error {
	return f.closeHandle()
}
