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

import "github.com/sirupsen/logrus"

type entry struct {
	l *logrus.Entry
	h []*fileHook
}

func (e *entry) Debug(args ...interface{}) { e.l.Debug(args...) }
func (e *entry) Info(args ...interface{})  { e.l.Info(args...) }
func (e *entry) Warn(args ...interface{})  { e.l.Warn(args...) }
func (e *entry) Error(args ...interface{}) { e.l.Error(args...) }
func (e *entry) Fatal(args ...interface{}) { e.l.Fatal(args...) }
func (e *entry) Panic(args ...interface{}) { e.l.Panic(args...) }

func (e *entry) Debugf(format string, args ...interface{}) { e.l.Debugf(format, args...) }
func (e *entry) Infof(format string, args ...interface{})  { e.l.Infof(format, args...) }
func (e *entry) Warnf(format string, args ...interface{})  { e.l.Warnf(format, args...) }
func (e *entry) Errorf(format string, args ...interface{}) { e.l.Errorf(format, args...) }
func (e *entry) Fatalf(format string, args ...interface{}) { e.l.Fatalf(format, args...) }

func (e *entry) WithFields(f Fields) Logger {
	return &entry{
		l: e.l.WithFields(f.logrus()),
		h: e.h,
	}
}

func (e *entry) SetLevel(l Level) {
	e.l.Logger.SetLevel(l.logrus())
}

func (e *entry) AddFile(path string, create bool) error {
	fh, err := newFileHook(path, create, 0644, e.l.Logger.Formatter)
	if err != nil {
		return err
	}
	e.l.Logger.AddHook(fh)
	e.h = append(e.h, fh)
	return nil
}

func (e *entry) Reopen() error {
	var first error
	for _, fh := range e.h {
		if err := fh.Reopen(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (e *entry) Close() error {
	var first error
	for _, fh := range e.h {
		if err := fh.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
