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

package channel

import "syscall"

// Signal maps a Command to the POSIX signal delivered when Send fails with
// a transient error and the master falls back to kill(pid, signo).
func (c Command) Signal() syscall.Signal {
	switch c {
	case CmdQuit:
		return syscall.SIGQUIT
	case CmdTerminate:
		return syscall.SIGTERM
	case CmdReopen:
		return syscall.SIGUSR1
	default:
		return syscall.SIGTERM
	}
}

// Kill delivers sig directly via kill(2). It reports dead=true when the
// process no longer exists (ESRCH), which the caller uses to mark the slot
// exited and schedule a reap immediately instead of waiting for SIGCHLD.
func Kill(pid int, sig syscall.Signal) (dead bool, err error) {
	err = syscall.Kill(pid, sig)
	if err == syscall.ESRCH {
		return true, nil
	}
	return false, err
}
