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

// Package channel implements the master/worker control protocol: a fixed
// layout record exchanged over an AF_UNIX SOCK_STREAM socketpair, with an
// optional file descriptor riding along as SCM_RIGHTS ancillary data.
package channel

import "encoding/binary"

// Command tags a Message. Values match the five commands the spec requires;
// numeric values are this module's own wire format, never exposed outside
// a single machine.
type Command uint32

const (
	CmdQuit Command = iota + 1
	CmdTerminate
	CmdReopen
	CmdOpenChannel
	CmdCloseChannel
)

func (c Command) String() string {
	switch c {
	case CmdQuit:
		return "quit"
	case CmdTerminate:
		return "terminate"
	case CmdReopen:
		return "reopen"
	case CmdOpenChannel:
		return "open_channel"
	case CmdCloseChannel:
		return "close_channel"
	default:
		return "unknown"
	}
}

// messageSize is the encoded byte length of a Message: 4 uint32/int32 fields.
const messageSize = 16

// Message is the fixed-layout record carried by a Channel. Fd is only
// meaningful for CmdOpenChannel, where it is sent out-of-band as SCM_RIGHTS
// and filled in by Recv on the receiving side.
type Message struct {
	Command Command
	Pid     int32
	Slot    int32
	Fd      int32
}

func (m Message) encode() []byte {
	b := make([]byte, messageSize)
	binary.NativeEndian.PutUint32(b[0:4], uint32(m.Command))
	binary.NativeEndian.PutUint32(b[4:8], uint32(m.Pid))
	binary.NativeEndian.PutUint32(b[8:12], uint32(m.Slot))
	binary.NativeEndian.PutUint32(b[12:16], uint32(m.Fd))
	return b
}

func decodeMessage(b []byte) Message {
	return Message{
		Command: Command(binary.NativeEndian.Uint32(b[0:4])),
		Pid:     int32(binary.NativeEndian.Uint32(b[4:8])),
		Slot:    int32(binary.NativeEndian.Uint32(b[8:12])),
		Fd:      int32(binary.NativeEndian.Uint32(b[12:16])),
	}
}
