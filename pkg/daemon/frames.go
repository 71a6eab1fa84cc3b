/*
   IECDrive - Commodore 1541 drive emulator
   Copyright (c) 2022, Alexander Vollschwitz

   This file is part of IECDrive.

   IECDrive is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   IECDrive is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with IECDrive. If not, see <http://www.gnu.org/licenses/>.
*/

package daemon

import (
	"bytes"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/iecdrive/pkg/proto"
)

// longest text frame accepted before giving up on finding the terminator
const maxTextFrame = 256

/*
	frameSpec describes how to find the end of an inbound frame. A frame
	either has a fixed size, carries a length byte right after the tag
	counting the bytes that follow it, or ends with the terminator.
*/
type frameSpec struct {
	name       string
	size       int
	lengthByte bool
	terminated bool
	handler    func(c *command, d *Daemon) error
}

// length returns the total length of the frame at the start of buf, 0 if
// buf does not hold the complete frame yet, or -1 if the frame is broken.
func (s *frameSpec) length(buf []byte) int {

	switch {
	case s.lengthByte:
		if len(buf) < 2 {
			return 0
		}
		if n := 2 + int(buf[1]); len(buf) >= n {
			return n
		}

	case s.terminated:
		if ix := bytes.IndexByte(buf, proto.Terminator); ix > -1 {
			return ix + 1
		}
		if len(buf) > maxTextFrame {
			return -1
		}

	default:
		if len(buf) >= s.size {
			return s.size
		}
	}

	return 0
}

var frameSpecs map[byte]*frameSpec

func init() {
	frameSpecs = map[byte]*frameSpec{
		proto.CmdOpen:       {name: "OPEN", lengthByte: true, handler: (*command).open},
		proto.CmdRead:       {name: "READ", size: 1, handler: (*command).read},
		proto.CmdReadLength: {name: "READLENGTH", size: 2, handler: (*command).readLength},
		proto.CmdWrite:      {name: "WRITE", lengthByte: true, handler: (*command).write},
		proto.CmdLine:       {name: "LINE", size: 1, handler: (*command).line},
		proto.CmdClose:      {name: "CLOSE", size: 1, handler: (*command).close},
		proto.CmdSize:       {name: "SIZE", size: 1, handler: (*command).size},
		proto.CmdError:      {name: "ERROR", size: 2, handler: (*command).errorString},
		proto.CmdRegister:   {name: "REGISTER", terminated: true, handler: (*command).register},
		proto.CmdDebug:      {name: "DEBUG", terminated: true, handler: (*command).debug},
	}
}

/*
	framer cuts the inbound byte stream into frames. Incomplete frames stay
	buffered until more bytes arrive. Until a connection has been accepted,
	only handshakes are recognized. Bytes that cannot start a frame are
	dropped one at a time, so that the stream resynchronizes on the next
	recognizable frame.
*/
type framer struct {
	buf      []byte
	accepted bool
	dropped  int
}

//
func (f *framer) push(data []byte) {
	f.buf = append(f.buf, data...)
}

//
func (f *framer) pending() int {
	return len(f.buf)
}

//
func (f *framer) reset() {
	f.buf = f.buf[:0]
	f.accepted = false
}

// next returns the next complete frame, or nil if more bytes are needed.
func (f *framer) next() []byte {

	for len(f.buf) > 0 {

		if n := handshakeLength(f.buf); n != 0 {
			if n < 0 {
				return nil
			}
			return f.take(n)
		}

		if f.accepted {
			if spec, ok := frameSpecs[f.buf[0]]; ok {
				n := spec.length(f.buf)
				if n > 0 {
					return f.take(n)
				}
				if n == 0 {
					return nil
				}
			}
		}

		log.WithField("byte", f.buf[0]).Debug("dropping byte")
		f.dropped++
		f.buf = f.buf[1:]
	}

	return nil
}

//
func (f *framer) take(n int) []byte {
	ret := make([]byte, n)
	copy(ret, f.buf)
	f.buf = f.buf[n:]
	return ret
}

// handshakeLength checks whether buf starts with a handshake. It returns
// the handshake's length, -1 if buf may become a handshake with more bytes,
// or 0 if it can't.
func handshakeLength(buf []byte) int {

	prefix := []byte(proto.HandshakePrefix)

	if len(buf) < len(prefix) {
		if bytes.HasPrefix(prefix, buf) {
			return -1
		}
		return 0
	}

	if !bytes.HasPrefix(buf, prefix) {
		return 0
	}

	if ix := bytes.IndexByte(buf, proto.Terminator); ix > -1 {
		return ix + 1
	}
	if len(buf) > maxTextFrame {
		return 0
	}
	return -1
}

//
func isHandshake(frame []byte) bool {
	return bytes.HasPrefix(frame, []byte(proto.HandshakePrefix))
}
