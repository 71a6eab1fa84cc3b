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
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/iecdrive/pkg/proto"
)

// longest listing line text that fits into a line reply
const maxLineText = 255 - 2

/*
	The READ command fetches the next chunk of the open file. The reply is
	'B' for a chunk with more to follow, or 'E' for the final one, followed
	by the byte count and the data.
*/

//
func (c *command) read(d *Daemon) error {

	final, data := d.session.ReadChunk()

	tag := proto.RepBlock
	if final {
		tag = proto.RepBlockLast
		log.WithField("bytes", len(data)).Debug("READ final chunk")
	}

	reply := make([]byte, 0, len(data)+2)
	reply = append(reply, tag, byte(len(data)))
	return d.conduit.send(append(reply, data...))
}

/*
	The READLENGTH command sets the read length and then acts like READ.

		arg 0:	read length, including two bytes of framing
*/

//
func (c *command) readLength(d *Daemon) error {
	d.session.SetReadLength(int(c.arg(0)))
	return c.read(d)
}

/*
	The LINE command fetches the next line of the open listing. The reply is
	'L', the length of the rest, line number low and high byte, and the line
	text. An exhausted listing is answered with 'l'.
*/

//
func (c *command) line(d *Daemon) error {

	l, ok := d.session.NextLine()
	if !ok {
		log.Debug("LINE listing done")
		return d.conduit.send([]byte{proto.RepLineLast})
	}

	text := l.Text
	if len(text) > maxLineText {
		text = text[:maxLineText]
	}

	reply := make([]byte, 0, len(text)+4)
	reply = append(reply, proto.RepLine, byte(len(text)+2),
		byte(l.Number), byte(l.Number>>8))
	return d.conduit.send(append(reply, text...))
}

/*
	The SIZE command asks for the size of the open file. The reply is 'S'
	followed by the size's high and low byte, saturated at 65535.
*/

//
func (c *command) size(d *Daemon) error {

	n := d.session.FileSize()
	if n > 0xffff {
		n = 0xffff
	}

	log.WithField("size", n).Debug("SIZE")
	return d.conduit.send([]byte{proto.RepSize, byte(n >> 8), byte(n)})
}
