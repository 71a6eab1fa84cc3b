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
	"github.com/xelalexv/iecdrive/pkg/vfs/base"
)

/*
	The OPEN command opens a channel.

		arg 0:	length of the following bytes
		    1:	channel
		    2..	file name, or DOS command for the command channel

	The reply is '>' followed by the open state, or the status code when
	opening the command channel.
*/

//
func (c *command) open(d *Daemon) error {

	p := c.payload()
	if len(p) == 0 {
		log.Warn("OPEN without channel")
		return d.conduit.send([]byte{proto.RepOpen, byte(base.StatusSerialComm)})
	}

	ch := p[0]
	res := d.session.Open(ch, p[1:])

	fields := log.Fields{"channel": ch, "name": string(p[1:])}
	if ch == proto.ChannelCommand {
		fields["status"] = base.Status(res).String()
	} else {
		fields["state"] = proto.OpenState(res)
	}
	log.WithFields(fields).Info("OPEN")

	return d.conduit.send([]byte{proto.RepOpen, res})
}

/*
	The CLOSE command closes the open stream. The reply names the file that
	was loaded ('N') or saved ('n'), or carries the current device number
	('C') when there was no file.
*/

//
func (c *command) close(d *Daemon) error {

	tag, data := d.session.Close()

	if tag == proto.RepClosed {
		log.WithField("device", d.session.Device()).Debug("CLOSE")
		return d.conduit.send([]byte{tag, data[0]})
	}

	log.WithFields(log.Fields{
		"name": string(data), "saved": tag == proto.RepSaved}).Info("CLOSE")

	reply := make([]byte, 0, len(data)+2)
	reply = append(reply, tag, byte(len(data)))
	return d.conduit.send(append(reply, data...))
}
