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
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/iecdrive/pkg/proto"
)

/*
	The ERROR command requests the status message for a status code.

		arg 0:	status code

	The reply is ':' followed by the message and the terminator.
*/

//
func (c *command) errorString(d *Daemon) error {
	msg := d.session.ErrorString(c.arg(0))
	log.WithField("message", msg).Debug("ERROR")
	return d.conduit.send([]byte(":" + msg + string(proto.Terminator)))
}

/*
	The REGISTER command names a facility of the adapter, which is then used
	when logging DEBUG messages from that facility. There is no reply.

		arg 0:	facility character
		    1..	name, up to the terminator
*/

//
func (c *command) register(d *Daemon) error {

	p := c.payload()
	if len(p) == 0 {
		log.Warn("REGISTER without facility")
		return nil
	}

	name := strings.TrimSpace(string(p[1:]))
	d.setFacility(p[0], name)

	log.WithFields(log.Fields{
		"facility": string(p[0]), "name": name}).Info("REGISTER")
	return nil
}

/*
	The DEBUG command carries a log message from the adapter. There is no
	reply.

		arg 0:	facility character
		    1..	message, up to the terminator
*/

//
func (c *command) debug(d *Daemon) error {

	p := c.payload()
	if len(p) == 0 {
		return nil
	}

	log.WithField("facility", d.facility(p[0])).Debugf(
		"adapter: %s", strings.TrimSpace(string(p[1:])))
	return nil
}
