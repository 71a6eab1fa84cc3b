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
)

/*
	The WRITE command carries data for the file opened for saving. There is
	no reply.

		arg 0:	length of the following bytes
		    1..	data
*/

//
func (c *command) write(d *Daemon) error {
	p := c.payload()
	log.WithField("bytes", len(p)).Trace("WRITE")
	d.session.WriteChunk(p)
	return nil
}
