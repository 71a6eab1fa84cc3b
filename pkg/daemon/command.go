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
	"fmt"

	log "github.com/sirupsen/logrus"
)

/*
	command is a complete frame received from the adapter. The first byte is
	the tag, followed by the arguments. For frames carrying a length byte,
	the payload starts after it.
*/
type command struct {
	data []byte
	spec *frameSpec
}

//
func newCommand(frame []byte) (*command, error) {
	if len(frame) == 0 {
		return nil, fmt.Errorf("empty frame")
	}
	spec, ok := frameSpecs[frame[0]]
	if !ok {
		return nil, fmt.Errorf("unknown command '%c'", frame[0])
	}
	return &command{data: frame, spec: spec}, nil
}

//
func (c *command) tag() byte {
	return c.data[0]
}

//
func (c *command) name() string {
	return c.spec.name
}

// arg returns argument ix, counting from the byte after the tag. Missing
// arguments read as 0.
func (c *command) arg(ix int) byte {
	if ix+1 < len(c.data) {
		return c.data[ix+1]
	}
	return 0
}

// payload returns the bytes following the length byte for length framed
// commands, and the bytes following the tag up to the terminator for text
// commands.
func (c *command) payload() []byte {
	switch {
	case c.spec.lengthByte:
		if len(c.data) < 2 {
			return nil
		}
		return c.data[2:]
	case c.spec.terminated:
		return c.data[1 : len(c.data)-1]
	}
	return c.data[1:]
}

//
func (c *command) dispatch(d *Daemon) error {
	log.WithField("command", c.name()).Trace("dispatching")
	return c.spec.handler(c, d)
}
