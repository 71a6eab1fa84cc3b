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
	"io"
	"sync"

	"github.com/jacobsa/go-serial/serial"
	log "github.com/sirupsen/logrus"
)

// size of the buffer used for reading from the adapter link
const receiveBufferSize = 512

// openSerial opens the serial port the adapter is attached to.
func openSerial(port string, baud int) (io.ReadWriteCloser, error) {

	options := serial.OpenOptions{
		PortName:        port,
		BaudRate:        uint(baud),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	}

	p, err := serial.Open(options)
	if err != nil {
		return nil, fmt.Errorf("cannot open serial port %s: %v", port, err)
	}
	return p, nil
}

/*
	conduit is the link to the adapter. It is owned by the serve loop, which
	is the only one sending on it. Received bytes are handed out through a
	channel by a separate reader goroutine, so that the serve loop can wait
	for adapter data and control requests at the same time.
*/
type conduit struct {
	link io.ReadWriteCloser
	name string

	closeOnce sync.Once
}

//
func newConduit(link io.ReadWriteCloser, name string) *conduit {
	return &conduit{link: link, name: name}
}

//
func (c *conduit) send(data []byte) error {
	if _, err := c.link.Write(data); err != nil {
		return fmt.Errorf("error sending to adapter: %v", err)
	}
	log.WithField("bytes", len(data)).Trace("sent")
	return nil
}

// receive reads from the link until it fails or done is closed, passing on
// everything read through in. The read error ends up in errs.
func (c *conduit) receive(in chan<- []byte, errs chan<- error,
	done <-chan struct{}) {

	for {
		buf := make([]byte, receiveBufferSize)
		n, err := c.link.Read(buf)
		if n > 0 {
			select {
			case in <- buf[:n]:
			case <-done:
				return
			}
		}
		if err != nil {
			select {
			case errs <- err:
			case <-done:
			}
			return
		}
	}
}

//
func (c *conduit) close() {
	c.closeOnce.Do(func() {
		if err := c.link.Close(); err != nil {
			log.Warnf("error closing %s: %v", c.name, err)
		}
	})
}
