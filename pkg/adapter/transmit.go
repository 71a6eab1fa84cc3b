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

package adapter

import (
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/iecdrive/pkg/proto"
)

// transmit sends data to the host, with EOI on the last byte if eoi is set.
// It returns false if the host aborted the transfer.
func (a *Adapter) transmit(eoi bool, data ...byte) bool {
	for ix, b := range data {
		if !a.bus.SendByte(b, eoi && ix == len(data)-1) {
			log.WithField("state", a.bus.State()).Debug("transmission aborted")
			return false
		}
	}
	return true
}

// sendStatus fetches the latched status from the daemon and transmits its
// message. Fetching the status clears it.
func (a *Adapter) sendStatus() error {

	if err := a.open(proto.ChannelCommand, nil); err != nil {
		return err
	}
	if err := a.send(proto.CmdError, a.status); err != nil {
		return err
	}
	if _, err := a.expect(proto.RepError); err != nil {
		return err
	}

	msg, err := a.r.ReadBytes(proto.Terminator)
	if err != nil {
		return err
	}

	a.status = 0
	a.transmit(true, msg...)
	return nil
}

/*
	sendFile transmits the open file. The daemon sends it in chunks, the
	first one is requested along with the read length. The last byte of the
	final chunk goes out with EOI, so one byte is always held back until the
	next chunk shows whether more is coming. An empty file is reported as
	file not found.
*/
func (a *Adapter) sendFile() error {

	if err := a.send(proto.CmdSize); err != nil {
		return err
	}
	if _, err := a.expect(proto.RepSize); err != nil {
		return err
	}
	size, err := a.receive(2)
	if err != nil {
		return err
	}
	log.WithField("size", int(size[0])<<8|int(size[1])).Debug("sending file")

	frame := []byte{proto.CmdReadLength, byte(a.readLength)}
	pending := -1
	aborted := false

	for {
		if err := a.send(frame...); err != nil {
			return err
		}
		frame = []byte{proto.CmdRead}

		tag, err := a.expect(proto.RepBlock, proto.RepBlockLast)
		if err != nil {
			return err
		}
		data, err := a.sized()
		if err != nil {
			return err
		}

		for _, b := range data {
			if aborted {
				break
			}
			if pending > -1 && !a.transmit(false, byte(pending)) {
				aborted = true
			}
			pending = int(b)
		}

		if tag == proto.RepBlockLast || aborted {
			break
		}
	}

	switch {
	case aborted:
	case pending < 0:
		a.bus.SendFNF()
	default:
		a.transmit(true, byte(pending))
	}

	return nil
}

/*
	sendListing transmits the open listing as a BASIC program loaded at
	$0401. Every line starts with the address of the next line, followed by
	the line number, the text and a terminating 0. Two more 0 bytes end the
	program.
*/
func (a *Adapter) sendListing() error {

	ptr := uint16(basicStart)
	if !a.transmit(false, byte(ptr), byte(ptr>>8)) {
		return nil
	}

	for {
		if err := a.send(proto.CmdLine); err != nil {
			return err
		}
		tag, err := a.expect(proto.RepLine, proto.RepLineLast)
		if err != nil {
			return err
		}
		if tag == proto.RepLineLast {
			break
		}

		body, err := a.sized()
		if err != nil {
			return err
		}
		if len(body) < 2 {
			log.Warn("short listing line")
			continue
		}

		text := body[2:]
		ptr += uint16(2 + 2 + len(text) + 1)

		line := make([]byte, 0, len(text)+5)
		line = append(line, byte(ptr), byte(ptr>>8), body[0], body[1])
		line = append(line, text...)
		if !a.transmit(false, append(line, 0)...) {
			return nil
		}
	}

	a.transmit(true, 0, 0)
	return nil
}
