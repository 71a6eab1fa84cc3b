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

package proto

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Handshake markers. A Hello starts with HandshakePrefix, the daemon
// answers with AckPrefix followed by the settings, or with Nak.
const (
	HandshakePrefix = "connect_arduino:"
	AckPrefix       = "OK>"
	Nak             = "NOK>\r"
	TimeLayout      = "2006-01-02.15:04:05"
)

// Hello is the announcement the adapter sends after connecting.
func Hello(version int) []byte {
	return []byte(fmt.Sprintf("%s%d%c", HandshakePrefix, version, Terminator))
}

// Pins are the logical pin identifiers the adapter should use for the bus.
type Pins struct {
	ATN   int `json:"atn"`
	Clock int `json:"clock"`
	Data  int `json:"data"`
	Reset int `json:"reset"`
}

// Ack is the daemon's positive answer to a Hello.
type Ack struct {
	Device int
	Pins   Pins
	Time   time.Time
}

// Encode renders the ack line including the trailing terminator.
func (a *Ack) Encode() []byte {
	return []byte(fmt.Sprintf("%s%d|%d|%d|%d|%d|%s%c", AckPrefix,
		a.Device, a.Pins.ATN, a.Pins.Clock, a.Pins.Data, a.Pins.Reset,
		a.Time.Format(TimeLayout), Terminator))
}

// ParseAck parses an ack line, with or without the trailing terminator.
func ParseAck(line string) (*Ack, error) {

	line = strings.TrimSuffix(line, string(Terminator))
	if !strings.HasPrefix(line, AckPrefix) {
		return nil, fmt.Errorf("not an ack: '%s'", line)
	}

	fields := strings.Split(line[len(AckPrefix):], "|")
	if len(fields) != 6 {
		return nil, fmt.Errorf("ack has %d fields, want 6", len(fields))
	}

	var nums [5]int
	for ix := range nums {
		n, err := strconv.Atoi(fields[ix])
		if err != nil {
			return nil, fmt.Errorf("invalid ack field %d: %v", ix, err)
		}
		nums[ix] = n
	}

	t, err := time.Parse(TimeLayout, fields[5])
	if err != nil {
		return nil, fmt.Errorf("invalid ack time: %v", err)
	}

	return &Ack{
		Device: nums[0],
		Pins: Pins{
			ATN: nums[1], Clock: nums[2], Data: nums[3], Reset: nums[4]},
		Time: t,
	}, nil
}

// ParseHello returns the version announced in a hello line. The line must
// include the prefix but may lack the terminator.
func ParseHello(line string) (int, error) {
	line = strings.TrimSuffix(line, string(Terminator))
	if !strings.HasPrefix(line, HandshakePrefix) {
		return -1, fmt.Errorf("not a hello: '%s'", line)
	}
	v, err := strconv.Atoi(line[len(HandshakePrefix):])
	if err != nil {
		return -1, fmt.Errorf("invalid protocol version: %v", err)
	}
	return v, nil
}
