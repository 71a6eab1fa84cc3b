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

package iec

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// State collects what happened during the last byte transfer.
type State byte

//
const (
	StateNone  State = 0
	StateEOI   State = 1 << 0
	StateATN   State = 1 << 1
	StateError State = 1 << 2
)

//
func (s State) Has(f State) bool {
	return s&f != 0
}

// bus timing
const (
	PollInterval    = 2 * time.Microsecond
	TimeoutPolls    = 65000
	TimingEOIWait   = 10 * time.Microsecond
	TimingEOIThresh = 20 // in units of TimingEOIWait
	TimingBit       = 60 * time.Microsecond
	TimingEOIAck    = 60 * time.Microsecond
	TimingStabilize = 20 * time.Microsecond
	TimingATNPre    = 50 * time.Microsecond
	TimingATNDelay  = 100 * time.Microsecond
	TimingFNF       = 100 * time.Microsecond
)

// Bus is the device side of the serial bus for one drive.
type Bus struct {
	lines  Lines
	clock  Clock
	device int
	state  State
}

// NewBus creates a bus for device number dev. If clock is nil, a SpinClock
// is used.
func NewBus(lines Lines, clock Clock, dev int) *Bus {
	if clock == nil {
		clock = SpinClock{}
	}
	return &Bus{lines: lines, clock: clock, device: dev}
}

//
func (b *Bus) Device() int {
	return b.device
}

//
func (b *Bus) SetDevice(dev int) {
	b.device = dev
}

// State returns the flags of the last transfer.
func (b *Bus) State() State {
	return b.state
}

// Release releases clock and data.
func (b *Bus) Release() {
	b.lines.Write(LineClock, false)
	b.lines.Write(LineData, false)
}

/*
	WaitFor polls line until it is in the asserted state given, and returns
	true when it got there. After TimeoutPolls polls, clock and data are
	released, the error flag is set, and WaitFor returns false once ATN has
	been released. This is how the bus recovers from any stalled handshake.
*/
func (b *Bus) WaitFor(line Line, asserted bool) bool {

	for n := 0; n < TimeoutPolls; n++ {
		if b.lines.Read(line) == asserted {
			return true
		}
		b.clock.Delay(PollInterval)
	}

	log.WithFields(log.Fields{
		"line": line, "asserted": asserted}).Debug("bus timeout")

	b.Release()
	b.state |= StateError
	b.waitATNReleased()
	return false
}

//
func (b *Bus) waitATNReleased() {
	for b.lines.Read(LineATN) {
		b.clock.Delay(PollInterval)
	}
}

//
func (b *Bus) enter() {
	if c, ok := b.lines.(Critical); ok {
		c.EnterCritical()
	}
}

//
func (b *Bus) exit() {
	if c, ok := b.lines.(Critical); ok {
		c.ExitCritical()
	}
}

/*
	ReceiveByte receives one byte from the talker. The byte is only valid if
	State does not have the error flag set afterwards. EOI is set when the
	talker signalled the last byte, ATN when the byte was sent under
	attention.
*/
func (b *Bus) ReceiveByte() byte {

	b.enter()
	defer b.exit()

	b.state = StateNone

	// talker ready to send
	if !b.WaitFor(LineClock, false) {
		return 0
	}

	// ready for data
	b.lines.Write(LineData, false)

	// talker holding back for longer than the threshold signals EOI
	n := 0
	for !b.lines.Read(LineClock) && n < TimingEOIThresh {
		b.clock.Delay(TimingEOIWait)
		n++
	}

	if n >= TimingEOIThresh {
		b.state |= StateEOI
		// acknowledge EOI
		b.lines.Write(LineData, true)
		b.clock.Delay(TimingEOIAck)
		b.lines.Write(LineData, false)
		if !b.WaitFor(LineClock, true) {
			return 0
		}
	}

	if b.lines.Read(LineATN) {
		b.state |= StateATN
	}

	// bits LSB first, valid while clock is released
	var data byte
	for ix := 0; ix < 8; ix++ {
		if !b.WaitFor(LineClock, false) {
			return 0
		}
		if !b.lines.Read(LineData) {
			data |= 1 << ix
		}
		if !b.WaitFor(LineClock, true) {
			return 0
		}
	}

	// frame handshake
	b.lines.Write(LineData, true)
	return data
}

/*
	SendByte sends one byte to the listener, with EOI if eoi is set. It
	returns false if the listener did not follow the handshake, or if ATN
	interrupted the transfer.
*/
func (b *Bus) SendByte(data byte, eoi bool) bool {

	b.enter()
	defer b.exit()

	b.state = StateNone

	// ready to send
	b.lines.Write(LineClock, false)

	// listener ready for data
	if !b.WaitFor(LineData, false) {
		return false
	}

	if eoi {
		// holding back makes the listener acknowledge EOI
		if !b.WaitFor(LineData, true) {
			return false
		}
		if !b.WaitFor(LineData, false) {
			return false
		}
		b.state |= StateEOI
	}

	b.lines.Write(LineClock, true)

	for ix := 0; ix < 8; ix++ {
		if b.lines.Read(LineATN) {
			b.state |= StateATN
			b.Release()
			return false
		}
		b.lines.Write(LineData, data&1 == 0)
		b.clock.Delay(TimingBit)
		b.lines.Write(LineClock, false)
		b.clock.Delay(TimingBit)
		b.lines.Write(LineClock, true)
		data >>= 1
	}

	b.lines.Write(LineData, false)
	b.clock.Delay(TimingStabilize)

	// listener accepted frame
	return b.WaitFor(LineData, true)
}

// TurnAround makes the drive the talker after the host released ATN.
func (b *Bus) TurnAround() bool {
	if !b.WaitFor(LineClock, false) {
		return false
	}
	b.lines.Write(LineData, false)
	b.clock.Delay(TimingBit)
	b.lines.Write(LineClock, true)
	b.clock.Delay(TimingBit)
	return true
}

// UndoTurnAround makes the drive a listener again.
func (b *Bus) UndoTurnAround() bool {
	b.lines.Write(LineData, true)
	b.clock.Delay(TimingBit)
	b.lines.Write(LineClock, false)
	b.clock.Delay(TimingBit)
	return b.WaitFor(LineClock, true)
}

// SendFNF signals file not found to a host waiting for data, by releasing
// the lines instead of sending.
func (b *Bus) SendFNF() {
	b.Release()
	b.clock.Delay(TimingFNF)
}
