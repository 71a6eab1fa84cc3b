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

/*
	Package iec implements the device side of the Commodore serial bus. All
	lines are open collector: a line reads as asserted as soon as one party
	pulls it low. Timing is done with busy waits on an injectable clock, and
	every wait has a timeout after which the bus is reset.
*/
package iec

import (
	"time"
)

// Line is one of the bus lines the drive is connected to.
type Line int

//
const (
	LineATN Line = iota
	LineClock
	LineData
	LineReset
)

//
func (l Line) String() string {
	switch l {
	case LineATN:
		return "ATN"
	case LineClock:
		return "CLOCK"
	case LineData:
		return "DATA"
	case LineReset:
		return "RESET"
	}
	return "unknown"
}

// Lines gives access to the physical bus. Read reports true when the line
// is asserted, i.e. pulled low, by anyone on the bus. Write asserts or
// releases this device's driver for the line.
type Lines interface {
	Read(l Line) bool
	Write(l Line, asserted bool)
}

// Critical may be implemented by Lines which can keep other work from
// interfering with timing, e.g. by disabling interrupts. The bus enters a
// critical section for each byte transfer.
type Critical interface {
	EnterCritical()
	ExitCritical()
}

// Clock provides the micro-waits used for bus timing.
type Clock interface {
	Delay(d time.Duration)
}

// SpinClock busy-waits, which is more precise than sleeping for the short
// durations used on the bus.
type SpinClock struct{}

//
func (SpinClock) Delay(d time.Duration) {
	end := time.Now().Add(d)
	for time.Now().Before(end) {
	}
}
