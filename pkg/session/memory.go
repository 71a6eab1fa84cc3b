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

package session

//
const (
	MemorySize = 0x10000
	// listen and talk addresses of the drive, $20 + device and $40 + device
	AddrListen = 0x0077
	AddrTalk   = 0x0078
)

// Memory is the drive's RAM as far as memory-write commands can reach it.
// Nothing executes in here, but some programs move the drive to another
// device number by poking the bus addresses.
type Memory struct {
	data []byte
}

//
func NewMemory() *Memory {
	return &Memory{data: make([]byte, MemorySize)}
}

// Write copies data to addr, wrapping around at the end of the address
// space.
func (m *Memory) Write(addr uint16, data []byte) {
	for ix, b := range data {
		m.data[(int(addr)+ix)%MemorySize] = b
	}
}

//
func (m *Memory) Read(addr uint16, n int) []byte {
	ret := make([]byte, n)
	for ix := range ret {
		ret[ix] = m.data[(int(addr)+ix)%MemorySize]
	}
	return ret
}

// covers says whether a write of n bytes at addr touches target.
func covers(addr uint16, n int, target int) bool {
	off := (target - int(addr) + MemorySize) % MemorySize
	return off < n
}

// setDevice stores the bus addresses for dev.
func (m *Memory) setDevice(dev int) {
	m.data[AddrListen] = byte(0x20 + dev)
	m.data[AddrTalk] = byte(0x40 + dev)
}

// device returns the device number held in the listen address.
func (m *Memory) device() int {
	return int(m.data[AddrListen]) - 0x20
}
