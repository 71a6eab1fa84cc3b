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

package d64

import (
	"github.com/xelalexv/iecdrive/pkg/vfs/base"
)

// entry is a directory slot together with its position in the image.
type entry struct {
	track  int // directory block holding the entry
	sector int
	index  int // slot within the block, 0-7
	raw    []byte
}

//
func (e *entry) typ() byte {
	return e.raw[entryType]
}

//
func (e *entry) used() bool {
	return e.raw[entryType] != 0
}

//
func (e *entry) name() string {
	return base.TrimPadded(e.raw[entryName : entryName+base.MaxNameLength])
}

//
func (e *entry) setName(name string) {
	copy(e.raw[entryName:], base.Padded(name, base.MaxNameLength, padByte))
}

//
func (e *entry) start() (int, int) {
	return int(e.raw[entryTrack]), int(e.raw[entrySector])
}

//
func (e *entry) blocks() int {
	return int(e.raw[entryBlocks]) | int(e.raw[entryBlocks+1])<<8
}

//
func (e *entry) setBlocks(n int) {
	e.raw[entryBlocks] = byte(n)
	e.raw[entryBlocks+1] = byte(n >> 8)
}

//
func (e *entry) typeName() string {
	if t := int(e.typ() & 0x07); t < len(typeNames) {
		return typeNames[t]
	}
	return "???"
}

/*
	walkDir calls fn for every slot of the directory, sector by sector, in
	chain order, until fn returns false. Each 32 byte slot is handed over in
	full. The chain link only occupies the first two bytes of each sector, so
	slot 0 of every sector starts with the link and all other slots start with
	two unused bytes. A broken or looping chain ends the walk.
*/
func (d *Driver) walkDir(fn func(e *entry) bool) {

	track, sector := dirTrack, firstDirSector
	seen := map[int]bool{}

	for track != 0 {

		off, ok := BlockOffset(track, sector)
		if !ok || seen[off] {
			return
		}
		seen[off] = true

		for ix := 0; ix < entriesPerSector; ix++ {
			start := off + ix*entrySize
			e := &entry{track: track, sector: sector, index: ix,
				raw: d.image[start : start+entrySize]}
			if !fn(e) {
				return
			}
		}

		track, sector = int(d.image[off]), int(d.image[off+1])
	}
}

// entries returns all used directory entries.
func (d *Driver) entries() []*entry {
	var ret []*entry
	d.walkDir(func(e *entry) bool {
		if e.used() {
			ret = append(ret, e)
		}
		return true
	})
	return ret
}

// find returns the first used entry whose name matches pattern.
func (d *Driver) find(pattern string) *entry {
	var ret *entry
	d.walkDir(func(e *entry) bool {
		if e.used() && e.typ()&0x07 != typeDEL && base.Match(pattern, e.name()) {
			ret = e
			return false
		}
		return true
	})
	return ret
}

// freeSlot returns an unused directory slot, extending the directory by
// one block if necessary.
func (d *Driver) freeSlot() *entry {

	var ret *entry
	lastTrack, lastSector := 0, 0

	d.walkDir(func(e *entry) bool {
		lastTrack, lastSector = e.track, e.sector
		if !e.used() {
			ret = e
			return false
		}
		return true
	})

	if ret != nil || lastTrack == 0 {
		return ret
	}

	sector, ok := d.allocateDir(lastSector)
	if !ok {
		return nil
	}

	prev, _ := BlockOffset(lastTrack, lastSector)
	d.image[prev] = dirTrack
	d.image[prev+1] = byte(sector)

	off, _ := BlockOffset(dirTrack, sector)
	for ix := 0; ix < SectorSize; ix++ {
		d.image[off+ix] = 0
	}
	d.image[off+1] = 0xff

	return &entry{track: dirTrack, sector: sector, index: 0,
		raw: d.image[off : off+entrySize]}
}

// clear wipes the entry, leaving a chain link in slot 0 intact.
func (e *entry) clear() {
	for ix := entryType; ix < entrySize; ix++ {
		e.raw[ix] = 0
	}
}
