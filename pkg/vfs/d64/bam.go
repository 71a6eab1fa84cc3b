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

//
func (d *Driver) bam() []byte {
	off, _ := BlockOffset(dirTrack, bamSector)
	return d.image[off : off+SectorSize]
}

//
func (d *Driver) isFree(track, sector int) bool {
	e := d.bam()[bamEntries+4*(track-1):]
	return e[1+sector/8]&(1<<(uint(sector)%8)) != 0
}

//
func (d *Driver) setFree(track, sector int, free bool) {

	if SectorsPerTrack(track) == 0 || d.isFree(track, sector) == free {
		return
	}

	e := d.bam()[bamEntries+4*(track-1):]
	mask := byte(1 << (uint(sector) % 8))
	if free {
		e[1+sector/8] |= mask
		e[0]++
	} else {
		e[1+sector/8] &^= mask
		e[0]--
	}
}

// freeBlocks counts free blocks outside of the directory track.
func (d *Driver) freeBlocks() int {
	free := 0
	b := d.bam()
	for t := 1; t <= Tracks; t++ {
		if t != dirTrack {
			free += int(b[bamEntries+4*(t-1)])
		}
	}
	return free
}

// allocate finds and claims a free block for file data, preferring blocks
// close to prevTrack and interleaved after prevSector. With prevTrack 0 the
// search starts next to the directory track.
func (d *Driver) allocate(prevTrack, prevSector int) (int, int, bool) {

	start := prevTrack
	if start == 0 || start == dirTrack {
		start = dirTrack - 1
	}

	for _, t := range trackOrder(start) {
		if t == dirTrack {
			continue
		}
		spt := SectorsPerTrack(t)
		first := 0
		if t == prevTrack {
			first = (prevSector + fileInterleave) % spt
		}
		for ix := 0; ix < spt; ix++ {
			s := (first + ix) % spt
			if d.isFree(t, s) {
				d.setFree(t, s, false)
				return t, s, true
			}
		}
	}

	return 0, 0, false
}

// allocateDir claims a free sector on the directory track.
func (d *Driver) allocateDir(prevSector int) (int, bool) {
	spt := SectorsPerTrack(dirTrack)
	for ix := 0; ix < spt; ix++ {
		s := (prevSector + dirInterleave + ix) % spt
		if d.isFree(dirTrack, s) {
			d.setFree(dirTrack, s, false)
			return s, true
		}
	}
	return 0, false
}

// trackOrder lists all tracks, starting at start and moving outward on
// both sides.
func trackOrder(start int) []int {
	ret := []int{start}
	for dist := 1; len(ret) < Tracks; dist++ {
		if t := start - dist; t >= 1 {
			ret = append(ret, t)
		}
		if t := start + dist; t <= Tracks {
			ret = append(ret, t)
		}
	}
	return ret
}

// freeChain releases all blocks of the chain starting at track/sector.
func (d *Driver) freeChain(track, sector int) {
	for count := 0; track != 0 && count < TotalBlocks; count++ {
		off, ok := BlockOffset(track, sector)
		if !ok {
			return
		}
		d.setFree(track, sector, true)
		track, sector = int(d.image[off]), int(d.image[off+1])
	}
}

// format writes an empty file system with the given name and id.
func (d *Driver) format(label, id string) {

	for ix := 0; ix < ImageSize; ix++ {
		d.image[ix] = 0
	}

	b := d.bam()
	b[0] = dirTrack
	b[1] = firstDirSector
	b[bamDOSVerPos] = 'A'

	for t := 1; t <= Tracks; t++ {
		spt := SectorsPerTrack(t)
		e := b[bamEntries+4*(t-1):]
		e[0] = byte(spt)
		for s := 0; s < spt; s++ {
			e[1+s/8] |= 1 << (uint(s) % 8)
		}
	}
	d.setFree(dirTrack, bamSector, false)
	d.setFree(dirTrack, firstDirSector, false)

	for ix := bamDiskName; ix <= 0xaa; ix++ {
		b[ix] = padByte
	}
	copy(b[bamDiskName:], label)
	copy(b[bamDiskID:bamDiskID+2], id)
	b[bamDOSType] = '2'
	b[bamDOSType+1] = 'A'

	off, _ := BlockOffset(dirTrack, firstDirSector)
	d.image[off+1] = 0xff
}
