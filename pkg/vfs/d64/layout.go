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

//
const padByte = base.PadByte

//
const (
	Tracks      = 35
	SectorSize  = 256
	TotalBlocks = 683
	ImageSize   = TotalBlocks * SectorSize

	// payload bytes per block, first two bytes are the link
	BlockPayload = SectorSize - 2

	dirTrack       = 18
	bamSector      = 0
	firstDirSector = 1

	entrySize        = 32
	entriesPerSector = SectorSize / entrySize

	fileInterleave = 10
	dirInterleave  = 3
)

// BAM and header offsets within 18/0
const (
	bamEntries   = 0x04
	bamDiskName  = 0x90
	bamDiskID    = 0xa2
	bamDOSType   = 0xa5
	bamDOSVerPos = 0x02
)

// directory entry offsets
const (
	entryType   = 0x02
	entryTrack  = 0x03
	entrySector = 0x04
	entryName   = 0x05
	entryBlocks = 0x1e
)

// file types, lower three bits of the type byte
const (
	typeDEL = 0
	typeSEQ = 1
	typePRG = 2
	typeUSR = 3
	typeREL = 4

	flagClosed = 0x80
	flagLocked = 0x40
)

var typeNames = []string{"DEL", "SEQ", "PRG", "USR", "REL"}

// SectorsPerTrack returns the number of sectors on track, which depends on
// the speed zone the track is in.
func SectorsPerTrack(track int) int {
	switch {
	case track < 1 || track > Tracks:
		return 0
	case track <= 17:
		return 21
	case track <= 24:
		return 19
	case track <= 30:
		return 18
	}
	return 17
}

// BlockOffset returns the byte offset of a block within the image, and
// whether track and sector are valid.
func BlockOffset(track, sector int) (int, bool) {
	spt := SectorsPerTrack(track)
	if spt == 0 || sector < 0 || sector >= spt {
		return 0, false
	}
	offset := 0
	for t := 1; t < track; t++ {
		offset += SectorsPerTrack(t)
	}
	return (offset + sector) * SectorSize, true
}
