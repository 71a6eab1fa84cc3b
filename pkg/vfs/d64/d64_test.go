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
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelalexv/iecdrive/pkg/vfs/base"
)

func newImage(t *testing.T) (*Driver, string) {
	path := filepath.Join(t.TempDir(), "test.d64")
	require.NoError(t, Format(path, "TEST DISK", "01"))
	d := New()
	require.True(t, d.Mount(path))
	return d, path
}

func writeFile(t *testing.T, d *Driver, name string, data []byte) {
	require.Equal(t, base.StatusOK, d.OpenWrite(name, false))
	for _, b := range data {
		require.True(t, d.Putc(b))
	}
	require.True(t, d.Close())
}

func readFile(t *testing.T, d *Driver, name string) []byte {
	require.True(t, d.OpenRead(name), name)
	var ret []byte
	for !d.IsEOF() {
		ret = append(ret, d.Getc())
	}
	d.Close()
	return ret
}

func payload(n int) []byte {
	ret := make([]byte, n)
	for ix := range ret {
		ret[ix] = byte(ix * 7)
	}
	return ret
}

func TestGeometry(t *testing.T) {
	total := 0
	for tr := 1; tr <= Tracks; tr++ {
		total += SectorsPerTrack(tr)
	}
	assert.Equal(t, TotalBlocks, total)
	assert.Equal(t, 174848, ImageSize)

	off, ok := BlockOffset(18, 0)
	require.True(t, ok)
	assert.Equal(t, 0x16500, off)

	_, ok = BlockOffset(0, 0)
	assert.False(t, ok)
	_, ok = BlockOffset(36, 0)
	assert.False(t, ok)
	_, ok = BlockOffset(31, 17)
	assert.False(t, ok)
}

func TestFormat(t *testing.T) {
	d, _ := newImage(t)
	assert.Equal(t, "TEST DISK", d.Name())
	assert.Equal(t, "01", d.diskID())
	assert.Equal(t, "2A", d.dosType())
	assert.Equal(t, 664, d.freeBlocks())
	assert.Empty(t, d.entries())
}

func TestFormatLongLabel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.d64")
	require.NoError(t, Format(path, "A VERY LONG DISK NAME INDEED", "07"))
	d := New()
	require.True(t, d.Mount(path))
	assert.Equal(t, "A VERY LONG DISK", d.Name())
	assert.Equal(t, "07", d.diskID())
	assert.Equal(t, "2A", d.dosType())
	assert.Equal(t, byte(padByte), d.bam()[bamDiskName+base.MaxNameLength])
}

func TestMountRejectsShortImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.d64")
	require.NoError(t, os.WriteFile(path, make([]byte, ImageSize-1), 0644))
	d := New()
	assert.False(t, d.Mount(path))
	assert.False(t, d.IsReady())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.False(t, d.Accepts(path, info))
}

func TestWriteReadRoundTrip(t *testing.T) {
	d, path := newImage(t)

	for _, n := range []int{0, 1, 253, 254, 255, 508, 509, 3000} {
		name := fmt.Sprintf("FILE%d", n)
		data := payload(n)
		writeFile(t, d, name, data)
		got := readFile(t, d, name)
		if n == 0 {
			assert.Empty(t, got, name)
		} else {
			assert.Equal(t, data, got, name)
		}
	}

	// persisted
	d2 := New()
	require.True(t, d2.Mount(path))
	assert.Equal(t, payload(3000), readFile(t, d2, "FILE3000"))
	assert.Equal(t, 664-1-1-1-1-2-2-3-12, d2.freeBlocks())
}

func TestReadAtBlockBoundary(t *testing.T) {
	d, _ := newImage(t)

	// two block chain built by hand: 17/0 full, 17/10 holding two bytes
	first, _ := BlockOffset(17, 0)
	second, _ := BlockOffset(17, 10)
	d.image[first] = 17
	d.image[first+1] = 10
	for ix := 2; ix < SectorSize; ix++ {
		d.image[first+ix] = byte(ix)
	}
	d.image[second] = 0
	d.image[second+1] = 3
	d.image[second+2] = 0xaa
	d.image[second+3] = 0xbb

	slot := d.freeSlot()
	slot.raw[entryType] = typePRG | flagClosed
	slot.raw[entryTrack] = 17
	slot.raw[entrySector] = 0
	slot.setName("CHAIN")
	slot.setBlocks(2)

	require.True(t, d.OpenRead("CHAIN"))
	assert.Equal(t, 256, d.FileSize())

	for ix := 2; ix < SectorSize; ix++ {
		require.False(t, d.IsEOF())
		assert.Equal(t, byte(ix), d.Getc())
	}
	// crossing into the second block
	require.False(t, d.IsEOF())
	assert.Equal(t, byte(0xaa), d.Getc())
	require.False(t, d.IsEOF())
	assert.Equal(t, byte(0xbb), d.Getc())
	assert.True(t, d.IsEOF())
	assert.Equal(t, byte(0), d.Getc())
}

func TestReadStopsAtBrokenChain(t *testing.T) {
	d, _ := newImage(t)

	blk, _ := BlockOffset(1, 0)
	d.image[blk] = 99 // invalid track
	d.image[blk+1] = 0

	slot := d.freeSlot()
	slot.raw[entryType] = typePRG | flagClosed
	slot.raw[entryTrack] = 1
	slot.setName("BROKEN")

	data := readFile(t, d, "BROKEN")
	assert.Len(t, data, BlockPayload)

	// chain looping back onto itself
	d.image[blk] = 1
	d.image[blk+1] = 0
	data = readFile(t, d, "BROKEN")
	assert.Len(t, data, TotalBlocks*BlockPayload)
}

func TestDirectorySectorEdge(t *testing.T) {
	d, _ := newImage(t)

	for ix := 0; ix < 10; ix++ {
		writeFile(t, d, fmt.Sprintf("F%d", ix), []byte{byte(ix)})
	}

	entries := d.entries()
	require.Len(t, entries, 10)

	// slot 7 is the last one in the first directory block, slot 8 continues
	// in the next block of the chain
	assert.Equal(t, "F7", entries[7].name())
	assert.Equal(t, firstDirSector, entries[7].sector)
	assert.Equal(t, 7, entries[7].index)
	assert.Equal(t, "F8", entries[8].name())
	assert.NotEqual(t, firstDirSector, entries[8].sector)
	assert.Equal(t, 0, entries[8].index)

	off, _ := BlockOffset(dirTrack, firstDirSector)
	assert.Equal(t, byte(dirTrack), d.image[off])
	assert.Equal(t, byte(entries[8].sector), d.image[off+1])

	assert.Equal(t, []byte{7}, readFile(t, d, "F7"))
	assert.Equal(t, []byte{8}, readFile(t, d, "F8"))

	l := &base.Listing{}
	require.True(t, d.ListDirectory(l))
	require.Equal(t, 12, l.Len())
	assert.Contains(t, string(l.Lines()[8].Text), `"F7"`)
	assert.Contains(t, string(l.Lines()[9].Text), `"F8"`)
}

func TestScratchPattern(t *testing.T) {
	d, _ := newImage(t)
	writeFile(t, d, "GAME1", payload(300))
	writeFile(t, d, "GAME2", payload(10))
	writeFile(t, d, "DEMO", payload(10))
	free := d.freeBlocks()

	assert.Equal(t, 2, d.Remove("GAME*"))
	assert.False(t, d.FileExists("GAME1"))
	assert.False(t, d.FileExists("GAME2"))
	assert.True(t, d.FileExists("DEMO"))
	assert.Equal(t, free+3, d.freeBlocks())

	// freed slot is reused
	writeFile(t, d, "NEW", payload(1))
	assert.Equal(t, "NEW", d.entries()[0].name())
}

func TestScratchKeepsLocked(t *testing.T) {
	d, _ := newImage(t)
	writeFile(t, d, "GAME1", payload(10))
	writeFile(t, d, "GAME2", payload(10))

	e := d.find("GAME1")
	require.NotNil(t, e)
	e.raw[entryType] |= flagLocked

	assert.Equal(t, 1, d.Remove("GAME*"))
	assert.True(t, d.FileExists("GAME1"))
	assert.False(t, d.FileExists("GAME2"))
	assert.Equal(t, payload(10), readFile(t, d, "GAME1"))
	assert.Equal(t, 0, d.Remove("GAME1"))
}

func TestReplaceRenameCopy(t *testing.T) {
	d, _ := newImage(t)
	writeFile(t, d, "A", []byte("one"))
	writeFile(t, d, "B", []byte("two"))

	assert.Equal(t, base.StatusFileExists, d.OpenWrite("A", false))
	require.Equal(t, base.StatusOK, d.OpenWrite("A", true))
	d.Putc('x')
	d.Close()
	assert.Equal(t, []byte("x"), readFile(t, d, "A"))
	assert.Len(t, d.entries(), 2)

	require.True(t, d.Rename("B", "C"))
	assert.False(t, d.FileExists("B"))
	assert.Equal(t, []byte("two"), readFile(t, d, "C"))

	assert.Equal(t, base.StatusOK, d.Copy("D", []string{"A", "C"}))
	assert.Equal(t, []byte("xtwo"), readFile(t, d, "D"))
	assert.Equal(t, base.StatusFileExists, d.Copy("D", []string{"A"}))
	assert.Equal(t, base.StatusFileNotFound, d.Copy("E", []string{"Z"}))
}

func TestListingAndInfo(t *testing.T) {
	d, _ := newImage(t)
	writeFile(t, d, "GAME", payload(600))

	l := &base.Listing{}
	require.True(t, d.ListDirectory(l))
	lines := l.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "\x12\"TEST DISK       \" 01 2A", string(lines[0].Text))
	assert.Equal(t, uint16(3), lines[1].Number)
	assert.Equal(t, `   "GAME"             PRG`, string(lines[1].Text))
	assert.Equal(t, uint16(661), lines[2].Number)

	l = &base.Listing{}
	require.True(t, d.MediaInfo(l))
	assert.Greater(t, l.Len(), 2)
}

func TestNewDisk(t *testing.T) {
	d, _ := newImage(t)
	writeFile(t, d, "GAME", payload(600))

	require.Equal(t, base.StatusOK, d.NewDisk("FRESH", ""))
	assert.Equal(t, "FRESH", d.Name())
	assert.Equal(t, "01", d.diskID())
	assert.Empty(t, d.entries())
	assert.Equal(t, 664, d.freeBlocks())
}

func TestDiskFull(t *testing.T) {
	d, _ := newImage(t)
	require.Equal(t, base.StatusOK, d.OpenWrite("BIG", false))
	written := 0
	for d.Putc(0x55) {
		written++
	}
	d.Close()
	assert.Equal(t, 664*BlockPayload, written)
	assert.Equal(t, 0, d.freeBlocks())
	assert.Equal(t, base.StatusDiskFull, d.OpenWrite("MORE", false))
}
