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
	Package d64 serves files from 1541 disk images. The image is held in
	memory while mounted and written back to the host file after every
	change.
*/
package d64

import (
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/iecdrive/pkg/vfs/base"
)

//
func New() *Driver {
	return &Driver{}
}

//
type Driver struct {
	base.Lifecycle
	//
	path  string
	raw   []byte
	image []byte
	//
	name string
	size int
	// read position
	track   int
	sector  int
	pos     int
	last    int
	visited int
	// write position
	writing bool
	wEntry  *entry
	wTrack  int
	wSector int
	wPos    int
	wBlocks int
}

//
func (d *Driver) Kind() base.Kind {
	return base.KindD64
}

//
func (d *Driver) Accepts(path string, info os.FileInfo) bool {
	return info != nil && !info.IsDir() && info.Size() >= ImageSize &&
		strings.EqualFold(filepath.Ext(path), ".d64")
}

// Mount loads the image at path. Images shorter than a full disk are
// rejected. Trailing error information is kept but not interpreted.
func (d *Driver) Mount(path string) bool {

	d.Unmount()

	raw, err := os.ReadFile(path)
	if err != nil {
		log.WithField("path", path).Errorf("cannot read image: %v", err)
		return false
	}

	if len(raw) < ImageSize {
		log.WithFields(log.Fields{
			"path": path, "size": len(raw)}).Error("image too short")
		return false
	}

	d.path = path
	d.raw = raw
	d.image = raw[:ImageSize]
	d.SetReady(true)
	return true
}

//
func (d *Driver) Unmount() {
	d.Close()
	d.path = ""
	d.raw = nil
	d.image = nil
	d.SetReady(false)
}

//
func (d *Driver) Path() string {
	return d.path
}

//
func (d *Driver) Name() string {
	if !d.IsReady() {
		return ""
	}
	return base.TrimPadded(d.bam()[bamDiskName : bamDiskName+base.MaxNameLength])
}

//
func (d *Driver) diskID() string {
	return string(d.bam()[bamDiskID : bamDiskID+2])
}

//
func (d *Driver) dosType() string {
	return string(d.bam()[bamDOSType : bamDOSType+2])
}

//
func (d *Driver) save() bool {
	if err := os.WriteFile(d.path, d.raw, 0644); err != nil {
		log.WithField("path", d.path).Errorf("cannot write image: %v", err)
		return false
	}
	return true
}

// OpenRead opens the first file matching name. An empty chain, or one that
// starts outside of the disk, opens as an empty file.
func (d *Driver) OpenRead(name string) bool {

	if !d.IsReady() {
		return false
	}
	d.Close()

	e := d.find(name)
	if e == nil {
		return false
	}

	d.name = e.name()
	d.size = d.chainSize(e.start())
	d.OpenStream()

	d.visited = 0
	d.track, d.sector = e.start()
	if !d.loadBlock() {
		d.SetEOF()
	}
	return true
}

// loadBlock positions the reader at the start of the current block. It
// returns false if the block is invalid or carries no payload.
func (d *Driver) loadBlock() bool {

	off, ok := BlockOffset(d.track, d.sector)
	if !ok || d.visited >= TotalBlocks {
		return false
	}
	d.visited++

	d.pos = 2
	if d.image[off] == 0 {
		d.last = int(d.image[off+1])
		return d.last >= d.pos
	}
	d.last = SectorSize - 1
	return true
}

//
func (d *Driver) Getc() byte {

	if d.writing || d.Stream() != base.StreamOpen {
		return 0
	}

	off, _ := BlockOffset(d.track, d.sector)
	b := d.image[off+d.pos]

	if d.pos++; d.pos > d.last {
		next := d.image[off]
		if next == 0 {
			d.SetEOF()
		} else {
			d.track, d.sector = int(next), int(d.image[off+1])
			if !d.loadBlock() {
				d.SetEOF()
			}
		}
	}

	return b
}

// chainSize returns the payload size of the chain starting at track/sector.
func (d *Driver) chainSize(track, sector int) int {
	size := 0
	for count := 0; count < TotalBlocks; count++ {
		off, ok := BlockOffset(track, sector)
		if !ok {
			break
		}
		if d.image[off] == 0 {
			if last := int(d.image[off+1]); last >= 2 {
				size += last - 1
			}
			break
		}
		size += BlockPayload
		track, sector = int(d.image[off]), int(d.image[off+1])
	}
	return size
}

// readChain returns the payload of the chain starting at track/sector.
func (d *Driver) readChain(track, sector int) []byte {
	var ret []byte
	for count := 0; count < TotalBlocks; count++ {
		off, ok := BlockOffset(track, sector)
		if !ok {
			break
		}
		if d.image[off] == 0 {
			if last := int(d.image[off+1]); last >= 2 {
				ret = append(ret, d.image[off+2:off+last+1]...)
			}
			break
		}
		ret = append(ret, d.image[off+2:off+SectorSize]...)
		track, sector = int(d.image[off]), int(d.image[off+1])
	}
	return ret
}

//
func (d *Driver) IsEOF() bool {
	return d.Stream() != base.StreamOpen
}

//
func (d *Driver) FileSize() int {
	return d.size
}

//
func (d *Driver) OpenWrite(name string, replace bool) base.Status {

	if !d.IsReady() {
		return base.StatusDriveNotReady
	}
	if name == "" {
		return base.StatusSyntaxNoFile
	}
	if base.IsIllegalFilename(name) {
		return base.StatusSyntaxFilename
	}

	d.Close()

	if len(name) > base.MaxNameLength {
		name = name[:base.MaxNameLength]
	}

	if e := d.find(name); e != nil {
		if !replace {
			return base.StatusFileExists
		}
		d.freeChain(e.start())
		e.clear()
	}

	slot := d.freeSlot()
	if slot == nil {
		d.save()
		return base.StatusDiskFull
	}

	t, s, ok := d.allocate(0, 0)
	if !ok {
		d.save()
		return base.StatusDiskFull
	}

	slot.clear()
	slot.raw[entryType] = typePRG
	slot.raw[entryTrack] = byte(t)
	slot.raw[entrySector] = byte(s)
	slot.setName(name)

	d.startBlock(t, s)
	d.wEntry = slot
	d.wBlocks = 1
	d.writing = true
	d.name = name
	d.size = 0
	d.OpenStream()
	return base.StatusOK
}

//
func (d *Driver) startBlock(track, sector int) {
	off, _ := BlockOffset(track, sector)
	for ix := 0; ix < SectorSize; ix++ {
		d.image[off+ix] = 0
	}
	d.image[off+1] = 1
	d.wTrack, d.wSector, d.wPos = track, sector, 2
}

// Putc appends b to the file being written, claiming a new block when the
// current one is full. Returns false when the disk is full.
func (d *Driver) Putc(b byte) bool {

	if !d.writing {
		return false
	}

	if d.wPos == SectorSize {
		t, s, ok := d.allocate(d.wTrack, d.wSector)
		if !ok {
			return false
		}
		off, _ := BlockOffset(d.wTrack, d.wSector)
		d.image[off] = byte(t)
		d.image[off+1] = byte(s)
		d.startBlock(t, s)
		d.wBlocks++
	}

	off, _ := BlockOffset(d.wTrack, d.wSector)
	d.image[off+d.wPos] = b
	d.image[off+1] = byte(d.wPos)
	d.wPos++
	d.size++
	return true
}

// Close finishes a file being written and stores the image. The driver
// always stays mounted.
func (d *Driver) Close() bool {

	if d.writing {
		d.wEntry.raw[entryType] = typePRG | flagClosed
		d.wEntry.setBlocks(d.wBlocks)
		d.writing = false
		d.wEntry = nil
		d.save()
	}

	d.CloseStream()
	return true
}

//
func (d *Driver) ListDirectory(l *base.Listing) bool {

	if !d.IsReady() {
		return false
	}

	l.AddHeader(d.Name(), d.diskID(), d.dosType())
	for _, e := range d.entries() {
		l.AddEntry(e.blocks(), e.name(), e.typeName(),
			e.typ()&flagClosed != 0, e.typ()&flagLocked != 0)
	}
	l.AddFooter(d.freeBlocks())
	return true
}

//
func (d *Driver) MediaInfo(l *base.Listing) bool {

	if !d.IsReady() {
		return false
	}

	l.AddHeader(d.Name(), d.diskID(), d.dosType())
	l.AddString(0, "D64 DISK IMAGE")
	l.AddString(0, "FILE: "+strings.ToUpper(filepath.Base(d.path)))
	l.AddString(len(d.entries()), "FILES")
	l.AddString(Tracks, "TRACKS")
	l.AddFooter(d.freeBlocks())
	return true
}

//
func (d *Driver) Rename(oldName, newName string) bool {

	if !d.IsReady() {
		return false
	}

	e := d.find(oldName)
	if e == nil {
		return false
	}

	if len(newName) > base.MaxNameLength {
		newName = newName[:base.MaxNameLength]
	}
	e.setName(newName)
	return d.save()
}

// Remove scratches all files matching pattern. Locked files are kept.
func (d *Driver) Remove(pattern string) int {

	if !d.IsReady() {
		return 0
	}

	count := 0
	for _, e := range d.entries() {
		if e.typ()&0x07 == typeDEL || e.typ()&flagLocked != 0 {
			continue
		}
		if base.Match(pattern, e.name()) {
			d.freeChain(e.start())
			e.clear()
			count++
		}
	}

	if count > 0 {
		d.save()
	}
	return count
}

//
func (d *Driver) Copy(dest string, srcs []string) base.Status {

	if !d.IsReady() {
		return base.StatusDriveNotReady
	}
	if len(srcs) == 0 {
		return base.StatusSyntaxNoFile
	}

	var data []byte
	for _, s := range srcs {
		e := d.find(s)
		if e == nil {
			return base.StatusFileNotFound
		}
		data = append(data, d.readChain(e.start())...)
	}

	if d.find(dest) != nil {
		return base.StatusFileExists
	}

	if st := d.OpenWrite(dest, false); st != base.StatusOK {
		return st
	}

	for _, b := range data {
		if !d.Putc(b) {
			d.Close()
			return base.StatusDiskFull
		}
	}

	d.Close()
	return base.StatusOK
}

//
func (d *Driver) FileExists(name string) bool {
	return d.IsReady() && d.find(name) != nil
}

// NewDisk formats the image. Without an id the current one is kept.
func (d *Driver) NewDisk(label, id string) base.Status {

	if !d.IsReady() {
		return base.StatusDriveNotReady
	}

	d.Close()

	if id == "" {
		id = d.diskID()
	}
	if len(label) > base.MaxNameLength {
		label = label[:base.MaxNameLength]
	}
	if len(id) > 2 {
		id = id[:2]
	}

	d.format(label, id)
	if !d.save() {
		return base.StatusWriteVerify
	}
	return base.StatusOK
}

// Format creates a new empty image file at path.
func Format(path, label, id string) error {
	d := &Driver{path: path, raw: make([]byte, ImageSize)}
	d.image = d.raw
	if len(label) > base.MaxNameLength {
		label = label[:base.MaxNameLength]
	}
	d.format(label, id)
	return os.WriteFile(path, d.raw, 0644)
}
