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
	Package t64 serves files from tape archive images. Tape images are
	read-only.
*/
package t64

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/iecdrive/pkg/vfs/base"
)

//
const (
	Magic = "C64"

	headerSize    = 0x40
	offMaxEntries = 0x22
	offUsed       = 0x24
	offTitle      = 0x28
	titleLength   = 24
	recordSize    = 32

	recType     = 0x00
	recFileType = 0x01
	recStart    = 0x02
	recEnd      = 0x04
	recOffset   = 0x08
	recName     = 0x10
)

// Entry is a file record of a tape image.
type Entry struct {
	Name     string
	FileType byte
	Start    uint16
	End      uint16
	Offset   uint32
}

// Size is the payload length including the two load address bytes.
func (e *Entry) Size() int {
	if e.End <= e.Start {
		return 2
	}
	return int(e.End-e.Start) + 2
}

//
func New() *Driver {
	return &Driver{}
}

//
type Driver struct {
	base.Lifecycle
	//
	path    string
	image   []byte
	title   string
	entries []*Entry
	//
	name string
	data []byte
	pos  int
}

//
func (d *Driver) Kind() base.Kind {
	return base.KindT64
}

//
func (d *Driver) Accepts(path string, info os.FileInfo) bool {
	return info != nil && !info.IsDir() && info.Size() >= headerSize &&
		strings.EqualFold(filepath.Ext(path), ".t64")
}

//
func (d *Driver) Mount(path string) bool {

	d.Unmount()

	image, err := os.ReadFile(path)
	if err != nil {
		log.WithField("path", path).Errorf("cannot read image: %v", err)
		return false
	}

	title, entries, ok := Parse(image)
	if !ok {
		log.WithField("path", path).Error("invalid tape image")
		return false
	}

	d.path = path
	d.image = image
	d.title = title
	d.entries = entries
	d.SetReady(true)
	return true
}

/*
	Parse decodes header and directory of a tape image. The used entry count
	is taken from the header, with 0 treated as 1, and capped at what the
	image can hold. Only records marked as in use are returned.
*/
func Parse(image []byte) (string, []*Entry, bool) {

	if len(image) < headerSize || !bytes.HasPrefix(image, []byte(Magic)) {
		return "", nil, false
	}

	used := int(binary.LittleEndian.Uint16(image[offUsed:]))
	if used == 0 {
		used = 1
	}
	maxEntries := int(binary.LittleEndian.Uint16(image[offMaxEntries:]))
	if maxEntries > 0 && used > maxEntries {
		used = maxEntries
	}
	if fit := (len(image) - headerSize) / recordSize; used > fit {
		used = fit
	}

	title := trimName(image[offTitle : offTitle+titleLength])

	var entries []*Entry
	for ix := 0; ix < used; ix++ {
		rec := image[headerSize+ix*recordSize : headerSize+(ix+1)*recordSize]
		if rec[recType] == 0 {
			continue
		}
		entries = append(entries, &Entry{
			Name:     trimName(rec[recName:recordSize]),
			FileType: rec[recFileType],
			Start:    binary.LittleEndian.Uint16(rec[recStart:]),
			End:      binary.LittleEndian.Uint16(rec[recEnd:]),
			Offset:   binary.LittleEndian.Uint32(rec[recOffset:]),
		})
	}

	return title, entries, true
}

//
func trimName(raw []byte) string {
	return strings.TrimRight(base.TrimPadded(raw), " \x00")
}

//
func (d *Driver) Unmount() {
	d.Close()
	d.path = ""
	d.image = nil
	d.entries = nil
	d.title = ""
	d.SetReady(false)
}

//
func (d *Driver) Path() string {
	return d.path
}

//
func (d *Driver) Name() string {
	if len(d.title) > base.MaxNameLength {
		return d.title[:base.MaxNameLength]
	}
	return d.title
}

//
func (d *Driver) Entries() []*Entry {
	return d.entries
}

//
func (d *Driver) find(pattern string) *Entry {
	for _, e := range d.entries {
		if base.Match(pattern, e.Name) {
			return e
		}
	}
	return nil
}

// OpenRead opens the first matching entry. The load address is served as
// the first two bytes, followed by the data found at the record's offset.
// Data beyond the end of the image is cut off.
func (d *Driver) OpenRead(name string) bool {

	if !d.IsReady() {
		return false
	}
	d.Close()

	e := d.find(name)
	if e == nil {
		return false
	}

	data := make([]byte, 2, e.Size())
	binary.LittleEndian.PutUint16(data, e.Start)

	start := int(e.Offset)
	end := start + e.Size() - 2
	if end > len(d.image) {
		end = len(d.image)
	}
	if start < end {
		data = append(data, d.image[start:end]...)
	}

	d.name = e.Name
	d.data = data
	d.pos = 0
	d.OpenStream()
	return true
}

//
func (d *Driver) Getc() byte {
	if d.Stream() != base.StreamOpen {
		return 0
	}
	b := d.data[d.pos]
	if d.pos++; d.pos >= len(d.data) {
		d.SetEOF()
	}
	return b
}

//
func (d *Driver) IsEOF() bool {
	return d.Stream() != base.StreamOpen
}

//
func (d *Driver) FileSize() int {
	return len(d.data)
}

//
func (d *Driver) Close() bool {
	d.data = nil
	d.pos = 0
	d.CloseStream()
	return true
}

//
func (d *Driver) ListDirectory(l *base.Listing) bool {
	if !d.IsReady() {
		return false
	}
	l.AddHeader(d.Name(), "TP", "64")
	for _, e := range d.entries {
		l.AddEntry(base.Blocks(int64(e.Size())), e.Name, "PRG", true, false)
	}
	l.AddFooter(0)
	return true
}

//
func (d *Driver) MediaInfo(l *base.Listing) bool {
	if !d.IsReady() {
		return false
	}
	l.AddHeader(d.Name(), "TP", "64")
	l.AddString(0, "T64 TAPE IMAGE")
	l.AddString(0, "FILE: "+strings.ToUpper(filepath.Base(d.path)))
	l.AddString(len(d.entries), "FILES")
	l.AddFooter(0)
	return true
}

//
func (d *Driver) FileExists(name string) bool {
	return d.find(name) != nil
}

// write access is not supported on tapes

//
func (d *Driver) OpenWrite(name string, replace bool) base.Status {
	return base.StatusWriteProtectOn
}

//
func (d *Driver) Putc(b byte) bool {
	return false
}

//
func (d *Driver) Rename(oldName, newName string) bool {
	return false
}

//
func (d *Driver) Remove(pattern string) int {
	return 0
}

//
func (d *Driver) Copy(dest string, srcs []string) base.Status {
	return base.StatusWriteProtectOn
}

//
func (d *Driver) NewDisk(label, id string) base.Status {
	return base.StatusWriteProtectOn
}
