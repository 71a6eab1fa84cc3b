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
	Package m2i serves files listed in a text index. Each index entry maps a
	drive file name to a host file in the index file's directory.
*/
package m2i

import (
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/iecdrive/pkg/vfs/base"
	"github.com/xelalexv/iecdrive/pkg/vfs/native"
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
	dir   string
	index *Index
	//
	stream  *native.Stream
	name    string
	writing bool
}

//
func (d *Driver) Kind() base.Kind {
	return base.KindM2I
}

//
func (d *Driver) Accepts(path string, info os.FileInfo) bool {
	return info != nil && !info.IsDir() &&
		strings.EqualFold(filepath.Ext(path), ".m2i")
}

// Mount parses the index at path. A malformed index leaves the driver not
// ready.
func (d *Driver) Mount(path string) bool {

	d.Unmount()

	data, err := os.ReadFile(path)
	if err != nil {
		log.WithField("path", path).Errorf("cannot read index: %v", err)
		return false
	}

	index, err := ParseIndex(data)
	if err != nil {
		log.WithField("path", path).Errorf("invalid index: %v", err)
		return false
	}

	d.path = path
	d.dir = filepath.Dir(path)
	d.index = index
	d.SetReady(true)
	return true
}

//
func (d *Driver) Unmount() {
	d.Close()
	d.path = ""
	d.dir = ""
	d.index = nil
	d.SetReady(false)
}

//
func (d *Driver) Path() string {
	return d.path
}

//
func (d *Driver) Name() string {
	if d.index == nil {
		return ""
	}
	return d.index.Title
}

//
func (d *Driver) Index() *Index {
	return d.index
}

//
func (d *Driver) save() bool {
	if err := os.WriteFile(d.path, d.index.Bytes(), 0644); err != nil {
		log.WithField("path", d.path).Errorf("cannot write index: %v", err)
		return false
	}
	return true
}

//
func (d *Driver) hostPath(e *Entry) string {
	return filepath.Join(d.dir, e.Host)
}

//
func (d *Driver) hostTaken(host string) bool {
	_, err := os.Stat(filepath.Join(d.dir, host))
	return err == nil
}

//
func (d *Driver) OpenRead(name string) bool {

	if !d.IsReady() {
		return false
	}
	d.Close()

	e := d.index.Find(name)
	if e == nil {
		return false
	}

	s, err := native.OpenStream(d.hostPath(e), 0)
	if err != nil {
		log.WithField("host", e.Host).Errorf("cannot open file: %v", err)
		return false
	}

	d.stream = s
	d.name = e.Name
	d.OpenStream()
	if s.EOF() {
		d.SetEOF()
	}
	return true
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
	if len(name) > base.MaxNameLength {
		name = name[:base.MaxNameLength]
	}

	d.Close()

	e := d.index.Find(name)
	if e != nil && !replace {
		return base.StatusFileExists
	}

	if e == nil {
		e = &Entry{
			Type: TypeProgram,
			Host: d.index.HostName(name, d.hostTaken),
			Name: name,
		}
		d.index.Entries = append(d.index.Entries, e)
		if !d.save() {
			return base.StatusWriteVerify
		}
	}

	s, err := native.CreateStream(d.hostPath(e), true)
	if err != nil {
		log.WithField("host", e.Host).Errorf("cannot create file: %v", err)
		return base.StatusWriteVerify
	}

	d.stream = s
	d.name = name
	d.writing = true
	d.OpenStream()
	return base.StatusOK
}

//
func (d *Driver) Getc() byte {
	if d.stream == nil || d.writing {
		return 0
	}
	b := d.stream.Getc()
	if d.stream.EOF() {
		d.SetEOF()
	}
	return b
}

//
func (d *Driver) Putc(b byte) bool {
	if d.stream == nil || !d.writing {
		return false
	}
	if err := d.stream.Putc(b); err != nil {
		log.Errorf("cannot write to '%s': %v", d.name, err)
		return false
	}
	return true
}

//
func (d *Driver) IsEOF() bool {
	return d.stream == nil || d.stream.EOF()
}

//
func (d *Driver) FileSize() int {
	if d.stream == nil {
		return 0
	}
	return d.stream.Size()
}

//
func (d *Driver) Close() bool {
	if d.stream != nil {
		if err := d.stream.Close(); err != nil {
			log.Errorf("error closing '%s': %v", d.name, err)
		}
		d.stream = nil
	}
	d.writing = false
	d.CloseStream()
	return true
}

//
func (d *Driver) ListDirectory(l *base.Listing) bool {

	if !d.IsReady() {
		return false
	}

	l.AddHeader(d.Name(), "M2", "I ")
	for _, e := range d.index.Entries {
		if e.Type == TypeErased {
			continue
		}
		blocks := 0
		if info, err := os.Stat(d.hostPath(e)); err == nil {
			blocks = base.Blocks(info.Size())
		}
		typ := "PRG"
		if e.Type == TypeDeleted {
			typ = "DEL"
		}
		l.AddEntry(blocks, e.Name, typ, true, false)
	}
	l.AddFooter(native.FreeBlocksAt(d.dir))
	return true
}

//
func (d *Driver) MediaInfo(l *base.Listing) bool {
	if !d.IsReady() {
		return false
	}
	l.AddHeader(d.Name(), "M2", "I ")
	l.AddString(0, "M2I INDEX IMAGE")
	l.AddString(0, "FILE: "+strings.ToUpper(filepath.Base(d.path)))
	l.AddString(len(d.index.Entries), "ENTRIES")
	l.AddFooter(native.FreeBlocksAt(d.dir))
	return true
}

//
func (d *Driver) Rename(oldName, newName string) bool {
	if !d.IsReady() {
		return false
	}
	e := d.index.Find(oldName)
	if e == nil {
		return false
	}
	if len(newName) > base.MaxNameLength {
		newName = newName[:base.MaxNameLength]
	}
	e.Name = newName
	return d.save()
}

// Remove marks matching entries as erased and deletes their host files.
func (d *Driver) Remove(pattern string) int {

	if !d.IsReady() {
		return 0
	}

	count := 0
	for _, e := range d.index.Entries {
		if e.Type == TypeErased || !base.Match(pattern, e.Name) {
			continue
		}
		if err := os.Remove(d.hostPath(e)); err != nil && !os.IsNotExist(err) {
			log.WithField("host", e.Host).Errorf("cannot remove: %v", err)
			continue
		}
		e.Type = TypeErased
		count++
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

	var paths []string
	for _, s := range srcs {
		e := d.index.Find(s)
		if e == nil {
			return base.StatusFileNotFound
		}
		paths = append(paths, d.hostPath(e))
	}

	if d.index.Find(dest) != nil {
		return base.StatusFileExists
	}

	if st := d.OpenWrite(dest, false); st != base.StatusOK {
		return st
	}
	defer d.Close()

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err == nil {
			err = d.stream.Write(data)
		}
		if err != nil {
			log.WithField("path", p).Errorf("copy failed: %v", err)
			return base.StatusWriteVerify
		}
	}
	return base.StatusOK
}

//
func (d *Driver) FileExists(name string) bool {
	return d.IsReady() && d.index.Find(name) != nil
}

// NewDisk erases all entries and sets a new title.
func (d *Driver) NewDisk(label, id string) base.Status {

	if !d.IsReady() {
		return base.StatusDriveNotReady
	}

	d.Remove("*")
	if len(label) > base.MaxNameLength {
		label = label[:base.MaxNameLength]
	}
	d.index.Title = label
	if !d.save() {
		return base.StatusWriteVerify
	}
	return base.StatusOK
}
