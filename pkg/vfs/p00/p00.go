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
	Package p00 serves single program files wrapped in a small header that
	keeps the original drive file name. Mounting a file opens it for reading,
	mounting a directory prepares for writing a new container into it. The
	driver never stays mounted beyond the file it was mounted for.
*/
package p00

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/iecdrive/pkg/vfs/base"
	"github.com/xelalexv/iecdrive/pkg/vfs/native"
)

//
const (
	Magic      = "C64File\x00"
	nameField  = 17
	HeaderSize = len(Magic) + nameField + 1
)

// Header is the decoded container header.
type Header struct {
	Name       string
	RecordSize byte
}

// ReadHeader reads and validates a container header.
func ReadHeader(r io.Reader) (*Header, bool) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, false
	}
	if !bytes.HasPrefix(buf, []byte(Magic)) {
		return nil, false
	}
	raw := buf[len(Magic) : len(Magic)+nameField]
	if ix := bytes.IndexByte(raw, 0); ix > -1 {
		raw = raw[:ix]
	}
	return &Header{
		Name:       base.TrimPadded(raw),
		RecordSize: buf[HeaderSize-1],
	}, true
}

//
func (h *Header) Bytes() []byte {
	ret := make([]byte, HeaderSize)
	copy(ret, Magic)
	name := h.Name
	if len(name) > base.MaxNameLength {
		name = name[:base.MaxNameLength]
	}
	copy(ret[len(Magic):], name)
	ret[HeaderSize-1] = h.RecordSize
	return ret
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
	dir     string
	header  *Header
	writer  bool
	stream  *native.Stream
	writing bool
}

//
func (d *Driver) Kind() base.Kind {
	return base.KindP00
}

// IsContainer says whether path carries a container file extension such as
// ".p00" or ".s01".
func IsContainer(path string) bool {
	ext := strings.ToUpper(filepath.Ext(path))
	return len(ext) == 4 && strings.ContainsRune("PSUR", rune(ext[1])) &&
		ext[2] >= '0' && ext[2] <= '9' && ext[3] >= '0' && ext[3] <= '9'
}

//
func (d *Driver) Accepts(path string, info os.FileInfo) bool {
	return info != nil && !info.IsDir() && info.Size() >= int64(HeaderSize) &&
		IsContainer(path)
}

// Mount validates the container at path. If path is a directory, the driver
// mounts in writer mode, ready to create a container there.
func (d *Driver) Mount(path string) bool {

	d.Unmount()

	info, err := os.Stat(path)
	if err != nil {
		log.WithField("path", path).Errorf("cannot stat: %v", err)
		return false
	}

	if info.IsDir() {
		d.dir = path
		d.path = path
		d.writer = true
		d.SetReady(true)
		return true
	}

	f, err := os.Open(path)
	if err != nil {
		log.WithField("path", path).Errorf("cannot open: %v", err)
		return false
	}
	defer f.Close()

	hd, ok := ReadHeader(f)
	if !ok {
		log.WithField("path", path).Error("not a valid container")
		return false
	}

	d.path = path
	d.dir = filepath.Dir(path)
	d.header = hd
	d.SetReady(true)
	return true
}

//
func (d *Driver) Unmount() {
	d.closeStream()
	d.path = ""
	d.dir = ""
	d.header = nil
	d.writer = false
	d.SetReady(false)
}

//
func (d *Driver) Path() string {
	return d.path
}

//
func (d *Driver) Name() string {
	if d.header == nil {
		return ""
	}
	return d.header.Name
}

// OpenRead opens the payload. The container only holds one file, so any
// name opens it.
func (d *Driver) OpenRead(name string) bool {

	if !d.IsReady() || d.writer {
		return false
	}
	d.closeStream()

	s, err := native.OpenStream(d.path, HeaderSize)
	if err != nil {
		log.WithField("path", d.path).Errorf("cannot open payload: %v", err)
		return false
	}

	d.stream = s
	d.OpenStream()
	if s.EOF() {
		d.SetEOF()
	}
	return true
}

// HostName is the container file name used for saving name.
func HostName(name string) string {
	var sb strings.Builder
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
			sb.WriteRune(c)
		case c == ' ':
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		sb.WriteString("file")
	}
	return sb.String() + ".p00"
}

// OpenWrite creates a new container in the mounted directory.
func (d *Driver) OpenWrite(name string, replace bool) base.Status {

	if !d.IsReady() || !d.writer {
		return base.StatusWriteProtectOn
	}
	if name == "" {
		return base.StatusSyntaxNoFile
	}
	if base.IsIllegalFilename(name) {
		return base.StatusSyntaxFilename
	}

	d.closeStream()

	path := filepath.Join(d.dir, HostName(name))
	s, err := native.CreateStream(path, replace)
	if err != nil {
		if os.IsExist(err) {
			return base.StatusFileExists
		}
		log.WithField("path", path).Errorf("cannot create container: %v", err)
		return base.StatusWriteVerify
	}

	d.header = &Header{Name: name}
	if err := s.Write(d.header.Bytes()); err != nil {
		s.Close()
		log.WithField("path", path).Errorf("cannot write header: %v", err)
		return base.StatusWriteVerify
	}

	d.path = path
	d.stream = s
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
	return d.stream.Putc(b) == nil
}

//
func (d *Driver) IsEOF() bool {
	return d.stream == nil || d.stream.EOF()
}

// FileSize returns the payload size, without the header.
func (d *Driver) FileSize() int {
	if d.stream == nil {
		return 0
	}
	if d.writing {
		return d.stream.Size() - HeaderSize
	}
	return d.stream.Size()
}

// Close closes the container and always reports that the driver cannot
// remain mounted.
func (d *Driver) Close() bool {
	d.closeStream()
	return false
}

//
func (d *Driver) closeStream() {
	if d.stream != nil {
		if err := d.stream.Close(); err != nil {
			log.WithField("path", d.path).Errorf("error closing: %v", err)
		}
		d.stream = nil
	}
	d.writing = false
	d.CloseStream()
}

//
func (d *Driver) ListDirectory(l *base.Listing) bool {
	if !d.IsReady() || d.writer {
		return false
	}
	info, err := os.Stat(d.path)
	if err != nil {
		return false
	}
	l.AddHeader(d.Name(), "P0", "0 ")
	l.AddEntry(base.Blocks(info.Size()-int64(HeaderSize)), d.Name(), "PRG",
		true, false)
	l.AddFooter(0)
	return true
}

//
func (d *Driver) MediaInfo(l *base.Listing) bool {
	if !d.IsReady() {
		return false
	}
	l.AddHeader(d.Name(), "P0", "0 ")
	l.AddString(0, "P00 CONTAINER")
	l.AddString(0, "FILE: "+strings.ToUpper(filepath.Base(d.path)))
	l.AddFooter(0)
	return true
}

//
func (d *Driver) FileExists(name string) bool {
	return d.header != nil && !d.writer && base.Match(name, d.header.Name)
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
	return base.StatusNotImplemented
}

//
func (d *Driver) NewDisk(label, id string) base.Status {
	return base.StatusNotImplemented
}
