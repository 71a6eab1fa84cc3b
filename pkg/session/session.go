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
	Package session turns channel addressed open, read, write and close
	requests into file system driver calls. A session owns the active driver,
	the single open stream, and the latched drive status. It is not safe for
	concurrent use, all calls need to come from the same goroutine.
*/
package session

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/iecdrive/pkg/dos"
	"github.com/xelalexv/iecdrive/pkg/proto"
	"github.com/xelalexv/iecdrive/pkg/vfs/base"
	"github.com/xelalexv/iecdrive/pkg/vfs/d64"
	"github.com/xelalexv/iecdrive/pkg/vfs/m2i"
	"github.com/xelalexv/iecdrive/pkg/vfs/native"
	"github.com/xelalexv/iecdrive/pkg/vfs/p00"
	"github.com/xelalexv/iecdrive/pkg/vfs/t64"
)

//
const (
	SaveFormatPRG = "prg"
	SaveFormatP00 = "p00"
)

//
const DefaultDevice = 8

// Config holds the settings a session is created with.
type Config struct {
	Root         string
	ShowDirs     bool
	Device       int
	WriteProtect bool
	SaveFormat   string
}

//
type Session struct {
	native   *native.Driver
	p00      *p00.Driver
	formats  []base.Driver
	active   base.Driver
	registry *dos.Registry
	notifier Notifier
	//
	state      proto.OpenState
	status     base.Status
	lastName   string
	listing    *base.Listing
	readLength int
	//
	device       int
	writeProtect bool
	saveP00      bool
	memory       *Memory
}

// New creates a session serving from cfg.Root. If n is nil, notifications
// are dropped.
func New(cfg Config, n Notifier) (*Session, error) {

	nat, err := native.New(cfg.Root, cfg.ShowDirs)
	if err != nil {
		return nil, fmt.Errorf("cannot create native driver: %v", err)
	}

	switch strings.ToLower(cfg.SaveFormat) {
	case "", SaveFormatPRG, SaveFormatP00:
	default:
		return nil, fmt.Errorf("invalid save format: %s", cfg.SaveFormat)
	}

	if cfg.Device == 0 {
		cfg.Device = DefaultDevice
	}
	if !validDevice(cfg.Device) {
		return nil, fmt.Errorf("invalid device number: %d", cfg.Device)
	}

	if n == nil {
		n = NopNotifier{}
	}

	pc := p00.New()
	s := &Session{
		native: nat,
		p00:    pc,
		// probing order for mountable files
		formats:      []base.Driver{d64.New(), t64.New(), m2i.New(), pc},
		active:       nat,
		registry:     dos.DefaultRegistry(),
		notifier:     n,
		readLength:   proto.DefaultReadLength,
		device:       cfg.Device,
		writeProtect: cfg.WriteProtect,
		saveP00:      strings.EqualFold(cfg.SaveFormat, SaveFormatP00),
		memory:       NewMemory(),
	}
	s.memory.setDevice(s.device)
	s.status = base.StatusIntro

	return s, nil
}

//
func validDevice(dev int) bool {
	return 4 <= dev && dev <= 30
}

// --- dos.Drive ----------------------------------------------------------------

// Driver returns the active driver.
func (s *Session) Driver() base.Driver {
	return s.active
}

// IsWriteProtected is true when configured, when the front end says so, or
// when the active driver cannot write at all.
func (s *Session) IsWriteProtected() bool {
	return s.writeProtect || s.notifier.IsWriteProtected() ||
		s.active.Kind() == base.KindT64
}

//
func (s *Session) Device() int {
	return s.device
}

//
func (s *Session) SetDevice(dev int) {
	if !validDevice(dev) {
		return
	}
	if dev != s.device {
		log.WithFields(log.Fields{"old": s.device, "new": dev}).Info(
			"device number changed")
	}
	s.device = dev
	s.memory.setDevice(dev)
}

// WriteMemory writes data to drive memory. Writing the listen address
// changes the device number.
func (s *Session) WriteMemory(addr uint16, data []byte) {
	s.memory.Write(addr, data)
	if covers(addr, len(data), AddrListen) {
		if dev := s.memory.device(); validDevice(dev) {
			s.SetDevice(dev)
		} else {
			s.memory.setDevice(s.device)
		}
	}
}

// Memory gives access to drive memory.
func (s *Session) Memory() *Memory {
	return s.memory
}

// ChangeDir moves around the native file system, or enters or leaves an
// image. "_" goes up, leaving an image if one is mounted, "/" and "//" go to
// the root.
func (s *Session) ChangeDir(name string) base.Status {

	switch name {
	case "_", "..", "<-":
		if s.imageMounted() {
			s.SwitchDriver(s.native, "")
			return base.StatusOK
		}
		if !s.native.Parent() {
			return base.StatusFileNotFound
		}
		s.notifier.DirectoryChanged(s.native.Path())
		return base.StatusOK

	case "/", "//":
		s.toNative()
		s.native.ToRoot()
		s.notifier.DirectoryChanged(s.native.Path())
		return base.StatusOK
	}

	if s.imageMounted() {
		return base.StatusFileNotFound
	}

	path, info, ok := s.native.Resolve(name)
	if !ok {
		return base.StatusFileNotFound
	}

	if info.IsDir() {
		if !s.native.Mount(path) {
			return base.StatusFileNotFound
		}
		s.notifier.DirectoryChanged(path)
		return base.StatusOK
	}

	if f := s.probe(path, info); f != nil && f.Kind() != base.KindP00 {
		if s.SwitchDriver(f, path) {
			return base.StatusOK
		}
		return base.StatusDriveNotReady
	}

	return base.StatusFileNotFound
}

// Reset returns the drive to its power-up state. Any image is unmounted,
// an open stream is discarded, and the status reports the DOS version.
func (s *Session) Reset() {
	s.active.Close()
	s.toNative()
	s.state = proto.OpenNothing
	s.listing = nil
	s.lastName = ""
	s.status = base.StatusIntro
	s.notifier.DeviceReset()
	log.WithField("device", s.device).Debug("session reset")
}

// --- driver switching ---------------------------------------------------------

/*
	SwitchDriver makes d the active driver. The previous driver is always
	unmounted first. Switching to the native driver does not mount anything,
	for any other driver path is mounted. If that fails, the native driver
	becomes active and false is returned.
*/
func (s *Session) SwitchDriver(d base.Driver, path string) bool {

	prev := s.active
	prev.Unmount()
	s.active = s.native

	if prev != s.native {
		s.notifier.ImageUnmounted()
		log.WithField("kind", prev.Kind()).Debug("image unmounted")
	}

	if d == s.native {
		return true
	}

	if !d.Mount(path) {
		log.WithFields(log.Fields{
			"kind": d.Kind(), "path": path}).Warn("cannot mount image")
		return false
	}

	s.active = d
	s.notifier.ImageMounted(path, d.Kind())
	log.WithFields(log.Fields{
		"kind": d.Kind(), "path": path}).Info("image mounted")
	return true
}

//
func (s *Session) toNative() {
	if s.imageMounted() {
		s.SwitchDriver(s.native, "")
	}
}

//
func (s *Session) imageMounted() bool {
	return s.active != s.native
}

// probe finds the format driver that accepts the file at path.
func (s *Session) probe(path string, info os.FileInfo) base.Driver {
	for _, f := range s.formats {
		if f.Accepts(path, info) {
			return f
		}
	}
	return nil
}

// --- channel operations -------------------------------------------------------

/*
	Open opens channel with cmd and returns the byte to send back. On the
	command channel that is a status code: an empty cmd reports and clears the
	latched status, anything else is run as a DOS command whose result becomes
	the latched status. On all other channels it is the resulting open state.
*/
func (s *Session) Open(channel byte, cmd []byte) byte {

	switch channel {

	case proto.ChannelCommand:
		if len(cmd) == 0 || (len(cmd) == 1 && cmd[0] == proto.Terminator) {
			st := s.status
			s.status = base.StatusOK
			return byte(st)
		}
		s.status = s.registry.Execute(cmd, s)
		return byte(s.status)

	case proto.ChannelLoad:
		return byte(s.OpenFile(string(cmd)))

	case proto.ChannelSave:
		return byte(s.openSave(string(cmd)))
	}

	log.WithField("channel", channel).Debug("open on unsupported channel")
	s.state = proto.OpenNothing
	return byte(s.state)
}

//
func (s *Session) openSave(cmd string) proto.OpenState {

	s.discard()

	name := strings.TrimRight(cmd, "\r")
	replace := strings.HasPrefix(name, "@")
	if replace {
		name = name[1:]
	}
	name = base.StripMode(base.StripDrive(name))

	switch {
	case name == "":
		return s.fail(base.StatusSyntaxNoFile)
	case s.IsWriteProtected():
		return s.fail(base.StatusWriteProtectOn)
	}

	if s.saveP00 && !s.imageMounted() {
		if !s.SwitchDriver(s.p00, s.native.Path()) {
			return s.fail(base.StatusDriveNotReady)
		}
	}

	if st := s.active.OpenWrite(name, replace); st != base.StatusOK {
		if s.active == s.p00 {
			s.SwitchDriver(s.native, "")
		}
		return s.fail(st)
	}

	s.lastName = name
	if replace {
		s.state = proto.OpenSaveReplace
	} else {
		s.state = proto.OpenSave
	}

	s.notifier.FileSaving(name)
	log.WithFields(log.Fields{
		"name": name, "replace": replace, "kind": s.active.Kind(),
	}).Info("saving")
	return s.state
}

// fail latches st and leaves the session with nothing open.
func (s *Session) fail(st base.Status) proto.OpenState {
	s.status = st
	s.state = proto.OpenNothing
	return s.state
}

// discard drops whatever is open without reporting it.
func (s *Session) discard() {
	if s.state != proto.OpenNothing {
		log.WithField("state", s.state).Debug("discarding open stream")
		s.active.Close()
	}
	s.state = proto.OpenNothing
	s.listing = nil
}

/*
	Close closes the open stream and returns the reply tag with its payload:
	the file name for a closed load or save, the device number otherwise.
	Closing when nothing is open has no side effects.
*/
func (s *Session) Close() (byte, []byte) {

	state := s.state
	s.state = proto.OpenNothing
	s.listing = nil

	if state == proto.OpenNothing {
		return proto.RepClosed, []byte{byte(s.device)}
	}

	remain := s.active.Close()

	if state == proto.OpenFile || state.IsSave() {
		s.notifier.FileClosed(s.lastName)
	}
	if !remain {
		s.SwitchDriver(s.native, "")
	}

	switch {
	case state == proto.OpenFile:
		return proto.RepLoaded, []byte(s.lastName)
	case state.IsSave():
		return proto.RepSaved, []byte(s.lastName)
	}
	return proto.RepClosed, []byte{byte(s.device)}
}

// SetReadLength sets the size of read replies, including their framing.
func (s *Session) SetReadLength(n int) {
	if n <= proto.ReadOverhead {
		log.WithField("length", n).Warn("read length too small, ignored")
		return
	}
	s.readLength = n
}

// ReadChunk reads the next chunk of the open file. final is set when the
// chunk ends the file.
func (s *Session) ReadChunk() (final bool, data []byte) {

	if s.state != proto.OpenFile {
		return true, nil
	}

	limit := s.readLength - proto.ReadOverhead
	data = make([]byte, 0, limit)
	for len(data) < limit && !s.active.IsEOF() {
		data = append(data, s.active.Getc())
	}

	s.notifier.BytesRead(len(data))
	return s.active.IsEOF(), data
}

// WriteChunk writes data to the file opened for saving. If the driver runs
// out of space, the status becomes DISK FULL and the rest is dropped.
func (s *Session) WriteChunk(data []byte) {

	if !s.state.IsSave() {
		log.WithField("bytes", len(data)).Debug("no save open, data dropped")
		return
	}

	n := 0
	for _, b := range data {
		if !s.active.Putc(b) {
			s.status = base.StatusDiskFull
			log.WithField("name", s.lastName).Warn("disk full")
			break
		}
		n++
	}
	s.notifier.BytesWritten(n)
}

// NextLine returns the next line of the open listing, false when there are
// no more.
func (s *Session) NextLine() (base.ListingLine, bool) {
	if !s.state.IsListing() {
		return base.ListingLine{}, false
	}
	return s.listing.Next()
}

// FileSize is the size of the open file in bytes.
func (s *Session) FileSize() int {
	if s.state != proto.OpenFile {
		return 0
	}
	return s.active.FileSize()
}

// ErrorString renders the status message for code. This counts as
// reporting the latched status, which is cleared.
func (s *Session) ErrorString(code byte) string {
	s.status = base.StatusOK
	return base.Status(code).Message()
}

// --- introspection ------------------------------------------------------------

//
func (s *Session) State() proto.OpenState {
	return s.state
}

// Status returns the latched status without clearing it.
func (s *Session) Status() base.Status {
	return s.status
}

//
func (s *Session) LastName() string {
	return s.lastName
}

//
func (s *Session) Native() *native.Driver {
	return s.native
}
