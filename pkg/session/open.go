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

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/iecdrive/pkg/proto"
	"github.com/xelalexv/iecdrive/pkg/vfs/base"
	"github.com/xelalexv/iecdrive/pkg/vfs/native"
)

/*
	OpenFile opens path on the load channel. Besides file names, path may be
	one of these:

		_		reset the drive, and go to the parent directory if no image
				was mounted; lists the directory
		__		go to the root directory and list it
		$		list the directory, "$0:PATTERN" lists matching entries only
		NAME$	go into directory or image NAME, then list it
		!!		show media information

	On the native driver, a name is tried as a sub-directory first, then as
	a mountable image, and finally as a plain file. With an image mounted,
	the name is opened inside of the image. If opening in an image fails, the
	session falls back to the native driver and reports a file error.
*/
func (s *Session) OpenFile(path string) proto.OpenState {

	s.discard()
	name := strings.TrimRight(path, "\r")

	switch {
	case name == "_":
		mounted := s.imageMounted()
		s.Reset()
		if !mounted && s.native.Parent() {
			s.notifier.DirectoryChanged(s.native.Path())
		}
		return s.openListing(false, "")

	case name == "__":
		s.toNative()
		s.native.ToRoot()
		s.notifier.DirectoryChanged(s.native.Path())
		return s.openListing(false, "")

	case name == "!!":
		return s.openListing(true, "")

	case strings.HasPrefix(name, "$"):
		return s.openListing(false, listingFilter(name))

	case strings.HasSuffix(name, "$"):
		if dir := base.StripDrive(strings.TrimSuffix(name, "$")); dir != "" {
			if st := s.ChangeDir(dir); st != base.StatusOK {
				return s.fail(st)
			}
		}
		return s.openListing(false, "")
	}

	name = base.StripMode(base.StripDrive(name))
	if name == "" {
		return s.fail(base.StatusSyntaxNoFile)
	}

	if s.imageMounted() {
		if !s.active.OpenRead(name) {
			return s.imageFailed(base.StatusFileNotFound)
		}
		return s.opened(name)
	}

	return s.openNative(name)
}

//
func (s *Session) openNative(name string) proto.OpenState {

	path, info, ok := s.native.Resolve(name)
	if !ok {
		return s.fail(base.StatusFileNotFound)
	}

	if info.IsDir() {
		if !s.native.Mount(path) {
			return s.fail(base.StatusFileNotFound)
		}
		s.notifier.DirectoryChanged(path)
		return s.openListing(false, "")
	}

	if f := s.probe(path, info); f != nil {
		if !s.SwitchDriver(f, path) {
			return s.imageFailed(base.StatusDriveNotReady)
		}
		if f.Kind() != base.KindP00 {
			return s.openListing(false, "")
		}
		if !f.OpenRead(name) {
			return s.imageFailed(base.StatusFileNotFound)
		}
		return s.opened(f.Name())
	}

	if !s.native.OpenPath(path) {
		return s.fail(base.StatusFileNotFound)
	}
	return s.opened(native.DisplayName(filepath.Base(path)))
}

//
func (s *Session) opened(name string) proto.OpenState {
	s.state = proto.OpenFile
	s.lastName = name
	size := s.active.FileSize()
	s.notifier.FileLoading(name, size)
	log.WithFields(log.Fields{
		"name": name, "size": size, "kind": s.active.Kind()}).Info("loading")
	return s.state
}

// imageFailed falls back to the native driver after a format driver could
// not mount or open.
func (s *Session) imageFailed(st base.Status) proto.OpenState {
	s.SwitchDriver(s.native, "")
	s.status = st
	s.state = proto.OpenFileError
	return s.state
}

// openListing renders directory or media info of the active driver into a
// fresh listing.
func (s *Session) openListing(info bool, filter string) proto.OpenState {

	l := &base.Listing{}
	var ok bool

	if info {
		ok = s.active.MediaInfo(l)
	} else {
		if filter != "" && !s.imageMounted() {
			s.native.SetFilter(filter)
		}
		ok = s.active.ListDirectory(l)
	}

	if !ok {
		if s.imageMounted() {
			return s.imageFailed(base.StatusReadData)
		}
		return s.fail(base.StatusDirError)
	}

	s.listing = l
	if info {
		s.state = proto.OpenInfo
	} else {
		s.state = proto.OpenDirectory
	}
	log.WithFields(log.Fields{
		"state": s.state, "lines": l.Len(), "kind": s.active.Kind(),
	}).Debug("listing")
	return s.state
}

// listingFilter extracts the pattern from "$[drive][:pattern]".
func listingFilter(name string) string {
	name = strings.TrimPrefix(name, "$")
	name = strings.TrimLeft(name, "0123456789")
	return strings.TrimPrefix(name, ":")
}

// --- control ------------------------------------------------------------------

// Mount mounts the image or enters the directory at path, which is either
// absolute or relative to the root directory. Any open stream is discarded.
func (s *Session) Mount(path string) error {

	s.discard()

	if !filepath.IsAbs(path) {
		path = filepath.Join(s.native.Root(), path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot mount: %v", err)
	}

	s.toNative()

	if info.IsDir() {
		if !s.native.Mount(path) {
			return fmt.Errorf("'%s' is not inside of root directory", path)
		}
		s.notifier.DirectoryChanged(path)
		return nil
	}

	f := s.probe(path, info)
	if f == nil {
		return fmt.Errorf("'%s' is not a mountable image", path)
	}
	if !s.native.Mount(filepath.Dir(path)) {
		return fmt.Errorf("'%s' is not inside of root directory", path)
	}
	s.notifier.DirectoryChanged(s.native.Path())

	if !s.SwitchDriver(f, path) {
		return fmt.Errorf("cannot mount '%s' as %s", path, f.Kind())
	}
	return nil
}

// Unmount leaves a mounted image. Any open stream is discarded.
func (s *Session) Unmount() {
	s.discard()
	s.toNative()
}

// Listing renders a fresh directory listing, or media info, of the active
// driver. The open stream is not affected.
func (s *Session) Listing(info bool) (*base.Listing, error) {
	l := &base.Listing{}
	var ok bool
	if info {
		ok = s.active.MediaInfo(l)
	} else {
		ok = s.active.ListDirectory(l)
	}
	if !ok {
		return nil, fmt.Errorf("cannot list %s driver", s.active.Kind())
	}
	return l, nil
}

// Info is a snapshot of the session.
type Info struct {
	Device         int    `json:"device"`
	Driver         string `json:"driver"`
	Image          string `json:"image,omitempty"`
	Directory      string `json:"directory"`
	State          string `json:"state"`
	Status         string `json:"status"`
	WriteProtected bool   `json:"writeProtected"`
}

//
func (s *Session) Info() *Info {
	ret := &Info{
		Device:         s.device,
		Driver:         s.active.Kind().String(),
		Directory:      s.native.RelPath(),
		State:          s.state.String(),
		Status:         s.status.String(),
		WriteProtected: s.IsWriteProtected(),
	}
	if s.imageMounted() {
		ret.Image = s.active.Path()
	}
	return ret
}
