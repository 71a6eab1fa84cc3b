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

package base

import (
	"os"
)

// Kind identifies one of the fixed set of file system drivers.
type Kind int

//
const (
	KindNative Kind = iota
	KindD64
	KindT64
	KindM2I
	KindP00
)

//
func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindD64:
		return "d64"
	case KindT64:
		return "t64"
	case KindM2I:
		return "m2i"
	case KindP00:
		return "p00"
	}
	return "unknown"
}

/*
	Driver is the capability set every virtual file system offers to the
	session. Only one file can be open at a time. Drivers never hand Go errors
	to the session, failures are reported as false or as a drive Status.
*/
type Driver interface {
	//
	Kind() Kind

	// Accepts says whether this driver is able to mount the host file at path
	Accepts(path string, info os.FileInfo) bool

	// Mount mounts the host file or directory at path
	Mount(path string) bool

	//
	Unmount()

	// Path returns the host path of what is currently mounted
	Path() string

	// Name returns the disk name as shown in listings
	Name() string

	// OpenRead opens the first file matching name for reading
	OpenRead(name string) bool

	// OpenWrite creates file name, replacing an existing one if asked to
	OpenWrite(name string, replace bool) Status

	// Getc returns the next byte of the open file, IsEOF tells whether that
	// was the last one
	Getc() byte

	//
	Putc(b byte) bool

	//
	IsEOF() bool

	// Close closes the open file. It returns false if the driver cannot stay
	// mounted afterwards.
	Close() bool

	// FileSize returns the size in bytes of the open file
	FileSize() int

	// ListDirectory renders the directory listing into l
	ListDirectory(l *Listing) bool

	// MediaInfo renders information about the mounted media into l
	MediaInfo(l *Listing) bool

	//
	Rename(oldName, newName string) bool

	// Remove removes all files matching pattern and returns their number
	Remove(pattern string) int

	// Copy creates dest from the concatenation of srcs
	Copy(dest string, srcs []string) Status

	//
	FileExists(name string) bool

	// NewDisk formats the mounted media
	NewDisk(label, id string) Status
}
