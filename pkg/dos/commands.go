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

package dos

import (
	"strconv"
	"strings"

	"github.com/xelalexv/iecdrive/pkg/vfs/base"
)

// DefaultCommands returns the drive's command set in lookup order. Commands
// sharing a first letter are listed so that the more specific one is tried
// first.
func DefaultCommands() []*Command {
	return []*Command{
		{Name: "INITIALIZE", Abbrev: "I", Process: initialize},
		{Name: "VALIDATE", Abbrev: "V", Process: notImplemented},
		{Name: "NEW", Abbrev: "N", Delimiter: ':', Process: newDisk},
		{Name: "SCRATCH", Abbrev: "S", Delimiter: ':', Process: scratch},
		{Name: "RENAME", Abbrev: "R", Delimiter: ':', Process: rename},
		{Name: "COPY", Abbrev: "C", Delimiter: ':', Process: copyFiles},
		{Name: "CHDIR", Abbrev: "CD", Delimiter: ':', Process: chdir},
		{Name: "MAKEDIR", Abbrev: "MD", Delimiter: ':', Process: notImplemented},
		{Name: "RMDIR", Abbrev: "RD", Delimiter: ':', Process: notImplemented},
		{Name: "POSITION", Abbrev: "P", Process: notImplemented},
		{Name: "BLOCK-READ", Abbrev: "B-R", Process: notImplemented},
		{Name: "BLOCK-WRITE", Abbrev: "B-W", Process: notImplemented},
		{Name: "BUFFER-POINTER", Abbrev: "B-P", Process: notImplemented},
		{Name: "BLOCK-ALLOCATE", Abbrev: "B-A", Process: notImplemented},
		{Name: "BLOCK-FREE", Abbrev: "B-F", Process: notImplemented},
		{Name: "BLOCK-EXECUTE", Abbrev: "B-E", Process: notImplemented},
		{Name: "MEMORY-READ", Abbrev: "M-R", Binary: true, Process: notImplemented},
		{Name: "MEMORY-WRITE", Abbrev: "M-W", Binary: true, Process: memoryWrite},
		{Name: "MEMORY-EXECUTE", Abbrev: "M-E", Binary: true, Process: notImplemented},
		{Name: "USER0", Abbrev: "U0", Delimiter: '>', Process: setDevice},
		{Name: "USER1", Abbrev: "U1", Process: notImplemented},
		{Name: "USER2", Abbrev: "U2", Process: notImplemented},
		{Name: "USER3", Abbrev: "U3", Process: notImplemented},
		{Name: "UI+", Process: notImplemented},
		{Name: "UI-", Process: notImplemented},
		{Name: "USERI", Abbrev: "UI", Process: reset},
		{Name: "USERJ", Abbrev: "UJ", Process: reset},
	}
}

// DefaultRegistry creates a registry with the drive's command set.
func DefaultRegistry() *Registry {
	return NewRegistry(DefaultCommands()...)
}

//
func notImplemented(params []byte, d Drive) base.Status {
	return base.StatusNotImplemented
}

//
func initialize(params []byte, d Drive) base.Status {
	return base.StatusOK
}

//
func reset(params []byte, d Drive) base.Status {
	d.Reset()
	return base.StatusIntro
}

// NEW:label[,id]
func newDisk(params []byte, d Drive) base.Status {

	label, id := string(params), ""
	if ix := strings.IndexByte(label, ','); ix > -1 {
		label, id = label[:ix], label[ix+1:]
	}

	if label == "" {
		return base.StatusSyntaxNoFile
	}
	if d.IsWriteProtected() {
		return base.StatusWriteProtectOn
	}
	return d.Driver().NewDisk(label, id)
}

// SCRATCH:pattern
func scratch(params []byte, d Drive) base.Status {

	pattern := base.StripDrive(string(params))
	if pattern == "" {
		return base.StatusSyntaxNoFile
	}
	if d.IsWriteProtected() {
		return base.StatusWriteProtectOn
	}

	d.Driver().Remove(pattern)
	return base.StatusFilesScratched
}

// RENAME:new=old
func rename(params []byte, d Drive) base.Status {

	newName, oldName, ok := splitAssignment(params)
	if !ok {
		return base.StatusSyntaxGeneral
	}
	if newName == "" || oldName == "" {
		return base.StatusSyntaxNoFile
	}
	if base.IsIllegalFilename(newName) || base.IsIllegalFilename(oldName) {
		return base.StatusSyntaxFilename
	}

	drv := d.Driver()
	if !drv.FileExists(oldName) {
		return base.StatusFileNotFound
	}
	if drv.FileExists(newName) {
		return base.StatusFileExists
	}
	if d.IsWriteProtected() {
		return base.StatusWriteProtectOn
	}

	if !drv.Rename(oldName, newName) {
		return base.StatusWriteVerify
	}
	return base.StatusOK
}

// COPY:dest=src[,src...]
func copyFiles(params []byte, d Drive) base.Status {

	dest, src, ok := splitAssignment(params)
	if !ok {
		return base.StatusSyntaxGeneral
	}

	var srcs []string
	for _, s := range strings.Split(src, ",") {
		if s = base.StripDrive(s); s != "" {
			srcs = append(srcs, s)
		}
	}

	if dest == "" || len(srcs) == 0 {
		return base.StatusSyntaxNoFile
	}
	if base.IsIllegalFilename(dest) {
		return base.StatusSyntaxFilename
	}
	for _, s := range srcs {
		if base.IsIllegalFilename(s) {
			return base.StatusSyntaxFilename
		}
	}

	drv := d.Driver()
	for _, s := range srcs {
		if !drv.FileExists(s) {
			return base.StatusFileNotFound
		}
	}
	if drv.FileExists(dest) {
		return base.StatusFileExists
	}
	if d.IsWriteProtected() {
		return base.StatusWriteProtectOn
	}

	return drv.Copy(dest, srcs)
}

// splitAssignment splits "left=right", removing drive prefixes.
func splitAssignment(params []byte) (string, string, bool) {
	s := string(params)
	ix := strings.IndexByte(s, '=')
	if ix < 0 {
		return "", "", false
	}
	return base.StripDrive(s[:ix]), base.StripDrive(s[ix+1:]), true
}

// U0>dev, device number in decimal
func setDevice(params []byte, d Drive) base.Status {
	dev, err := strconv.Atoi(strings.TrimSpace(string(params)))
	if err != nil || dev < 4 || dev > 30 {
		return base.StatusSyntaxGeneral
	}
	d.SetDevice(dev)
	return base.StatusOK
}

/*
	M-W address lo, address hi, length, data

	All parameters are binary, a ':' right after the command is the low
	address byte. If fewer data bytes than announced arrive, the rest is
	filled with zeros. Surplus bytes are dropped.
*/
func memoryWrite(params []byte, d Drive) base.Status {

	if len(params) < 3 {
		return base.StatusSyntaxGeneral
	}

	addr := uint16(params[0]) | uint16(params[1])<<8
	data := make([]byte, int(params[2]))
	copy(data, params[3:])

	d.WriteMemory(addr, data)
	return base.StatusOK
}

// CD:name
func chdir(params []byte, d Drive) base.Status {
	name := base.StripDrive(string(params))
	if name == "" {
		return base.StatusSyntaxNoFile
	}
	return d.ChangeDir(name)
}
