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

package native

import (
	"path/filepath"

	"github.com/shirou/gopsutil/disk"
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/iecdrive/pkg/vfs/base"
)

//
const maxBlocks = 65535

// ListDirectory lists the current directory, filtered by the pattern set
// with SetFilter. The filter is reset afterwards.
func (d *Driver) ListDirectory(l *base.Listing) bool {

	filter := d.filter
	d.filter = ""

	entries, err := d.sortedEntries()
	if err != nil {
		log.WithField("dir", d.cwd).Errorf("cannot list directory: %v", err)
		return false
	}

	l.AddHeader(d.Name(), "ID", "2A")

	for _, e := range entries {

		name := DisplayName(e.Name())
		if filter != "" && !base.MatchFold(filter, name) {
			continue
		}

		if e.IsDir() {
			if d.showDirs {
				l.AddEntry(0, name, "DIR", true, false)
			}
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		blocks := base.Blocks(info.Size())
		if blocks > maxBlocks {
			blocks = maxBlocks
		}
		l.AddEntry(blocks, name, FileType(e.Name()), true, false)
	}

	l.AddFooter(d.FreeBlocks())
	return true
}

// MediaInfo shows where the driver is serving from.
func (d *Driver) MediaInfo(l *base.Listing) bool {
	l.AddHeader(d.Name(), "ID", "2A")
	l.AddString(0, "NATIVE FILE SYSTEM")
	l.AddString(0, "ROOT: "+filepath.Base(d.root))
	l.AddString(0, "PATH: "+d.RelPath())
	l.AddFooter(d.FreeBlocks())
	return true
}

// FreeBlocks reports the free space of the host file system in drive blocks.
func (d *Driver) FreeBlocks() int {
	return FreeBlocksAt(d.cwd)
}

// FreeBlocksAt reports the free space of the host file system holding dir.
func FreeBlocksAt(dir string) int {
	usage, err := disk.Usage(dir)
	if err != nil {
		log.WithField("dir", dir).Warnf("cannot get disk usage: %v", err)
		return 0
	}
	free := usage.Free / 254
	if free > maxBlocks {
		return maxBlocks
	}
	return int(free)
}
