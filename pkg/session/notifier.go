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
	"github.com/xelalexv/iecdrive/pkg/vfs/base"
)

//go:generate mockgen -destination mock_notifier_test.go -package session -write_package_comment=false github.com/xelalexv/iecdrive/pkg/session Notifier

// Notifier is told about everything a front end may want to show. Calls are
// made on the goroutine driving the session and must not block.
type Notifier interface {
	DirectoryChanged(path string)
	ImageMounted(path string, kind base.Kind)
	ImageUnmounted()
	FileLoading(name string, size int)
	FileSaving(name string)
	BytesRead(n int)
	BytesWritten(n int)
	FileClosed(name string)
	DeviceReset()
	// IsWriteProtected lets the front end switch write protection on
	IsWriteProtected() bool
}

// NopNotifier ignores all notifications.
type NopNotifier struct{}

func (NopNotifier) DirectoryChanged(path string)             {}
func (NopNotifier) ImageMounted(path string, kind base.Kind) {}
func (NopNotifier) ImageUnmounted()                          {}
func (NopNotifier) FileLoading(name string, size int)        {}
func (NopNotifier) FileSaving(name string)                   {}
func (NopNotifier) BytesRead(n int)                          {}
func (NopNotifier) BytesWritten(n int)                       {}
func (NopNotifier) FileClosed(name string)                   {}
func (NopNotifier) DeviceReset()                             {}
func (NopNotifier) IsWriteProtected() bool                   { return false }
