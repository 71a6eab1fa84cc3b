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

package daemon

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/iecdrive/pkg/vfs/base"
)

// Activity is a snapshot of what the drive has been doing.
type Activity struct {
	Directory    string    `json:"directory"`
	Image        string    `json:"image,omitempty"`
	ImageKind    string    `json:"imageKind,omitempty"`
	File         string    `json:"file,omitempty"`
	FileSize     int       `json:"fileSize,omitempty"`
	Saving       bool      `json:"saving"`
	BytesRead    int64     `json:"bytesRead"`
	BytesWritten int64     `json:"bytesWritten"`
	Loads        int       `json:"loads"`
	Saves        int       `json:"saves"`
	Resets       int       `json:"resets"`
	WriteProtect bool      `json:"writeProtect"`
	Changed      time.Time `json:"changed"`
}

/*
	Monitor receives the session's notifications. It logs them and keeps
	an activity record for the control API. Notifications arrive on the
	serve loop, while the record is read from API handlers, hence the lock.
*/
type Monitor struct {
	activity Activity
	mutex    sync.Mutex
}

//
func NewMonitor() *Monitor {
	return &Monitor{}
}

//
func (m *Monitor) update(fn func(a *Activity)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	fn(&m.activity)
	m.activity.Changed = time.Now()
}

// Activity returns a copy of the current activity record.
func (m *Monitor) Activity() Activity {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.activity
}

// SetWriteProtected switches write protection for all media on or off.
func (m *Monitor) SetWriteProtected(on bool) {
	log.WithField("on", on).Info("write protection")
	m.update(func(a *Activity) { a.WriteProtect = on })
}

//
func (m *Monitor) IsWriteProtected() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.activity.WriteProtect
}

//
func (m *Monitor) DirectoryChanged(path string) {
	log.WithField("path", path).Info("directory changed")
	m.update(func(a *Activity) { a.Directory = path })
}

//
func (m *Monitor) ImageMounted(path string, kind base.Kind) {
	log.WithFields(log.Fields{"path": path, "kind": kind}).Info("image mounted")
	m.update(func(a *Activity) {
		a.Image = path
		a.ImageKind = kind.String()
	})
}

//
func (m *Monitor) ImageUnmounted() {
	log.Info("image unmounted")
	m.update(func(a *Activity) {
		a.Image = ""
		a.ImageKind = ""
	})
}

//
func (m *Monitor) FileLoading(name string, size int) {
	m.update(func(a *Activity) {
		a.File = name
		a.FileSize = size
		a.Saving = false
		a.Loads++
	})
}

//
func (m *Monitor) FileSaving(name string) {
	m.update(func(a *Activity) {
		a.File = name
		a.FileSize = 0
		a.Saving = true
		a.Saves++
	})
}

//
func (m *Monitor) BytesRead(n int) {
	m.update(func(a *Activity) { a.BytesRead += int64(n) })
}

//
func (m *Monitor) BytesWritten(n int) {
	m.update(func(a *Activity) { a.BytesWritten += int64(n) })
}

//
func (m *Monitor) FileClosed(name string) {
	log.WithField("name", name).Debug("file closed")
	m.update(func(a *Activity) {
		a.File = ""
		a.FileSize = 0
		a.Saving = false
	})
}

//
func (m *Monitor) DeviceReset() {
	log.Info("device reset")
	m.update(func(a *Activity) {
		a.File = ""
		a.Saving = false
		a.Resets++
	})
}
