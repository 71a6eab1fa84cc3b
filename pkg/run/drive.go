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

package run

import (
	"fmt"
	"net/url"
)

//
func NewList() *List {

	l := &List{}
	l.Runner = *NewRunner(
		"ls [-a|--address {address}] [--info]",
		"list the current directory or mounted image",
		`
Use the ls command to get the listing the drive would show for LOAD"$",8.
With --info, information about the mounted media is shown instead.`,
		"", runnerHelpEpilogue, l.Run)

	l.AddBaseSettings()
	l.AddSetting(&l.Info, "info", "", "", false, "show media info", false)

	return l
}

//
type List struct {
	Runner
	Info bool
}

//
func (l *List) Run() error {
	if err := l.ParseSettings(); err != nil {
		return err
	}
	path := "/ls"
	if l.Info {
		path += "?info=true"
	}
	return l.apiPrint("GET", path, nil)
}

//
func NewMount() *Mount {

	m := &Mount{}
	m.Runner = *NewRunner(
		"mount [-a|--address {address}] -p|--path {path}",
		"mount an image or change directory",
		`
Use the mount command to mount a disk image, or to change into a directory.
The path is relative to the current directory of the drive, "/" goes to the
root of the served tree, "_" goes up.`,
		"", runnerHelpEpilogue, m.Run)

	m.AddBaseSettings()
	m.AddSetting(&m.Path, "path", "p", "", nil, "image or directory", true)

	return m
}

//
type Mount struct {
	Runner
	Path string
}

//
func (m *Mount) Run() error {
	if err := m.ParseSettings(); err != nil {
		return err
	}
	return m.apiPrint("PUT", "/mount?path="+url.QueryEscape(m.Path), nil)
}

//
func NewUnmount() *Unmount {
	u := &Unmount{}
	u.Runner = *NewRunner(
		"unmount [-a|--address {address}]",
		"leave the mounted image",
		"\nUse the unmount command to leave a mounted image and return to the native file system.",
		"", runnerHelpEpilogue, u.Run)
	u.AddBaseSettings()
	return u
}

//
type Unmount struct {
	Runner
}

//
func (u *Unmount) Run() error {
	if err := u.ParseSettings(); err != nil {
		return err
	}
	return u.apiPrint("PUT", "/unmount", nil)
}

//
func NewReset() *Reset {
	r := &Reset{}
	r.Runner = *NewRunner(
		"reset [-a|--address {address}]",
		"reset the drive",
		`
Use the reset command to reset the drive session. Open files are closed, the
drive returns to the root of the served tree, and the status is set to the
power-on message.`,
		"", runnerHelpEpilogue, r.Run)
	r.AddBaseSettings()
	return r
}

//
type Reset struct {
	Runner
}

//
func (r *Reset) Run() error {
	if err := r.ParseSettings(); err != nil {
		return err
	}
	return r.apiPrint("PUT", "/reset", nil)
}

//
func NewStatus() *Status {
	s := &Status{}
	s.Runner = *NewRunner(
		"status [-a|--address {address}]",
		"get daemon and drive status",
		"\nUse the status command to see connection state, mounted media and transfer activity.",
		"", runnerHelpEpilogue, s.Run)
	s.AddBaseSettings()
	return s
}

//
type Status struct {
	Runner
}

//
func (s *Status) Run() error {
	if err := s.ParseSettings(); err != nil {
		return err
	}
	return s.apiPrint("GET", "/status", nil)
}

//
func NewProtect() *Protect {

	p := &Protect{}
	p.Runner = *NewRunner(
		"protect [-a|--address {address}] [-s|--set {on|off}]",
		"get or set write protection",
		`
Use the protect command to check or change the drive's write protection.
Without --set, the current setting is shown.`,
		"", runnerHelpEpilogue, p.Run)

	p.AddBaseSettings()
	p.AddSetting(&p.Set, "set", "s", "", nil, "on or off", false)

	return p
}

//
type Protect struct {
	Runner
	Set string
}

//
func (p *Protect) Run() error {

	if err := p.ParseSettings(); err != nil {
		return err
	}

	if p.Set == "" {
		return p.apiPrint("GET", "/config/writeprotect", nil)
	}

	var on bool
	switch p.Set {
	case "on", "true", "1":
		on = true
	case "off", "false", "0":
	default:
		return fmt.Errorf("invalid write protection setting: %s", p.Set)
	}

	return p.apiPrint("PUT", fmt.Sprintf("/config/writeprotect?value=%v", on), nil)
}
