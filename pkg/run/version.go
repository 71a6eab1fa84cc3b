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
	"io"
	"strings"

	"github.com/xelalexv/iecdrive/pkg/util"
)

//
func NewVersion() *Version {
	v := &Version{}
	v.Runner = *NewRunner(
		"version", "get client & daemon version info", "", "", "", v.Run)
	v.AddBaseSettings()
	return v
}

//
type Version struct {
	Runner
}

//
func (v *Version) Run() error {

	if err := v.ParseSettings(); err != nil {
		return err
	}

	resp, err := v.apiCall("GET", "/version", false, nil)
	if err != nil {
		v.PrintVersion("daemon:     not reachable\n")
		return nil
	}
	defer resp.Close()

	buf := new(strings.Builder)
	if _, err = io.Copy(buf, resp); err != nil {
		return err
	}

	v.PrintVersion(buf.String())
	return nil
}

//
func (v *Version) PrintVersion(remote string) {
	fmt.Fprintf(v.out, `
  ___ _____ ____ ____       _
 |_ _| ____/ ___|  _ \ _ __(_)_   _____
  | ||  _|| |   | | | | '__| \ \ / / _ \
  | || |__| |___| |_| | |  | |\ V /  __/
 |___|_____\____|____/|_|  |_| \_/ \___|

 a 1541 on the serial bus, files on the host

iecdrive:   %s
`, util.IECDriveVersion)
	if remote != "" {
		fmt.Fprintf(v.out, "%s", remote)
	}
	fmt.Fprintln(v.out)
}
