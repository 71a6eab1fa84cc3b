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
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

//
func NewUpload() *Upload {

	u := &Upload{}
	u.Runner = *NewRunner(
		"upload [-a|--address {address}] -i|--input {file} [-p|--path {path}] [-f|--force] [-m|--mount]",
		"upload a file into the served tree",
		`
Use the upload command to place a program or disk image into the directory
tree served by the daemon. The input can be a local file, or an http(s) URL
which the daemon fetches itself. Without --path, the file goes into the root
of the served tree under its own name.`,
		"", runnerHelpEpilogue, u.Run)

	u.AddBaseSettings()
	u.AddSetting(&u.Input, "input", "i", "", nil, "local file or URL", true)
	u.AddSetting(&u.Path, "path", "p", "", nil, "target path in served tree", false)
	u.AddSetting(&u.Force, "force", "f", "", false, "replace existing file", false)
	u.AddSetting(&u.Mount, "mount", "m", "", false, "mount after upload", false)

	return u
}

//
type Upload struct {
	Runner
	//
	Input string
	Path  string
	Force bool
	Mount bool
}

//
func (u *Upload) Run() error {

	if err := u.ParseSettings(); err != nil {
		return err
	}

	remote := strings.HasPrefix(u.Input, "http://") ||
		strings.HasPrefix(u.Input, "https://")

	path := u.Path
	if path == "" {
		if remote {
			ref, err := url.Parse(u.Input)
			if err != nil {
				return err
			}
			path = filepath.Base(ref.Path)
		} else {
			path = filepath.Base(u.Input)
		}
	}

	q := url.Values{}
	q.Set("path", path)
	if u.Force {
		q.Set("force", "true")
	}
	if u.Mount {
		q.Set("mount", "true")
	}

	var body io.Reader
	if remote {
		q.Set("ref", u.Input)
	} else {
		f, err := os.Open(u.Input)
		if err != nil {
			return fmt.Errorf("cannot open input file: %v", err)
		}
		defer f.Close()
		body = f
	}

	return u.apiPrint("PUT", "/upload?"+q.Encode(), body)
}
