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

package control

import (
	"fmt"
	"io"
	"net/http"

	"github.com/xelalexv/iecdrive/pkg/repo"
)

/*
	upload stores a file in the served tree. The content is either the
	request body, or fetched from the reference given in ref. With mount
	set, the stored file is mounted right away.
*/
func (a *api) upload(w http.ResponseWriter, req *http.Request) {

	path := getArg(req, "path")
	if path == "" {
		handleError(fmt.Errorf("no path given"), http.StatusUnprocessableEntity, w)
		return
	}

	var in io.ReadCloser

	if ref := getArg(req, "ref"); ref != "" {
		var err error
		if in, err = repo.Resolve(ref, a.daemon.Root()); err != nil {
			handleError(err, http.StatusNotAcceptable, w)
			return
		}
	} else {
		in = http.MaxBytesReader(w, req.Body, repo.MaxFetchSize)
	}
	defer in.Close()

	n, err := repo.Store(a.daemon.Root(), path, in, isFlagSet(req, "force"))
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	if isFlagSet(req, "mount") {
		if handleError(a.daemon.Mount(path), http.StatusUnprocessableEntity, w) {
			return
		}
		sendReply([]byte(fmt.Sprintf(
			"stored %d bytes as %s and mounted it", n, path)), http.StatusOK, w)
		return
	}

	sendReply([]byte(fmt.Sprintf("stored %d bytes as %s", n, path)),
		http.StatusOK, w)
}
