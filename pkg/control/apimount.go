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
	"net/http"
)

//
func (a *api) mount(w http.ResponseWriter, req *http.Request) {

	path := getArg(req, "path")
	if path == "" {
		handleError(fmt.Errorf("no path given"), http.StatusUnprocessableEntity, w)
		return
	}

	if handleError(a.daemon.Mount(path), http.StatusUnprocessableEntity, w) {
		return
	}
	sendReply([]byte(fmt.Sprintf("mounted %s", path)), http.StatusOK, w)
}

//
func (a *api) unmount(w http.ResponseWriter, req *http.Request) {
	if handleError(a.daemon.Unmount(), http.StatusServiceUnavailable, w) {
		return
	}
	sendReply([]byte("unmounted"), http.StatusOK, w)
}

//
func (a *api) reset(w http.ResponseWriter, req *http.Request) {
	if handleError(a.daemon.Reset(), http.StatusServiceUnavailable, w) {
		return
	}
	sendReply([]byte("drive reset"), http.StatusOK, w)
}
