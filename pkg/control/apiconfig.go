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
	"strconv"
)

//
const ConfigWriteProtect = "writeprotect"

//
func (a *api) getConfig(w http.ResponseWriter, req *http.Request) {

	item := getArg(req, "item")
	var conf interface{}

	switch item {
	case ConfigWriteProtect:
		conf = a.daemon.IsWriteProtected()
	default:
		handleError(fmt.Errorf("unknown config item: %s", item),
			http.StatusUnprocessableEntity, w)
		return
	}

	if wantsJSON(req) {
		sendJSONReply(map[string]interface{}{item: conf}, http.StatusOK, w)
		return
	}

	sendReply([]byte(fmt.Sprintf("%v", conf)), http.StatusOK, w)
}

//
func (a *api) setConfig(w http.ResponseWriter, req *http.Request) {

	item := getArg(req, "item")

	switch item {
	case ConfigWriteProtect:
		on, err := strconv.ParseBool(getArg(req, "value"))
		if handleError(err, http.StatusUnprocessableEntity, w) {
			return
		}
		a.daemon.SetWriteProtected(on)
		sendReply([]byte(fmt.Sprintf("%s set to %v", item, on)), http.StatusOK, w)

	default:
		handleError(fmt.Errorf("unknown config item: %s", item),
			http.StatusUnprocessableEntity, w)
	}
}
