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

	"github.com/xelalexv/iecdrive/pkg/proto"
	"github.com/xelalexv/iecdrive/pkg/util"
)

//
type Version struct {
	Daemon   string `json:"daemon"`
	Protocol int    `json:"protocol"`
}

//
func (v *Version) String() string {
	return fmt.Sprintf("daemon: %s\nadapter protocol: %d", v.Daemon, v.Protocol)
}

//
func (a *api) version(w http.ResponseWriter, req *http.Request) {

	ver := &Version{Daemon: util.IECDriveVersion, Protocol: proto.Version}

	if wantsJSON(req) {
		sendJSONReply(ver, http.StatusOK, w)
	} else {
		sendReply([]byte(ver.String()), http.StatusOK, w)
	}
}
