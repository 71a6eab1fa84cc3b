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
	"strings"

	"github.com/xelalexv/iecdrive/pkg/daemon"
)

//
func (a *api) status(w http.ResponseWriter, req *http.Request) {

	st, err := a.daemon.Status()
	if handleError(err, http.StatusServiceUnavailable, w) {
		return
	}

	if wantsJSON(req) {
		sendJSONReply(st, http.StatusOK, w)
		return
	}

	var sb strings.Builder
	WriteStatus(&sb, st)
	sendReply([]byte(sb.String()), http.StatusOK, w)
}

// WriteStatus renders st in human readable form.
func WriteStatus(w io.Writer, st *daemon.Status) {

	if st.Connected {
		fmt.Fprintf(w, "adapter:      connected via %s (%s)\n", st.Link, st.Connection)
	} else {
		fmt.Fprintf(w, "adapter:      not connected\n")
	}

	if s := st.Session; s != nil {
		fmt.Fprintf(w, "device:       %d\n", s.Device)
		fmt.Fprintf(w, "directory:    %s\n", s.Directory)
		if s.Image != "" {
			fmt.Fprintf(w, "image:        %s (%s)\n", s.Image, s.Driver)
		}
		fmt.Fprintf(w, "state:        %s\n", s.State)
		fmt.Fprintf(w, "status:       %s\n", s.Status)
		fmt.Fprintf(w, "protected:    %v\n", s.WriteProtected)
	}

	act := st.Activity
	if act.File != "" {
		op := "loading"
		if act.Saving {
			op = "saving"
		}
		fmt.Fprintf(w, "%-14s%s\n", op+":", act.File)
	}
	fmt.Fprintf(w, "loads/saves:  %d/%d\n", act.Loads, act.Saves)
	fmt.Fprintf(w, "bytes r/w:    %d/%d\n", act.BytesRead, act.BytesWritten)
	fmt.Fprintf(w, "resets:       %d\n", act.Resets)
}
