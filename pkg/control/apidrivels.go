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
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/xelalexv/iecdrive/pkg/repo"
	"github.com/xelalexv/iecdrive/pkg/vfs/base"
)

//
type listingLine struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

//
func (a *api) driveList(w http.ResponseWriter, req *http.Request) {

	l, err := a.daemon.Listing(isFlagSet(req, "info"))
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	if wantsJSON(req) {
		lines := make([]listingLine, 0, l.Len())
		for _, line := range l.Lines() {
			lines = append(lines,
				listingLine{Number: int(line.Number), Text: Printable(line.Text)})
		}
		sendJSONReply(lines, http.StatusOK, w)
		return
	}

	read, write := io.Pipe()
	go func() {
		WriteListing(write, l)
		write.Close()
	}()
	sendStreamReply(read, http.StatusOK, w)
}

// dump sends a hex dump of a host file in the served tree.
func (a *api) dump(w http.ResponseWriter, req *http.Request) {

	name := getArg(req, "file")
	if name == "" {
		handleError(fmt.Errorf("no file given"), http.StatusUnprocessableEntity, w)
		return
	}

	path, err := repo.Inside(a.daemon.Root(), name)
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	f, err := os.Open(path)
	if handleError(err, http.StatusNotFound, w) {
		return
	}

	read, write := io.Pipe()
	go func() {
		defer f.Close()
		d := hex.Dumper(write)
		_, err := io.Copy(d, f)
		d.Close()
		write.CloseWithError(err)
	}()
	sendStreamReply(read, http.StatusOK, w)
}

// WriteListing renders l the way it would show on screen.
func WriteListing(w io.Writer, l *base.Listing) {
	for _, line := range l.Lines() {
		fmt.Fprintf(w, "%-4d %s\n", line.Number, Printable(line.Text))
	}
}

// Printable drops control characters such as reverse on from listing text.
func Printable(text []byte) string {
	ret := make([]byte, 0, len(text))
	for _, c := range text {
		if c >= 0x20 && c < 0x80 {
			ret = append(ret, c)
		}
	}
	return string(ret)
}
