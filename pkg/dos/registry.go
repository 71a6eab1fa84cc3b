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

/*
	Package dos interprets the text commands sent to a drive's command
	channel. Commands are looked up in a registry that is filled once at
	startup and only read afterwards.
*/
package dos

import (
	"bytes"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/iecdrive/pkg/vfs/base"
)

// Drive is what commands operate on.
type Drive interface {
	// Driver returns the active file system driver
	Driver() base.Driver

	//
	IsWriteProtected() bool

	//
	Device() int

	//
	SetDevice(dev int)

	// ChangeDir changes directory, or mounts or leaves an image
	ChangeDir(name string) base.Status

	// Reset resets the drive
	Reset()

	// WriteMemory writes data into drive memory at addr
	WriteMemory(addr uint16, data []byte)
}

// Command is a registry entry. A command with a delimiter matches when the
// text before the delimiter names it, otherwise it matches by prefix. Binary
// commands get their parameters untouched, others without trailing CR.
type Command struct {
	Name      string
	Abbrev    string
	Delimiter byte
	Binary    bool
	Process   func(params []byte, d Drive) base.Status
}

// matches checks cmd against this command and returns the parameters.
func (c *Command) matches(cmd []byte) ([]byte, bool) {

	if c.Delimiter != 0 {
		ix := bytes.IndexByte(cmd, c.Delimiter)
		if ix < 1 {
			return nil, false
		}
		head := strings.ToUpper(string(cmd[:ix]))
		if c.namedBy(head) || c.namedBy(strings.TrimRight(head, "0123456789")) {
			return cmd[ix+1:], true
		}
		return nil, false
	}

	for _, n := range []string{c.Name, c.Abbrev} {
		if n != "" && len(cmd) >= len(n) &&
			strings.EqualFold(string(cmd[:len(n)]), n) {
			return cmd[len(n):], true
		}
	}
	return nil, false
}

// namedBy says whether head is the abbreviation or a prefix of the name.
func (c *Command) namedBy(head string) bool {
	return head != "" &&
		(head == c.Abbrev || strings.HasPrefix(c.Name, head))
}

// Registry holds the known commands in lookup order.
type Registry struct {
	commands []*Command
}

//
func NewRegistry(cmds ...*Command) *Registry {
	return &Registry{commands: cmds}
}

// Lookup finds the first command matching cmd and returns it with its
// parameters.
func (r *Registry) Lookup(cmd []byte) (*Command, []byte) {
	for _, c := range r.commands {
		if params, ok := c.matches(cmd); ok {
			return c, params
		}
	}
	return nil, nil
}

// Execute runs cmd against d. Unknown commands yield a syntax error.
func (r *Registry) Execute(cmd []byte, d Drive) base.Status {

	c, params := r.Lookup(cmd)
	if c == nil {
		log.WithField("command", strings.TrimRight(string(cmd), "\r")).Debug(
			"unknown DOS command")
		return base.StatusSyntaxInvalid
	}

	if !c.Binary {
		params = bytes.TrimRight(params, "\r")
	}

	st := c.Process(params, d)
	log.WithFields(log.Fields{
		"command": c.Name, "status": st.String()}).Debug("DOS command")
	return st
}
