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
	Package proto holds the wire level constants shared by adapter and daemon.
	Every frame starts with a single tag byte. Frames sent by the adapter are
	called commands, frames sent by the daemon replies.
*/
package proto

// protocol version, adapter and daemon need to agree on this
const Version = 1

// commands (adapter -> daemon)
const (
	CmdOpen       byte = 'O' // length, channel, command bytes
	CmdRead       byte = 'R' // read next chunk
	CmdReadLength byte = 'N' // 1 byte read length, then like CmdRead
	CmdWrite      byte = 'W' // length, payload
	CmdLine       byte = 'L' // next listing line
	CmdClose      byte = 'C'
	CmdSize       byte = 'S' // size of open file
	CmdError      byte = 'E' // 1 byte status code, request status string
	CmdRegister   byte = '!' // facility char, name, CR
	CmdDebug      byte = 'D' // facility char, message, CR
)

// replies (daemon -> adapter)
const (
	RepOpen      byte = '>' // 1 byte open state or status code
	RepBlock     byte = 'B' // count, payload; more to come
	RepBlockLast byte = 'E' // count, payload; final chunk
	RepLine      byte = 'L' // length, line number lo/hi, text
	RepLineLast  byte = 'l' // listing exhausted
	RepLoaded    byte = 'N' // name length, name
	RepSaved     byte = 'n' // name length, name
	RepClosed    byte = 'C' // device number
	RepSize      byte = 'S' // size hi/lo
	RepError     byte = ':' // "NN,TEXT,00,00" CR
)

// well-known channels
const (
	ChannelLoad    = 0
	ChannelSave    = 1
	ChannelCommand = 15
)

// ReadOverhead is the number of bytes each read reply spends on framing.
const ReadOverhead = 2

// DefaultReadLength is the read length used before the adapter sets one.
const DefaultReadLength = 64

// Terminator ends text frames and handshake strings.
const Terminator = '\r'

// OpenState is what an open on the load or save channel resulted in.
type OpenState byte

const (
	OpenNothing OpenState = iota
	OpenInfo
	OpenFile
	OpenDirectory
	OpenFileError
	OpenSave
	OpenSaveReplace
)

// String returns a short lower case name for logging.
func (o OpenState) String() string {
	switch o {
	case OpenNothing:
		return "nothing"
	case OpenInfo:
		return "info"
	case OpenFile:
		return "file"
	case OpenDirectory:
		return "directory"
	case OpenFileError:
		return "file error"
	case OpenSave:
		return "save"
	case OpenSaveReplace:
		return "save replace"
	}
	return "unknown"
}

// IsListing says whether the state is served by listing lines.
func (o OpenState) IsListing() bool {
	return o == OpenDirectory || o == OpenInfo
}

// IsSave says whether the state accepts written data.
func (o OpenState) IsSave() bool {
	return o == OpenSave || o == OpenSaveReplace
}
