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

package base

import (
	"fmt"
)

// Status is a drive status code as reported on the command channel. The
// numeric value is the code the drive shows, e.g. 62 for FILE NOT FOUND.
type Status byte

//
const (
	StatusOK               Status = 0
	StatusFilesScratched   Status = 1
	StatusReadHeader       Status = 20
	StatusReadNoSync       Status = 21
	StatusReadData         Status = 22
	StatusReadChecksum     Status = 23
	StatusReadByteDecoding Status = 24
	StatusWriteVerify      Status = 25
	StatusWriteProtectOn   Status = 26
	StatusReadHeaderCheck  Status = 27
	StatusWriteLongData    Status = 28
	StatusDiskIDMismatch   Status = 29
	StatusSyntaxGeneral    Status = 30
	StatusSyntaxInvalid    Status = 31
	StatusSyntaxLong       Status = 32
	StatusSyntaxFilename   Status = 33
	StatusSyntaxNoFile     Status = 34
	StatusSyntaxDOS        Status = 39
	StatusRecordNotPresent Status = 50
	StatusRecordOverflow   Status = 51
	StatusFileTooLarge     Status = 52
	StatusWriteFileOpen    Status = 60
	StatusFileNotOpen      Status = 61
	StatusFileNotFound     Status = 62
	StatusFileExists       Status = 63
	StatusFileTypeMismatch Status = 64
	StatusNoBlock          Status = 65
	StatusIllegalTrackSec  Status = 66
	StatusIllegalSystemTS  Status = 67
	StatusNoChannel        Status = 70
	StatusDirError         Status = 71
	StatusDiskFull         Status = 72
	StatusIntro            Status = 73
	StatusDriveNotReady    Status = 74
	StatusSerialComm       Status = 97
	StatusNotImplemented   Status = 98
)

var statusText = map[Status]string{
	StatusOK:               "OK",
	StatusFilesScratched:   "FILES SCRATCHED",
	StatusReadHeader:       "READ ERROR",
	StatusReadNoSync:       "READ ERROR",
	StatusReadData:         "READ ERROR",
	StatusReadChecksum:     "READ ERROR",
	StatusReadByteDecoding: "READ ERROR",
	StatusWriteVerify:      "WRITE ERROR",
	StatusWriteProtectOn:   "WRITE PROTECT ON",
	StatusReadHeaderCheck:  "READ ERROR",
	StatusWriteLongData:    "WRITE ERROR",
	StatusDiskIDMismatch:   "DISK ID MISMATCH",
	StatusSyntaxGeneral:    "SYNTAX ERROR",
	StatusSyntaxInvalid:    "SYNTAX ERROR",
	StatusSyntaxLong:       "SYNTAX ERROR",
	StatusSyntaxFilename:   "SYNTAX ERROR",
	StatusSyntaxNoFile:     "SYNTAX ERROR",
	StatusSyntaxDOS:        "SYNTAX ERROR",
	StatusRecordNotPresent: "RECORD NOT PRESENT",
	StatusRecordOverflow:   "OVERFLOW IN RECORD",
	StatusFileTooLarge:     "FILE TOO LARGE",
	StatusWriteFileOpen:    "WRITE FILE OPEN",
	StatusFileNotOpen:      "FILE NOT OPEN",
	StatusFileNotFound:     "FILE NOT FOUND",
	StatusFileExists:       "FILE EXISTS",
	StatusFileTypeMismatch: "FILE TYPE MISMATCH",
	StatusNoBlock:          "NO BLOCK",
	StatusIllegalTrackSec:  "ILLEGAL TRACK OR SECTOR",
	StatusIllegalSystemTS:  "ILLEGAL SYSTEM T OR S",
	StatusNoChannel:        "NO CHANNEL",
	StatusDirError:         "DIR ERROR",
	StatusDiskFull:         "DISK FULL",
	StatusIntro:            "CBM DOS V2.6 1541",
	StatusDriveNotReady:    "DRIVE NOT READY",
	StatusSerialComm:       "SERIAL COMM ERROR",
	StatusNotImplemented:   "NOT IMPLEMENTED",
}

// Text returns the description part of the status message.
func (s Status) Text() string {
	if t, ok := statusText[s]; ok {
		return t
	}
	return "UNKNOWN ERROR"
}

// Known says whether s is part of the drive's status vocabulary.
func (s Status) Known() bool {
	_, ok := statusText[s]
	return ok
}

// String returns the status in the drive's "NN,TEXT" form.
func (s Status) String() string {
	if !s.Known() {
		return "99,UNKNOWN ERROR"
	}
	return fmt.Sprintf("%02d,%s", byte(s), s.Text())
}

// Message returns the full status line as read from the command channel,
// with track and sector fields zeroed.
func (s Status) Message() string {
	return s.String() + ",00,00"
}

// IsError says whether this status denotes a failure.
func (s Status) IsError() bool {
	return s != StatusOK && s != StatusFilesScratched && s != StatusIntro
}
