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
	"strings"
)

// PadByte fills up names in disk image directories.
const PadByte = 0xa0

// MaxNameLength is the longest file name the drive handles.
const MaxNameLength = 16

/*
	Match compares name against pattern. A '*' in the pattern ends the
	comparison with a match, a '?' matches exactly one character. All other
	characters have to match exactly.
*/
func Match(pattern, name string) bool {
	for ix := 0; ix < len(pattern); ix++ {
		c := pattern[ix]
		if c == '*' {
			return true
		}
		if ix >= len(name) {
			return false
		}
		if c != '?' && c != name[ix] {
			return false
		}
	}
	return len(pattern) == len(name)
}

// MatchFold is Match ignoring case, for host file names.
func MatchFold(pattern, name string) bool {
	return Match(strings.ToUpper(pattern), strings.ToUpper(name))
}

// IsPattern says whether name contains wildcards.
func IsPattern(name string) bool {
	return strings.ContainsAny(name, "*?")
}

// IsIllegalFilename says whether name cannot be used as a literal file name.
func IsIllegalFilename(name string) bool {
	return strings.ContainsAny(name, "=\"*?,")
}

// TrimPadded cuts a padded directory name at the first pad byte.
func TrimPadded(raw []byte) string {
	for ix, b := range raw {
		if b == PadByte {
			return string(raw[:ix])
		}
	}
	return string(raw)
}

// Padded returns name as a fixed length field filled up with fill.
func Padded(name string, length int, fill byte) []byte {
	ret := make([]byte, length)
	n := copy(ret, name)
	for ix := n; ix < length; ix++ {
		ret[ix] = fill
	}
	return ret
}

// StripDrive removes a leading drive prefix such as "0:" or ":".
func StripDrive(name string) string {
	if ix := strings.IndexByte(name, ':'); ix > -1 && ix < 3 {
		prefix := name[:ix]
		if prefix == "" || strings.Trim(prefix, "0123456789") == "" {
			return name[ix+1:]
		}
	}
	return name
}

// StripMode removes a trailing file type and mode suffix such as ",P,R".
func StripMode(name string) string {
	if ix := strings.IndexByte(name, ','); ix > -1 {
		return name[:ix]
	}
	return name
}
