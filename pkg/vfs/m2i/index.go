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

package m2i

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/xelalexv/iecdrive/pkg/vfs/base"
)

//
const (
	TypeProgram = 'P'
	TypeDeleted = 'D'
	TypeErased  = '-'

	maxHostName = 12
)

// Entry is one line of an index file.
type Entry struct {
	Type byte
	Host string
	Name string
}

// Index is the content of an index file.
type Index struct {
	Title   string
	Entries []*Entry
}

/*
	ParseIndex parses an index. The first line is the disk title, all other
	non-empty lines have the form "T:host:name", with T one of 'P', 'D' or '-',
	a host name of at most 12 and a drive name of at most 16 characters. Any
	violation fails the whole parse.
*/
func ParseIndex(data []byte) (*Index, error) {

	scanner := bufio.NewScanner(bytes.NewReader(data))

	if !scanner.Scan() {
		return nil, fmt.Errorf("empty index")
	}

	title := strings.TrimRight(strings.TrimRight(scanner.Text(), "\r"), " ")
	if len(title) > base.MaxNameLength {
		return nil, fmt.Errorf("title too long: '%s'", title)
	}

	ret := &Index{Title: title}

	for line := 2; scanner.Scan(); line++ {

		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" {
			continue
		}

		fields := strings.Split(text, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf(
				"line %d: want 3 fields, got %d", line, len(fields))
		}

		if len(fields[0]) != 1 || !strings.Contains("PD-", fields[0]) {
			return nil, fmt.Errorf("line %d: invalid type '%s'", line, fields[0])
		}

		if fields[1] == "" || len(fields[1]) > maxHostName {
			return nil, fmt.Errorf(
				"line %d: invalid host name '%s'", line, fields[1])
		}

		name := strings.TrimRight(fields[2], " ")
		if len(name) > base.MaxNameLength {
			return nil, fmt.Errorf("line %d: name too long '%s'", line, name)
		}

		ret.Entries = append(ret.Entries,
			&Entry{Type: fields[0][0], Host: fields[1], Name: name})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ret, nil
}

// Bytes serializes the index, with the title padded to 16 characters.
func (ix *Index) Bytes() []byte {
	var buf bytes.Buffer
	buf.Write(base.Padded(ix.Title, base.MaxNameLength, ' '))
	buf.WriteString("\r\n")
	for _, e := range ix.Entries {
		fmt.Fprintf(&buf, "%c:%s:%s\r\n", e.Type, e.Host,
			base.Padded(e.Name, base.MaxNameLength, ' '))
	}
	return buf.Bytes()
}

// Find returns the first live entry whose name matches pattern.
func (ix *Index) Find(pattern string) *Entry {
	for _, e := range ix.Entries {
		if e.Type != TypeErased && base.Match(pattern, e.Name) {
			return e
		}
	}
	return nil
}

// HostName generates an unused 8.3 host file name for name.
func (ix *Index) HostName(name string, taken func(string) bool) string {

	var sb strings.Builder
	for _, c := range strings.ToUpper(name) {
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			sb.WriteRune(c)
		}
		if sb.Len() == 8 {
			break
		}
	}

	stem := sb.String()
	if stem == "" {
		stem = "FILE"
	}

	candidate := stem + ".PRG"
	for n := 1; ix.hasHost(candidate) || taken(candidate); n++ {
		suffix := fmt.Sprintf("%d", n)
		s := stem
		if len(s)+len(suffix) > 8 {
			s = s[:8-len(suffix)]
		}
		candidate = s + suffix + ".PRG"
	}
	return candidate
}

//
func (ix *Index) hasHost(host string) bool {
	for _, e := range ix.Entries {
		if strings.EqualFold(e.Host, host) {
			return true
		}
	}
	return false
}
