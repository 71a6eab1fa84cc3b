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
	"io"
	"strings"
)

// ReverseOn switches the screen to inverted video.
const ReverseOn = 0x12

// ListingLine is one line of a listing, presented as a BASIC line.
type ListingLine struct {
	Number uint16
	Text   []byte
}

// Listing collects the lines a driver renders for a directory or info
// request. It is drained line by line.
type Listing struct {
	lines []ListingLine
	next  int
}

//
func (l *Listing) Add(number int, text []byte) {
	l.lines = append(l.lines, ListingLine{Number: uint16(number), Text: text})
}

//
func (l *Listing) AddString(number int, text string) {
	l.Add(number, []byte(text))
}

// Next returns the next undelivered line.
func (l *Listing) Next() (ListingLine, bool) {
	if l == nil || l.next >= len(l.lines) {
		return ListingLine{}, false
	}
	l.next++
	return l.lines[l.next-1], true
}

//
func (l *Listing) Lines() []ListingLine {
	return l.lines
}

//
func (l *Listing) Len() int {
	return len(l.lines)
}

// AddHeader adds the inverted header line with disk name, id and DOS type.
func (l *Listing) AddHeader(name, id, dosType string) {
	text := make([]byte, 0, 26)
	text = append(text, ReverseOn, '"')
	text = append(text, Padded(name, MaxNameLength, ' ')...)
	text = append(text, '"', ' ')
	text = append(text, Padded(id, 2, ' ')...)
	text = append(text, ' ')
	text = append(text, Padded(dosType, 2, ' ')...)
	l.Add(0, text)
}

// AddEntry adds a file entry line. The leading blank padding depends on the
// block count, so that names line up on screen.
func (l *Listing) AddEntry(blocks int, name, typ string, closed, locked bool) {

	var sb strings.Builder

	switch {
	case blocks < 10:
		sb.WriteString("   ")
	case blocks < 100:
		sb.WriteString("  ")
	case blocks < 1000:
		sb.WriteString(" ")
	}

	sb.WriteString(`"`)
	sb.WriteString(name)
	sb.WriteString(`"`)
	if len(name) < MaxNameLength {
		sb.WriteString(strings.Repeat(" ", MaxNameLength-len(name)))
	}

	if closed {
		sb.WriteString(" ")
	} else {
		sb.WriteString("*")
	}
	sb.WriteString(typ)
	if locked {
		sb.WriteString("<")
	}

	l.AddString(blocks, sb.String())
}

// AddFooter adds the closing free blocks line.
func (l *Listing) AddFooter(free int) {
	l.AddString(free, "BLOCKS FREE.")
}

// WriteListing prints the listing the way it shows up on screen.
func WriteListing(w io.Writer, l *Listing) {
	for _, line := range l.Lines() {
		text := strings.TrimPrefix(string(line.Text), string(rune(ReverseOn)))
		fmt.Fprintf(w, "%d %s\n", line.Number, text)
	}
}

// Blocks converts a byte size into drive blocks of 254 payload bytes.
func Blocks(size int64) int {
	if size <= 0 {
		return 0
	}
	return int((size + 253) / 254)
}
