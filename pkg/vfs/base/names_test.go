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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {

	cases := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"GAME*", "GAME1", true},
		{"GAME*", "GAME", true},
		{"GAME*", "GAM", false},
		{"GAME*", "DEMO", false},
		{"*", "", true},
		{"*", "ANYTHING", true},
		{"G?ME", "GAME", true},
		{"G?ME", "GME", false},
		{"G?ME", "GAMES", false},
		{"?", "", false},
		{"????", "ABCD", true},
		{"ABC", "ABC", true},
		{"ABC", "ABCD", false},
		{"ABCD", "ABC", false},
		{"A*XYZ", "AB", true},
		{"", "", true},
		{"", "A", false},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, Match(c.pattern, c.name),
			"pattern '%s', name '%s'", c.pattern, c.name)
	}
}

func TestMatchQuestionMarkMatchesExactlyOne(t *testing.T) {
	names := []string{"A", "AB", "ABC", "ABCD"}
	for n := 1; n <= 4; n++ {
		pattern := ""
		for ix := 0; ix < n; ix++ {
			pattern += "?"
		}
		for _, name := range names {
			assert.Equal(t, len(name) == n, Match(pattern, name),
				"pattern '%s', name '%s'", pattern, name)
		}
	}
}

func TestMatchPaddedName(t *testing.T) {
	raw := Padded("GAME1", 16, PadByte)
	name := TrimPadded(raw)
	assert.Equal(t, "GAME1", name)
	assert.True(t, Match("GAME1", name))
	assert.True(t, Match("GAME?", name))
	assert.True(t, Match("G*", name))
	assert.False(t, Match("GAME1?", name))
}

func TestMatchFold(t *testing.T) {
	assert.True(t, MatchFold("GAME*", "game1.prg"))
	assert.False(t, MatchFold("DEMO", "game"))
}

func TestIsIllegalFilename(t *testing.T) {
	for _, n := range []string{"A=B", `A"B`, "A*", "A?", "A,B"} {
		assert.True(t, IsIllegalFilename(n), n)
	}
	for _, n := range []string{"GAME", "GAME 1", "X-Y.Z"} {
		assert.False(t, IsIllegalFilename(n), n)
	}
}

func TestStripDriveAndMode(t *testing.T) {
	assert.Equal(t, "GAME", StripDrive("0:GAME"))
	assert.Equal(t, "GAME", StripDrive(":GAME"))
	assert.Equal(t, "GAME", StripDrive("GAME"))
	assert.Equal(t, "AB:C", StripDrive("AB:C"))
	assert.Equal(t, "GAME", StripMode("GAME,P,R"))
	assert.Equal(t, "GAME", StripMode("GAME"))
}
