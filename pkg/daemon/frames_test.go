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

package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelalexv/iecdrive/pkg/proto"
)

//
func frames(f *framer) []string {
	var ret []string
	for fr := f.next(); fr != nil; fr = f.next() {
		ret = append(ret, string(fr))
	}
	return ret
}

func TestFramerKeepsPartialFrames(t *testing.T) {

	f := &framer{accepted: true}

	f.push([]byte("O\x05\x00GA"))
	assert.Empty(t, frames(f))
	assert.Equal(t, 5, f.pending())

	f.push([]byte("ME"))
	assert.Equal(t, []string{"O\x05\x00GAME"}, frames(f))
	assert.Equal(t, 0, f.pending())

	f.push([]byte("N"))
	assert.Empty(t, frames(f))
	f.push([]byte("\x40RE"))
	assert.Equal(t, []string{"N\x40", "R"}, frames(f))
	f.push([]byte("\x01"))
	assert.Equal(t, []string{"E\x01"}, frames(f))
}

func TestFramerMixedStream(t *testing.T) {

	f := &framer{accepted: true}
	f.push([]byte("!AADAPTER\rW\x03abcLCSDAboot\r"))

	assert.Equal(t, []string{
		"!AADAPTER\r", "W\x03abc", "L", "C", "S", "DAboot\r"}, frames(f))
	assert.Zero(t, f.dropped)
}

func TestFramerResynchronizes(t *testing.T) {

	f := &framer{accepted: true}
	f.push([]byte("xyz\x00R"))

	assert.Equal(t, []string{"R"}, frames(f))
	assert.Equal(t, 4, f.dropped)
}

func TestFramerWaitsForHandshake(t *testing.T) {

	f := &framer{}
	f.push([]byte("RLC"))
	assert.Empty(t, frames(f))
	assert.Equal(t, 3, f.dropped)

	f.push([]byte("conn"))
	assert.Empty(t, frames(f))
	assert.Equal(t, 4, f.pending())

	f.push([]byte("ect_arduino:1\rR"))
	got := frames(f)
	require.Len(t, got, 1)
	assert.True(t, isHandshake([]byte(got[0])))

	// R is still not recognized, since nobody accepted the connection
	assert.Equal(t, 4, f.dropped)

	f.accepted = true
	f.push([]byte("R"))
	assert.Equal(t, []string{"R"}, frames(f))
}

func TestFramerHandshakeAfterAccept(t *testing.T) {
	f := &framer{accepted: true}
	f.push(proto.Hello(proto.Version))
	got := frames(f)
	require.Len(t, got, 1)
	assert.Equal(t, string(proto.Hello(proto.Version)), got[0])
}

func TestFramerDropsRunawayText(t *testing.T) {
	f := &framer{accepted: true}
	long := make([]byte, maxTextFrame+1)
	for ix := range long {
		long[ix] = 'x'
	}
	f.push(append([]byte("D"), long...))
	assert.Empty(t, frames(f))
	assert.Equal(t, 0, f.pending())
}

func TestCommandArgs(t *testing.T) {

	c, err := newCommand([]byte("O\x03\x0fI\r"))
	require.NoError(t, err)
	assert.Equal(t, "OPEN", c.name())
	assert.Equal(t, byte(3), c.arg(0))
	assert.Equal(t, []byte("\x0fI\r"), c.payload())
	assert.Equal(t, byte(0), c.arg(10))

	c, err = newCommand([]byte("DAhello\r"))
	require.NoError(t, err)
	assert.Equal(t, []byte("Ahello"), c.payload())

	_, err = newCommand([]byte("?"))
	assert.Error(t, err)
}
