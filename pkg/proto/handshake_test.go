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

package proto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAckEncodeParse(t *testing.T) {

	ts := time.Date(2022, 3, 14, 15, 9, 26, 0, time.UTC)
	ack := &Ack{Device: 8, Pins: Pins{ATN: 5, Clock: 4, Data: 3, Reset: 7}, Time: ts}

	enc := string(ack.Encode())
	assert.Equal(t, "OK>8|5|4|3|7|2022-03-14.15:09:26\r", enc)

	got, err := ParseAck(enc)
	require.NoError(t, err)
	assert.Equal(t, ack.Device, got.Device)
	assert.Equal(t, ack.Pins, got.Pins)
	assert.True(t, ts.Equal(got.Time))
}

func TestParseAckRejectsNak(t *testing.T) {
	_, err := ParseAck(Nak)
	assert.Error(t, err)
	_, err = ParseAck("OK>8|1|2\r")
	assert.Error(t, err)
}

func TestHello(t *testing.T) {
	h := Hello(Version)
	assert.Equal(t, "connect_arduino:1\r", string(h))
	v, err := ParseHello(string(h))
	require.NoError(t, err)
	assert.Equal(t, Version, v)

	_, err = ParseHello("connect_arduino:x\r")
	assert.Error(t, err)
}
