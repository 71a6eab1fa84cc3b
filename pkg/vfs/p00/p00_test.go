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

package p00

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelalexv/iecdrive/pkg/vfs/base"
)

func readAll(d *Driver) []byte {
	var ret []byte
	for !d.IsEOF() {
		ret = append(ret, d.Getc())
	}
	return ret
}

func TestHeader(t *testing.T) {
	hd := &Header{Name: "MY GAME"}
	raw := hd.Bytes()
	require.Len(t, raw, 26)
	assert.Equal(t, []byte("C64File\x00MY GAME"), raw[:15])

	got, ok := ReadHeader(bytes.NewReader(raw))
	require.True(t, ok)
	assert.Equal(t, hd, got)

	raw[0] = 'X'
	_, ok = ReadHeader(bytes.NewReader(raw))
	assert.False(t, ok)

	_, ok = ReadHeader(bytes.NewReader([]byte(Magic)))
	assert.False(t, ok)
}

func TestWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	d := New()

	require.True(t, d.Mount(dir))
	require.Equal(t, base.StatusOK, d.OpenWrite("MY GAME", false))
	for _, b := range []byte{0x01, 0x08, 0x60} {
		require.True(t, d.Putc(b))
	}
	assert.Equal(t, 3, d.FileSize())
	assert.False(t, d.Close())

	path := filepath.Join(dir, "my_game.p00")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(HeaderSize+3), info.Size())
	assert.True(t, d.Accepts(path, info))

	require.True(t, d.Mount(path))
	assert.Equal(t, "MY GAME", d.Name())
	assert.True(t, d.FileExists("MY*"))
	require.True(t, d.OpenRead("*"))
	assert.Equal(t, 3, d.FileSize())
	assert.Equal(t, []byte{0x01, 0x08, 0x60}, readAll(d))
	assert.False(t, d.Close())

	d.Unmount()
	require.True(t, d.Mount(dir))
	assert.Equal(t, base.StatusFileExists, d.OpenWrite("MY GAME", false))
}

func TestRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.p00")
	require.NoError(t, os.WriteFile(path, make([]byte, 40), 0644))
	d := New()
	assert.False(t, d.Mount(path))
	assert.False(t, d.IsReady())
	assert.False(t, d.OpenRead("*"))
}

func TestIsContainer(t *testing.T) {
	assert.True(t, IsContainer("x.p00"))
	assert.True(t, IsContainer("X.S01"))
	assert.False(t, IsContainer("x.prg"))
	assert.False(t, IsContainer("x.pxx"))
	assert.Equal(t, "my_game.p00", HostName("MY GAME"))
	assert.Equal(t, "file.p00", HostName("***"))
}
