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

package native

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelalexv/iecdrive/pkg/vfs/base"
)

func newTestDriver(t *testing.T) (*Driver, string) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "game1.prg"), []byte{0x01, 0x08, 0xaa}, 0644))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "game2.prg"), []byte{0x01, 0x08}, 0644))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "demo.prg"), []byte{0x01}, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "tools"), 0755))
	d, err := New(dir, true)
	require.NoError(t, err)
	return d, dir
}

func readAll(d base.Driver) []byte {
	var ret []byte
	for !d.IsEOF() {
		ret = append(ret, d.Getc())
	}
	return ret
}

func TestOpenRead(t *testing.T) {
	d, _ := newTestDriver(t)

	require.True(t, d.OpenRead("GAME1"))
	assert.Equal(t, 3, d.FileSize())
	assert.Equal(t, []byte{0x01, 0x08, 0xaa}, readAll(d))
	assert.True(t, d.Close())

	require.True(t, d.OpenRead("DEM?"))
	assert.Equal(t, []byte{0x01}, readAll(d))
	d.Close()

	assert.False(t, d.OpenRead("NOPE"))
	assert.False(t, d.OpenRead("TOOLS"))
}

func TestWriteAndReplace(t *testing.T) {
	d, dir := newTestDriver(t)

	require.Equal(t, base.StatusOK, d.OpenWrite("NEWFILE", false))
	for _, b := range []byte("hello") {
		require.True(t, d.Putc(b))
	}
	d.Close()

	data, err := os.ReadFile(filepath.Join(dir, "newfile.prg"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	assert.Equal(t, base.StatusFileExists, d.OpenWrite("NEWFILE", false))
	require.Equal(t, base.StatusOK, d.OpenWrite("NEWFILE", true))
	d.Putc('x')
	d.Close()

	data, err = os.ReadFile(filepath.Join(dir, "newfile.prg"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	assert.Equal(t, base.StatusSyntaxNoFile, d.OpenWrite("", false))
	assert.Equal(t, base.StatusSyntaxFilename, d.OpenWrite("A*", false))
}

func TestRemoveRenameCopy(t *testing.T) {
	d, dir := newTestDriver(t)

	assert.Equal(t, 2, d.Remove("GAME*"))
	assert.False(t, d.FileExists("GAME1"))
	assert.True(t, d.FileExists("DEMO"))

	require.True(t, d.Rename("DEMO", "intro"))
	_, err := os.Stat(filepath.Join(dir, "intro.prg"))
	assert.NoError(t, err)

	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "part2.prg"), []byte{0x02}, 0644))
	assert.Equal(t, base.StatusOK,
		d.Copy("joined", []string{"INTRO", "PART2"}))
	data, err := os.ReadFile(filepath.Join(dir, "joined.prg"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, data)

	assert.Equal(t, base.StatusFileNotFound, d.Copy("x", []string{"MISSING"}))
	assert.Equal(t, base.StatusFileExists, d.Copy("joined", []string{"INTRO"}))
}

func TestChangeDirSandbox(t *testing.T) {
	d, dir := newTestDriver(t)

	assert.False(t, d.Parent())
	require.True(t, d.ChangeDir("TOOLS"))
	assert.Equal(t, filepath.Join(dir, "tools"), d.Path())
	assert.Equal(t, "/tools", d.RelPath())
	require.True(t, d.ChangeDir("_"))
	assert.Equal(t, dir, d.Path())

	assert.False(t, d.Mount(filepath.Dir(dir)))
	assert.False(t, d.ChangeDir("GAME1"))
}

func TestNewNamesStayInDirectory(t *testing.T) {
	d, dir := newTestDriver(t)
	outside := filepath.Dir(dir)

	assert.Equal(t, base.StatusSyntaxFilename, d.OpenWrite("../../X", false))
	assert.Equal(t, base.StatusSyntaxFilename, d.OpenWrite("..", false))
	assert.False(t, d.IsOpen())

	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "tools", "util.prg"), []byte{0x01}, 0644))
	require.True(t, d.ChangeDir("TOOLS"))

	assert.Equal(t, base.StatusSyntaxFilename, d.OpenWrite("../EVIL", false))
	assert.False(t, d.Rename("UTIL", "../X"))
	assert.True(t, d.FileExists("UTIL"))
	assert.Equal(t, base.StatusSyntaxFilename,
		d.Copy("../COPY", []string{"UTIL"}))
	assert.Equal(t, base.StatusSyntaxFilename,
		d.Copy(`..\COPY`, []string{"UTIL"}))

	for _, p := range []string{
		filepath.Join(dir, "evil.prg"),
		filepath.Join(dir, "x.prg"),
		filepath.Join(dir, "copy.prg"),
		filepath.Join(outside, "x.prg"),
	} {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), p)
	}
}

func TestListDirectory(t *testing.T) {
	d, _ := newTestDriver(t)

	l := &base.Listing{}
	require.True(t, d.ListDirectory(l))
	lines := l.Lines()
	require.Len(t, lines, 6)
	assert.Equal(t, byte(base.ReverseOn), lines[0].Text[0])
	assert.Contains(t, string(lines[1].Text), `"TOOLS"`)
	assert.Contains(t, string(lines[1].Text), "DIR")
	assert.Contains(t, string(lines[2].Text), `"DEMO"`)
	assert.Equal(t, uint16(1), lines[2].Number)
	assert.Equal(t, "BLOCKS FREE.", string(lines[5].Text))

	d.SetFilter("GAME*")
	l = &base.Listing{}
	require.True(t, d.ListDirectory(l))
	assert.Len(t, l.Lines(), 4)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "GAME", DisplayName("game.prg"))
	assert.Equal(t, "DISK.D64", DisplayName("disk.d64"))
	assert.Equal(t, "ABCDEFGHIJKLMNOP", DisplayName("abcdefghijklmnopqrs"))
	assert.Equal(t, "game.prg", HostName("GAME"))
	assert.Equal(t, "D64", FileType("x.d64"))
	assert.Equal(t, "PRG", FileType("x"))
}
