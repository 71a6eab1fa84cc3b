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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelalexv/iecdrive/pkg/vfs/base"
)

const sampleIndex = "MY COLLECTION   \r\n" +
	"P:GAME1.PRG:GAME1           \r\n" +
	"P:GAME2.PRG:GAME2\r\n" +
	"D:OLD.PRG:OLD STUFF\r\n" +
	"-:GONE.PRG:GONE\r\n" +
	"P:DEMO.PRG:DEMO\r\n"

func TestParseIndex(t *testing.T) {
	ix, err := ParseIndex([]byte(sampleIndex))
	require.NoError(t, err)
	assert.Equal(t, "MY COLLECTION", ix.Title)
	require.Len(t, ix.Entries, 5)
	assert.Equal(t, &Entry{Type: 'P', Host: "GAME1.PRG", Name: "GAME1"},
		ix.Entries[0])
	assert.Equal(t, byte('-'), ix.Entries[3].Type)
}

func TestParseIndexStrict(t *testing.T) {
	for _, bad := range []string{
		"",
		"TITLE THAT IS WAY TOO LONG\nP:A.PRG:A\n",
		"T\nP:A.PRG\n",
		"T\nP:A.PRG:A:B\n",
		"T\nX:A.PRG:A\n",
		"T\nPP:A.PRG:A\n",
		"T\nP:THIRTEENCHARS:A\n",
		"T\nP::A\n",
		"T\nP:A.PRG:SEVENTEEN CHARS!!\n",
		"T\nP:A.PRG:A\nbroken line\n",
	} {
		_, err := ParseIndex([]byte(bad))
		assert.Error(t, err, "%q", bad)
	}
}

func TestIndexRoundTrip(t *testing.T) {
	ix, err := ParseIndex([]byte(sampleIndex))
	require.NoError(t, err)

	again, err := ParseIndex(ix.Bytes())
	require.NoError(t, err)
	assert.Equal(t, ix, again)

	assert.True(t, strings.HasPrefix(string(ix.Bytes()), "MY COLLECTION   \r\n"))
}

func TestHostName(t *testing.T) {
	ix := &Index{Entries: []*Entry{{Type: 'P', Host: "MYGAME.PRG", Name: "X"}}}
	none := func(string) bool { return false }
	assert.Equal(t, "SPACEINV.PRG", ix.HostName("space invaders", none))
	assert.Equal(t, "MYGAME1.PRG", ix.HostName("my game", none))
	assert.Equal(t, "FILE.PRG", ix.HostName("!!", none))
	assert.Equal(t, "ABCDEFG1.PRG", ix.HostName("abcdefgh", func(h string) bool {
		return h == "ABCDEFGH.PRG"
	}))
}

func mountSample(t *testing.T) (*Driver, string) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "coll.m2i"), []byte(sampleIndex), 0644))
	for _, h := range []string{"GAME1.PRG", "GAME2.PRG", "OLD.PRG", "DEMO.PRG"} {
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, h), []byte(h), 0644))
	}
	d := New()
	require.True(t, d.Mount(filepath.Join(dir, "coll.m2i")))
	return d, dir
}

func readAll(d *Driver) []byte {
	var ret []byte
	for !d.IsEOF() {
		ret = append(ret, d.Getc())
	}
	return ret
}

func TestReadEntries(t *testing.T) {
	d, _ := mountSample(t)
	assert.Equal(t, "MY COLLECTION", d.Name())

	require.True(t, d.OpenRead("GAME2"))
	assert.Equal(t, "GAME2.PRG", string(readAll(d)))
	d.Close()

	assert.False(t, d.OpenRead("GONE"))

	l := &base.Listing{}
	require.True(t, d.ListDirectory(l))
	require.Equal(t, 6, l.Len())
	assert.Contains(t, string(l.Lines()[3].Text), "DEL")
}

func TestMountFailsOnBadIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.m2i")
	require.NoError(t, os.WriteFile(path, []byte("T\nP:A\n"), 0644))
	d := New()
	assert.False(t, d.Mount(path))
	assert.False(t, d.IsReady())
	assert.False(t, d.OpenRead("A"))
}

func TestWriteScratchRename(t *testing.T) {
	d, dir := mountSample(t)

	require.Equal(t, base.StatusOK, d.OpenWrite("NEW ONE", false))
	for _, b := range []byte("data") {
		require.True(t, d.Putc(b))
	}
	d.Close()

	data, err := os.ReadFile(filepath.Join(dir, "NEWONE.PRG"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
	assert.Equal(t, base.StatusFileExists, d.OpenWrite("NEW ONE", false))

	assert.Equal(t, 2, d.Remove("GAME*"))
	_, err = os.Stat(filepath.Join(dir, "GAME1.PRG"))
	assert.True(t, os.IsNotExist(err))

	require.True(t, d.Rename("DEMO", "INTRO"))

	reread, err := os.ReadFile(filepath.Join(dir, "coll.m2i"))
	require.NoError(t, err)
	ix, err := ParseIndex(reread)
	require.NoError(t, err)
	assert.Equal(t, byte(TypeErased), ix.Entries[0].Type)
	assert.Equal(t, "INTRO", ix.Entries[4].Name)
	assert.Equal(t, "NEW ONE", ix.Entries[5].Name)

	assert.Equal(t, base.StatusOK, d.Copy("BOTH", []string{"INTRO", "NEW ONE"}))
	require.True(t, d.OpenRead("BOTH"))
	assert.Equal(t, "DEMO.PRGdata", string(readAll(d)))
}
