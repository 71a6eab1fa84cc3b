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

package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/xelalexv/iecdrive/pkg/proto"
	"github.com/xelalexv/iecdrive/pkg/vfs/base"
	"github.com/xelalexv/iecdrive/pkg/vfs/d64"
)

//
func newRoot(t *testing.T) string {
	root := t.TempDir()
	for name, data := range map[string]string{
		"game1.prg": "\x01\x08GAME ONE",
		"game2.prg": "\x01\x08GAME TWO!!",
		"demo.prg":  "\x01\x08DEMO",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(data), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(root, "tools"), 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "tools", "copy.prg"), []byte("\x01\x08C"), 0644))
	return root
}

//
func newSession(t *testing.T, cfg Config, n Notifier) *Session {
	if cfg.Root == "" {
		cfg.Root = newRoot(t)
	}
	s, err := New(cfg, n)
	require.NoError(t, err)
	return s
}

//
func addImage(t *testing.T, root, name string, files ...string) string {
	path := filepath.Join(root, name)
	require.NoError(t, d64.Format(path, "IMAGE", "42"))
	drv := d64.New()
	require.True(t, drv.Mount(path))
	for _, f := range files {
		require.Equal(t, base.StatusOK, drv.OpenWrite(f, false))
		for _, b := range []byte(f) {
			require.True(t, drv.Putc(b))
		}
		drv.Close()
	}
	drv.Unmount()
	return path
}

//
func drain(s *Session) []base.ListingLine {
	var ret []base.ListingLine
	for {
		line, ok := s.NextLine()
		if !ok {
			return ret
		}
		ret = append(ret, line)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{Root: filepath.Join(t.TempDir(), "missing")}, nil)
	assert.Error(t, err)
	_, err = New(Config{Root: t.TempDir(), Device: 31}, nil)
	assert.Error(t, err)
	_, err = New(Config{Root: t.TempDir(), SaveFormat: "zip"}, nil)
	assert.Error(t, err)

	s, err := New(Config{Root: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDevice, s.Device())
	assert.Equal(t, base.StatusIntro, s.Status())
}

func TestDirectoryListing(t *testing.T) {

	s := newSession(t, Config{}, nil)

	assert.Equal(t, byte(proto.OpenDirectory), s.Open(proto.ChannelLoad, []byte("$")))

	lines := drain(s)
	require.Len(t, lines, 5)
	assert.Equal(t, uint16(0), lines[0].Number)
	assert.Equal(t, []byte("\x12\"IECDRIVE        \" ID 2A"), lines[0].Text)
	assert.Equal(t, `"DEMO"             PRG`, string(lines[1].Text)[3:])
	assert.Equal(t, "BLOCKS FREE.", string(lines[4].Text))

	_, ok := s.NextLine()
	assert.False(t, ok)

	tag, payload := s.Close()
	assert.Equal(t, proto.RepClosed, tag)
	assert.Equal(t, []byte{8}, payload)
}

func TestDirectoryListingFiltered(t *testing.T) {
	s := newSession(t, Config{}, nil)
	require.Equal(t, proto.OpenDirectory, s.OpenFile("$0:GAME*"))
	assert.Len(t, drain(s), 4)
}

func TestMediaInfo(t *testing.T) {
	s := newSession(t, Config{}, nil)
	require.Equal(t, proto.OpenInfo, s.OpenFile("!!"))
	lines := drain(s)
	require.NotEmpty(t, lines)
	assert.Equal(t, "NATIVE FILE SYSTEM", string(lines[1].Text))
}

func TestLoadInChunks(t *testing.T) {

	ctrl := gomock.NewController(t)
	n := NewMockNotifier(ctrl)

	s := newSession(t, Config{}, n)
	s.SetReadLength(8)

	gomock.InOrder(
		n.EXPECT().FileLoading("GAME2", 12),
		n.EXPECT().BytesRead(6),
		n.EXPECT().BytesRead(6),
		n.EXPECT().FileClosed("GAME2"),
	)

	require.Equal(t, byte(proto.OpenFile), s.Open(proto.ChannelLoad, []byte("0:GAME2,P\r")))
	assert.Equal(t, 12, s.FileSize())

	final, data := s.ReadChunk()
	assert.False(t, final)
	assert.Equal(t, []byte("\x01\x08GAME"), data)

	final, data = s.ReadChunk()
	assert.True(t, final)
	assert.Equal(t, []byte(" TWO!!"), data)

	tag, payload := s.Close()
	assert.Equal(t, proto.RepLoaded, tag)
	assert.Equal(t, "GAME2", string(payload))
}

func TestCloseIsIdempotent(t *testing.T) {

	ctrl := gomock.NewController(t)
	n := NewMockNotifier(ctrl)
	s := newSession(t, Config{}, n)

	n.EXPECT().FileLoading("DEMO", 6)
	n.EXPECT().FileClosed("DEMO").Times(1)

	require.Equal(t, proto.OpenFile, s.OpenFile("DEMO"))
	tag, _ := s.Close()
	assert.Equal(t, proto.RepLoaded, tag)

	for i := 0; i < 2; i++ {
		tag, payload := s.Close()
		assert.Equal(t, proto.RepClosed, tag)
		assert.Equal(t, []byte{8}, payload)
		assert.Equal(t, proto.OpenNothing, s.State())
	}
}

func TestLatchedStatus(t *testing.T) {

	s := newSession(t, Config{}, nil)

	// power-up message first
	assert.Equal(t, byte(base.StatusIntro), s.Open(proto.ChannelCommand, nil))
	assert.Equal(t, byte(base.StatusOK), s.Open(proto.ChannelCommand, nil))

	assert.Equal(t, byte(base.StatusSyntaxInvalid),
		s.Open(proto.ChannelCommand, []byte("XYZ\r")))
	assert.Equal(t, byte(base.StatusSyntaxInvalid), s.Open(proto.ChannelCommand, nil))
	assert.Equal(t, byte(base.StatusOK), s.Open(proto.ChannelCommand, nil))

	assert.Equal(t, proto.OpenNothing, s.OpenFile("MISSING"))
	assert.Equal(t, "62,FILE NOT FOUND,00,00", s.ErrorString(byte(s.Status())))
	assert.Equal(t, base.StatusOK, s.Status())
}

func TestStatusReadOnce(t *testing.T) {

	s := newSession(t, Config{}, nil)

	code := s.Open(proto.ChannelCommand, nil)
	assert.Equal(t, "73,CBM DOS V2.6 1541,00,00", s.ErrorString(code))
	code = s.Open(proto.ChannelCommand, nil)
	assert.Equal(t, "00,OK,00,00", s.ErrorString(code))

	s.Open(proto.ChannelCommand, []byte("R:GAME1=MISSING\r"))
	code = s.Open(proto.ChannelCommand, nil)
	assert.Equal(t, "62,FILE NOT FOUND,00,00", s.ErrorString(code))
	code = s.Open(proto.ChannelCommand, nil)
	assert.Equal(t, "00,OK,00,00", s.ErrorString(code))
	code = s.Open(proto.ChannelCommand, nil)
	assert.Equal(t, "00,OK,00,00", s.ErrorString(code))
}

func TestNamesCannotLeaveRoot(t *testing.T) {

	outer := t.TempDir()
	root := filepath.Join(outer, "served")
	require.NoError(t, os.Mkdir(root, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "game.prg"), []byte("\x01\x08"), 0644))
	s := newSession(t, Config{Root: root}, nil)

	assert.Equal(t, byte(proto.OpenNothing),
		s.Open(proto.ChannelSave, []byte("../../X")))
	assert.Equal(t, base.StatusSyntaxFilename, s.Status())
	assert.Equal(t, byte(proto.OpenNothing),
		s.Open(proto.ChannelSave, []byte("@0:../X")))

	assert.NotEqual(t, byte(base.StatusOK),
		s.Open(proto.ChannelCommand, []byte("R:../X=GAME\r")))
	assert.NotEqual(t, byte(base.StatusOK),
		s.Open(proto.ChannelCommand, []byte("C:../Y=GAME\r")))

	_, err := os.Stat(filepath.Join(root, "game.prg"))
	assert.NoError(t, err)
	for _, name := range []string{"x.prg", "X", "y.prg"} {
		_, err := os.Stat(filepath.Join(outer, name))
		assert.True(t, os.IsNotExist(err), name)
	}
}

func TestScratchThroughCommandChannel(t *testing.T) {
	s := newSession(t, Config{}, nil)
	assert.Equal(t, byte(base.StatusFilesScratched),
		s.Open(proto.ChannelCommand, []byte("S:GAME*")))
	_, err := os.Stat(filepath.Join(s.Native().Root(), "game1.prg"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(s.Native().Root(), "demo.prg"))
	assert.NoError(t, err)
}

func TestSave(t *testing.T) {

	ctrl := gomock.NewController(t)
	n := NewMockNotifier(ctrl)
	s := newSession(t, Config{}, n)

	n.EXPECT().IsWriteProtected().Return(false).AnyTimes()
	n.EXPECT().FileSaving("HELLO")
	n.EXPECT().BytesWritten(4)
	n.EXPECT().FileClosed("HELLO")

	require.Equal(t, byte(proto.OpenSave), s.Open(proto.ChannelSave, []byte("HELLO")))
	s.WriteChunk([]byte{0x01, 0x08, 0x60, 0x00})
	tag, payload := s.Close()
	assert.Equal(t, proto.RepSaved, tag)
	assert.Equal(t, "HELLO", string(payload))

	data, err := os.ReadFile(filepath.Join(s.Native().Root(), "hello.prg"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x08, 0x60, 0x00}, data)

	// existing file without replace marker
	assert.Equal(t, proto.OpenNothing, s.openSave("HELLO"))
	assert.Equal(t, base.StatusFileExists, s.Status())

	n.EXPECT().FileSaving("HELLO")
	assert.Equal(t, proto.OpenSaveReplace, s.openSave("@0:HELLO"))
}

func TestSaveWriteProtected(t *testing.T) {
	s := newSession(t, Config{WriteProtect: true}, nil)
	assert.Equal(t, byte(proto.OpenNothing), s.Open(proto.ChannelSave, []byte("X")))
	assert.Equal(t, base.StatusWriteProtectOn, s.Status())
	assert.Equal(t, byte(proto.OpenNothing), s.Open(proto.ChannelSave, []byte("")))
	assert.Equal(t, base.StatusSyntaxNoFile, s.Status())
}

func TestSaveAsContainer(t *testing.T) {

	s := newSession(t, Config{SaveFormat: SaveFormatP00}, nil)

	require.Equal(t, proto.OpenSave, s.openSave("HELLO"))
	assert.Equal(t, base.KindP00, s.Driver().Kind())
	s.WriteChunk([]byte{0x01, 0x08})
	tag, _ := s.Close()
	assert.Equal(t, proto.RepSaved, tag)
	assert.Equal(t, base.KindNative, s.Driver().Kind())

	// loads back as a single file container
	require.Equal(t, proto.OpenFile, s.OpenFile("HELLO.P00"))
	assert.Equal(t, base.KindP00, s.Driver().Kind())
	assert.Equal(t, "HELLO", s.LastName())
	final, data := s.ReadChunk()
	assert.True(t, final)
	assert.Equal(t, []byte{0x01, 0x08}, data)
	s.Close()
	assert.Equal(t, base.KindNative, s.Driver().Kind())
}

func TestImageMountAndFallback(t *testing.T) {

	ctrl := gomock.NewController(t)
	n := NewMockNotifier(ctrl)
	root := newRoot(t)
	path := addImage(t, root, "disk.d64", "ONE", "TWO")
	s := newSession(t, Config{Root: root}, n)

	n.EXPECT().ImageMounted(path, base.KindD64).Times(2)
	require.Equal(t, proto.OpenDirectory, s.OpenFile("DISK.D64"))
	lines := drain(s)
	require.Len(t, lines, 4)
	assert.Equal(t, []byte("\x12\"IMAGE           \" 42 2A"), lines[0].Text)
	s.Close()

	n.EXPECT().FileLoading("TWO", 3)
	n.EXPECT().BytesRead(3)
	n.EXPECT().FileClosed("TWO")
	require.Equal(t, proto.OpenFile, s.OpenFile("TWO"))
	_, data := s.ReadChunk()
	assert.Equal(t, "TWO", string(data))
	s.Close()
	assert.Equal(t, base.KindD64, s.Driver().Kind())

	// failing open in an image falls back to the native driver
	n.EXPECT().ImageUnmounted().Times(2)
	assert.Equal(t, proto.OpenFileError, s.OpenFile("THREE"))
	assert.Equal(t, base.KindNative, s.Driver().Kind())
	assert.Equal(t, base.StatusFileNotFound, s.Status())

	n.EXPECT().DirectoryChanged(root)
	require.NoError(t, s.Mount("disk.d64"))
	s.Unmount()
	assert.Equal(t, base.KindNative, s.Driver().Kind())
}

func TestBrokenImageFallsBack(t *testing.T) {
	root := newRoot(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.t64"),
		make([]byte, 128), 0644))
	s := newSession(t, Config{Root: root}, nil)
	assert.Equal(t, proto.OpenFileError, s.OpenFile("BAD.T64"))
	assert.Equal(t, base.StatusDriveNotReady, s.Status())
	assert.Equal(t, base.KindNative, s.Driver().Kind())
}

func TestNavigation(t *testing.T) {

	s := newSession(t, Config{}, nil)
	root := s.Native().Root()

	require.Equal(t, proto.OpenDirectory, s.OpenFile("TOOLS"))
	assert.Equal(t, filepath.Join(root, "tools"), s.Native().Path())
	assert.Len(t, drain(s), 3)
	s.Close()

	// parent resets the drive
	s.Open(proto.ChannelCommand, nil)
	require.Equal(t, proto.OpenDirectory, s.OpenFile("_"))
	assert.Equal(t, root, s.Native().Path())
	assert.Equal(t, base.StatusIntro, s.Status())
	s.Close()

	require.Equal(t, proto.OpenDirectory, s.OpenFile("TOOLS$"))
	assert.Equal(t, filepath.Join(root, "tools"), s.Native().Path())
	s.Close()

	require.Equal(t, proto.OpenDirectory, s.OpenFile("__"))
	assert.Equal(t, root, s.Native().Path())
	s.Close()

	assert.Equal(t, byte(base.StatusOK), s.Open(proto.ChannelCommand, []byte("CD:TOOLS")))
	assert.Equal(t, "/tools", s.Info().Directory)
	assert.Equal(t, byte(base.StatusOK), s.Open(proto.ChannelCommand, []byte("CD://")))
	assert.Equal(t, "/", s.Info().Directory)
	assert.Equal(t, byte(base.StatusFileNotFound), s.Open(proto.ChannelCommand, []byte("CD:_")))
}

func TestImageWriteProtection(t *testing.T) {
	s := newSession(t, Config{}, nil)
	assert.False(t, s.IsWriteProtected())

	ctrl := gomock.NewController(t)
	n := NewMockNotifier(ctrl)
	n.EXPECT().IsWriteProtected().Return(true)
	s.notifier = n
	assert.True(t, s.IsWriteProtected())
}

func TestDeviceChange(t *testing.T) {

	s := newSession(t, Config{}, nil)

	assert.Equal(t, byte(base.StatusSyntaxGeneral),
		s.Open(proto.ChannelCommand, []byte("U0>31")))
	assert.Equal(t, 8, s.Device())

	assert.Equal(t, byte(base.StatusOK), s.Open(proto.ChannelCommand, []byte("U0>10")))
	assert.Equal(t, 10, s.Device())
	assert.Equal(t, []byte{0x2a, 0x4a}, s.Memory().Read(AddrListen, 2))

	// poking the bus addresses
	assert.Equal(t, byte(base.StatusOK),
		s.Open(proto.ChannelCommand, []byte("M-W\x77\x00\x02\x29\x49")))
	assert.Equal(t, 9, s.Device())

	// out of range pokes are reverted
	s.WriteMemory(AddrListen, []byte{0x20 + 2})
	assert.Equal(t, 9, s.Device())
	assert.Equal(t, byte(0x29), s.Memory().Read(AddrListen, 1)[0])

	tag, payload := s.Close()
	assert.Equal(t, proto.RepClosed, tag)
	assert.Equal(t, []byte{9}, payload)
}

func TestMemoryWrapsAround(t *testing.T) {
	m := NewMemory()
	m.Write(0xffff, []byte{1, 2, 3})
	assert.Equal(t, []byte{1, 2, 3}, m.Read(0xffff, 3))
	assert.Equal(t, []byte{2, 3}, m.Read(0, 2))
	assert.True(t, covers(0xffff, 3, 1))
	assert.False(t, covers(0x0070, 7, AddrListen))
	assert.True(t, covers(0x0070, 8, AddrListen))
}

func TestReadWithoutOpen(t *testing.T) {
	s := newSession(t, Config{}, nil)
	final, data := s.ReadChunk()
	assert.True(t, final)
	assert.Empty(t, data)
	assert.Zero(t, s.FileSize())
	s.WriteChunk([]byte{1})
	assert.Equal(t, byte(proto.OpenNothing), s.Open(5, []byte("X")))
}
