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

package adapter_test

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelalexv/iecdrive/pkg/adapter"
	"github.com/xelalexv/iecdrive/pkg/daemon"
	"github.com/xelalexv/iecdrive/pkg/iec"
	"github.com/xelalexv/iecdrive/pkg/iec/iectest"
	"github.com/xelalexv/iecdrive/pkg/proto"
	"github.com/xelalexv/iecdrive/pkg/session"
)

//
type rig struct {
	t       *testing.T
	root    string
	sim     *iectest.Sim
	bus     *iec.Bus
	adapter *adapter.Adapter
	daemon  *daemon.Daemon
}

// newRig wires a simulated host through bus and adapter to a daemon serving
// a fresh directory.
func newRig(t *testing.T) *rig {

	root := t.TempDir()
	for name, data := range map[string]string{
		"game1.prg": "\x01\x08GAME ONE, A LITTLE LONGER THAN ONE CHUNK " +
			"SO THAT THE READ NEEDS SEVERAL FRAMES TO COMPLETE",
		"game2.prg": "\x01\x08GAME TWO",
		"demo.prg":  "\x01\x08DEMO",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(data), 0644))
	}

	near, far := net.Pipe()
	dialed := false

	d, err := daemon.NewDaemon(daemon.Config{
		Session:   session.Config{Root: root},
		Reconnect: 20 * time.Millisecond,
		Dial: func() (io.ReadWriteCloser, error) {
			if dialed {
				return nil, fmt.Errorf("adapter gone")
			}
			dialed = true
			return far, nil
		},
	})
	require.NoError(t, err)

	done := make(chan error)
	go func() { done <- d.Serve() }()
	t.Cleanup(func() {
		d.Stop()
		near.Close()
		assert.NoError(t, <-done)
	})

	sim := iectest.NewSim()
	bus := iec.NewBus(sim.Device(), sim.Device(), 30)
	a := adapter.New(bus, near)
	require.NoError(t, a.Connect())
	require.NoError(t, a.SetReadLength(16))
	assert.Equal(t, 8, bus.Device())

	return &rig{t: t, root: root, sim: sim, bus: bus, adapter: a, daemon: d}
}

// run lets the host program fn talk to the drive until it is done.
func (r *rig) run(fn func(h *iectest.Host) error) error {
	run := r.sim.Start(fn)
	dev := r.sim.Device()
	for !run.Done() {
		require.NoError(r.t, r.adapter.Tick())
		dev.Delay(10 * time.Microsecond)
	}
	return run.Err()
}

//
func (r *rig) load(dev int, name string) ([]byte, error) {
	var data []byte
	err := r.run(func(h *iectest.Host) error {
		var e error
		data, e = h.Load(dev, name)
		return e
	})
	return data, err
}

//
func (r *rig) status(dev int) string {
	var st string
	require.NoError(r.t, r.run(func(h *iectest.Host) error {
		var e error
		st, e = h.Status(dev)
		return e
	}))
	return st
}

// basicLines decodes a listing program and checks its line links.
func basicLines(t *testing.T, prg []byte) []string {

	require.True(t, len(prg) > 4)
	addr := binary.LittleEndian.Uint16(prg)
	require.Equal(t, uint16(0x0401), addr)

	var ret []string
	off := 2
	for {
		next := binary.LittleEndian.Uint16(prg[off:])
		if next == 0 {
			assert.Equal(t, len(prg), off+2)
			return ret
		}
		end := bytes.IndexByte(prg[off+4:], 0)
		require.True(t, end > -1)
		ret = append(ret, string(prg[off+4:off+4+end]))
		addr += uint16(4 + end + 1)
		require.Equal(t, addr, next)
		off += 4 + end + 1
	}
}

func TestStatusAfterConnect(t *testing.T) {
	r := newRig(t)
	assert.Equal(t, "73,CBM DOS V2.6 1541,00,00\r", r.status(8))
	assert.Equal(t, "00,OK,00,00\r", r.status(8))
}

func TestLoadDirectory(t *testing.T) {

	r := newRig(t)
	prg, err := r.load(8, "$")
	require.NoError(t, err)

	lines := basicLines(t, prg)
	require.Len(t, lines, 5)
	assert.Contains(t, lines[1], `"DEMO"`)
	assert.Contains(t, lines[2], `"GAME1"`)
	assert.Equal(t, "BLOCKS FREE.", lines[4])
}

func TestLoadFile(t *testing.T) {

	r := newRig(t)
	want, err := os.ReadFile(filepath.Join(r.root, "game1.prg"))
	require.NoError(t, err)

	data, err := r.load(8, "GAME1")
	require.NoError(t, err)
	assert.Equal(t, want, data)

	st, err := r.daemon.Status()
	require.NoError(t, err)
	assert.Equal(t, int64(len(want)), st.Activity.BytesRead)
	assert.Equal(t, 1, st.Activity.Loads)
	assert.Equal(t, proto.OpenNothing, r.adapter.State())
}

func TestLoadMissingFile(t *testing.T) {

	r := newRig(t)
	_, err := r.load(8, "NOPE")
	assert.ErrorIs(t, err, iectest.ErrFileNotFound)
	assert.Equal(t, "62,FILE NOT FOUND,00,00\r", r.status(8))
	assert.Equal(t, "00,OK,00,00\r", r.status(8))
}

func TestCommandThenStatus(t *testing.T) {

	r := newRig(t)
	var first, second string

	require.NoError(t, r.run(func(h *iectest.Host) error {
		if _, err := h.Status(8); err != nil {
			return err
		}
		if err := h.Command(8, "S:GAME*"); err != nil {
			return err
		}
		var err error
		if first, err = h.Status(8); err != nil {
			return err
		}
		second, err = h.Status(8)
		return err
	}))

	assert.Equal(t, "01,FILES SCRATCHED,00,00\r", first)
	assert.Equal(t, "00,OK,00,00\r", second)
	assert.Equal(t, proto.OpenNothing, r.adapter.State())

	assert.NoFileExists(t, filepath.Join(r.root, "game2.prg"))
}

func TestSaveAndLoad(t *testing.T) {

	r := newRig(t)
	prg := []byte("\x01\x08" + string(bytes.Repeat([]byte("SAVED!"), 30)))

	require.NoError(t, r.run(func(h *iectest.Host) error {
		return h.Save(8, "NEW", prg)
	}))

	data, err := os.ReadFile(filepath.Join(r.root, "new.prg"))
	require.NoError(t, err)
	assert.Equal(t, prg, data)

	loaded, err := r.load(8, "NEW")
	require.NoError(t, err)
	assert.Equal(t, prg, loaded)

	// saving again without replace fails
	require.NoError(t, r.run(func(h *iectest.Host) error {
		return h.Save(8, "NEW", []byte("\x01\x08X"))
	}))
	assert.Equal(t, "63,FILE EXISTS,00,00\r", r.status(8))
}

func TestScratch(t *testing.T) {

	r := newRig(t)
	require.NoError(t, r.run(func(h *iectest.Host) error {
		return h.Command(8, "S:GAME*")
	}))
	assert.Equal(t, "01,FILES SCRATCHED,00,00\r", r.status(8))

	assert.NoFileExists(t, filepath.Join(r.root, "game1.prg"))
	assert.NoFileExists(t, filepath.Join(r.root, "game2.prg"))
	assert.FileExists(t, filepath.Join(r.root, "demo.prg"))
}

func TestChangeDevice(t *testing.T) {

	r := newRig(t)
	require.NoError(t, r.run(func(h *iectest.Host) error {
		if err := h.Command(8, "U0>9"); err != nil {
			return err
		}
		return h.Close(8, proto.ChannelCommand)
	}))
	assert.Equal(t, 9, r.bus.Device())

	assert.Equal(t, "00,OK,00,00\r", r.status(9))
	_, err := r.load(8, "GAME1")
	assert.Error(t, err)

	data, err := r.load(9, "GAME2")
	require.NoError(t, err)
	assert.Equal(t, "\x01\x08GAME TWO", string(data))
}

func TestBusResetReconnects(t *testing.T) {

	r := newRig(t)
	require.NoError(t, r.run(func(h *iectest.Host) error {
		return h.Command(8, "S:DEMO")
	}))

	require.NoError(t, r.run(func(h *iectest.Host) error {
		h.Set(iec.LineReset, true)
		h.Delay(time.Millisecond)
		h.Set(iec.LineReset, false)
		h.Delay(time.Millisecond)
		return nil
	}))

	// the reset drops the latched status
	assert.Equal(t, "73,CBM DOS V2.6 1541,00,00\r", r.status(8))

	st, err := r.daemon.Status()
	require.NoError(t, err)
	assert.Equal(t, 2, st.Activity.Resets)
}
