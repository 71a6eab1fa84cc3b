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

package iectest

import (
	"errors"
	"fmt"
	"time"

	"github.com/xelalexv/iecdrive/pkg/iec"
)

//
var (
	ErrTimeout      = errors.New("bus timeout")
	ErrNotPresent   = errors.New("device not present")
	ErrFileNotFound = errors.New("file not found")
)

// host side timing
const (
	hostPoll       = 2 * time.Microsecond
	hostATNSetup   = time.Millisecond
	hostBitSetup   = 20 * time.Microsecond
	hostBitValid   = 60 * time.Microsecond
	hostTimeout    = time.Millisecond
	hostEOIWait    = 200 * time.Microsecond
	talkerTimeout  = 64 * time.Millisecond
	listenTimeout  = 64 * time.Millisecond
	hostFrameDelay = 100 * time.Microsecond
)

// Host is the computer side of a simulated bus. Its methods must only be
// called from within the host program passed to Sim.Start.
type Host struct {
	sim *Sim
	p   *party
}

// Set asserts or releases line.
func (h *Host) Set(l iec.Line, asserted bool) {
	h.sim.mu.Lock()
	h.sim.host[l] = asserted
	h.sim.mu.Unlock()
}

// Level reports whether line is asserted by anyone.
func (h *Host) Level(l iec.Line) bool {
	return h.sim.level(l)
}

//
func (h *Host) Delay(d time.Duration) {
	h.sim.delay(h.p, d)
}

//
func (h *Host) ReleaseAll() {
	for l := iec.LineATN; l <= iec.LineReset; l++ {
		h.Set(l, false)
	}
}

// WaitFor waits until line is in the asserted state given, for at most
// timeout.
func (h *Host) WaitFor(l iec.Line, asserted bool, timeout time.Duration) error {
	for waited := time.Duration(0); waited < timeout; waited += hostPoll {
		if h.Level(l) == asserted {
			return nil
		}
		h.Delay(hostPoll)
	}
	if h.Level(l) == asserted {
		return nil
	}
	return fmt.Errorf("%w: waiting for %s %s", ErrTimeout, l, assertion(asserted))
}

//
func assertion(asserted bool) string {
	if asserted {
		return "asserted"
	}
	return "released"
}

// Attention asserts ATN and checks that a device answers.
func (h *Host) Attention() error {
	h.Set(iec.LineATN, true)
	h.Set(iec.LineClock, true)
	h.Set(iec.LineData, false)
	h.Delay(hostATNSetup)
	if !h.Level(iec.LineData) {
		return ErrNotPresent
	}
	return nil
}

// Send sends one byte as talker.
func (h *Host) Send(b byte, eoi bool) error {

	// ready to send
	h.Set(iec.LineClock, false)

	if err := h.WaitFor(iec.LineData, false, listenTimeout); err != nil {
		return err
	}

	if eoi {
		if err := h.WaitFor(iec.LineData, true, hostTimeout); err != nil {
			return err
		}
		if err := h.WaitFor(iec.LineData, false, hostTimeout); err != nil {
			return err
		}
	}

	h.Delay(hostBitSetup)
	h.Set(iec.LineClock, true)

	for ix := 0; ix < 8; ix++ {
		h.Delay(hostBitSetup)
		h.Set(iec.LineData, b&1 == 0)
		h.Delay(hostBitSetup)
		h.Set(iec.LineClock, false)
		h.Delay(hostBitValid)
		h.Set(iec.LineClock, true)
		b >>= 1
	}

	h.Delay(hostBitSetup)
	h.Set(iec.LineData, false)

	if err := h.WaitFor(iec.LineData, true, hostTimeout); err != nil {
		return err
	}
	h.Delay(hostFrameDelay)
	return nil
}

// Receive receives one byte as listener.
func (h *Host) Receive() (byte, bool, error) {

	// talker ready to send
	if err := h.WaitFor(iec.LineClock, false, talkerTimeout); err != nil {
		return 0, false, err
	}

	h.Set(iec.LineData, false)

	eoi := false
	if err := h.WaitFor(iec.LineClock, true, hostEOIWait); err != nil {
		eoi = true
		h.Set(iec.LineData, true)
		h.Delay(hostBitValid)
		h.Set(iec.LineData, false)
		if err := h.WaitFor(iec.LineClock, true, hostTimeout); err != nil {
			return 0, true, err
		}
	}

	var b byte
	for ix := 0; ix < 8; ix++ {
		if err := h.WaitFor(iec.LineClock, false, hostTimeout); err != nil {
			return 0, eoi, err
		}
		if !h.Level(iec.LineData) {
			b |= 1 << ix
		}
		if err := h.WaitFor(iec.LineClock, true, hostTimeout); err != nil {
			return 0, eoi, err
		}
	}

	h.Set(iec.LineData, true)
	return b, eoi, nil
}

// --- sequences ----------------------------------------------------------------

// listen addresses dev as listener with secondary address sa, sends data
// with EOI on the last byte, and finishes with UNLISTEN.
func (h *Host) listen(dev int, sa byte, data []byte) error {

	if err := h.Attention(); err != nil {
		h.ReleaseAll()
		return err
	}
	if err := h.Send(iec.CodeListen|byte(dev), false); err != nil {
		return err
	}
	if err := h.Send(sa, false); err != nil {
		return err
	}

	if len(data) > 0 {
		h.Set(iec.LineATN, false)
		h.Delay(hostFrameDelay)
		for ix, b := range data {
			if err := h.Send(b, ix == len(data)-1); err != nil {
				return err
			}
		}
		h.Set(iec.LineATN, true)
		h.Set(iec.LineClock, true)
		h.Delay(hostATNSetup)
	}

	err := h.Send(iec.CodeUnlisten, false)
	h.Set(iec.LineATN, false)
	h.Delay(hostFrameDelay)
	h.ReleaseAll()
	h.Delay(hostFrameDelay)
	return err
}

/*
	talk addresses dev as talker with secondary address sa, and receives
	until EOI. A talker that does not start sending means file not found.
	The sequence finishes with UNTALK.
*/
func (h *Host) talk(dev int, sa byte) ([]byte, error) {

	if err := h.Attention(); err != nil {
		h.ReleaseAll()
		return nil, err
	}
	if err := h.Send(iec.CodeTalk|byte(dev), false); err != nil {
		return nil, err
	}
	if err := h.Send(sa, false); err != nil {
		return nil, err
	}

	// turn around, we're the listener now
	h.Set(iec.LineData, true)
	h.Set(iec.LineATN, false)
	h.Set(iec.LineClock, false)
	if err := h.WaitFor(iec.LineClock, true, hostTimeout); err != nil {
		return nil, err
	}

	var ret []byte
	var err error
	for {
		b, eoi, e := h.Receive()
		if e != nil {
			if len(ret) == 0 {
				err = ErrFileNotFound
			} else {
				err = e
			}
			break
		}
		ret = append(ret, b)
		if eoi {
			break
		}
	}

	h.Delay(hostFrameDelay)
	if e := h.untalk(); err == nil {
		err = e
	}
	return ret, err
}

//
func (h *Host) untalk() error {
	defer h.ReleaseAll()
	if err := h.Attention(); err != nil {
		return err
	}
	err := h.Send(iec.CodeUntalk, false)
	h.Set(iec.LineATN, false)
	h.Delay(hostFrameDelay)
	return err
}

// Open opens channel ch on dev with name.
func (h *Host) Open(dev int, ch byte, name []byte) error {
	return h.listen(dev, iec.CodeOpen|ch, name)
}

// Close closes channel ch on dev.
func (h *Host) Close(dev int, ch byte) error {
	return h.listen(dev, iec.CodeClose|ch, nil)
}

// Write sends data to channel ch of dev.
func (h *Host) Write(dev int, ch byte, data []byte) error {
	return h.listen(dev, iec.CodeData|ch, data)
}

// Read reads from channel ch of dev until EOI.
func (h *Host) Read(dev int, ch byte) ([]byte, error) {
	return h.talk(dev, iec.CodeData|ch)
}

// Load loads file name from dev, like LOAD"name",dev does.
func (h *Host) Load(dev int, name string) ([]byte, error) {
	if err := h.Open(dev, 0, []byte(name)); err != nil {
		return nil, err
	}
	data, err := h.Read(dev, 0)
	if e := h.Close(dev, 0); err == nil {
		err = e
	}
	return data, err
}

// Save saves data as name to dev, like SAVE"name",dev does.
func (h *Host) Save(dev int, name string, data []byte) error {
	if err := h.Open(dev, 1, []byte(name)); err != nil {
		return err
	}
	err := h.Write(dev, 1, data)
	if e := h.Close(dev, 1); err == nil {
		err = e
	}
	return err
}

// Command sends cmd on the command channel.
func (h *Host) Command(dev int, cmd string) error {
	return h.Write(dev, iec.CommandChannel, []byte(cmd+"\r"))
}

// Status reads the drive status from the command channel.
func (h *Host) Status(dev int) (string, error) {
	data, err := h.Read(dev, iec.CommandChannel)
	return string(data), err
}

// Stall asserts ATN and clock, and then does nothing for d before
// releasing ATN again.
func (h *Host) Stall(d time.Duration) {
	h.Set(iec.LineATN, true)
	h.Set(iec.LineClock, true)
	h.Delay(d)
	h.ReleaseAll()
}
