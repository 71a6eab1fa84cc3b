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

/*
	Package adapter holds the bus side control logic of the drive. It watches
	the bus for attention sequences, turns them into frames for the daemon,
	and transmits the daemon's answers over the bus: file data, directory
	listings rendered as a BASIC program, and status messages.
*/
package adapter

import (
	"bufio"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/iecdrive/pkg/iec"
	"github.com/xelalexv/iecdrive/pkg/proto"
)

//
const (
	// Facility is the debug facility the adapter registers with the daemon
	Facility = 'A'
	// load address of listings, start of BASIC memory
	basicStart = 0x0401
	// largest payload sent in one write frame
	maxWrite = 64
)

/*
	Adapter connects a bus to the daemon. It is driven by calling Tick
	repeatedly. Everything runs on the calling goroutine, and the bus is
	serviced only while inside Tick.
*/
type Adapter struct {
	bus  *iec.Bus
	link io.Writer
	r    *bufio.Reader

	cmd        iec.Command
	state      proto.OpenState
	status     byte
	readLength int
	inReset    bool
	ack        *proto.Ack
}

// New creates an adapter for bus, talking to the daemon over link.
func New(bus *iec.Bus, link io.ReadWriter) *Adapter {
	return &Adapter{
		bus:        bus,
		link:       link,
		r:          bufio.NewReader(link),
		readLength: proto.DefaultReadLength,
	}
}

// SetReadLength sets the size of read replies requested from the daemon.
func (a *Adapter) SetReadLength(n int) error {
	if n <= proto.ReadOverhead || n > 0xff {
		return fmt.Errorf("invalid read length: %d", n)
	}
	a.readLength = n
	return nil
}

//
func (a *Adapter) State() proto.OpenState {
	return a.state
}

// Ack returns the daemon's answer to the last successful handshake.
func (a *Adapter) Ack() *proto.Ack {
	return a.ack
}

// Connect performs the handshake with the daemon, and registers the
// adapter's debug facility. The device number the daemon sends is applied
// to the bus.
func (a *Adapter) Connect() error {

	if err := a.send(proto.Hello(proto.Version)...); err != nil {
		return err
	}

	line, err := a.r.ReadString(proto.Terminator)
	if err != nil {
		return fmt.Errorf("error reading handshake reply: %v", err)
	}
	if line == proto.Nak {
		return fmt.Errorf("daemon refused protocol version %d", proto.Version)
	}

	ack, err := proto.ParseAck(line)
	if err != nil {
		return fmt.Errorf("invalid handshake reply: %v", err)
	}

	a.ack = ack
	a.bus.SetDevice(ack.Device)
	a.reset()

	log.WithFields(log.Fields{
		"device": ack.Device,
		"pins":   fmt.Sprintf("%+v", ack.Pins),
		"time":   ack.Time,
	}).Info("connected to daemon")

	reg := append([]byte{proto.CmdRegister, Facility}, "IEC ADAPTER"...)
	return a.send(append(reg, proto.Terminator)...)
}

// Debug sends a log message to the daemon.
func (a *Adapter) Debug(msg string) error {
	frame := append([]byte{proto.CmdDebug, Facility}, msg...)
	return a.send(append(frame, proto.Terminator)...)
}

// Tick checks the bus for attention and serves whatever the host asks for.
// Errors are failures of the daemon link.
func (a *Adapter) Tick() error {

	res := a.bus.CheckAttention(&a.cmd)

	if res != iec.ATNReset {
		a.inReset = false
	}

	switch res {

	case iec.ATNIdle:
		return nil

	case iec.ATNReset:
		if a.inReset {
			return nil
		}
		a.inReset = true
		log.Info("bus reset")
		// a new handshake resets the daemon's session
		return a.Connect()

	case iec.ATNError:
		log.Warn("bus error, resetting")
		return a.abort()
	}

	ch := a.cmd.Channel()

	switch a.cmd.Opcode() {

	case iec.CodeOpen:
		return a.open(ch, a.cmd.Data)

	case iec.CodeClose:
		return a.close()

	case iec.CodeData:
		switch res {
		case iec.ATNCmdTalk:
			return a.talk(ch)
		case iec.ATNCmdListen:
			return a.listen()
		case iec.ATNCmd:
			return a.open(ch, a.cmd.Data)
		}
	}

	log.WithField("code", fmt.Sprintf("%02x", a.cmd.Code)).Trace(
		"ignoring attention")
	return nil
}

//
func (a *Adapter) reset() {
	a.bus.Release()
	a.state = proto.OpenNothing
	a.status = 0
}

// abort resets locally, and closes any stream open at the daemon.
func (a *Adapter) abort() error {
	open := a.state != proto.OpenNothing
	a.reset()
	if open {
		return a.close()
	}
	return nil
}

// --- frames -------------------------------------------------------------------

//
func (a *Adapter) send(data ...byte) error {
	if _, err := a.link.Write(data); err != nil {
		return fmt.Errorf("error sending to daemon: %v", err)
	}
	return nil
}

//
func (a *Adapter) receive(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(a.r, buf); err != nil {
		return nil, fmt.Errorf("error receiving from daemon: %v", err)
	}
	return buf, nil
}

//
func (a *Adapter) receiveByte() (byte, error) {
	b, err := a.r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("error receiving from daemon: %v", err)
	}
	return b, nil
}

// expect receives the reply tag and checks it is one of tags.
func (a *Adapter) expect(tags ...byte) (byte, error) {
	tag, err := a.receiveByte()
	if err != nil {
		return 0, err
	}
	for _, t := range tags {
		if tag == t {
			return tag, nil
		}
	}
	return 0, fmt.Errorf("unexpected reply '%c'", tag)
}

// sized receives a length byte and that many bytes.
func (a *Adapter) sized() ([]byte, error) {
	n, err := a.receiveByte()
	if err != nil {
		return nil, err
	}
	return a.receive(int(n))
}

// --- attention handlers -------------------------------------------------------

// open opens channel ch at the daemon. For the command channel, this runs
// the DOS command in data and records the status.
func (a *Adapter) open(ch byte, data []byte) error {

	frame := append([]byte{proto.CmdOpen, byte(len(data) + 1), ch}, data...)
	if err := a.send(frame...); err != nil {
		return err
	}

	if _, err := a.expect(proto.RepOpen); err != nil {
		return err
	}
	res, err := a.receiveByte()
	if err != nil {
		return err
	}

	if ch == proto.ChannelCommand {
		a.status = res
		log.WithFields(log.Fields{
			"command": string(data), "status": res}).Debug("command")
	} else {
		a.state = proto.OpenState(res)
		log.WithFields(log.Fields{
			"channel": ch, "name": string(data), "state": a.state}).Debug("open")
	}

	return nil
}

// close closes the stream at the daemon. When the daemon reports a device
// number, the bus follows it.
func (a *Adapter) close() error {

	a.state = proto.OpenNothing

	if err := a.send(proto.CmdClose); err != nil {
		return err
	}

	tag, err := a.expect(proto.RepLoaded, proto.RepSaved, proto.RepClosed)
	if err != nil {
		return err
	}

	if tag == proto.RepClosed {
		dev, err := a.receiveByte()
		if err != nil {
			return err
		}
		if int(dev) != a.bus.Device() {
			log.WithFields(log.Fields{
				"old": a.bus.Device(), "new": dev}).Info("device number changed")
			a.bus.SetDevice(int(dev))
		}
		return nil
	}

	name, err := a.sized()
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"name": string(name), "saved": tag == proto.RepSaved}).Info("closed")
	return nil
}

// talk transmits what the host asks for on channel ch.
func (a *Adapter) talk(ch byte) error {

	if ch == proto.ChannelCommand {
		return a.sendStatus()
	}

	switch {
	case a.state.IsListing():
		return a.sendListing()
	case a.state == proto.OpenFile:
		return a.sendFile()
	}

	log.WithField("state", a.state).Debug("nothing to send")
	a.bus.SendFNF()
	return nil
}

// listen receives data from the host and forwards it to the daemon when a
// save is open. Otherwise the data is dropped.
func (a *Adapter) listen() error {

	save := a.state.IsSave()
	buf := make([]byte, 0, maxWrite)
	dropped := 0

	for {
		b := a.bus.ReceiveByte()
		st := a.bus.State()
		if st.Has(iec.StateError) {
			log.Warn("receive failed")
			break
		}

		if save {
			buf = append(buf, b)
			if len(buf) == maxWrite {
				if err := a.write(buf); err != nil {
					return err
				}
				buf = buf[:0]
			}
		} else {
			dropped++
		}

		if st.Has(iec.StateEOI) {
			break
		}
	}

	if dropped > 0 {
		log.WithField("bytes", dropped).Debug("no save open, data dropped")
	}
	if len(buf) > 0 {
		return a.write(buf)
	}
	return nil
}

//
func (a *Adapter) write(data []byte) error {
	frame := append([]byte{proto.CmdWrite, byte(len(data))}, data...)
	return a.send(frame...)
}
