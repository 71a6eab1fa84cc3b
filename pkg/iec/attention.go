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

package iec

// command bytes sent under attention
const (
	CodeListen   byte = 0x20
	CodeTalk     byte = 0x40
	CodeData     byte = 0x60
	CodeClose    byte = 0xe0
	CodeOpen     byte = 0xf0
	CodeUnlisten byte = 0x3f
	CodeUntalk   byte = 0x5f
)

// channel used for DOS commands and status
const CommandChannel = 15

// MaxCommandLength is the most command bytes collected in one attention
// sequence.
const MaxCommandLength = 40

// Result classifies an attention sequence.
type Result int

//
const (
	ATNIdle Result = iota
	ATNCmd
	ATNCmdListen
	ATNCmdTalk
	ATNError
	ATNReset
)

//
func (r Result) String() string {
	switch r {
	case ATNIdle:
		return "idle"
	case ATNCmd:
		return "command"
	case ATNCmdListen:
		return "listen"
	case ATNCmdTalk:
		return "talk"
	case ATNError:
		return "error"
	case ATNReset:
		return "reset"
	}
	return "unknown"
}

// Command is what was sent to this device during one attention sequence.
// Code is the secondary address byte, holding opcode and channel.
type Command struct {
	Device int
	Code   byte
	Data   []byte
}

//
func (c *Command) Channel() byte {
	return c.Code & 0x0f
}

//
func (c *Command) Opcode() byte {
	return c.Code & 0xf0
}

//
func (c *Command) reset(dev int) {
	c.Device = dev
	c.Code = 0
	c.Data = c.Data[:0]
}

/*
	CheckAttention is polled once per cycle. If ATN is asserted, it reads the
	attention sequence into cmd and reports what the drive has to do next:

		ATNCmd			a command was received completely, e.g. an OPEN with
						file name, or a CLOSE
		ATNCmdListen	data will follow on a data channel other than the
						command channel, the caller receives it
		ATNCmdTalk		the drive has to talk now, the bus has been turned
						around already
		ATNError		a handshake failed, the caller needs to reset
		ATNReset		the reset line is asserted

	Sequences addressed at other devices are skipped.
*/
func (b *Bus) CheckAttention(cmd *Command) Result {

	cmd.reset(b.device)

	if b.lines.Read(LineReset) {
		b.Release()
		return ATNReset
	}

	if !b.lines.Read(LineATN) {
		b.Release()
		return ATNIdle
	}

	// we're here
	b.lines.Write(LineData, true)
	b.lines.Write(LineClock, false)
	b.clock.Delay(TimingATNPre)

	c := b.ReceiveByte()
	if b.state.Has(StateError) {
		return ATNError
	}

	ret := ATNCmd

	switch c {

	case CodeListen | byte(b.device):
		c = b.ReceiveByte()
		if b.state.Has(StateError) {
			return ATNError
		}
		cmd.Code = c

		if c&0xf0 == CodeData && c&0x0f != CommandChannel {
			ret = ATNCmdListen
			break
		}

		if c == CodeUnlisten {
			break
		}

		for {
			c = b.ReceiveByte()
			if b.state.Has(StateError) {
				return ATNError
			}
			if b.state.Has(StateATN) && c == CodeUnlisten {
				break
			}
			if len(cmd.Data) >= MaxCommandLength {
				b.Release()
				b.waitATNReleased()
				return ATNError
			}
			cmd.Data = append(cmd.Data, c)
		}

	case CodeTalk | byte(b.device):
		c = b.ReceiveByte()
		if b.state.Has(StateError) {
			return ATNError
		}
		cmd.Code = c

		for b.lines.Read(LineATN) {
			if b.lines.Read(LineClock) {
				b.clock.Delay(PollInterval)
				continue
			}
			c = b.ReceiveByte()
			if b.state.Has(StateError) {
				return ATNError
			}
			if len(cmd.Data) < MaxCommandLength {
				cmd.Data = append(cmd.Data, c)
			}
		}

		if !b.TurnAround() {
			return ATNError
		}
		return ATNCmdTalk

	default:
		// not for us, or unlisten/untalk
		b.clock.Delay(TimingATNDelay)
		b.Release()
		b.waitATNReleased()
		return ATNIdle
	}

	// the host keeps ATN asserted for a while after the last byte
	b.clock.Delay(TimingATNDelay)
	if !b.WaitFor(LineATN, false) {
		return ATNError
	}
	return ret
}
