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
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/xid"
	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/iecdrive/pkg/proto"
	"github.com/xelalexv/iecdrive/pkg/session"
	"github.com/xelalexv/iecdrive/pkg/vfs/base"
)

//
const (
	DefaultBaud      = 115200
	DefaultReconnect = 2 * time.Second
	requestTimeout   = 5 * time.Second
)

//
type Config struct {
	Port      string
	Baud      int
	Pins      proto.Pins
	Session   session.Config
	Reconnect time.Duration
	// Dial opens the link to the adapter; when nil, Port is opened as a
	// serial port
	Dial func() (io.ReadWriteCloser, error)
}

// Status describes the daemon's connection and drive state.
type Status struct {
	Connected  bool              `json:"connected"`
	Connection string            `json:"connection,omitempty"`
	Link       string            `json:"link,omitempty"`
	Facilities map[string]string `json:"facilities,omitempty"`
	Session    *session.Info     `json:"session"`
	Activity   Activity          `json:"activity"`
}

//
type request struct {
	fn   func()
	done chan struct{}
}

/*
	Daemon is the controller side of the drive. It serves one adapter at a
	time over the conduit, and reconnects when the link breaks. All session
	access happens on the serve loop. Control requests from other goroutines
	are handed to the serve loop and run there.
*/
type Daemon struct {
	conf    Config
	session *session.Session
	monitor *Monitor
	conduit *conduit
	framer  framer

	connection xid.ID
	connected  bool
	facilities map[byte]string

	requests chan *request
	stop     chan struct{}
	stopOnce sync.Once
}

//
func NewDaemon(conf Config) (*Daemon, error) {

	if conf.Dial == nil && conf.Port == "" {
		return nil, fmt.Errorf("no serial port configured")
	}
	if conf.Baud <= 0 {
		conf.Baud = DefaultBaud
	}
	if conf.Reconnect <= 0 {
		conf.Reconnect = DefaultReconnect
	}

	monitor := NewMonitor()
	s, err := session.New(conf.Session, monitor)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		conf:       conf,
		session:    s,
		monitor:    monitor,
		facilities: map[byte]string{},
		requests:   make(chan *request),
		stop:       make(chan struct{}),
	}, nil
}

// Serve runs the daemon until Stop is called.
func (d *Daemon) Serve() error {

	log.WithFields(log.Fields{
		"root":   d.conf.Session.Root,
		"device": d.session.Device(),
	}).Info("daemon starting")

	for {
		link, err := d.dial()
		if err != nil {
			log.Errorf("cannot connect to adapter: %v", err)

		} else {
			d.conduit = newConduit(link, d.linkName())
			err = d.serveConnection()
			d.conduit.close()
			d.conduit = nil
			d.disconnected()

			if err == nil {
				log.Info("daemon stopped")
				return nil
			}
			log.Warnf("adapter connection lost: %v", err)
		}

		if !d.wait(d.conf.Reconnect) {
			log.Info("daemon stopped")
			return nil
		}
		log.Info("reconnecting")
	}
}

// Stop ends Serve. It is safe to call more than once.
func (d *Daemon) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
}

//
func (d *Daemon) dial() (io.ReadWriteCloser, error) {
	if d.conf.Dial != nil {
		return d.conf.Dial()
	}
	return openSerial(d.conf.Port, d.conf.Baud)
}

//
func (d *Daemon) linkName() string {
	if d.conf.Port != "" {
		return d.conf.Port
	}
	return "link"
}

// wait serves control requests for dur. It returns false when the daemon
// got stopped in the meantime.
func (d *Daemon) wait(dur time.Duration) bool {

	timer := time.NewTimer(dur)
	defer timer.Stop()

	for {
		select {
		case r := <-d.requests:
			r.run()
		case <-timer.C:
			return true
		case <-d.stop:
			return false
		}
	}
}

// serveConnection handles the current conduit until it fails, which is
// reported as error, or the daemon gets stopped, which returns nil.
func (d *Daemon) serveConnection() error {

	in := make(chan []byte, 16)
	errs := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go d.conduit.receive(in, errs, done)
	d.framer.reset()

	log.WithField("link", d.conduit.name).Info("waiting for adapter")

	for {
		select {
		case data := <-in:
			d.framer.push(data)
			if err := d.process(); err != nil {
				return err
			}

		case r := <-d.requests:
			r.run()

		case err := <-errs:
			return err

		case <-d.stop:
			return nil
		}
	}
}

// process dispatches all complete frames received so far.
func (d *Daemon) process() error {

	for frame := d.framer.next(); frame != nil; frame = d.framer.next() {

		if isHandshake(frame) {
			if err := d.handshake(frame); err != nil {
				return err
			}
			continue
		}

		cmd, err := newCommand(frame)
		if err != nil {
			log.Warnf("invalid frame: %v", err)
			continue
		}

		if err := cmd.dispatch(d); err != nil {
			return fmt.Errorf("%s failed: %v", cmd.name(), err)
		}
	}

	return nil
}

// handshake answers an adapter's hello. A version mismatch is refused and
// leaves the connection unaccepted. An accepted connection starts with a
// freshly reset session.
func (d *Daemon) handshake(frame []byte) error {

	v, err := proto.ParseHello(string(frame))
	if err != nil || v != proto.Version {
		log.WithFields(log.Fields{
			"version": v, "want": proto.Version}).Warn("handshake refused")
		d.framer.accepted = false
		d.connected = false
		return d.conduit.send([]byte(proto.Nak))
	}

	d.session.Reset()
	d.connection = xid.New()
	d.connected = true
	d.facilities = map[byte]string{}
	d.framer.accepted = true

	ack := &proto.Ack{
		Device: d.session.Device(),
		Pins:   d.conf.Pins,
		Time:   time.Now(),
	}

	log.WithFields(log.Fields{
		"connection": d.connection,
		"device":     ack.Device,
		"version":    v,
	}).Info("adapter connected")

	return d.conduit.send(ack.Encode())
}

//
func (d *Daemon) disconnected() {
	if d.connected {
		log.WithField("connection", d.connection).Info("adapter disconnected")
	}
	d.connected = false
	d.facilities = map[byte]string{}
}

//
func (d *Daemon) setFacility(f byte, name string) {
	d.facilities[f] = name
}

//
func (d *Daemon) facility(f byte) string {
	if name, ok := d.facilities[f]; ok {
		return name
	}
	return string(f)
}

// --- control requests ---------------------------------------------------------

//
func (r *request) run() {
	defer close(r.done)
	r.fn()
}

// do runs fn on the serve loop and waits for it to finish.
func (d *Daemon) do(fn func()) error {

	r := &request{fn: fn, done: make(chan struct{})}
	timer := time.NewTimer(requestTimeout)
	defer timer.Stop()

	select {
	case d.requests <- r:
	case <-d.stop:
		return fmt.Errorf("daemon stopped")
	case <-timer.C:
		return fmt.Errorf("daemon not responding")
	}

	<-r.done
	return nil
}

// Mount mounts path, relative to the served root. This can be a directory
// or an image file.
func (d *Daemon) Mount(path string) error {
	var err error
	if e := d.do(func() { err = d.session.Mount(path) }); e != nil {
		return e
	}
	return err
}

// Unmount unmounts any image and returns to the native directory.
func (d *Daemon) Unmount() error {
	return d.do(func() { d.session.Unmount() })
}

// Reset resets the drive as a bus reset would.
func (d *Daemon) Reset() error {
	return d.do(func() { d.session.Reset() })
}

// Listing renders the directory of the current medium, or the media info
// when info is set.
func (d *Daemon) Listing(info bool) (*base.Listing, error) {
	var l *base.Listing
	var err error
	if e := d.do(func() { l, err = d.session.Listing(info) }); e != nil {
		return nil, e
	}
	return l, err
}

//
func (d *Daemon) Status() (*Status, error) {

	var st *Status

	err := d.do(func() {
		st = &Status{
			Connected: d.connected,
			Session:   d.session.Info(),
			Activity:  d.monitor.Activity(),
		}
		if d.conduit != nil {
			st.Link = d.conduit.name
		}
		if d.connected {
			st.Connection = d.connection.String()
			st.Facilities = map[string]string{}
			for f, name := range d.facilities {
				st.Facilities[string(f)] = name
			}
		}
	})

	return st, err
}

// SetWriteProtected switches write protection for all media on or off.
func (d *Daemon) SetWriteProtected(on bool) {
	d.monitor.SetWriteProtected(on)
}

//
func (d *Daemon) IsWriteProtected() bool {
	return d.monitor.IsWriteProtected()
}

// Root is the directory served by the daemon.
func (d *Daemon) Root() string {
	return d.session.Native().Root()
}
