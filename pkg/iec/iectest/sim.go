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
	Package iectest simulates the bus host, i.e. the computer side of the
	serial bus, for testing the drive side. Device and host run in lockstep
	on a virtual clock: only one of them runs at any time, and control passes
	on whenever the running party waits. This makes bus timing deterministic,
	independent of scheduling and machine speed.
*/
package iectest

import (
	"sync"
	"time"

	"github.com/xelalexv/iecdrive/pkg/iec"
)

const lineCount = 4

//
type party struct {
	wake   time.Duration
	resume chan struct{}
	done   bool
}

// Sim is a simulated bus with one device and one host.
type Sim struct {
	mu     sync.Mutex
	now    time.Duration
	device [lineCount]bool
	host   [lineCount]bool
	dev    *party
	hst    *party
}

//
func NewSim() *Sim {
	return &Sim{dev: &party{resume: make(chan struct{}, 1)}}
}

// Now returns the virtual time elapsed.
func (s *Sim) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

//
func (s *Sim) level(l iec.Line) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device[l] || s.host[l]
}

// delay lets p wait for d, and runs whoever is due next meanwhile.
func (s *Sim) delay(p *party, d time.Duration) {

	s.mu.Lock()
	p.wake = s.now + d
	next := s.next()
	s.now = next.wake
	s.mu.Unlock()

	if next == p {
		return
	}
	next.resume <- struct{}{}
	<-p.resume
}

// next picks the party due first, the device wins ties.
func (s *Sim) next() *party {
	if s.hst == nil || s.hst.done || s.dev.wake <= s.hst.wake {
		return s.dev
	}
	return s.hst
}

// Device returns the device side of the bus, to be used by the drive under
// test. The drive must only use it from the goroutine that runs the test.
func (s *Sim) Device() *DeviceLines {
	return &DeviceLines{sim: s}
}

// DeviceLines implements iec.Lines and iec.Clock for the drive.
type DeviceLines struct {
	sim *Sim
}

//
func (d *DeviceLines) Read(l iec.Line) bool {
	return d.sim.level(l)
}

//
func (d *DeviceLines) Write(l iec.Line, asserted bool) {
	d.sim.mu.Lock()
	d.sim.device[l] = asserted
	d.sim.mu.Unlock()
}

//
func (d *DeviceLines) Delay(t time.Duration) {
	d.sim.delay(d.sim.dev, t)
}

// Run is a host program running on the bus.
type Run struct {
	sim *Sim
	err error
}

// Done says whether the host program has finished.
func (r *Run) Done() bool {
	r.sim.mu.Lock()
	defer r.sim.mu.Unlock()
	return r.sim.hst.done
}

// Err is the error the host program returned, only valid once Done.
func (r *Run) Err() error {
	return r.err
}

/*
	Start starts host program fn. It first runs when the device waits the
	next time. The device side needs to keep going, e.g. by polling for
	attention and waiting a little in between, until the run is done.
*/
func (s *Sim) Start(fn func(h *Host) error) *Run {

	s.mu.Lock()
	hp := &party{wake: s.now, resume: make(chan struct{}, 1)}
	s.hst = hp
	s.mu.Unlock()

	r := &Run{sim: s}
	h := &Host{sim: s, p: hp}

	go func() {
		<-hp.resume
		err := fn(h)
		h.ReleaseAll()

		s.mu.Lock()
		r.err = err
		hp.done = true
		s.now = s.dev.wake
		s.mu.Unlock()

		s.dev.resume <- struct{}{}
	}()

	return r
}
