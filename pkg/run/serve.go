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

package run

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"

	"github.com/xelalexv/iecdrive/pkg/control"
	"github.com/xelalexv/iecdrive/pkg/daemon"
	"github.com/xelalexv/iecdrive/pkg/proto"
	"github.com/xelalexv/iecdrive/pkg/repo"
	"github.com/xelalexv/iecdrive/pkg/session"
)

//
func NewServe() *Serve {

	s := &Serve{}
	s.Runner = *NewRunner(
		"serve -p|--port {serial port} -r|--root {directory} [-d|--device {number}] [flags]",
		"start the drive daemon",
		`
Use the serve command to run the daemon. It talks to the adapter over the
serial port and serves the files below the root directory to the computer
on the bus. An HTTP API for controlling the drive is started at --address.
With --index, a search index of the served tree is kept in that directory.`,
		"", runnerHelpEpilogue, s.Run)

	s.AddBaseSettings()
	s.AddSetting(&s.ConfigFile, "config", "c", "", nil,
		"config file with settings", false)
	s.AddSetting(&s.Port, "port", "p", "", nil, "serial port of the adapter", true)
	s.AddSetting(&s.Baud, "baud", "b", "", daemon.DefaultBaud,
		"baud rate of the serial port", false)
	s.AddSetting(&s.Root, "root", "r", "", ".", "directory to serve", false)
	s.AddSetting(&s.Device, "device", "d", "", 8, "drive device number (8-30)", false)
	s.AddSetting(&s.Pins.ATN, "pins.atn", "", "", 5, "adapter pin for ATN", false)
	s.AddSetting(&s.Pins.Clock, "pins.clock", "", "", 4, "adapter pin for CLOCK", false)
	s.AddSetting(&s.Pins.Data, "pins.data", "", "", 3, "adapter pin for DATA", false)
	s.AddSetting(&s.Pins.Reset, "pins.reset", "", "", 7, "adapter pin for RESET", false)
	s.AddSetting(&s.WriteProtect, "write-protect", "w", "", false,
		"refuse all writes", false)
	s.AddSetting(&s.ShowDirs, "show-dirs", "", "", true,
		"show host directories in listings", false)
	s.AddSetting(&s.SaveFormat, "save-format", "", "", session.SaveFormatPRG,
		"format for saved files: prg or p00", false)
	s.AddSetting(&s.Reconnect, "reconnect", "", "", daemon.DefaultReconnect,
		"wait time before reconnecting to the adapter", false)
	s.AddSetting(&s.Index, "index", "i", "", nil,
		"directory for the search index; indexing is off when not set", false)

	return s
}

//
type Serve struct {
	//
	Runner
	//
	ConfigFile   string
	Port         string
	Baud         int
	Root         string
	Device       int
	Pins         proto.Pins
	WriteProtect bool
	ShowDirs     bool
	SaveFormat   string
	Reconnect    time.Duration
	Index        string
}

//
func (s *Serve) Run() error {

	if err := s.ReadConfig(s.ConfigFile); err != nil {
		return err
	}
	if err := s.ParseSettings(); err != nil {
		return err
	}

	d, err := daemon.NewDaemon(s.daemonConfig())
	if err != nil {
		return err
	}

	var index control.Searcher
	if s.Index != "" {
		idx, err := repo.NewIndex(s.Index, s.Root)
		if err != nil {
			return fmt.Errorf("cannot create index: %v", err)
		}
		if err := idx.Start(); err != nil {
			idx.Stop()
			return err
		}
		atexit.Register(idx.Stop)
		index = idx
	}

	api := control.NewAPIServer(s.Address, d, index)
	go func() {
		if err := api.Serve(); err != nil {
			log.Errorf("API server failed: %v", err)
		}
	}()
	atexit.Register(func() {
		if err := api.Stop(); err != nil {
			log.Errorf("error stopping API server: %v", err)
		}
	})

	atexit.Register(d.Stop)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.WithField("signal", sig).Info("shutting down")
		atexit.Exit(0)
	}()

	return d.Serve()
}

//
func (s *Serve) daemonConfig() daemon.Config {
	return daemon.Config{
		Port: s.Port,
		Baud: s.Baud,
		Pins: s.Pins,
		Session: session.Config{
			Root:         s.Root,
			ShowDirs:     s.ShowDirs,
			Device:       s.Device,
			WriteProtect: s.WriteProtect,
			SaveFormat:   s.SaveFormat,
		},
		Reconnect: s.Reconnect,
	}
}
