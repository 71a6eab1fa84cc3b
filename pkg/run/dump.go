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
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/xelalexv/iecdrive/pkg/vfs/base"
	"github.com/xelalexv/iecdrive/pkg/vfs/d64"
	"github.com/xelalexv/iecdrive/pkg/vfs/m2i"
	"github.com/xelalexv/iecdrive/pkg/vfs/p00"
	"github.com/xelalexv/iecdrive/pkg/vfs/t64"
)

//
func NewDump() *Dump {

	d := &Dump{}
	d.Runner = *NewRunner(
		"dump [-f|--file {file}] [-i|--input {image}] [-a|--address {address}]",
		"dump file or image from host or daemon",
		`
Use the dump command to output a hex dump of a file. With --input, a local
disk image is read. If --file is given as well, that file inside the image is
dumped, otherwise the image's directory is listed. Without --input, --file
names a file in the tree served by the daemon.`,
		"", runnerHelpEpilogue, d.Run)

	d.AddBaseSettings()
	d.AddSetting(&d.Input, "input", "i", "", nil, "disk image input file", false)
	d.AddSetting(&d.File, "file", "f", "", nil, "file to dump", false)

	return d
}

//
type Dump struct {
	//
	Runner
	//
	Input string
	File  string
}

//
func (d *Dump) Run() error {

	if err := d.ParseSettings(); err != nil {
		return err
	}

	if d.Input != "" {
		return d.dumpImage()
	}

	if d.File == "" {
		return fmt.Errorf("no file given")
	}

	resp, err := d.apiCall("GET",
		fmt.Sprintf("/dump?file=%s", url.QueryEscape(d.File)), false, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	if _, err := io.Copy(d.out, resp); err != nil {
		return err
	}
	fmt.Fprintln(d.out)
	return nil
}

//
func (d *Dump) dumpImage() error {

	info, err := os.Stat(d.Input)
	if err != nil {
		return err
	}

	drv := imageDriver(d.Input, info)
	if drv == nil {
		return fmt.Errorf("not a supported image: %s", d.Input)
	}
	if !drv.Mount(d.Input) {
		return fmt.Errorf("cannot read image: %s", d.Input)
	}
	defer drv.Unmount()

	if d.File == "" {
		l := &base.Listing{}
		if !drv.ListDirectory(l) {
			return fmt.Errorf("cannot list image: %s", d.Input)
		}
		base.WriteListing(d.out, l)
		return nil
	}

	data, err := readFile(drv, d.File)
	if err != nil {
		return err
	}

	dumper := hex.Dumper(d.out)
	defer dumper.Close()
	_, err = dumper.Write(data)
	return err
}

// imageDriver returns the format driver accepting the image at path, or nil
func imageDriver(path string, info os.FileInfo) base.Driver {
	for _, drv := range []base.Driver{d64.New(), t64.New(), m2i.New(), p00.New()} {
		if drv.Accepts(path, info) {
			return drv
		}
	}
	return nil
}

// readFile reads a complete file from the mounted image.
func readFile(drv base.Driver, name string) ([]byte, error) {

	if !drv.OpenRead(name) {
		return nil, fmt.Errorf("file not found in image: %s", name)
	}
	defer drv.Close()

	var buf bytes.Buffer
	for size := drv.FileSize(); size > 0; size-- {
		buf.WriteByte(drv.Getc())
		if drv.IsEOF() {
			break
		}
	}
	return buf.Bytes(), nil
}
