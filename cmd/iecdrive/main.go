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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/xelalexv/iecdrive/pkg/run"
)

//
func main() {

	root := &cobra.Command{
		Use:   "iecdrive",
		Short: "Commodore 1541 drive emulator",
		Long: `
iecdrive emulates a Commodore 1541 floppy drive. The daemon, started with the
serve command, talks to an adapter attached to the computer's serial bus and
serves programs and disk images from a host directory. The other commands
control a running daemon via its HTTP API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		&run.NewServe().Command,
		&run.NewList().Command,
		&run.NewMount().Command,
		&run.NewUnmount().Command,
		&run.NewReset().Command,
		&run.NewStatus().Command,
		&run.NewProtect().Command,
		&run.NewSearch().Command,
		&run.NewUpload().Command,
		&run.NewDump().Command,
		&run.NewVersion().Command,
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\n%v\n\n", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
