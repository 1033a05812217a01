// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package load

import (
	"flag"
	"fmt"
	"os"

	"github.com/embeddedgo/halfkay/hkload/internal/cmd/mcus"
	"github.com/embeddedgo/halfkay/hkload/internal/mcu"
	"github.com/embeddedgo/halfkay/hkload/internal/util"
)

const (
	Descr     = "load the program stored in a HEX/ELF file onto the Teensy"
	DescrBoot = "start the program already loaded onto the Teensy"
)

func Main(cmd string, args []string) {
	boot := cmd == "boot"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		if boot {
			fmt.Fprintf(os.Stderr, "Usage:\n  %s -mcu MCU [OPTIONS]\nOptions:\n", cmd)
		} else {
			fmt.Fprintf(os.Stderr, "Usage:\n  %s -mcu MCU [OPTIONS] [HEX|ELF]\nOptions:\n", cmd)
		}
		fs.PrintDefaults()
	}
	mcuName := fs.String("mcu", "", "select the `MCU` (run the mcus command to list them)")
	fs.StringVar(mcuName, "mmcu", "", "the same as -mcu")
	listMCUs := fs.Bool("list-mcus", false, "list the supported MCUs and exit")
	o := new(options)
	fs.BoolVar(&o.wait, "w", false, "wait for the device to appear")
	fs.BoolVar(&o.verbose, "v", false, "verbose output")
	fs.StringVar(&o.busAddr, "usb", "", "select the USB device by `BUS:ADDR`")
	if !boot {
		fs.BoolVar(&o.noReboot, "n", false, "no reboot after programming")
		fs.BoolVar(&o.bootOnly, "b", false, "boot only, do not program")
	}
	fs.Parse(args)
	if *listMCUs {
		mcus.List(os.Stdout)
		os.Exit(1)
	}
	if fs.NArg() > 1 || (boot && fs.NArg() != 0) {
		fs.Usage()
		os.Exit(1)
	}
	util.SetVerbose(o.verbose)
	m, err := mcu.Lookup(*mcuName)
	if err != nil {
		util.Warn("%v", err)
		mcus.List(os.Stderr)
		os.Exit(1)
	}
	o.mcu = m
	o.bootOnly = o.bootOnly || boot
	if !o.bootOnly {
		o.file, _ = util.InOutFiles(fs.Arg(0), ".hex", "", "")
	}
	util.FatalErr("", run(o, connector(o.busAddr)))
}
