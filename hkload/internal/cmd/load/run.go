// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package load

import (
	"time"

	"github.com/embeddedgo/halfkay/hkload/internal/firmware"
	"github.com/embeddedgo/halfkay/hkload/internal/flash"
	"github.com/embeddedgo/halfkay/hkload/internal/halfkay"
	"github.com/embeddedgo/halfkay/hkload/internal/ihex"
	"github.com/embeddedgo/halfkay/hkload/internal/mcu"
	"github.com/embeddedgo/halfkay/hkload/internal/util"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

type options struct {
	mcu      mcu.MCU
	file     string
	wait     bool
	noReboot bool
	bootOnly bool
	verbose  bool
	busAddr  string

	log halfkay.Logger // glog.V(1) if nil
}

func (o *options) logger() halfkay.Logger {
	if o.log != nil {
		return o.log
	}
	return glog.V(1)
}

type device interface {
	halfkay.Device
	Close() error
}

type opener func() (device, error)

func connector(busAddr string) opener {
	return func() (device, error) {
		conn, err := halfkay.Connect(busAddr)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

var pollInterval = 250 * time.Millisecond

// run programs the MCU. The device is closed before run returns.
func run(o *options, open opener) (err error) {
	layout, err := halfkay.NewLayout(o.mcu.CodeSize, o.mcu.BlockSize)
	if err != nil {
		return
	}
	img := flash.New()
	reloc := ihex.RelocationFor(o.mcu.CodeSize, o.mcu.BlockSize)
	if !o.bootOnly {
		// Read the file before using USB to report its errors early.
		if err = readFile(img, o, reloc); err != nil {
			return
		}
	}
	log := o.logger()
	dev, waited, err := acquire(open, o.wait, pollInterval, log)
	if err != nil {
		return
	}
	defer dev.Close()
	log.Infof("Found HalfKay Bootloader")

	opts := []halfkay.Option{halfkay.WithLogger(log)}
	if o.verbose {
		opts = append(opts, halfkay.WithProgress(func(addr, size int) {
			util.Progress("Programming:", addr, size, 1024, "KiB")
		}))
	}
	prog := halfkay.New(dev, layout, opts...)
	if o.bootOnly {
		return prog.Boot()
	}
	if waited {
		// The file could be changed while waiting for the device.
		if err = readFile(img, o, reloc); err != nil {
			return
		}
	}
	if _, err = prog.Program(img); err != nil {
		return
	}
	if !o.noReboot {
		if berr := prog.Boot(); berr != nil {
			util.Warn("reboot failed: %v", berr)
		}
	}
	return nil
}

func readFile(img *flash.Image, o *options, reloc ihex.Relocation) error {
	n, err := firmware.Load(img, o.file, reloc)
	if err != nil {
		return errors.Wrapf(err, "error reading %q", o.file)
	}
	o.logger().Infof(
		"Read %q: %d bytes, %.1f%% usage",
		o.file, n, float64(n)/float64(o.mcu.CodeSize)*100,
	)
	if end := img.End(); end > o.mcu.CodeSize {
		util.Warn(
			"%s: data up to %#x does not fit in %d B of %s Flash and will not be written",
			o.file, end-1, o.mcu.CodeSize, o.mcu.Name,
		)
	}
	return nil
}

// acquire opens the device. If wait is true it polls for the device until it
// appears, otherwise it fails immediately. It reports whether it had to wait.
func acquire(open opener, wait bool, interval time.Duration, log halfkay.Logger) (dev device, waited bool, err error) {
	var last string
	for {
		dev, err = open()
		if err == nil {
			return dev, waited, nil
		}
		if !wait {
			return nil, waited, errors.Wrap(err, "unable to open device (hint: try -w option)")
		}
		if !waited {
			log.Infof("Waiting for Teensy device...")
			log.Infof(" (hint: press the reset button)")
			waited = true
		}
		if msg := err.Error(); msg != last {
			log.Infof("open: %s", msg)
			last = msg
		}
		time.Sleep(interval)
	}
}
