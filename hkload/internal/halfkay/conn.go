// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package halfkay

import (
	"time"

	"github.com/embeddedgo/halfkay/hkload/internal/util"
	usb "github.com/google/gousb"
	"github.com/pkg/errors"
)

// USB identifiers of the HalfKay bootloader.
const (
	Vendor  usb.ID = 0x16c0
	Product usb.ID = 0x0478
)

const (
	hidSetReport = 0x09
	reportOutput = 0x0200
	reportID     = 0

	retryDelay = 10 * time.Millisecond
)

var (
	ErrNoDevice = errors.New("no USB devices in the bootloader mode were found")
	ErrClosed   = errors.New("use of closed connection")
	ErrTimeout  = errors.New("timeout")
)

// Conn is the USB connection to the HalfKay bootloader.
type Conn struct {
	ctx *usb.Context
	dev *usb.Device
	cfg *usb.Config
	ifa *usb.Interface
}

// Connect connects to the Teensy in the bootloader mode. You can connect to
// the concrete device on the USB bus by providing BUS:DEV string where both
// BUS and DEV are decimal unsigned integers. If busAddr is empty Connect
// will try to find the bootloader on the bus (it will return an error if
// there are more than one such devices).
func Connect(busAddr string) (conn *Conn, err error) {
	defer wrapErr("Connect", &err)

	ctx, devs, err := util.OpenUSB(Vendor, Product, busAddr)
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			for _, d := range devs {
				d.Close()
			}
			ctx.Close()
		}
	}()
	if len(devs) == 0 {
		return nil, ErrNoDevice
	}
	if len(devs) != 1 {
		return nil, errors.New("found more than one USB device in the bootloader mode")
	}
	dev := devs[0]
	dev.SetAutoDetach(true)
	cfg, err := dev.Config(1)
	if err != nil {
		return
	}
	ifa, err := cfg.Interface(0, 0)
	if err != nil {
		cfg.Close()
		return
	}
	return &Conn{ctx: ctx, dev: dev, cfg: cfg, ifa: ifa}, nil
}

// Write sends p to the bootloader as the HID output report. The HID report
// ID (0) is carried in the low byte of the wValue field of the SET_REPORT
// request. The transfer is retried until it succeeds or the timeout expires.
func (c *Conn) Write(p []byte, timeout time.Duration) (err error) {
	if c.dev == nil {
		return ErrClosed
	}
	err = ErrTimeout
	deadline := time.Now().Add(timeout)
	for left := timeout; left > 0; left = time.Until(deadline) {
		c.dev.ControlTimeout = left
		_, err = c.dev.Control(
			usb.ControlOut|usb.ControlClass|usb.ControlInterface,
			hidSetReport, reportOutput|reportID, 0, p,
		)
		if err == nil {
			return
		}
		time.Sleep(retryDelay)
	}
	return
}

// Close releases the device. It can be called more than once.
func (c *Conn) Close() (err error) {
	if c.ctx == nil {
		return nil
	}
	c.ifa.Close()
	c.cfg.Close()
	c.dev.Close()
	err = c.ctx.Close()
	*c = Conn{}
	wrapErr("Close", &err)
	return
}
